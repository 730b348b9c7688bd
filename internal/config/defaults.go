package config

import "time"

const (
	// DefaultAuthorizeEndpoint is Coursera's OAuth2 authorization endpoint.
	DefaultAuthorizeEndpoint = "https://accounts.coursera.org/oauth2/v1/auth"

	// DefaultTokenEndpoint is Coursera's OAuth2 token endpoint.
	DefaultTokenEndpoint = "https://accounts.coursera.org/oauth2/v1/token"

	// DefaultCallbackPort is the port registered as redirect URI with Coursera.
	DefaultCallbackPort = 9876

	// DefaultCallbackPath is the path of the local redirect handler.
	DefaultCallbackPath = "/callback"

	// DefaultTokenTTL is the lifetime assumed for issued access tokens.
	DefaultTokenTTL = 30 * time.Minute

	// DefaultHTTPTimeout bounds token endpoint requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultSQLiteFileName is the database file used by the sqlite driver
	// when no explicit path is configured.
	DefaultSQLiteFileName = "coa.db"
)

// GetDefaultConfig returns the default configuration rooted at dir.
func GetDefaultConfig(dir string) Config {
	return Config{
		Dir: dir,
		Storage: StorageConfig{
			Driver: StorageDriverFile,
		},
		OAuth: OAuthConfig{
			AuthorizeEndpoint: DefaultAuthorizeEndpoint,
			TokenEndpoint:     DefaultTokenEndpoint,
			CallbackPort:      DefaultCallbackPort,
			CallbackPath:      DefaultCallbackPath,
			TokenTTL:          DefaultTokenTTL,
			HTTPTimeout:       DefaultHTTPTimeout,
		},
	}
}
