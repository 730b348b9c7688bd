package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Storage drivers understood by StorageConfig.Driver.
const (
	StorageDriverFile   = "file"
	StorageDriverSQLite = "sqlite"
)

// Config is the complete coa configuration.
//
// A Config is loaded once at startup and passed by value to the components
// that need it. Nothing mutates it after LoadConfig returns.
type Config struct {
	// Dir is the directory the configuration was loaded from. It is also the
	// default location of the credential store.
	Dir string `yaml:"-"`

	Storage StorageConfig `yaml:"storage"`
	OAuth   OAuthConfig   `yaml:"oauth"`
}

// StorageConfig selects where client registrations and tokens are persisted.
type StorageConfig struct {
	// Driver is "file" (YAML record files) or "sqlite".
	Driver string `yaml:"driver"`
	// Path overrides the store location: a directory for the file driver,
	// a database file for sqlite. Relative paths are resolved against Dir.
	Path string `yaml:"path,omitempty"`
}

// OAuthConfig holds the provider endpoints and the local callback settings.
type OAuthConfig struct {
	AuthorizeEndpoint string `yaml:"authorizeEndpoint"`
	TokenEndpoint     string `yaml:"tokenEndpoint"`

	// CallbackPort is the fixed local port the redirect is delivered to. It
	// must match the redirect URI registered with the provider.
	CallbackPort int    `yaml:"callbackPort"`
	CallbackPath string `yaml:"callbackPath"`

	// TokenTTL is how long a freshly issued access token is treated as valid.
	TokenTTL time.Duration `yaml:"tokenTTL"`

	// HTTPTimeout bounds each request to the token endpoint.
	HTTPTimeout time.Duration `yaml:"httpTimeout"`
}

// CallbackBase returns the redirect URI base, without the client_id query.
func (c Config) CallbackBase() string {
	return fmt.Sprintf("http://localhost:%d%s", c.OAuth.CallbackPort, c.OAuth.CallbackPath)
}

// StoragePath returns the resolved location of the credential store.
func (c Config) StoragePath() string {
	p := c.Storage.Path
	if p == "" {
		if c.Storage.Driver == StorageDriverSQLite {
			return filepath.Join(c.Dir, DefaultSQLiteFileName)
		}
		return c.Dir
	}
	if !filepath.IsAbs(p) && c.Dir != "" {
		return filepath.Join(c.Dir, p)
	}
	return p
}
