package tokens

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTTL is how long a saved access token is treated as valid.
const DefaultTTL = 30 * time.Minute

// collectionSuffix is appended to the client name to form the collection
// holding that client's token record.
const collectionSuffix = "_aout"

// Record is the persisted token state of one client.
//
// SECURITY: Records hold live credentials. They are never logged.
type Record struct {
	ClientName   string    `yaml:"clientName" json:"clientName"`
	RefreshToken string    `yaml:"refreshToken" json:"refreshToken"`
	AccessToken  string    `yaml:"accessToken" json:"accessToken"`
	ExpiresAt    time.Time `yaml:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the access token's expiry lies strictly before now.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// ToOAuth2Token converts the record to an oauth2.Token.
func (r Record) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       r.ExpiresAt,
	}
}

// AccessTokenRefresher obtains a fresh access token for a client whose
// cached token is stale.
type AccessTokenRefresher interface {
	Refresh(ctx context.Context, clientName string) (string, error)
}
