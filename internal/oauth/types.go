package oauth

import (
	"fmt"

	"coa/internal/errdefs"
)

// Grant is an OAuth2 grant type accepted by the token endpoint.
type Grant string

const (
	GrantAuthorizationCode Grant = "authorization_code"
	GrantRefreshToken      Grant = "refresh_token"
)

// Validate rejects grant types the client does not implement.
func (g Grant) Validate() error {
	switch g {
	case GrantAuthorizationCode, GrantRefreshToken:
		return nil
	default:
		return &errdefs.ValidationError{Field: "grant_type", Reason: fmt.Sprintf("unsupported grant %q", string(g))}
	}
}

// Credentials carries the grant-specific secret of an exchange: the
// authorization code or the refresh token.
type Credentials struct {
	Code         string
	RefreshToken string
}

// TokenResponse is the token endpoint's JSON answer.
type TokenResponse struct {
	// AccessToken is the bearer token used for API calls.
	AccessToken string `json:"access_token"`

	// RefreshToken is only returned by the authorization_code grant.
	RefreshToken string `json:"refresh_token,omitempty"`

	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds, when the provider reports one.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// Msg is the provider's error message on failure.
	Msg string `json:"msg,omitempty"`

	// Error and ErrorDescription are the RFC 6749 error fields, used when
	// no msg is present.
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// message returns the most specific error text in the response.
func (r *TokenResponse) message() string {
	switch {
	case r.Msg != "":
		return r.Msg
	case r.ErrorDescription != "":
		return r.ErrorDescription
	default:
		return r.Error
	}
}
