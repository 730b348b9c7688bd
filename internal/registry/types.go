package registry

import (
	"fmt"
	"strings"

	"coa/internal/errdefs"
)

// Scope is the set of permissions a client requests from the provider.
type Scope string

const (
	ScopeViewProfile            Scope = "view_profile"
	ScopeBusinessAPI            Scope = "access_business_api"
	ScopeViewProfileAndBusiness Scope = "view_profile+access_business_api"
)

// DefaultScope is used when a client is added without a scope.
const DefaultScope = ScopeViewProfile

// ParseScope normalises user input into a Scope.
//
// An empty value yields DefaultScope. Requests for the business API are
// always combined with view_profile, whichever separator the user typed.
func ParseScope(s string) (Scope, error) {
	switch strings.TrimSpace(s) {
	case "":
		return DefaultScope, nil
	case string(ScopeViewProfile):
		return ScopeViewProfile, nil
	case string(ScopeBusinessAPI),
		string(ScopeViewProfileAndBusiness),
		"view_profile,access_business_api",
		"view_profile access_business_api":
		return ScopeViewProfileAndBusiness, nil
	default:
		return "", &errdefs.ValidationError{
			Field:  "scope",
			Reason: fmt.Sprintf("unknown scope %q (expected %s or %s)", s, ScopeViewProfile, ScopeViewProfileAndBusiness),
		}
	}
}

// Scopes splits a combined scope into its individual provider scopes.
func (s Scope) Scopes() []string {
	if s == "" {
		return nil
	}
	return strings.Split(string(s), "+")
}

// ClientConfig is one registered client application.
type ClientConfig struct {
	// Name is the local alias chosen by the user. Unique.
	Name string `yaml:"name" json:"name"`
	// ClientID is the provider-issued client identifier. Unique.
	ClientID string `yaml:"clientId" json:"clientId"`
	// SecretKey is the provider-issued client secret.
	SecretKey string `yaml:"secretKey" json:"secretKey"`
	Scope     Scope  `yaml:"scope" json:"scope"`
}

// Matches reports whether identifier is this client's name or client ID.
func (c ClientConfig) Matches(identifier string) bool {
	return c.Name == identifier || c.ClientID == identifier
}

func validateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &errdefs.ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}
