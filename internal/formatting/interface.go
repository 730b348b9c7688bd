// Package formatting renders registered clients and token status for the
// CLI in table, JSON or YAML form.
package formatting

import (
	"fmt"
	"time"

	"coa/internal/registry"
	"coa/internal/tokens"
	"coa/pkg/logging"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
	FormatTable OutputFormat = "table" // Rich table output
)

// ParseFormat validates an --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored output
	// ShowSecrets prints client secrets in full instead of masked.
	ShowSecrets bool
}

// ClientView is the printable form of a registered client.
type ClientView struct {
	Name      string `json:"name" yaml:"name"`
	ClientID  string `json:"clientId" yaml:"clientId"`
	SecretKey string `json:"secretKey" yaml:"secretKey"`
	Scope     string `json:"scope" yaml:"scope"`
}

// NewClientView converts a client, masking its secret unless showSecret is set.
func NewClientView(c registry.ClientConfig, showSecret bool) ClientView {
	secret := c.SecretKey
	if !showSecret {
		secret = logging.MaskSecret(secret)
	}
	return ClientView{
		Name:      c.Name,
		ClientID:  c.ClientID,
		SecretKey: secret,
		Scope:     string(c.Scope),
	}
}

// TokenStatus describes a client's stored tokens without revealing them.
type TokenStatus struct {
	Client          string    `json:"client" yaml:"client"`
	Authenticated   bool      `json:"authenticated" yaml:"authenticated"`
	Expired         bool      `json:"expired" yaml:"expired"`
	ExpiresAt       time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	HasRefreshToken bool      `json:"hasRefreshToken" yaml:"hasRefreshToken"`
	Location        string    `json:"location,omitempty" yaml:"location,omitempty"`
}

// NewTokenStatus summarizes rec as seen at now.
func NewTokenStatus(rec tokens.Record, now time.Time, location string) TokenStatus {
	return TokenStatus{
		Client:          rec.ClientName,
		Authenticated:   rec.AccessToken != "",
		Expired:         rec.Expired(now),
		ExpiresAt:       rec.ExpiresAt,
		HasRefreshToken: rec.RefreshToken != "",
		Location:        location,
	}
}

// Formatter renders CLI output.
type Formatter interface {
	FormatClients(clients []registry.ClientConfig) (string, error)
	FormatClient(client registry.ClientConfig) (string, error)
	FormatTokenStatus(status TokenStatus) (string, error)

	GetOptions() Options
}

// Factory creates formatters for different output formats
type Factory interface {
	CreateFormatter(options Options) Formatter
}

// NewFactory creates a new formatter factory
func NewFactory() Factory {
	return &factory{}
}

// factory implements the Factory interface
type factory struct{}

// CreateFormatter creates the appropriate formatter based on options
func (f *factory) CreateFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	default:
		return NewTableFormatter(options)
	}
}

func clientViews(clients []registry.ClientConfig, showSecrets bool) []ClientView {
	views := make([]ClientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, NewClientView(c, showSecrets))
	}
	return views
}
