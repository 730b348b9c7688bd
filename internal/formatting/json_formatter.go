package formatting

import (
	"encoding/json"
	"fmt"

	"coa/internal/registry"
)

// JSONFormatter provides JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// FormatClients formats clients as a JSON array
func (f *JSONFormatter) FormatClients(clients []registry.ClientConfig) (string, error) {
	return f.marshal(clientViews(clients, f.options.ShowSecrets))
}

// FormatClient formats a single client as a JSON object
func (f *JSONFormatter) FormatClient(client registry.ClientConfig) (string, error) {
	return f.marshal(NewClientView(client, f.options.ShowSecrets))
}

// FormatTokenStatus formats token status as a JSON object
func (f *JSONFormatter) FormatTokenStatus(status TokenStatus) (string, error) {
	return f.marshal(status)
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

func (f *JSONFormatter) marshal(data interface{}) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(b) + "\n", nil
}
