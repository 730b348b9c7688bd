package formatting

import (
	"fmt"

	"coa/internal/registry"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// FormatClients formats clients as a YAML sequence
func (f *YAMLFormatter) FormatClients(clients []registry.ClientConfig) (string, error) {
	return f.marshal(clientViews(clients, f.options.ShowSecrets))
}

// FormatClient formats a single client as a YAML mapping
func (f *YAMLFormatter) FormatClient(client registry.ClientConfig) (string, error) {
	return f.marshal(NewClientView(client, f.options.ShowSecrets))
}

// FormatTokenStatus formats token status as a YAML mapping
func (f *YAMLFormatter) FormatTokenStatus(status TokenStatus) (string, error) {
	return f.marshal(status)
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}

func (f *YAMLFormatter) marshal(data interface{}) (string, error) {
	b, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(b), nil
}
