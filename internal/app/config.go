package app

import (
	"io"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath is the configuration directory. Empty means
	// $COA_CONFIG_PATH or ~/.coursera.
	ConfigPath string

	// LogLevel is parsed with logging.ParseLevel.
	LogLevel string

	// LogOutput receives log lines. Nil means stderr.
	LogOutput io.Writer
}

// NewConfig creates a new application configuration
func NewConfig(configPath, logLevel string, logOutput io.Writer) *Config {
	return &Config{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogOutput:  logOutput,
	}
}
