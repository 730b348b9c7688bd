package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"coa/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".coursera"
	configFileName = "config.yaml"

	// ConfigPathEnvVar overrides the default configuration directory.
	ConfigPathEnvVar = "COA_CONFIG_PATH"
)

// GetDefaultConfigPath returns the configuration directory: $COA_CONFIG_PATH
// when set, ~/.coursera otherwise.
func GetDefaultConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads configuration from the given directory.
// Values in <configPath>/config.yaml override the defaults; a missing file
// yields the defaults. The result is validated before it is returned.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig(configPath)

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "Error loading config.yaml from %s: %s", configFilePath, err)
			return Config{}, err
		}
		logging.Debug("Config", "No config.yaml found at %s, using defaults", configFilePath)
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		config.Dir = configPath
		logging.Debug("Config", "Loaded configuration from %s", configFilePath)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", configFilePath, err)
	}
	return config, nil
}
