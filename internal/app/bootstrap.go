package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"coa/internal/authflow"
	"coa/internal/config"
	"coa/pkg/logging"

	"golang.org/x/oauth2"
)

// Application represents one run of coa: the loaded configuration and the
// services built from it.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: initialize logging, load configuration
//  2. Service phase: open storage and wire the components
//
// Example usage:
//
//	application, err := app.NewApplication(app.NewConfig("", "info", os.Stderr))
//	if err != nil {
//	    return err
//	}
//	defer application.Close()
//	clients, err := application.Services().Registry.List(ctx)
type Application struct {
	config   *Config
	settings config.Config
	services *Services
}

// NewApplication initializes logging, loads the configuration and builds the
// services. The storage backend is opened here; call Close when done.
func NewApplication(cfg *Config, flowOpts ...authflow.Option) (*Application, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var logOutput io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	logging.InitForCLI(level, logOutput)

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	settings, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	services, err := InitializeServices(settings, flowOpts...)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		settings: settings,
		services: services,
	}, nil
}

// Settings returns the loaded configuration.
func (a *Application) Settings() config.Config {
	return a.settings
}

// Services returns the wired components.
func (a *Application) Services() *Services {
	return a.services
}

// HTTPClient returns an HTTP client that authorizes every request with the
// client's access token, refreshing it when it has expired.
func (a *Application) HTTPClient(ctx context.Context, clientName string) *http.Client {
	client := oauth2.NewClient(ctx, a.services.Tokens.TokenSource(ctx, clientName))
	client.Timeout = a.settings.OAuth.HTTPTimeout
	return client
}

// Close releases the application's resources.
func (a *Application) Close() error {
	return a.services.Close()
}
