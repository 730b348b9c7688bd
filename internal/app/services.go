package app

import (
	"fmt"
	"net/http"

	"coa/internal/authflow"
	"coa/internal/config"
	"coa/internal/oauth"
	"coa/internal/registry"
	"coa/internal/storage"
	"coa/internal/storage/file"
	"coa/internal/storage/sqlite"
	"coa/internal/tokens"
	"coa/pkg/logging"
)

// Services holds the components built from one configuration. They share a
// single storage backend.
type Services struct {
	Backend     storage.Backend
	Registry    *registry.Registry
	OAuth       *oauth.Client
	Tokens      *tokens.Store
	Refresher   *tokens.Refresher
	Coordinator *authflow.Coordinator
}

// InitializeServices opens the configured backend and wires the components
// on top of it. Extra coordinator options are applied after the configured
// callback port and path.
func InitializeServices(cfg config.Config, flowOpts ...authflow.Option) (*Services, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	reg := registry.New(backend)

	client := oauth.NewClient(oauth.Endpoints{
		AuthorizeURL: cfg.OAuth.AuthorizeEndpoint,
		TokenURL:     cfg.OAuth.TokenEndpoint,
		CallbackBase: cfg.CallbackBase(),
	}, oauth.WithHTTPClient(&http.Client{Timeout: cfg.OAuth.HTTPTimeout}), oauth.WithLogger(logging.Logger()))

	store := tokens.NewStore(backend, tokens.WithTTL(cfg.OAuth.TokenTTL))
	refresher := tokens.NewRefresher(reg, client, store)
	store.SetRefresher(refresher)

	opts := append([]authflow.Option{
		authflow.WithCallback(cfg.OAuth.CallbackPort, cfg.OAuth.CallbackPath),
	}, flowOpts...)
	coordinator := authflow.NewCoordinator(reg, client, store, opts...)

	return &Services{
		Backend:     backend,
		Registry:    reg,
		OAuth:       client,
		Tokens:      store,
		Refresher:   refresher,
		Coordinator: coordinator,
	}, nil
}

func openBackend(cfg config.Config) (storage.Backend, error) {
	path := cfg.StoragePath()
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		logging.Debug("Bootstrap", "Using sqlite store at %s", path)
		return sqlite.Open(path)
	case config.StorageDriverFile, "":
		logging.Debug("Bootstrap", "Using file store in %s", path)
		return file.New(path), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close releases the storage backend.
func (s *Services) Close() error {
	return s.Backend.Close()
}
