// Package registry manages the client applications known to coa.
//
// Each client is identified both by a local name and by its provider client
// ID; both are unique across the registry. Records are never edited in
// place: they are appended by Add and removed by Delete.
package registry

import (
	"context"
	"sync"

	"coa/internal/errdefs"
	"coa/internal/storage"
	"coa/pkg/logging"
)

// CollectionName is the storage collection holding client records.
const CollectionName = "coaconfig"

// Registry is the set of registered clients.
type Registry struct {
	// mu serialises Add and Delete so their check-then-write sequences do
	// not interleave within a process.
	mu      sync.Mutex
	records *storage.Collection[ClientConfig]
}

// New returns a Registry persisted in backend.
func New(backend storage.Backend) *Registry {
	return &Registry{
		records: storage.NewCollection[ClientConfig](backend, CollectionName),
	}
}

// Location describes where the registry is stored.
func (r *Registry) Location() string {
	return r.records.Location()
}

// Add registers a new client and returns the stored record.
//
// It fails with a ValidationError when name, clientID or secretKey is empty
// or scope is unknown, and with a ConflictError when the name or the client
// ID already resolves to a registered client.
func (r *Registry) Add(ctx context.Context, name, clientID, secretKey, scope string) (ClientConfig, error) {
	if err := validateRequired("name", name); err != nil {
		return ClientConfig{}, err
	}
	if err := validateRequired("clientId", clientID); err != nil {
		return ClientConfig{}, err
	}
	if err := validateRequired("secretKey", secretKey); err != nil {
		return ClientConfig{}, err
	}
	parsed, err := ParseScope(scope)
	if err != nil {
		return ClientConfig{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureUnused(ctx, "name", name); err != nil {
		return ClientConfig{}, err
	}
	if err := r.ensureUnused(ctx, "clientId", clientID); err != nil {
		return ClientConfig{}, err
	}

	cfg := ClientConfig{
		Name:      name,
		ClientID:  clientID,
		SecretKey: secretKey,
		Scope:     parsed,
	}
	if err := r.records.AppendRecord(ctx, cfg); err != nil {
		return ClientConfig{}, err
	}

	logging.Info("Registry", "Added client %s (clientId %s, scope %s)", name, clientID, parsed)
	return cfg, nil
}

// ensureUnused fails with a ConflictError if identifier resolves to a client.
func (r *Registry) ensureUnused(ctx context.Context, field, identifier string) error {
	_, err := r.Get(ctx, identifier)
	switch {
	case err == nil:
		return &errdefs.ConflictError{Field: field, Value: identifier}
	case errdefs.IsNotFound(err):
		return nil
	default:
		return err
	}
}

// Get returns the first client whose name or client ID equals identifier.
func (r *Registry) Get(ctx context.Context, identifier string) (ClientConfig, error) {
	all, err := r.records.ReadAll(ctx)
	if err != nil {
		return ClientConfig{}, err
	}

	for _, c := range all {
		if c.Matches(identifier) {
			return c, nil
		}
	}
	return ClientConfig{}, &errdefs.NotFoundError{Kind: "client", Key: identifier, Location: r.Location()}
}

// List returns every client in registration order. An absent or empty
// registry is reported as a NotFoundError.
func (r *Registry) List(ctx context.Context) ([]ClientConfig, error) {
	all, err := r.records.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, &errdefs.NotFoundError{Kind: "client", Location: r.Location()}
	}
	return all, nil
}

// Delete removes the client registered under name.
//
// The client must resolve through Get. The rewrite then drops every record
// whose name equals the argument: passing a client ID resolves but removes
// nothing unless some client is also named that way.
func (r *Registry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.Get(ctx, name); err != nil {
		return err
	}

	if err := r.records.ReplaceAll(ctx, func(c ClientConfig) bool {
		return c.Name != name
	}); err != nil {
		return err
	}

	logging.Info("Registry", "Deleted client %s", name)
	return nil
}
