// Package tokens persists per-client OAuth2 tokens and keeps the access
// token fresh.
//
// Each client has at most one Record, stored in its own collection so that
// saving never touches other clients. Saving always replaces the record
// wholesale. GetAccessToken serves the cached access token until it expires
// and then delegates to an AccessTokenRefresher.
package tokens

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"coa/internal/errdefs"
	"coa/internal/storage"
	"coa/pkg/logging"
)

// ErrNoRefresher is the cause reported when an expired access token cannot
// be refreshed because the Store has no AccessTokenRefresher.
var ErrNoRefresher = errors.New("access token expired and no refresher is configured")

// Store provides storage for client token records.
//
// SECURITY: Token values are never logged; audit events only name the client.
type Store struct {
	backend storage.Backend
	ttl     time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	refresher AccessTokenRefresher
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the lifetime assigned to saved access tokens.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithRefresher sets the refresher used by GetAccessToken.
func WithRefresher(r AccessTokenRefresher) StoreOption {
	return func(s *Store) {
		s.refresher = r
	}
}

// NewStore creates a token store on backend.
func NewStore(backend storage.Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRefresher sets the refresher used by GetAccessToken. The refresher
// itself saves through the Store, so it is usually attached after both
// have been built.
func (s *Store) SetRefresher(r AccessTokenRefresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

func (s *Store) getRefresher() AccessTokenRefresher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresher
}

func (s *Store) collection(clientName string) *storage.Collection[Record] {
	return storage.NewCollection[Record](s.backend, clientName+collectionSuffix)
}

// Location describes where the client's token record is kept.
func (s *Store) Location(clientName string) string {
	return s.collection(clientName).Location()
}

// Save replaces the client's token record. The access token expires TTL
// after now.
func (s *Store) Save(ctx context.Context, clientName, refreshToken, accessToken string) (Record, error) {
	rec := Record{
		ClientName:   clientName,
		RefreshToken: refreshToken,
		AccessToken:  accessToken,
		ExpiresAt:    s.now().Add(s.ttl),
	}

	coll := s.collection(clientName)
	if err := coll.Reset(ctx, rec); err != nil {
		slog.Warn("SECURITY_AUDIT: OAuth token storage failed",
			"event", "token_store_failed",
			"client", clientName,
			"location", coll.Location(),
			"error", err.Error(),
		)
		return Record{}, err
	}

	slog.Info("SECURITY_AUDIT: OAuth token stored",
		"event", "token_stored",
		"client", clientName,
		"expires_at", rec.ExpiresAt.Format(time.RFC3339),
		"has_refresh_token", refreshToken != "",
	)
	return rec, nil
}

// Read returns the client's token record, or a NotFoundError when the
// client has never been authorized.
func (s *Store) Read(ctx context.Context, clientName string) (Record, error) {
	coll := s.collection(clientName)
	records, err := coll.ReadAll(ctx)
	if err != nil {
		return Record{}, err
	}
	// Save keeps a single record; the last one wins if the file was edited.
	// Records naming another client are never returned.
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].ClientName == clientName {
			return records[i], nil
		}
	}
	if len(records) > 0 {
		logging.Warn("Tokens", "Ignoring token records in %s that belong to another client", coll.Location())
	}
	return Record{}, &errdefs.NotFoundError{Kind: "token", Key: clientName, Location: coll.Location()}
}

// GetAccessToken returns a usable access token for the client.
//
// The cached token is returned without any network call unless its expiry
// is strictly before now, in which case the refresher is invoked.
func (s *Store) GetAccessToken(ctx context.Context, clientName string) (string, error) {
	rec, err := s.Read(ctx, clientName)
	if err != nil {
		return "", err
	}

	if !rec.Expired(s.now()) {
		logging.Debug("Tokens", "Using cached access token for %s (expires %s)", clientName, rec.ExpiresAt.Format(time.RFC3339))
		return rec.AccessToken, nil
	}

	refresher := s.getRefresher()
	if refresher == nil {
		return "", &errdefs.ServerError{Err: ErrNoRefresher}
	}

	logging.Info("Tokens", "Access token for %s expired at %s, refreshing", clientName, rec.ExpiresAt.Format(time.RFC3339))
	return refresher.Refresh(ctx, clientName)
}

// Delete removes the client's token record.
func (s *Store) Delete(ctx context.Context, clientName string) error {
	coll := s.collection(clientName)
	removed, err := coll.Drop(ctx)
	if err != nil {
		slog.Warn("SECURITY_AUDIT: OAuth token deletion failed",
			"event", "token_delete_failed",
			"client", clientName,
			"error", err.Error(),
		)
		return err
	}
	if !removed {
		return &errdefs.NotFoundError{Kind: "token", Key: clientName, Location: coll.Location()}
	}

	slog.Info("SECURITY_AUDIT: OAuth token deleted",
		"event", "token_deleted",
		"client", clientName,
	)
	return nil
}
