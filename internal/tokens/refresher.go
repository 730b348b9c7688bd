package tokens

import (
	"context"
	"fmt"

	"coa/internal/oauth"
	"coa/internal/registry"
	"coa/pkg/logging"

	"golang.org/x/sync/singleflight"
)

// ClientResolver looks up a registered client by name or client ID.
type ClientResolver interface {
	Get(ctx context.Context, identifier string) (registry.ClientConfig, error)
}

// Exchanger performs a grant against the token endpoint.
type Exchanger interface {
	Exchange(ctx context.Context, grant oauth.Grant, client registry.ClientConfig, creds oauth.Credentials) (*oauth.TokenResponse, error)
}

// Refresher renews stale access tokens with the refresh_token grant.
//
// Concurrent refreshes for the same client share one exchange. Failures are
// returned to the caller as they are; nothing is retried.
type Refresher struct {
	clients   ClientResolver
	exchanger Exchanger
	store     *Store

	group singleflight.Group
}

var _ AccessTokenRefresher = (*Refresher)(nil)

// NewRefresher creates a Refresher saving into store.
func NewRefresher(clients ClientResolver, exchanger Exchanger, store *Store) *Refresher {
	return &Refresher{
		clients:   clients,
		exchanger: exchanger,
		store:     store,
	}
}

// Refresh exchanges the client's refresh token for a new access token,
// saves it with the unchanged refresh token and returns it.
func (r *Refresher) Refresh(ctx context.Context, clientName string) (string, error) {
	// The shared refresh outlives any single caller; each caller stops
	// waiting when its own ctx is done.
	refreshCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(clientName, func() (interface{}, error) {
		return r.refresh(refreshCtx, clientName)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			logging.Debug("Tokens", "Shared in-flight refresh for %s", clientName)
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Refresher) refresh(ctx context.Context, clientName string) (string, error) {
	client, err := r.clients.Get(ctx, clientName)
	if err != nil {
		return "", err
	}

	current, err := r.store.Read(ctx, clientName)
	if err != nil {
		return "", err
	}

	resp, err := r.exchanger.Exchange(ctx, oauth.GrantRefreshToken, client, oauth.Credentials{
		RefreshToken: current.RefreshToken,
	})
	if err != nil {
		logging.Error("Tokens", err, "Refresh failed for %s", clientName)
		return "", fmt.Errorf("refresh access token for %s: %w", clientName, err)
	}

	saved, err := r.store.Save(ctx, clientName, current.RefreshToken, resp.AccessToken)
	if err != nil {
		return "", err
	}

	logging.Info("Tokens", "Refreshed access token for %s", clientName)
	return saved.AccessToken, nil
}
