package authflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"coa/internal/config"
	"coa/internal/errdefs"
	"coa/internal/oauth"
	"coa/internal/registry"
	"coa/internal/tokens"
	"coa/pkg/logging"

	"github.com/google/uuid"
)

// ClientResolver looks up a registered client by name or client ID.
type ClientResolver interface {
	Get(ctx context.Context, identifier string) (registry.ClientConfig, error)
}

// Authorizer builds the authorize URL and redeems authorization codes.
type Authorizer interface {
	AuthorizeURL(client registry.ClientConfig) string
	Exchange(ctx context.Context, grant oauth.Grant, client registry.ClientConfig, creds oauth.Credentials) (*oauth.TokenResponse, error)
}

// TokenSaver persists the tokens obtained by a flow.
type TokenSaver interface {
	Save(ctx context.Context, clientName, refreshToken, accessToken string) (tokens.Record, error)
}

// Coordinator runs authorization code flows. Only one flow can await its
// redirect at a time because every flow binds the same callback port.
type Coordinator struct {
	clients    ClientResolver
	authorizer Authorizer
	tokens     TokenSaver

	port        int
	path        string
	openBrowser BrowserOpener
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCallback sets the local port and path the redirect is received on.
func WithCallback(port int, path string) Option {
	return func(c *Coordinator) {
		c.port = port
		c.path = path
	}
}

// WithBrowserOpener replaces OpenBrowser. A nil opener leaves opening the
// URL to the caller.
func WithBrowserOpener(opener BrowserOpener) Option {
	return func(c *Coordinator) {
		c.openBrowser = opener
	}
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(clients ClientResolver, authorizer Authorizer, saver TokenSaver, opts ...Option) *Coordinator {
	c := &Coordinator{
		clients:     clients,
		authorizer:  authorizer,
		tokens:      saver,
		port:        config.DefaultCallbackPort,
		path:        config.DefaultCallbackPath,
		openBrowser: OpenBrowser,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins an authorization for the named client and returns once the
// callback listener is bound. The returned Flow is AwaitingRedirect.
//
// Unknown clients and a busy callback port fail immediately without
// affecting any flow already in progress.
func (c *Coordinator) Start(ctx context.Context, clientName string) (*Flow, error) {
	client, err := c.clients.Get(ctx, clientName)
	if err != nil {
		return nil, err
	}

	authURL := c.authorizer.AuthorizeURL(client)

	server := NewCallbackServer(c.port, c.path)
	if err := server.Start(); err != nil {
		logging.Warn("AuthFlow", "Cannot start login for %s: %v", client.Name, err)
		return nil, err
	}

	flow := newFlow(uuid.NewString(), client.Name, client.ClientID, authURL, server)

	slog.Info("SECURITY_AUDIT: OAuth authorization started",
		"event", "authorization_started",
		"flow_id", flow.ID,
		"client", client.Name,
		"callback_port", server.Port(),
	)

	if c.openBrowser != nil {
		if err := c.openBrowser(authURL); err != nil {
			logging.Warn("AuthFlow", "Could not open browser, visit the URL manually: %v", err)
		}
	}

	go c.run(context.WithoutCancel(ctx), flow, client)

	return flow, nil
}

func (c *Coordinator) run(ctx context.Context, flow *Flow, client registry.ClientConfig) {
	var result CallbackResult
	select {
	case result = <-flow.server.Results():
	case <-flow.closeCh:
		// A redirect answered before Close still carries a usable code.
		select {
		case result = <-flow.server.Results():
		default:
			logging.Info("AuthFlow", "Flow %s for %s closed while awaiting redirect", flow.ID, client.Name)
			flow.fail(ErrFlowClosed)
			return
		}
	}

	if result.Code == "" {
		logging.Warn("AuthFlow", "Flow %s: redirect for %s carried no code", flow.ID, client.Name)
		c.failed(flow, &errdefs.ServerError{Msg: FailureMessage, StatusCode: http.StatusNotFound})
		return
	}
	if result.ClientID != "" && result.ClientID != client.ClientID {
		logging.Warn("AuthFlow", "Flow %s: redirect names client_id %q, continuing with %s", flow.ID, result.ClientID, client.Name)
	}

	flow.setState(StateExchanging)
	logging.Debug("AuthFlow", "Flow %s: exchanging authorization code for %s", flow.ID, client.Name)

	resp, err := c.authorizer.Exchange(ctx, oauth.GrantAuthorizationCode, client, oauth.Credentials{Code: result.Code})
	if err != nil {
		c.failed(flow, fmt.Errorf("exchange authorization code for %s: %w", client.Name, err))
		return
	}

	rec, err := c.tokens.Save(ctx, client.Name, resp.RefreshToken, resp.AccessToken)
	if err != nil {
		c.failed(flow, err)
		return
	}

	slog.Info("SECURITY_AUDIT: OAuth authorization completed",
		"event", "authorization_completed",
		"flow_id", flow.ID,
		"client", client.Name,
	)
	flow.complete(rec)
}

func (c *Coordinator) failed(flow *Flow, err error) {
	slog.Warn("SECURITY_AUDIT: OAuth authorization failed",
		"event", "authorization_failed",
		"flow_id", flow.ID,
		"client", flow.ClientName,
		"error", err.Error(),
	)
	flow.fail(err)
}
