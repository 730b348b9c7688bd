package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coa/internal/errdefs"
	"coa/internal/registry"
	pkgstrings "coa/pkg/strings"

	"golang.org/x/oauth2"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a token response is read.
	maxResponseBytes = 1 << 20
)

// Endpoints locates the provider and the local redirect handler.
type Endpoints struct {
	// AuthorizeURL is opened in the browser to obtain a code.
	AuthorizeURL string
	// TokenURL receives the grant POSTs.
	TokenURL string
	// CallbackBase is the redirect URI without its client_id query.
	CallbackBase string
}

// Client performs the authorization_code and refresh_token exchanges
// against the provider's token endpoint.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures the OAuth client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new OAuth client.
func NewClient(endpoints Endpoints, opts ...ClientOption) *Client {
	c := &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RedirectURI returns the redirect URI registered for a client:
// the callback base with the client ID as query parameter.
func (c *Client) RedirectURI(clientID string) string {
	return c.endpoints.CallbackBase + "?client_id=" + url.QueryEscape(clientID)
}

// AuthorizeURL builds the URL the user opens to authorize client.
func (c *Client) AuthorizeURL(client registry.ClientConfig) string {
	conf := &oauth2.Config{
		ClientID: client.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.endpoints.AuthorizeURL,
			TokenURL: c.endpoints.TokenURL,
		},
		RedirectURL: c.RedirectURI(client.ClientID),
		Scopes:      client.Scope.Scopes(),
	}

	// The provider expects grant_type on the authorize request as well.
	return conf.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("grant_type", string(GrantAuthorizationCode)),
	)
}

// Exchange performs one grant against the token endpoint.
//
// For GrantAuthorizationCode the response must carry a refresh token; for
// GrantRefreshToken it must carry an access token. Otherwise a ServerError
// holding the provider's message is returned. Transport and decoding
// failures are ServerErrors too.
func (c *Client) Exchange(ctx context.Context, grant Grant, client registry.ClientConfig, creds Credentials) (*TokenResponse, error) {
	if err := grant.Validate(); err != nil {
		return nil, err
	}

	data := url.Values{
		"client_id":     {client.ClientID},
		"client_secret": {client.SecretKey},
		"grant_type":    {string(grant)},
	}

	switch grant {
	case GrantAuthorizationCode:
		if creds.Code == "" {
			return nil, &errdefs.ValidationError{Field: "code", Reason: "must not be empty"}
		}
		data.Set("code", creds.Code)
		data.Set("redirect_uri", c.RedirectURI(client.ClientID))
		data.Set("access_type", "offline")
	case GrantRefreshToken:
		if creds.RefreshToken == "" {
			return nil, &errdefs.ValidationError{Field: "refresh_token", Reason: "must not be empty"}
		}
		data.Set("refresh_token", creds.RefreshToken)
	}

	c.logger.Debug("Requesting token",
		"grant_type", grant,
		"client", client.Name,
		"endpoint", c.endpoints.TokenURL)

	resp, err := c.doTokenRequest(ctx, data)
	if err != nil {
		return nil, err
	}

	switch grant {
	case GrantAuthorizationCode:
		if resp.RefreshToken == "" {
			return nil, c.missingField(client, grant, "refresh_token", resp)
		}
	case GrantRefreshToken:
		if resp.AccessToken == "" {
			return nil, c.missingField(client, grant, "access_token", resp)
		}
	}

	c.logger.Info("Token exchange succeeded",
		"grant_type", grant,
		"client", client.Name)
	return &resp.TokenResponse, nil
}

func (c *Client) missingField(client registry.ClientConfig, grant Grant, field string, resp *tokenResult) error {
	msg := resp.message()
	if msg == "" {
		msg = fmt.Sprintf("response has no %s", field)
	}
	c.logger.Warn("Token exchange rejected",
		"grant_type", grant,
		"client", client.Name,
		"status", resp.status,
		"msg", msg)
	return &errdefs.ServerError{Msg: msg, StatusCode: resp.status}
}

type tokenResult struct {
	TokenResponse
	status int
}

// doTokenRequest performs a token endpoint request and decodes its body.
func (c *Client) doTokenRequest(ctx context.Context, data url.Values) (*tokenResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &errdefs.ServerError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errdefs.ServerError{Err: fmt.Errorf("token request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &errdefs.ServerError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read token response: %w", err)}
	}

	result := &tokenResult{status: resp.StatusCode}
	if err := json.Unmarshal(body, &result.TokenResponse); err != nil {
		c.logger.Debug("Token response is not JSON",
			"status", resp.StatusCode,
			"body", pkgstrings.Truncate(string(body), pkgstrings.DefaultMessageMaxLen))
		return nil, &errdefs.ServerError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse token response: %w", err)}
	}

	return result, nil
}
