package authflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"coa/internal/errdefs"
	"coa/internal/oauth"
	"coa/internal/registry"
	"coa/internal/storage/file"
	"coa/internal/tokens"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort returns a port nothing listens on right now.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

// tokenEndpoint is a fake token endpoint counting POSTs.
type tokenEndpoint struct {
	*httptest.Server

	mu    sync.Mutex
	forms []url.Values
}

func newTokenEndpoint(t *testing.T, status int, response map[string]any) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{}
	te.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		te.mu.Lock()
		te.forms = append(te.forms, r.PostForm)
		te.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(te.Close)
	return te
}

func (te *tokenEndpoint) requests() []url.Values {
	te.mu.Lock()
	defer te.mu.Unlock()
	return append([]url.Values(nil), te.forms...)
}

// recordingOpener remembers the URLs it was asked to open.
type recordingOpener struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (o *recordingOpener) Open(u string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, u)
	return o.err
}

func (o *recordingOpener) opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.urls...)
}

type fixture struct {
	port     int
	endpoint *tokenEndpoint
	registry *registry.Registry
	store    *tokens.Store
	opener   *recordingOpener
	coord    *Coordinator
}

func newFixture(t *testing.T, status int, response map[string]any) *fixture {
	t.Helper()
	dir := t.TempDir()
	backend := file.New(dir)

	reg := registry.New(backend)
	_, err := reg.Add(context.Background(), "demo", "id1", "secret1", "view_profile")
	require.NoError(t, err)

	port := freePort(t)
	endpoint := newTokenEndpoint(t, status, response)
	client := oauth.NewClient(oauth.Endpoints{
		AuthorizeURL: "https://accounts.example.org/oauth2/v1/auth",
		TokenURL:     endpoint.URL,
		CallbackBase: fmt.Sprintf("http://localhost:%d/callback", port),
	})
	store := tokens.NewStore(backend)
	opener := &recordingOpener{}

	coord := NewCoordinator(reg, client, store,
		WithCallback(port, "/callback"),
		WithBrowserOpener(opener.Open),
	)

	return &fixture{port: port, endpoint: endpoint, registry: reg, store: store, opener: opener, coord: coord}
}

func (f *fixture) callback(t *testing.T, query string) (int, string) {
	t.Helper()
	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/callback?%s", f.port, query))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func waitFlow(t *testing.T, flow *Flow) (tokens.Record, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, err := flow.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return rec, err
}

var successResponse = map[string]any{
	"access_token":  "a1",
	"refresh_token": "r1",
	"token_type":    "Bearer",
	"expires_in":    1800,
}

func TestCoordinator_Start(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)

	flow, err := f.coord.Start(context.Background(), "demo")
	require.NoError(t, err)
	defer flow.Close()

	assert.NotEmpty(t, flow.ID)
	assert.Equal(t, "demo", flow.ClientName)
	assert.Equal(t, "id1", flow.ClientID)
	assert.Equal(t, StateAwaitingRedirect, flow.State())
	assert.Nil(t, flow.Err())
	assert.Equal(t, []string{flow.AuthURL}, f.opener.opened())

	u, err := url.Parse(flow.AuthURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "id1", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/callback?client_id=id1", f.port), q.Get("redirect_uri"))

	select {
	case <-flow.Done():
		t.Fatal("flow finished without a redirect")
	default:
	}
}

func TestCoordinator_Start_ResolvesByClientID(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)

	flow, err := f.coord.Start(context.Background(), "id1")
	require.NoError(t, err)
	defer flow.Close()

	assert.Equal(t, "demo", flow.ClientName)
}

func TestCoordinator_Start_UnknownClient(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)

	flow, err := f.coord.Start(context.Background(), "nope")
	require.Error(t, err)
	assert.Nil(t, flow)
	assert.True(t, errdefs.IsNotFound(err))
	assert.Empty(t, f.opener.opened())

	// No listener was bound.
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", f.port))
	require.NoError(t, err)
	_ = l.Close()
}

func TestCoordinator_CodeCompletesFlow(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)

	flow, err := f.coord.Start(context.Background(), "demo")
	require.NoError(t, err)
	defer flow.Close()

	status, body := f.callback(t, "code=abc&client_id=id1")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, SuccessMessage, body)

	rec, err := waitFlow(t, flow)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, flow.State())
	assert.Equal(t, "demo", rec.ClientName)
	assert.Equal(t, "r1", rec.RefreshToken)
	assert.Equal(t, "a1", rec.AccessToken)

	reqs := f.endpoint.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "abc", reqs[0].Get("code"))
	assert.Equal(t, "authorization_code", reqs[0].Get("grant_type"))
	assert.Equal(t, "id1", reqs[0].Get("client_id"))

	stored, err := f.store.Read(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestCoordinator_EmptyCodeFailsWithoutExchange(t *testing.T) {
	for _, query := range []string{"code=&client_id=id1", "client_id=id1"} {
		t.Run(query, func(t *testing.T) {
			f := newFixture(t, http.StatusOK, successResponse)

			flow, err := f.coord.Start(context.Background(), "demo")
			require.NoError(t, err)
			defer flow.Close()

			status, body := f.callback(t, query)
			assert.Equal(t, http.StatusNotFound, status)
			assert.Equal(t, FailureMessage, body)

			_, err = waitFlow(t, flow)
			require.Error(t, err)
			assert.True(t, errdefs.IsServer(err))
			assert.Equal(t, StateFailed, flow.State())
			assert.Equal(t, err, flow.Err())
			assert.Empty(t, f.endpoint.requests())

			_, err = f.store.Read(context.Background(), "demo")
			assert.True(t, errdefs.IsNotFound(err))
		})
	}
}

func TestCoordinator_ExchangeFailure(t *testing.T) {
	f := newFixture(t, http.StatusBadRequest, map[string]any{"msg": "invalid code"})

	flow, err := f.coord.Start(context.Background(), "demo")
	require.NoError(t, err)
	defer flow.Close()

	status, _ := f.callback(t, "code=abc&client_id=id1")
	assert.Equal(t, http.StatusOK, status)

	_, err = waitFlow(t, flow)
	require.Error(t, err)
	assert.True(t, errdefs.IsServer(err))
	assert.Contains(t, err.Error(), "invalid code")
	assert.Equal(t, StateFailed, flow.State())
	assert.Len(t, f.endpoint.requests(), 1)
}

func TestCoordinator_SecondStartWhileAwaiting(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)

	first, err := f.coord.Start(context.Background(), "demo")
	require.NoError(t, err)
	defer first.Close()

	second, err := f.coord.Start(context.Background(), "demo")
	require.Error(t, err)
	assert.Nil(t, second)
	assert.True(t, errdefs.IsPortInUse(err))

	var portErr *errdefs.PortInUseError
	require.ErrorAs(t, err, &portErr)
	assert.Equal(t, f.port, portErr.Port)

	assert.Equal(t, StateAwaitingRedirect, first.State())
	assert.Len(t, f.opener.opened(), 1)

	// The first flow still completes normally.
	status, _ := f.callback(t, "code=abc&client_id=id1")
	assert.Equal(t, http.StatusOK, status)
	_, err = waitFlow(t, first)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, first.State())
}

func TestCoordinator_PortReleasedAfterCallback(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)

	flow, err := f.coord.Start(context.Background(), "demo")
	require.NoError(t, err)

	f.callback(t, "code=abc")
	_, err = waitFlow(t, flow)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		next, err := f.coord.Start(context.Background(), "demo")
		if err != nil {
			return false
		}
		next.Close()
		return true
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCoordinator_BrowserFailureKeepsWaiting(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)
	f.opener.err = fmt.Errorf("no display")

	flow, err := f.coord.Start(context.Background(), "demo")
	require.NoError(t, err)
	defer flow.Close()

	assert.Equal(t, StateAwaitingRedirect, flow.State())

	f.callback(t, "code=abc")
	_, err = waitFlow(t, flow)
	require.NoError(t, err)
}

func TestCoordinator_NilOpener(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)
	coord := NewCoordinator(f.registry, nil, f.store, WithCallback(f.port, "/callback"), WithBrowserOpener(nil))
	assert.Nil(t, coord.openBrowser)
}

func TestFlow_Close(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)

	flow, err := f.coord.Start(context.Background(), "demo")
	require.NoError(t, err)

	flow.Close()
	flow.Close()

	_, err = waitFlow(t, flow)
	assert.ErrorIs(t, err, ErrFlowClosed)
	assert.Equal(t, StateFailed, flow.State())
	assert.Empty(t, f.endpoint.requests())
}

func TestFlow_CloseAfterRedirectKeepsCode(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)
	client, err := f.registry.Get(context.Background(), "demo")
	require.NoError(t, err)

	// The redirect has been answered but run has not picked it up yet.
	server := NewCallbackServer(f.port, "/callback")
	server.resultCh <- CallbackResult{Code: "abc", ClientID: "id1"}
	flow := newFlow("flow-1", client.Name, client.ClientID, "https://accounts.example.org", server)
	flow.Close()

	f.coord.run(context.Background(), flow, client)

	rec, err := waitFlow(t, flow)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, flow.State())
	assert.Equal(t, "a1", rec.AccessToken)

	forms := f.endpoint.requests()
	require.Len(t, forms, 1)
	assert.Equal(t, "abc", forms[0].Get("code"))
}

func TestFlow_WaitContextCancelled(t *testing.T) {
	f := newFixture(t, http.StatusOK, successResponse)

	flow, err := f.coord.Start(context.Background(), "demo")
	require.NoError(t, err)
	defer flow.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = flow.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateAwaitingRedirect, flow.State())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
		terminal bool
	}{
		{StateIdle, "Idle", false},
		{StateAwaitingRedirect, "AwaitingRedirect", false},
		{StateExchanging, "Exchanging", false},
		{StateComplete, "Complete", true},
		{StateFailed, "Failed", true},
		{State(42), "Unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}
