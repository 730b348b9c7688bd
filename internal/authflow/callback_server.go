package authflow

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"coa/internal/errdefs"
	"coa/pkg/logging"
)

const (
	// SuccessMessage is the body returned when the redirect carried a code.
	SuccessMessage = "Generating code is successfully."

	// FailureMessage is the body returned when the redirect carried no code.
	FailureMessage = "Failed to generate code from Coursera."
)

// CallbackResult represents the query of the one redirect the server handled.
type CallbackResult struct {
	// Code is the authorization code from the provider. Empty means the
	// provider did not issue one.
	Code string

	// ClientID echoes the client_id embedded in the redirect URI.
	ClientID string
}

// CallbackServer is a single-shot local HTTP server for receiving the
// provider's redirect. The first request to the callback path closes the
// listener before anything else happens, so at most one callback is ever
// processed.
type CallbackServer struct {
	port     int
	path     string
	server   *http.Server
	listener net.Listener
	resultCh chan CallbackResult
	once     sync.Once
	stopOnce sync.Once
}

// NewCallbackServer creates a callback server for the given port and path.
func NewCallbackServer(port int, path string) *CallbackServer {
	return &CallbackServer{
		port:     port,
		path:     path,
		resultCh: make(chan CallbackResult, 1),
	}
}

// Start binds the listener and begins serving. A failed bind means another
// flow (or another program) holds the port and is reported as PortInUseError.
func (s *CallbackServer) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return &errdefs.PortInUseError{Port: s.port, Err: err}
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := s.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			logging.Error("AuthFlow", err, "Callback server on %s stopped", addr)
		}
	}()

	logging.Debug("AuthFlow", "Callback server listening on %s%s", addr, s.path)
	return nil
}

// Results delivers the single callback result.
func (s *CallbackServer) Results() <-chan CallbackResult {
	return s.resultCh
}

// Port returns the port the server was configured with.
func (s *CallbackServer) Port() int {
	return s.port
}

// handleCallback handles the redirect request.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		// Stop accepting before answering.
		_ = s.listener.Close()
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

// processCallback is called exactly once via sync.Once.
func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	query := r.URL.Query()
	result := CallbackResult{
		Code:     query.Get("code"),
		ClientID: query.Get("client_id"),
	}

	// The result is queued before the browser sees the response.
	select {
	case s.resultCh <- result:
	default:
	}

	if result.Code == "" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, FailureMessage)
	} else {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, SuccessMessage)
	}

	// Shutdown waits for this handler to return before closing the connection.
	go s.Stop()
}

// Stop gracefully shuts down the callback server. It is safe to call more
// than once.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}
