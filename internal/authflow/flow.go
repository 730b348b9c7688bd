package authflow

import (
	"context"
	"errors"
	"sync"

	"coa/internal/tokens"
)

// State is the lifecycle position of a Flow.
type State int

const (
	StateIdle State = iota
	StateAwaitingRedirect
	StateExchanging
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingRedirect:
		return "AwaitingRedirect"
	case StateExchanging:
		return "Exchanging"
	case StateComplete:
		return "Complete"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// ErrFlowClosed is the failure of a flow closed before its redirect arrived.
var ErrFlowClosed = errors.New("authorization flow closed before the redirect arrived")

// Flow is a handle on one in-flight authorization.
type Flow struct {
	// ID correlates the flow's log lines.
	ID string
	// ClientName is the registered name the tokens are saved under.
	ClientName string
	// ClientID is the provider's client identifier.
	ClientID string
	// AuthURL is the URL the user has to visit.
	AuthURL string

	server  *CallbackServer
	closeCh chan struct{}
	done    chan struct{}

	mu        sync.RWMutex
	state     State
	record    tokens.Record
	err       error
	closeOnce sync.Once
}

func newFlow(id, clientName, clientID, authURL string, server *CallbackServer) *Flow {
	return &Flow{
		ID:         id,
		ClientName: clientName,
		ClientID:   clientID,
		AuthURL:    authURL,
		server:     server,
		closeCh:    make(chan struct{}),
		done:       make(chan struct{}),
		state:      StateAwaitingRedirect,
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Done is closed once the flow reaches Complete or Failed.
func (f *Flow) Done() <-chan struct{} {
	return f.done
}

// Err returns the failure of a Failed flow, nil otherwise.
func (f *Flow) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// Wait blocks until the flow finishes or ctx is done. Cancelling ctx only
// stops waiting; the flow keeps listening until Close is called.
func (f *Flow) Wait(ctx context.Context) (tokens.Record, error) {
	select {
	case <-f.done:
		f.mu.RLock()
		defer f.mu.RUnlock()
		return f.record, f.err
	case <-ctx.Done():
		return tokens.Record{}, ctx.Err()
	}
}

// Close releases the callback listener. A flow still awaiting its redirect
// fails with ErrFlowClosed; a flow already exchanging runs to completion.
func (f *Flow) Close() {
	f.closeOnce.Do(func() {
		close(f.closeCh)
		f.server.Stop()
	})
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Terminal() {
		f.state = s
	}
}

func (f *Flow) complete(rec tokens.Record) {
	f.mu.Lock()
	f.state = StateComplete
	f.record = rec
	f.mu.Unlock()
	close(f.done)
}

func (f *Flow) fail(err error) {
	f.mu.Lock()
	f.state = StateFailed
	f.err = err
	f.mu.Unlock()
	close(f.done)
}
