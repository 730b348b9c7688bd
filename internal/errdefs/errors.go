// Package errdefs defines the error kinds shared by the credential engine.
//
// Every kind is a concrete type so callers can extract details with
// errors.As, and each implements Is so that errors.Is(err, &NotFoundError{})
// matches any error of that kind regardless of its fields.
package errdefs

import (
	"errors"
	"fmt"
)

// ValidationError indicates that a caller supplied missing or malformed input.
type ValidationError struct {
	// Field names the offending input (e.g. "name", "scope").
	Field string
	// Reason describes what is wrong with it.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is a ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ConflictError indicates that a uniqueness constraint would be violated.
type ConflictError struct {
	// Field is the unique attribute that collided ("name" or "clientId").
	Field string
	// Value is the colliding value.
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a client with %s %q already exists", e.Field, e.Value)
}

// Is reports whether target is a ConflictError.
func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// NotFoundError indicates that a lookup found nothing.
type NotFoundError struct {
	// Kind is the type of thing looked up ("client", "token").
	Kind string
	// Key is the identifier that was searched for. Empty for listings.
	Key string
	// Location optionally names where the lookup happened.
	Location string
}

func (e *NotFoundError) Error() string {
	msg := e.Kind
	if msg == "" {
		msg = "record"
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Key)
	}
	msg += " not found"
	if e.Location != "" {
		msg += " in " + e.Location
	}
	return msg
}

// Is reports whether target is a NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ServerError indicates that the OAuth2 provider rejected a request or
// returned an unusable response.
type ServerError struct {
	// Msg is the provider's error message, if it sent one.
	Msg string
	// StatusCode is the HTTP status of the response, 0 if none was received.
	StatusCode int
	// Err is the underlying transport or decode failure, if any.
	Err error
}

func (e *ServerError) Error() string {
	switch {
	case e.Msg != "" && e.StatusCode != 0:
		return fmt.Sprintf("server error (HTTP %d): %s", e.StatusCode, e.Msg)
	case e.Msg != "":
		return "server error: " + e.Msg
	case e.Err != nil:
		return "server error: " + e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("server error: unexpected HTTP %d", e.StatusCode)
	default:
		return "server error"
	}
}

// Is reports whether target is a ServerError.
func (e *ServerError) Is(target error) bool {
	_, ok := target.(*ServerError)
	return ok
}

// Unwrap returns the underlying cause.
func (e *ServerError) Unwrap() error {
	return e.Err
}

// PortInUseError indicates that the local callback listener could not bind.
type PortInUseError struct {
	Port int
	Err  error
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("callback port %d is already in use (is another login pending?): %v", e.Port, e.Err)
}

// Is reports whether target is a PortInUseError.
func (e *PortInUseError) Is(target error) bool {
	_, ok := target.(*PortInUseError)
	return ok
}

// Unwrap returns the underlying bind error.
func (e *PortInUseError) Unwrap() error {
	return e.Err
}

// IOError indicates that persistent storage could not be read or written.
type IOError struct {
	// Op is the storage operation that failed ("read", "append", "replace"...).
	Op string
	// Path is the file or collection involved.
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

// Is reports whether target is an IOError.
func (e *IOError) Is(target error) bool {
	_, ok := target.(*IOError)
	return ok
}

// Unwrap returns the underlying I/O error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	return errors.Is(err, &ValidationError{})
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	return errors.Is(err, &ConflictError{})
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, &NotFoundError{})
}

// IsServer reports whether err is or wraps a ServerError.
func IsServer(err error) bool {
	return errors.Is(err, &ServerError{})
}

// IsPortInUse reports whether err is or wraps a PortInUseError.
func IsPortInUse(err error) bool {
	return errors.Is(err, &PortInUseError{})
}

// IsIO reports whether err is or wraps an IOError.
func IsIO(err error) bool {
	return errors.Is(err, &IOError{})
}
