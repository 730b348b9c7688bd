// Package storage defines the record persistence used by the client registry
// and the token store.
//
// A Backend stores ordered, opaque records grouped in named collections.
// Collection adds typed YAML encoding on top. Two backends exist: file (one
// YAML document stream per collection) and sqlite.
package storage

import (
	"context"
)

// Backend persists ordered records per named collection.
//
// A record is a single encoded YAML document. Backends may normalise its
// formatting but preserve its content.
//
// Reading a collection that was never written, or that holds no records,
// returns an empty slice and no error. All methods are safe for concurrent use
// within one process; ReplaceAll and Reset are atomic with respect to readers
// of the same Backend. There is no cross-process locking.
type Backend interface {
	// ReadAll returns every record of the collection in storage order.
	ReadAll(ctx context.Context, collection string) ([][]byte, error)

	// AppendRecord adds a record at the end of the collection, creating the
	// collection if needed.
	AppendRecord(ctx context.Context, collection string, record []byte) error

	// ReplaceAll rewrites the collection keeping, in order, only the records
	// for which keep returns true. An error from keep aborts the rewrite and
	// leaves the collection untouched.
	ReplaceAll(ctx context.Context, collection string, keep func(record []byte) (bool, error)) error

	// Reset discards the collection and recreates it holding exactly records.
	Reset(ctx context.Context, collection string, records ...[]byte) error

	// Drop removes the collection. It reports whether anything was removed.
	Drop(ctx context.Context, collection string) (bool, error)

	// Location describes where the collection lives, for messages and logs.
	Location(collection string) string

	Close() error
}
