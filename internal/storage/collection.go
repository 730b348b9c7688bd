package storage

import (
	"context"

	"coa/internal/errdefs"

	"gopkg.in/yaml.v3"
)

// Collection is a typed view over one Backend collection. Records are
// encoded as YAML documents.
type Collection[T any] struct {
	backend Backend
	name    string
}

// NewCollection returns a typed view of the named collection.
func NewCollection[T any](backend Backend, name string) *Collection[T] {
	return &Collection[T]{backend: backend, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Location describes where the collection is stored.
func (c *Collection[T]) Location() string {
	return c.backend.Location(c.name)
}

// ReadAll decodes every record in storage order.
func (c *Collection[T]) ReadAll(ctx context.Context) ([]T, error) {
	raw, err := c.backend.ReadAll(ctx, c.name)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for _, b := range raw {
		v, err := c.decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AppendRecord encodes v and appends it.
func (c *Collection[T]) AppendRecord(ctx context.Context, v T) error {
	b, err := c.encode(v)
	if err != nil {
		return err
	}
	return c.backend.AppendRecord(ctx, c.name, b)
}

// ReplaceAll keeps only the records for which keep returns true.
func (c *Collection[T]) ReplaceAll(ctx context.Context, keep func(T) bool) error {
	return c.backend.ReplaceAll(ctx, c.name, func(b []byte) (bool, error) {
		v, err := c.decode(b)
		if err != nil {
			return false, err
		}
		return keep(v), nil
	})
}

// Reset replaces the whole collection with records.
func (c *Collection[T]) Reset(ctx context.Context, records ...T) error {
	raw := make([][]byte, 0, len(records))
	for _, v := range records {
		b, err := c.encode(v)
		if err != nil {
			return err
		}
		raw = append(raw, b)
	}
	return c.backend.Reset(ctx, c.name, raw...)
}

// Drop removes the collection.
func (c *Collection[T]) Drop(ctx context.Context) (bool, error) {
	return c.backend.Drop(ctx, c.name)
}

func (c *Collection[T]) encode(v T) ([]byte, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, &errdefs.IOError{Op: "encode", Path: c.Location(), Err: err}
	}
	return b, nil
}

func (c *Collection[T]) decode(b []byte) (T, error) {
	var v T
	if err := yaml.Unmarshal(b, &v); err != nil {
		return v, &errdefs.IOError{Op: "decode", Path: c.Location(), Err: err}
	}
	return v, nil
}
