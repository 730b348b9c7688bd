// Package file implements storage.Backend on plain YAML files.
//
// Each collection is one file, <dir>/<collection>.yaml, holding a stream of
// YAML documents separated by "---". The file starts with a comment header
// written when the file is created. Appends use O_APPEND; full rewrites go
// through a temporary file that is renamed over the original.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"coa/internal/errdefs"
	"coa/internal/storage"
	"coa/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	fileExt      = ".yaml"
	dirPerm      = 0o700
	filePerm     = 0o600
	docSeparator = "---\n"
)

// Store is a storage.Backend writing one YAML stream file per collection.
type Store struct {
	mu  sync.RWMutex
	dir string
}

var _ storage.Backend = (*Store)(nil)

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Location returns the path of the collection's file.
func (s *Store) Location(collection string) string {
	return s.path(collection)
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, escapeName(collection)+fileExt)
}

// escapeName maps a collection name onto a file name. Every byte outside
// [a-z0-9._-] is written as %XX, so distinct names never share a file.
// Upper-case letters are escaped too: names differing only in case must
// stay apart on case-insensitive file systems.
func escapeName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isPlainNameByte(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isPlainNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-':
		return true
	}
	return false
}

func header(collection string) string {
	return fmt.Sprintf("# coa %s records. Each YAML document below is one record.\n", escapeName(collection))
}

// ReadAll returns the collection's records; a missing file reads as empty.
func (s *Store) ReadAll(ctx context.Context, collection string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readLocked(collection)
}

func (s *Store) readLocked(collection string) ([][]byte, error) {
	path := s.path(collection)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &errdefs.IOError{Op: "read", Path: path, Err: err}
	}

	records, err := splitDocuments(data)
	if err != nil {
		return nil, &errdefs.IOError{Op: "parse", Path: path, Err: err}
	}
	return records, nil
}

// splitDocuments decodes a YAML stream and re-encodes each non-empty
// document on its own, without comments.
func splitDocuments(data []byte) ([][]byte, error) {
	var records [][]byte

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isEmptyDocument(&doc) {
			continue
		}

		content := doc.Content[0]
		stripComments(content)
		b, err := yaml.Marshal(content)
		if err != nil {
			return nil, err
		}
		records = append(records, b)
	}

	return records, nil
}

func isEmptyDocument(doc *yaml.Node) bool {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return true
	}
	c := doc.Content[0]
	return c.Kind == yaml.ScalarNode && c.Tag == "!!null"
}

func stripComments(n *yaml.Node) {
	n.HeadComment, n.LineComment, n.FootComment = "", "", ""
	for _, c := range n.Content {
		stripComments(c)
	}
}

// AppendRecord appends one document, writing the header if the file is new.
func (s *Store) AppendRecord(ctx context.Context, collection string, record []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(collection)
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return &errdefs.IOError{Op: "append", Path: s.dir, Err: err}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return &errdefs.IOError{Op: "append", Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return &errdefs.IOError{Op: "append", Path: path, Err: err}
	}

	var buf bytes.Buffer
	if info.Size() == 0 {
		buf.WriteString(header(collection))
	}
	writeDocument(&buf, record)

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return &errdefs.IOError{Op: "append", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &errdefs.IOError{Op: "append", Path: path, Err: err}
	}

	logging.Debug("Storage", "Appended record to %s", path)
	return nil
}

// ReplaceAll rewrites the file with the records keep accepts.
// A collection that does not exist is left absent.
func (s *Store) ReplaceAll(ctx context.Context, collection string, keep func([]byte) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(collection)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	records, err := s.readLocked(collection)
	if err != nil {
		return err
	}

	kept := make([][]byte, 0, len(records))
	for _, r := range records {
		ok, err := keep(r)
		if err != nil {
			return err
		}
		if ok {
			kept = append(kept, r)
		}
	}

	if err := s.writeLocked(collection, kept); err != nil {
		return err
	}

	logging.Debug("Storage", "Rewrote %s keeping %d of %d records", path, len(kept), len(records))
	return nil
}

// Reset deletes the collection file and writes a new one holding records.
func (s *Store) Reset(ctx context.Context, collection string, records ...[]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(collection)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &errdefs.IOError{Op: "reset", Path: path, Err: err}
	}

	return s.writeLocked(collection, records)
}

// Drop deletes the collection file.
func (s *Store) Drop(ctx context.Context, collection string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(collection)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &errdefs.IOError{Op: "drop", Path: path, Err: err}
	}
	return true, nil
}

// Close is a no-op; files are not held open between calls.
func (s *Store) Close() error {
	return nil
}

// writeLocked atomically replaces the collection file with header + records.
func (s *Store) writeLocked(collection string, records [][]byte) error {
	path := s.path(collection)
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return &errdefs.IOError{Op: "write", Path: s.dir, Err: err}
	}

	var buf bytes.Buffer
	buf.WriteString(header(collection))
	for _, r := range records {
		writeDocument(&buf, r)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &errdefs.IOError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return &errdefs.IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &errdefs.IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return &errdefs.IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return &errdefs.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func writeDocument(buf *bytes.Buffer, record []byte) {
	buf.WriteString(docSeparator)
	buf.Write(record)
	if len(record) == 0 || record[len(record)-1] != '\n' {
		buf.WriteByte('\n')
	}
}
