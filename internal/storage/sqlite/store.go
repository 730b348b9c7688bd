// Package sqlite implements storage.Backend on a SQLite database.
//
// All collections share one table; record order is the insertion order of
// the auto-increment id. The schema is managed with golang-migrate.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"coa/internal/errdefs"
	"coa/internal/storage"
	"coa/pkg/logging"

	_ "modernc.org/sqlite"
)

// Store is a storage.Backend backed by SQLite.
type Store struct {
	db  *sql.DB
	dsn string
}

var _ storage.Backend = (*Store)(nil)

// NewStore opens the database at dsn. Use ":memory:" for a throwaway store.
// Call ApplyMigrations before use, or use Open which does both.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &errdefs.IOError{Op: "open", Path: dsn, Err: err}
	}

	// A single connection serialises writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, &errdefs.IOError{Op: "open", Path: dsn, Err: err}
	}

	return &Store{db: db, dsn: dsn}, nil
}

// Open creates the parent directory of path, opens the database and applies
// migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, &errdefs.IOError{Op: "open", Path: path, Err: err}
		}
	}

	s, err := NewStore(path)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyMigrations(); err != nil {
		_ = s.Close()
		return nil, &errdefs.IOError{Op: "migrate", Path: path, Err: err}
	}

	logging.Debug("Storage", "Opened sqlite store at %s", path)
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Location returns a description of where the collection is stored.
func (s *Store) Location(collection string) string {
	return fmt.Sprintf("%s#%s", s.dsn, collection)
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// ReadAll returns the collection's records in insertion order.
func (s *Store) ReadAll(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM records WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, s.ioErr("read", collection, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, s.ioErr("read", collection, err)
		}
		out = append(out, body)
	}
	if err := rows.Err(); err != nil {
		return nil, s.ioErr("read", collection, err)
	}
	return out, nil
}

// AppendRecord inserts a record at the end of the collection.
func (s *Store) AppendRecord(ctx context.Context, collection string, record []byte) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO records (collection, body) VALUES (?, ?)`, collection, record); err != nil {
		return s.ioErr("append", collection, err)
	}
	return nil
}

type row struct {
	id   int64
	body []byte
}

// ReplaceAll deletes, inside one transaction, every record keep rejects.
func (s *Store) ReplaceAll(ctx context.Context, collection string, keep func([]byte) (bool, error)) error {
	var filterErr error

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, body FROM records WHERE collection = ? ORDER BY id`, collection)
		if err != nil {
			return err
		}

		var all []row
		for rows.Next() {
			var r row
			if err := rows.Scan(&r.id, &r.body); err != nil {
				_ = rows.Close()
				return err
			}
			all = append(all, r)
		}
		if err := rows.Close(); err != nil {
			return err
		}

		for _, r := range all {
			ok, err := keep(r.body)
			if err != nil {
				filterErr = err
				return err
			}
			if ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, r.id); err != nil {
				return err
			}
		}
		return nil
	})

	if filterErr != nil {
		return filterErr
	}
	if err != nil {
		return s.ioErr("replace", collection, err)
	}
	return nil
}

// Reset replaces the collection's contents inside one transaction.
func (s *Store) Reset(ctx context.Context, collection string, records ...[]byte) error {
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
			return err
		}
		for _, r := range records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (collection, body) VALUES (?, ?)`, collection, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.ioErr("reset", collection, err)
	}
	return nil
}

// Drop deletes every record of the collection.
func (s *Store) Drop(ctx context.Context, collection string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection)
	if err != nil {
		return false, s.ioErr("drop", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.ioErr("drop", collection, err)
	}
	return n > 0, nil
}

func (s *Store) ioErr(op, collection string, err error) error {
	return &errdefs.IOError{Op: op, Path: s.Location(collection), Err: err}
}
