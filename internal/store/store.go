// Package store provides access to the Open WebUI SQLite database.
// All reads and deletes of a run go through a single Tx: live runs take
// SQLite's reserved lock at BEGIN, dry runs use a read-only connection.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var (
	// ErrDatabaseNotFound is returned when the database file does not exist
	ErrDatabaseNotFound = errors.New("database file not found")

	// ErrTableNotFound is returned when a required table is missing
	ErrTableNotFound = errors.New("table does not exist")
)

// Table names used by the application.
const (
	TableChat     = "chat"
	TableFile     = "file"
	TableDocument = "document"
)

// maxParams bounds the number of bound parameters per IN (...) statement.
const maxParams = 500

// Options configures how the database is opened.
type Options struct {
	ReadOnly bool // open with mode=ro, no statement can modify the file
}

// Store wraps the SQLite database handle.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Open opens an existing database file. It never creates one.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, abs)
		}
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("database path %s is a directory", abs)
	}

	db, err := sql.Open("sqlite", dsn(abs, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps the run on a single SQLite handle.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db, path: abs, readOnly: opts.ReadOnly}, nil
}

func dsn(path string, opts Options) string {
	query := "_pragma=busy_timeout(5000)"
	if opts.ReadOnly {
		query = "mode=ro&" + query
	} else {
		query = "_txlock=immediate&" + query
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: query}
	return u.String()
}

// Path returns the absolute path of the database file.
func (s *Store) Path() string {
	return s.path
}

// ReadOnly reports whether the store was opened read-only.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin starts the transaction that covers every statement of a run.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}
