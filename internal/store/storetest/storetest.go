// Package storetest builds throwaway Open WebUI databases for tests.
package storetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Schema mirrors the columns of the Open WebUI tables read by the janitor.
const Schema = `
CREATE TABLE chat (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	title TEXT,
	chat TEXT,
	created_at INTEGER,
	updated_at INTEGER NOT NULL,
	archived INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE file (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	filename TEXT,
	meta TEXT,
	created_at INTEGER
);
CREATE TABLE document (
	collection_name TEXT,
	name TEXT,
	title TEXT,
	filename TEXT,
	content TEXT,
	user_id TEXT,
	timestamp INTEGER
);
`

// DB is a database file seeded by a test.
type DB struct {
	t    *testing.T
	Path string
	db   *sql.DB
}

// New creates a database with the full schema in a temporary directory.
func New(t *testing.T) *DB {
	t.Helper()
	return NewWithSchema(t, Schema)
}

// NewWithSchema creates a database in a temporary directory using schema.
func NewWithSchema(t *testing.T, schema string) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "webui.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if schema != "" {
		if _, err := db.Exec(schema); err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}
	return &DB{t: t, Path: path, db: db}
}

// Chat inserts a chat row. payload is stored as given; use ChatJSON to build one.
func (d *DB) Chat(id, payload string, updatedAt int64, archived bool) {
	d.t.Helper()
	arch := 0
	if archived {
		arch = 1
	}
	d.exec("INSERT INTO chat (id, chat, updated_at, archived) VALUES (?, ?, ?, ?)", id, payload, updatedAt, arch)
}

// NullChat inserts a chat row with a NULL payload.
func (d *DB) NullChat(id string, updatedAt int64) {
	d.t.Helper()
	d.exec("INSERT INTO chat (id, chat, updated_at, archived) VALUES (?, NULL, ?, 0)", id, updatedAt)
}

// File inserts a file row.
func (d *DB) File(id, filename string) {
	d.t.Helper()
	d.exec("INSERT INTO file (id, filename) VALUES (?, ?)", id, filename)
}

// Document inserts a document row.
func (d *DB) Document(filename string) {
	d.t.Helper()
	d.exec("INSERT INTO document (filename) VALUES (?)", filename)
}

// IDs returns the sorted ids of table.
func (d *DB) IDs(table string) []string {
	d.t.Helper()
	rows, err := d.db.Query("SELECT id FROM " + table + " ORDER BY id")
	if err != nil {
		d.t.Fatalf("failed to query %s: %v", table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			d.t.Fatalf("failed to scan %s id: %v", table, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func (d *DB) exec(query string, args ...any) {
	d.t.Helper()
	if _, err := d.db.Exec(query, args...); err != nil {
		d.t.Fatalf("failed to exec %q: %v", query, err)
	}
}
