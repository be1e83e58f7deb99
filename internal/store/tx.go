package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Chat is a row of the chat table. Payload is nil when the column is NULL.
type Chat struct {
	ID      string
	Payload []byte
}

// File is a row of the file table. Filename is empty when the column is NULL.
type File struct {
	ID       string
	Filename string
}

// Tx is the transaction of a single run.
type Tx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls the transaction back. Rolling back a finished transaction
// is a no-op.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// RequireTables returns ErrTableNotFound for the first missing table.
func (t *Tx) RequireTables(ctx context.Context, names ...string) error {
	for _, name := range names {
		var found string
		err := t.tx.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&found)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %q", ErrTableNotFound, name)
		}
		if err != nil {
			return fmt.Errorf("failed to check table %q: %w", name, err)
		}
	}
	return nil
}

// StaleChats returns non-archived chats last updated before threshold
// (seconds since epoch).
func (t *Tx) StaleChats(ctx context.Context, threshold int64) ([]Chat, error) {
	rows, err := t.tx.QueryContext(ctx,
		"SELECT id, chat FROM chat WHERE updated_at < ? AND archived != 1 ORDER BY id", threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to select stale chats: %w", err)
	}
	return scanChats(rows)
}

// Chats returns every chat, archived included.
func (t *Tx) Chats(ctx context.Context) ([]Chat, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT id, chat FROM chat ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to select chats: %w", err)
	}
	return scanChats(rows)
}

func scanChats(rows *sql.Rows) ([]Chat, error) {
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var id string
		var payload sql.NullString
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		c := Chat{ID: id}
		if payload.Valid {
			c.Payload = []byte(payload.String)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chats: %w", err)
	}
	return chats, nil
}

// Files returns every row of the file table.
func (t *Tx) Files(ctx context.Context) ([]File, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT id, filename FROM file ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	return scanFiles(rows)
}

// FilesByID returns the file rows whose id is in ids. Ids without a row are
// absent from the result.
func (t *Tx) FilesByID(ctx context.Context, ids []string) ([]File, error) {
	var files []File
	err := inChunks(ids, func(chunk []any) error {
		rows, err := t.tx.QueryContext(ctx,
			"SELECT id, filename FROM file WHERE id IN ("+placeholders(len(chunk))+") ORDER BY id", chunk...)
		if err != nil {
			return fmt.Errorf("failed to retrieve filenames from file table: %w", err)
		}
		part, err := scanFiles(rows)
		if err != nil {
			return err
		}
		files = append(files, part...)
		return nil
	})
	return files, err
}

func scanFiles(rows *sql.Rows) ([]File, error) {
	defer rows.Close()

	var files []File
	for rows.Next() {
		var id string
		var filename sql.NullString
		if err := rows.Scan(&id, &filename); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, File{ID: id, Filename: filename.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read files: %w", err)
	}
	return files, nil
}

// DocumentFilenames returns the non-empty filenames of the document table.
func (t *Tx) DocumentFilenames(ctx context.Context) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT filename FROM document WHERE filename IS NOT NULL AND filename != ''")
	if err != nil {
		return nil, fmt.Errorf("failed to select document filenames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan document filename: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document filenames: %w", err)
	}
	return names, nil
}

// DeleteFiles deletes the file rows with the given ids and returns the
// number of rows removed.
func (t *Tx) DeleteFiles(ctx context.Context, ids []string) (int64, error) {
	return t.deleteByID(ctx, TableFile, ids)
}

// DeleteChats deletes the chat rows with the given ids and returns the
// number of rows removed.
func (t *Tx) DeleteChats(ctx context.Context, ids []string) (int64, error) {
	return t.deleteByID(ctx, TableChat, ids)
}

func (t *Tx) deleteByID(ctx context.Context, table string, ids []string) (int64, error) {
	var total int64
	err := inChunks(ids, func(chunk []any) error {
		res, err := t.tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE id IN ("+placeholders(len(chunk))+")", chunk...)
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count deleted rows in %s: %w", table, err)
		}
		total += n
		return nil
	})
	return total, err
}

func inChunks(ids []string, fn func(chunk []any) error) error {
	for start := 0; start < len(ids); start += maxParams {
		end := min(start+maxParams, len(ids))
		chunk := make([]any, 0, end-start)
		for _, id := range ids[start:end] {
			chunk = append(chunk, id)
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
