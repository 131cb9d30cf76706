package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eralp/turbonote/internal/apperr"
	"github.com/eralp/turbonote/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	pinned     INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id);
CREATE INDEX IF NOT EXISTS idx_notes_owner_pinned ON notes(owner_id, pinned);
`

// SQLite implements Provider backed by a local SQLite database.
// Timestamps are stored as unix milliseconds so a pin change can leave
// updated_at bit-for-bit untouched.
type SQLite struct {
	conn *sql.DB
}

// Verify *SQLite satisfies Provider at compile time.
var _ Provider = (*SQLite)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Query returns every document owned by ownerID, optionally restricted
// to a pinned state.
func (s *SQLite) Query(ctx context.Context, ownerID string, pinned *bool) ([]models.Note, error) {
	q := `SELECT id, owner_id, title, content, pinned, updated_at FROM notes WHERE owner_id = ?`
	args := []any{ownerID}
	if pinned != nil {
		q += ` AND pinned = ?`
		args = append(args, boolToInt(*pinned))
	}
	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal("store query failed", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, apperr.Internal("store scan failed", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("store query failed", err)
	}
	return out, nil
}

// GetByID returns the document with the given id, or ErrNotFound.
func (s *SQLite) GetByID(ctx context.Context, id string) (*models.Note, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, title, content, pinned, updated_at FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Internal("store get failed", err)
	}
	return &n, nil
}

// Insert persists a new document under a freshly assigned id.
func (s *SQLite) Insert(ctx context.Context, fields InsertFields) (*models.Note, error) {
	id := uuid.NewString()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO notes (id, owner_id, title, content, pinned, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, fields.OwnerID, fields.Title, fields.Content, boolToInt(fields.Pinned), fields.UpdatedAt.UTC().UnixMilli())
	if err != nil {
		return nil, apperr.Internal("store insert failed", err)
	}
	return s.GetByID(ctx, id)
}

// UpdateFields merges the provided fields into the stored document.
// Nil fields keep their stored value.
func (s *SQLite) UpdateFields(ctx context.Context, id string, fields UpdateFields) error {
	var sets []string
	var args []any
	if fields.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *fields.Title)
	}
	if fields.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *fields.Content)
	}
	if fields.Pinned != nil {
		sets = append(sets, "pinned = ?")
		args = append(args, boolToInt(*fields.Pinned))
	}
	if fields.UpdatedAt != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, fields.UpdatedAt.UTC().UnixMilli())
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.conn.ExecContext(ctx,
		`UPDATE notes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return apperr.Internal("store update failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("store update failed", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteByID hard-removes the document.
func (s *SQLite) DeleteByID(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return apperr.Internal("store delete failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("store delete failed", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (models.Note, error) {
	var n models.Note
	var pinned int
	var updatedMilli int64
	if err := r.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &pinned, &updatedMilli); err != nil {
		return models.Note{}, err
	}
	n.Pinned = pinned != 0
	n.UpdatedAt = time.UnixMilli(updatedMilli).UTC()
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
