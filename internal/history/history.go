// Package history records finished dump sessions so `uwpdumper history` can
// show what was dumped where.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/coconutbird/uwpdumper/internal/state"
)

// Entry is one recorded dump session.
type Entry struct {
	ID          int64
	PackageName string
	PID         uint32
	DumpPath    string
	Copied      int
	Failed      int
	Duration    time.Duration
	CreatedAt   time.Time
}

type Store struct {
	db *state.DB
}

// NewStore creates the store and ensures the table exists.
func NewStore(ctx context.Context, database *state.DB) (*Store, error) {
	if database == nil {
		return nil, nil
	}
	s := &Store{db: database}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

var defaultStore *Store

func DefaultStore(ctx context.Context) (*Store, error) {
	if defaultStore == nil {
		db, err := state.OpenDefault(ctx)
		if err != nil {
			return nil, err
		}
		defaultStore, err = NewStore(ctx, db)
		if err != nil {
			return nil, err
		}
	}
	return defaultStore, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS dump_history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	package_name TEXT NOT NULL,
	pid          INTEGER NOT NULL,
	dump_path    TEXT NOT NULL,
	copied       INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	created_at   INTEGER NOT NULL
);
`
	if _, err := s.db.Raw().ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}

// Add records a finished session.
func (s *Store) Add(ctx context.Context, e Entry) error {
	const stmt = `
INSERT INTO dump_history (package_name, pid, dump_path, copied, failed, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, strftime('%s','now'));
`
	if _, err := s.db.Raw().ExecContext(ctx, stmt,
		e.PackageName, e.PID, e.DumpPath, e.Copied, e.Failed, e.Duration.Milliseconds()); err != nil {
		return fmt.Errorf("history: add: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, package_name, pid, dump_path, copied, failed, duration_ms, created_at
FROM dump_history
ORDER BY id DESC
LIMIT ?;
`
	rows, err := s.db.Raw().QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &e.PackageName, &e.PID, &e.DumpPath,
			&e.Copied, &e.Failed, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes all but the newest keep entries.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	const stmt = `
DELETE FROM dump_history
WHERE id NOT IN (SELECT id FROM dump_history ORDER BY id DESC LIMIT ?);
`
	res, err := s.db.Raw().ExecContext(ctx, stmt, keep)
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
