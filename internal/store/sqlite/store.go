// Package sqlite implements store.Store on top of SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/padlinkapp/padlink-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for padlink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu         sync.RWMutex
	padIndexer store.PadIndexer
}

var _ store.Store = (*Store)(nil)

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	// Connection-scoped pragmas go in the DSN so every pooled connection gets them.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{
		db:         db,
		logger:     logger,
		padIndexer: store.NewNoopPadIndexer(),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SetPadIndexer sets the indexer kept current on pad create and delete.
func (s *Store) SetPadIndexer(indexer store.PadIndexer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.padIndexer = indexer
}

func (s *Store) indexer() store.PadIndexer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.padIndexer
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// parseTimestamps fills created and updated from their stored form.
func parseTimestamps(createdAt, updatedAt string, created, updated *time.Time) error {
	var err error
	if *created, err = parseTime(createdAt); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if *updated, err = parseTime(updatedAt); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}

// mapWriteError converts constraint failures into store sentinels.
func mapWriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return store.ErrAlreadyExists.WithMessage(what + " already exists").WithCause(err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return store.ErrInvalidInput.WithMessage(what + " references a missing record").WithCause(err)
	default:
		return err
	}
}

// mapReadError converts sql.ErrNoRows into store.ErrNotFound.
func mapReadError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound.WithMessage(what + " not found")
	}
	return err
}

// execDelete runs a delete and reports store.ErrNotFound when nothing matched.
func (s *Store) execDelete(ctx context.Context, what, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(what + " not found")
	}
	return nil
}

// queryList runs a query and scans every row with scan.
func queryList[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
