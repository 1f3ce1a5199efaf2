// Package journal records every remote mutation padlink performs against
// Etherpad, so operators can find remote entities left behind when a local
// write failed after a successful remote call.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const keyPrefix = "journal:"

// Outcome is the result of a journaled remote call.
type Outcome string

// Outcomes.
const (
	OutcomeOK       Outcome = "ok"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

// Entry is one remote mutation.
type Entry struct {
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
	Op       string    `json:"op"`        // Etherpad method, e.g. "deleteGroup"
	Entity   string    `json:"entity"`    // "group", "author" or "pad"
	EntityID string    `json:"entity_id"` // Local id, empty before the record exists
	ServerID string    `json:"server_id"`
	RemoteID string    `json:"remote_id,omitempty"`
	Outcome  Outcome   `json:"outcome"`
	Error    string    `json:"error,omitempty"`
}

// Recorder receives journal entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NoopRecorder discards entries.
type NoopRecorder struct{}

// Record is a no-op.
func (NoopRecorder) Record(context.Context, Entry) error { return nil }

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Entity   string
	EntityID string
	ServerID string
	Outcome  Outcome
	Limit    int
}

func (f Filter) match(e *Entry) bool {
	return (f.Entity == "" || f.Entity == e.Entity) &&
		(f.EntityID == "" || f.EntityID == e.EntityID) &&
		(f.ServerID == "" || f.ServerID == e.ServerID) &&
		(f.Outcome == "" || f.Outcome == e.Outcome)
}

// Journal is a Badger-backed append-only log of Entries.
type Journal struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ Recorder = (*Journal)(nil)

// Open opens or creates the journal at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Entries exist to survive crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	return open(opts, logger)
}

// OpenInMemory creates a journal that lives only as long as the process.
func OpenInMemory(logger *slog.Logger) (*Journal, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	logger.Info("journal opened", "path", opts.Dir, "in_memory", opts.InMemory)
	return &Journal{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Ping reports whether the journal is open.
func (j *Journal) Ping(context.Context) error {
	if j.db.IsClosed() {
		return errors.New("journal is closed")
	}
	return nil
}

// Record appends e, assigning ID and At when unset.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	e.At = e.At.UTC()

	data, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(e.At, e.ID), data)
	})
}

// List returns up to limit entries, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	return j.Find(ctx, Filter{Limit: limit})
}

// Find returns entries matching f, newest first.
func (j *Journal) Find(ctx context.Context, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	entries := make([]Entry, 0, min(limit, 64))
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek lands on the last key <= the seek key.
		for it.Seek(append([]byte(keyPrefix), 0xFF)); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var e Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode entry %s: %w", it.Item().Key(), err)
			}

			if !f.match(&e) {
				continue
			}
			entries = append(entries, e)
			if len(entries) == limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Prune deletes entries recorded before cutoff and returns how many went.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	var keys [][]byte
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		end := entryKey(cutoff.UTC(), "")
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if string(key) >= string(end) {
				break
			}
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	wb := j.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("delete entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush prune: %w", err)
	}

	if len(keys) > 0 {
		j.logger.Info("pruned journal", "entries", len(keys), "before", cutoff)
	}
	return len(keys), nil
}

// entryKey orders entries by time: the zero padded nanosecond timestamp
// sorts lexically in the same order as numerically.
func entryKey(at time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", keyPrefix, at.UnixNano(), id))
}
