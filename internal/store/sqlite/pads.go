package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/store"
)

const padColumns = `id, created_at, updated_at, name, server_id, group_id`

func scanPad(row scanner) (*domain.Pad, error) {
	var (
		p                    domain.Pad
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &createdAt, &updatedAt, &p.Name, &p.ServerID, &p.GroupID); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePad inserts a pad and indexes it.
// Returns store.ErrAlreadyExists if the group already holds a pad with this name.
func (s *Store) CreatePad(ctx context.Context, pad *domain.Pad) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pads (`+padColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		pad.ID,
		formatTime(pad.CreatedAt),
		formatTime(pad.UpdatedAt),
		pad.Name,
		pad.ServerID,
		pad.GroupID,
	)
	if err != nil {
		return mapWriteError(err, "pad")
	}

	if err := s.indexer().IndexPad(ctx, pad); err != nil {
		s.logger.Warn("failed to index pad", "pad_id", pad.ID, "error", err)
	}
	return nil
}

// GetPad retrieves a pad by id.
func (s *Store) GetPad(ctx context.Context, id string) (*domain.Pad, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+padColumns+` FROM pads WHERE id = ?`, id)
	p, err := scanPad(row)
	if err != nil {
		return nil, mapReadError(err, "pad")
	}
	return p, nil
}

// GetPadByName retrieves the pad called name in a group.
func (s *Store) GetPadByName(ctx context.Context, groupID, name string) (*domain.Pad, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+padColumns+` FROM pads WHERE group_id = ? AND name = ?`, groupID, name)
	p, err := scanPad(row)
	if err != nil {
		return nil, mapReadError(err, "pad")
	}
	return p, nil
}

// ListPads returns every pad.
func (s *Store) ListPads(ctx context.Context) ([]*domain.Pad, error) {
	return queryList(ctx, s.db, scanPad, `SELECT `+padColumns+` FROM pads ORDER BY created_at, id`)
}

// ListPadsByGroup returns the pads of a group.
func (s *Store) ListPadsByGroup(ctx context.Context, groupID string) ([]*domain.Pad, error) {
	return queryList(ctx, s.db, scanPad,
		`SELECT `+padColumns+` FROM pads WHERE group_id = ? ORDER BY created_at, id`, groupID)
}

// DeletePad removes a pad and drops it from the index.
func (s *Store) DeletePad(ctx context.Context, id string) error {
	if err := s.execDelete(ctx, "pad", `DELETE FROM pads WHERE id = ?`, id); err != nil {
		return err
	}
	s.unindexPads(ctx, []string{id})
	return nil
}

// padIDsWhere collects ids of pads about to disappear through a cascade.
func (s *Store) padIDsWhere(ctx context.Context, where string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM pads WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) unindexPads(ctx context.Context, ids []string) {
	idx := s.indexer()
	for _, id := range ids {
		if err := idx.DeletePad(ctx, id); err != nil {
			s.logger.Warn("failed to remove pad from index", "pad_id", id, "error", err)
		}
	}
}

// expectOneRow reports store.ErrNotFound when an update matched nothing.
func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(what + " not found")
	}
	return nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
