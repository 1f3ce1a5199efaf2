package sqlite

import (
	"context"

	"github.com/padlinkapp/padlink-server/internal/domain"
)

// serverColumns must match the scan order in scanServer.
const serverColumns = `id, created_at, updated_at, title, base_url, api_key, notes`

func scanServer(row scanner) (*domain.Server, error) {
	var (
		srv                  domain.Server
		createdAt, updatedAt string
	)
	if err := row.Scan(&srv.ID, &createdAt, &updatedAt, &srv.Title, &srv.BaseURL, &srv.APIKey, &srv.Notes); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &srv.CreatedAt, &srv.UpdatedAt); err != nil {
		return nil, err
	}
	return &srv, nil
}

// CreateServer inserts a new server.
// Returns store.ErrAlreadyExists if the id or base URL is taken.
func (s *Store) CreateServer(ctx context.Context, srv *domain.Server) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO servers (`+serverColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		srv.ID,
		formatTime(srv.CreatedAt),
		formatTime(srv.UpdatedAt),
		srv.Title,
		srv.BaseURL,
		srv.APIKey,
		srv.Notes,
	)
	return mapWriteError(err, "server")
}

// GetServer retrieves a server by id.
func (s *Store) GetServer(ctx context.Context, id string) (*domain.Server, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+serverColumns+` FROM servers WHERE id = ?`, id)
	srv, err := scanServer(row)
	if err != nil {
		return nil, mapReadError(err, "server")
	}
	return srv, nil
}

// ListServers returns all servers ordered by title.
func (s *Store) ListServers(ctx context.Context) ([]*domain.Server, error) {
	return queryList(ctx, s.db, scanServer, `SELECT `+serverColumns+` FROM servers ORDER BY title, id`)
}

// UpdateServer rewrites the mutable server fields.
func (s *Store) UpdateServer(ctx context.Context, srv *domain.Server) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE servers SET updated_at = ?, title = ?, base_url = ?, api_key = ?, notes = ?
		WHERE id = ?`,
		formatTime(srv.UpdatedAt),
		srv.Title,
		srv.BaseURL,
		srv.APIKey,
		srv.Notes,
		srv.ID,
	)
	if err != nil {
		return mapWriteError(err, "server")
	}
	return expectOneRow(res, "server")
}

// DeleteServer removes a server and, by cascade, its groups, authors and pads.
func (s *Store) DeleteServer(ctx context.Context, id string) error {
	padIDs, err := s.padIDsWhere(ctx, "server_id = ?", id)
	if err != nil {
		return err
	}
	if err := s.execDelete(ctx, "server", `DELETE FROM servers WHERE id = ?`, id); err != nil {
		return err
	}
	s.unindexPads(ctx, padIDs)
	return nil
}
