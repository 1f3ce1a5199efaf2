package sqlite

import (
	"context"

	"github.com/padlinkapp/padlink-server/internal/domain"
)

const groupColumns = `id, created_at, updated_at, owner_group_id, remote_group_id, server_id`

func scanGroup(row scanner) (*domain.Group, error) {
	var (
		g                    domain.Group
		createdAt, updatedAt string
	)
	if err := row.Scan(&g.ID, &createdAt, &updatedAt, &g.OwnerGroupID, &g.RemoteGroupID, &g.ServerID); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup inserts a mapped group.
// Returns store.ErrAlreadyExists if the owner group is already mapped on the server.
func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pad_groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		group.ID,
		formatTime(group.CreatedAt),
		formatTime(group.UpdatedAt),
		group.OwnerGroupID,
		group.RemoteGroupID,
		group.ServerID,
	)
	return mapWriteError(err, "group")
}

// GetGroup retrieves a mapped group by id.
func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM pad_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err != nil {
		return nil, mapReadError(err, "group")
	}
	return g, nil
}

// GetGroupByOwner retrieves the group mapping ownerGroupID on serverID.
func (s *Store) GetGroupByOwner(ctx context.Context, ownerGroupID, serverID string) (*domain.Group, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM pad_groups WHERE owner_group_id = ? AND server_id = ?`, ownerGroupID, serverID)
	g, err := scanGroup(row)
	if err != nil {
		return nil, mapReadError(err, "group")
	}
	return g, nil
}

// ListGroups returns every mapped group.
func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	return queryList(ctx, s.db, scanGroup, `SELECT `+groupColumns+` FROM pad_groups ORDER BY created_at, id`)
}

// ListGroupsByOwner returns the groups of an owner group across all servers.
func (s *Store) ListGroupsByOwner(ctx context.Context, ownerGroupID string) ([]*domain.Group, error) {
	return queryList(ctx, s.db, scanGroup,
		`SELECT `+groupColumns+` FROM pad_groups WHERE owner_group_id = ? ORDER BY created_at, id`, ownerGroupID)
}

// ListGroupsByServer returns the groups mapped on a server.
func (s *Store) ListGroupsByServer(ctx context.Context, serverID string) ([]*domain.Group, error) {
	return queryList(ctx, s.db, scanGroup,
		`SELECT `+groupColumns+` FROM pad_groups WHERE server_id = ? ORDER BY created_at, id`, serverID)
}

// UpdateGroup stores a new remote group id. Owner and server are immutable.
func (s *Store) UpdateGroup(ctx context.Context, group *domain.Group) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pad_groups SET updated_at = ?, remote_group_id = ? WHERE id = ?`,
		formatTime(group.UpdatedAt), group.RemoteGroupID, group.ID)
	if err != nil {
		return mapWriteError(err, "group")
	}
	return expectOneRow(res, "group")
}

// DeleteGroup removes a group; remaining pads and author links cascade.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	padIDs, err := s.padIDsWhere(ctx, "group_id = ?", id)
	if err != nil {
		return err
	}
	if err := s.execDelete(ctx, "group", `DELETE FROM pad_groups WHERE id = ?`, id); err != nil {
		return err
	}
	s.unindexPads(ctx, padIDs)
	return nil
}
