package sqlite

import (
	"context"
	"time"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/store"
)

const ownerGroupColumns = `id, created_at, updated_at, name`

func scanOwnerGroup(row scanner) (*domain.UserGroup, error) {
	var (
		g                    domain.UserGroup
		createdAt, updatedAt string
	)
	if err := row.Scan(&g.ID, &createdAt, &updatedAt, &g.Name); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.MemberIDs = []string{}
	return &g, nil
}

// CreateOwnerGroup inserts an owner group together with its initial members.
func (s *Store) CreateOwnerGroup(ctx context.Context, group *domain.UserGroup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO owner_groups (`+ownerGroupColumns+`) VALUES (?, ?, ?, ?)`,
		group.ID,
		formatTime(group.CreatedAt),
		formatTime(group.UpdatedAt),
		group.Name,
	)
	if err != nil {
		return mapWriteError(err, "owner group")
	}

	added := formatTime(time.Now())
	for _, userID := range group.MemberIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO owner_group_members (owner_group_id, user_id, added_at) VALUES (?, ?, ?)`,
			group.ID, userID, added,
		); err != nil {
			return mapWriteError(err, "owner group member")
		}
	}

	return tx.Commit()
}

// GetOwnerGroup retrieves an owner group with its member ids.
func (s *Store) GetOwnerGroup(ctx context.Context, id string) (*domain.UserGroup, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ownerGroupColumns+` FROM owner_groups WHERE id = ?`, id)
	g, err := scanOwnerGroup(row)
	if err != nil {
		return nil, mapReadError(err, "owner group")
	}
	if err := s.loadMembers(ctx, []*domain.UserGroup{g}); err != nil {
		return nil, err
	}
	return g, nil
}

// ListOwnerGroups returns all owner groups ordered by name.
func (s *Store) ListOwnerGroups(ctx context.Context) ([]*domain.UserGroup, error) {
	groups, err := queryList(ctx, s.db, scanOwnerGroup, `SELECT `+ownerGroupColumns+` FROM owner_groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	if err := s.loadMembers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListOwnerGroupsForUser returns the owner groups userID is a member of.
func (s *Store) ListOwnerGroupsForUser(ctx context.Context, userID string) ([]domain.OwnerGroup, error) {
	groups, err := queryList(ctx, s.db, scanOwnerGroup, `
		SELECT og.id, og.created_at, og.updated_at, og.name
		FROM owner_groups og
		JOIN owner_group_members m ON m.owner_group_id = og.id
		WHERE m.user_id = ?
		ORDER BY og.name`, userID)
	if err != nil {
		return nil, err
	}
	if err := s.loadMembers(ctx, groups); err != nil {
		return nil, err
	}

	out := make([]domain.OwnerGroup, len(groups))
	for i, g := range groups {
		out[i] = g
	}
	return out, nil
}

// AddOwnerGroupMember adds userID to the owner group. Adding an existing
// member is a no-op.
func (s *Store) AddOwnerGroupMember(ctx context.Context, ownerGroupID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO owner_group_members (owner_group_id, user_id, added_at) VALUES (?, ?, ?)`,
		ownerGroupID, userID, formatTime(time.Now()),
	)
	if err != nil {
		return mapWriteError(err, "owner group member")
	}
	return s.touch(ctx, "owner_groups", ownerGroupID)
}

// RemoveOwnerGroupMember removes userID from the owner group.
func (s *Store) RemoveOwnerGroupMember(ctx context.Context, ownerGroupID, userID string) error {
	if err := s.execDelete(ctx, "owner group member",
		`DELETE FROM owner_group_members WHERE owner_group_id = ? AND user_id = ?`, ownerGroupID, userID); err != nil {
		return err
	}
	return s.touch(ctx, "owner_groups", ownerGroupID)
}

// DeleteOwnerGroup removes an owner group. Its mapped groups and their pads
// cascade locally.
func (s *Store) DeleteOwnerGroup(ctx context.Context, id string) error {
	padIDs, err := s.padIDsWhere(ctx, "group_id IN (SELECT id FROM pad_groups WHERE owner_group_id = ?)", id)
	if err != nil {
		return err
	}
	if err := s.execDelete(ctx, "owner group", `DELETE FROM owner_groups WHERE id = ?`, id); err != nil {
		return err
	}
	s.unindexPads(ctx, padIDs)
	return nil
}

// loadMembers fills MemberIDs of every group in one query.
func (s *Store) loadMembers(ctx context.Context, groups []*domain.UserGroup) error {
	if len(groups) == 0 {
		return nil
	}
	byID := make(map[string]*domain.UserGroup, len(groups))
	ids := make([]any, 0, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
		ids = append(ids, g.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_group_id, user_id FROM owner_group_members
		WHERE owner_group_id IN (`+placeholders(len(ids))+`)
		ORDER BY added_at, user_id`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, userID string
		if err := rows.Scan(&groupID, &userID); err != nil {
			return err
		}
		if g, ok := byID[groupID]; ok {
			g.MemberIDs = append(g.MemberIDs, userID)
		}
	}
	return rows.Err()
}

// touch bumps updated_at of a row, reporting store.ErrNotFound if it is gone.
func (s *Store) touch(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE `+table+` SET updated_at = ? WHERE id = ?`, formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
