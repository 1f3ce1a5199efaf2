package sqlite

import (
	"context"

	"github.com/padlinkapp/padlink-server/internal/domain"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, email, display_name`

func scanUser(row scanner) (*domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &createdAt, &updatedAt, &u.Username, &u.Email, &u.DisplayName); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the id or username is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Username,
		user.Email,
		user.DisplayName,
	)
	return mapWriteError(err, "user")
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapReadError(err, "user")
	}
	return u, nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapReadError(err, "user")
	}
	return u, nil
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return queryList(ctx, s.db, scanUser, `SELECT `+userColumns+` FROM users ORDER BY username`)
}

// DeleteUser removes a user, their memberships and their author mappings.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.execDelete(ctx, "user", `DELETE FROM users WHERE id = ?`, id)
}
