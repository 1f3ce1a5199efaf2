package sqlite

import (
	"context"

	"github.com/padlinkapp/padlink-server/internal/domain"
)

const authorColumns = `id, created_at, updated_at, user_id, remote_author_id, server_id`

func scanAuthor(row scanner) (*domain.Author, error) {
	var (
		a                    domain.Author
		createdAt, updatedAt string
	)
	if err := row.Scan(&a.ID, &createdAt, &updatedAt, &a.UserID, &a.RemoteAuthorID, &a.ServerID); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.GroupIDs = []string{}
	return &a, nil
}

// CreateAuthor inserts an author and its initial group links.
// Returns store.ErrAlreadyExists if the user already has an author on the server.
func (s *Store) CreateAuthor(ctx context.Context, author *domain.Author) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pad_authors (`+authorColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		author.ID,
		formatTime(author.CreatedAt),
		formatTime(author.UpdatedAt),
		author.UserID,
		author.RemoteAuthorID,
		author.ServerID,
	)
	if err != nil {
		return mapWriteError(err, "author")
	}

	for _, groupID := range author.GroupIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO author_groups (author_id, group_id) VALUES (?, ?)`, author.ID, groupID); err != nil {
			return mapWriteError(err, "author group")
		}
	}

	return tx.Commit()
}

// GetAuthor retrieves an author with its group ids.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+authorColumns+` FROM pad_authors WHERE id = ?`, id)
	a, err := scanAuthor(row)
	if err != nil {
		return nil, mapReadError(err, "author")
	}
	if err := s.loadAuthorGroups(ctx, []*domain.Author{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAuthorByUser retrieves the author of userID on serverID.
func (s *Store) GetAuthorByUser(ctx context.Context, userID, serverID string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM pad_authors WHERE user_id = ? AND server_id = ?`, userID, serverID)
	a, err := scanAuthor(row)
	if err != nil {
		return nil, mapReadError(err, "author")
	}
	if err := s.loadAuthorGroups(ctx, []*domain.Author{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAuthors returns every author with its group ids.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := queryList(ctx, s.db, scanAuthor, `SELECT `+authorColumns+` FROM pad_authors ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	if err := s.loadAuthorGroups(ctx, authors); err != nil {
		return nil, err
	}
	return authors, nil
}

// UpdateAuthor stores a new remote author id.
func (s *Store) UpdateAuthor(ctx context.Context, author *domain.Author) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pad_authors SET updated_at = ?, remote_author_id = ? WHERE id = ?`,
		formatTime(author.UpdatedAt), author.RemoteAuthorID, author.ID)
	if err != nil {
		return mapWriteError(err, "author")
	}
	return expectOneRow(res, "author")
}

// AddAuthorToGroup links an author to a group. Existing links are kept as is.
func (s *Store) AddAuthorToGroup(ctx context.Context, authorID, groupID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO author_groups (author_id, group_id) VALUES (?, ?)`, authorID, groupID)
	return mapWriteError(err, "author group")
}

// DeleteAuthor removes an author locally.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	return s.execDelete(ctx, "author", `DELETE FROM pad_authors WHERE id = ?`, id)
}

func (s *Store) loadAuthorGroups(ctx context.Context, authors []*domain.Author) error {
	if len(authors) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Author, len(authors))
	ids := make([]any, 0, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT author_id, group_id FROM author_groups
		WHERE author_id IN (`+placeholders(len(ids))+`)
		ORDER BY group_id`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var authorID, groupID string
		if err := rows.Scan(&authorID, &groupID); err != nil {
			return err
		}
		if a, ok := byID[authorID]; ok {
			a.GroupIDs = append(a.GroupIDs, groupID)
		}
	}
	return rows.Err()
}
