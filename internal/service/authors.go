package service

import (
	"context"
	"log/slog"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/id"
	"github.com/padlinkapp/padlink-server/internal/store"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// CreateAuthorRequest maps a user onto an Etherpad server.
type CreateAuthorRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	ServerID string `json:"server_id" validate:"required"`
}

// AuthorService manages authors, the per-server mirrors of users.
type AuthorService struct {
	store      store.Store
	reconciler Reconciler
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(s store.Store, r Reconciler, v *validation.Validator, logger *slog.Logger) *AuthorService {
	return &AuthorService{store: s, reconciler: r, validator: v, logger: loggerOrDefault(logger)}
}

// Create maps the user on the server, persists the author and adds it to
// the groups of the user's owner groups on that server.
func (s *AuthorService) Create(ctx context.Context, req CreateAuthorRequest) (*domain.Author, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		return nil, storeErr(err, "get user %s", req.UserID)
	}

	authorID, err := newID(id.PrefixAuthor)
	if err != nil {
		return nil, err
	}
	author := &domain.Author{
		Record:   domain.Record{ID: authorID},
		UserID:   req.UserID,
		ServerID: req.ServerID,
	}
	if err := s.reconciler.PreCreateAuthor(ctx, author); err != nil {
		return nil, err
	}
	author.InitTimestamps()
	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, storeErr(err, "create author for user %s", req.UserID)
	}

	if _, err := s.reconciler.SyncAuthorGroups(ctx, author); err != nil {
		s.logger.Warn("group sync after author create failed", "author_id", author.ID, "error", err)
	}
	return author, nil
}

// Get returns an author by id.
func (s *AuthorService) Get(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, storeErr(err, "get author %s", authorID)
	}
	return author, nil
}

// List returns every author.
func (s *AuthorService) List(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, storeErr(err, "list authors")
	}
	return authors, nil
}

// Remap re-runs the remote mapping of an author, picking up a changed
// author name.
func (s *AuthorService) Remap(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}

	previous := author.RemoteAuthorID
	if err := s.reconciler.PreCreateAuthor(ctx, author); err != nil {
		return nil, err
	}
	if author.RemoteAuthorID == previous {
		return author, nil
	}

	author.Touch()
	if err := s.store.UpdateAuthor(ctx, author); err != nil {
		return nil, storeErr(err, "update author %s", authorID)
	}
	s.logger.Warn("author remapped",
		"author_id", author.ID,
		"previous_remote_author_id", previous,
		"remote_author_id", author.RemoteAuthorID,
	)
	return author, nil
}

// SyncGroups adds the author to any group it is missing from and returns
// the ids of the groups added.
func (s *AuthorService) SyncGroups(ctx context.Context, authorID string) ([]string, error) {
	author, err := s.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}
	added, err := s.reconciler.SyncAuthorGroups(ctx, author)
	if err != nil {
		return nil, err
	}
	if added == nil {
		added = []string{}
	}
	return added, nil
}

// Delete removes the local author only; Etherpad has no author delete.
func (s *AuthorService) Delete(ctx context.Context, authorID string) error {
	if err := s.store.DeleteAuthor(ctx, authorID); err != nil {
		return storeErr(err, "delete author %s", authorID)
	}
	s.logger.Info("author deleted locally", "author_id", authorID)
	return nil
}
