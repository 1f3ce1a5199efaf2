// Package store defines the persistence interface for padlink's identity records.
package store

import (
	"context"

	"github.com/padlinkapp/padlink-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Creates return ErrAlreadyExists on a uniqueness violation, lookups by id
// return ErrNotFound when the row is missing. Deletes cascade locally to
// dependent rows; remote cleanup is the caller's job and must happen first.
type Store interface {
	// Lifecycle
	Close() error
	SetPadIndexer(indexer PadIndexer)

	// Servers
	CreateServer(ctx context.Context, server *domain.Server) error
	GetServer(ctx context.Context, id string) (*domain.Server, error)
	ListServers(ctx context.Context) ([]*domain.Server, error)
	UpdateServer(ctx context.Context, server *domain.Server) error
	DeleteServer(ctx context.Context, id string) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id string) error

	// Owner groups
	CreateOwnerGroup(ctx context.Context, group *domain.UserGroup) error
	GetOwnerGroup(ctx context.Context, id string) (*domain.UserGroup, error)
	ListOwnerGroups(ctx context.Context) ([]*domain.UserGroup, error)
	ListOwnerGroupsForUser(ctx context.Context, userID string) ([]domain.OwnerGroup, error)
	AddOwnerGroupMember(ctx context.Context, ownerGroupID, userID string) error
	RemoveOwnerGroupMember(ctx context.Context, ownerGroupID, userID string) error
	DeleteOwnerGroup(ctx context.Context, id string) error

	// Mapped groups
	CreateGroup(ctx context.Context, group *domain.Group) error
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	GetGroupByOwner(ctx context.Context, ownerGroupID, serverID string) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]*domain.Group, error)
	ListGroupsByOwner(ctx context.Context, ownerGroupID string) ([]*domain.Group, error)
	ListGroupsByServer(ctx context.Context, serverID string) ([]*domain.Group, error)
	UpdateGroup(ctx context.Context, group *domain.Group) error
	DeleteGroup(ctx context.Context, id string) error

	// Authors
	CreateAuthor(ctx context.Context, author *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	GetAuthorByUser(ctx context.Context, userID, serverID string) (*domain.Author, error)
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
	UpdateAuthor(ctx context.Context, author *domain.Author) error
	AddAuthorToGroup(ctx context.Context, authorID, groupID string) error
	DeleteAuthor(ctx context.Context, id string) error

	// Pads
	CreatePad(ctx context.Context, pad *domain.Pad) error
	GetPad(ctx context.Context, id string) (*domain.Pad, error)
	GetPadByName(ctx context.Context, groupID, name string) (*domain.Pad, error)
	ListPads(ctx context.Context) ([]*domain.Pad, error)
	ListPadsByGroup(ctx context.Context, groupID string) ([]*domain.Pad, error)
	DeletePad(ctx context.Context, id string) error
}

// PadIndexer is the interface for keeping the pad search index current.
// Store uses it without depending on the search implementation.
type PadIndexer interface {
	IndexPad(ctx context.Context, pad *domain.Pad) error
	DeletePad(ctx context.Context, padID string) error
}

// NoopPadIndexer is a no-op implementation for testing.
type NoopPadIndexer struct{}

// IndexPad is a no-op.
func (NoopPadIndexer) IndexPad(context.Context, *domain.Pad) error { return nil }

// DeletePad is a no-op.
func (NoopPadIndexer) DeletePad(context.Context, string) error { return nil }

// NewNoopPadIndexer creates a new no-op pad indexer.
func NewNoopPadIndexer() PadIndexer {
	return NoopPadIndexer{}
}
