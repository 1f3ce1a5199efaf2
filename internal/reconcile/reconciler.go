// Package reconcile keeps local group, author and pad records in step with
// their Etherpad counterparts.
//
// Every hook performs its remote call before the caller persists or deletes
// the local record. Nothing here locks or spans a transaction: if the local
// write fails after a successful remote mutation the remote entity is left
// behind, and the journal entry written for the call is how an operator
// finds it.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/etherpad"
	"github.com/padlinkapp/padlink-server/internal/journal"
	"github.com/padlinkapp/padlink-server/internal/store"
)

// DefaultCallTimeout bounds a single remote call.
const DefaultCallTimeout = 10 * time.Second

// Remote is the subset of the Etherpad API the reconciler drives.
type Remote interface {
	CreateGroupIfNotExistsFor(ctx context.Context, mapper string) (string, error)
	CreateAuthorIfNotExistsFor(ctx context.Context, mapper, name string) (string, error)
	CreateGroupPad(ctx context.Context, groupID, padName string) (string, error)
	DeletePad(ctx context.Context, padID string) error
	DeleteGroup(ctx context.Context, groupID string) error
	GetPublicStatus(ctx context.Context, padID string) (bool, error)
	GetReadOnlyID(ctx context.Context, padID string) (string, error)
	CheckToken(ctx context.Context) error
}

// RemoteFactory returns the Remote bound to a server's URL and API key.
type RemoteFactory func(server *domain.Server) Remote

// PoolFactory adapts an etherpad.Pool to a RemoteFactory.
func PoolFactory(pool *etherpad.Pool) RemoteFactory {
	return func(server *domain.Server) Remote {
		return pool.ForServer(server)
	}
}

// Store is the persistence the reconciler reads and, during cascades, deletes from.
type Store interface {
	GetServer(ctx context.Context, id string) (*domain.Server, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	GetGroupByOwner(ctx context.Context, ownerGroupID, serverID string) (*domain.Group, error)
	ListGroupsByOwner(ctx context.Context, ownerGroupID string) ([]*domain.Group, error)
	ListOwnerGroupsForUser(ctx context.Context, userID string) ([]domain.OwnerGroup, error)
	ListPadsByGroup(ctx context.Context, groupID string) ([]*domain.Pad, error)
	AddAuthorToGroup(ctx context.Context, authorID, groupID string) error
	DeletePad(ctx context.Context, id string) error
	DeleteGroup(ctx context.Context, id string) error
}

// Config holds the reconciler's collaborators and policies.
type Config struct {
	// AuthorName picks the display name sent to Etherpad. Defaults to User.String.
	AuthorName func(*domain.User) string
	// CallTimeout bounds each remote call. Defaults to DefaultCallTimeout.
	CallTimeout time.Duration
	// Remotes returns the client for a server. Required.
	Remotes RemoteFactory
	// Recorder journals remote mutations. Defaults to a no-op.
	Recorder journal.Recorder
}

// Reconciler applies entity lifecycle events to Etherpad.
type Reconciler struct {
	store  Store
	cfg    Config
	logger *slog.Logger
}

// New creates a Reconciler. It fails with a configuration error when no
// RemoteFactory is set.
func New(s Store, cfg Config, logger *slog.Logger) (*Reconciler, error) {
	if cfg.Remotes == nil {
		return nil, domainerrors.Configuration("reconciler: no remote factory configured")
	}
	if cfg.AuthorName == nil {
		cfg.AuthorName = (*domain.User).String
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Recorder == nil {
		cfg.Recorder = journal.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: s, cfg: cfg, logger: logger}, nil
}

// PreCreateGroup maps g onto an Etherpad group and sets g.RemoteGroupID.
// On failure g is left unchanged and must not be persisted.
func (r *Reconciler) PreCreateGroup(ctx context.Context, g *domain.Group) error {
	server, err := r.server(ctx, g.ServerID)
	if err != nil {
		return err
	}

	remoteID, err := r.call(ctx, server, callInfo{op: "createGroupIfNotExistsFor", entity: "group", entityID: g.ID},
		func(ctx context.Context, remote Remote) (string, error) {
			return remote.CreateGroupIfNotExistsFor(ctx, g.OwnerGroupID)
		})
	if err != nil {
		return err
	}

	g.RemoteGroupID = remoteID
	r.logger.Info("group mapped",
		"owner_group_id", g.OwnerGroupID,
		"server_id", server.ID,
		"remote_group_id", remoteID,
	)
	return nil
}

// PreCreateAuthor maps a onto an Etherpad author and sets a.RemoteAuthorID.
// On failure a is left unchanged and must not be persisted.
func (r *Reconciler) PreCreateAuthor(ctx context.Context, a *domain.Author) error {
	server, err := r.server(ctx, a.ServerID)
	if err != nil {
		return err
	}
	user, err := r.store.GetUser(ctx, a.UserID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", a.UserID, store.ToDomain(err))
	}
	name := r.cfg.AuthorName(user)

	remoteID, err := r.call(ctx, server, callInfo{op: "createAuthorIfNotExistsFor", entity: "author", entityID: a.ID},
		func(ctx context.Context, remote Remote) (string, error) {
			return remote.CreateAuthorIfNotExistsFor(ctx, a.UserID, name)
		})
	if err != nil {
		return err
	}

	a.RemoteAuthorID = remoteID
	r.logger.Info("author mapped",
		"user_id", a.UserID,
		"server_id", server.ID,
		"remote_author_id", remoteID,
	)
	return nil
}

// PreCreatePad creates the remote group pad for p. The pad's group must be
// mapped already. A remote pad that already exists under the same id is
// adopted, since the local (group, name) uniqueness means no other local
// pad can claim it.
func (r *Reconciler) PreCreatePad(ctx context.Context, p *domain.Pad) error {
	group, server, err := r.padContext(ctx, p)
	if err != nil {
		return err
	}
	padID, err := p.PadID(group)
	if err != nil {
		return err
	}

	_, err = r.call(ctx, server, callInfo{op: "createGroupPad", entity: "pad", entityID: p.ID, remoteID: padID},
		func(ctx context.Context, remote Remote) (string, error) {
			return remote.CreateGroupPad(ctx, group.RemoteGroupID, p.Name)
		})
	switch {
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		r.logger.Warn("adopting existing remote pad", "pad_id", padID, "server_id", server.ID)
	case err != nil:
		return err
	}

	if p.ServerID == "" {
		p.ServerID = server.ID
	}
	r.logger.Info("pad created", "pad_id", padID, "server_id", server.ID)
	return nil
}

// PreDeletePad deletes the remote pad of p. A pad already missing remotely
// counts as deleted, and a pad of a never mapped group has nothing remote
// to delete.
func (r *Reconciler) PreDeletePad(ctx context.Context, p *domain.Pad) error {
	group, server, err := r.padContext(ctx, p)
	if err != nil {
		return err
	}
	return r.deleteRemotePad(ctx, server, group, p)
}

// PreDeleteGroup deletes every pad of g remotely and locally, then deletes
// the remote group. Any failure other than remote not-found stops the
// cascade and leaves g in place.
func (r *Reconciler) PreDeleteGroup(ctx context.Context, g *domain.Group) error {
	server, err := r.server(ctx, g.ServerID)
	if err != nil {
		return err
	}

	pads, err := r.store.ListPadsByGroup(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("list pads of group %s: %w", g.ID, err)
	}

	for _, p := range pads {
		if err := r.deleteRemotePad(ctx, server, g, p); err != nil {
			return err
		}
		if err := r.store.DeletePad(ctx, p.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete pad %s: %w", p.ID, err)
		}
	}

	if !g.IsMapped() {
		return nil
	}

	_, err = r.call(ctx, server, callInfo{op: "deleteGroup", entity: "group", entityID: g.ID, remoteID: g.RemoteGroupID},
		func(ctx context.Context, remote Remote) (string, error) {
			return "", remote.DeleteGroup(ctx, g.RemoteGroupID)
		})
	if err != nil && !errors.Is(err, domainerrors.ErrRemoteNotFound) {
		return err
	}

	r.logger.Info("group deleted",
		"group_id", g.ID,
		"remote_group_id", g.RemoteGroupID,
		"pads", len(pads),
	)
	return nil
}

// OnOwnerGroupDelete removes every group mapped for ownerGroupID, across all
// servers, remotely and locally. Call it before deleting the owner group.
func (r *Reconciler) OnOwnerGroupDelete(ctx context.Context, ownerGroupID string) error {
	groups, err := r.store.ListGroupsByOwner(ctx, ownerGroupID)
	if err != nil {
		return fmt.Errorf("list groups of owner %s: %w", ownerGroupID, err)
	}

	for _, g := range groups {
		if err := r.PreDeleteGroup(ctx, g); err != nil {
			return err
		}
		if err := r.store.DeleteGroup(ctx, g.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete group %s: %w", g.ID, err)
		}
	}
	return nil
}

// padContext loads the group and server a pad lives on.
func (r *Reconciler) padContext(ctx context.Context, p *domain.Pad) (*domain.Group, *domain.Server, error) {
	group, err := r.store.GetGroup(ctx, p.GroupID)
	if err != nil {
		return nil, nil, fmt.Errorf("load group %s: %w", p.GroupID, store.ToDomain(err))
	}
	if p.ServerID != "" && p.ServerID != group.ServerID {
		return nil, nil, domainerrors.InvalidStatef("pad %q is on server %s but its group is on %s", p.Name, p.ServerID, group.ServerID)
	}
	server, err := r.server(ctx, group.ServerID)
	if err != nil {
		return nil, nil, err
	}
	return group, server, nil
}

func (r *Reconciler) deleteRemotePad(ctx context.Context, server *domain.Server, group *domain.Group, p *domain.Pad) error {
	if !group.IsMapped() {
		return nil
	}
	padID, err := p.PadID(group)
	if err != nil {
		return err
	}

	_, err = r.call(ctx, server, callInfo{op: "deletePad", entity: "pad", entityID: p.ID, remoteID: padID},
		func(ctx context.Context, remote Remote) (string, error) {
			return "", remote.DeletePad(ctx, padID)
		})
	if err != nil && !errors.Is(err, domainerrors.ErrRemoteNotFound) {
		return err
	}
	return nil
}

func (r *Reconciler) server(ctx context.Context, id string) (*domain.Server, error) {
	server, err := r.store.GetServer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load server %s: %w", id, store.ToDomain(err))
	}
	return server, nil
}
