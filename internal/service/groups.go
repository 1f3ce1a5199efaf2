package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/id"
	"github.com/padlinkapp/padlink-server/internal/store"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// CreateGroupRequest maps a user group onto an Etherpad server.
type CreateGroupRequest struct {
	OwnerGroupID string `json:"owner_group_id" validate:"required"`
	ServerID     string `json:"server_id" validate:"required"`
}

// GroupFilter narrows List. Empty fields match everything.
type GroupFilter struct {
	OwnerGroupID string
	ServerID     string
}

// GroupService manages pad groups, the per-server mirrors of user groups.
type GroupService struct {
	store      store.Store
	reconciler Reconciler
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewGroupService creates a new group service.
func NewGroupService(s store.Store, r Reconciler, v *validation.Validator, logger *slog.Logger) *GroupService {
	return &GroupService{store: s, reconciler: r, validator: v, logger: loggerOrDefault(logger)}
}

// Create maps the user group on the server, persists the group and adds
// the members' existing authors on that server to it.
func (s *GroupService) Create(ctx context.Context, req CreateGroupRequest) (*domain.Group, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	owner, err := s.store.GetOwnerGroup(ctx, req.OwnerGroupID)
	if err != nil {
		return nil, storeErr(err, "get owner group %s", req.OwnerGroupID)
	}
	if _, err := s.store.GetServer(ctx, req.ServerID); err != nil {
		return nil, storeErr(err, "get server %s", req.ServerID)
	}
	if _, err := s.store.GetGroupByOwner(ctx, req.OwnerGroupID, req.ServerID); err == nil {
		return nil, domainerrors.AlreadyExistsf("owner group %s already has a group on server %s", req.OwnerGroupID, req.ServerID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr(err, "get group of owner %s", req.OwnerGroupID)
	}

	groupID, err := newID(id.PrefixGroup)
	if err != nil {
		return nil, err
	}
	group := &domain.Group{
		Record:       domain.Record{ID: groupID},
		OwnerGroupID: owner.ID,
		ServerID:     req.ServerID,
	}
	if err := s.reconciler.PreCreateGroup(ctx, group); err != nil {
		return nil, err
	}
	group.InitTimestamps()
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, storeErr(err, "create group for owner %s", owner.ID)
	}

	if err := s.syncMembers(ctx, owner, group.ServerID); err != nil {
		s.logger.Warn("member sync after group create failed", "group_id", group.ID, "error", err)
	}

	return group, nil
}

// syncMembers brings the authors of owner's members on serverID into their groups.
func (s *GroupService) syncMembers(ctx context.Context, owner *domain.UserGroup, serverID string) error {
	for _, userID := range owner.Members() {
		author, err := s.store.GetAuthorByUser(ctx, userID, serverID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return storeErr(err, "get author of user %s", userID)
		}
		if _, err := s.reconciler.SyncAuthorGroups(ctx, author); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a group by id.
func (s *GroupService) Get(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "get group %s", groupID)
	}
	return group, nil
}

// List returns groups matching filter.
func (s *GroupService) List(ctx context.Context, filter GroupFilter) ([]*domain.Group, error) {
	var (
		groups []*domain.Group
		err    error
	)
	switch {
	case filter.OwnerGroupID != "":
		groups, err = s.store.ListGroupsByOwner(ctx, filter.OwnerGroupID)
	case filter.ServerID != "":
		groups, err = s.store.ListGroupsByServer(ctx, filter.ServerID)
	default:
		groups, err = s.store.ListGroups(ctx)
	}
	if err != nil {
		return nil, storeErr(err, "list groups")
	}

	if filter.OwnerGroupID != "" && filter.ServerID != "" {
		kept := groups[:0]
		for _, g := range groups {
			if g.ServerID == filter.ServerID {
				kept = append(kept, g)
			}
		}
		groups = kept
	}
	return groups, nil
}

// Remap re-runs the remote mapping of a group. The remote call is
// idempotent, so a mapped group keeps its remote id unless Etherpad lost it.
func (s *GroupService) Remap(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	previous := group.RemoteGroupID
	if err := s.reconciler.PreCreateGroup(ctx, group); err != nil {
		return nil, err
	}
	if group.RemoteGroupID == previous {
		return group, nil
	}

	group.Touch()
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, storeErr(err, "update group %s", groupID)
	}
	s.logger.Warn("group remapped",
		"group_id", group.ID,
		"previous_remote_group_id", previous,
		"remote_group_id", group.RemoteGroupID,
	)
	return group, nil
}

// Delete removes a group's pads and the group, remotely then locally.
func (s *GroupService) Delete(ctx context.Context, groupID string) error {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.reconciler.PreDeleteGroup(ctx, group); err != nil {
		return err
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return storeErr(err, "delete group %s", groupID)
	}
	return nil
}
