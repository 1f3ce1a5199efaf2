package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/id"
	"github.com/padlinkapp/padlink-server/internal/normalize"
	"github.com/padlinkapp/padlink-server/internal/store"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// CreateUserRequest adds a local user.
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,max=150"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	DisplayName string `json:"display_name,omitempty" validate:"max=200"`
}

// CreateOwnerGroupRequest adds a local user group.
type CreateOwnerGroupRequest struct {
	Name      string   `json:"name" validate:"required,max=150"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

// DirectoryService manages local users and the user groups that own pad groups.
type DirectoryService struct {
	store      store.Store
	reconciler Reconciler
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(s store.Store, r Reconciler, v *validation.Validator, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{store: s, reconciler: r, validator: v, logger: loggerOrDefault(logger)}
}

// CreateUser adds a user.
func (s *DirectoryService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = normalize.DisplayName(req.DisplayName)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	userID, err := newID(id.PrefixUser)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Record:      domain.Record{ID: userID},
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, storeErr(err, "create user %s", req.Username)
	}
	s.logger.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUser returns a user by id.
func (s *DirectoryService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get user %s", userID)
	}
	return user, nil
}

// ListUsers returns every user.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeErr(err, "list users")
	}
	return users, nil
}

// DeleteUser removes a user and, locally, their authors. Etherpad has no
// author delete, so remote authors stay.
func (s *DirectoryService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return storeErr(err, "delete user %s", userID)
	}
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

// CreateOwnerGroup adds a user group with its initial members.
func (s *DirectoryService) CreateOwnerGroup(ctx context.Context, req CreateOwnerGroupRequest) (*domain.UserGroup, error) {
	req.Name = normalize.DisplayName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ownerID, err := newID(id.PrefixOwnerGroup)
	if err != nil {
		return nil, err
	}
	group := &domain.UserGroup{
		Record:    domain.Record{ID: ownerID},
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	}
	group.InitTimestamps()

	if err := s.store.CreateOwnerGroup(ctx, group); err != nil {
		return nil, storeErr(err, "create owner group %s", req.Name)
	}
	s.logger.Info("owner group created", "owner_group_id", group.ID, "members", len(group.MemberIDs))
	return group, nil
}

// GetOwnerGroup returns a user group by id.
func (s *DirectoryService) GetOwnerGroup(ctx context.Context, ownerGroupID string) (*domain.UserGroup, error) {
	group, err := s.store.GetOwnerGroup(ctx, ownerGroupID)
	if err != nil {
		return nil, storeErr(err, "get owner group %s", ownerGroupID)
	}
	return group, nil
}

// ListOwnerGroups returns every user group.
func (s *DirectoryService) ListOwnerGroups(ctx context.Context) ([]*domain.UserGroup, error) {
	groups, err := s.store.ListOwnerGroups(ctx)
	if err != nil {
		return nil, storeErr(err, "list owner groups")
	}
	return groups, nil
}

// AddMember adds a user to a user group, then brings each of the user's
// authors into the newly reachable pad groups.
func (s *DirectoryService) AddMember(ctx context.Context, ownerGroupID, userID string) error {
	if err := s.store.AddOwnerGroupMember(ctx, ownerGroupID, userID); err != nil {
		return storeErr(err, "add user %s to owner group %s", userID, ownerGroupID)
	}

	servers, err := s.store.ListServers(ctx)
	if err != nil {
		return storeErr(err, "list servers")
	}
	for _, server := range servers {
		author, err := s.store.GetAuthorByUser(ctx, userID, server.ID)
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

	s.logger.Info("owner group member added", "owner_group_id", ownerGroupID, "user_id", userID)
	return nil
}

// RemoveMember removes a user from a user group. Author memberships already
// granted are kept.
func (s *DirectoryService) RemoveMember(ctx context.Context, ownerGroupID, userID string) error {
	if err := s.store.RemoveOwnerGroupMember(ctx, ownerGroupID, userID); err != nil {
		return storeErr(err, "remove user %s from owner group %s", userID, ownerGroupID)
	}
	s.logger.Info("owner group member removed", "owner_group_id", ownerGroupID, "user_id", userID)
	return nil
}

// DeleteOwnerGroup deletes every pad group the user group owns, on every
// server, then the user group itself.
func (s *DirectoryService) DeleteOwnerGroup(ctx context.Context, ownerGroupID string) error {
	if _, err := s.GetOwnerGroup(ctx, ownerGroupID); err != nil {
		return err
	}
	if err := s.reconciler.OnOwnerGroupDelete(ctx, ownerGroupID); err != nil {
		return err
	}
	if err := s.store.DeleteOwnerGroup(ctx, ownerGroupID); err != nil {
		return storeErr(err, "delete owner group %s", ownerGroupID)
	}
	s.logger.Info("owner group deleted", "owner_group_id", ownerGroupID)
	return nil
}
