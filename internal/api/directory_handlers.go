package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/padlinkapp/padlink-server/internal/service"
)

func (s *Server) registerDirectoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Tags:        []string{"Directory"},
		Security:    bearer,
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Create user",
		Tags:          []string{"Directory"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Tags:        []string{"Directory"},
		Security:    bearer,
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete user",
		Tags:        []string{"Directory"},
		Security:    bearer,
	}, s.handleDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOwnerGroups",
		Method:      http.MethodGet,
		Path:        "/api/v1/owner-groups",
		Summary:     "List user groups",
		Tags:        []string{"Directory"},
		Security:    bearer,
	}, s.handleListOwnerGroups)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createOwnerGroup",
		Method:        http.MethodPost,
		Path:          "/api/v1/owner-groups",
		Summary:       "Create user group",
		Tags:          []string{"Directory"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleCreateOwnerGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOwnerGroup",
		Method:      http.MethodGet,
		Path:        "/api/v1/owner-groups/{id}",
		Summary:     "Get user group",
		Tags:        []string{"Directory"},
		Security:    bearer,
	}, s.handleGetOwnerGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteOwnerGroup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/owner-groups/{id}",
		Summary:     "Delete user group",
		Description: "Deletes the pad groups the user group owns on every server, then the user group",
		Tags:        []string{"Directory"},
		Security:    bearer,
	}, s.handleDeleteOwnerGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "addOwnerGroupMember",
		Method:      http.MethodPost,
		Path:        "/api/v1/owner-groups/{id}/members",
		Summary:     "Add member",
		Description: "Adds a user to the group and syncs the user's authors into the group's pad groups",
		Tags:        []string{"Directory"},
		Security:    bearer,
	}, s.handleAddMember)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeOwnerGroupMember",
		Method:      http.MethodDelete,
		Path:        "/api/v1/owner-groups/{id}/members/{userId}",
		Summary:     "Remove member",
		Tags:        []string{"Directory"},
		Security:    bearer,
	}, s.handleRemoveMember)
}

// UserOutput wraps a user response.
type UserOutput struct {
	Body UserResponse
}

// ListUsersOutput wraps the user list.
type ListUsersOutput struct {
	Body struct {
		Users []UserResponse `json:"users" doc:"Local users"`
	}
}

// CreateUserInput contains the user to create.
type CreateUserInput struct {
	Body service.CreateUserRequest
}

// OwnerGroupOutput wraps a user group response.
type OwnerGroupOutput struct {
	Body OwnerGroupResponse
}

// ListOwnerGroupsOutput wraps the user group list.
type ListOwnerGroupsOutput struct {
	Body struct {
		OwnerGroups []OwnerGroupResponse `json:"owner_groups" doc:"Local user groups"`
	}
}

// CreateOwnerGroupInput contains the user group to create.
type CreateOwnerGroupInput struct {
	Body service.CreateOwnerGroupRequest
}

// AddMemberInput contains the user to add.
type AddMemberInput struct {
	ID   string `path:"id" doc:"User group ID"`
	Body struct {
		UserID string `json:"user_id" doc:"User to add" minLength:"1"`
	}
}

// RemoveMemberInput identifies the membership to remove.
type RemoveMemberInput struct {
	ID     string `path:"id" doc:"User group ID"`
	UserID string `path:"userId" doc:"User to remove"`
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
	users, err := s.services.Directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListUsersOutput{}
	out.Body.Users = mapSlice(users, newUserResponse)
	return out, nil
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	user, err := s.services.Directory.CreateUser(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *IDInput) (*UserOutput, error) {
	user, err := s.services.Directory.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := s.services.Directory.DeleteUser(ctx, input.ID); err != nil {
		return nil, err
	}
	return message("user deleted"), nil
}

func (s *Server) handleListOwnerGroups(ctx context.Context, _ *struct{}) (*ListOwnerGroupsOutput, error) {
	groups, err := s.services.Directory.ListOwnerGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListOwnerGroupsOutput{}
	out.Body.OwnerGroups = mapSlice(groups, newOwnerGroupResponse)
	return out, nil
}

func (s *Server) handleCreateOwnerGroup(ctx context.Context, input *CreateOwnerGroupInput) (*OwnerGroupOutput, error) {
	group, err := s.services.Directory.CreateOwnerGroup(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &OwnerGroupOutput{Body: newOwnerGroupResponse(group)}, nil
}

func (s *Server) handleGetOwnerGroup(ctx context.Context, input *IDInput) (*OwnerGroupOutput, error) {
	group, err := s.services.Directory.GetOwnerGroup(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &OwnerGroupOutput{Body: newOwnerGroupResponse(group)}, nil
}

func (s *Server) handleDeleteOwnerGroup(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := s.services.Directory.DeleteOwnerGroup(ctx, input.ID); err != nil {
		return nil, err
	}
	return message("owner group deleted"), nil
}

func (s *Server) handleAddMember(ctx context.Context, input *AddMemberInput) (*OwnerGroupOutput, error) {
	if err := s.services.Directory.AddMember(ctx, input.ID, input.Body.UserID); err != nil {
		return nil, err
	}
	group, err := s.services.Directory.GetOwnerGroup(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &OwnerGroupOutput{Body: newOwnerGroupResponse(group)}, nil
}

func (s *Server) handleRemoveMember(ctx context.Context, input *RemoveMemberInput) (*OwnerGroupOutput, error) {
	if err := s.services.Directory.RemoveMember(ctx, input.ID, input.UserID); err != nil {
		return nil, err
	}
	group, err := s.services.Directory.GetOwnerGroup(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &OwnerGroupOutput{Body: newOwnerGroupResponse(group)}, nil
}
