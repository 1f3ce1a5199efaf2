package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/padlinkapp/padlink-server/internal/service"
)

func (s *Server) registerGroupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGroups",
		Method:      http.MethodGet,
		Path:        "/api/v1/groups",
		Summary:     "List pad groups",
		Description: "Returns pad groups, optionally filtered by owner or server",
		Tags:        []string{"Groups"},
		Security:    bearer,
	}, s.handleListGroups)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createGroup",
		Method:        http.MethodPost,
		Path:          "/api/v1/groups",
		Summary:       "Create pad group",
		Description:   "Creates the Etherpad group mapped to a user group and records the mapping",
		Tags:          []string{"Groups"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleCreateGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGroup",
		Method:      http.MethodGet,
		Path:        "/api/v1/groups/{id}",
		Summary:     "Get pad group",
		Tags:        []string{"Groups"},
		Security:    bearer,
	}, s.handleGetGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGroup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/groups/{id}",
		Summary:     "Delete pad group",
		Description: "Deletes the group's pads and the Etherpad group, then the local records",
		Tags:        []string{"Groups"},
		Security:    bearer,
	}, s.handleDeleteGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "remapGroup",
		Method:      http.MethodPost,
		Path:        "/api/v1/groups/{id}/remap",
		Summary:     "Remap pad group",
		Description: "Asks Etherpad for the group mapped to the owner again and stores the answer",
		Tags:        []string{"Groups"},
		Security:    bearer,
	}, s.handleRemapGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGroupPads",
		Method:      http.MethodGet,
		Path:        "/api/v1/groups/{id}/pads",
		Summary:     "List group pads",
		Tags:        []string{"Groups"},
		Security:    bearer,
	}, s.handleListGroupPads)
}

// GroupOutput wraps a pad group response.
type GroupOutput struct {
	Body GroupResponse
}

// ListGroupsInput contains the list filters.
type ListGroupsInput struct {
	OwnerGroupID string `query:"owner_group_id" doc:"Only groups owned by this user group"`
	ServerID     string `query:"server_id" doc:"Only groups on this server"`
}

// ListGroupsOutput wraps the pad group list.
type ListGroupsOutput struct {
	Body struct {
		Groups []GroupResponse `json:"groups" doc:"Pad groups"`
	}
}

// CreateGroupInput contains the mapping to create.
type CreateGroupInput struct {
	Body service.CreateGroupRequest
}

// ListPadsOutput wraps a pad list.
type ListPadsOutput struct {
	Body struct {
		Pads []PadResponse `json:"pads" doc:"Pads"`
	}
}

func (s *Server) handleListGroups(ctx context.Context, input *ListGroupsInput) (*ListGroupsOutput, error) {
	groups, err := s.services.Groups.List(ctx, service.GroupFilter{
		OwnerGroupID: input.OwnerGroupID,
		ServerID:     input.ServerID,
	})
	if err != nil {
		return nil, err
	}
	out := &ListGroupsOutput{}
	out.Body.Groups = mapSlice(groups, newGroupResponse)
	return out, nil
}

func (s *Server) handleCreateGroup(ctx context.Context, input *CreateGroupInput) (*GroupOutput, error) {
	group, err := s.services.Groups.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &GroupOutput{Body: newGroupResponse(group)}, nil
}

func (s *Server) handleGetGroup(ctx context.Context, input *IDInput) (*GroupOutput, error) {
	group, err := s.services.Groups.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GroupOutput{Body: newGroupResponse(group)}, nil
}

func (s *Server) handleDeleteGroup(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := s.services.Groups.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return message("group deleted"), nil
}

func (s *Server) handleRemapGroup(ctx context.Context, input *IDInput) (*GroupOutput, error) {
	group, err := s.services.Groups.Remap(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GroupOutput{Body: newGroupResponse(group)}, nil
}

func (s *Server) handleListGroupPads(ctx context.Context, input *IDInput) (*ListPadsOutput, error) {
	pads, err := s.services.Pads.ListByGroup(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out := &ListPadsOutput{}
	out.Body.Pads = mapSlice(pads, newPadViewResponse)
	return out, nil
}
