package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/padlinkapp/padlink-server/internal/reconcile"
	"github.com/padlinkapp/padlink-server/internal/search"
	"github.com/padlinkapp/padlink-server/internal/service"
)

func (s *Server) registerPadRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPads",
		Method:      http.MethodGet,
		Path:        "/api/v1/pads",
		Summary:     "List pads",
		Tags:        []string{"Pads"},
		Security:    bearer,
	}, s.handleListPads)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPad",
		Method:        http.MethodPost,
		Path:          "/api/v1/pads",
		Summary:       "Create pad",
		Description:   "Creates the group pad on Etherpad and records it",
		Tags:          []string{"Pads"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleCreatePad)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchPads",
		Method:      http.MethodGet,
		Path:        "/api/v1/pads/search",
		Summary:     "Search pads",
		Description: "Full-text search over pad names",
		Tags:        []string{"Pads"},
		Security:    bearer,
	}, s.handleSearchPads)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPad",
		Method:      http.MethodGet,
		Path:        "/api/v1/pads/{id}",
		Summary:     "Get pad",
		Description: "Returns the pad with its Etherpad id and link",
		Tags:        []string{"Pads"},
		Security:    bearer,
	}, s.handleGetPad)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePad",
		Method:      http.MethodDelete,
		Path:        "/api/v1/pads/{id}",
		Summary:     "Delete pad",
		Tags:        []string{"Pads"},
		Security:    bearer,
	}, s.handleDeletePad)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPadStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/pads/{id}/status",
		Summary:     "Get pad status",
		Description: "Reads the public status and read-only id from Etherpad",
		Tags:        []string{"Pads"},
		Security:    bearer,
	}, s.handlePadStatus)
}

// PadOutput wraps a pad response.
type PadOutput struct {
	Body PadResponse
}

// CreatePadInput contains the pad to create.
type CreatePadInput struct {
	Body service.CreatePadRequest
}

// ListPadsInput contains the list filter.
type ListPadsInput struct {
	GroupID string `query:"group_id" doc:"Only pads of this group"`
}

// PadStatusOutput wraps the remote pad status.
type PadStatusOutput struct {
	Body *reconcile.PadStatus
}

// SearchPadsInput contains search parameters.
type SearchPadsInput struct {
	Query    string `query:"q" doc:"Search query"`
	GroupID  string `query:"group_id" doc:"Only pads of this group"`
	ServerID string `query:"server_id" doc:"Only pads on this server"`
	Limit    int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum hits"`
	Offset   int    `query:"offset" default:"0" minimum:"0" doc:"Hits to skip"`
}

// SearchPadsOutput wraps the search result.
type SearchPadsOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleListPads(ctx context.Context, input *ListPadsInput) (*ListPadsOutput, error) {
	out := &ListPadsOutput{}
	if input.GroupID != "" {
		pads, err := s.services.Pads.ListByGroup(ctx, input.GroupID)
		if err != nil {
			return nil, err
		}
		out.Body.Pads = mapSlice(pads, newPadViewResponse)
		return out, nil
	}

	pads, err := s.services.Pads.List(ctx)
	if err != nil {
		return nil, err
	}
	out.Body.Pads = mapSlice(pads, newPadResponse)
	return out, nil
}

func (s *Server) handleCreatePad(ctx context.Context, input *CreatePadInput) (*PadOutput, error) {
	view, err := s.services.Pads.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &PadOutput{Body: newPadViewResponse(view)}, nil
}

func (s *Server) handleGetPad(ctx context.Context, input *IDInput) (*PadOutput, error) {
	view, err := s.services.Pads.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PadOutput{Body: newPadViewResponse(view)}, nil
}

func (s *Server) handleDeletePad(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := s.services.Pads.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return message("pad deleted"), nil
}

func (s *Server) handlePadStatus(ctx context.Context, input *IDInput) (*PadStatusOutput, error) {
	status, err := s.services.Pads.Status(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PadStatusOutput{Body: status}, nil
}

func (s *Server) handleSearchPads(ctx context.Context, input *SearchPadsInput) (*SearchPadsOutput, error) {
	result, err := s.services.Pads.Search(ctx, search.SearchParams{
		Query:    input.Query,
		GroupID:  input.GroupID,
		ServerID: input.ServerID,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchPadsOutput{Body: result}, nil
}
