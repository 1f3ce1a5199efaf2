package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/padlinkapp/padlink-server/internal/service"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Tags:        []string{"Authors"},
		Security:    bearer,
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createAuthor",
		Method:        http.MethodPost,
		Path:          "/api/v1/authors",
		Summary:       "Create author",
		Description:   "Maps a user onto an Etherpad server and joins the author to the user's pad groups",
		Tags:          []string{"Authors"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Tags:        []string{"Authors"},
		Security:    bearer,
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAuthor",
		Method:      http.MethodDelete,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Delete author",
		Description: "Removes the local author. The Etherpad author is kept.",
		Tags:        []string{"Authors"},
		Security:    bearer,
	}, s.handleDeleteAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "remapAuthor",
		Method:      http.MethodPost,
		Path:        "/api/v1/authors/{id}/remap",
		Summary:     "Remap author",
		Tags:        []string{"Authors"},
		Security:    bearer,
	}, s.handleRemapAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "syncAuthorGroups",
		Method:      http.MethodPost,
		Path:        "/api/v1/authors/{id}/sync-groups",
		Summary:     "Sync author groups",
		Description: "Adds the author to every pad group of the user's groups on the author's server",
		Tags:        []string{"Authors"},
		Security:    bearer,
	}, s.handleSyncAuthorGroups)
}

// AuthorOutput wraps an author response.
type AuthorOutput struct {
	Body AuthorResponse
}

// ListAuthorsOutput wraps the author list.
type ListAuthorsOutput struct {
	Body struct {
		Authors []AuthorResponse `json:"authors" doc:"Authors"`
	}
}

// CreateAuthorInput contains the mapping to create.
type CreateAuthorInput struct {
	Body service.CreateAuthorRequest
}

// SyncGroupsOutput lists the groups an author was added to.
type SyncGroupsOutput struct {
	Body struct {
		Added []string `json:"added" doc:"IDs of pad groups the author was added to"`
	}
}

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	authors, err := s.services.Authors.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListAuthorsOutput{}
	out.Body.Authors = mapSlice(authors, newAuthorResponse)
	return out, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	author, err := s.services.Authors.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: newAuthorResponse(author)}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *IDInput) (*AuthorOutput, error) {
	author, err := s.services.Authors.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: newAuthorResponse(author)}, nil
}

func (s *Server) handleDeleteAuthor(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := s.services.Authors.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return message("author deleted"), nil
}

func (s *Server) handleRemapAuthor(ctx context.Context, input *IDInput) (*AuthorOutput, error) {
	author, err := s.services.Authors.Remap(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: newAuthorResponse(author)}, nil
}

func (s *Server) handleSyncAuthorGroups(ctx context.Context, input *IDInput) (*SyncGroupsOutput, error) {
	added, err := s.services.Authors.SyncGroups(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out := &SyncGroupsOutput{}
	out.Body.Added = added
	return out, nil
}
