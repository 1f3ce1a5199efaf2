package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/padlinkapp/padlink-server/internal/service"
)

func (s *Server) registerServerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listServers",
		Method:      http.MethodGet,
		Path:        "/api/v1/servers",
		Summary:     "List servers",
		Description: "Returns all registered Etherpad servers",
		Tags:        []string{"Servers"},
		Security:    bearer,
	}, s.handleListServers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createServer",
		Method:        http.MethodPost,
		Path:          "/api/v1/servers",
		Summary:       "Register server",
		Description:   "Registers an Etherpad server and its API key",
		Tags:          []string{"Servers"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
	}, s.handleCreateServer)

	huma.Register(s.api, huma.Operation{
		OperationID: "getServer",
		Method:      http.MethodGet,
		Path:        "/api/v1/servers/{id}",
		Summary:     "Get server",
		Tags:        []string{"Servers"},
		Security:    bearer,
	}, s.handleGetServer)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateServer",
		Method:      http.MethodPatch,
		Path:        "/api/v1/servers/{id}",
		Summary:     "Update server",
		Description: "Changes the provided fields of a server",
		Tags:        []string{"Servers"},
		Security:    bearer,
	}, s.handleUpdateServer)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteServer",
		Method:      http.MethodDelete,
		Path:        "/api/v1/servers/{id}",
		Summary:     "Delete server",
		Description: "Deletes every pad group on the server, remotely and locally, then the server",
		Tags:        []string{"Servers"},
		Security:    bearer,
	}, s.handleDeleteServer)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkServer",
		Method:      http.MethodPost,
		Path:        "/api/v1/servers/{id}/check",
		Summary:     "Check server",
		Description: "Verifies the server answers and accepts the API key",
		Tags:        []string{"Servers"},
		Security:    bearer,
	}, s.handleCheckServer)
}

// ServerOutput wraps a server response.
type ServerOutput struct {
	Body ServerResponse
}

// ListServersOutput wraps the server list.
type ListServersOutput struct {
	Body struct {
		Servers []ServerResponse `json:"servers" doc:"Registered servers"`
	}
}

// CreateServerInput contains the registration request.
type CreateServerInput struct {
	Body service.CreateServerRequest
}

// UpdateServerInput contains the update request.
type UpdateServerInput struct {
	ID   string `path:"id" doc:"Server ID"`
	Body service.UpdateServerRequest
}

func (s *Server) handleListServers(ctx context.Context, _ *struct{}) (*ListServersOutput, error) {
	servers, err := s.services.Servers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListServersOutput{}
	out.Body.Servers = mapSlice(servers, newServerResponse)
	return out, nil
}

func (s *Server) handleCreateServer(ctx context.Context, input *CreateServerInput) (*ServerOutput, error) {
	server, err := s.services.Servers.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &ServerOutput{Body: newServerResponse(server)}, nil
}

func (s *Server) handleGetServer(ctx context.Context, input *IDInput) (*ServerOutput, error) {
	server, err := s.services.Servers.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ServerOutput{Body: newServerResponse(server)}, nil
}

func (s *Server) handleUpdateServer(ctx context.Context, input *UpdateServerInput) (*ServerOutput, error) {
	server, err := s.services.Servers.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ServerOutput{Body: newServerResponse(server)}, nil
}

func (s *Server) handleDeleteServer(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := s.services.Servers.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return message("server deleted"), nil
}

func (s *Server) handleCheckServer(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if err := s.services.Servers.Check(ctx, input.ID); err != nil {
		return nil, err
	}
	return message("server reachable"), nil
}
