package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/id"
	"github.com/padlinkapp/padlink-server/internal/store"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// CreateServerRequest registers an Etherpad server.
type CreateServerRequest struct {
	Title   string `json:"title" validate:"required,max=100"`
	BaseURL string `json:"base_url" validate:"required,baseurl"`
	APIKey  string `json:"api_key" validate:"required"`
	Notes   string `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateServerRequest changes the provided fields of a server.
type UpdateServerRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=100"`
	BaseURL *string `json:"base_url,omitempty" validate:"omitempty,baseurl"`
	APIKey  *string `json:"api_key,omitempty" validate:"omitempty,min=1"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ServerService manages Etherpad server registrations.
type ServerService struct {
	store      store.Store
	reconciler Reconciler
	clients    ClientInvalidator
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewServerService creates a new server service. clients may be nil.
func NewServerService(s store.Store, r Reconciler, clients ClientInvalidator, v *validation.Validator, logger *slog.Logger) *ServerService {
	if clients == nil {
		clients = noopInvalidator{}
	}
	return &ServerService{store: s, reconciler: r, clients: clients, validator: v, logger: loggerOrDefault(logger)}
}

// Create registers a server.
func (s *ServerService) Create(ctx context.Context, req CreateServerRequest) (*domain.Server, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.BaseURL = strings.TrimSpace(req.BaseURL)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	serverID, err := newID(id.PrefixServer)
	if err != nil {
		return nil, err
	}
	server := &domain.Server{
		Record:  domain.Record{ID: serverID},
		Title:   req.Title,
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
		Notes:   req.Notes,
	}
	server.InitTimestamps()

	if err := s.store.CreateServer(ctx, server); err != nil {
		return nil, storeErr(err, "create server %s", req.BaseURL)
	}

	s.logger.Info("server registered", "server_id", server.ID, "base_url", server.BaseURL)
	return server, nil
}

// Get returns a server by id.
func (s *ServerService) Get(ctx context.Context, serverID string) (*domain.Server, error) {
	server, err := s.store.GetServer(ctx, serverID)
	if err != nil {
		return nil, storeErr(err, "get server %s", serverID)
	}
	return server, nil
}

// List returns every registered server.
func (s *ServerService) List(ctx context.Context) ([]*domain.Server, error) {
	servers, err := s.store.ListServers(ctx)
	if err != nil {
		return nil, storeErr(err, "list servers")
	}
	return servers, nil
}

// Update applies req to a server and drops its cached client, so the next
// remote call uses the new URL and key.
func (s *ServerService) Update(ctx context.Context, serverID string, req UpdateServerRequest) (*domain.Server, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	server, err := s.Get(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		server.Title = strings.TrimSpace(*req.Title)
	}
	if req.BaseURL != nil {
		server.BaseURL = strings.TrimSpace(*req.BaseURL)
	}
	if req.APIKey != nil {
		server.APIKey = *req.APIKey
	}
	if req.Notes != nil {
		server.Notes = *req.Notes
	}
	server.Touch()

	if err := s.store.UpdateServer(ctx, server); err != nil {
		return nil, storeErr(err, "update server %s", serverID)
	}
	s.clients.Invalidate(server.ID)

	s.logger.Info("server updated", "server_id", server.ID, "base_url", server.BaseURL)
	return server, nil
}

// Delete removes a server. Every group mapped on it is deleted remotely
// first, pads included; the first remote failure aborts the delete.
func (s *ServerService) Delete(ctx context.Context, serverID string) error {
	if _, err := s.Get(ctx, serverID); err != nil {
		return err
	}

	groups, err := s.store.ListGroupsByServer(ctx, serverID)
	if err != nil {
		return storeErr(err, "list groups of server %s", serverID)
	}
	for _, g := range groups {
		if err := s.reconciler.PreDeleteGroup(ctx, g); err != nil {
			return err
		}
		if err := s.store.DeleteGroup(ctx, g.ID); err != nil {
			return storeErr(err, "delete group %s", g.ID)
		}
	}

	if err := s.store.DeleteServer(ctx, serverID); err != nil {
		return storeErr(err, "delete server %s", serverID)
	}
	s.clients.Invalidate(serverID)

	s.logger.Info("server deleted", "server_id", serverID, "groups", len(groups))
	return nil
}

// Check verifies that the server answers and accepts its API key.
func (s *ServerService) Check(ctx context.Context, serverID string) error {
	server, err := s.Get(ctx, serverID)
	if err != nil {
		return err
	}
	return s.reconciler.CheckServer(ctx, server)
}
