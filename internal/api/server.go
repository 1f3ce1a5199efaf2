// Package api provides the padlink admin HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/padlinkapp/padlink-server/internal/config"
	"github.com/padlinkapp/padlink-server/internal/service"
)

// Services bundles the use cases served by the API.
type Services struct {
	Servers   *service.ServerService
	Directory *service.DirectoryService
	Groups    *service.GroupService
	Authors   *service.AuthorService
	Pads      *service.PadService
	Journal   *service.JournalService
}

// HealthCheck probes one component. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	health   map[string]HealthCheck
	router   chi.Router
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates the router, the huma API and every route.
func NewServer(services *Services, cfg config.ServerConfig, health map[string]HealthCheck, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	router.Use(requireAdminToken(cfg.AdminToken))

	humaConfig := huma.DefaultConfig("Padlink API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services: services,
		health:   health,
		router:   router,
		api:      api,
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerServerRoutes()
	s.registerDirectoryRoutes()
	s.registerGroupRoutes()
	s.registerAuthorRoutes()
	s.registerPadRoutes()
	s.registerJournalRoutes()
}

// bearer is the security requirement of admin operations.
var bearer = []map[string][]string{{"bearer": {}}}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}

func message(msg string) *MessageOutput {
	return &MessageOutput{Body: MessageResponse{Message: msg}}
}

// IDInput is a path parameter for resource IDs.
type IDInput struct {
	ID string `path:"id" doc:"Resource identifier"`
}
