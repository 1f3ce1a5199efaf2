package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/padlinkapp/padlink-server/internal/api"
	"github.com/padlinkapp/padlink-server/internal/config"
	"github.com/padlinkapp/padlink-server/internal/logger"
	"github.com/padlinkapp/padlink-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)

	services := &api.Services{
		Servers:   do.MustInvoke[*service.ServerService](i),
		Directory: do.MustInvoke[*service.DirectoryService](i),
		Groups:    do.MustInvoke[*service.GroupService](i),
		Authors:   do.MustInvoke[*service.AuthorService](i),
		Pads:      do.MustInvoke[*service.PadService](i),
		Journal:   do.MustInvoke[*service.JournalService](i),
	}

	health := map[string]api.HealthCheck{
		"database": storeHandle.Ping,
		"journal":  journalHandle.Ping,
		"search": func(context.Context) error {
			_, err := indexHandle.DocumentCount()
			return err
		},
	}

	if cfg.Server.AdminToken == "" {
		if cfg.IsProduction() {
			log.Warn("No admin token configured, the API is open to anyone who can reach it")
		} else {
			log.Info("Admin API running without a token")
		}
	}

	handler := api.NewServer(services, cfg.Server, health, log.Component("http").Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
