// Package di provides dependency injection configuration for the padlink server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/padlinkapp/padlink-server/internal/config"
	"github.com/padlinkapp/padlink-server/internal/di/providers"
	"github.com/padlinkapp/padlink-server/internal/logger"
	"github.com/padlinkapp/padlink-server/internal/reconcile"
	"github.com/padlinkapp/padlink-server/internal/service"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideJournal)

	// Etherpad
	do.Provide(injector, providers.ProvideEtherpadPool)
	do.Provide(injector, providers.ProvideReconciler)

	// Business services
	do.Provide(injector, providers.ProvideServerService)
	do.Provide(injector, providers.ProvideDirectoryService)
	do.Provide(injector, providers.ProvideGroupService)
	do.Provide(injector, providers.ProvideAuthorService)
	do.Provide(injector, providers.ProvidePadService)
	do.Provide(injector, providers.ProvideJournalService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.JournalHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.PoolHandle](injector)
	if _, err := do.Invoke[*reconcile.Reconciler](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.ServerService](injector)
	_ = do.MustInvoke[*service.DirectoryService](injector)
	_ = do.MustInvoke[*service.GroupService](injector)
	_ = do.MustInvoke[*service.AuthorService](injector)
	_ = do.MustInvoke[*service.PadService](injector)
	_ = do.MustInvoke[*service.JournalService](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
