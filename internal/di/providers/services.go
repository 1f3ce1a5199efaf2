package providers

import (
	"github.com/samber/do/v2"

	"github.com/padlinkapp/padlink-server/internal/logger"
	"github.com/padlinkapp/padlink-server/internal/reconcile"
	"github.com/padlinkapp/padlink-server/internal/service"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideServerService provides the Etherpad server registry service.
func ProvideServerService(i do.Injector) (*service.ServerService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rec := do.MustInvoke[*reconcile.Reconciler](i)
	poolHandle := do.MustInvoke[*PoolHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewServerService(storeHandle.Store, rec, poolHandle.Pool, v, log.Component("servers").Logger), nil
}

// ProvideDirectoryService provides the users and user groups service.
func ProvideDirectoryService(i do.Injector) (*service.DirectoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rec := do.MustInvoke[*reconcile.Reconciler](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDirectoryService(storeHandle.Store, rec, v, log.Component("directory").Logger), nil
}

// ProvideGroupService provides the pad group service.
func ProvideGroupService(i do.Injector) (*service.GroupService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rec := do.MustInvoke[*reconcile.Reconciler](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGroupService(storeHandle.Store, rec, v, log.Component("groups").Logger), nil
}

// ProvideAuthorService provides the author service.
func ProvideAuthorService(i do.Injector) (*service.AuthorService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rec := do.MustInvoke[*reconcile.Reconciler](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthorService(storeHandle.Store, rec, v, log.Component("authors").Logger), nil
}

// ProvidePadService provides the pad service.
func ProvidePadService(i do.Injector) (*service.PadService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rec := do.MustInvoke[*reconcile.Reconciler](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPadService(storeHandle.Store, rec, rec, indexHandle.SearchIndex, v, log.Component("pads").Logger), nil
}

// ProvideJournalService provides read access to the reconciliation journal.
func ProvideJournalService(i do.Injector) (*service.JournalService, error) {
	journalHandle := do.MustInvoke[*JournalHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewJournalService(journalHandle.Journal, log.Component("journal").Logger), nil
}
