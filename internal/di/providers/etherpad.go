package providers

import (
	"github.com/samber/do/v2"

	"github.com/padlinkapp/padlink-server/internal/config"
	"github.com/padlinkapp/padlink-server/internal/etherpad"
	"github.com/padlinkapp/padlink-server/internal/logger"
	"github.com/padlinkapp/padlink-server/internal/reconcile"
)

// PoolHandle wraps the Etherpad client pool with shutdown capability.
type PoolHandle struct {
	*etherpad.Pool
}

// Shutdown implements do.Shutdownable.
func (h *PoolHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideEtherpadPool provides the per-server Etherpad client pool.
func ProvideEtherpadPool(i do.Injector) (*PoolHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	pool := etherpad.NewPool(etherpad.Config{
		APIVersion: cfg.Etherpad.APIVersion,
		Timeout:    cfg.Etherpad.CallTimeout,
		RPS:        cfg.Etherpad.RPS,
		Burst:      cfg.Etherpad.Burst,
	}, log.Component("etherpad").Logger)

	log.Info("Etherpad client pool ready",
		"api_version", cfg.Etherpad.APIVersion,
		"timeout", cfg.Etherpad.CallTimeout,
		"rps", cfg.Etherpad.RPS,
	)

	return &PoolHandle{Pool: pool}, nil
}

// ProvideReconciler provides the Etherpad reconciler. An unknown author name
// mapper fails startup with a configuration error.
func ProvideReconciler(i do.Injector) (*reconcile.Reconciler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	poolHandle := do.MustInvoke[*PoolHandle](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)

	authorName, err := reconcile.AuthorNameMapper(cfg.Mapping.AuthorName)
	if err != nil {
		return nil, err
	}

	return reconcile.New(storeHandle.Store, reconcile.Config{
		AuthorName:  authorName,
		CallTimeout: cfg.Etherpad.CallTimeout,
		Remotes:     reconcile.PoolFactory(poolHandle.Pool),
		Recorder:    journalHandle.Journal,
	}, log.Component("reconcile").Logger)
}
