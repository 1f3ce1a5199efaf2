package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/padlinkapp/padlink-server/internal/config"
	"github.com/padlinkapp/padlink-server/internal/journal"
	"github.com/padlinkapp/padlink-server/internal/logger"
	"github.com/padlinkapp/padlink-server/internal/search"
	"github.com/padlinkapp/padlink-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the identity store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := cfg.Data.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Component("store").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve pad index and keeps it current
// through the store.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.SearchPath(),
		Logger:   log.Component("search").Logger,
	})
	if err != nil {
		return nil, err
	}

	// Wire to store for automatic indexing
	storeHandle.SetPadIndexer(search.NewPadIndexer(index))

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the pad index in the background
// when it is empty but the store has pads.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	pads, err := storeHandle.ListPads(ctx)
	if err != nil || len(pads) == 0 {
		return
	}

	log.Info("Search index is empty but pads exist, triggering initial reindex",
		"pad_count", len(pads),
	)

	go func() {
		n, err := indexHandle.Reindex(ctx, storeHandle.ListPads)
		if err != nil {
			log.WithError(err).Error("Initial search reindex failed")
			return
		}
		log.Info("Initial search reindex complete", "pad_count", n)
	}()
}

// JournalHandle wraps the reconciliation journal with shutdown capability.
type JournalHandle struct {
	*journal.Journal
}

// Shutdown implements do.Shutdownable.
func (h *JournalHandle) Shutdown() error {
	return h.Close()
}

// ProvideJournal provides the Badger-backed reconciliation journal.
func ProvideJournal(i do.Injector) (*JournalHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	j, err := journal.Open(cfg.Data.JournalPath(), log.Component("journal").Logger)
	if err != nil {
		return nil, err
	}
	return &JournalHandle{Journal: j}, nil
}
