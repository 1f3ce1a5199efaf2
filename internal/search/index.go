// Package search maintains a Bleve full-text index of pads.
package search

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// mappingVersion changes whenever buildIndexMapping does. An index written
// under another version is dropped on open.
const mappingVersion = "1"

const (
	indexDirName    = "pads.bleve"
	versionFileName = "pads.version"

	// indexBatchSize bounds memory use while bulk indexing.
	indexBatchSize = 500
)

// SearchIndex wraps a Bleve index of pad documents. It is safe for
// concurrent use; Reindex excludes every other call while it runs.
type SearchIndex struct {
	mu          sync.RWMutex
	index       bleve.Index
	path        string
	versionPath string
	logger      *slog.Logger
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory holding the index and its version file
	Logger   *slog.Logger // Defaults to a discarding logger
}

// NewSearchIndex opens the pad index under opts.DataPath, creating it when
// missing. An index that cannot be opened or was built with another mapping
// version is recreated empty; the caller reindexes from the store.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create search directory: %w", err)
	}

	s := &SearchIndex{
		path:        filepath.Join(opts.DataPath, indexDirName),
		versionPath: filepath.Join(opts.DataPath, versionFileName),
		logger:      logger,
	}

	index, reason := s.openExisting()
	if index != nil {
		logger.Info("opened search index", "path", s.path)
		s.index = index
		return s, nil
	}
	if reason != "" {
		logger.Info("recreating search index", "path", s.path, "reason", reason)
	}

	if err := s.create(); err != nil {
		return nil, err
	}
	return s, nil
}

// openExisting returns the index on disk when it is current. Otherwise it
// returns nil and, when something stale was found, why it is discarded.
func (s *SearchIndex) openExisting() (bleve.Index, string) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, ""
	}

	version, err := os.ReadFile(s.versionPath)
	switch {
	case err != nil:
		return nil, "missing mapping version"
	case string(version) != mappingVersion:
		return nil, fmt.Sprintf("mapping version %q, want %q", version, mappingVersion)
	}

	index, err := bleve.Open(s.path)
	if err != nil {
		return nil, "open failed: " + err.Error()
	}
	return index, ""
}

// create replaces whatever is at s.path with an empty index. Callers
// hold mu or own s exclusively.
func (s *SearchIndex) create() error {
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove old index: %w", err)
	}
	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(s.versionPath, []byte(mappingVersion), 0o644); err != nil {
		s.logger.Warn("failed to write search mapping version", "error", err)
	}
	s.index = index
	s.logger.Info("created search index", "path", s.path, "mapping_version", mappingVersion)
	return nil
}

// Close closes the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or replaces one document.
func (s *SearchIndex) IndexDocument(doc *PadDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments adds or replaces docs in batches of indexBatchSize.
func (s *SearchIndex) IndexDocuments(docs []*PadDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexBatches(docs)
}

// indexBatches writes docs with mu held by the caller.
func (s *SearchIndex) indexBatches(docs []*PadDocument) error {
	for start := 0; start < len(docs); start += indexBatchSize {
		end := min(start+indexBatchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[start:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteDocument removes a document. Deleting an unknown id is not an error.
func (s *SearchIndex) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed pads.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
