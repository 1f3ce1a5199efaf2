package search

import (
	"context"
	"fmt"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/store"
)

// PadIndexer adapts a SearchIndex to store.PadIndexer.
type PadIndexer struct {
	index *SearchIndex
}

var _ store.PadIndexer = (*PadIndexer)(nil)

// NewPadIndexer creates an indexer writing to index.
func NewPadIndexer(index *SearchIndex) *PadIndexer {
	return &PadIndexer{index: index}
}

// IndexPad adds or replaces a pad document.
func (p *PadIndexer) IndexPad(ctx context.Context, pad *domain.Pad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.index.IndexDocument(PadToDocument(pad))
}

// DeletePad removes a pad document.
func (p *PadIndexer) DeletePad(ctx context.Context, padID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.index.DeleteDocument(padID)
}

// Reindex recreates the index and fills it with the pads list returns.
// The index stays write-locked throughout, so IndexPad and DeletePad calls
// made by concurrent store writes land after the reindex instead of being
// wiped or overwritten by a stale listing.
func (s *SearchIndex) Reindex(ctx context.Context, list func(context.Context) ([]*domain.Pad, error)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return 0, fmt.Errorf("close index: %w", err)
	}
	if err := s.create(); err != nil {
		return 0, err
	}

	pads, err := list(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pads: %w", err)
	}
	docs := make([]*PadDocument, len(pads))
	for i, pad := range pads {
		docs[i] = PadToDocument(pad)
	}
	if err := s.indexBatches(docs); err != nil {
		return 0, err
	}

	s.logger.Info("reindexed pads", "count", len(docs))
	return len(docs), nil
}
