package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padlinkapp/padlink-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, string) {
	t.Helper()

	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index, dir
}

func testPad(id, name, groupID string) *domain.Pad {
	return &domain.Pad{
		Record:   domain.Record{ID: id, CreatedAt: time.Now()},
		Name:     name,
		GroupID:  groupID,
		ServerID: "srv-1",
	}
}

func hitIDs(res *SearchResult) []string {
	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestNewSearchIndex(t *testing.T) {
	index, dir := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	version, err := os.ReadFile(filepath.Join(dir, "pads.version"))
	require.NoError(t, err)
	assert.Equal(t, mappingVersion, string(version))
}

func TestPadIndexer_IndexAndDelete(t *testing.T) {
	index, _ := setupTestIndex(t)
	indexer := NewPadIndexer(index)
	ctx := context.Background()

	require.NoError(t, indexer.IndexPad(ctx, testPad("pad-1", "Team Notes", "grp-1")))
	require.NoError(t, indexer.IndexPad(ctx, testPad("pad-2", "Budget 2024", "grp-1")))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	require.NoError(t, indexer.DeletePad(ctx, "pad-1"))

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_MatchesNames(t *testing.T) {
	index, _ := setupTestIndex(t)
	indexer := NewPadIndexer(index)
	ctx := context.Background()

	require.NoError(t, indexer.IndexPad(ctx, testPad("pad-1", "Team Notes", "grp-1")))
	require.NoError(t, indexer.IndexPad(ctx, testPad("pad-2", "Budget 2024", "grp-1")))
	require.NoError(t, indexer.IndexPad(ctx, testPad("pad-3", "Réunion notes", "grp-2")))

	tests := []struct {
		name   string
		params SearchParams
		want   []string
	}{
		{"stemmed word", SearchParams{Query: "note"}, []string{"pad-1", "pad-3"}},
		{"prefix", SearchParams{Query: "budg"}, []string{"pad-2"}},
		{"accent folded", SearchParams{Query: "reunion"}, []string{"pad-3"}},
		{"group filter", SearchParams{Query: "notes", GroupID: "grp-2"}, []string{"pad-3"}},
		{"no match", SearchParams{Query: "minutes"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := index.Search(ctx, tt.params)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, hitIDs(res))
		})
	}
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	index, _ := setupTestIndex(t)
	indexer := NewPadIndexer(index)
	ctx := context.Background()

	require.NoError(t, indexer.IndexPad(ctx, testPad("pad-1", "a", "grp-1")))
	require.NoError(t, indexer.IndexPad(ctx, testPad("pad-2", "b", "grp-2")))

	res, err := index.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Total)

	res, err = index.Search(ctx, SearchParams{GroupID: "grp-2"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "b", res.Hits[0].Name)
	assert.Equal(t, "grp-2", res.Hits[0].GroupID)
}

func TestReindex(t *testing.T) {
	index, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, NewPadIndexer(index).IndexPad(ctx, testPad("stale", "old pad", "grp-9")))

	pads := []*domain.Pad{
		testPad("pad-1", "alpha", "grp-1"),
		testPad("pad-2", "beta", "grp-1"),
	}
	n, err := index.Reindex(ctx, func(context.Context) ([]*domain.Pad, error) { return pads, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestReindex_ConcurrentDeleteAppliesAfter(t *testing.T) {
	index, _ := setupTestIndex(t)
	indexer := NewPadIndexer(index)
	ctx := context.Background()

	deleted := make(chan error, 1)
	list := func(context.Context) ([]*domain.Pad, error) {
		// The store has already listed pad-2 when its delete commits.
		go func() { deleted <- indexer.DeletePad(ctx, "pad-2") }()
		return []*domain.Pad{
			testPad("pad-1", "alpha", "grp-1"),
			testPad("pad-2", "beta", "grp-1"),
		}, nil
	}

	_, err := index.Reindex(ctx, list)
	require.NoError(t, err)
	require.NoError(t, <-deleted)

	res, err := index.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pad-1"}, hitIDs(res))
}

func TestReindex_ListFailure(t *testing.T) {
	index, _ := setupTestIndex(t)

	_, err := index.Reindex(context.Background(), func(context.Context) ([]*domain.Pad, error) {
		return nil, errors.New("database is locked")
	})
	assert.ErrorContains(t, err, "database is locked")
}

func TestNewSearchIndex_VersionMismatchRebuilds(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, NewPadIndexer(index).IndexPad(context.Background(), testPad("pad-1", "x", "g")))
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pads.version"), []byte("0"), 0o644))

	reopened, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
