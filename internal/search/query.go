package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// SearchParams configures a pad search.
type SearchParams struct {
	Query    string // Free text matched against pad names; empty matches all
	GroupID  string // Restrict to one mapped group
	ServerID string // Restrict to one server
	Limit    int
	Offset   int
}

// SearchResult holds the hits of a query ordered by score.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit is a single matching pad.
type SearchHit struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Name     string  `json:"name"`
	GroupID  string  `json:"group_id"`
	ServerID string  `json:"server_id"`
}

// Search executes a query against the pad index.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, params.Offset, false)
	req.Fields = []string{"name", "group_id", "server_id"}
	if strings.TrimSpace(params.Query) == "" {
		req.SortBy([]string{"-created_at", "_id"})
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		out.Hits = append(out.Hits, SearchHit{
			ID:       h.ID,
			Score:    h.Score,
			Name:     fieldString(h.Fields, "name"),
			GroupID:  fieldString(h.Fields, "group_id"),
			ServerID: fieldString(h.Fields, "server_id"),
		})
	}
	return out, nil
}

// buildQuery combines the text query with the exact filters.
func buildQuery(params SearchParams) query.Query {
	var must []query.Query

	if text := strings.TrimSpace(params.Query); text != "" {
		must = append(must, textQuery(text))
	}
	if params.GroupID != "" {
		must = append(must, termQuery("group_id", params.GroupID))
	}
	if params.ServerID != "" {
		must = append(must, termQuery("server_id", params.ServerID))
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

// textQuery matches whole words on name and slug, plus a prefix on name so
// partially typed names already find their pad.
func textQuery(text string) query.Query {
	name := bleve.NewMatchQuery(text)
	name.SetField("name")
	name.SetBoost(2.0)

	slug := bleve.NewMatchQuery(text)
	slug.SetField("slug")

	queries := []query.Query{name, slug}

	if !strings.ContainsAny(text, " \t") {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("name")
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}

func termQuery(field, value string) query.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

func fieldString(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
