package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/padlinkapp/padlink-server/internal/journal"
)

func (s *Server) registerJournalRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listJournal",
		Method:      http.MethodGet,
		Path:        "/api/v1/journal",
		Summary:     "List journal entries",
		Description: "Returns recent Etherpad mutations, newest first",
		Tags:        []string{"Journal"},
		Security:    bearer,
	}, s.handleListJournal)
}

// ListJournalInput contains the journal filters.
type ListJournalInput struct {
	Entity   string `query:"entity" enum:"group,author,pad" doc:"Only entries about this entity kind"`
	EntityID string `query:"entity_id" doc:"Only entries about this local record"`
	ServerID string `query:"server_id" doc:"Only entries for this server"`
	Outcome  string `query:"outcome" enum:"ok,not_found,failed" doc:"Only entries with this outcome"`
	Limit    int    `query:"limit" default:"50" minimum:"1" maximum:"1000" doc:"Maximum entries"`
}

// ListJournalOutput wraps the journal entries.
type ListJournalOutput struct {
	Body struct {
		Entries []journal.Entry `json:"entries" doc:"Journal entries, newest first"`
	}
}

func (s *Server) handleListJournal(ctx context.Context, input *ListJournalInput) (*ListJournalOutput, error) {
	entries, err := s.services.Journal.List(ctx, journal.Filter{
		Entity:   input.Entity,
		EntityID: input.EntityID,
		ServerID: input.ServerID,
		Outcome:  journal.Outcome(input.Outcome),
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	out := &ListJournalOutput{}
	out.Body.Entries = entries
	return out, nil
}
