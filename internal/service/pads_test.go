package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/journal"
	"github.com/padlinkapp/padlink-server/internal/search"
)

func TestPadService_CreateNormalizesName(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	g := env.group(t, env.owner(t, "research"), srv)

	p := env.pad(t, g, "  Meeting   notes ")

	assert.Equal(t, "Meeting notes", p.Name)
	assert.Equal(t, "g.1$Meeting notes", p.PadID)
	assert.Equal(t, env.etherpad.URL+"/p/g.1%24Meeting%20notes", p.Link)
	assert.Equal(t, srv.ID, p.ServerID)
	assert.True(t, env.etherpad.HasPad(p.PadID))
}

func TestPadService_CreateRejectsInvalidNames(t *testing.T) {
	env := setupTestEnv(t)
	g := env.group(t, env.owner(t, "research"), env.server(t))

	for _, name := range []string{"", "   ", "a$b", "a/b", "what?"} {
		_, err := env.pads.Create(env.ctx, CreatePadRequest{GroupID: g.ID, Name: name})
		assert.ErrorIs(t, err, domainerrors.ErrValidation, name)
	}
	assert.Empty(t, env.etherpad.Calls("createGroupPad"))
}

func TestPadService_CreateDuplicate(t *testing.T) {
	env := setupTestEnv(t)
	g := env.group(t, env.owner(t, "research"), env.server(t))
	env.pad(t, g, "notes")

	// The remote pad is adopted, the local unique constraint rejects the copy.
	_, err := env.pads.Create(env.ctx, CreatePadRequest{GroupID: g.ID, Name: "notes"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestPadService_AdoptsOrphanRemotePad(t *testing.T) {
	env := setupTestEnv(t)
	g := env.group(t, env.owner(t, "research"), env.server(t))
	env.etherpad.AddPad(g.RemoteGroupID+"$notes", true)

	p := env.pad(t, g, "notes")
	assert.Equal(t, g.RemoteGroupID+"$notes", p.PadID)
}

func TestPadService_GetAndListByGroup(t *testing.T) {
	env := setupTestEnv(t)
	g := env.group(t, env.owner(t, "research"), env.server(t))
	created := env.pad(t, g, "notes")

	got, err := env.pads.Get(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.PadID, got.PadID)
	assert.Equal(t, created.Link, got.Link)

	views, err := env.pads.ListByGroup(env.ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, created.PadID, views[0].PadID)
}

func TestPadService_DeleteRemoteAlreadyGone(t *testing.T) {
	env := setupTestEnv(t)
	g := env.group(t, env.owner(t, "research"), env.server(t))
	p := env.pad(t, g, "notes")
	env.etherpad.RemovePad(p.PadID)

	require.NoError(t, env.pads.Delete(env.ctx, p.ID))

	_, err := env.pads.Get(env.ctx, p.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	entries, err := env.journals.List(env.ctx, journal.Filter{EntityID: p.ID, Outcome: journal.OutcomeNotFound})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "deletePad", entries[0].Op)
}

func TestPadService_Status(t *testing.T) {
	env := setupTestEnv(t)
	g := env.group(t, env.owner(t, "research"), env.server(t))
	p := env.pad(t, g, "notes")

	status, err := env.pads.Status(env.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.PadID, status.PadID)
	assert.Equal(t, p.Link, status.Link)
	assert.False(t, status.Public)
	assert.Equal(t, "r.g.1.notes", status.ReadOnlyID)
}

func TestPadService_Search(t *testing.T) {
	env := setupTestEnv(t)
	g := env.group(t, env.owner(t, "research"), env.server(t))
	notes := env.pad(t, g, "meeting notes")
	env.pad(t, g, "budget")

	res, err := env.pads.Search(env.ctx, search.SearchParams{Query: "meeting"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, notes.ID, res.Hits[0].ID)

	require.NoError(t, env.pads.Delete(env.ctx, notes.ID))
	res, err = env.pads.Search(env.ctx, search.SearchParams{Query: "meeting"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestPadService_SearchNotConfigured(t *testing.T) {
	svc := NewPadService(nil, nil, nil, nil, nil, nil)

	_, err := svc.Search(t.Context(), search.SearchParams{Query: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrConfiguration)
}

func TestJournalService(t *testing.T) {
	env := setupTestEnv(t)
	env.group(t, env.owner(t, "research"), env.server(t))

	entries, err := env.journals.List(env.ctx, journal.Filter{Entity: "group"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.OutcomeOK, entries[0].Outcome)
	assert.Equal(t, "g.1", entries[0].RemoteID)

	_, err = env.journals.List(env.ctx, journal.Filter{Outcome: "exploded"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.journals.Prune(env.ctx, 0)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	n, err := env.journals.Prune(env.ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}
