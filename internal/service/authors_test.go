package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/etherpad/etherpadtest"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

func TestAuthorService_CreateMapsAndSyncs(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	ada := env.user(t, "ada")
	g := env.group(t, env.owner(t, "research", ada.ID), srv)
	env.group(t, env.owner(t, "other"), srv)

	author, err := env.authors.Create(env.ctx, CreateAuthorRequest{UserID: ada.ID, ServerID: srv.ID})
	require.NoError(t, err)

	assert.Equal(t, "a.1", author.RemoteAuthorID)
	assert.Equal(t, "ada", env.etherpad.AuthorName("a.1"))
	assert.Equal(t, []string{g.ID}, author.GroupIDs)

	_, err = env.authors.Create(env.ctx, CreateAuthorRequest{UserID: ada.ID, ServerID: srv.ID})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthorService_CreateRemoteFailure(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	ada := env.user(t, "ada")
	env.etherpad.Fail("createAuthorIfNotExistsFor", etherpadtest.CodeWrongAPIKey, "no or wrong API Key")

	_, err := env.authors.Create(env.ctx, CreateAuthorRequest{UserID: ada.ID, ServerID: srv.ID})
	assert.ErrorIs(t, err, domainerrors.ErrConfiguration)

	authors, err := env.authors.List(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, authors)
}

// failingSync is a reconciler whose group sync always fails.
type failingSync struct {
	Reconciler
}

func (failingSync) SyncAuthorGroups(context.Context, *domain.Author) ([]string, error) {
	return nil, errors.New("store unavailable")
}

func TestAuthorService_CreateSucceedsWhenSyncFails(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	ada := env.user(t, "ada")
	authors := NewAuthorService(env.store, failingSync{env.rec}, validation.New(), nil)

	author, err := authors.Create(env.ctx, CreateAuthorRequest{UserID: ada.ID, ServerID: srv.ID})
	require.NoError(t, err)
	assert.Equal(t, "a.1", author.RemoteAuthorID)

	stored, err := env.authors.Get(env.ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.RemoteAuthorID, stored.RemoteAuthorID)
}

func TestAuthorService_CreateUnknownUser(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)

	_, err := env.authors.Create(env.ctx, CreateAuthorRequest{UserID: "usr-missing", ServerID: srv.ID})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAuthorService_SyncGroupsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	ada := env.user(t, "ada")
	author, err := env.authors.Create(env.ctx, CreateAuthorRequest{UserID: ada.ID, ServerID: srv.ID})
	require.NoError(t, err)

	og := env.owner(t, "research")
	g := env.group(t, og, srv)
	// Membership added directly, without the directory service sync.
	require.NoError(t, env.store.AddOwnerGroupMember(env.ctx, og.ID, ada.ID))

	added, err := env.authors.SyncGroups(env.ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID}, added)

	added, err = env.authors.SyncGroups(env.ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.NotNil(t, added)
}

func TestAuthorService_RemapAndDelete(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	ada := env.user(t, "ada")
	author, err := env.authors.Create(env.ctx, CreateAuthorRequest{UserID: ada.ID, ServerID: srv.ID})
	require.NoError(t, err)

	again, err := env.authors.Remap(env.ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.RemoteAuthorID, again.RemoteAuthorID)

	require.NoError(t, env.authors.Delete(env.ctx, author.ID))
	_, err = env.authors.Get(env.ctx, author.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
