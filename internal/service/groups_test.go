package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/etherpad/etherpadtest"
)

func TestGroupService_Create(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	og := env.owner(t, "research")

	g := env.group(t, og, srv)
	assert.Equal(t, "g.1", g.RemoteGroupID)
	assert.True(t, g.IsMapped())
	assert.Equal(t, []string{"createGroupIfNotExistsFor:" + og.ID}, env.etherpad.Calls("createGroupIfNotExistsFor"))

	_, err := env.groups.Create(env.ctx, CreateGroupRequest{OwnerGroupID: og.ID, ServerID: srv.ID})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestGroupService_CreateRemoteFailureSavesNothing(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	og := env.owner(t, "research")
	env.etherpad.Fail("createGroupIfNotExistsFor", etherpadtest.CodeInternal, "database down")

	_, err := env.groups.Create(env.ctx, CreateGroupRequest{OwnerGroupID: og.ID, ServerID: srv.ID})
	assert.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)

	groups, err := env.groups.List(env.ctx, GroupFilter{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupService_CreateUnknownOwner(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)

	_, err := env.groups.Create(env.ctx, CreateGroupRequest{OwnerGroupID: "og-missing", ServerID: srv.ID})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Empty(t, env.etherpad.Calls(""))
}

func TestGroupService_CreateSyncsMemberAuthors(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	ada := env.user(t, "ada")
	author, err := env.authors.Create(env.ctx, CreateAuthorRequest{UserID: ada.ID, ServerID: srv.ID})
	require.NoError(t, err)

	g := env.group(t, env.owner(t, "research", ada.ID), srv)

	got, err := env.authors.Get(env.ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID}, got.GroupIDs)
}

func TestGroupService_List(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	a := env.group(t, env.owner(t, "a"), srv)
	b := env.group(t, env.owner(t, "b"), srv)

	all, err := env.groups.List(env.ctx, GroupFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byOwner, err := env.groups.List(env.ctx, GroupFilter{OwnerGroupID: a.OwnerGroupID, ServerID: srv.ID})
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, a.ID, byOwner[0].ID)

	byServer, err := env.groups.List(env.ctx, GroupFilter{ServerID: srv.ID})
	require.NoError(t, err)
	assert.Len(t, byServer, 2)

	none, err := env.groups.List(env.ctx, GroupFilter{OwnerGroupID: b.OwnerGroupID, ServerID: "srv-other"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGroupService_RemapIsStable(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	g := env.group(t, env.owner(t, "research"), srv)

	again, err := env.groups.Remap(env.ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.RemoteGroupID, again.RemoteGroupID)
	assert.Len(t, env.etherpad.Calls("createGroupIfNotExistsFor"), 2)
}

func TestGroupService_DeleteRemovesPadsThenGroup(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server(t)
	g := env.group(t, env.owner(t, "research"), srv)
	env.pad(t, g, "one")
	env.pad(t, g, "two")
	env.pad(t, g, "three")

	require.NoError(t, env.groups.Delete(env.ctx, g.ID))

	assert.Len(t, env.etherpad.Calls("deletePad"), 3)
	assert.Equal(t, []string{"deleteGroup:" + g.RemoteGroupID}, env.etherpad.Calls("deleteGroup"))
	pads, err := env.pads.List(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, pads)
}
