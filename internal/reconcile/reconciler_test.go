package reconcile

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/etherpad"
	"github.com/padlinkapp/padlink-server/internal/journal"
	"github.com/padlinkapp/padlink-server/internal/store"
	"github.com/padlinkapp/padlink-server/internal/store/sqlite"
)

type harness struct {
	t       *testing.T
	ctx     context.Context
	store   *sqlite.Store
	remote  *fakeRemote
	journal *journal.Journal
	rec     *Reconciler
	server  *domain.Server
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T, opts ...func(*Config)) *harness {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "padlink.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	j, err := journal.OpenInMemory(discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	remote := newFakeRemote()
	cfg := Config{
		Remotes:     func(*domain.Server) Remote { return remote },
		Recorder:    j,
		CallTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	rec, err := New(s, cfg, discardLogger())
	require.NoError(t, err)

	h := &harness{t: t, ctx: context.Background(), store: s, remote: remote, journal: j, rec: rec}
	h.server = h.addServer("srv-1", "http://pad.example/")
	return h
}

func rec(id string) domain.Record {
	now := time.Now()
	return domain.Record{ID: id, CreatedAt: now, UpdatedAt: now}
}

func (h *harness) addServer(id, baseURL string) *domain.Server {
	srv := &domain.Server{Record: rec(id), Title: id, BaseURL: baseURL, APIKey: "key"}
	require.NoError(h.t, h.store.CreateServer(h.ctx, srv))
	return srv
}

func (h *harness) addUser(id, username string) *domain.User {
	u := &domain.User{Record: rec(id), Username: username, DisplayName: "Display " + username, Email: username + "@example.org"}
	require.NoError(h.t, h.store.CreateUser(h.ctx, u))
	return u
}

func (h *harness) addOwner(id string, members ...string) *domain.UserGroup {
	og := &domain.UserGroup{Record: rec(id), Name: "owner " + id, MemberIDs: members}
	require.NoError(h.t, h.store.CreateOwnerGroup(h.ctx, og))
	return og
}

// mapGroup runs PreCreateGroup and persists the group, as GroupService does.
func (h *harness) mapGroup(id, ownerID string, server *domain.Server) *domain.Group {
	g := &domain.Group{Record: rec(id), OwnerGroupID: ownerID, ServerID: server.ID}
	require.NoError(h.t, h.rec.PreCreateGroup(h.ctx, g))
	require.NoError(h.t, h.store.CreateGroup(h.ctx, g))
	return g
}

func (h *harness) addPad(id, name string, g *domain.Group) *domain.Pad {
	p := &domain.Pad{Record: rec(id), Name: name, GroupID: g.ID, ServerID: g.ServerID}
	require.NoError(h.t, h.rec.PreCreatePad(h.ctx, p))
	require.NoError(h.t, h.store.CreatePad(h.ctx, p))
	return p
}

func TestNew_RequiresRemotes(t *testing.T) {
	_, err := New(nil, Config{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConfiguration)
}

func TestEndToEnd(t *testing.T) {
	h := newHarness(t)
	h.addOwner("42")

	g := h.mapGroup("grp-1", "42", h.server)
	assert.Equal(t, "g1", g.RemoteGroupID)

	p := h.addPad("pad-1", "notes", g)
	padID, err := p.PadID(g)
	require.NoError(t, err)
	assert.Equal(t, "g1$notes", padID)
	assert.Equal(t, "http://pad.example/p/g1%24notes", h.server.PadLink(padID))

	status, err := h.rec.Status(h.ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "g1$notes", status.PadID)
	assert.Equal(t, "http://pad.example/p/g1%24notes", status.Link)
	assert.False(t, status.Public)
	assert.Equal(t, "r.g1.notes", status.ReadOnlyID)
}

func TestPreCreateGroup_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")

	first := &domain.Group{Record: rec("grp-1"), OwnerGroupID: "og-1", ServerID: h.server.ID}
	second := &domain.Group{Record: rec("grp-1"), OwnerGroupID: "og-1", ServerID: h.server.ID}

	require.NoError(t, h.rec.PreCreateGroup(h.ctx, first))
	require.NoError(t, h.rec.PreCreateGroup(h.ctx, second))

	assert.Equal(t, first.RemoteGroupID, second.RemoteGroupID)
	assert.Equal(t, []string{"createGroupIfNotExistsFor:og-1", "createGroupIfNotExistsFor:og-1"}, h.remote.Calls())
}

func TestPreCreateGroup_RemoteFailureLeavesGroupUnmapped(t *testing.T) {
	h := newHarness(t)
	h.remote.fail["createGroupIfNotExistsFor"] = etherpad.ErrUnavailable

	g := &domain.Group{Record: rec("grp-1"), OwnerGroupID: "og-1", ServerID: h.server.ID}
	err := h.rec.PreCreateGroup(h.ctx, g)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)
	assert.Empty(t, g.RemoteGroupID)

	entries, err := h.journal.Find(h.ctx, journal.Filter{Outcome: journal.OutcomeFailed})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "createGroupIfNotExistsFor", entries[0].Op)
}

func TestPreCreateGroup_MissingServer(t *testing.T) {
	h := newHarness(t)

	g := &domain.Group{Record: rec("grp-1"), OwnerGroupID: "og-1", ServerID: "srv-missing"}
	err := h.rec.PreCreateGroup(h.ctx, g)

	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Empty(t, h.remote.Calls())
}

func TestRemoteErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  *domainerrors.Error
	}{
		{"unavailable", etherpad.ErrUnavailable, domainerrors.ErrRemoteUnavailable},
		{"internal", etherpad.ErrServer, domainerrors.ErrRemoteUnavailable},
		{"malformed", etherpad.ErrMalformed, domainerrors.ErrRemoteUnavailable},
		{"bad api key", etherpad.ErrUnauthorized, domainerrors.ErrConfiguration},
		{"unsupported", etherpad.ErrUnsupported, domainerrors.ErrConfiguration},
		{"bad request", etherpad.ErrBadRequest, domainerrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.remote.fail["createGroupIfNotExistsFor"] = tt.cause

			err := h.rec.PreCreateGroup(h.ctx, &domain.Group{OwnerGroupID: "og", ServerID: h.server.ID})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestCallTimeout(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.CallTimeout = 20 * time.Millisecond })
	h.remote.block["createGroupIfNotExistsFor"] = true

	start := time.Now()
	err := h.rec.PreCreateGroup(h.ctx, &domain.Group{OwnerGroupID: "og", ServerID: h.server.ID})

	assert.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPreCreateAuthor_UsesNameMapper(t *testing.T) {
	mapper, err := AuthorNameMapper("display_name")
	require.NoError(t, err)

	h := newHarness(t, func(c *Config) { c.AuthorName = mapper })
	user := h.addUser("usr-1", "ada")

	a := &domain.Author{Record: rec("ath-1"), UserID: user.ID, ServerID: h.server.ID}
	require.NoError(t, h.rec.PreCreateAuthor(h.ctx, a))

	assert.Equal(t, "a1", a.RemoteAuthorID)
	assert.Equal(t, "Display ada", h.remote.names["a1"])
	assert.Equal(t, []string{"createAuthorIfNotExistsFor:usr-1"}, h.remote.Calls())
}

func TestPreCreateAuthor_DefaultNameIsUsername(t *testing.T) {
	h := newHarness(t)
	user := h.addUser("usr-1", "ada")

	a := &domain.Author{Record: rec("ath-1"), UserID: user.ID, ServerID: h.server.ID}
	require.NoError(t, h.rec.PreCreateAuthor(h.ctx, a))

	assert.Equal(t, "ada", h.remote.names[a.RemoteAuthorID])
}

func TestPreCreateAuthor_Failure(t *testing.T) {
	h := newHarness(t)
	user := h.addUser("usr-1", "ada")
	h.remote.fail["createAuthorIfNotExistsFor"] = etherpad.ErrServer

	a := &domain.Author{Record: rec("ath-1"), UserID: user.ID, ServerID: h.server.ID}
	err := h.rec.PreCreateAuthor(h.ctx, a)

	assert.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)
	assert.Empty(t, a.RemoteAuthorID)
}

func TestPreCreatePad_UnmappedGroupIsInvalidState(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")

	// Persisted directly without mapping.
	g := &domain.Group{Record: rec("grp-1"), OwnerGroupID: "og-1", ServerID: h.server.ID}
	require.NoError(t, h.store.CreateGroup(h.ctx, g))

	err := h.rec.PreCreatePad(h.ctx, &domain.Pad{Name: "notes", GroupID: g.ID})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
	assert.Empty(t, h.remote.Calls())
}

func TestPreCreatePad_ServerMismatch(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")
	g := h.mapGroup("grp-1", "og-1", h.server)

	err := h.rec.PreCreatePad(h.ctx, &domain.Pad{Name: "notes", GroupID: g.ID, ServerID: "srv-other"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
}

func TestPreCreatePad_AdoptsExistingRemotePad(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")
	g := h.mapGroup("grp-1", "og-1", h.server)
	h.remote.pads["g1$notes"] = true

	p := &domain.Pad{Record: rec("pad-1"), Name: "notes", GroupID: g.ID}
	require.NoError(t, h.rec.PreCreatePad(h.ctx, p))
	assert.Equal(t, h.server.ID, p.ServerID)
}

func TestPreDeletePad_RemoteAbsentSucceeds(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")
	g := h.mapGroup("grp-1", "og-1", h.server)
	p := h.addPad("pad-1", "notes", g)

	delete(h.remote.pads, "g1$notes")

	require.NoError(t, h.rec.PreDeletePad(h.ctx, p))

	entries, err := h.journal.Find(h.ctx, journal.Filter{Entity: "pad", EntityID: p.ID})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, journal.OutcomeNotFound, entries[0].Outcome)
	assert.Equal(t, "g1$notes", entries[0].RemoteID)
}

func TestPreDeletePad_OtherFailurePropagates(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")
	g := h.mapGroup("grp-1", "og-1", h.server)
	p := h.addPad("pad-1", "notes", g)
	h.remote.fail["deletePad"] = etherpad.ErrUnavailable

	err := h.rec.PreDeletePad(h.ctx, p)
	assert.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)
}

func TestPreDeleteGroup_DeletesPadsThenGroup(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		t.Run(map[int]string{0: "no pads", 1: "one pad", 3: "three pads"}[n], func(t *testing.T) {
			h := newHarness(t)
			h.addOwner("og-1")
			g := h.mapGroup("grp-1", "og-1", h.server)
			for i := 0; i < n; i++ {
				h.addPad("pad-"+string(rune('a'+i)), "pad "+string(rune('a'+i)), g)
			}
			before := len(h.remote.Calls())

			require.NoError(t, h.rec.PreDeleteGroup(h.ctx, g))

			calls := h.remote.Calls()[before:]
			require.Len(t, calls, n+1)
			for i := 0; i < n; i++ {
				assert.Contains(t, calls[i], "deletePad:g1$")
			}
			assert.Equal(t, "deleteGroup:g1", calls[n])

			pads, err := h.store.ListPadsByGroup(h.ctx, g.ID)
			require.NoError(t, err)
			assert.Empty(t, pads)
		})
	}
}

func TestPreDeleteGroup_RemoteGroupAlreadyGone(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")
	g := h.mapGroup("grp-1", "og-1", h.server)
	delete(h.remote.live, "g1")

	require.NoError(t, h.rec.PreDeleteGroup(h.ctx, g))
}

func TestPreDeleteGroup_FailureStopsCascade(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")
	g := h.mapGroup("grp-1", "og-1", h.server)
	h.addPad("pad-1", "notes", g)
	h.remote.fail["deletePad"] = etherpad.ErrServer

	err := h.rec.PreDeleteGroup(h.ctx, g)
	require.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)

	assert.Empty(t, h.remote.CallsOf("deleteGroup"))
	pads, _ := h.store.ListPadsByGroup(h.ctx, g.ID)
	assert.Len(t, pads, 1)
	_, err = h.store.GetGroup(h.ctx, g.ID)
	assert.NoError(t, err)
}

func TestOnOwnerGroupDelete_AcrossServers(t *testing.T) {
	h := newHarness(t)
	other := h.addServer("srv-2", "http://other.example/")
	h.addOwner("og-1")
	h.addOwner("og-2")

	g1 := h.mapGroup("grp-1", "og-1", h.server)
	g2 := h.mapGroup("grp-2", "og-1", other)
	keep := h.mapGroup("grp-3", "og-2", h.server)
	h.addPad("pad-1", "notes", g1)

	require.NoError(t, h.rec.OnOwnerGroupDelete(h.ctx, "og-1"))

	for _, id := range []string{g1.ID, g2.ID} {
		_, err := h.store.GetGroup(h.ctx, id)
		assert.ErrorIs(t, err, store.ErrNotFound, "group %s", id)
	}
	_, err := h.store.GetGroup(h.ctx, keep.ID)
	assert.NoError(t, err)
	assert.Len(t, h.remote.CallsOf("deleteGroup"), 2)
	assert.Len(t, h.remote.CallsOf("deletePad"), 1)
}

func TestSyncAuthorGroups_Idempotent(t *testing.T) {
	h := newHarness(t)
	other := h.addServer("srv-2", "http://other.example/")
	user := h.addUser("usr-1", "ada")
	h.addOwner("og-1", user.ID)
	h.addOwner("og-2", user.ID)
	h.addOwner("og-3") // user is not a member

	g1 := h.mapGroup("grp-1", "og-1", h.server)
	h.mapGroup("grp-2", "og-2", other) // other server, not synced
	h.mapGroup("grp-3", "og-3", h.server)

	a := &domain.Author{Record: rec("ath-1"), UserID: user.ID, ServerID: h.server.ID}
	require.NoError(t, h.rec.PreCreateAuthor(h.ctx, a))
	require.NoError(t, h.store.CreateAuthor(h.ctx, a))

	added, err := h.rec.SyncAuthorGroups(h.ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{g1.ID}, added)
	assert.Equal(t, []string{g1.ID}, a.GroupIDs)

	again, err := h.rec.SyncAuthorGroups(h.ctx, a)
	require.NoError(t, err)
	assert.Empty(t, again)

	stored, err := h.store.GetAuthor(h.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{g1.ID}, stored.GroupIDs)

	// A fresh copy without the in-memory ids converges on the same set.
	stored.GroupIDs = nil
	_, err = h.rec.SyncAuthorGroups(h.ctx, stored)
	require.NoError(t, err)
	final, _ := h.store.GetAuthor(h.ctx, a.ID)
	assert.Equal(t, []string{g1.ID}, final.GroupIDs)
}

func TestOnEntityEvent(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")

	g := &domain.Group{Record: rec("grp-1"), OwnerGroupID: "og-1", ServerID: h.server.ID}
	require.NoError(t, h.rec.OnEntityEvent(h.ctx, g, PreCreate))
	assert.Equal(t, "g1", g.RemoteGroupID)
	require.NoError(t, h.store.CreateGroup(h.ctx, g))

	p := &domain.Pad{Record: rec("pad-1"), Name: "notes", GroupID: g.ID}
	require.NoError(t, h.rec.OnEntityEvent(h.ctx, p, PreCreate))
	require.NoError(t, h.rec.OnEntityEvent(h.ctx, p, PreDelete))

	err := h.rec.OnEntityEvent(h.ctx, &domain.Author{}, PreDelete)
	assert.ErrorIs(t, err, domainerrors.ErrInternal)

	err = h.rec.OnEntityEvent(h.ctx, "not an entity", PreCreate)
	assert.ErrorIs(t, err, domainerrors.ErrInternal)
}

func TestAuthorNameMapper(t *testing.T) {
	u := &domain.User{Username: "ada", DisplayName: "  Ada  Lovelace ", Email: "ada@example.org"}
	blank := &domain.User{Username: "grace"}

	tests := []struct {
		key       string
		want      string
		wantBlank string
	}{
		{"", "ada", "grace"},
		{"username", "ada", "grace"},
		{"display_name", "Ada Lovelace", "grace"},
		{"email", "ada@example.org", "grace"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			fn, err := AuthorNameMapper(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn(u))
			assert.Equal(t, tt.wantBlank, fn(blank))
		})
	}

	_, err := AuthorNameMapper("nickname")
	assert.ErrorIs(t, err, domainerrors.ErrConfiguration)
}

func TestCheckServer(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.rec.CheckServer(h.ctx, h.server))

	h.remote.fail["checkToken"] = etherpad.ErrUnauthorized
	err := h.rec.CheckServer(h.ctx, h.server)
	assert.ErrorIs(t, err, domainerrors.ErrConfiguration)

	// Reads are not journaled.
	entries, err := h.journal.List(h.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStatus_UnknownRemotePad(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")
	g := h.mapGroup("grp-1", "og-1", h.server)
	p := h.addPad("pad-1", "notes", g)
	delete(h.remote.pads, "g1$notes")

	_, err := h.rec.Status(h.ctx, p)
	assert.ErrorIs(t, err, domainerrors.ErrRemoteNotFound)
}

// countingStore counts the group and server lookups made through it.
type countingStore struct {
	Store
	groupReads  int
	serverReads int
}

func (c *countingStore) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	c.groupReads++
	return c.Store.GetGroup(ctx, id)
}

func (c *countingStore) GetServer(ctx context.Context, id string) (*domain.Server, error) {
	c.serverReads++
	return c.Store.GetServer(ctx, id)
}

func TestStatus_ResolvesPadOnce(t *testing.T) {
	h := newHarness(t)
	h.addOwner("og-1")
	g := h.mapGroup("grp-1", "og-1", h.server)
	p := h.addPad("pad-1", "notes", g)

	counting := &countingStore{Store: h.store}
	r, err := New(counting, Config{Remotes: func(*domain.Server) Remote { return h.remote }}, discardLogger())
	require.NoError(t, err)

	status, err := r.Status(h.ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "r.g1.notes", status.ReadOnlyID)
	assert.Equal(t, 1, counting.groupReads)
	assert.Equal(t, 1, counting.serverReads)
	assert.Len(t, h.remote.CallsOf("getPublicStatus"), 1)
	assert.Len(t, h.remote.CallsOf("getReadOnlyID"), 1)
}
