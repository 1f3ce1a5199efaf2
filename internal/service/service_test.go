package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/etherpad"
	"github.com/padlinkapp/padlink-server/internal/etherpad/etherpadtest"
	"github.com/padlinkapp/padlink-server/internal/journal"
	"github.com/padlinkapp/padlink-server/internal/reconcile"
	"github.com/padlinkapp/padlink-server/internal/search"
	"github.com/padlinkapp/padlink-server/internal/store/sqlite"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// testEnv wires every service against a temporary store and a fake Etherpad.
type testEnv struct {
	ctx       context.Context
	store     *sqlite.Store
	etherpad  *etherpadtest.Server
	rec       *reconcile.Reconciler
	journal   *journal.Journal
	index     *search.SearchIndex
	servers   *ServerService
	directory *DirectoryService
	groups    *GroupService
	authors   *AuthorService
	pads      *PadService
	journals  *JournalService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	s, err := sqlite.Open(filepath.Join(dir, "padlink.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	s.SetPadIndexer(search.NewPadIndexer(index))

	j, err := journal.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	pool := etherpad.NewPool(etherpad.Config{Timeout: 5 * time.Second, RPS: 1000, Burst: 1000}, logger)
	t.Cleanup(pool.Close)

	rec, err := reconcile.New(s, reconcile.Config{
		Remotes:  reconcile.PoolFactory(pool),
		Recorder: j,
	}, logger)
	require.NoError(t, err)

	v := validation.New()
	return &testEnv{
		ctx:       context.Background(),
		store:     s,
		etherpad:  etherpadtest.New(t),
		rec:       rec,
		journal:   j,
		index:     index,
		servers:   NewServerService(s, rec, pool, v, logger),
		directory: NewDirectoryService(s, rec, v, logger),
		groups:    NewGroupService(s, rec, v, logger),
		authors:   NewAuthorService(s, rec, v, logger),
		pads:      NewPadService(s, rec, rec, index, v, logger),
		journals:  NewJournalService(j, logger),
	}
}

func (e *testEnv) server(t *testing.T) *domain.Server {
	t.Helper()
	srv, err := e.servers.Create(e.ctx, CreateServerRequest{
		Title:   "Main",
		BaseURL: e.etherpad.BaseURL(),
		APIKey:  etherpadtest.APIKey,
	})
	require.NoError(t, err)
	return srv
}

func (e *testEnv) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.directory.CreateUser(e.ctx, CreateUserRequest{Username: username, DisplayName: username + " Display"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) owner(t *testing.T, name string, members ...string) *domain.UserGroup {
	t.Helper()
	og, err := e.directory.CreateOwnerGroup(e.ctx, CreateOwnerGroupRequest{Name: name, MemberIDs: members})
	require.NoError(t, err)
	return og
}

func (e *testEnv) group(t *testing.T, owner *domain.UserGroup, server *domain.Server) *domain.Group {
	t.Helper()
	g, err := e.groups.Create(e.ctx, CreateGroupRequest{OwnerGroupID: owner.ID, ServerID: server.ID})
	require.NoError(t, err)
	return g
}

func (e *testEnv) pad(t *testing.T, g *domain.Group, name string) *PadView {
	t.Helper()
	p, err := e.pads.Create(e.ctx, CreatePadRequest{GroupID: g.ID, Name: name})
	require.NoError(t, err)
	return p
}
