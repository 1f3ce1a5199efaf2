package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/padlinkapp/padlink-server/internal/etherpad"
)

// fakeRemote is an in-memory Etherpad. Group and author ids are assigned
// sequentially ("g1", "g2", ...) and are stable per mapper.
type fakeRemote struct {
	mu      sync.Mutex
	calls   []string
	groups  map[string]string // mapper -> group id
	authors map[string]string // mapper -> author id
	names   map[string]string // author id -> name
	pads    map[string]bool   // pad id -> public
	live    map[string]bool   // group id -> exists
	fail    map[string]error  // method -> error to return
	block   map[string]bool   // method -> wait for ctx
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		groups:  map[string]string{},
		authors: map[string]string{},
		names:   map[string]string{},
		pads:    map[string]bool{},
		live:    map[string]bool{},
		fail:    map[string]error{},
		block:   map[string]bool{},
	}
}

func (f *fakeRemote) begin(ctx context.Context, method, arg string) error {
	f.mu.Lock()
	f.calls = append(f.calls, method+":"+arg)
	failErr := f.fail[method]
	block := f.block[method]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return &etherpad.Error{Op: method, Err: fmt.Errorf("%w: %w", etherpad.ErrUnavailable, ctx.Err())}
	}
	if failErr != nil {
		return &etherpad.Error{Op: method, Err: failErr}
	}
	return nil
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) CallsOf(method string) []string {
	var out []string
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, method+":") {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRemote) CreateGroupIfNotExistsFor(ctx context.Context, mapper string) (string, error) {
	if err := f.begin(ctx, "createGroupIfNotExistsFor", mapper); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.groups[mapper]
	if !ok {
		id = fmt.Sprintf("g%d", len(f.groups)+1)
		f.groups[mapper] = id
	}
	f.live[id] = true
	return id, nil
}

func (f *fakeRemote) CreateAuthorIfNotExistsFor(ctx context.Context, mapper, name string) (string, error) {
	if err := f.begin(ctx, "createAuthorIfNotExistsFor", mapper); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.authors[mapper]
	if !ok {
		id = fmt.Sprintf("a%d", len(f.authors)+1)
		f.authors[mapper] = id
	}
	f.names[id] = name
	return id, nil
}

func (f *fakeRemote) CreateGroupPad(ctx context.Context, groupID, padName string) (string, error) {
	padID := groupID + "$" + padName
	if err := f.begin(ctx, "createGroupPad", padID); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live[groupID] {
		return "", &etherpad.Error{Op: "createGroupPad", Err: etherpad.ErrNotFound}
	}
	if _, ok := f.pads[padID]; ok {
		return "", &etherpad.Error{Op: "createGroupPad", Err: etherpad.ErrAlreadyExists}
	}
	f.pads[padID] = false
	return padID, nil
}

func (f *fakeRemote) DeletePad(ctx context.Context, padID string) error {
	if err := f.begin(ctx, "deletePad", padID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pads[padID]; !ok {
		return &etherpad.Error{Op: "deletePad", Err: etherpad.ErrNotFound}
	}
	delete(f.pads, padID)
	return nil
}

func (f *fakeRemote) DeleteGroup(ctx context.Context, groupID string) error {
	if err := f.begin(ctx, "deleteGroup", groupID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live[groupID] {
		return &etherpad.Error{Op: "deleteGroup", Err: etherpad.ErrNotFound}
	}
	delete(f.live, groupID)
	return nil
}

func (f *fakeRemote) GetPublicStatus(ctx context.Context, padID string) (bool, error) {
	if err := f.begin(ctx, "getPublicStatus", padID); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	public, ok := f.pads[padID]
	if !ok {
		return false, &etherpad.Error{Op: "getPublicStatus", Err: etherpad.ErrNotFound}
	}
	return public, nil
}

func (f *fakeRemote) GetReadOnlyID(ctx context.Context, padID string) (string, error) {
	if err := f.begin(ctx, "getReadOnlyID", padID); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pads[padID]; !ok {
		return "", &etherpad.Error{Op: "getReadOnlyID", Err: etherpad.ErrNotFound}
	}
	return "r." + strings.ReplaceAll(padID, "$", "."), nil
}

func (f *fakeRemote) CheckToken(ctx context.Context) error {
	return f.begin(ctx, "checkToken", "")
}
