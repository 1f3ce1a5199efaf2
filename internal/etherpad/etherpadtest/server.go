// Package etherpadtest provides an in-memory Etherpad HTTP API for tests.
package etherpadtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// APIKey is the key the fake accepts.
const APIKey = "test-api-key"

// Etherpad API response codes.
const (
	CodeOK          = 0
	CodeBadRequest  = 1
	CodeInternal    = 2
	CodeNoSuchFunc  = 3
	CodeWrongAPIKey = 4
)

type failure struct {
	code    int
	message string
}

// Server is a stateful fake of the Etherpad group pad API. Group and author
// ids are assigned sequentially ("g.1", "a.1", ...) per mapper.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []string
	groups   map[string]string // mapper -> group id
	live     map[string]bool   // group id -> exists
	authors  map[string]string // mapper -> author id
	names    map[string]string // author id -> name
	pads     map[string]bool   // pad id -> public
	failures map[string]failure
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		groups:   map[string]string{},
		live:     map[string]bool{},
		authors:  map[string]string{},
		names:    map[string]string{},
		pads:     map[string]bool{},
		failures: map[string]failure{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the server URL with a trailing slash, as operators enter it.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

// Fail makes every later call of method answer with an API error.
func (s *Server) Fail(method string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = failure{code: code, message: message}
}

// Recover clears a failure set by Fail.
func (s *Server) Recover(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method)
}

// Calls returns "method:arg" for each call of method, in order. An empty
// method returns every call.
func (s *Server) Calls(method string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if method == "" || strings.HasPrefix(c, method+":") {
			out = append(out, c)
		}
	}
	return out
}

// HasGroup reports whether the remote group exists.
func (s *Server) HasGroup(groupID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live[groupID]
}

// HasPad reports whether the remote pad exists.
func (s *Server) HasPad(padID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pads[padID]
	return ok
}

// AddPad creates a remote pad out of band.
func (s *Server) AddPad(padID string, public bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pads[padID] = public
}

// RemovePad deletes a remote pad out of band.
func (s *Server) RemovePad(padID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pads, padID)
}

// AuthorName returns the name last sent for an author.
func (s *Server) AuthorName(authorID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names[authorID]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "api" {
		http.NotFound(w, r)
		return
	}
	method := parts[2]
	q := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, method+":"+callArg(method, q.Get))

	if q.Get("apikey") != APIKey {
		reply(w, CodeWrongAPIKey, "no or wrong API Key", nil)
		return
	}
	if f, ok := s.failures[method]; ok {
		reply(w, f.code, f.message, nil)
		return
	}

	switch method {
	case "checkToken":
		reply(w, CodeOK, "ok", nil)

	case "createGroupIfNotExistsFor":
		mapper := q.Get("groupMapper")
		id, ok := s.groups[mapper]
		if !ok {
			id = fmt.Sprintf("g.%d", len(s.groups)+1)
			s.groups[mapper] = id
		}
		s.live[id] = true
		reply(w, CodeOK, "ok", map[string]string{"groupID": id})

	case "createAuthorIfNotExistsFor":
		mapper := q.Get("authorMapper")
		id, ok := s.authors[mapper]
		if !ok {
			id = fmt.Sprintf("a.%d", len(s.authors)+1)
			s.authors[mapper] = id
		}
		s.names[id] = q.Get("name")
		reply(w, CodeOK, "ok", map[string]string{"authorID": id})

	case "createGroupPad":
		groupID := q.Get("groupID")
		if !s.live[groupID] {
			reply(w, CodeBadRequest, "groupID does not exist", nil)
			return
		}
		padID := groupID + "$" + q.Get("padName")
		if _, ok := s.pads[padID]; ok {
			reply(w, CodeBadRequest, "padName does already exist", nil)
			return
		}
		s.pads[padID] = false
		reply(w, CodeOK, "ok", map[string]string{"padID": padID})

	case "deletePad":
		padID := q.Get("padID")
		if _, ok := s.pads[padID]; !ok {
			reply(w, CodeBadRequest, "padID does not exist", nil)
			return
		}
		delete(s.pads, padID)
		reply(w, CodeOK, "ok", nil)

	case "deleteGroup":
		groupID := q.Get("groupID")
		if !s.live[groupID] {
			reply(w, CodeBadRequest, "groupID does not exist", nil)
			return
		}
		delete(s.live, groupID)
		for padID := range s.pads {
			if strings.HasPrefix(padID, groupID+"$") {
				delete(s.pads, padID)
			}
		}
		reply(w, CodeOK, "ok", nil)

	case "getPublicStatus":
		public, ok := s.pads[q.Get("padID")]
		if !ok {
			reply(w, CodeBadRequest, "padID does not exist", nil)
			return
		}
		reply(w, CodeOK, "ok", map[string]bool{"publicStatus": public})

	case "getReadOnlyID":
		padID := q.Get("padID")
		if _, ok := s.pads[padID]; !ok {
			reply(w, CodeBadRequest, "padID does not exist", nil)
			return
		}
		reply(w, CodeOK, "ok", map[string]string{"readOnlyID": "r." + strings.NewReplacer("$", ".").Replace(padID)})

	default:
		reply(w, CodeNoSuchFunc, "no such function", nil)
	}
}

func callArg(method string, get func(string) string) string {
	switch method {
	case "createGroupIfNotExistsFor":
		return get("groupMapper")
	case "createAuthorIfNotExistsFor":
		return get("authorMapper")
	case "createGroupPad":
		return get("groupID") + "$" + get("padName")
	case "deleteGroup":
		return get("groupID")
	default:
		return get("padID")
	}
}

func reply(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": message, "data": data})
}
