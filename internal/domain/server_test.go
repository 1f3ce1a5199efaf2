package domain

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_APIURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"trailing slash", "http://x/", "http://x/api"},
		{"no trailing slash", "http://x", "http://x/api"},
		{"with path", "https://pads.example.org/etherpad/", "https://pads.example.org/etherpad/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{BaseURL: tt.baseURL}
			assert.Equal(t, tt.want, s.APIURL())
			assert.Equal(t, s.APIURL(), s.APIURL(), "APIURL must be stable across calls")
		})
	}
}

func TestServer_PadLink(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		padID   string
		want    string
	}{
		{"escapes separator", "http://pad.example/", "g1$notes", "http://pad.example/p/g1%24notes"},
		{"inserts slash", "http://pad.example", "g1$notes", "http://pad.example/p/g1%24notes"},
		{"escapes spaces", "http://pad.example/", "g.abc$team notes", "http://pad.example/p/g.abc%24team%20notes"},
		{"keeps literal plus", "http://pad.example/", "g1$a+b", "http://pad.example/p/g1%24a%2Bb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{BaseURL: tt.baseURL}
			link := s.PadLink(tt.padID)
			assert.Equal(t, tt.want, link)

			u, err := url.Parse(link)
			require.NoError(t, err)
			assert.Equal(t, tt.padID, strings.TrimPrefix(u.Path, "/p/"), "link must resolve to the same pad id")
		})
	}
}

func TestUser_String(t *testing.T) {
	u := &User{Username: "ada", DisplayName: "Ada Lovelace"}
	assert.Equal(t, "ada", u.String())
}

func TestUserGroup_ImplementsOwnerGroup(t *testing.T) {
	var og OwnerGroup = &UserGroup{Record: Record{ID: "og-1"}, MemberIDs: []string{"usr-1", "usr-2"}}

	assert.Equal(t, "og-1", og.OwnerID())
	assert.Equal(t, []string{"usr-1", "usr-2"}, og.Members())
	assert.True(t, og.(*UserGroup).HasMember("usr-2"))
	assert.False(t, og.(*UserGroup).HasMember("usr-3"))
}
