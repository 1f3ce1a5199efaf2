package domain

import (
	"net/url"
	"strings"
)

// Server is an Etherpad-lite instance padlink talks to.
type Server struct {
	Record
	Title   string `json:"title"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"-"`
	Notes   string `json:"notes,omitempty"`
}

// String returns the base URL, which identifies the server to operators.
func (s *Server) String() string {
	return s.BaseURL
}

// APIURL returns the root of the server's HTTP API.
// "http://x/" and "http://x" both yield "http://x/api".
func (s *Server) APIURL() string {
	if strings.HasSuffix(s.BaseURL, "/") {
		return s.BaseURL + "api"
	}
	return s.BaseURL + "/api"
}

// PadLink returns the browser URL of a pad hosted on this server. The pad id
// is query-escaped so "$" becomes "%24", with spaces written as "%20" since
// "+" is literal in a path.
func (s *Server) PadLink(padID string) string {
	base := s.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "p/" + strings.ReplaceAll(url.QueryEscape(padID), "+", "%20")
}
