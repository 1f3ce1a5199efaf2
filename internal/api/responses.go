package api

import (
	"time"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/service"
)

// ServerResponse is an Etherpad server in API responses. The API key is never returned.
type ServerResponse struct {
	ID        string    `json:"id" doc:"Server ID"`
	Title     string    `json:"title" doc:"Display title"`
	BaseURL   string    `json:"base_url" doc:"Etherpad base URL"`
	APIURL    string    `json:"api_url" doc:"Etherpad HTTP API root"`
	Notes     string    `json:"notes,omitempty" doc:"Free-form notes"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func newServerResponse(s *domain.Server) ServerResponse {
	return ServerResponse{
		ID:        s.ID,
		Title:     s.Title,
		BaseURL:   s.BaseURL,
		APIURL:    s.APIURL(),
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// UserResponse is a local user in API responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Username    string    `json:"username" doc:"Login name"`
	Email       string    `json:"email,omitempty" doc:"Email address"`
	DisplayName string    `json:"display_name,omitempty" doc:"Display name"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// OwnerGroupResponse is a user group in API responses.
type OwnerGroupResponse struct {
	ID        string    `json:"id" doc:"User group ID"`
	Name      string    `json:"name" doc:"User group name"`
	MemberIDs []string  `json:"member_ids" doc:"IDs of member users"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func newOwnerGroupResponse(g *domain.UserGroup) OwnerGroupResponse {
	members := g.MemberIDs
	if members == nil {
		members = []string{}
	}
	return OwnerGroupResponse{ID: g.ID, Name: g.Name, MemberIDs: members, CreatedAt: g.CreatedAt}
}

// GroupResponse is a pad group in API responses.
type GroupResponse struct {
	ID            string          `json:"id" doc:"Group ID"`
	OwnerGroupID  string          `json:"owner_group_id" doc:"Owning user group ID"`
	ServerID      string          `json:"server_id" doc:"Etherpad server ID"`
	RemoteGroupID string          `json:"remote_group_id" doc:"Etherpad group ID, empty when unmapped"`
	State         domain.MapState `json:"state" doc:"Mapping state" enum:"unmapped,mapped,deleted"`
	CreatedAt     time.Time       `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time       `json:"updated_at" doc:"Last update time"`
}

func newGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		ID:            g.ID,
		OwnerGroupID:  g.OwnerGroupID,
		ServerID:      g.ServerID,
		RemoteGroupID: g.RemoteGroupID,
		State:         g.State(),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

// AuthorResponse is an author in API responses.
type AuthorResponse struct {
	ID             string          `json:"id" doc:"Author ID"`
	UserID         string          `json:"user_id" doc:"Mirrored user ID"`
	ServerID       string          `json:"server_id" doc:"Etherpad server ID"`
	RemoteAuthorID string          `json:"remote_author_id" doc:"Etherpad author ID, empty when unmapped"`
	GroupIDs       []string        `json:"group_ids" doc:"IDs of pad groups the author belongs to"`
	State          domain.MapState `json:"state" doc:"Mapping state" enum:"unmapped,mapped,deleted"`
	CreatedAt      time.Time       `json:"created_at" doc:"Creation time"`
	UpdatedAt      time.Time       `json:"updated_at" doc:"Last update time"`
}

func newAuthorResponse(a *domain.Author) AuthorResponse {
	groups := a.GroupIDs
	if groups == nil {
		groups = []string{}
	}
	return AuthorResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		ServerID:       a.ServerID,
		RemoteAuthorID: a.RemoteAuthorID,
		GroupIDs:       groups,
		State:          a.State(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// PadResponse is a pad in API responses. PadID and Link are set when the
// group is mapped.
type PadResponse struct {
	ID        string    `json:"id" doc:"Pad ID"`
	Name      string    `json:"name" doc:"Pad name"`
	GroupID   string    `json:"group_id" doc:"Pad group ID"`
	ServerID  string    `json:"server_id" doc:"Etherpad server ID"`
	PadID     string    `json:"pad_id,omitempty" doc:"Etherpad pad ID"`
	Link      string    `json:"link,omitempty" doc:"Browser link to the pad"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func newPadResponse(p *domain.Pad) PadResponse {
	return PadResponse{
		ID:        p.ID,
		Name:      p.Name,
		GroupID:   p.GroupID,
		ServerID:  p.ServerID,
		CreatedAt: p.CreatedAt,
	}
}

func newPadViewResponse(v *service.PadView) PadResponse {
	resp := newPadResponse(v.Pad)
	resp.PadID = v.PadID
	resp.Link = v.Link
	return resp
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
