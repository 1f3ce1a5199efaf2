package domain

// User is a local account that can be mapped to an Etherpad author.
type User struct {
	Record
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// String returns the username. It is the default author display name.
func (u *User) String() string {
	return u.Username
}

// OwnerGroup is the local entity a mapped Group belongs to.
// Any organisation-like type can own pads by implementing it.
type OwnerGroup interface {
	OwnerID() string
	Members() []string
}

// UserGroup is the built-in OwnerGroup: a named set of users.
type UserGroup struct {
	Record
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

// OwnerID implements OwnerGroup.
func (g *UserGroup) OwnerID() string {
	return g.ID
}

// Members implements OwnerGroup.
func (g *UserGroup) Members() []string {
	return g.MemberIDs
}

// HasMember reports whether userID belongs to the group.
func (g *UserGroup) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
