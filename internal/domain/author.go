package domain

// Author maps a local user onto an Etherpad author on one server.
// There is at most one Author per (UserID, ServerID).
type Author struct {
	Record
	UserID         string   `json:"user_id"`
	RemoteAuthorID string   `json:"remote_author_id"`
	ServerID       string   `json:"server_id"`
	GroupIDs       []string `json:"group_ids"`
}

// State reports whether the author has been mapped to the remote service yet.
func (a *Author) State() MapState {
	return mapState(a.RemoteAuthorID)
}

// InGroup reports whether the author is associated with the group.
func (a *Author) InGroup(groupID string) bool {
	for _, id := range a.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
