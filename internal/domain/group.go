package domain

// Group maps a local owner group onto an Etherpad group on one server.
type Group struct {
	Record
	OwnerGroupID  string `json:"owner_group_id"`
	RemoteGroupID string `json:"remote_group_id"`
	ServerID      string `json:"server_id"`
}

// State reports whether the group has been mapped to the remote service yet.
func (g *Group) State() MapState {
	return mapState(g.RemoteGroupID)
}

// IsMapped is shorthand for State() == MapStateMapped.
func (g *Group) IsMapped() bool {
	return g.RemoteGroupID != ""
}
