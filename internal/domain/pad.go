package domain

import (
	"fmt"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
)

// PadIDSeparator joins the remote group id and the pad name in a group pad id.
const PadIDSeparator = "$"

// Pad is a group pad. Pads are immutable once created.
type Pad struct {
	Record
	Name     string `json:"name"`
	ServerID string `json:"server_id"`
	GroupID  string `json:"group_id"`
}

// String returns the pad name.
func (p *Pad) String() string {
	return p.Name
}

// PadID returns the remote identifier "{remoteGroupID}${name}".
// It fails with an invalid state error while the group is unmapped.
func (p *Pad) PadID(group *Group) (string, error) {
	if group == nil {
		return "", domainerrors.InvalidStatef("pad %q has no group", p.Name)
	}
	if group.ID != "" && p.GroupID != "" && group.ID != p.GroupID {
		return "", domainerrors.InvalidStatef("pad %q does not belong to group %s", p.Name, group.ID)
	}
	return ComposePadID(group.RemoteGroupID, p.Name)
}

// ComposePadID builds a group pad id from its parts.
func ComposePadID(remoteGroupID, name string) (string, error) {
	if remoteGroupID == "" {
		return "", domainerrors.InvalidStatef("pad %q: group is not mapped to the remote service", name)
	}
	return fmt.Sprintf("%s%s%s", remoteGroupID, PadIDSeparator, name), nil
}
