// Package domain holds the padlink records and the pure derivations on them
// (API URL, pad id, pad link, mapping state).
package domain

import "time"

// Record provides the identity and timestamp fields shared by every stored entity.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (r *Record) InitTimestamps() {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// MapState is the lifecycle state of an entity mirrored on the remote service.
type MapState string

// Mapping states. Deleted is terminal and only ever observed in the journal,
// since deleted records no longer exist locally.
const (
	MapStateUnmapped MapState = "unmapped"
	MapStateMapped   MapState = "mapped"
	MapStateDeleted  MapState = "deleted"
)

func mapState(remoteID string) MapState {
	if remoteID == "" {
		return MapStateUnmapped
	}
	return MapStateMapped
}
