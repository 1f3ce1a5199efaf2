package search

import (
	"strings"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/normalize"
)

// PadDocument is the indexed form of a pad.
type PadDocument struct {
	ID        string
	Name      string
	Slug      string
	GroupID   string
	ServerID  string
	CreatedAt int64 // Unix seconds
}

// PadToDocument converts a domain pad into an index document.
func PadToDocument(pad *domain.Pad) *PadDocument {
	return &PadDocument{
		ID:        pad.ID,
		Name:      pad.Name,
		Slug:      strings.ReplaceAll(normalize.Slug(pad.Name), "-", " "),
		GroupID:   pad.GroupID,
		ServerID:  pad.ServerID,
		CreatedAt: pad.CreatedAt.Unix(),
	}
}

// ToMap converts the document to the field names used by the mapping.
func (d *PadDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"name":       d.Name,
		"slug":       d.Slug,
		"group_id":   d.GroupID,
		"server_id":  d.ServerID,
		"created_at": d.CreatedAt,
	}
}
