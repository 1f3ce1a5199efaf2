package reconcile

import (
	"context"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
)

// EventKind is a lifecycle moment the reconciler reacts to.
type EventKind int

// Lifecycle events.
const (
	PreCreate EventKind = iota + 1
	PreDelete
)

func (k EventKind) String() string {
	switch k {
	case PreCreate:
		return "pre_create"
	case PreDelete:
		return "pre_delete"
	default:
		return "unknown"
	}
}

// OnEntityEvent dispatches a lifecycle event to the matching hook.
// Unsupported entity and event combinations are internal errors.
func (r *Reconciler) OnEntityEvent(ctx context.Context, entity any, kind EventKind) error {
	switch e := entity.(type) {
	case *domain.Group:
		switch kind {
		case PreCreate:
			return r.PreCreateGroup(ctx, e)
		case PreDelete:
			return r.PreDeleteGroup(ctx, e)
		}
	case *domain.Author:
		if kind == PreCreate {
			return r.PreCreateAuthor(ctx, e)
		}
	case *domain.Pad:
		switch kind {
		case PreCreate:
			return r.PreCreatePad(ctx, e)
		case PreDelete:
			return r.PreDeletePad(ctx, e)
		}
	case *domain.UserGroup:
		if kind == PreDelete {
			return r.OnOwnerGroupDelete(ctx, e.OwnerID())
		}
	}
	return domainerrors.Internalf("no %s handler for %T", kind, entity)
}
