package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/store"
)

// SyncAuthorGroups adds a to every group mapped on its server for an owner
// group its user belongs to. It never removes a membership, so running it
// again changes nothing. It returns the ids of groups newly added.
func (r *Reconciler) SyncAuthorGroups(ctx context.Context, a *domain.Author) ([]string, error) {
	owners, err := r.store.ListOwnerGroupsForUser(ctx, a.UserID)
	if err != nil {
		return nil, fmt.Errorf("list owner groups of user %s: %w", a.UserID, err)
	}

	var added []string
	for _, owner := range owners {
		group, err := r.store.GetGroupByOwner(ctx, owner.OwnerID(), a.ServerID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("load group of owner %s: %w", owner.OwnerID(), err)
		}
		if !group.IsMapped() || a.InGroup(group.ID) {
			continue
		}

		if err := r.store.AddAuthorToGroup(ctx, a.ID, group.ID); err != nil {
			return added, fmt.Errorf("add author %s to group %s: %w", a.ID, group.ID, err)
		}
		a.GroupIDs = append(a.GroupIDs, group.ID)
		added = append(added, group.ID)
	}

	if len(added) > 0 {
		r.logger.Info("author groups synchronized", "author_id", a.ID, "added", added)
	}
	return added, nil
}
