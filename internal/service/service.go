// Package service holds padlink's use cases. Each service persists through
// the store and drives Etherpad through the reconciler, calling the remote
// hook before the matching local write.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/id"
	"github.com/padlinkapp/padlink-server/internal/store"
)

// Reconciler is the remote side of every mutating use case.
type Reconciler interface {
	PreCreateGroup(ctx context.Context, g *domain.Group) error
	PreCreateAuthor(ctx context.Context, a *domain.Author) error
	PreCreatePad(ctx context.Context, p *domain.Pad) error
	PreDeletePad(ctx context.Context, p *domain.Pad) error
	PreDeleteGroup(ctx context.Context, g *domain.Group) error
	OnOwnerGroupDelete(ctx context.Context, ownerGroupID string) error
	SyncAuthorGroups(ctx context.Context, a *domain.Author) ([]string, error)
	CheckServer(ctx context.Context, server *domain.Server) error
}

// ClientInvalidator drops cached remote clients for a server.
type ClientInvalidator interface {
	Invalidate(serverID string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(string) {}

// newID generates a prefixed id or fails with an internal error.
func newID(prefix string) (string, error) {
	v, err := id.Generate(prefix)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "generate id")
	}
	return v, nil
}

// storeErr converts store errors to domain errors with context.
func storeErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), store.ToDomain(err))
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
