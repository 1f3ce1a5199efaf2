package service

import (
	"context"
	"log/slog"
	"time"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/journal"
)

// JournalReader reads and trims the reconciliation journal.
type JournalReader interface {
	Find(ctx context.Context, f journal.Filter) ([]journal.Entry, error)
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// JournalService exposes the remote call journal to operators.
type JournalService struct {
	journal JournalReader
	logger  *slog.Logger
}

// NewJournalService creates a new journal service.
func NewJournalService(j JournalReader, logger *slog.Logger) *JournalService {
	return &JournalService{journal: j, logger: loggerOrDefault(logger)}
}

// List returns entries matching f, newest first.
func (s *JournalService) List(ctx context.Context, f journal.Filter) ([]journal.Entry, error) {
	switch f.Outcome {
	case "", journal.OutcomeOK, journal.OutcomeNotFound, journal.OutcomeFailed:
	default:
		return nil, domainerrors.Validationf("unknown outcome %q", f.Outcome)
	}
	entries, err := s.journal.Find(ctx, f)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "read journal")
	}
	return entries, nil
}

// Prune drops entries older than maxAge and returns how many were removed.
func (s *JournalService) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, domainerrors.Validation("max age must be positive")
	}
	n, err := s.journal.Prune(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "prune journal")
	}
	s.logger.Info("journal pruned", "removed", n, "max_age", maxAge)
	return n, nil
}
