package service

import (
	"context"
	"log/slog"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/id"
	"github.com/padlinkapp/padlink-server/internal/normalize"
	"github.com/padlinkapp/padlink-server/internal/reconcile"
	"github.com/padlinkapp/padlink-server/internal/search"
	"github.com/padlinkapp/padlink-server/internal/store"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// CreatePadRequest creates a pad in a mapped group.
type CreatePadRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Name    string `json:"name" validate:"padname"`
}

// PadView is a pad with its derived remote id and link.
type PadView struct {
	*domain.Pad
	PadID string `json:"pad_id"`
	Link  string `json:"link"`
}

// PadStatusReader reads the remote sharing state of a pad.
type PadStatusReader interface {
	Status(ctx context.Context, p *domain.Pad) (*reconcile.PadStatus, error)
}

// PadSearcher queries the pad index.
type PadSearcher interface {
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
}

// PadService manages group pads.
type PadService struct {
	store      store.Store
	reconciler Reconciler
	status     PadStatusReader
	searcher   PadSearcher
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewPadService creates a new pad service. searcher may be nil, in which
// case Search reports a configuration error.
func NewPadService(s store.Store, r Reconciler, status PadStatusReader, searcher PadSearcher, v *validation.Validator, logger *slog.Logger) *PadService {
	return &PadService{
		store:      s,
		reconciler: r,
		status:     status,
		searcher:   searcher,
		validator:  v,
		logger:     loggerOrDefault(logger),
	}
}

// Create normalizes the name, creates the remote pad and persists it.
func (s *PadService) Create(ctx context.Context, req CreatePadRequest) (*PadView, error) {
	req.Name = normalize.PadName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, req.GroupID)
	if err != nil {
		return nil, storeErr(err, "get group %s", req.GroupID)
	}
	if !group.IsMapped() {
		return nil, domainerrors.InvalidStatef("group %s is not mapped to etherpad", group.ID)
	}

	padID, err := newID(id.PrefixPad)
	if err != nil {
		return nil, err
	}
	pad := &domain.Pad{
		Record:   domain.Record{ID: padID},
		Name:     req.Name,
		GroupID:  group.ID,
		ServerID: group.ServerID,
	}
	if err := s.reconciler.PreCreatePad(ctx, pad); err != nil {
		return nil, err
	}
	pad.InitTimestamps()
	if err := s.store.CreatePad(ctx, pad); err != nil {
		return nil, storeErr(err, "create pad %q", req.Name)
	}

	return s.view(ctx, pad)
}

// Get returns a pad with its remote id and link.
func (s *PadService) Get(ctx context.Context, padID string) (*PadView, error) {
	pad, err := s.store.GetPad(ctx, padID)
	if err != nil {
		return nil, storeErr(err, "get pad %s", padID)
	}
	return s.view(ctx, pad)
}

// List returns every pad.
func (s *PadService) List(ctx context.Context) ([]*domain.Pad, error) {
	pads, err := s.store.ListPads(ctx)
	if err != nil {
		return nil, storeErr(err, "list pads")
	}
	return pads, nil
}

// ListByGroup returns the pads of a group with their ids and links.
func (s *PadService) ListByGroup(ctx context.Context, groupID string) ([]*PadView, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "get group %s", groupID)
	}
	server, err := s.store.GetServer(ctx, group.ServerID)
	if err != nil {
		return nil, storeErr(err, "get server %s", group.ServerID)
	}
	pads, err := s.store.ListPadsByGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "list pads of group %s", groupID)
	}

	views := make([]*PadView, 0, len(pads))
	for _, p := range pads {
		v, err := newPadView(p, group, server)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Delete removes the remote pad, then the local one.
func (s *PadService) Delete(ctx context.Context, padID string) error {
	pad, err := s.store.GetPad(ctx, padID)
	if err != nil {
		return storeErr(err, "get pad %s", padID)
	}
	if err := s.reconciler.PreDeletePad(ctx, pad); err != nil {
		return err
	}
	if err := s.store.DeletePad(ctx, padID); err != nil {
		return storeErr(err, "delete pad %s", padID)
	}
	return nil
}

// Status reads the pad's public status and read-only id from Etherpad.
func (s *PadService) Status(ctx context.Context, padID string) (*reconcile.PadStatus, error) {
	pad, err := s.store.GetPad(ctx, padID)
	if err != nil {
		return nil, storeErr(err, "get pad %s", padID)
	}
	return s.status.Status(ctx, pad)
}

// Search finds pads by name.
func (s *PadService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if s.searcher == nil {
		return nil, domainerrors.Configuration("pad search is not configured")
	}
	res, err := s.searcher.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search pads")
	}
	return res, nil
}

func (s *PadService) view(ctx context.Context, pad *domain.Pad) (*PadView, error) {
	group, err := s.store.GetGroup(ctx, pad.GroupID)
	if err != nil {
		return nil, storeErr(err, "get group %s", pad.GroupID)
	}
	server, err := s.store.GetServer(ctx, group.ServerID)
	if err != nil {
		return nil, storeErr(err, "get server %s", group.ServerID)
	}
	return newPadView(pad, group, server)
}

func newPadView(pad *domain.Pad, group *domain.Group, server *domain.Server) (*PadView, error) {
	padID, err := pad.PadID(group)
	if err != nil {
		return nil, err
	}
	return &PadView{Pad: pad, PadID: padID, Link: server.PadLink(padID)}, nil
}
