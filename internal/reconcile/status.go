package reconcile

import (
	"context"

	"github.com/padlinkapp/padlink-server/internal/domain"
)

// PadStatus is the remote sharing state of a pad.
type PadStatus struct {
	PadID      string `json:"pad_id"`
	Link       string `json:"link"`
	Public     bool   `json:"public"`
	ReadOnlyID string `json:"read_only_id"`
}

// PublicStatus reports whether p is readable without an Etherpad session.
func (r *Reconciler) PublicStatus(ctx context.Context, p *domain.Pad) (bool, error) {
	server, padID, err := r.padTarget(ctx, p)
	if err != nil {
		return false, err
	}
	return r.publicStatus(ctx, server, padID)
}

// ReadOnlyID returns the read-only id of p.
func (r *Reconciler) ReadOnlyID(ctx context.Context, p *domain.Pad) (string, error) {
	server, padID, err := r.padTarget(ctx, p)
	if err != nil {
		return "", err
	}
	return r.readOnlyID(ctx, server, padID)
}

// Status combines the pad id, link, public status and read-only id of p.
func (r *Reconciler) Status(ctx context.Context, p *domain.Pad) (*PadStatus, error) {
	server, padID, err := r.padTarget(ctx, p)
	if err != nil {
		return nil, err
	}

	public, err := r.publicStatus(ctx, server, padID)
	if err != nil {
		return nil, err
	}
	roID, err := r.readOnlyID(ctx, server, padID)
	if err != nil {
		return nil, err
	}

	return &PadStatus{
		PadID:      padID,
		Link:       server.PadLink(padID),
		Public:     public,
		ReadOnlyID: roID,
	}, nil
}

// padTarget resolves the server hosting p and its Etherpad pad id.
func (r *Reconciler) padTarget(ctx context.Context, p *domain.Pad) (*domain.Server, string, error) {
	group, server, err := r.padContext(ctx, p)
	if err != nil {
		return nil, "", err
	}
	padID, err := p.PadID(group)
	if err != nil {
		return nil, "", err
	}
	return server, padID, nil
}

func (r *Reconciler) publicStatus(ctx context.Context, server *domain.Server, padID string) (bool, error) {
	var public bool
	err := r.read(ctx, server, "getPublicStatus", func(ctx context.Context, remote Remote) error {
		var err error
		public, err = remote.GetPublicStatus(ctx, padID)
		return err
	})
	return public, err
}

func (r *Reconciler) readOnlyID(ctx context.Context, server *domain.Server, padID string) (string, error) {
	var roID string
	err := r.read(ctx, server, "getReadOnlyID", func(ctx context.Context, remote Remote) error {
		var err error
		roID, err = remote.GetReadOnlyID(ctx, padID)
		return err
	})
	return roID, err
}

// CheckServer verifies that server answers and accepts its API key.
func (r *Reconciler) CheckServer(ctx context.Context, server *domain.Server) error {
	return r.read(ctx, server, "checkToken", func(ctx context.Context, remote Remote) error {
		return remote.CheckToken(ctx)
	})
}
