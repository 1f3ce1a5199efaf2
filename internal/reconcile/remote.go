package reconcile

import (
	"context"
	"errors"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/etherpad"
	"github.com/padlinkapp/padlink-server/internal/journal"
)

// callInfo describes a remote call for the journal.
type callInfo struct {
	op       string
	entity   string
	entityID string
	remoteID string
}

// call runs fn against the server's remote under the call timeout,
// classifies its error and journals mutations.
func (r *Reconciler) call(ctx context.Context, server *domain.Server, info callInfo, fn func(context.Context, Remote) (string, error)) (string, error) {
	remote := r.cfg.Remotes(server)
	if remote == nil {
		return "", domainerrors.Configurationf("no remote client for server %s", server.ID)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	result, err := fn(callCtx, remote)
	cancel()

	classified := classify(err, info.op, server)
	r.record(ctx, server, info, result, err, classified)
	if classified != nil {
		return "", classified
	}
	return result, nil
}

// read runs a non-mutating remote call; reads are not journaled.
func (r *Reconciler) read(ctx context.Context, server *domain.Server, op string, fn func(context.Context, Remote) error) error {
	remote := r.cfg.Remotes(server)
	if remote == nil {
		return domainerrors.Configurationf("no remote client for server %s", server.ID)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()
	return classify(fn(callCtx, remote), op, server)
}

func (r *Reconciler) record(ctx context.Context, server *domain.Server, info callInfo, result string, raw, classified error) {
	entry := journal.Entry{
		Op:       info.op,
		Entity:   info.entity,
		EntityID: info.entityID,
		ServerID: server.ID,
		RemoteID: info.remoteID,
		Outcome:  journal.OutcomeOK,
	}
	if entry.RemoteID == "" {
		entry.RemoteID = result
	}
	switch {
	case errors.Is(classified, domainerrors.ErrRemoteNotFound):
		entry.Outcome = journal.OutcomeNotFound
	case errors.Is(classified, domainerrors.ErrAlreadyExists):
		// Adopted remote entity; the mutation is effectively done.
	case classified != nil:
		entry.Outcome = journal.OutcomeFailed
		entry.Error = raw.Error()
	}

	// The caller's context may already be done; the entry must still land.
	if err := r.cfg.Recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Warn("failed to journal remote call", "op", info.op, "error", err)
	}
}

// classify converts a remote client error into a domain error.
func classify(err error, op string, server *domain.Server) error {
	if err == nil {
		return nil
	}

	var code domainerrors.Code
	var msg string
	switch {
	case errors.Is(err, etherpad.ErrNotFound):
		code, msg = domainerrors.CodeRemoteNotFound, "remote entity not found"
	case errors.Is(err, etherpad.ErrAlreadyExists):
		code, msg = domainerrors.CodeAlreadyExists, "remote entity already exists"
	case errors.Is(err, etherpad.ErrUnauthorized):
		code, msg = domainerrors.CodeConfiguration, "etherpad rejected the API key"
	case errors.Is(err, etherpad.ErrUnsupported):
		code, msg = domainerrors.CodeConfiguration, "etherpad does not support the configured API version"
	case errors.Is(err, etherpad.ErrBadRequest):
		code, msg = domainerrors.CodeValidation, "etherpad rejected the request"
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = domainerrors.CodeRemoteUnavailable, "etherpad did not answer in time"
	case etherpad.IsTransient(err):
		code, msg = domainerrors.CodeRemoteUnavailable, "etherpad unavailable"
	default:
		code, msg = domainerrors.CodeRemoteUnavailable, "etherpad sent an unexpected response"
	}

	return domainerrors.Wrapf(err, code, "%s on %s: %s", op, server.BaseURL, msg)
}
