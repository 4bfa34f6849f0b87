package supervisor

import (
	"context"
	"errors"
	"slices"

	"github.com/jmgilman/overseer/internal/catalog"
)

// persist writes the catalog record for e. Failures are logged; the
// catalog is advisory and never blocks supervision.
func (s *Supervisor) persist(ctx context.Context, e *entry) {
	if s.opts.Catalog == nil {
		return
	}

	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return
	}
	rec := e.catalogEntry()
	e.mu.Unlock()
	rec.UpdatedAt = s.now()

	ctx = context.WithoutCancel(ctx)
	err := s.opts.Catalog.Update(ctx, rec)
	if errors.Is(err, catalog.ErrNotFound) {
		err = s.opts.Catalog.Add(ctx, rec)
	}
	if err != nil {
		s.log.Warn("failed to persist instance", "instance", rec.ID, "error", err)
	}
}

// catalogEntry converts the record. Callers hold e.mu.
func (e *entry) catalogEntry() catalog.Entry {
	return catalog.Entry{
		ID:               e.inst.ID,
		Name:             e.inst.Name,
		SessionName:      e.inst.SessionName,
		WorkingDirectory: e.inst.WorkingDirectory,
		LogFilePath:      e.inst.LogFilePath,
		ThreadID:         e.inst.ThreadID,
		Threads:          slices.Clone(e.threads),
		Overrides:        e.overrides.Clone(),
		Status:           e.inst.Status,
		AuthStatus:       e.inst.AuthStatus,
		RestartCount:     e.inst.Stats.RestartCount,
		PromptsExecuted:  e.inst.Stats.PromptsExecuted,
		TokensUsed:       e.inst.Stats.TokensUsed,
		CreatedAt:        e.inst.CreatedAt,
	}
}
