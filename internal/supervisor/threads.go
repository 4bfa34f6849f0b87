package supervisor

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jmgilman/overseer/internal/model"
)

// ErrThreadIDRequired is returned when switching to an empty thread id.
var ErrThreadIDRequired = errors.New("thread id is required")

// CreateThread registers a new conversation thread for id and switches the
// agent to it. An empty name gets a generated label.
func (s *Supervisor) CreateThread(ctx context.Context, id, name string) (model.Thread, error) {
	var thread model.Thread
	err := s.withEntry(id, func(e *entry) error {
		thread = s.rememberThread(e, uuid.NewString(), strings.TrimSpace(name))
		s.emit(e, model.EventThreadCreated, model.SeverityInfo, map[string]any{
			"threadId": thread.ID,
			"name":     thread.Name,
		})
		return nil
	})
	if err != nil {
		return model.Thread{}, err
	}

	if err := s.SwitchThread(ctx, id, thread.ID); err != nil {
		return thread, err
	}
	return thread, nil
}

// SwitchThread records threadID as the active thread and restarts the
// agent so it resumes that thread. The switch is applied by the restart
// itself, so a restart already in flight leaves the active thread unchanged
// and yields ErrRestartInProgress.
func (s *Supervisor) SwitchThread(ctx context.Context, id, threadID string) error {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return ErrThreadIDRequired
	}

	return s.restart(ctx, id, ReasonThreadSwitch, func(e *entry) {
		previous := e.inst.ThreadID
		e.inst.ThreadID = threadID
		thread := s.rememberThread(e, threadID, "")
		s.emit(e, model.EventThreadSwitched, model.SeverityInfo, map[string]any{
			"threadId":         thread.ID,
			"name":             thread.Name,
			"previousThreadId": previous,
		})
	})
}

// ListThreads returns the threads known for id in creation order.
func (s *Supervisor) ListThreads(id string) ([]model.Thread, error) {
	var out []model.Thread
	err := s.withEntry(id, func(e *entry) error {
		out = slices.Clone(e.threads)
		return nil
	})
	return out, err
}
