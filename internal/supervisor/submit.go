package supervisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmgilman/overseer/internal/approval"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/multiplexer"
)

// Submit sends text to the agent, or holds it for approval.
//
// Only an idle instance accepts input; any other status fails with a
// *BusyError wrapping ErrInstanceBusy. The returned status is the one the
// instance moved to: running or waiting_approval.
func (s *Supervisor) Submit(ctx context.Context, id, text string) (model.Status, error) {
	e, err := s.lookup(id)
	if err != nil {
		return "", err
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return "", ErrInstanceNotFound
	}
	if e.inst.Status != model.StatusIdle {
		status := e.inst.Status
		e.mu.Unlock()
		return "", &BusyError{InstanceID: id, Status: status}
	}

	decision := approval.Evaluate(e.inst.Config, text)
	if !decision.Execute {
		e.inst.PendingCommand = &model.PendingCommand{Command: text, Timestamp: s.now()}
		s.setStatus(e, model.StatusWaitingApproval, decision.Reason)
		s.emit(e, model.EventApprovalRequired, model.SeverityWarn, map[string]any{
			"command": text,
			"reason":  decision.Reason,
		})
		e.mu.Unlock()
		s.persist(ctx, e)
		return model.StatusWaitingApproval, nil
	}

	s.beginPrompt(e, text, decision)
	session, ectx := e.inst.SessionName, e.ctx
	e.mu.Unlock()

	return s.execute(ctx, e, ectx, session, text)
}

// Approve runs the held command without evaluating the gate again.
func (s *Supervisor) Approve(ctx context.Context, id string) (model.Status, error) {
	e, err := s.lookup(id)
	if err != nil {
		return "", err
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return "", ErrInstanceNotFound
	}
	if e.inst.Status != model.StatusWaitingApproval || e.inst.PendingCommand == nil {
		e.mu.Unlock()
		return "", ErrNoPendingCommand
	}

	command := e.inst.PendingCommand.Command
	e.inst.PendingCommand = nil
	s.emit(e, model.EventCommandApproved, model.SeverityInfo, map[string]any{"command": command})
	s.beginPrompt(e, command, approval.Decision{Execute: true, Reason: "approved"})
	session, ectx := e.inst.SessionName, e.ctx
	e.mu.Unlock()

	return s.execute(ctx, e, ectx, session, command)
}

// Reject discards the held command and returns the instance to idle.
func (s *Supervisor) Reject(ctx context.Context, id string) error {
	return s.dropPending(ctx, id, model.EventCommandRejected, "rejected")
}

// Cancel withdraws the current command. A held command is discarded; a
// running prompt is interrupted. Either way the instance ends up idle.
func (s *Supervisor) Cancel(ctx context.Context, id string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	status, removed := e.inst.Status, e.removed
	e.mu.Unlock()
	if removed {
		return ErrInstanceNotFound
	}

	switch status {
	case model.StatusWaitingApproval:
		return s.dropPending(ctx, id, model.EventCommandCancelled, "cancelled")
	case model.StatusRunning:
		return s.interrupt(ctx, e)
	default:
		return ErrNoPendingCommand
	}
}

func (s *Supervisor) dropPending(ctx context.Context, id, eventType, reason string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return ErrInstanceNotFound
	}
	if e.inst.Status != model.StatusWaitingApproval || e.inst.PendingCommand == nil {
		e.mu.Unlock()
		return ErrNoPendingCommand
	}

	command := e.inst.PendingCommand.Command
	e.inst.PendingCommand = nil
	s.setStatus(e, model.StatusIdle, reason)
	s.emit(e, eventType, model.SeverityInfo, map[string]any{"command": command})
	e.mu.Unlock()

	s.persist(ctx, e)
	return nil
}

func (s *Supervisor) interrupt(ctx context.Context, e *entry) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return ErrInstanceNotFound
	}
	if e.inst.Status != model.StatusRunning {
		e.mu.Unlock()
		return ErrNoPendingCommand
	}
	session := e.inst.SessionName
	e.mu.Unlock()

	if err := s.host.SendKeys(ctx, session, s.opts.Agent.InterruptKey); err != nil {
		return fmt.Errorf("%w: interrupt agent: %w", ErrSessionUnavailable, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrInstanceNotFound
	}
	prompt := e.inst.CurrentPrompt
	e.inst.CurrentPrompt = ""
	s.setStatus(e, model.StatusIdle, "cancelled")
	s.emit(e, model.EventCommandCancelled, model.SeverityInfo, map[string]any{"command": prompt})
	return nil
}

// beginPrompt marks e as running text. Callers hold e.mu.
func (s *Supervisor) beginPrompt(e *entry, text string, decision approval.Decision) {
	e.inst.CurrentPrompt = text
	e.inst.Stats.PromptsExecuted++
	e.inst.LastActivity = s.now()
	s.setStatus(e, model.StatusRunning, "")
	data := map[string]any{"prompt": text, "reason": decision.Reason}
	if decision.MatchedEntry != "" {
		data["matchedEntry"] = decision.MatchedEntry
	}
	s.emit(e, model.EventPromptSubmitted, model.SeverityInfo, data)
}

// execute transmits text after beginPrompt. A transmission failure moves
// the instance to error.
func (s *Supervisor) execute(ctx context.Context, e *entry, ectx context.Context, session, text string) (model.Status, error) {
	opCtx, stop := mergeCancel(ctx, ectx)
	defer stop()

	err := s.transmit(opCtx, session, text)
	if err == nil {
		s.persist(ctx, e)
		return model.StatusRunning, nil
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return "", ErrInstanceNotFound
	}
	e.inst.LastError = err.Error()
	e.inst.CurrentPrompt = ""
	s.setStatus(e, model.StatusError, "send failed")
	e.mu.Unlock()

	s.persist(ctx, e)
	if !errors.Is(err, ErrSessionUnavailable) {
		err = fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return model.StatusError, fmt.Errorf("send prompt: %w", err)
}

// transmit types text into the session. Every line but the last ends with
// the continuation marker and Enter; the last line is submitted with Enter
// after a settle delay.
func (s *Supervisor) transmit(ctx context.Context, session, text string) error {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	last := len(lines) - 1

	for _, line := range lines[:last] {
		if err := s.host.SendText(ctx, session, line); err != nil {
			return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
		}
		if err := s.host.SendText(ctx, session, s.opts.Agent.ContinuationMarker); err != nil {
			return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
		}
		if err := s.host.SendKeys(ctx, session, multiplexer.KeyEnter); err != nil {
			return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
		}
	}

	if err := s.host.SendText(ctx, session, lines[last]); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	if err := sleepCtx(ctx, s.opts.SubmitDelay); err != nil {
		return err
	}
	if err := s.host.SendKeys(ctx, session, multiplexer.KeyEnter); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return nil
}
