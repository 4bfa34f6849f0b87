package supervisor

import (
	"context"
	"strings"

	"github.com/jmgilman/overseer/internal/model"
)

type authOutcome int

const (
	authUndetermined authOutcome = iota
	authReady
	authFailed
	authNoCredits
)

// classifyAuth inspects captured output for the configured phrases.
// Credit problems win over authentication failures, which win over ready
// markers.
func classifyAuth(lines []string, credit, failure, ready []string) authOutcome {
	text := strings.ToLower(strings.Join(lines, "\n"))
	switch {
	case containsAny(text, credit):
		return authNoCredits
	case containsAny(text, failure):
		return authFailed
	case containsAny(text, ready):
		return authReady
	default:
		return authUndetermined
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// scheduleAuthCheck inspects the session output once the auth settle delay
// has passed. The check is dropped if the instance is removed or restarted
// in the meantime.
func (s *Supervisor) scheduleAuthCheck(e *entry, gen uint64) {
	e.mu.Lock()
	ctx, session := e.ctx, e.inst.SessionName
	e.mu.Unlock()

	go func() {
		if err := sleepCtx(ctx, s.opts.AuthSettleDelay); err != nil {
			return
		}
		if s.checkAuth(ctx, e, gen, session) {
			s.persist(ctx, e)
		}
	}()
}

// checkAuth applies the auth heuristics and reports whether the instance
// changed.
func (s *Supervisor) checkAuth(ctx context.Context, e *entry, gen uint64, session string) bool {
	lines, captureErr := s.host.CaptureRecent(ctx, session, s.opts.CaptureLines)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed || e.gen != gen || e.inst.AuthStatus != model.AuthPending {
		return false
	}
	if captureErr != nil {
		s.log.Debug("auth check capture failed, using buffered output", "instance", e.inst.ID, "error", captureErr)
		lines = e.inst.Output
	} else if e.authBaseline != nil {
		lines = newLines(e.authBaseline, lines)
	}
	e.authBaseline = nil

	switch classifyAuth(lines, s.opts.CreditPhrases, s.opts.AuthFailurePhrases, s.opts.ReadyPhrases) {
	case authNoCredits:
		e.inst.AuthStatus = model.AuthUnknown
		e.inst.LastError = ErrCreditsExhausted.Error()
		s.setStatus(e, model.StatusError, model.EventCreditsExhausted)
		s.emit(e, model.EventCreditsExhausted, model.SeverityCritical, map[string]any{"error": ErrCreditsExhausted.Error()})
		s.log.Warn("agent credits exhausted", "instance", e.inst.ID)
	case authFailed:
		e.inst.AuthStatus = model.AuthFailed
		e.inst.LastError = ErrAuthenticationFailed.Error()
		s.setStatus(e, model.StatusError, model.EventAuthFailed)
		s.emit(e, model.EventAuthFailed, model.SeverityCritical, map[string]any{"error": ErrAuthenticationFailed.Error()})
		s.log.Warn("agent authentication failed", "instance", e.inst.ID)
	case authReady:
		s.confirmAuth(e, "ready_phrase")
	default:
		if s.opts.OptimisticAuth {
			s.confirmAuth(e, "optimistic")
			break
		}
		e.inst.AuthStatus = model.AuthUnknown
		if e.inst.Status == model.StatusAuthenticating {
			s.setStatus(e, model.StatusIdle, "auth_unknown")
		}
	}
	return true
}

// confirmAuth marks e authenticated. Callers hold e.mu.
func (s *Supervisor) confirmAuth(e *entry, via string) {
	if e.inst.AuthStatus == model.AuthAuthenticated {
		return
	}
	e.inst.AuthStatus = model.AuthAuthenticated
	s.emit(e, model.EventAuthSucceeded, model.SeverityInfo, map[string]any{"via": via})
	if e.inst.Status == model.StatusAuthenticating {
		s.setStatus(e, model.StatusIdle, "authenticated")
	}
}
