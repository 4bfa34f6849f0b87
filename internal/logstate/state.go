package logstate

import (
	"strings"
	"time"
)

// DefaultRecentActivityWindow is how long after the last record the agent is
// assumed to still be working when no explicit idle marker was seen.
const DefaultRecentActivityWindow = 10 * time.Second

// State is the inferred agent activity for one instance.
type State struct {
	Kind           Kind      `json:"kind"`
	StatusMessage  string    `json:"statusMessage,omitempty"`
	InferenceState Inference `json:"inferenceState,omitempty"`
	LastActivity   time.Time `json:"lastActivity,omitzero"`
}

// InitialState is the state before any record was seen.
func InitialState() State {
	return State{Kind: KindUnknown}
}

// Apply folds u into s. LastActivity is always moved to at.
// Reaching awaiting-user-message clears a stale status message.
func (s State) Apply(u Update, at time.Time) State {
	if u.Kind != "" {
		s.Kind = u.Kind
		if u.Kind == KindAwaitingUserMessage {
			s.StatusMessage = ""
		}
	}
	if u.StatusMessage != "" {
		s.StatusMessage = u.StatusMessage
	}
	if u.InferenceState != "" {
		s.InferenceState = u.InferenceState
	}
	if at.After(s.LastActivity) {
		s.LastActivity = at
	}
	return s
}

// SameAs reports whether s and o classify the agent identically.
// LastActivity is ignored.
func (s State) SameAs(o State) bool {
	return s.Kind == o.Kind &&
		s.StatusMessage == o.StatusMessage &&
		s.InferenceState == o.InferenceState
}

// Running reports whether the agent should be considered busy at now.
//
// The agent is busy while awaiting its own reply or while the status reads
// "Thinking". Any record within window also counts, unless the agent said
// it is waiting for the user.
func (s State) Running(now time.Time, window time.Duration) bool {
	if s.Kind == KindAwaitingAgent {
		return true
	}
	if strings.EqualFold(s.StatusMessage, ThinkingStatus) {
		return true
	}
	if s.Kind == KindAwaitingUserMessage || s.LastActivity.IsZero() {
		return false
	}
	return now.Sub(s.LastActivity) < window
}
