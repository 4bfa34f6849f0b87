// Package approval decides whether a submitted command may run immediately
// or must wait for a manual decision.
//
// The gate is advisory. It is evaluated once at submission time; an
// approved command is never re-checked against later allowlist edits.
package approval

import (
	"strings"

	"github.com/jmgilman/overseer/internal/model"
)

// Reasons reported in a Decision.
const (
	ReasonApprovalNotRequired = "approval not required"
	ReasonAllowlisted         = "matches allowlist"
	ReasonNotAllowlisted      = "requires approval"
)

// Decision is the outcome of evaluating a command.
type Decision struct {
	// Execute is true when the command may run without approval.
	Execute bool
	// Reason is a short human-readable explanation.
	Reason string
	// MatchedEntry is the allowlist entry that matched, if any.
	MatchedEntry string
}

// Evaluate applies the gate to command under cfg.
//
// A command bypasses approval when approval is not required, or when the
// normalized command starts with or contains a normalized allowlist entry.
// Matching is case-insensitive; empty entries never match.
func Evaluate(cfg model.InstanceConfig, command string) Decision {
	if !cfg.ApprovalRequired() {
		return Decision{Execute: true, Reason: ReasonApprovalNotRequired}
	}

	if entry, ok := Match(cfg.CommandAllowlist, command); ok {
		return Decision{Execute: true, Reason: ReasonAllowlisted, MatchedEntry: entry}
	}

	return Decision{Execute: false, Reason: ReasonNotAllowlisted}
}

// Match returns the first allowlist entry matching command.
func Match(allowlist []string, command string) (string, bool) {
	cmd := normalize(command)
	if cmd == "" {
		return "", false
	}
	for _, entry := range allowlist {
		e := normalize(entry)
		if e == "" {
			continue
		}
		if strings.HasPrefix(cmd, e) || strings.Contains(cmd, e) {
			return entry, true
		}
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
