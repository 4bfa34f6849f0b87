// Package multiplexer provides the process host for supervised agent sessions.
// Each instance runs in its own detached terminal multiplexer session that
// accepts keystrokes and exposes its recent pane contents.
package multiplexer

import (
	"context"
	"errors"
	"strings"
	"time"
)

// SessionPrefix is the namespace prefix for all overseer multiplexer sessions.
const SessionPrefix = "ovs"

// Sentinel errors for multiplexer operations.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrAttachFailed    = errors.New("failed to attach to session")
	ErrCreateFailed    = errors.New("failed to create session")
	ErrSendFailed      = errors.New("failed to send input to session")
	ErrCaptureFailed   = errors.New("failed to capture session output")
)

// Named keys understood by SendKeys.
const (
	KeyEnter     = "Enter"
	KeyInterrupt = "C-c"
	KeyEscape    = "Escape"
)

// Session represents a multiplexer session.
type Session struct {
	ID        string    // Unique session identifier (multiplexer-assigned)
	Name      string    // Human-readable name
	CreatedAt time.Time // Creation timestamp, zero if unknown
}

// CreateSessionOpts configures session creation.
type CreateSessionOpts struct {
	// Name is the session name (required).
	// Callers should use FormatSessionName to create properly namespaced names.
	Name    string
	Command []string // Initial command to run (optional, defaults to shell)
	Cwd     string   // Working directory (optional)
	Env     []string // Environment variables (KEY=VALUE format)
	LogPath string   // File receiving a copy of pane output (optional)
}

// Multiplexer provides terminal multiplexer operations.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/multiplexer.go . Multiplexer
type Multiplexer interface {
	// CreateSession creates a new multiplexer session.
	// The session is created in detached mode and can be attached to later.
	// Returns ErrSessionExists if a session with the same name already exists.
	// Returns ErrCreateFailed if session creation fails.
	CreateSession(ctx context.Context, opts *CreateSessionOpts) (*Session, error)

	// AttachSession attaches to an existing session.
	// This is a blocking operation that takes over the terminal.
	// Returns ErrSessionNotFound if session doesn't exist.
	// Returns ErrAttachFailed if attachment fails.
	AttachSession(ctx context.Context, sessionName string) error

	// ListSessions returns all active sessions.
	ListSessions(ctx context.Context) ([]Session, error)

	// HasSession reports whether the named session exists.
	HasSession(ctx context.Context, sessionName string) (bool, error)

	// KillSession terminates a session.
	// Returns ErrSessionNotFound if session doesn't exist.
	KillSession(ctx context.Context, sessionName string) error

	// SendText types text into the session literally, without pressing Enter.
	// Returns ErrSessionNotFound if session doesn't exist.
	SendText(ctx context.Context, sessionName, text string) error

	// SendKeys sends named keys (KeyEnter, KeyInterrupt, ...) to the session.
	// Returns ErrSessionNotFound if session doesn't exist.
	SendKeys(ctx context.Context, sessionName string, keys ...string) error

	// CaptureRecent returns up to lines of the most recent pane output,
	// oldest first, with trailing blank lines removed.
	// Returns ErrSessionNotFound if session doesn't exist.
	CaptureRecent(ctx context.Context, sessionName string, lines int) ([]string, error)
}

// FormatSessionName creates a namespaced session name using the format:
// ovs-<instanceID without hyphens>
//
// tmux treats some punctuation in target names specially, so hyphens from
// uuid-style ids are dropped. ParseSessionName returns the compact id.
func FormatSessionName(instanceID string) string {
	return SessionPrefix + "-" + strings.ReplaceAll(instanceID, "-", "")
}

// ParseSessionName extracts the compact instance ID from a namespaced session
// name. Returns an empty string if the name doesn't match the expected format.
func ParseSessionName(name string) string {
	compact, ok := strings.CutPrefix(name, SessionPrefix+"-")
	if !ok || compact == "" || strings.Contains(compact, "-") {
		return ""
	}
	return compact
}

// IsManagedSession reports whether name belongs to an overseer session.
func IsManagedSession(name string) bool {
	return ParseSessionName(name) != ""
}
