// Package catalog persists instance snapshots across daemon restarts.
//
// The daemon writes a record for every instance it supervises so a later
// start can find and terminate orphaned sessions, and so the CLI can show
// the last known state when no daemon is running.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jmgilman/overseer/internal/model"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound      = errors.New("entry not found")
	ErrAlreadyExists = errors.New("entry already exists")
	ErrLockTimeout   = errors.New("failed to acquire catalog lock")
)

// Entry represents a persisted instance record.
type Entry struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	SessionName      string               `json:"session_name"` // tmux session hosting the agent
	WorkingDirectory string               `json:"working_directory"`
	LogFilePath      string               `json:"log_file_path"`
	ThreadID         string               `json:"thread_id,omitempty"`
	Threads          []model.Thread       `json:"threads,omitempty"`
	Overrides        model.InstanceConfig `json:"overrides"` // per-instance config, not the effective merge
	Status           model.Status         `json:"status"`
	AuthStatus       model.AuthStatus     `json:"auth_status"`
	RestartCount     int                  `json:"restart_count"`
	PromptsExecuted  int                  `json:"prompts_executed"`
	TokensUsed       int64                `json:"tokens_used"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// ListFilter filters catalog queries.
type ListFilter struct {
	Status model.Status // Filter by status (empty = all)
}

// Store provides persistent storage for instance entries.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/store.go . Store
type Store interface {
	// Add creates a new entry.
	// Returns ErrAlreadyExists if an entry with the same ID or session name exists.
	Add(ctx context.Context, entry Entry) error

	// Get retrieves an entry by ID.
	// Returns ErrNotFound if not found.
	Get(ctx context.Context, id string) (*Entry, error)

	// Update modifies an existing entry.
	// Returns ErrNotFound if not found.
	Update(ctx context.Context, entry Entry) error

	// Remove deletes an entry by ID.
	// Returns ErrNotFound if not found.
	Remove(ctx context.Context, id string) error

	// List returns all entries matching the filter, oldest first.
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}
