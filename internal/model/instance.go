// Package model defines the data types shared by the supervision engine,
// the watchdog and the control protocol.
package model

import (
	"slices"
	"time"
)

// Status represents the supervised instance state.
type Status string

// Instance status constants.
const (
	StatusIdle            Status = "idle"
	StatusRunning         Status = "running"
	StatusError           Status = "error"
	StatusStopped         Status = "stopped"
	StatusWaitingApproval Status = "waiting_approval"
	StatusAuthenticating  Status = "authenticating"
)

// AuthStatus is the agent authentication state, orthogonal to Status.
type AuthStatus string

// Authentication status constants.
const (
	AuthAuthenticated AuthStatus = "authenticated"
	AuthPending       AuthStatus = "pending"
	AuthFailed        AuthStatus = "failed"
	AuthUnknown       AuthStatus = "unknown"
)

// PendingCommand is a submitted command held for a manual decision.
type PendingCommand struct {
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats holds monotonically updated per-instance counters.
type Stats struct {
	PromptsExecuted int           `json:"promptsExecuted"`
	TokensUsed      int64         `json:"tokensUsed"`
	Uptime          time.Duration `json:"uptime"`
	RestartCount    int           `json:"restartCount"`
	LastRestart     time.Time     `json:"lastRestart,omitzero"`
}

// LogSummary is the last inferred agent activity for an instance.
type LogSummary struct {
	Kind           string `json:"kind"`
	StatusMessage  string `json:"statusMessage,omitempty"`
	InferenceState string `json:"inferenceState,omitempty"`
}

// Thread is a conversation continuation token known for an instance.
type Thread struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Instance is one supervised session of the external agent.
//
// Values of this type are snapshots; the supervisor never hands out a
// reference to its own record.
type Instance struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Status              Status          `json:"status"`
	AuthStatus          AuthStatus      `json:"authStatus"`
	CreatedAt           time.Time       `json:"createdAt"`
	LastActivity        time.Time       `json:"lastActivity"`
	LastInactivityCheck time.Time       `json:"lastInactivityCheck,omitzero"`
	WorkingDirectory    string          `json:"workingDirectory"`
	LogFilePath         string          `json:"logFilePath"`
	SessionName         string          `json:"sessionName"`
	Output              []string        `json:"output,omitempty"`
	CurrentPrompt       string          `json:"currentPrompt,omitempty"`
	ThreadID            string          `json:"threadId,omitempty"`
	PendingCommand      *PendingCommand `json:"pendingCommand,omitempty"`
	Stats               Stats           `json:"stats"`
	Config              InstanceConfig  `json:"config"`
	LogState            LogSummary      `json:"logState"`
	LastError           string          `json:"lastError,omitempty"`
}

// Clone returns a deep copy of the instance.
func (i Instance) Clone() Instance {
	out := i
	out.Output = slices.Clone(i.Output)
	if i.PendingCommand != nil {
		pc := *i.PendingCommand
		out.PendingCommand = &pc
	}
	out.Config = i.Config.Clone()
	return out
}

// ShortID returns the derived short form of an instance id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
