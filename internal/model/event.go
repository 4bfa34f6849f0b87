package model

import "time"

// Severity ranks an AgentEvent for observers.
type Severity string

// Severity levels.
const (
	SeverityInfo     Severity = "info"
	SeverityWarn     Severity = "warn"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Event types published by the supervisor and watchdog.
const (
	EventInstanceCreated    = "instance_created"
	EventInstanceRemoved    = "instance_removed"
	EventStatusChanged      = "status_changed"
	EventAuthSucceeded      = "auth_succeeded"
	EventAuthFailed         = "auth_failed"
	EventCreditsExhausted   = "credits_exhausted"
	EventPromptSubmitted    = "prompt_submitted"
	EventPromptCompleted    = "prompt_completed"
	EventApprovalRequired   = "approval_required"
	EventCommandApproved    = "command_approved"
	EventCommandRejected    = "command_rejected"
	EventCommandCancelled   = "command_cancelled"
	EventLogStateChanged    = "log_state_changed"
	EventInactivityDetected = "inactivity_detected"
	EventErrorDetected      = "error_detected"
	EventRestartTriggered   = "restart_triggered"
	EventRestartCompleted   = "restart_completed"
	EventRestartFailed      = "restart_failed"
	EventThreadCreated      = "thread_created"
	EventThreadSwitched     = "thread_switched"
	EventSettingsUpdated    = "settings_updated"
)

// AgentEvent is a broadcast notification of an instance state change.
// It is never modified after publication.
type AgentEvent struct {
	InstanceID string         `json:"instanceId"`
	Timestamp  time.Time      `json:"timestamp"`
	Type       string         `json:"type"`
	Data       map[string]any `json:"data,omitempty"`
	Severity   Severity       `json:"severity"`
}

// NewEvent builds an AgentEvent stamped with at.
func NewEvent(instanceID, typ string, sev Severity, at time.Time, data map[string]any) AgentEvent {
	return AgentEvent{
		InstanceID: instanceID,
		Timestamp:  at,
		Type:       typ,
		Data:       data,
		Severity:   sev,
	}
}
