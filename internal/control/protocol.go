// Package control implements the request/response protocol used by clients
// to drive the supervisor, and its websocket transport.
//
// Every inbound frame is a Request. Every Request is answered with exactly
// one Response carrying the same requestId. Connections subscribed to the
// agent stream additionally receive Push frames of type "agent_event".
package control

import (
	"encoding/json"

	"github.com/jmgilman/overseer/internal/model"
)

// Command types.
const (
	TypeCreateInstance       = "create_instance"
	TypeDestroyInstance      = "destroy_instance"
	TypeRestartInstance      = "restart_instance"
	TypeListInstances        = "list_instances"
	TypeGetInstance          = "get_instance"
	TypeSendPrompt           = "send_prompt"
	TypeApproveCommand       = "approve_command"
	TypeRejectCommand        = "reject_command"
	TypeCancelCommand        = "cancel_command"
	TypeCreateThread         = "create_thread"
	TypeSwitchThread         = "switch_thread"
	TypeListThreads          = "list_threads"
	TypeGetTools             = "get_tools"
	TypeUpdateSettings       = "update_settings"
	TypeToggleAutoRestart    = "toggle_auto_restart"
	TypeSetGlobalAutoRestart = "set_global_auto_restart"
	TypeGetStatus            = "get_status"
	TypeGetAgentStream       = "get_agent_stream"
)

// Frame types written by the server.
const (
	FrameResponse   = "response"
	FrameAgentEvent = "agent_event"
)

// Stream actions for get_agent_stream.
const (
	StreamSubscribe   = "subscribe"
	StreamUnsubscribe = "unsubscribe"
)

// Request is one inbound command.
type Request struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

// Response answers one Request. Data is set on success, Error otherwise.
type Response struct {
	Type      string `json:"type"`
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Push carries an agent event to a subscribed connection.
type Push struct {
	Type string           `json:"type"`
	Data model.AgentEvent `json:"data"`
}

// Envelope decodes any server frame on the client side.
type Envelope struct {
	Type      string          `json:"type"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

// InstanceRef names a single instance.
type InstanceRef struct {
	InstanceID string `json:"instanceId"`
}

// CreateInstancePayload is the payload of create_instance.
type CreateInstancePayload struct {
	Name             string               `json:"name,omitempty"`
	WorkingDirectory string               `json:"workingDirectory,omitempty"`
	Config           model.InstanceConfig `json:"config,omitzero"`
	ThreadID         string               `json:"threadId,omitempty"`
}

// ListInstancesPayload is the optional payload of list_instances.
type ListInstancesPayload struct {
	Status model.Status `json:"status,omitempty"`
}

// SendPromptPayload is the payload of send_prompt.
type SendPromptPayload struct {
	InstanceID string `json:"instanceId"`
	Prompt     string `json:"prompt"`
}

// StatusResult is returned by send_prompt and approve_command.
type StatusResult struct {
	Status model.Status `json:"status"`
}

// CreateThreadPayload is the payload of create_thread.
type CreateThreadPayload struct {
	InstanceID string `json:"instanceId"`
	Name       string `json:"name,omitempty"`
}

// SwitchThreadPayload is the payload of switch_thread.
type SwitchThreadPayload struct {
	InstanceID string `json:"instanceId"`
	ThreadID   string `json:"threadId"`
}

// ToolsResult is returned by get_tools.
type ToolsResult struct {
	Tools []string `json:"tools"`
}

// UpdateSettingsPayload is the payload of update_settings. An empty
// InstanceID updates the global defaults.
type UpdateSettingsPayload struct {
	InstanceID string               `json:"instanceId,omitempty"`
	Config     model.InstanceConfig `json:"config"`
}

// AutoRestartResult is returned by toggle_auto_restart and
// set_global_auto_restart.
type AutoRestartResult struct {
	AutoRestart bool `json:"autoRestart"`
}

// SetGlobalAutoRestartPayload is the payload of set_global_auto_restart.
type SetGlobalAutoRestartPayload struct {
	Enabled bool `json:"enabled"`
}

// StreamPayload is the payload of get_agent_stream.
type StreamPayload struct {
	Action string `json:"action"`
	Replay bool   `json:"replay,omitempty"`
}

// StreamResult is returned by get_agent_stream.
type StreamResult struct {
	Subscribed bool `json:"subscribed"`
}
