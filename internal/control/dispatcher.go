package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jmgilman/overseer/internal/events"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/slogger"
	"github.com/jmgilman/overseer/internal/supervisor"
)

// ErrInvalidPayload reports a payload that could not be decoded or is
// missing a required field.
var ErrInvalidPayload = errors.New("invalid payload")

// Backend is the supervisor surface the dispatcher drives.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/backend.go . Backend
type Backend interface {
	Create(ctx context.Context, req supervisor.CreateRequest) (model.Instance, error)
	Remove(ctx context.Context, id string) error
	Restart(ctx context.Context, id, reason string) error
	List() []model.Instance
	Get(id string) (model.Instance, error)
	Submit(ctx context.Context, id, text string) (model.Status, error)
	Approve(ctx context.Context, id string) (model.Status, error)
	Reject(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	CreateThread(ctx context.Context, id, name string) (model.Thread, error)
	SwitchThread(ctx context.Context, id, threadID string) error
	ListThreads(id string) ([]model.Thread, error)
	Tools() []string
	UpdateSettings(ctx context.Context, id string, over model.InstanceConfig) error
	ToggleAutoRestart(ctx context.Context, id string) (bool, error)
	SetGlobalAutoRestart(ctx context.Context, enabled bool)
	Status() supervisor.StatusSummary
}

// Stream is the event broadcast connections subscribe to.
type Stream interface {
	Subscribe(sink events.Sink, replay bool) (unsubscribe func())
	Subscribers() int
}

type requestObserver interface {
	ObserveRequest(typ string, ok bool, elapsed time.Duration)
	ObserveSubscribers(n int)
}

type handlerFunc func(ctx context.Context, sess *Session, payload json.RawMessage) (any, error)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Logger  *slog.Logger
	Metrics requestObserver
}

// Dispatcher maps control requests onto supervisor operations.
type Dispatcher struct {
	backend  Backend
	stream   Stream
	log      *slog.Logger
	metrics  requestObserver
	handlers map[string]handlerFunc
}

// NewDispatcher creates a Dispatcher over backend and stream.
func NewDispatcher(backend Backend, stream Stream, opts DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		backend: backend,
		stream:  stream,
		log:     slogger.OrDiscard(opts.Logger),
		metrics: opts.Metrics,
	}
	d.handlers = map[string]handlerFunc{
		TypeCreateInstance:       d.createInstance,
		TypeDestroyInstance:      d.destroyInstance,
		TypeRestartInstance:      d.restartInstance,
		TypeListInstances:        d.listInstances,
		TypeGetInstance:          d.getInstance,
		TypeSendPrompt:           d.sendPrompt,
		TypeApproveCommand:       d.approveCommand,
		TypeRejectCommand:        d.rejectCommand,
		TypeCancelCommand:        d.cancelCommand,
		TypeCreateThread:         d.createThread,
		TypeSwitchThread:         d.switchThread,
		TypeListThreads:          d.listThreads,
		TypeGetTools:             d.getTools,
		TypeUpdateSettings:       d.updateSettings,
		TypeToggleAutoRestart:    d.toggleAutoRestart,
		TypeSetGlobalAutoRestart: d.setGlobalAutoRestart,
		TypeGetStatus:            d.getStatus,
		TypeGetAgentStream:       d.agentStream,
	}
	return d
}

// Dispatch runs req and returns its response. Dispatch never fails; errors
// are reported in the response.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, req Request) Response {
	start := time.Now()
	resp := Response{Type: FrameResponse, RequestID: req.RequestID}

	h, ok := d.handlers[req.Type]
	if !ok {
		resp.Error = fmt.Sprintf("Unknown command type: %s", req.Type)
		d.observe(req.Type, false, start)
		return resp
	}

	data, err := h(ctx, sess, req.Payload)
	if err != nil {
		resp.Error = err.Error()
		d.log.Debug("control request failed", "type", req.Type, "requestId", req.RequestID, "error", err)
	} else {
		resp.Success = true
		resp.Data = data
	}
	d.observe(req.Type, err == nil, start)
	return resp
}

func (d *Dispatcher) observe(typ string, ok bool, start time.Time) {
	if d.metrics == nil {
		return
	}
	// Unknown types share one label value.
	if _, known := d.handlers[typ]; !known {
		typ = "unknown"
	}
	d.metrics.ObserveRequest(typ, ok, time.Since(start))
}

func decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 || string(payload) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return v, nil
}

func decodeRef(payload json.RawMessage) (string, error) {
	ref, err := decode[InstanceRef](payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(ref.InstanceID) == "" {
		return "", fmt.Errorf("%w: instanceId is required", ErrInvalidPayload)
	}
	return ref.InstanceID, nil
}

func (d *Dispatcher) createInstance(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	p, err := decode[CreateInstancePayload](payload)
	if err != nil {
		return nil, err
	}
	return d.backend.Create(ctx, supervisor.CreateRequest{
		Name:             p.Name,
		WorkingDirectory: p.WorkingDirectory,
		Config:           p.Config,
		ThreadID:         p.ThreadID,
	})
}

func (d *Dispatcher) destroyInstance(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	id, err := decodeRef(payload)
	if err != nil {
		return nil, err
	}
	return nil, d.backend.Remove(ctx, id)
}

func (d *Dispatcher) restartInstance(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	id, err := decodeRef(payload)
	if err != nil {
		return nil, err
	}
	if err := d.backend.Restart(ctx, id, supervisor.ReasonManual); err != nil {
		return nil, err
	}
	return d.backend.Get(id)
}

func (d *Dispatcher) listInstances(_ context.Context, _ *Session, payload json.RawMessage) (any, error) {
	p, err := decode[ListInstancesPayload](payload)
	if err != nil {
		return nil, err
	}
	list := d.backend.List()
	if p.Status == "" {
		return list, nil
	}
	filtered := make([]model.Instance, 0, len(list))
	for _, inst := range list {
		if inst.Status == p.Status {
			filtered = append(filtered, inst)
		}
	}
	return filtered, nil
}

func (d *Dispatcher) getInstance(_ context.Context, _ *Session, payload json.RawMessage) (any, error) {
	id, err := decodeRef(payload)
	if err != nil {
		return nil, err
	}
	return d.backend.Get(id)
}

func (d *Dispatcher) sendPrompt(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	p, err := decode[SendPromptPayload](payload)
	if err != nil {
		return nil, err
	}
	if p.InstanceID == "" {
		return nil, fmt.Errorf("%w: instanceId is required", ErrInvalidPayload)
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidPayload)
	}
	status, err := d.backend.Submit(ctx, p.InstanceID, p.Prompt)
	if err != nil {
		return nil, err
	}
	return StatusResult{Status: status}, nil
}

func (d *Dispatcher) approveCommand(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	id, err := decodeRef(payload)
	if err != nil {
		return nil, err
	}
	status, err := d.backend.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	return StatusResult{Status: status}, nil
}

func (d *Dispatcher) rejectCommand(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	id, err := decodeRef(payload)
	if err != nil {
		return nil, err
	}
	return nil, d.backend.Reject(ctx, id)
}

func (d *Dispatcher) cancelCommand(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	id, err := decodeRef(payload)
	if err != nil {
		return nil, err
	}
	return nil, d.backend.Cancel(ctx, id)
}

func (d *Dispatcher) createThread(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	p, err := decode[CreateThreadPayload](payload)
	if err != nil {
		return nil, err
	}
	if p.InstanceID == "" {
		return nil, fmt.Errorf("%w: instanceId is required", ErrInvalidPayload)
	}
	return d.backend.CreateThread(ctx, p.InstanceID, p.Name)
}

func (d *Dispatcher) switchThread(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	p, err := decode[SwitchThreadPayload](payload)
	if err != nil {
		return nil, err
	}
	if p.InstanceID == "" {
		return nil, fmt.Errorf("%w: instanceId is required", ErrInvalidPayload)
	}
	return nil, d.backend.SwitchThread(ctx, p.InstanceID, p.ThreadID)
}

func (d *Dispatcher) listThreads(_ context.Context, _ *Session, payload json.RawMessage) (any, error) {
	id, err := decodeRef(payload)
	if err != nil {
		return nil, err
	}
	return d.backend.ListThreads(id)
}

func (d *Dispatcher) getTools(context.Context, *Session, json.RawMessage) (any, error) {
	tools := d.backend.Tools()
	if tools == nil {
		tools = []string{}
	}
	return ToolsResult{Tools: tools}, nil
}

func (d *Dispatcher) updateSettings(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	p, err := decode[UpdateSettingsPayload](payload)
	if err != nil {
		return nil, err
	}
	if err := d.backend.UpdateSettings(ctx, p.InstanceID, p.Config); err != nil {
		return nil, err
	}
	if p.InstanceID == "" {
		return d.backend.Status().Defaults, nil
	}
	inst, err := d.backend.Get(p.InstanceID)
	if err != nil {
		return nil, err
	}
	return inst.Config, nil
}

func (d *Dispatcher) toggleAutoRestart(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	id, err := decodeRef(payload)
	if err != nil {
		return nil, err
	}
	enabled, err := d.backend.ToggleAutoRestart(ctx, id)
	if err != nil {
		return nil, err
	}
	return AutoRestartResult{AutoRestart: enabled}, nil
}

func (d *Dispatcher) setGlobalAutoRestart(ctx context.Context, _ *Session, payload json.RawMessage) (any, error) {
	p, err := decode[SetGlobalAutoRestartPayload](payload)
	if err != nil {
		return nil, err
	}
	d.backend.SetGlobalAutoRestart(ctx, p.Enabled)
	return AutoRestartResult{AutoRestart: p.Enabled}, nil
}

func (d *Dispatcher) getStatus(context.Context, *Session, json.RawMessage) (any, error) {
	return d.backend.Status(), nil
}

func (d *Dispatcher) agentStream(_ context.Context, sess *Session, payload json.RawMessage) (any, error) {
	p, err := decode[StreamPayload](payload)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New("agent stream requires a connection")
	}

	switch p.Action {
	case StreamSubscribe, "":
		sess.subscribe(d.stream, p.Replay)
	case StreamUnsubscribe:
		sess.unsubscribe()
	default:
		return nil, fmt.Errorf("%w: unknown stream action %q", ErrInvalidPayload, p.Action)
	}
	if d.metrics != nil {
		d.metrics.ObserveSubscribers(d.stream.Subscribers())
	}
	return StreamResult{Subscribed: sess.Subscribed()}, nil
}

// Session is the per-connection state of the protocol.
type Session struct {
	push func(model.AgentEvent) error

	mu    sync.Mutex
	unsub func()
}

// NewSession creates a Session that delivers subscribed events to push.
// push must not block.
func NewSession(push func(model.AgentEvent) error) *Session {
	return &Session{push: push}
}

// Subscribed reports whether the session receives agent events.
func (s *Session) Subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsub != nil
}

// Close drops any subscription.
func (s *Session) Close() {
	s.unsubscribe()
}

func (s *Session) subscribe(stream Stream, replay bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsub != nil {
		return
	}
	s.unsub = stream.Subscribe(events.SinkFunc(s.push), replay)
}

func (s *Session) unsubscribe() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
