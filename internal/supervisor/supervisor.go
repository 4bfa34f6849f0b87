// Package supervisor owns the registry of supervised agent instances.
//
// The Supervisor is the only component that creates, restarts or removes
// instances. Callers receive model.Instance snapshots; the mutable records
// never leave this package. Operations on one instance are serialized,
// operations on different instances run independently.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmgilman/overseer/internal/catalog"
	"github.com/jmgilman/overseer/internal/logging"
	"github.com/jmgilman/overseer/internal/logstate"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/multiplexer"
)

// sessionHost is the internal interface for process host operations.
type sessionHost interface {
	CreateSession(ctx context.Context, opts *multiplexer.CreateSessionOpts) (*multiplexer.Session, error)
	HasSession(ctx context.Context, sessionName string) (bool, error)
	KillSession(ctx context.Context, sessionName string) error
	ListSessions(ctx context.Context) ([]multiplexer.Session, error)
	SendText(ctx context.Context, sessionName, text string) error
	SendKeys(ctx context.Context, sessionName string, keys ...string) error
	CaptureRecent(ctx context.Context, sessionName string, lines int) ([]string, error)
}

// catalogStore is the internal interface for catalog operations.
type catalogStore interface {
	Add(ctx context.Context, entry catalog.Entry) error
	Update(ctx context.Context, entry catalog.Entry) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Entry, error)
}

// entry is the supervisor's mutable record for one instance.
//
// opMu serializes operations that drive the session and is held across
// settle waits. mu guards every other field and is only held briefly.
// Events for the instance are published while mu is held.
type entry struct {
	opMu       sync.Mutex
	restarting atomic.Bool

	mu        sync.Mutex
	inst      model.Instance
	overrides model.InstanceConfig
	threads   []model.Thread
	removed   bool
	monitor   *logstate.Monitor
	gen       uint64
	ctx       context.Context
	cancel    context.CancelFunc

	// lastCapture is the previous pane window; skipCapture drops the next
	// window after a restart so stale pane text is not re-recorded.
	lastCapture []string
	skipCapture bool

	// authBaseline is the pane window captured just before the agent was
	// relaunched; the next auth check only reads lines that follow it.
	authBaseline []string

	persistMu sync.Mutex
}

type monitorEvent struct {
	id  string
	gen uint64
	ev  logstate.Event
}

// Supervisor manages the lifecycle of agent instances.
type Supervisor struct {
	host     sessionHost
	opts     Options
	log      *slog.Logger
	paths    *logging.PathManager
	started  time.Time
	monitorC chan monitorEvent

	mu        sync.RWMutex
	instances map[string]*entry
	defaults  model.InstanceConfig
}

// New creates a Supervisor that hosts sessions on host.
func New(host sessionHost, opts Options) *Supervisor {
	opts = opts.withDefaults()
	return &Supervisor{
		host:      host,
		opts:      opts,
		log:       opts.Logger,
		paths:     logging.NewPathManager(opts.LogsDir),
		started:   opts.Clock(),
		monitorC:  make(chan monitorEvent, monitorEventBuffer),
		instances: make(map[string]*entry),
		defaults:  opts.Defaults.Clone(),
	}
}

// Run consumes log monitor events and captures session output until ctx
// is done. Instances can be created before Run starts; their monitor
// events are buffered.
func (s *Supervisor) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.OutputPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case me := <-s.monitorC:
			s.handleMonitorEvent(me)
		case <-ticker.C:
			s.CaptureOutput(ctx)
		}
	}
}

// List returns snapshots of all instances, oldest first.
func (s *Supervisor) List() []model.Instance {
	s.mu.RLock()
	entries := slices.Collect(maps.Values(s.instances))
	s.mu.RUnlock()

	now := s.now()
	out := make([]model.Instance, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, e.snapshot(now))
		}
		e.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b model.Instance) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Get returns a snapshot of one instance.
func (s *Supervisor) Get(id string) (model.Instance, error) {
	e, err := s.lookup(id)
	if err != nil {
		return model.Instance{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return model.Instance{}, ErrInstanceNotFound
	}
	return e.snapshot(s.now()), nil
}

// RecordInactivityCheck stores the time the watchdog last acted on id.
func (s *Supervisor) RecordInactivityCheck(id string, at time.Time) error {
	return s.withEntry(id, func(e *entry) error {
		e.inst.LastInactivityCheck = at
		return nil
	})
}

// Notify publishes an event for id on behalf of another component. It
// fails with ErrInstanceNotFound once the instance has been removed, so no
// events follow an instance_removed.
func (s *Supervisor) Notify(id, typ string, sev model.Severity, data map[string]any) error {
	return s.withEntry(id, func(e *entry) error {
		s.emit(e, typ, sev, data)
		return nil
	})
}

// MarkError records that the output of id matched an error pattern: the
// instance moves to error and error_detected is published. A command
// awaiting approval is dropped with it. The instance stays in error until
// it is restarted. Nothing happens when line is no longer in the output
// buffer, and a restart in flight yields ErrRestartInProgress.
func (s *Supervisor) MarkError(ctx context.Context, id, pattern, line string) error {
	var e *entry
	err := s.withEntry(id, func(en *entry) error {
		if en.restarting.Load() {
			return ErrRestartInProgress
		}
		if !slices.Contains(en.inst.Output, line) {
			return nil
		}
		e = en
		data := map[string]any{
			"pattern": pattern,
			"line":    line,
		}
		if en.inst.PendingCommand != nil {
			data["droppedCommand"] = en.inst.PendingCommand.Command
			en.inst.PendingCommand = nil
		}
		en.inst.CurrentPrompt = ""
		en.inst.LastError = fmt.Sprintf("error pattern matched: %q", pattern)
		s.setStatus(en, model.StatusError, ReasonErrorPattern)
		s.emit(en, model.EventErrorDetected, model.SeverityError, data)
		return nil
	})
	if err != nil || e == nil {
		return err
	}
	s.persist(ctx, e)
	return nil
}

func (s *Supervisor) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.instances[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	return e, nil
}

// withEntry runs fn with e.mu held, failing when the instance is gone.
func (s *Supervisor) withEntry(id string, fn func(*entry) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrInstanceNotFound
	}
	return fn(e)
}

func (s *Supervisor) now() time.Time {
	return s.opts.Clock()
}

// emit publishes an event for e. Callers hold e.mu.
func (s *Supervisor) emit(e *entry, typ string, sev model.Severity, data map[string]any) {
	if e.removed {
		return
	}
	s.opts.Events.Publish(model.NewEvent(e.inst.ID, typ, sev, s.now(), data))
}

// setStatus moves e to status and announces the change. Callers hold e.mu.
func (s *Supervisor) setStatus(e *entry, status model.Status, reason string) {
	from := e.inst.Status
	if from == status {
		return
	}
	e.inst.Status = status
	sev := model.SeverityInfo
	if status == model.StatusError {
		sev = model.SeverityError
	}
	data := map[string]any{"from": string(from), "to": string(status)}
	if reason != "" {
		data["reason"] = reason
	}
	s.emit(e, model.EventStatusChanged, sev, data)
}

// snapshot copies the instance record. Callers hold e.mu.
func (e *entry) snapshot(now time.Time) model.Instance {
	out := e.inst.Clone()
	if now.After(out.CreatedAt) {
		out.Stats.Uptime = now.Sub(out.CreatedAt)
	}
	return out
}
