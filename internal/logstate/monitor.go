package logstate

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/jmgilman/overseer/internal/logging"
	"github.com/jmgilman/overseer/internal/slogger"
)

// Monitor defaults.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultRefreshLines = 200
)

// EventType names a monitor notification.
type EventType string

// Monitor event types.
const (
	// EventStateChanged fires when any classified field of the state changes.
	EventStateChanged EventType = "state-changed"
	// EventStarted fires when the running predicate becomes true.
	EventStarted EventType = "started"
	// EventIdle fires when the running predicate becomes false.
	EventIdle EventType = "idle"
)

// Event is a state transition observed by a Monitor.
type Event struct {
	Type EventType
	Old  State
	New  State
	// Record is the log record that caused the change. It is nil for idle
	// edges caused only by the activity window expiring.
	Record *Record
	Time   time.Time
}

// Sink receives monitor events. ctx is cancelled when the monitor stops,
// so a sink that blocks must select on it.
type Sink func(ctx context.Context, ev Event)

// Options configures a Monitor.
type Options struct {
	PollInterval         time.Duration
	RecentActivityWindow time.Duration
	RefreshLines         int
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RecentActivityWindow <= 0 {
		o.RecentActivityWindow = DefaultRecentActivityWindow
	}
	if o.RefreshLines <= 0 {
		o.RefreshLines = DefaultRefreshLines
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	o.Logger = slogger.OrDiscard(o.Logger)
	return o
}

// Monitor tails one instance's structured log and classifies agent activity.
//
// The byte offset into the log is owned by the Monitor. Events are delivered
// to the sink in the order the causing records were read.
type Monitor struct {
	path string
	sink Sink
	opts Options

	mu      sync.Mutex
	tail    *logging.Tail
	state   State
	running bool
	skipped int
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewMonitor creates a Monitor for the log at path. It does nothing until
// Start is called.
func NewMonitor(path string, sink Sink, opts Options) *Monitor {
	if sink == nil {
		sink = func(context.Context, Event) {}
	}
	return &Monitor{
		path:  path,
		sink:  sink,
		opts:  opts.withDefaults(),
		tail:  logging.NewTail(path),
		state: InitialState(),
		ctx:   context.Background(),
	}
}

// Start records the current end of the log as baseline and begins polling.
// Content already in the file is not replayed; use Refresh for that.
// Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return nil
	}
	if err := m.tail.SeekEnd(); err != nil {
		return err
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.loop(m.ctx, m.done)
	return nil
}

// Stop halts polling and waits for the poll goroutine to exit. No events
// are delivered after Stop returns. Stop is idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// State returns the current inferred state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Skipped returns the number of malformed lines ignored so far.
func (m *Monitor) Skipped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped
}

// Refresh rebuilds the state from the last RefreshLines lines of the log.
//
// Activity times come from the records' own timestamps, so old content
// does not look like recent activity. A missing log is not an error.
func (m *Monitor) Refresh() error {
	lines, err := logging.ReadLastLines(m.path, m.opts.RefreshLines)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.state
	next := InitialState()
	var last *Record
	for _, line := range lines {
		rec, err := ParseRecord(line)
		if err != nil {
			m.skipped++
			continue
		}
		next = next.Apply(Classify(rec), rec.Time)
		last = &rec
	}
	if last == nil {
		return nil
	}

	now := m.opts.Clock()
	m.state = next
	if !old.SameAs(next) {
		m.emit(Event{Type: EventStateChanged, Old: old, New: next, Record: last, Time: now})
	}
	m.checkEdge(old, last, now)
	return nil
}

// Poll reads newly appended lines once. The poll goroutine calls it on every
// tick; it is exported so callers can force an immediate read.
func (m *Monitor) Poll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := m.tail.ReadLines()
	if err != nil {
		m.opts.Logger.Debug("log poll failed", "path", m.path, "error", err)
	}

	for _, line := range lines {
		rec, err := ParseRecord(line)
		if err != nil {
			m.skipped++
			continue
		}
		now := m.opts.Clock()
		old := m.state
		m.state = old.Apply(Classify(rec), now)
		if !old.SameAs(m.state) {
			m.emit(Event{Type: EventStateChanged, Old: old, New: m.state, Record: &rec, Time: now})
		}
		m.checkEdge(old, &rec, now)
	}

	// The recency clause expires without any new record.
	m.checkEdge(m.state, nil, m.opts.Clock())
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll()
		}
	}
}

// checkEdge emits started/idle when the running predicate flips.
// Callers hold m.mu.
func (m *Monitor) checkEdge(old State, rec *Record, now time.Time) {
	running := m.state.Running(now, m.opts.RecentActivityWindow)
	if running == m.running {
		return
	}
	m.running = running
	typ := EventIdle
	if running {
		typ = EventStarted
	}
	m.emit(Event{Type: typ, Old: old, New: m.state, Record: rec, Time: now})
}

// emit delivers ev unless the monitor was stopped. Callers hold m.mu.
func (m *Monitor) emit(ev Event) {
	if m.ctx.Err() != nil {
		return
	}
	m.sink(m.ctx, ev)
}
