package supervisor

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmgilman/overseer/internal/events"
	"github.com/jmgilman/overseer/internal/logstate"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/multiplexer"
)

// hostOp is one input delivered to a fake session.
type hostOp struct {
	Session string
	Text    string   // set for SendText
	Keys    []string // set for SendKeys
}

// fakeHost is an in-memory process host.
type fakeHost struct {
	mu       sync.Mutex
	sessions map[string]multiplexer.CreateSessionOpts
	killed   []string
	creates  int
	ops      []hostOp
	screens  map[string][]string

	// defaultScreen is shown by sessions without their own screen.
	defaultScreen []string

	createErr  error
	sendErr    error
	captureErr error
	// gate, when set, blocks HasSession until closed; entered is signalled
	// first.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		sessions: make(map[string]multiplexer.CreateSessionOpts),
		screens:  make(map[string][]string),
	}
}

func (h *fakeHost) CreateSession(_ context.Context, opts *multiplexer.CreateSessionOpts) (*multiplexer.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return nil, h.createErr
	}
	if _, ok := h.sessions[opts.Name]; ok {
		return nil, multiplexer.ErrSessionExists
	}
	h.creates++
	h.sessions[opts.Name] = *opts
	return &multiplexer.Session{ID: opts.Name, Name: opts.Name, CreatedAt: time.Now()}, nil
}

func (h *fakeHost) HasSession(ctx context.Context, name string) (bool, error) {
	h.mu.Lock()
	gate, entered := h.gate, h.entered
	h.mu.Unlock()
	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.sessions[name]
	return ok, nil
}

func (h *fakeHost) KillSession(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[name]; !ok {
		return multiplexer.ErrSessionNotFound
	}
	delete(h.sessions, name)
	h.killed = append(h.killed, name)
	return nil
}

func (h *fakeHost) ListSessions(context.Context) ([]multiplexer.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []multiplexer.Session
	for name := range h.sessions {
		out = append(out, multiplexer.Session{ID: name, Name: name})
	}
	return out, nil
}

func (h *fakeHost) SendText(ctx context.Context, name, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sendErr != nil {
		return h.sendErr
	}
	if _, ok := h.sessions[name]; !ok {
		return multiplexer.ErrSessionNotFound
	}
	h.ops = append(h.ops, hostOp{Session: name, Text: text})
	return nil
}

func (h *fakeHost) SendKeys(ctx context.Context, name string, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sendErr != nil {
		return h.sendErr
	}
	if _, ok := h.sessions[name]; !ok {
		return multiplexer.ErrSessionNotFound
	}
	h.ops = append(h.ops, hostOp{Session: name, Keys: keys})
	return nil
}

func (h *fakeHost) CaptureRecent(_ context.Context, name string, lines int) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.captureErr != nil {
		return nil, h.captureErr
	}
	screen, ok := h.screens[name]
	if !ok {
		screen = h.defaultScreen
	}
	if len(screen) > lines {
		screen = screen[len(screen)-lines:]
	}
	return slices.Clone(screen), nil
}

func (h *fakeHost) setScreen(session string, lines ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.screens[session] = lines
}

func (h *fakeHost) set(fn func(h *fakeHost)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h)
}

func (h *fakeHost) opsFor(session string) []hostOp {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []hostOp
	for _, op := range h.ops {
		if op.Session == session {
			out = append(out, op)
		}
	}
	return out
}

// texts returns the literal text typed into session.
func (h *fakeHost) texts(session string) []string {
	var out []string
	for _, op := range h.opsFor(session) {
		if op.Keys == nil {
			out = append(out, op.Text)
		}
	}
	return out
}

func (h *fakeHost) sentKey(session, key string) bool {
	for _, op := range h.opsFor(session) {
		if slices.Contains(op.Keys, key) {
			return true
		}
	}
	return false
}

func (h *fakeHost) clearOps() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = nil
}

func (h *fakeHost) hasSession(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.sessions[name]
	return ok
}

func testOptions(t *testing.T, mem *events.Memory) Options {
	t.Helper()
	return Options{
		Agent: AgentOptions{
			Command:     "agent",
			Args:        []string{"--log-format", "json"},
			Env:         map[string]string{"AGENT_MODE": "interactive"},
			LogFileEnv:  "AGENT_LOG_FILE",
			LogLevelEnv: "AGENT_LOG_LEVEL",
			ThreadFlag:  "--thread",
		},
		Defaults:           model.InstanceConfig{LogLevel: "info", InactivityThresholdSeconds: 60},
		Tools:              []string{"shell", "edit"},
		LogsDir:            t.TempDir(),
		Events:             mem,
		StartupDelay:       -1,
		SubmitDelay:        -1,
		AuthSettleDelay:    5 * time.Millisecond,
		OutputPollInterval: time.Hour,
		OptimisticAuth:     true,
		Monitor:            logstate.Options{PollInterval: 5 * time.Millisecond},
	}
}

func newTestSupervisor(t *testing.T, mutate func(*Options)) (*Supervisor, *fakeHost, *events.Memory) {
	t.Helper()
	mem := events.NewMemory()
	opts := testOptions(t, mem)
	if mutate != nil {
		mutate(&opts)
	}
	host := newFakeHost()
	s := New(host, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx) //nolint:errcheck // returns nil on cancel
	}()
	t.Cleanup(func() {
		s.Shutdown(context.Background()) //nolint:errcheck // best-effort cleanup
		cancel()
		<-done
	})
	return s, host, mem
}

func waitStatus(t *testing.T, s *Supervisor, id string, want model.Status) model.Instance {
	t.Helper()
	var inst model.Instance
	require.Eventually(t, func() bool {
		var err error
		inst, err = s.Get(id)
		return err == nil && inst.Status == want
	}, 2*time.Second, 5*time.Millisecond, "instance never reached %s", want)
	return inst
}

// createIdle creates an instance and waits for the auth check to settle.
func createIdle(t *testing.T, s *Supervisor, cfg model.InstanceConfig) model.Instance {
	t.Helper()
	inst, err := s.Create(context.Background(), CreateRequest{WorkingDirectory: t.TempDir(), Config: cfg})
	require.NoError(t, err)
	return waitStatus(t, s, inst.ID, model.StatusIdle)
}

func appendLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	//nolint:gosec // G304: path is from test temp directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
