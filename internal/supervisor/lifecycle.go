package supervisor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmgilman/overseer/internal/catalog"
	"github.com/jmgilman/overseer/internal/logging"
	"github.com/jmgilman/overseer/internal/logstate"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/multiplexer"
	"github.com/jmgilman/overseer/internal/names"
)

// Restart reasons.
const (
	ReasonManual       = "manual"
	ReasonInactivity   = "inactivity"
	ReasonErrorPattern = "error_pattern"
	ReasonThreadSwitch = "thread_switch"
)

// InstanceIDEnv is exported into every session with the instance id.
const InstanceIDEnv = "OVERSEER_INSTANCE_ID"

// CreateRequest describes a new instance.
type CreateRequest struct {
	Name             string
	WorkingDirectory string
	// Config holds per-instance overrides of the global defaults.
	Config model.InstanceConfig
	// ThreadID resumes an existing agent thread when set.
	ThreadID string
}

// Create starts a new agent session and registers it.
//
// The instance starts out authenticating; a deferred check moves it to idle
// or error. When the process host cannot provide a session the error wraps
// ErrSessionUnavailable and nothing is registered.
func (s *Supervisor) Create(ctx context.Context, req CreateRequest) (model.Instance, error) {
	wd, err := resolveWorkingDir(req.WorkingDirectory)
	if err != nil {
		return model.Instance{}, err
	}

	id := uuid.NewString()
	logPath, err := s.paths.EnsureLog(id, logging.StreamAgent)
	if err != nil {
		return model.Instance{}, err
	}

	overrides := req.Config.Clone()
	s.mu.RLock()
	effective := s.defaults.Merge(overrides)
	s.mu.RUnlock()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = model.ShortID(id)
	}

	now := s.now()
	inst := model.Instance{
		ID:               id,
		Name:             name,
		Status:           model.StatusAuthenticating,
		AuthStatus:       model.AuthPending,
		CreatedAt:        now,
		LastActivity:     now,
		WorkingDirectory: wd,
		LogFilePath:      logPath,
		SessionName:      multiplexer.FormatSessionName(id),
		ThreadID:         strings.TrimSpace(req.ThreadID),
		Config:           effective,
		LogState:         summarize(logstate.InitialState()),
	}

	_, err = s.host.CreateSession(ctx, &multiplexer.CreateSessionOpts{
		Name:    inst.SessionName,
		Cwd:     wd,
		LogPath: s.paths.LogPath(id, logging.StreamPane),
	})
	if err != nil {
		s.paths.RemoveInstanceLogs(id) //nolint:errcheck // best-effort cleanup
		return model.Instance{}, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}

	cleanup := func() {
		cctx := context.WithoutCancel(ctx)
		s.host.KillSession(cctx, inst.SessionName) //nolint:errcheck // best-effort cleanup
		s.paths.RemoveInstanceLogs(id)             //nolint:errcheck // best-effort cleanup
	}

	if err := s.launch(ctx, &inst); err != nil {
		cleanup()
		return model.Instance{}, fmt.Errorf("start agent: %w", err)
	}

	ectx, cancel := context.WithCancel(context.Background())
	e := &entry{
		inst:      inst,
		overrides: overrides,
		ctx:       ectx,
		cancel:    cancel,
	}
	if inst.ThreadID != "" {
		e.threads = []model.Thread{{ID: inst.ThreadID, Name: names.Label(), CreatedAt: now}}
	}

	s.mu.Lock()
	s.instances[id] = e
	s.mu.Unlock()

	e.mu.Lock()
	s.emit(e, model.EventInstanceCreated, model.SeverityInfo, map[string]any{
		"name":             inst.Name,
		"workingDirectory": inst.WorkingDirectory,
		"sessionName":      inst.SessionName,
		"status":           string(inst.Status),
	})
	mon := s.startMonitor(e)
	gen := e.gen
	snap := e.snapshot(s.now())
	e.mu.Unlock()

	if mon != nil {
		if err := mon.Refresh(); err != nil {
			s.log.Debug("initial log scan failed", "instance", id, "error", err)
		}
	}
	s.scheduleAuthCheck(e, gen)
	s.persist(ctx, e)

	s.log.Info("instance created", "instance", id, "name", inst.Name, "session", inst.SessionName)
	return snap, nil
}

// Restart interrupts the agent and starts it again in the same session.
//
// A restart that is already running for id makes this call return
// ErrRestartInProgress without doing anything. On success the instance is
// idle with its transient fields cleared and RestartCount incremented. On
// failure it stays registered in the error state.
func (s *Supervisor) Restart(ctx context.Context, id, reason string) error {
	return s.restart(ctx, id, reason, nil)
}

// restart implements Restart. prepare, when set, runs under the entry lock
// once the restart owns the instance and before the agent is relaunched.
func (s *Supervisor) restart(ctx context.Context, id, reason string, prepare func(*entry)) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !e.restarting.CompareAndSwap(false, true) {
		return ErrRestartInProgress
	}
	defer e.restarting.Store(false)

	if reason == "" {
		reason = ReasonManual
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return ErrInstanceNotFound
	}
	if prepare != nil {
		prepare(e)
	}
	s.emit(e, model.EventRestartTriggered, model.SeverityWarn, map[string]any{
		"reason": reason,
		"status": string(e.inst.Status),
	})
	mon := e.monitor
	e.monitor = nil
	e.gen++
	inst := e.inst.Clone()
	ectx := e.ctx
	e.mu.Unlock()

	if mon != nil {
		mon.Stop()
	}

	opCtx, stop := mergeCancel(ctx, ectx)
	defer stop()
	baseline, launchErr := s.relaunch(opCtx, &inst)

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return ErrInstanceNotFound
	}

	e.inst.Output = nil
	e.inst.CurrentPrompt = ""
	e.inst.PendingCommand = nil
	e.lastCapture = nil
	e.skipCapture = true
	e.authBaseline = baseline

	if launchErr != nil {
		e.inst.LastError = launchErr.Error()
		s.setStatus(e, model.StatusError, reason)
		s.emit(e, model.EventRestartFailed, model.SeverityError, map[string]any{
			"reason": reason,
			"error":  launchErr.Error(),
		})
		e.mu.Unlock()
		s.persist(ctx, e)
		s.log.Warn("instance restart failed", "instance", id, "reason", reason, "error", launchErr)
		return fmt.Errorf("restart instance: %w", launchErr)
	}

	now := s.now()
	e.inst.Stats.RestartCount++
	e.inst.Stats.LastRestart = now
	e.inst.LastActivity = now
	e.inst.LastError = ""
	e.inst.AuthStatus = model.AuthPending
	e.inst.LogState = summarize(logstate.InitialState())
	s.setStatus(e, model.StatusIdle, reason)
	s.emit(e, model.EventRestartCompleted, model.SeverityInfo, map[string]any{
		"reason":       reason,
		"restartCount": e.inst.Stats.RestartCount,
	})
	s.startMonitor(e)
	gen := e.gen
	e.mu.Unlock()

	s.scheduleAuthCheck(e, gen)
	s.persist(ctx, e)
	s.log.Info("instance restarted", "instance", id, "reason", reason)
	return nil
}

// Remove stops supervising id and terminates its session.
//
// When Remove returns the instance is gone from the registry, its monitor
// has stopped and no further events for id will be published.
func (s *Supervisor) Remove(ctx context.Context, id string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return ErrInstanceNotFound
	}
	previous := e.inst.Status
	session := e.inst.SessionName
	mon := e.monitor
	e.monitor = nil
	e.removed = true
	e.inst.Status = model.StatusStopped
	e.inst.PendingCommand = nil
	e.cancel()
	e.mu.Unlock()

	if mon != nil {
		mon.Stop()
	}

	s.mu.Lock()
	delete(s.instances, id)
	s.mu.Unlock()

	// emit drops events for removed entries; this one is the last for id.
	e.mu.Lock()
	s.opts.Events.Publish(model.NewEvent(id, model.EventInstanceRemoved, model.SeverityInfo, s.now(), map[string]any{
		"status":         string(model.StatusStopped),
		"previousStatus": string(previous),
	}))
	e.mu.Unlock()

	if err := s.host.KillSession(ctx, session); err != nil && !errors.Is(err, multiplexer.ErrSessionNotFound) {
		s.log.Warn("failed to terminate session", "instance", id, "session", session, "error", err)
	}
	if s.opts.Catalog != nil {
		e.persistMu.Lock()
		if err := s.opts.Catalog.Remove(ctx, id); err != nil && !errors.Is(err, catalog.ErrNotFound) {
			s.log.Warn("failed to remove catalog entry", "instance", id, "error", err)
		}
		e.persistMu.Unlock()
	}

	s.log.Info("instance removed", "instance", id)
	return nil
}

// Shutdown removes every instance.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	var errs []error
	for _, inst := range s.List() {
		if err := s.Remove(ctx, inst.ID); err != nil && !errors.Is(err, ErrInstanceNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reap terminates managed sessions and drops catalog entries that do not
// belong to a registered instance, typically left over from a daemon that
// exited without cleaning up. It returns the number of sessions killed.
func (s *Supervisor) Reap(ctx context.Context) (int, error) {
	s.mu.RLock()
	known := make(map[string]bool, len(s.instances))
	for id := range s.instances {
		known[id] = true
		known[multiplexer.FormatSessionName(id)] = true
	}
	s.mu.RUnlock()

	sessions, err := s.host.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	killed := 0
	for _, sess := range sessions {
		if !multiplexer.IsManagedSession(sess.Name) || known[sess.Name] {
			continue
		}
		if err := s.host.KillSession(ctx, sess.Name); err != nil && !errors.Is(err, multiplexer.ErrSessionNotFound) {
			s.log.Warn("failed to reap session", "session", sess.Name, "error", err)
			continue
		}
		killed++
		s.log.Info("reaped orphaned session", "session", sess.Name)
	}

	if s.opts.Catalog == nil {
		return killed, nil
	}
	entries, err := s.opts.Catalog.List(ctx, catalog.ListFilter{})
	if err != nil {
		return killed, fmt.Errorf("list catalog: %w", err)
	}
	for _, entry := range entries {
		if known[entry.ID] {
			continue
		}
		if err := s.opts.Catalog.Remove(ctx, entry.ID); err != nil && !errors.Is(err, catalog.ErrNotFound) {
			s.log.Warn("failed to drop stale catalog entry", "instance", entry.ID, "error", err)
		}
	}
	return killed, nil
}

// relaunch interrupts the agent, or allocates a fresh session when the old
// one is gone, then starts the agent again. It returns the pane lines that
// were on screen before the startup command was issued.
func (s *Supervisor) relaunch(ctx context.Context, inst *model.Instance) ([]string, error) {
	exists, err := s.host.HasSession(ctx, inst.SessionName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}

	var baseline []string
	if exists {
		if err := s.host.SendKeys(ctx, inst.SessionName, s.opts.Agent.InterruptKey); err != nil {
			return nil, fmt.Errorf("%w: interrupt agent: %w", ErrSessionUnavailable, err)
		}
		baseline, err = s.host.CaptureRecent(ctx, inst.SessionName, s.opts.CaptureLines)
		if err != nil {
			s.log.Debug("pre-restart capture failed", "instance", inst.ID, "error", err)
			baseline = nil
		}
	} else {
		_, err := s.host.CreateSession(ctx, &multiplexer.CreateSessionOpts{
			Name:    inst.SessionName,
			Cwd:     inst.WorkingDirectory,
			LogPath: s.paths.LogPath(inst.ID, logging.StreamPane),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
		}
	}

	return baseline, s.launch(ctx, inst)
}

// launch waits for the session shell, exports the environment and issues
// the agent startup command.
func (s *Supervisor) launch(ctx context.Context, inst *model.Instance) error {
	if err := sleepCtx(ctx, s.opts.StartupDelay); err != nil {
		return err
	}

	env := s.environment(inst)
	for _, k := range slices.Sorted(maps.Keys(env)) {
		line := fmt.Sprintf("export %s=%s", k, multiplexer.ShellQuote(env[k]))
		if err := s.sendLine(ctx, inst.SessionName, line); err != nil {
			return err
		}
	}

	return s.sendLine(ctx, inst.SessionName, s.startCommand(inst))
}

func (s *Supervisor) environment(inst *model.Instance) map[string]string {
	env := make(map[string]string, len(s.opts.Agent.Env)+3)
	maps.Copy(env, s.opts.Agent.Env)
	env[InstanceIDEnv] = inst.ID
	if s.opts.Agent.LogFileEnv != "" {
		env[s.opts.Agent.LogFileEnv] = inst.LogFilePath
	}
	if s.opts.Agent.LogLevelEnv != "" && inst.Config.LogLevel != "" {
		env[s.opts.Agent.LogLevelEnv] = inst.Config.LogLevel
	}
	return env
}

func (s *Supervisor) startCommand(inst *model.Instance) string {
	parts := []string{multiplexer.ShellQuote(s.opts.Agent.Command)}
	for _, arg := range s.opts.Agent.Args {
		parts = append(parts, multiplexer.ShellQuote(arg))
	}
	if inst.ThreadID != "" && s.opts.Agent.ThreadFlag != "" {
		parts = append(parts, s.opts.Agent.ThreadFlag, multiplexer.ShellQuote(inst.ThreadID))
	}
	return strings.Join(parts, " ")
}

// sendLine types line into the session and presses Enter.
func (s *Supervisor) sendLine(ctx context.Context, session, line string) error {
	if err := s.host.SendText(ctx, session, line); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	if err := s.host.SendKeys(ctx, session, multiplexer.KeyEnter); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return nil
}

// startMonitor attaches a fresh log monitor for the current generation.
// Callers hold e.mu.
func (s *Supervisor) startMonitor(e *entry) *logstate.Monitor {
	m := logstate.NewMonitor(e.inst.LogFilePath, s.monitorSink(e.inst.ID, e.gen), s.opts.Monitor)
	if err := m.Start(e.ctx); err != nil {
		s.log.Warn("failed to start log monitor", "instance", e.inst.ID, "error", err)
		return nil
	}
	e.monitor = m
	return m
}

func (s *Supervisor) monitorSink(id string, gen uint64) logstate.Sink {
	return func(ctx context.Context, ev logstate.Event) {
		select {
		case s.monitorC <- monitorEvent{id: id, gen: gen, ev: ev}:
		case <-ctx.Done():
		}
	}
}

func resolveWorkingDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory %s is not a directory", dir)
	}
	return dir, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// mergeCancel returns a context cancelled when either parent is done.
func mergeCancel(ctx, other context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(other, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
