// Package watchdog periodically sweeps supervised instances for inactivity
// and known error output, restarting them when allowed.
//
// The sweep runs on its own timer so an instance that produces no events
// at all is still caught.
package watchdog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/slogger"
	"github.com/jmgilman/overseer/internal/supervisor"
)

// Defaults for Options.
const (
	DefaultInterval    = 30 * time.Second
	DefaultThrottle    = 60 * time.Second
	DefaultConcurrency = 8
)

// ErrErrorPatternMatched reports that an instance's output matched one of
// its error patterns.
var ErrErrorPatternMatched = errors.New("error pattern matched")

// Supervisor is the subset of the instance supervisor the watchdog drives.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/supervisor.go . Supervisor
type Supervisor interface {
	List() []model.Instance
	Get(id string) (model.Instance, error)
	RecordInactivityCheck(id string, at time.Time) error
	Notify(id, typ string, sev model.Severity, data map[string]any) error
	MarkError(ctx context.Context, id, pattern, line string) error
	Restart(ctx context.Context, id, reason string) error
}

type sweepObserver interface {
	ObserveSweep(elapsed time.Duration)
	ObserveInstances(list []model.Instance)
}

// Options configures a Watchdog.
type Options struct {
	Interval    time.Duration
	Throttle    time.Duration
	Concurrency int
	// Clock returns the current time. Defaults to time.Now.
	Clock   func() time.Time
	Logger  *slog.Logger
	Metrics sweepObserver
}

// Watchdog sweeps instances on a fixed interval.
type Watchdog struct {
	sup  Supervisor
	opts Options
	log  *slog.Logger

	mu       sync.Mutex
	reported map[string]string // instance id -> last reported error match
}

// New creates a Watchdog over sup.
func New(sup Supervisor, opts Options) *Watchdog {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Throttle <= 0 {
		opts.Throttle = DefaultThrottle
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Watchdog{
		sup:      sup,
		opts:     opts,
		log:      slogger.OrDiscard(opts.Logger),
		reported: make(map[string]string),
	}
}

// Run sweeps every Interval until ctx is done.
func (w *Watchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep checks every instance once. Instances are checked concurrently;
// findings are logged.
func (w *Watchdog) Sweep(ctx context.Context) {
	start := time.Now()
	list := w.sup.List()
	w.forget(list)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)
	for _, inst := range list {
		g.Go(func() error {
			if err := w.Check(gctx, inst); err != nil {
				level := slog.LevelWarn
				if errors.Is(err, ErrErrorPatternMatched) && !inst.Config.AutoRestartEnabled() {
					level = slog.LevelInfo
				}
				w.log.Log(gctx, level, "watchdog finding", "instance", inst.ID, "error", err)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never fail

	if w.opts.Metrics != nil {
		w.opts.Metrics.ObserveInstances(list)
		w.opts.Metrics.ObserveSweep(time.Since(start))
	}
}

// Check runs the inactivity check and then the error pattern check for one
// instance. An inactivity restart makes the pattern check read the
// post-restart snapshot. Instances waiting for approval are exempt from the
// inactivity check only.
func (w *Watchdog) Check(ctx context.Context, inst model.Instance) error {
	if inst.Status == model.StatusStopped {
		return nil
	}

	restarted, inactivityErr := w.checkInactivity(ctx, inst)
	if restarted {
		fresh, err := w.sup.Get(inst.ID)
		if err != nil {
			return ignoreGone(inactivityErr)
		}
		inst = fresh
	}

	return errors.Join(ignoreGone(inactivityErr), ignoreGone(w.checkErrorPatterns(ctx, inst)))
}

func (w *Watchdog) checkInactivity(ctx context.Context, inst model.Instance) (bool, error) {
	threshold := time.Duration(inst.Config.InactivityThresholdSeconds) * time.Second
	if threshold <= 0 || inst.Status == model.StatusWaitingApproval {
		return false, nil
	}

	now := w.opts.Clock()
	if !inst.LastInactivityCheck.IsZero() && now.Sub(inst.LastInactivityCheck) < w.opts.Throttle {
		return false, nil
	}

	inactive := now.Sub(inst.LastActivity)
	if inactive <= threshold {
		return false, nil
	}

	if err := w.sup.RecordInactivityCheck(inst.ID, now); err != nil {
		return false, err
	}
	err := w.sup.Notify(inst.ID, model.EventInactivityDetected, model.SeverityWarn, map[string]any{
		"inactiveSeconds":  int(inactive.Seconds()),
		"thresholdSeconds": inst.Config.InactivityThresholdSeconds,
		"status":           string(inst.Status),
	})
	if err != nil {
		return false, err
	}

	if !inst.Config.AutoRestartEnabled() {
		return false, nil
	}
	if err := w.sup.Restart(ctx, inst.ID, supervisor.ReasonInactivity); err != nil {
		if errors.Is(err, supervisor.ErrRestartInProgress) {
			return false, nil
		}
		return false, fmt.Errorf("inactivity restart: %w", err)
	}
	return true, nil
}

func (w *Watchdog) checkErrorPatterns(ctx context.Context, inst model.Instance) error {
	pattern, line, ok := MatchErrorPattern(inst.Output, inst.Config.ErrorPatterns)
	if !ok {
		return nil
	}

	autoRestart := inst.Config.AutoRestartEnabled()
	key := pattern + "\x00" + line
	if !autoRestart && w.alreadyReported(inst.ID, key) {
		return nil
	}

	if err := w.sup.MarkError(ctx, inst.ID, pattern, line); err != nil {
		if errors.Is(err, supervisor.ErrRestartInProgress) {
			return nil
		}
		return err
	}

	matched := fmt.Errorf("%w: %q", ErrErrorPatternMatched, pattern)
	if !autoRestart {
		return matched
	}
	if err := w.sup.Restart(ctx, inst.ID, supervisor.ReasonErrorPattern); err != nil && !errors.Is(err, supervisor.ErrRestartInProgress) {
		return errors.Join(matched, fmt.Errorf("error pattern restart: %w", err))
	}
	return matched
}

// MatchErrorPattern returns the first pattern, in order, that occurs in
// output, together with the most recent line containing it. Matching is a
// case-insensitive substring test; blank patterns never match.
func MatchErrorPattern(output, patterns []string) (pattern, line string, ok bool) {
	if len(output) == 0 {
		return "", "", false
	}
	lowered := make([]string, len(output))
	for i, l := range output {
		lowered[i] = strings.ToLower(l)
	}

	for _, p := range patterns {
		needle := strings.ToLower(strings.TrimSpace(p))
		if needle == "" {
			continue
		}
		for i := len(lowered) - 1; i >= 0; i-- {
			if strings.Contains(lowered[i], needle) {
				return p, output[i], true
			}
		}
	}
	return "", "", false
}

// alreadyReported records key for id and reports whether it was the last
// key seen.
func (w *Watchdog) alreadyReported(id, key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reported[id] == key {
		return true
	}
	w.reported[id] = key
	return false
}

// forget drops report memos for instances no longer listed.
func (w *Watchdog) forget(list []model.Instance) {
	live := make(map[string]bool, len(list))
	for _, inst := range list {
		live[inst.ID] = true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for id := range w.reported {
		if !live[id] {
			delete(w.reported, id)
		}
	}
}

func ignoreGone(err error) error {
	if errors.Is(err, supervisor.ErrInstanceNotFound) {
		return nil
	}
	return err
}
