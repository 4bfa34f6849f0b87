package supervisor

import (
	"context"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"
)

// CaptureOutput reads the recent pane lines of every instance once and
// merges them into each instance's output buffer. Run calls it on every
// output poll tick.
func (s *Supervisor) CaptureOutput(ctx context.Context) {
	type target struct {
		e       *entry
		gen     uint64
		session string
	}

	s.mu.RLock()
	entries := slices.Collect(maps.Values(s.instances))
	s.mu.RUnlock()

	targets := make([]target, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			targets = append(targets, target{e: e, gen: e.gen, session: e.inst.SessionName})
		}
		e.mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(outputCaptureConcurrency)
	for _, t := range targets {
		g.Go(func() error {
			lines, err := s.host.CaptureRecent(gctx, t.session, s.opts.CaptureLines)
			if err != nil {
				s.log.Debug("output capture failed", "session", t.session, "error", err)
				return nil
			}
			s.mergeOutput(t.e, t.gen, lines)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never fail
}

func (s *Supervisor) mergeOutput(e *entry, gen uint64, window []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed || e.gen != gen {
		return
	}

	prev := e.lastCapture
	e.lastCapture = slices.Clone(window)
	if e.skipCapture {
		e.skipCapture = false
		return
	}

	added := newLines(prev, window)
	if len(added) == 0 {
		return
	}
	e.inst.Output = appendBounded(e.inst.Output, added, s.opts.OutputLines)
	e.inst.LastActivity = s.now()
}

// newLines returns the lines of window that follow its largest overlap
// with the end of prev.
func newLines(prev, window []string) []string {
	maxOverlap := min(len(prev), len(window))
	for k := maxOverlap; k > 0; k-- {
		if slices.Equal(prev[len(prev)-k:], window[:k]) {
			return window[k:]
		}
	}
	return window
}

func appendBounded(buf, lines []string, limit int) []string {
	buf = append(buf, lines...)
	if over := len(buf) - limit; over > 0 {
		buf = slices.Clone(buf[over:])
	}
	return buf
}
