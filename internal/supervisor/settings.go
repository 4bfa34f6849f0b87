package supervisor

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/jmgilman/overseer/internal/model"
)

// StatusSummary describes the supervisor as a whole.
type StatusSummary struct {
	Instances   int                  `json:"instances"`
	ByStatus    map[model.Status]int `json:"byStatus"`
	Uptime      time.Duration        `json:"uptime"`
	AutoRestart bool                 `json:"autoRestart"`
	Defaults    model.InstanceConfig `json:"defaults"`
}

// Status summarizes all instances.
func (s *Supervisor) Status() StatusSummary {
	list := s.List()
	summary := StatusSummary{
		Instances: len(list),
		ByStatus:  make(map[model.Status]int),
		Uptime:    s.now().Sub(s.started),
		Defaults:  s.Defaults(),
	}
	for _, inst := range list {
		summary.ByStatus[inst.Status]++
	}
	summary.AutoRestart = summary.Defaults.AutoRestartEnabled()
	return summary
}

// Tools returns the agent tools advertised to clients.
func (s *Supervisor) Tools() []string {
	return slices.Clone(s.opts.Tools)
}

// Defaults returns the global instance configuration.
func (s *Supervisor) Defaults() model.InstanceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults.Clone()
}

// UpdateSettings merges over into the overrides of instance id, or into the
// global defaults when id is empty, and recomputes effective configs.
func (s *Supervisor) UpdateSettings(ctx context.Context, id string, over model.InstanceConfig) error {
	if id == "" {
		s.mu.Lock()
		s.defaults = s.defaults.Merge(over)
		s.mu.Unlock()
		s.recomputeAll(ctx, "global", nil)
		return nil
	}

	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	defaults := s.Defaults()
	err = s.withEntry(id, func(e *entry) error {
		e.overrides = e.overrides.Merge(over)
		s.recompute(e, defaults, "instance")
		return nil
	})
	if err != nil {
		return err
	}
	s.persist(ctx, e)
	return nil
}

// ToggleAutoRestart flips automatic restarts for id and returns the new
// setting.
func (s *Supervisor) ToggleAutoRestart(ctx context.Context, id string) (bool, error) {
	e, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	defaults := s.Defaults()

	var enabled bool
	err = s.withEntry(id, func(e *entry) error {
		enabled = !e.inst.Config.AutoRestartEnabled()
		e.overrides.AutoRestart = model.Bool(enabled)
		s.recompute(e, defaults, "instance")
		return nil
	})
	if err != nil {
		return false, err
	}
	s.persist(ctx, e)
	return enabled, nil
}

// SetGlobalAutoRestart sets automatic restarts for every instance. Per
// instance toggles are cleared so the global value applies everywhere.
func (s *Supervisor) SetGlobalAutoRestart(ctx context.Context, enabled bool) {
	s.mu.Lock()
	s.defaults.AutoRestart = model.Bool(enabled)
	s.mu.Unlock()

	s.recomputeAll(ctx, "global", func(e *entry) {
		e.overrides.AutoRestart = nil
	})
}

func (s *Supervisor) recomputeAll(ctx context.Context, scope string, mutate func(*entry)) {
	defaults := s.Defaults()

	s.mu.RLock()
	entries := slices.Collect(maps.Values(s.instances))
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}
		if mutate != nil {
			mutate(e)
		}
		s.recompute(e, defaults, scope)
		e.mu.Unlock()
		s.persist(ctx, e)
	}
}

// recompute rebuilds the effective config. Callers hold e.mu.
func (s *Supervisor) recompute(e *entry, defaults model.InstanceConfig, scope string) {
	e.inst.Config = defaults.Merge(e.overrides)
	s.emit(e, model.EventSettingsUpdated, model.SeverityInfo, map[string]any{
		"scope":  scope,
		"config": e.inst.Config.Clone(),
	})
}
