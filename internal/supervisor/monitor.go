package supervisor

import (
	"slices"

	"github.com/jmgilman/overseer/internal/logstate"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/names"
)

// handleMonitorEvent folds one log monitor event into the instance.
// Events from a previous generation or a removed instance are dropped.
func (s *Supervisor) handleMonitorEvent(me monitorEvent) {
	e, err := s.lookup(me.id)
	if err != nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed || e.gen != me.gen {
		return
	}

	ev := me.ev
	switch ev.Type {
	case logstate.EventStateChanged:
		s.applyLogState(e, ev)
		if ev.New.Kind != logstate.KindAwaitingUserMessage {
			return
		}
		switch e.inst.Status {
		case model.StatusAuthenticating:
			s.confirmAuth(e, "log_state")
		case model.StatusRunning:
			s.completePrompt(e)
		}
	case logstate.EventStarted:
		if e.inst.Status == model.StatusIdle {
			s.setStatus(e, model.StatusRunning, "log_activity")
		}
	case logstate.EventIdle:
		if e.inst.Status == model.StatusRunning {
			s.completePrompt(e)
		}
	}
}

// applyLogState records a state-changed event. Callers hold e.mu.
func (s *Supervisor) applyLogState(e *entry, ev logstate.Event) {
	e.inst.LogState = summarize(ev.New)
	if ev.Time.After(e.inst.LastActivity) {
		e.inst.LastActivity = ev.Time
	}

	if rec := ev.Record; rec != nil {
		if n, ok := rec.TokensUsed(); ok && n > e.inst.Stats.TokensUsed {
			e.inst.Stats.TokensUsed = n
		}
		if tid := rec.ThreadID(); tid != "" && tid != e.inst.ThreadID {
			e.inst.ThreadID = tid
			s.rememberThread(e, tid, "")
		}
	}

	s.emit(e, model.EventLogStateChanged, model.SeverityInfo, map[string]any{
		"from":           string(ev.Old.Kind),
		"kind":           string(ev.New.Kind),
		"statusMessage":  ev.New.StatusMessage,
		"inferenceState": string(ev.New.InferenceState),
	})
}

// completePrompt returns a running instance to idle. Callers hold e.mu.
func (s *Supervisor) completePrompt(e *entry) {
	prompt := e.inst.CurrentPrompt
	e.inst.CurrentPrompt = ""
	s.setStatus(e, model.StatusIdle, "prompt_completed")
	s.emit(e, model.EventPromptCompleted, model.SeverityInfo, map[string]any{"prompt": prompt})
}

// rememberThread adds id to the known threads if missing. Callers hold e.mu.
func (s *Supervisor) rememberThread(e *entry, id, name string) model.Thread {
	if i := slices.IndexFunc(e.threads, func(t model.Thread) bool { return t.ID == id }); i >= 0 {
		return e.threads[i]
	}
	if name == "" {
		name = s.threadName(e)
	}
	t := model.Thread{ID: id, Name: name, CreatedAt: s.now()}
	e.threads = append(e.threads, t)
	return t
}

// threadName picks a label not already used by e. Callers hold e.mu.
func (s *Supervisor) threadName(e *entry) string {
	name, err := names.UniqueLabel(func(n string) bool {
		return slices.ContainsFunc(e.threads, func(t model.Thread) bool { return t.Name == n })
	}, 0)
	if err != nil {
		return names.Label()
	}
	return name
}

func summarize(st logstate.State) model.LogSummary {
	return model.LogSummary{
		Kind:           string(st.Kind),
		StatusMessage:  st.StatusMessage,
		InferenceState: string(st.InferenceState),
	}
}
