package logstate

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) sink(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func appendLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	//nolint:gosec // G304: path is from test temp directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	for _, l := range lines {
		_, err = f.WriteString(l + "\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
}

func newTestMonitor(t *testing.T) (*Monitor, *recorder, *fakeClock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.log")
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	m := NewMonitor(path, rec.sink, Options{
		PollInterval: time.Hour,
		Clock:        clock.Now,
	})
	return m, rec, clock, path
}

func TestMonitor_BaselineSkipsExistingContent(t *testing.T) {
	m, rec, _, path := newTestMonitor(t)
	appendLog(t, path, `{"msg":"thinking"}`)

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	m.Poll()
	assert.Empty(t, rec.types())
	assert.Equal(t, KindUnknown, m.State().Kind)
}

func TestMonitor_ReadyMarkerEmitsStateChangedAndIdle(t *testing.T) {
	m, rec, clock, path := newTestMonitor(t)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	appendLog(t, path, `{"msg":"thinking"}`)
	m.Poll()
	assert.Equal(t, []EventType{EventStateChanged, EventStarted}, rec.types())
	assert.Equal(t, KindAwaitingAgent, m.State().Kind)

	clock.Advance(2 * time.Second)
	appendLog(t, path, `{"msg":"ready for input"}`)
	m.Poll()

	assert.Equal(t, []EventType{EventStateChanged, EventStarted, EventStateChanged, EventIdle}, rec.types())
	changed := rec.events[2]
	assert.Equal(t, KindAwaitingAgent, changed.Old.Kind)
	assert.Equal(t, KindAwaitingUserMessage, changed.New.Kind)
	require.NotNil(t, changed.Record)
	assert.Equal(t, "ready for input", changed.Record.Message)
}

func TestMonitor_RecencyWindowProducesIdleEdge(t *testing.T) {
	m, rec, clock, path := newTestMonitor(t)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	// An unclassified record still counts as activity.
	appendLog(t, path, `{"msg":"tool output chunk"}`)
	m.Poll()
	assert.Equal(t, []EventType{EventStarted}, rec.types())

	clock.Advance(5 * time.Second)
	m.Poll()
	assert.Equal(t, []EventType{EventStarted}, rec.types())

	clock.Advance(6 * time.Second)
	m.Poll()
	assert.Equal(t, []EventType{EventStarted, EventIdle}, rec.types())
	assert.Nil(t, rec.last().Record)
}

func TestMonitor_SkipsMalformedLines(t *testing.T) {
	m, rec, _, path := newTestMonitor(t)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	appendLog(t, path, "garbage", "{broken", `{"msg":"state=AwaitingAgent"}`)
	m.Poll()

	assert.Equal(t, 2, m.Skipped())
	assert.Equal(t, KindAwaitingAgent, m.State().Kind)
	assert.Contains(t, rec.types(), EventStateChanged)
}

func TestMonitor_MissingFileIsNotAnError(t *testing.T) {
	m, rec, _, path := newTestMonitor(t)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	m.Poll()
	assert.Empty(t, rec.types())

	appendLog(t, path, `{"msg":"ready for input"}`)
	m.Poll()
	assert.Equal(t, KindAwaitingUserMessage, m.State().Kind)
}

func TestMonitor_Refresh(t *testing.T) {
	m, rec, clock, path := newTestMonitor(t)
	old := clock.Now().Add(-time.Hour).Format(time.RFC3339)
	appendLog(t, path,
		`{"ts":"`+old+`","msg":"state transition: Initial -> AwaitingAgent"}`,
		`{"ts":"`+old+`","msg":"ready for input"}`,
	)

	require.NoError(t, m.Refresh())

	assert.Equal(t, KindAwaitingUserMessage, m.State().Kind)
	assert.Equal(t, []EventType{EventStateChanged}, rec.types(), "old records do not look running")
}

func TestMonitor_RefreshMissingFile(t *testing.T) {
	m, rec, _, _ := newTestMonitor(t)
	require.NoError(t, m.Refresh())
	assert.Empty(t, rec.types())
	assert.Equal(t, KindUnknown, m.State().Kind)
}

func TestMonitor_StopIsSynchronous(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	rec := &recorder{}
	m := NewMonitor(path, rec.sink, Options{PollInterval: 5 * time.Millisecond})

	require.NoError(t, m.Start(context.Background()))
	appendLog(t, path, `{"msg":"thinking"}`)
	require.Eventually(t, func() bool { return len(rec.types()) >= 2 }, 2*time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop()
	n := len(rec.types())

	appendLog(t, path, `{"msg":"ready for input"}`)
	m.Poll()
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, rec.types(), n, "no events after Stop")
}
