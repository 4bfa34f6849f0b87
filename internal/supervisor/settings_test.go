package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/overseer/internal/model"
)

func TestSupervisor_UpdateSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("global defaults reach every instance", func(t *testing.T) {
		s, _, mem := newTestSupervisor(t, func(o *Options) { o.AuthSettleDelay = time.Hour })
		a, err := s.Create(ctx, CreateRequest{WorkingDirectory: t.TempDir()})
		require.NoError(t, err)
		b, err := s.Create(ctx, CreateRequest{
			WorkingDirectory: t.TempDir(),
			Config:           model.InstanceConfig{InactivityThresholdSeconds: 30},
		})
		require.NoError(t, err)

		require.NoError(t, s.UpdateSettings(ctx, "", model.InstanceConfig{
			InactivityThresholdSeconds: 600,
			ErrorPatterns:              []string{"panic:"},
		}))

		gotA, _ := s.Get(a.ID)
		gotB, _ := s.Get(b.ID)
		assert.Equal(t, 600, gotA.Config.InactivityThresholdSeconds)
		assert.Equal(t, 30, gotB.Config.InactivityThresholdSeconds, "instance override wins")
		assert.Equal(t, []string{"panic:"}, gotB.Config.ErrorPatterns)
		assert.Equal(t, 600, s.Defaults().InactivityThresholdSeconds)
		assert.Contains(t, mem.Types(a.ID), model.EventSettingsUpdated)
		assert.Contains(t, mem.Types(b.ID), model.EventSettingsUpdated)
	})

	t.Run("instance overrides", func(t *testing.T) {
		s, _, _ := newTestSupervisor(t, func(o *Options) { o.AuthSettleDelay = time.Hour })
		a, err := s.Create(ctx, CreateRequest{WorkingDirectory: t.TempDir()})
		require.NoError(t, err)
		b, err := s.Create(ctx, CreateRequest{WorkingDirectory: t.TempDir()})
		require.NoError(t, err)

		require.NoError(t, s.UpdateSettings(ctx, a.ID, model.InstanceConfig{RequireApproval: model.Bool(true)}))

		gotA, _ := s.Get(a.ID)
		gotB, _ := s.Get(b.ID)
		assert.True(t, gotA.Config.ApprovalRequired())
		assert.False(t, gotB.Config.ApprovalRequired())
	})

	t.Run("unknown instance", func(t *testing.T) {
		s, _, _ := newTestSupervisor(t, nil)
		assert.ErrorIs(t, s.UpdateSettings(ctx, "missing", model.InstanceConfig{}), ErrInstanceNotFound)
	})
}

func TestSupervisor_AutoRestartToggles(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSupervisor(t, func(o *Options) { o.AuthSettleDelay = time.Hour })
	a, err := s.Create(ctx, CreateRequest{WorkingDirectory: t.TempDir()})
	require.NoError(t, err)
	b, err := s.Create(ctx, CreateRequest{WorkingDirectory: t.TempDir()})
	require.NoError(t, err)

	enabled, err := s.ToggleAutoRestart(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, enabled)
	gotA, _ := s.Get(a.ID)
	assert.False(t, gotA.Config.AutoRestartEnabled())

	enabled, err = s.ToggleAutoRestart(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, enabled)

	_, err = s.ToggleAutoRestart(ctx, a.ID)
	require.NoError(t, err)
	s.SetGlobalAutoRestart(ctx, true)

	gotA, _ = s.Get(a.ID)
	gotB, _ := s.Get(b.ID)
	assert.True(t, gotA.Config.AutoRestartEnabled(), "global setting clears instance toggles")
	assert.True(t, gotB.Config.AutoRestartEnabled())

	s.SetGlobalAutoRestart(ctx, false)
	gotB, _ = s.Get(b.ID)
	assert.False(t, gotB.Config.AutoRestartEnabled())
	assert.False(t, s.Status().AutoRestart)
}

func TestSupervisor_StatusAndTools(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSupervisor(t, func(o *Options) { o.AuthSettleDelay = time.Hour })
	_, err := s.Create(ctx, CreateRequest{WorkingDirectory: t.TempDir()})
	require.NoError(t, err)

	st := s.Status()
	assert.Equal(t, 1, st.Instances)
	assert.Equal(t, 1, st.ByStatus[model.StatusAuthenticating])
	assert.True(t, st.AutoRestart)
	assert.GreaterOrEqual(t, st.Uptime, time.Duration(0))

	tools := s.Tools()
	assert.Equal(t, []string{"shell", "edit"}, tools)
	tools[0] = "changed"
	assert.Equal(t, "shell", s.Tools()[0])
}

func TestSupervisor_Threads(t *testing.T) {
	ctx := context.Background()
	s, host, mem := newTestSupervisor(t, nil)
	inst := createIdle(t, s, model.InstanceConfig{})

	thread, err := s.CreateThread(ctx, inst.ID, "")
	require.NoError(t, err)
	assert.NotEmpty(t, thread.ID)
	assert.NotEmpty(t, thread.Name)

	got, err := s.Get(inst.ID)
	require.NoError(t, err)
	assert.Equal(t, thread.ID, got.ThreadID)
	assert.Equal(t, 1, got.Stats.RestartCount)
	texts := host.texts(inst.SessionName)
	assert.Equal(t, "agent --log-format json --thread "+thread.ID, texts[len(texts)-1])

	require.NoError(t, s.SwitchThread(ctx, inst.ID, "existing-thread"))
	threads, err := s.ListThreads(inst.ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, thread.ID, threads[0].ID)
	assert.Equal(t, "existing-thread", threads[1].ID)
	assert.NotEqual(t, threads[0].Name, threads[1].Name)

	types := mem.Types(inst.ID)
	assert.Contains(t, types, model.EventThreadCreated)
	assert.Contains(t, types, model.EventThreadSwitched)

	assert.ErrorIs(t, s.SwitchThread(ctx, inst.ID, " "), ErrThreadIDRequired)
	_, err = s.ListThreads("missing")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestSupervisor_SwitchThreadDuringRestart(t *testing.T) {
	ctx := context.Background()
	s, host, mem := newTestSupervisor(t, nil)
	inst := createIdle(t, s, model.InstanceConfig{})

	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	host.set(func(h *fakeHost) { h.gate, h.entered = gate, entered })

	errc := make(chan error, 1)
	go func() { errc <- s.Restart(ctx, inst.ID, ReasonManual) }()
	<-entered

	assert.ErrorIs(t, s.SwitchThread(ctx, inst.ID, "late-thread"), ErrRestartInProgress)

	host.set(func(h *fakeHost) { h.gate = nil })
	close(gate)
	require.NoError(t, <-errc)

	got, err := s.Get(inst.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ThreadID)
	assert.NotContains(t, mem.Types(inst.ID), model.EventThreadSwitched)
	threads, err := s.ListThreads(inst.ID)
	require.NoError(t, err)
	assert.Empty(t, threads)
	texts := host.texts(inst.SessionName)
	assert.NotContains(t, texts[len(texts)-1], "--thread")
}
