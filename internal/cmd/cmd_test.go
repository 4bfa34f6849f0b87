package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/overseer/internal/catalog"
	"github.com/jmgilman/overseer/internal/config"
	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/control/mocks"
	"github.com/jmgilman/overseer/internal/events"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/prompt"
	promptmocks "github.com/jmgilman/overseer/internal/prompt/mocks"
	"github.com/jmgilman/overseer/internal/supervisor"
)

// unreachable is an address nothing listens on.
const unreachable = "127.0.0.1:1"

// startDaemon serves the control protocol over backend.
func startDaemon(t *testing.T, backend *mocks.BackendMock) string {
	t.Helper()
	broker := events.NewBroker(events.Options{})
	srv := control.NewServer(control.NewDispatcher(backend, broker, control.DispatcherOptions{}), control.ServerOptions{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// isolate points HOME at a temporary directory so configuration and data
// files are created there.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetCommand(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

// resetCommand restores flag defaults and drops contexts left by a
// previous execution.
func resetCommand(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil) //nolint:errcheck // always succeeds for nil
		} else {
			f.Value.Set(f.DefValue) //nolint:errcheck // defaults are valid
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	c.SetContext(nil) //nolint:staticcheck // nil lets Execute pass its context down again
	for _, sub := range c.Commands() {
		resetCommand(sub)
	}
}

func sampleInstances() []model.Instance {
	now := time.Now()
	return []model.Instance{
		{
			ID:           "0a1b2c3d-1111-2222-3333-444455556666",
			Name:         "docs",
			Status:       model.StatusIdle,
			AuthStatus:   model.AuthAuthenticated,
			LastActivity: now,
			SessionName:  "overseer-0a1b2c3d",
			Stats:        model.Stats{PromptsExecuted: 3, RestartCount: 1},
		},
		{
			ID:             "9f8e7d6c-1111-2222-3333-444455556666",
			Name:           "api",
			Status:         model.StatusWaitingApproval,
			AuthStatus:     model.AuthAuthenticated,
			LastActivity:   now,
			ThreadID:       "T-42",
			PendingCommand: &model.PendingCommand{Command: "rm -rf build", Timestamp: now},
		},
	}
}

func listBackend() *mocks.BackendMock {
	return &mocks.BackendMock{
		ListFunc: sampleInstances,
	}
}

func TestMatchInstance(t *testing.T) {
	list := []model.Instance{
		{ID: "abc123", Name: "docs"},
		{ID: "abd456", Name: "abc123x"},
		{ID: "ffff00", Name: "ab"},
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{name: "exact id", ref: "abc123", wantID: "abc123"},
		{name: "name", ref: "docs", wantID: "abc123"},
		{name: "name before prefix", ref: "ab", wantID: "ffff00"},
		{name: "unique prefix", ref: "abd", wantID: "abd456"},
		{name: "ambiguous prefix", ref: "a", wantErr: errAmbiguousInstance},
		{name: "no match", ref: "zzz", wantErr: errNoInstance},
		{name: "blank", ref: "  ", wantErr: errNoInstance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchInstance(list, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, "", formatList(nil))
	assert.Equal(t, "tmux", formatList([]string{"tmux"}))
	assert.Equal(t, "a and b", formatList([]string{"a", "b"}))
	assert.Equal(t, "a, b, and c", formatList([]string{"a", "b", "c"}))
}

func TestPromptText(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "task.md")
	require.NoError(t, os.WriteFile(file, []byte("line one\nline two\n"), 0o600))

	got, err := promptText(nil, []string{"fix", "the", "tests"}, "")
	require.NoError(t, err)
	assert.Equal(t, "fix the tests", got)

	got, err = promptText(nil, nil, file)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)

	got, err = promptText(strings.NewReader("from stdin\n"), nil, "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	_, err = promptText(nil, []string{"x"}, file)
	assert.Error(t, err)

	_, err = promptText(nil, []string{"  "}, "")
	assert.Error(t, err)
}

func TestConfigOverrides(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		c := &cobra.Command{Use: "test"}
		addConfigFlags(c)
		require.NoError(t, c.ParseFlags(args))
		return c
	}

	over, err := configOverrides(newCmd())
	require.NoError(t, err)
	assert.True(t, over.IsZero())

	over, err = configOverrides(newCmd(
		"--auto-restart=false",
		"--require-approval",
		"--inactivity-threshold", "10m",
		"--error-pattern", "panic:",
		"--error-pattern", "fatal",
		"--allow", "git status",
		"--log-level", "debug",
	))
	require.NoError(t, err)
	require.NotNil(t, over.AutoRestart)
	assert.False(t, *over.AutoRestart)
	assert.True(t, over.ApprovalRequired())
	assert.Equal(t, 600, over.InactivityThresholdSeconds)
	assert.Equal(t, []string{"panic:", "fatal"}, over.ErrorPatterns)
	assert.Equal(t, []string{"git status"}, over.CommandAllowlist)
	assert.Equal(t, "debug", over.LogLevel)

	_, err = configOverrides(newCmd("--inactivity-threshold", "500ms"))
	assert.Error(t, err)

	_, err = configOverrides(newCmd("--log-level", "loud"))
	assert.Error(t, err)
}

func TestWriteEvent(t *testing.T) {
	ev := model.NewEvent("0a1b2c3d-ffff", model.EventApprovalRequired, model.SeverityWarn,
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), map[string]any{"command": "rm -rf build"})

	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, formatTable, ev))
	line := buf.String()
	assert.Contains(t, line, "warn")
	assert.Contains(t, line, "0a1b2c3d approval_required")
	assert.Contains(t, line, `{"command":"rm -rf build"}`)

	buf.Reset()
	require.NoError(t, writeEvent(&buf, formatJSON, ev))
	var decoded model.AgentEvent
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, ev.Type, decoded.Type)
	assert.Equal(t, ev.InstanceID, decoded.InstanceID)
}

func TestEventFilter(t *testing.T) {
	ev := model.AgentEvent{InstanceID: "i-1", Type: model.EventStatusChanged}

	assert.True(t, eventFilter{}.match(ev))
	assert.True(t, eventFilter{instance: "i-1"}.match(ev))
	assert.False(t, eventFilter{instance: "i-2"}.match(ev))
	assert.True(t, eventFilter{types: map[string]bool{model.EventStatusChanged: true}}.match(ev))
	assert.False(t, eventFilter{types: map[string]bool{model.EventErrorDetected: true}}.match(ev))
}

func TestParseSwitch(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "off": false, "true": true, "0": false} {
		got, err := parseSwitch(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseSwitch("maybe")
	assert.Error(t, err)
}

func TestSupervisorOptions(t *testing.T) {
	cfg := &config.Config{
		Agent: config.AgentConfig{
			Command: "amp",
			Env:     map[string]string{"amp_api_key": "secret"},
		},
		Storage: config.StorageConfig{Logs: "/var/log/overseer"},
		Defaults: config.DefaultsConfig{
			AutoRestart:                true,
			InactivityThresholdSeconds: 120,
		},
		Supervisor: config.SupervisorConfig{
			CreditPhrases: []string{},
			ReadyPhrases:  []string{"ready>"},
		},
	}

	opts := supervisorOptions(cfg, nil, events.NewMemory(), nil)
	assert.Equal(t, "amp", opts.Agent.Command)
	assert.Equal(t, map[string]string{"AMP_API_KEY": "secret"}, opts.Agent.Env)
	assert.Equal(t, "/var/log/overseer", opts.LogsDir)
	assert.Equal(t, 120, opts.Defaults.InactivityThresholdSeconds)
	assert.True(t, opts.Defaults.AutoRestartEnabled())
	assert.Nil(t, opts.CreditPhrases)
	assert.Nil(t, opts.AuthFailurePhrases)
	assert.Equal(t, []string{"ready>"}, opts.ReadyPhrases)
}

func TestAcquireDaemonLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "overseer.lock")

	first, err := acquireDaemonLock(path)
	require.NoError(t, err)
	t.Cleanup(func() { first.Unlock() }) //nolint:errcheck // best-effort cleanup

	_, err = acquireDaemonLock(path)
	assert.ErrorIs(t, err, errDaemonRunning)
}

func TestCLI_Ps(t *testing.T) {
	isolate(t)
	addr := startDaemon(t, listBackend())

	out, err := execute(t, context.Background(), "ps", "--server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "0a1b2c3d")
	assert.Contains(t, out, "docs")
	assert.Contains(t, out, "waiting_approval")
	assert.Contains(t, out, "T-42")

	out, err = execute(t, context.Background(), "ps", "--server", addr, "--status", "idle", "-o", "json")
	require.NoError(t, err)
	var list []model.Instance
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "docs", list[0].Name)

	out, err = execute(t, context.Background(), "ps", "--server", addr, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: api")
	assert.Contains(t, out, "status: waiting_approval")

	_, err = execute(t, context.Background(), "ps", "--server", addr, "-o", "xml")
	assert.Error(t, err)
}

func TestCLI_PsOffline(t *testing.T) {
	home := isolate(t)
	store := catalog.NewStore(filepath.Join(home, ".local/share/overseer/catalog.json"))
	require.NoError(t, store.Add(context.Background(), catalog.Entry{
		ID:          "77aa88bb-0000",
		Name:        "stale",
		SessionName: "overseer-77aa88bb",
		Status:      model.StatusRunning,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}))

	out, err := execute(t, context.Background(), "ps", "--server", unreachable, "-o", "json")
	require.NoError(t, err)
	var list []model.Instance
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "stale", list[0].Name)
	assert.Equal(t, model.StatusRunning, list[0].Status)
}

func TestCLI_Send(t *testing.T) {
	isolate(t)
	backend := listBackend()
	backend.SubmitFunc = func(_ context.Context, id, text string) (model.Status, error) {
		return model.StatusRunning, nil
	}
	addr := startDaemon(t, backend)

	out, err := execute(t, context.Background(), "send", "--server", addr, "docs", "summarize", "the", "README")
	require.NoError(t, err)
	assert.Contains(t, out, "Prompt submitted to docs (running)")

	require.Len(t, backend.SubmitCalls(), 1)
	assert.Equal(t, "0a1b2c3d-1111-2222-3333-444455556666", backend.SubmitCalls()[0].Id)
	assert.Equal(t, "summarize the README", backend.SubmitCalls()[0].Text)
}

func TestCLI_SendHeldForApproval(t *testing.T) {
	isolate(t)
	backend := listBackend()
	backend.SubmitFunc = func(context.Context, string, string) (model.Status, error) {
		return model.StatusWaitingApproval, nil
	}
	addr := startDaemon(t, backend)

	out, err := execute(t, context.Background(), "send", "--server", addr, "0a1b", "deploy")
	require.NoError(t, err)
	assert.Contains(t, out, "Prompt held for approval on docs")
}

func TestCLI_SendBusy(t *testing.T) {
	isolate(t)
	backend := listBackend()
	backend.SubmitFunc = func(_ context.Context, id, _ string) (model.Status, error) {
		return "", &supervisor.BusyError{InstanceID: id, Status: model.StatusRunning}
	}
	addr := startDaemon(t, backend)

	_, err := execute(t, context.Background(), "send", "--server", addr, "docs", "again")
	var remote *control.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, remote.Message, "is running")
}

func TestCLI_ApproveReviewsPending(t *testing.T) {
	isolate(t)
	backend := listBackend()
	backend.ApproveFunc = func(context.Context, string) (model.Status, error) {
		return model.StatusRunning, nil
	}
	addr := startDaemon(t, backend)

	prompter := &promptmocks.PrompterMock{
		ReviewFunc: func(instance, command string) (prompt.Verdict, error) {
			return prompt.VerdictApprove, nil
		},
		PrintFunc: func(string) {},
	}
	ctx := WithPrompter(context.Background(), prompter)

	out, err := execute(t, ctx, "approve", "--server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "Approved command on api (running)")

	require.Len(t, prompter.ReviewCalls(), 1)
	assert.Equal(t, "api", prompter.ReviewCalls()[0].Instance)
	assert.Equal(t, "rm -rf build", prompter.ReviewCalls()[0].Command)
	require.Len(t, backend.ApproveCalls(), 1)
	assert.Equal(t, "9f8e7d6c-1111-2222-3333-444455556666", backend.ApproveCalls()[0].Id)
}

func TestCLI_Reject(t *testing.T) {
	isolate(t)
	backend := listBackend()
	backend.RejectFunc = func(context.Context, string) error { return nil }
	addr := startDaemon(t, backend)

	out, err := execute(t, context.Background(), "reject", "--server", addr, "api")
	require.NoError(t, err)
	assert.Contains(t, out, "Rejected command on api")
	require.Len(t, backend.RejectCalls(), 1)
}

func TestCLI_Rm(t *testing.T) {
	isolate(t)
	backend := listBackend()
	backend.RemoveFunc = func(context.Context, string) error { return nil }
	addr := startDaemon(t, backend)

	declined := &promptmocks.PrompterMock{
		ConfirmFunc: func(string, string) (bool, error) { return false, nil },
	}
	out, err := execute(t, WithPrompter(context.Background(), declined), "rm", "--server", addr, "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Canceled")
	assert.Empty(t, backend.RemoveCalls())

	out, err = execute(t, context.Background(), "rm", "--server", addr, "--force", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed instance docs")
	require.Len(t, backend.RemoveCalls(), 1)
}

func TestCLI_SettingsGlobal(t *testing.T) {
	isolate(t)
	backend := listBackend()
	backend.UpdateSettingsFunc = func(context.Context, string, model.InstanceConfig) error { return nil }
	backend.StatusFunc = func() supervisor.StatusSummary { return supervisor.StatusSummary{} }
	backend.SetGlobalAutoRestartFunc = func(context.Context, bool) {}
	addr := startDaemon(t, backend)

	out, err := execute(t, context.Background(), "settings", "set", "--server", addr, "--global", "--inactivity-threshold", "10m")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated settings for global defaults")
	require.Len(t, backend.UpdateSettingsCalls(), 1)
	assert.Empty(t, backend.UpdateSettingsCalls()[0].Id)
	assert.Equal(t, 600, backend.UpdateSettingsCalls()[0].Over.InactivityThresholdSeconds)

	_, err = execute(t, context.Background(), "settings", "set", "--server", addr, "--global")
	assert.Error(t, err)

	out, err = execute(t, context.Background(), "settings", "auto-restart", "--server", addr, "--global", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "Auto-restart off for all instances")
	require.Len(t, backend.SetGlobalAutoRestartCalls(), 1)
	assert.False(t, backend.SetGlobalAutoRestartCalls()[0].Enabled)
}

func TestCLI_Status(t *testing.T) {
	isolate(t)
	backend := listBackend()
	backend.StatusFunc = func() supervisor.StatusSummary {
		return supervisor.StatusSummary{
			Instances:   2,
			ByStatus:    map[model.Status]int{model.StatusIdle: 1, model.StatusWaitingApproval: 1},
			Uptime:      90 * time.Second,
			AutoRestart: true,
			Defaults:    model.InstanceConfig{InactivityThresholdSeconds: 300},
		}
	}
	addr := startDaemon(t, backend)

	out, err := execute(t, context.Background(), "status", "--server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "waiting_approval:")
	assert.Contains(t, out, "5m0s")
}

func TestCLI_DaemonUnavailable(t *testing.T) {
	isolate(t)

	_, err := execute(t, context.Background(), "status", "--server", unreachable)
	assert.ErrorIs(t, err, errDaemonUnavailable)
}

func TestCLI_Logs(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".local/share/overseer/logs", "i-1")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pane.log"), []byte("one\ntwo\nthree\n"), 0o600))

	out, err := execute(t, context.Background(), "logs", "--server", unreachable, "i-1", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "two\nthree\n", out)

	_, err = execute(t, context.Background(), "logs", "--server", unreachable, "i-1", "--stream", "agent")
	assert.Error(t, err)

	_, err = execute(t, context.Background(), "logs", "--server", unreachable, "i-1", "--stream", "bogus")
	assert.Error(t, err)
}

func TestCLI_Config(t *testing.T) {
	isolate(t)

	out, err := execute(t, context.Background(), "config", "agent.command")
	require.NoError(t, err)
	assert.Equal(t, "amp\n", out)

	_, err = execute(t, context.Background(), "config", "server.listen", "127.0.0.1:9000")
	require.NoError(t, err)

	out, err = execute(t, context.Background(), "config", "server.listen")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000\n", out)

	_, err = execute(t, context.Background(), "config", "no.such.key")
	assert.Error(t, err)
}

func TestCLI_Version(t *testing.T) {
	isolate(t)

	out, err := execute(t, context.Background(), "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "goVersion")
}
