package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/slogger"
	"github.com/jmgilman/overseer/internal/spinner"
)

var errAuthWait = errors.New("instance did not become ready")

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Start a new supervised agent instance",
	Long: `Start a new agent session in tmux and register it with the daemon.

The instance starts out authenticating. With --wait the command blocks until
the agent is ready for prompts, or fails if authentication fails or the
account has no credits left.

Flags left unset fall back to the daemon's global defaults.`,
	Example: `  # Start an instance in the current directory
  overseer create docs

  # Resume an agent thread in another directory and wait for readiness
  overseer create api --dir ~/src/api --thread T-1234 --wait

  # Hold every command not on the allowlist for approval
  overseer create risky --require-approval --allow "git status" --allow "go test"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreateCmd,
}

func runCreateCmd(cmd *cobra.Command, args []string) error {
	payload := control.CreateInstancePayload{}
	if len(args) == 1 {
		payload.Name = args[0]
	}

	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	wd, err := absDir(dir)
	if err != nil {
		return err
	}
	payload.WorkingDirectory = wd
	payload.ThreadID, _ = flags.GetString("thread")

	over, err := configOverrides(cmd)
	if err != nil {
		return err
	}
	payload.Config = over

	wait, _ := flags.GetBool("wait")
	timeout, _ := flags.GetDuration("timeout")

	return withClient(cmd, func(c *control.Client) error {
		ctx := cmd.Context()
		if wait {
			// Subscribe first so no authentication event is missed.
			if err := c.Subscribe(ctx, false); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
		}

		var inst model.Instance
		if err := c.Call(ctx, control.TypeCreateInstance, payload, &inst); err != nil {
			return fmt.Errorf("create instance: %w", err)
		}
		slogger.L(ctx).Info("instance created", "id", inst.ID, "session", inst.SessionName)

		if wait {
			if err := waitReady(ctx, cmd, c, inst, timeout); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created instance %s (%s)\n", inst.Name, inst.ID)
		return nil
	})
}

// waitReady blocks until inst authenticates, fails, or timeout elapses.
func waitReady(ctx context.Context, cmd *cobra.Command, c *control.Client, inst model.Instance, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := func(string) {}
	if out := cmd.ErrOrStderr(); spinner.Enabled(out) {
		sp := spinner.New(out, "Starting "+inst.Name)
		sp.Start()
		defer sp.Stop() //nolint:errcheck // display only
		status = sp.Status
	}
	status("waiting for authentication")

	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				return fmt.Errorf("%w: %w", errAuthWait, control.ErrClientClosed)
			}
			if ev.InstanceID != inst.ID {
				continue
			}
			status(ev.Type)
			switch ev.Type {
			case model.EventAuthSucceeded:
				return nil
			case model.EventAuthFailed, model.EventCreditsExhausted, model.EventInstanceRemoved:
				return fmt.Errorf("%w: %s", errAuthWait, ev.Type)
			case model.EventStatusChanged:
				// Authentication that cannot be determined still ends in idle.
				if ev.Data["to"] == string(model.StatusIdle) {
					return nil
				}
			}
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", errAuthWait, ctx.Err())
		}
	}
}

// absDir resolves dir against the client's working directory, since the
// daemon runs elsewhere.
func absDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return abs, nil
}

// configOverrides builds per-instance overrides from the flags the user set.
func configOverrides(cmd *cobra.Command) (model.InstanceConfig, error) {
	var over model.InstanceConfig
	flags := cmd.Flags()

	if flags.Changed("auto-restart") {
		v, _ := flags.GetBool("auto-restart")
		over.AutoRestart = model.Bool(v)
	}
	if flags.Changed("require-approval") {
		v, _ := flags.GetBool("require-approval")
		over.RequireApproval = model.Bool(v)
	}
	if flags.Changed("inactivity-threshold") {
		d, _ := flags.GetDuration("inactivity-threshold")
		if d < time.Second {
			return over, fmt.Errorf("inactivity threshold must be at least 1s, got %s", d)
		}
		over.InactivityThresholdSeconds = int(d / time.Second)
	}
	if flags.Changed("error-pattern") {
		over.ErrorPatterns, _ = flags.GetStringArray("error-pattern")
	}
	if flags.Changed("allow") {
		over.CommandAllowlist, _ = flags.GetStringArray("allow")
	}
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		switch level {
		case "debug", "info", "warn", "error":
		default:
			return over, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", level)
		}
		over.LogLevel = level
	}
	return over, nil
}

// addConfigFlags registers the per-instance setting flags on c.
func addConfigFlags(c *cobra.Command) {
	c.Flags().Bool("auto-restart", false, "restart automatically on inactivity or error patterns")
	c.Flags().Bool("require-approval", false, "hold commands for approval")
	c.Flags().Duration("inactivity-threshold", 0, "idle time before the instance counts as inactive")
	c.Flags().StringArray("error-pattern", nil, "output substring that signals an error (repeatable)")
	c.Flags().StringArray("allow", nil, "command prefix that bypasses approval (repeatable)")
	c.Flags().String("log-level", "", "agent log level (debug, info, warn, error)")
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringP("dir", "d", "", "working directory (default: current directory)")
	createCmd.Flags().String("thread", "", "agent thread to resume")
	createCmd.Flags().BoolP("wait", "w", false, "wait until the agent is ready")
	createCmd.Flags().Duration("timeout", 2*time.Minute, "how long --wait waits")
	addConfigFlags(createCmd)
}
