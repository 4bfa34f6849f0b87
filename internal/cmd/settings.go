package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change supervision settings",
	Long: `View and change the settings the daemon applies to instances.

Settings changed here live in the running daemon only. Use 'overseer config'
to change the defaults a newly started daemon begins with.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show [instance]",
	Short: "Show effective settings",
	Long:  `Show an instance's effective settings, or the global defaults without an instance.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			var (
				cfg         model.InstanceConfig
				autoRestart bool
			)
			if len(args) == 1 {
				inst, err := resolveInstance(ctx, c, args[0])
				if err != nil {
					return err
				}
				cfg, autoRestart = inst.Config, inst.Config.AutoRestartEnabled()
			} else {
				var status statusDefaults
				if err := c.Call(ctx, control.TypeGetStatus, nil, &status); err != nil {
					return fmt.Errorf("get status: %w", err)
				}
				cfg, autoRestart = status.Defaults, status.AutoRestart
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Auto-restart:\t%t\n", autoRestart)
			writeInstanceConfig(w, cfg)
			return w.Flush()
		})
	},
}

// statusDefaults is the part of get_status settings commands read.
type statusDefaults struct {
	AutoRestart bool                 `json:"autoRestart"`
	Defaults    model.InstanceConfig `json:"defaults"`
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [instance]",
	Short: "Override settings",
	Long: `Override settings on one instance, or on the global defaults when --global
is given. Only the flags passed are changed. Global changes apply to every
instance that does not override them.`,
	Example: `  # Require approval on one instance, allowing read-only git
  overseer settings set docs --require-approval --allow "git status" --allow "git diff"

  # Restart after ten idle minutes by default
  overseer settings set --global --inactivity-threshold 10m`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		if global == (len(args) == 1) {
			return errors.New("pass an instance or --global")
		}

		over, err := configOverrides(cmd)
		if err != nil {
			return err
		}
		if over.IsZero() {
			return errors.New("no settings given")
		}

		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			payload := control.UpdateSettingsPayload{Config: over}
			target := "global defaults"
			if !global {
				inst, err := resolveInstance(ctx, c, args[0])
				if err != nil {
					return err
				}
				payload.InstanceID, target = inst.ID, inst.Name
			}

			if err := c.Call(ctx, control.TypeUpdateSettings, payload, nil); err != nil {
				return fmt.Errorf("update settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated settings for %s\n", target)
			return nil
		})
	},
}

var settingsAutoRestartCmd = &cobra.Command{
	Use:   "auto-restart <instance> | --global <on|off>",
	Short: "Toggle automatic restarts",
	Long: `Toggle automatic restarts on one instance, or switch them on or off for
every instance with --global. The global switch clears per-instance choices.`,
	Example: `  # Flip auto-restart on one instance
  overseer settings auto-restart docs

  # Turn auto-restart off everywhere
  overseer settings auto-restart --global off`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		if len(args) != 1 {
			return errors.New("pass an instance, or on|off with --global")
		}

		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if global {
				enabled, err := parseSwitch(args[0])
				if err != nil {
					return err
				}
				var res control.AutoRestartResult
				if err := c.Call(ctx, control.TypeSetGlobalAutoRestart, control.SetGlobalAutoRestartPayload{Enabled: enabled}, &res); err != nil {
					return fmt.Errorf("set global auto-restart: %w", err)
				}
				fmt.Fprintf(out, "Auto-restart %s for all instances\n", onOff(res.AutoRestart))
				return nil
			}

			inst, err := resolveInstance(ctx, c, args[0])
			if err != nil {
				return err
			}
			var res control.AutoRestartResult
			if err := c.Call(ctx, control.TypeToggleAutoRestart, control.InstanceRef{InstanceID: inst.ID}, &res); err != nil {
				return fmt.Errorf("toggle auto-restart: %w", err)
			}
			fmt.Fprintf(out, "Auto-restart %s for %s\n", onOff(res.AutoRestart), inst.Name)
			return nil
		})
	},
}

var settingsToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the agent advertises",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(c *control.Client) error {
			var res control.ToolsResult
			if err := c.Call(cmd.Context(), control.TypeGetTools, nil, &res); err != nil {
				return fmt.Errorf("get tools: %w", err)
			}
			for _, tool := range res.Tools {
				fmt.Fprintln(cmd.OutOrStdout(), tool)
			}
			return nil
		})
	},
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return v, nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsAutoRestartCmd, settingsToolsCmd)

	settingsSetCmd.Flags().Bool("global", false, "change the global defaults")
	addConfigFlags(settingsSetCmd)
	settingsAutoRestartCmd.Flags().Bool("global", false, "switch auto-restart for every instance")
}
