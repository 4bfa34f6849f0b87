package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/supervisor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long: `Show the daemon's uptime, the number of instances in each status and the
global defaults applied to new instances.`,
	Args: cobra.NoArgs,
	RunE: runStatusCmd,
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	return withClient(cmd, func(c *control.Client) error {
		var summary supervisor.StatusSummary
		if err := c.Call(cmd.Context(), control.TypeGetStatus, nil, &summary); err != nil {
			return fmt.Errorf("get status: %w", err)
		}

		out := cmd.OutOrStdout()
		if format != formatTable {
			return writeStructured(out, format, summary)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Uptime:\t%s\n", summary.Uptime.Round(time.Second))
		fmt.Fprintf(w, "Instances:\t%d\n", summary.Instances)
		statuses := make([]model.Status, 0, len(summary.ByStatus))
		for s := range summary.ByStatus {
			statuses = append(statuses, s)
		}
		slices.Sort(statuses)
		for _, s := range statuses {
			fmt.Fprintf(w, "  %s:\t%d\n", s, summary.ByStatus[s])
		}
		fmt.Fprintf(w, "Auto-restart:\t%t\n", summary.AutoRestart)
		writeInstanceConfig(w, summary.Defaults)
		return w.Flush()
	})
}

// writeInstanceConfig prints the per-instance settings as tab-separated rows.
func writeInstanceConfig(w *tabwriter.Writer, cfg model.InstanceConfig) {
	fmt.Fprintf(w, "Inactivity threshold:\t%s\n", time.Duration(cfg.InactivityThresholdSeconds)*time.Second)
	fmt.Fprintf(w, "Require approval:\t%t\n", cfg.ApprovalRequired())
	fmt.Fprintf(w, "Error patterns:\t%s\n", listOrNone(cfg.ErrorPatterns))
	fmt.Fprintf(w, "Command allowlist:\t%s\n", listOrNone(cfg.CommandAllowlist))
	if cfg.LogLevel != "" {
		fmt.Fprintf(w, "Log level:\t%s\n", cfg.LogLevel)
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return formatList(quoted)
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringP("output", "o", formatTable, "output format (table, json, yaml)")
}
