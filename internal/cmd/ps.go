package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/overseer/internal/catalog"
	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/slogger"
)

// statusStyles colors the status column on terminals.
var statusStyles = map[model.Status]lipgloss.Style{
	model.StatusIdle:            lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	model.StatusRunning:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	model.StatusWaitingApproval: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	model.StatusAuthenticating:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	model.StatusError:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	model.StatusStopped:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List supervised instances",
	Long: `List the instances supervised by the daemon.

When the daemon is not reachable, the last state recorded in the catalog is
shown instead and marked as offline.`,
	Example: `  # List all instances
  overseer ps

  # Only instances waiting for approval
  overseer ps --status waiting_approval

  # Full detail as YAML
  overseer ps -o yaml`,
	Args: cobra.NoArgs,
	RunE: runPsCmd,
}

func runPsCmd(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	status, err := cmd.Flags().GetString("status")
	if err != nil {
		return fmt.Errorf("get status flag: %w", err)
	}

	instances, offline, err := listInstances(cmd, model.Status(status))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format != formatTable {
		return writeStructured(out, format, instances)
	}

	if len(instances) == 0 {
		slogger.L(cmd.Context()).Info("no instances found")
		return nil
	}
	if offline {
		fmt.Fprintln(cmd.ErrOrStderr(), "daemon not reachable, showing last recorded state")
	}
	return writeInstanceTable(out, instances, colorEnabled(out))
}

// listInstances asks the daemon, falling back to the catalog when it is
// unreachable.
func listInstances(cmd *cobra.Command, status model.Status) ([]model.Instance, bool, error) {
	c, err := connect(cmd)
	if err != nil {
		if !errors.Is(err, errDaemonUnavailable) {
			return nil, false, err
		}
		slogger.L(cmd.Context()).Debug("falling back to catalog", "error", err)
		list, catErr := catalogInstances(cmd, status)
		if catErr != nil {
			return nil, false, errors.Join(err, catErr)
		}
		return list, true, nil
	}
	defer c.Close() //nolint:errcheck // best-effort cleanup

	var list []model.Instance
	if err := c.Call(cmd.Context(), control.TypeListInstances, control.ListInstancesPayload{Status: status}, &list); err != nil {
		return nil, false, fmt.Errorf("list instances: %w", err)
	}
	return list, false, nil
}

func catalogInstances(cmd *cobra.Command, status model.Status) ([]model.Instance, error) {
	cfg, err := requireConfig(cmd.Context())
	if err != nil {
		return nil, err
	}

	entries, err := catalog.NewStore(cfg.Storage.Catalog).List(cmd.Context(), catalog.ListFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	list := make([]model.Instance, len(entries))
	for i := range entries {
		e := &entries[i]
		list[i] = model.Instance{
			ID:               e.ID,
			Name:             e.Name,
			Status:           e.Status,
			AuthStatus:       e.AuthStatus,
			CreatedAt:        e.CreatedAt,
			LastActivity:     e.UpdatedAt,
			WorkingDirectory: e.WorkingDirectory,
			LogFilePath:      e.LogFilePath,
			SessionName:      e.SessionName,
			ThreadID:         e.ThreadID,
			Stats: model.Stats{
				PromptsExecuted: e.PromptsExecuted,
				TokensUsed:      e.TokensUsed,
				RestartCount:    e.RestartCount,
			},
			Config: e.Overrides,
		}
	}
	return list, nil
}

func writeInstanceTable(out io.Writer, instances []model.Instance, color bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tSTATUS\tAUTH\tTHREAD\tPROMPTS\tRESTARTS\tACTIVE"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range instances {
		inst := &instances[i]
		thread := inst.ThreadID
		if thread == "" {
			thread = "-"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			model.ShortID(inst.ID),
			inst.Name,
			renderStatus(inst.Status, color),
			inst.AuthStatus,
			thread,
			inst.Stats.PromptsExecuted,
			inst.Stats.RestartCount,
			formatTimeAgo(inst.LastActivity),
		); err != nil {
			return fmt.Errorf("write instance: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func renderStatus(status model.Status, color bool) string {
	style, ok := statusStyles[status]
	if !color || !ok {
		return string(status)
	}
	return style.Render(string(status))
}

// colorEnabled reports whether out is a terminal.
func colorEnabled(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func init() {
	rootCmd.AddCommand(psCmd)

	psCmd.Flags().String("status", "", "only list instances with this status")
	psCmd.Flags().StringP("output", "o", formatTable, "output format (table, json, yaml)")
}
