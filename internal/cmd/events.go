package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream agent events from the daemon",
	Long: `Print agent events as the daemon publishes them, until interrupted.

With --replay the daemon first sends the events it has retained. Events can be
narrowed to one instance and to one or more event types.`,
	Example: `  # Follow every event
  overseer events

  # Recent history plus live events for one instance
  overseer events --replay --instance docs

  # Only approval requests, as JSON lines
  overseer events --type approval_required -o json`,
	Args: cobra.NoArgs,
	RunE: runEventsCmd,
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	replay, _ := flags.GetBool("replay")
	ref, _ := flags.GetString("instance")
	types, _ := flags.GetStringSlice("type")
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if format == formatYAML {
		return fmt.Errorf("unsupported output format %q for a stream (valid: table, json)", format)
	}

	return withClient(cmd, func(c *control.Client) error {
		ctx := cmd.Context()

		filter := eventFilter{types: make(map[string]bool, len(types))}
		for _, t := range types {
			filter.types[t] = true
		}
		if ref != "" {
			inst, err := resolveInstance(ctx, c, ref)
			if err != nil {
				return err
			}
			filter.instance = inst.ID
		}

		if err := c.Subscribe(ctx, replay); err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}

		out := cmd.OutOrStdout()
		for {
			select {
			case ev, ok := <-c.Events():
				if !ok {
					return fmt.Errorf("event stream ended: %w", control.ErrClientClosed)
				}
				if !filter.match(ev) {
					continue
				}
				if err := writeEvent(out, format, ev); err != nil {
					return err
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}

type eventFilter struct {
	instance string
	types    map[string]bool
}

func (f eventFilter) match(ev model.AgentEvent) bool {
	if f.instance != "" && ev.InstanceID != f.instance {
		return false
	}
	return len(f.types) == 0 || f.types[ev.Type]
}

// writeEvent prints ev as one line.
func writeEvent(w io.Writer, format string, ev model.AgentEvent) error {
	if format == formatJSON {
		raw, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}

	data := ""
	if len(ev.Data) > 0 {
		raw, err := json.Marshal(ev.Data)
		if err != nil {
			return fmt.Errorf("marshal event data: %w", err)
		}
		data = " " + string(raw)
	}
	_, err := fmt.Fprintf(w, "%s %-8s %s %s%s\n",
		ev.Timestamp.Local().Format(time.TimeOnly),
		ev.Severity,
		model.ShortID(ev.InstanceID),
		ev.Type,
		data,
	)
	return err
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().Bool("replay", false, "print retained events first")
	eventsCmd.Flags().String("instance", "", "only events for this instance")
	eventsCmd.Flags().StringSlice("type", nil, "only events of these types")
	eventsCmd.Flags().StringP("output", "o", formatTable, "output format (table, json)")
}
