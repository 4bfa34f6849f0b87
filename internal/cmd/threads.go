package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Manage an instance's agent threads",
	Long: `List, start and switch the agent conversation threads known for an
instance. Switching threads restarts the agent session on the chosen thread.`,
}

var threadsListCmd = &cobra.Command{
	Use:     "list <instance>",
	Aliases: []string{"ls"},
	Short:   "List known threads",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			inst, err := resolveInstance(ctx, c, args[0])
			if err != nil {
				return err
			}

			var threads []model.Thread
			if err := c.Call(ctx, control.TypeListThreads, control.InstanceRef{InstanceID: inst.ID}, &threads); err != nil {
				return fmt.Errorf("list threads: %w", err)
			}

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, threads)
			}
			if len(threads) == 0 {
				fmt.Fprintf(out, "No threads known for %s\n", inst.Name)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tID\tNAME\tCREATED")
			for _, th := range threads {
				current := ""
				if th.ID == inst.ThreadID {
					current = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, th.ID, th.Name, formatTimeAgo(th.CreatedAt))
			}
			return w.Flush()
		})
	},
}

var threadsNewCmd = &cobra.Command{
	Use:   "new <instance> [name]",
	Short: "Start a new thread",
	Long: `Register a new conversation thread and restart the agent session on it.
A name is generated when none is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			inst, err := resolveInstance(ctx, c, args[0])
			if err != nil {
				return err
			}

			payload := control.CreateThreadPayload{InstanceID: inst.ID}
			if len(args) == 2 {
				payload.Name = args[1]
			}
			var th model.Thread
			if err := c.Call(ctx, control.TypeCreateThread, payload, &th); err != nil {
				return fmt.Errorf("create thread: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started thread %s on %s\n", th.Name, inst.Name)
			return nil
		})
	},
}

var threadsSwitchCmd = &cobra.Command{
	Use:   "switch <instance> <thread>",
	Short: "Resume another thread",
	Long: `Restart the instance's agent session on the given thread. The thread does
not have to be known to overseer yet.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			inst, err := resolveInstance(ctx, c, args[0])
			if err != nil {
				return err
			}

			payload := control.SwitchThreadPayload{InstanceID: inst.ID, ThreadID: args[1]}
			if err := c.Call(ctx, control.TypeSwitchThread, payload, nil); err != nil {
				return fmt.Errorf("switch thread: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched %s to thread %s\n", inst.Name, args[1])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(threadsCmd)
	threadsCmd.AddCommand(threadsListCmd, threadsNewCmd, threadsSwitchCmd)

	threadsListCmd.Flags().StringP("output", "o", formatTable, "output format (table, json, yaml)")
}
