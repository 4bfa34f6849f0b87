package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
)

var restartCmd = &cobra.Command{
	Use:   "restart <instance>",
	Short: "Restart an instance's agent session",
	Long: `Terminate the agent session and start a fresh one with the same id,
working directory and settings. The current thread is resumed.`,
	Example: `  overseer restart docs`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			inst, err := resolveInstance(ctx, c, args[0])
			if err != nil {
				return err
			}

			var restarted model.Instance
			if err := c.Call(ctx, control.TypeRestartInstance, control.InstanceRef{InstanceID: inst.ID}, &restarted); err != nil {
				return fmt.Errorf("restart instance: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restarted %s (restart #%d)\n", restarted.Name, restarted.Stats.RestartCount)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(restartCmd)
}
