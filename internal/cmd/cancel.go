package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <instance>",
	Short: "Interrupt the running command",
	Long: `Send the interrupt key to the agent session, stopping the command in
progress. A command held for approval is discarded.`,
	Example: `  overseer cancel docs`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			inst, err := resolveInstance(ctx, c, args[0])
			if err != nil {
				return err
			}
			if err := c.Call(ctx, control.TypeCancelCommand, control.InstanceRef{InstanceID: inst.ID}, nil); err != nil {
				return fmt.Errorf("cancel command: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled command on %s\n", inst.Name)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
