package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
)

var rejectCmd = &cobra.Command{
	Use:   "reject <instance>",
	Short: "Reject a command held for approval",
	Long: `Discard the command an instance is holding. The agent never sees it and
the instance returns to idle.`,
	Example: `  overseer reject docs`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(c *control.Client) error {
			inst, err := resolveInstance(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			return reject(cmd.Context(), cmd, c, inst)
		})
	},
}

func init() {
	rootCmd.AddCommand(rejectCmd)
}
