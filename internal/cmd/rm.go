package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/prompt"
)

var rmCmd = &cobra.Command{
	Use:   "rm <instance>",
	Short: "Terminate and remove an instance",
	Long: `Terminate an instance's agent session and stop supervising it.

The agent process is killed; work in progress is lost. Log files are kept.`,
	Example: `  # Remove with confirmation prompt
  overseer rm docs

  # Force remove without confirmation
  overseer rm docs --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return fmt.Errorf("get force flag: %w", err)
		}

		return withClient(cmd, func(c *control.Client) error {
			ctx := cmd.Context()
			inst, err := resolveInstance(ctx, c, args[0])
			if err != nil {
				return err
			}

			// Confirm removal unless --force
			if !force {
				ok, err := PrompterFromContext(ctx).Confirm(
					fmt.Sprintf("Remove instance %s?", inst.Name),
					fmt.Sprintf("The agent session %s (%s) will be terminated.", inst.SessionName, inst.Status),
				)
				if errors.Is(err, prompt.ErrCanceled) || (err == nil && !ok) {
					fmt.Fprintln(cmd.OutOrStdout(), "Canceled")
					return nil
				}
				if err != nil {
					return err
				}
			}

			if err := c.Call(ctx, control.TypeDestroyInstance, control.InstanceRef{InstanceID: inst.ID}, nil); err != nil {
				return fmt.Errorf("remove instance: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed instance %s (%s)\n", inst.Name, inst.ID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)

	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
}
