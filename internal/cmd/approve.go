package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/prompt"
)

var approveCmd = &cobra.Command{
	Use:   "approve [instance]",
	Short: "Approve a command held for approval",
	Long: `Approve the command an instance is holding and submit it to the agent.

Without an instance, every instance waiting for approval is reviewed in turn
and each held command can be approved, rejected or left pending.`,
	Example: `  # Approve the held command on one instance
  overseer approve docs

  # Review every held command interactively
  overseer approve`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApproveCmd,
}

func runApproveCmd(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(c *control.Client) error {
		ctx := cmd.Context()
		if len(args) == 0 {
			return reviewPending(ctx, cmd, c, PrompterFromContext(ctx))
		}

		inst, err := resolveInstance(ctx, c, args[0])
		if err != nil {
			return err
		}
		return approve(ctx, cmd, c, inst)
	})
}

func approve(ctx context.Context, cmd *cobra.Command, c *control.Client, inst model.Instance) error {
	var res control.StatusResult
	if err := c.Call(ctx, control.TypeApproveCommand, control.InstanceRef{InstanceID: inst.ID}, &res); err != nil {
		return fmt.Errorf("approve command: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Approved command on %s (%s)\n", inst.Name, res.Status)
	return nil
}

func reject(ctx context.Context, cmd *cobra.Command, c *control.Client, inst model.Instance) error {
	if err := c.Call(ctx, control.TypeRejectCommand, control.InstanceRef{InstanceID: inst.ID}, nil); err != nil {
		return fmt.Errorf("reject command: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rejected command on %s\n", inst.Name)
	return nil
}

// reviewPending asks for a verdict on every held command.
func reviewPending(ctx context.Context, cmd *cobra.Command, c *control.Client, p prompt.Prompter) error {
	var list []model.Instance
	payload := control.ListInstancesPayload{Status: model.StatusWaitingApproval}
	if err := c.Call(ctx, control.TypeListInstances, payload, &list); err != nil {
		return fmt.Errorf("list instances: %w", err)
	}
	if len(list) == 0 {
		p.Print("No commands are waiting for approval.")
		return nil
	}

	for _, inst := range list {
		if inst.PendingCommand == nil {
			continue
		}
		verdict, err := p.Review(inst.Name, inst.PendingCommand.Command)
		if errors.Is(err, prompt.ErrCanceled) {
			return nil
		}
		if err != nil {
			return err
		}

		switch verdict {
		case prompt.VerdictApprove:
			err = approve(ctx, cmd, c, inst)
		case prompt.VerdictReject:
			err = reject(ctx, cmd, c, inst)
		case prompt.VerdictSkip:
			p.Print(fmt.Sprintf("Left %s pending.", inst.Name))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(approveCmd)
}
