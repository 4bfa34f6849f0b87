package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/model"
)

var sendCmd = &cobra.Command{
	Use:   "send <instance> [prompt...]",
	Short: "Submit a prompt to an idle instance",
	Long: `Submit a prompt to an instance. The instance must be idle.

The prompt is taken from the remaining arguments, from --file, or from
standard input when --file is "-". Multi-line prompts are typed line by line.

If the instance requires approval and the prompt is not on its allowlist, the
prompt is held and the instance waits for 'overseer approve' or
'overseer reject'.`,
	Example: `  # Submit a one-line prompt
  overseer send docs "summarize the README"

  # Submit a prompt from a file
  overseer send docs --file task.md

  # Pipe a prompt in
  git diff | overseer send docs -f -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSendCmd,
}

func runSendCmd(cmd *cobra.Command, args []string) error {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("get file flag: %w", err)
	}

	text, err := promptText(cmd.InOrStdin(), args[1:], file)
	if err != nil {
		return err
	}

	return withClient(cmd, func(c *control.Client) error {
		ctx := cmd.Context()
		inst, err := resolveInstance(ctx, c, args[0])
		if err != nil {
			return err
		}

		var res control.StatusResult
		payload := control.SendPromptPayload{InstanceID: inst.ID, Prompt: text}
		if err := c.Call(ctx, control.TypeSendPrompt, payload, &res); err != nil {
			return fmt.Errorf("send prompt: %w", err)
		}

		out := cmd.OutOrStdout()
		if res.Status == model.StatusWaitingApproval {
			fmt.Fprintf(out, "Prompt held for approval on %s\n", inst.Name)
			return nil
		}
		fmt.Fprintf(out, "Prompt submitted to %s (%s)\n", inst.Name, res.Status)
		return nil
	})
}

// promptText picks the prompt source. Arguments and --file are exclusive.
func promptText(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", errors.New("pass the prompt as arguments or with --file, not both")
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}
		return nonBlank(string(data))
	case file != "":
		data, err := os.ReadFile(file) //nolint:gosec // user-provided prompt file
		if err != nil {
			return "", fmt.Errorf("read prompt file: %w", err)
		}
		return nonBlank(string(data))
	default:
		return nonBlank(strings.Join(args, " "))
	}
}

func nonBlank(text string) (string, error) {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("prompt is empty")
	}
	return text, nil
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringP("file", "f", "", `read the prompt from a file ("-" for stdin)`)
}
