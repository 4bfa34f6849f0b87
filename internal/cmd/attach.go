package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/overseer/internal/exec"
	"github.com/jmgilman/overseer/internal/multiplexer"
)

var attachCmd = &cobra.Command{
	Use:   "attach <instance>",
	Short: "Attach to an instance's tmux session",
	Long: `Attach the terminal to an instance's tmux session to watch or drive the
agent directly.

Input typed while attached bypasses approval and is not tracked as a prompt.
To detach without terminating the agent, use the tmux detach binding
(default: Ctrl+B, d).`,
	Example: `  overseer attach docs`,
	Args:    cobra.ExactArgs(1),
	RunE:    runAttachCmd,
}

func runAttachCmd(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("attach requires an interactive terminal")
	}
	if err := checkDependencies("tmux"); err != nil {
		return err
	}

	list, _, err := listInstances(cmd, "")
	if err != nil {
		return err
	}
	inst, err := matchInstance(list, args[0])
	if err != nil {
		return err
	}

	mux := multiplexer.NewTmux(exec.New())
	if err := mux.AttachSession(cmd.Context(), inst.SessionName); err != nil {
		if errors.Is(err, multiplexer.ErrSessionNotFound) {
			return fmt.Errorf("session %s for instance %s is not running", inst.SessionName, inst.Name)
		}
		return fmt.Errorf("attach session: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(attachCmd)
}
