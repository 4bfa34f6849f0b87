package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/logging"
)

// Default poll interval for following logs.
const defaultLogPollInterval = 100 * time.Millisecond

var logsCmd = &cobra.Command{
	Use:   "logs <instance>",
	Short: "View an instance's log files",
	Long: `View an instance's log files without attaching to its session.

Two streams are kept per instance: "pane" holds the terminal output copied
out of the session, "agent" holds the structured log written by the agent.
Logs are read from disk, so they remain available after the instance is
removed and while the daemon is down.`,
	Example: `  # View recent terminal output (last 100 lines)
  overseer logs docs

  # Follow the agent's structured log
  overseer logs docs --stream agent -f

  # Show the entire terminal history
  overseer logs docs --full`,
	Args: cobra.ExactArgs(1),
	RunE: runLogsCmd,
}

func runLogsCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	follow, err := flags.GetBool("follow")
	if err != nil {
		return fmt.Errorf("get follow flag: %w", err)
	}
	lines, err := flags.GetInt("lines")
	if err != nil {
		return fmt.Errorf("get lines flag: %w", err)
	}
	full, err := flags.GetBool("full")
	if err != nil {
		return fmt.Errorf("get full flag: %w", err)
	}
	streamName, err := flags.GetString("stream")
	if err != nil {
		return fmt.Errorf("get stream flag: %w", err)
	}
	stream := logging.Stream(streamName)
	if stream != logging.StreamPane && stream != logging.StreamAgent {
		return fmt.Errorf("unknown stream %q (valid: pane, agent)", streamName)
	}

	logsDir, err := getLogsDir(cmd.Context())
	if err != nil {
		return fmt.Errorf("get logs directory: %w", err)
	}
	pathMgr := logging.NewPathManager(logsDir)

	id, err := logInstanceID(cmd, pathMgr, args[0])
	if err != nil {
		return err
	}
	if !pathMgr.LogExists(id, stream) {
		return fmt.Errorf("no %s log found for instance %s", stream, args[0])
	}

	reader := logging.NewReader(pathMgr)
	return outputLogs(cmd.Context(), cmd.OutOrStdout(), reader, id, stream, follow, lines, full)
}

// logInstanceID resolves ref to an instance id, accepting ids of removed
// instances that still have logs on disk.
func logInstanceID(cmd *cobra.Command, pathMgr *logging.PathManager, ref string) (string, error) {
	if streams, err := pathMgr.ListStreams(ref); err == nil && len(streams) > 0 {
		return ref, nil
	}

	list, _, err := listInstances(cmd, "")
	if err != nil {
		return "", err
	}
	inst, err := matchInstance(list, ref)
	if err != nil {
		return "", err
	}
	return inst.ID, nil
}

func outputLogs(ctx context.Context, out io.Writer, reader *logging.Reader, instanceID string, stream logging.Stream, follow bool, lines int, full bool) error {
	if follow {
		// Follow mode: show last N lines then stream new output
		return reader.FollowWithHistory(ctx, instanceID, stream, out, lines, defaultLogPollInterval)
	}

	var logLines []string
	var err error
	if full {
		logLines, err = reader.ReadAll(instanceID, stream)
	} else {
		logLines, err = reader.ReadLastN(instanceID, stream, lines)
	}
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	for _, line := range logLines {
		fmt.Fprintln(out, line)
	}
	return nil
}

// getLogsDir returns the logs directory from config, or the default if config is nil.
func getLogsDir(ctx context.Context) (string, error) {
	if cfg := ConfigFromContext(ctx); cfg != nil {
		return cfg.Storage.Logs, nil
	}

	dataDir, err := defaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "logs"), nil
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().BoolP("follow", "f", false, "follow log output in real-time")
	logsCmd.Flags().IntP("lines", "n", logging.DefaultTailLines, "number of lines to show")
	logsCmd.Flags().Bool("full", false, "show the entire log")
	logsCmd.Flags().String("stream", string(logging.StreamPane), "log stream to show (pane, agent)")
}
