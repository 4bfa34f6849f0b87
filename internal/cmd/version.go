package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/overseer/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display the version, commit, build date and Go version of Overseer.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		info := version.Get()
		out := cmd.OutOrStdout()
		if format != formatTable {
			return writeStructured(out, format, info)
		}

		fmt.Fprintf(out, "overseer %s\n", info.Version)
		fmt.Fprintf(out, "  commit: %s\n", info.Commit)
		fmt.Fprintf(out, "  built:  %s\n", info.Date)
		fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringP("output", "o", formatTable, "output format (table, json, yaml)")
}
