package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/rtzll/ytsum/cmd.version=..." at release.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print ytsum's version and build info",
	Example: `  ytsum version`,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ytsum v%s", version)
		if commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (commit %s, built %s)", commit, date)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
