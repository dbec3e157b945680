package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:     "paths",
	Short:   "List the config, data and cache locations ytsum uses",
	Example: `  ytsum paths`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := [][2]string{
			{"config dir", config.ConfigDir},
			{"config file", filepath.Join(config.ConfigDir, "config.toml")},
			{"prompt template", filepath.Join(config.ConfigDir, "prompt.txt")},
			{"data dir", config.DataDir},
			{"cache dir", config.CacheDir},
			{"database", config.DatabaseURL},
		}
		if config.LogFile != "" {
			entries = append(entries, [2]string{"log file", config.LogFile})
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(w, "%s:\t%s\n", e[0], e[1])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
