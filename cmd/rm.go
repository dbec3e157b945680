package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// rmCmd deletes a stored video together with its transcript
var rmCmd = &cobra.Command{
	Use:   "rm [YouTube URL or ID]...",
	Short: "Remove stored videos and transcripts",
	Example: `  ytsum rm tAP1eZYEuKA`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()

		for _, arg := range args {
			_, id, err := internal.ParseArg(arg)
			if err != nil {
				return err
			}
			if err := app.DeleteVideo(cmd.Context(), id); err != nil {
				return fmt.Errorf("removing %s: %w", id, err)
			}
			if !config.Quiet {
				fmt.Printf("Removed %s\n", id)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
