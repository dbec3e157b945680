package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:     "info [YouTube URL or ID]",
	Aliases: []string{"metadata"},
	Short:   "Get the metadata of a YouTube video",
	Example: `  # Get metadata from YouTube video
  ytsum info "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum info tAP1eZYEuKA

  # Save metadata to file
  ytsum info tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON, ignoring the stored record
  ytsum info tAP1eZYEuKA --pretty --refresh`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()

		_, id, err := internal.ParseArg(args[0])
		if err != nil {
			return err
		}
		refresh, _ := cmd.Flags().GetBool("refresh")

		record, err := app.VideoInfoWithStatus(cmd.Context(), id, refresh, !config.Quiet)
		if err != nil {
			return err
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(record, "", "  ")
		} else {
			jsonData, err = json.Marshal(record)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		return writeOutput(cmd, string(jsonData))
	},
}

func init() {
	internal.AddOutputFlags(infoCmd)
	infoCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	infoCmd.Flags().Bool("refresh", false, "Fetch the watch page even when the video is stored")
	rootCmd.AddCommand(infoCmd)
}
