package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// videoTextCmd downloads the caption track and stores it with the video record
var videoTextCmd = &cobra.Command{
	Use:     "video-text [YouTube URL or ID]",
	Aliases: []string{"transcript"},
	Short:   "Get transcript from YouTube and store it",
	Example: `  # Get transcript from YouTube captions
  ytsum video-text "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum video-text tAP1eZYEuKA

  # Save transcript to file
  ytsum video-text tAP1eZYEuKA -o transcript.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()

		_, id, err := internal.ParseArg(args[0])
		if err != nil {
			return err
		}
		text, err := app.VideoTextWithStatus(cmd.Context(), id, !config.Quiet)
		if err != nil {
			return err
		}

		return writeOutput(cmd, text)
	},
}

func init() {
	internal.AddOutputFlags(videoTextCmd)
	rootCmd.AddCommand(videoTextCmd)
}
