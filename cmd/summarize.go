package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [YouTube URL or ID]",
	Short: "Generate summary from YouTube video",
	Example: `  # Generate summary from YouTube video
  ytsum summarize "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum summarize tAP1eZYEuKA

  # Use a specific model
  ytsum summarize tAP1eZYEuKA --model qwen2.5

  # Use custom prompt
  ytsum summarize tAP1eZYEuKA --prompt "tldr: {{.Transcript}}"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, args[0])
	},
}

func runSummarize(cmd *cobra.Command, arg string) error {
	app := newApp()
	defer app.Close()

	if err := internal.HandlePromptFlag(cmd, app); err != nil {
		return err
	}

	_, id, err := internal.ParseArg(arg)
	if err != nil {
		return err
	}
	model, _ := cmd.Flags().GetString("model")

	resp, err := app.Summarize(cmd.Context(), id, model)
	if err != nil {
		return err
	}

	return printMarkdown(cmd, resp.Content)
}

func init() {
	internal.AddSummaryFlags(summarizeCmd)
	rootCmd.AddCommand(summarizeCmd)
}
