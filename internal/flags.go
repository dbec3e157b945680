package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddSummaryFlags adds flags related to summary generation
func AddSummaryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Chat model to use for summaries (default from config)")
	cmd.Flags().StringP("prompt", "p", "", "Custom prompt (string or file path)")
	cmd.Flags().Bool("raw", false, "Print the model output without markdown rendering")
}

// AddOutputFlags adds flags controlling where results are written
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

// HandlePromptFlag processes the --prompt flag to set custom prompt
func HandlePromptFlag(cmd *cobra.Command, app *App) error {
	promptFlag := cmd.Flags().Lookup("prompt")
	if promptFlag == nil || !promptFlag.Changed {
		return nil
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return fmt.Errorf("failed to get prompt flag: %w", err)
	}

	if prompt == "" {
		return nil
	}

	app.SetPromptManager(NewPromptManager(app.config.ConfigDir, prompt))

	if IsLikelyFilePath(prompt) && FileExists(prompt) {
		app.logger.Debug("using custom prompt file", "path", prompt)
	} else {
		app.logger.Debug("using custom prompt string")
	}

	return nil
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if cmd.Flags().Changed("verbose") {
		config.Verbose = verbose
	}
	if cmd.Flags().Changed("quiet") {
		config.Quiet = quiet
	}
	return nil
}

// HandleDatabaseFlag overrides the configured database with --db when given
func HandleDatabaseFlag(cmd *cobra.Command, config *Config) error {
	if !cmd.Flags().Changed("db") {
		return nil
	}
	db, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to get db flag: %w", err)
	}
	config.DatabaseURL = db
	return nil
}
