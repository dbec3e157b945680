package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

var (
	cfgFile   string
	config    *internal.Config
	logger    = slog.New(slog.DiscardHandler)
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytsum [YouTube URL or ID]",
	Short: "Summarize YouTube videos with a local model",
	Long: `ytsum reads a YouTube watch page, extracts the video's metadata and
caption transcript, stores both in a local database and asks a chat model
served by Ollama (or any OpenAI-compatible endpoint) for a summary.

Called with a video URL or ID and no subcommand it summarizes the video.`,
	Example: `  # Summarize a YouTube video (default behavior)
  ytsum "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum tAP1eZYEuKA

  # Use a specific model
  ytsum "https://youtu.be/tAP1eZYEuKA" --model qwen2.5

  # Use custom prompt for summary
  ytsum tAP1eZYEuKA --prompt "tldr: {{.Transcript}}"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}

		var err error
		logger, logCloser, err = internal.NewLogger(config)
		if err != nil {
			return err
		}
		logger.Debug("starting", "command", cmd.Name(), "database", config.DatabaseURL)
		return nil
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := args[0]
		if internal.IsLikelyCommand(arg) {
			return unknownArgError(cmd, arg)
		}
		return runSummarize(cmd, arg)
	},
}

// unknownArgError suggests subcommands that resemble a mistyped argument
func unknownArgError(cmd *cobra.Command, arg string) error {
	var suggestions []string
	for _, c := range cmd.Commands() {
		name := c.Name()
		if strings.Contains(name, arg) || strings.HasPrefix(arg, name) {
			suggestions = append(suggestions, name)
		}
	}

	if len(suggestions) > 0 {
		return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Did you mean: %s?", arg, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Use --help to see available commands", arg)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	if logCloser != nil {
		_ = logCloser.Close()
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down")
	}
	return err
}

func initConfig() {
	config = internal.InitConfig(cfgFile)

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	internal.AddSummaryFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress status output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/ytsum/config.toml)")
}
