package cmd

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// chatCmd sends a single prompt to the configured model
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send a prompt to the chat model",
	Example: `  # Ask the default model
  ytsum chat --prompt "What is a watch page?"

  # Pick a model and role, reading the prompt from stdin
  echo "Be brief." | ytsum chat --model llama3.1 --role system --prompt -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		if prompt == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			prompt = strings.TrimSpace(string(data))
		}
		if prompt == "" {
			return errors.New("--prompt is required")
		}

		model, _ := cmd.Flags().GetString("model")
		role, _ := cmd.Flags().GetString("role")

		app := newApp()
		defer app.Close()

		resp, err := app.Chat(cmd.Context(), model, role, prompt)
		if err != nil {
			return err
		}

		logger.Debug("chat finished", "model", resp.Model,
			"prompt_tokens", resp.PromptTokens, "completion_tokens", resp.CompletionTokens)
		return printMarkdown(cmd, resp.Content)
	},
}

func init() {
	chatCmd.Flags().StringP("model", "m", "", "Chat model (default from config)")
	chatCmd.Flags().StringP("prompt", "p", "", "Prompt text, or - to read stdin")
	chatCmd.Flags().String("role", "user", "Message role (user, system or assistant)")
	chatCmd.Flags().Bool("raw", false, "Print the model output without markdown rendering")
	rootCmd.AddCommand(chatCmd)
}
