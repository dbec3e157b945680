package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// newApp builds the application with the command's logger
func newApp(options ...internal.AppOption) *internal.App {
	return internal.NewApp(config, append([]internal.AppOption{internal.WithLogger(logger)}, options...)...)
}

// writeOutput writes data to the --output file when set, otherwise to stdout
func writeOutput(cmd *cobra.Command, data string) error {
	outputFile, _ := cmd.Flags().GetString("output")
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(data), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outputFile, err)
		}
		logger.Debug("wrote output", "path", outputFile, "bytes", len(data))
		return nil
	}

	fmt.Println(data)
	return nil
}

// printMarkdown renders markdown on a terminal unless raw output was requested
func printMarkdown(cmd *cobra.Command, content string) error {
	raw, _ := cmd.Flags().GetBool("raw")
	if raw || !internal.IsTerminal() {
		fmt.Println(content)
		return nil
	}

	rendered, err := internal.RenderMarkdown(content)
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}
