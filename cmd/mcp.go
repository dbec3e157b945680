package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing video info and transcripts",
	Long: `Run a Model Context Protocol (MCP) server that exposes ytsum as tools.

Tools:
- get_video_info: metadata extracted from the watch page
- get_video_text: the caption transcript

Both tools read from and write to the configured database.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport
  ytsum mcp

  # Run MCP server with HTTP transport on port 8080
  ytsum mcp --transport=http --port=8080

  # Register the server with a desktop MCP client
  ytsum mcp install`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "http" {
			return fmt.Errorf("unknown transport %q", transport)
		}

		app := newApp()
		defer app.Close()

		logger.Debug("starting mcp server", "transport", transport, "port", port)
		return internal.NewMCPServer(app, version).Start(cmd.Context(), transport, port)
	},
}

var mcpInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the MCP server in claude_desktop_config.json",
	Long: `Add ytsum to the mcpServers section of an existing
claude_desktop_config.json. Other servers are preserved and the current
XDG directories are passed through so the server finds the same config
and database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("client-config")
		if configPath == "" {
			var err error
			if configPath, err = desktopConfigPath(); err != nil {
				return err
			}
		}

		if err := installMCPServer(configPath); err != nil {
			return err
		}
		fmt.Printf("Registered ytsum in %s\nRestart the client to load it\n", configPath)
		return nil
	},
}

// mcpServerEntry is one server in the client's mcpServers map
type mcpServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// installMCPServer adds this binary to the client config at path.
// Unknown keys in the file are kept as they are.
func installMCPServer(path string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("getting executable path: %w", err)
	}
	if execPath, err = filepath.EvalSymlinks(execPath); err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading client config: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing client config: %w", err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := doc["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return fmt.Errorf("parsing mcpServers: %w", err)
		}
	}

	entry, err := json.Marshal(mcpServerEntry{
		Command: execPath,
		Args:    []string{"mcp"},
		Env: map[string]string{
			"XDG_DATA_HOME":   xdg.DataHome,
			"XDG_CONFIG_HOME": xdg.ConfigHome,
			"XDG_CACHE_HOME":  xdg.CacheHome,
		},
	})
	if err != nil {
		return err
	}
	servers["ytsum"] = entry

	if doc["mcpServers"], err = json.Marshal(servers); err != nil {
		return err
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding client config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}

// desktopConfigPath returns the platform's claude_desktop_config.json location
func desktopConfigPath() (string, error) {
	var dir string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support")
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
	case "linux":
		dir = xdg.ConfigHome
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	path := filepath.Join(dir, "Claude", "claude_desktop_config.json")
	if !internal.FileExists(path) {
		return "", fmt.Errorf("client config not found at %s", path)
	}
	return path, nil
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	mcpInstallCmd.Flags().String("client-config", "", "Path to claude_desktop_config.json (default: platform location)")
	mcpCmd.AddCommand(mcpInstallCmd)
	rootCmd.AddCommand(mcpCmd)
}
