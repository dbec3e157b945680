package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallMCPServerKeepsOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "globalShortcut": "Ctrl+Space",
  "mcpServers": {"other": {"command": "/bin/other", "args": []}}
}`), 0644))

	require.NoError(t, installMCPServer(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		GlobalShortcut string                    `json:"globalShortcut"`
		MCPServers     map[string]mcpServerEntry `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Ctrl+Space", doc.GlobalShortcut)
	assert.Equal(t, "/bin/other", doc.MCPServers["other"].Command)

	entry, ok := doc.MCPServers["ytsum"]
	require.True(t, ok)
	assert.Equal(t, []string{"mcp"}, entry.Args)
	assert.Contains(t, entry.Env, "XDG_CONFIG_HOME")
	assert.NotEmpty(t, entry.Command)
}

func TestInstallMCPServerEmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	require.NoError(t, installMCPServer(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ytsum"`)
}

func TestInstallMCPServerMissingFile(t *testing.T) {
	assert.Error(t, installMCPServer(filepath.Join(t.TempDir(), "missing.json")))
}
