package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitConfigFile(t *testing.T) {
	path := writeConfig(t, `
ollama_model = "qwen2.5"
language = "de"
fetch_rate = 0.5
chat_timeout = "90s"
database_url = "postgres://localhost/ytsum"
`)

	config := InitConfig(path)

	assert.Equal(t, "qwen2.5", config.OllamaModel)
	assert.Equal(t, "de", config.Language)
	assert.Equal(t, 0.5, config.FetchRate)
	assert.Equal(t, 90*time.Second, config.ChatTimeout)
	assert.Equal(t, "postgres://localhost/ytsum", config.DatabaseURL)
	assert.Equal(t, "http://localhost:11434/v1", config.OllamaURL)
	assert.Equal(t, 30*time.Second, config.FetchTimeout)
}

func TestInitConfigDefaults(t *testing.T) {
	config := InitConfig(writeConfig(t, ""))

	assert.True(t, strings.HasPrefix(config.DatabaseURL, "sqlite:///"))
	assert.True(t, strings.HasSuffix(config.DatabaseURL, "youtube_summarizer.db"))
	assert.Equal(t, "en", config.Language)
	assert.Equal(t, filepath.Base(config.ConfigDir), appName)
}

func TestInitConfigEnvironment(t *testing.T) {
	path := writeConfig(t, `ollama_model = "from-file"`)
	t.Setenv("YTSUM_OLLAMA_MODEL", "from-env")
	t.Setenv("DATABASE_URL", "sqlite:///env.db")
	t.Setenv("OPENAI_API_KEY", "secret")
	t.Setenv("YTSUM_VERBOSE", "true")

	config := InitConfig(path)

	assert.Equal(t, "from-env", config.OllamaModel)
	assert.Equal(t, "sqlite:///env.db", config.DatabaseURL)
	assert.Equal(t, "secret", config.APIKey)
	assert.True(t, config.Verbose)
}

func TestInitConfigDatabasePath(t *testing.T) {
	path := writeConfig(t, "")

	t.Setenv("DATABASE_PATH", "legacy.db")
	config := InitConfig(path)
	assert.Equal(t, "legacy.db", config.DatabaseURL)

	dialect, _, dsn, err := ParseDatabaseURL(config.DatabaseURL)
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, dialect)
	assert.Equal(t, "legacy.db", dsn)

	t.Setenv("DATABASE_URL", "postgres://localhost/ytsum")
	config = InitConfig(path)
	assert.Equal(t, "postgres://localhost/ytsum", config.DatabaseURL)
}

func TestEnsureDefaultFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ytsum")

	require.NoError(t, EnsureDefaultConfig(dir))
	require.NoError(t, EnsureDefaultPrompt(dir))

	data, err := os.ReadFile(filepath.Join(dir, "prompt.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "{{.Transcript}}")

	// existing files are left alone
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("# mine"), 0644))
	require.NoError(t, EnsureDefaultConfig(dir))
	data, err = os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "# mine", string(data))
}
