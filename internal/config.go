package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	Env          string        `json:"env"`
	DatabaseURL  string        `json:"database_url"`
	SchemaFile   string        `json:"schema_file"`
	OllamaURL    string        `json:"ollama_url"`
	OllamaModel  string        `json:"ollama_model"`
	APIKey       string        `json:"-"`
	Language     string        `json:"language"`
	UserAgent    string        `json:"user_agent"`
	FetchTimeout time.Duration `json:"fetch_timeout"`
	FetchRate    float64       `json:"fetch_rate"`
	ChatTimeout  time.Duration `json:"chat_timeout"`
	LogFile      string        `json:"log_file"`
	Verbose      bool          `json:"verbose"`
	Quiet        bool          `json:"quiet"`
	Prompt       string        `json:"prompt"`

	// Fixed XDG paths (not configurable)
	ConfigDir string `json:"config_dir"`
	DataDir   string `json:"data_dir"`
	CacheDir  string `json:"cache_dir"`
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

const appName = "ytsum"

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig writes the embedded config.toml to configDir if missing
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompt writes the embedded prompt.txt to configDir if missing
func EnsureDefaultPrompt(configDir string) error {
	return ensureDefaultFile(configDir, "prompt.txt", "prompt template")
}

// InitConfig loads .env, the config file and YTSUM_* environment variables.
// Environment variables win over the config file.
func InitConfig(configFile string) *Config {
	// A missing .env is fine
	_ = godotenv.Load()

	configDir := filepath.Join(xdg.ConfigHome, appName)
	dataDir := filepath.Join(xdg.DataHome, appName)
	cacheDir := filepath.Join(xdg.CacheHome, appName)

	v := viper.New()

	v.SetDefault("env", "development")
	v.SetDefault("database_url", "sqlite:///"+filepath.Join(dataDir, "youtube_summarizer.db"))
	v.SetDefault("schema_file", "")
	v.SetDefault("ollama_url", "http://localhost:11434/v1")
	v.SetDefault("ollama_model", "llama3.1")
	v.SetDefault("api_key", "")
	v.SetDefault("language", "en")
	v.SetDefault("user_agent", "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0")
	v.SetDefault("fetch_timeout", 30*time.Second)
	v.SetDefault("fetch_rate", 1.0)
	v.SetDefault("chat_timeout", 5*time.Minute)
	v.SetDefault("log_file", "")
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("prompt", "") // if empty will use default prompt template

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("YTSUM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Keep the variable names the original tooling used. Earlier names win;
	// DATABASE_PATH is a bare SQLite file path.
	_ = v.BindEnv("database_url", "YTSUM_DATABASE_URL", "DATABASE_URL", "DATABASE_PATH")
	_ = v.BindEnv("ollama_url", "YTSUM_OLLAMA_URL", "OLLAMA_URL")
	_ = v.BindEnv("ollama_model", "YTSUM_OLLAMA_MODEL", "OLLAMA_MODEL")
	_ = v.BindEnv("api_key", "YTSUM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("log_file", "YTSUM_LOG_FILE", "LOG_FILENAME")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := &Config{
		Env:          v.GetString("env"),
		DatabaseURL:  v.GetString("database_url"),
		SchemaFile:   v.GetString("schema_file"),
		OllamaURL:    v.GetString("ollama_url"),
		OllamaModel:  v.GetString("ollama_model"),
		APIKey:       v.GetString("api_key"),
		Language:     v.GetString("language"),
		UserAgent:    v.GetString("user_agent"),
		FetchTimeout: v.GetDuration("fetch_timeout"),
		FetchRate:    v.GetFloat64("fetch_rate"),
		ChatTimeout:  v.GetDuration("chat_timeout"),
		LogFile:      v.GetString("log_file"),
		Verbose:      v.GetBool("verbose"),
		Quiet:        v.GetBool("quiet"),
		Prompt:       v.GetString("prompt"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
	}

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}
