package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/chris/snug/internal/llm"
)

type Config struct {
	Provider     string        `yaml:"provider"` // ollama, openai, anthropic
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"base_url"`
	OpenAIKey    string        `yaml:"-"`
	AnthropicKey string        `yaml:"-"`
	System       string        `yaml:"system"`
	Budget       llm.Budget    `yaml:"budget"`
	Output       string        `yaml:"output"` // text, json
	Store        string        `yaml:"store"`  // jsonl, sqlite
	DataDir      string        `yaml:"data_dir"`
	Timeout      time.Duration `yaml:"timeout"`
	Stream       bool          `yaml:"stream"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := ".snug"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".snug")
	}
	return &Config{
		Provider: "ollama",
		BaseURL:  llm.DefaultOllamaBaseURL,
		System:   llm.SystemPrompt,
		Budget:   llm.DefaultBudget(),
		Output:   "text",
		Store:    "jsonl",
		DataDir:  dataDir,
		Timeout:  120 * time.Second,
		Stream:   true,
	}
}

// Load builds the configuration from defaults, the YAML config file (if any),
// .env and the environment, in that order.
func Load() (*Config, error) {
	cfg := Default()

	path := envOr("SNUG_CONFIG", defaultConfigPath())
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	_ = godotenv.Load() // ignore error if no .env
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "snug", "config.yaml")
}

func (c *Config) loadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Provider = envOr("SNUG_PROVIDER", c.Provider)
	c.Model = envOr("SNUG_MODEL", c.Model)
	c.BaseURL = envOr("SNUG_BASE_URL", c.BaseURL)
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	c.System = envOr("SNUG_SYSTEM", c.System)
	c.Output = envOr("SNUG_OUTPUT", c.Output)
	c.Store = envOr("SNUG_STORE", c.Store)
	c.DataDir = envOr("SNUG_DATA_DIR", c.DataDir)

	ints := []struct {
		key string
		dst *int
	}{
		{"SNUG_SYSTEM_BUDGET", &c.Budget.System},
		{"SNUG_HISTORY_BUDGET", &c.Budget.History},
		{"SNUG_PROMPT_BUDGET", &c.Budget.Prompt},
		{"SNUG_RESPONSE_HEADROOM", &c.Budget.ResponseHeadroom},
		{"SNUG_CONTEXT_LIMIT", &c.Budget.ContextLimit},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &llm.ConfigError{Field: e.key, Reason: fmt.Sprintf("%q is not an integer", v)}
		}
		*e.dst = n
	}

	if v := os.Getenv("SNUG_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &llm.ConfigError{Field: "SNUG_TIMEOUT", Reason: err.Error()}
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks the configuration once all layers have been applied.
func (c *Config) Validate() error {
	switch c.Provider {
	case "ollama", "openai", "anthropic":
	default:
		return &llm.ConfigError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", c.Provider)}
	}
	switch c.Output {
	case "text", "json":
	default:
		return &llm.ConfigError{Field: "output", Reason: fmt.Sprintf("unknown format %q", c.Output)}
	}
	switch c.Store {
	case "jsonl", "sqlite":
	default:
		return &llm.ConfigError{Field: "store", Reason: fmt.Sprintf("unknown store %q", c.Store)}
	}
	if c.Timeout < 0 {
		return &llm.ConfigError{Field: "timeout", Reason: "must not be negative"}
	}
	return c.Budget.Validate()
}

// APIKey returns the key for the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIKey
	case "anthropic":
		return c.AnthropicKey
	}
	return ""
}

// ProviderConfig returns the settings for llm.NewClient. The base URL only
// defaults to Ollama's for the ollama provider.
func (c *Config) ProviderConfig() llm.ProviderConfig {
	baseURL := c.BaseURL
	if c.Provider != "ollama" && baseURL == llm.DefaultOllamaBaseURL {
		baseURL = ""
	}
	return llm.ProviderConfig{
		Provider: c.Provider,
		APIKey:   c.APIKey(),
		Model:    c.Model,
		BaseURL:  baseURL,
	}
}

func (c *Config) SessionsDir() string { return filepath.Join(c.DataDir, "sessions") }
func (c *Config) DatabasePath() string { return filepath.Join(c.DataDir, "snug.db") }
func (c *Config) HistoryFile() string { return filepath.Join(c.DataDir, "repl_history") }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
