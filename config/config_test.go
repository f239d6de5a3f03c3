package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chris/snug/internal/llm"
)

// isolate points the loader at a config file in a temp dir and clears the
// environment variables it reads.
func isolate(t *testing.T, yamlContent string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if yamlContent != "" {
		if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("SNUG_CONFIG", path)
	for _, k := range []string{
		"SNUG_PROVIDER", "SNUG_MODEL", "SNUG_BASE_URL", "SNUG_SYSTEM", "SNUG_OUTPUT",
		"SNUG_STORE", "SNUG_DATA_DIR", "SNUG_TIMEOUT", "SNUG_SYSTEM_BUDGET",
		"SNUG_HISTORY_BUDGET", "SNUG_PROMPT_BUDGET", "SNUG_RESPONSE_HEADROOM",
		"SNUG_CONTEXT_LIMIT", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "ollama" || cfg.Output != "text" || cfg.Store != "jsonl" || !cfg.Stream {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Budget != llm.DefaultBudget() {
		t.Errorf("Budget = %+v, want defaults", cfg.Budget)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t, `
provider: openai
model: gpt-4o-mini
timeout: 30s
budget:
  history: 1024
  prompt: 800
`)
	t.Setenv("SNUG_MODEL", "gpt-4.1-nano")
	t.Setenv("SNUG_PROMPT_BUDGET", "900")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai from file", cfg.Provider)
	}
	if cfg.Model != "gpt-4.1-nano" {
		t.Errorf("Model = %q, want env override", cfg.Model)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.Budget.History != 1024 || cfg.Budget.Prompt != 900 {
		t.Errorf("Budget = %+v", cfg.Budget)
	}
	// Fields missing from the file keep their defaults.
	if cfg.Budget.ContextLimit != llm.DefaultContextLimit {
		t.Errorf("ContextLimit = %d, want default", cfg.Budget.ContextLimit)
	}
	pc := cfg.ProviderConfig()
	if pc.APIKey != "sk-test" || pc.BaseURL != "" {
		t.Errorf("ProviderConfig() = %+v", pc)
	}
}

func TestLoad_BadEnvInteger(t *testing.T) {
	isolate(t, "")
	t.Setenv("SNUG_HISTORY_BUDGET", "lots")
	_, err := Load()
	if !llm.IsConfigError(err) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestLoad_BadFile(t *testing.T) {
	isolate(t, "budget: [not, a, map]\n")
	if _, err := Load(); err == nil {
		t.Error("expected an error for a malformed config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider = "gemini" }},
		{"unknown output", func(c *Config) { c.Output = "yaml" }},
		{"unknown store", func(c *Config) { c.Store = "redis" }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"budget over limit", func(c *Config) { c.Budget.History = 4000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !llm.IsConfigError(err) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/tmp/snug"
	if cfg.SessionsDir() != "/tmp/snug/sessions" || cfg.DatabasePath() != "/tmp/snug/snug.db" {
		t.Errorf("unexpected paths: %s %s", cfg.SessionsDir(), cfg.DatabasePath())
	}
}
