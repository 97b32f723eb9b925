package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(nil)
	if err != nil {
		t.Fatalf("parse(nil) returned error: %v", err)
	}
	if cfg.Advisor.Provider != "anthropic" {
		t.Errorf("expected default provider anthropic, got %q", cfg.Advisor.Provider)
	}
	if cfg.Advisor.MaxTokens != 4096 {
		t.Errorf("expected default max_tokens 4096, got %d", cfg.Advisor.MaxTokens)
	}
	if cfg.Advisor.TimeoutSeconds != 30 {
		t.Errorf("expected default timeout 30s, got %d", cfg.Advisor.TimeoutSeconds)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Advisor.DemoMode {
		t.Error("demo mode should default to off")
	}
}

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	if cfg == nil {
		t.Fatal("Default returned nil")
	}
	if cfg.Server.Port != 8000 || cfg.Advisor.TimeoutSeconds != 30 || cfg.Advisor.MaxTokens != 4096 {
		t.Errorf("Default missing built-in values: %+v", cfg)
	}
}

func TestParsePartialOverride(t *testing.T) {
	data := []byte("advisor:\n  demo_mode: true\n  provider: ollama\nserver:\n  port: 9000\n")
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if !cfg.Advisor.DemoMode {
		t.Error("expected demo_mode true")
	}
	if cfg.Advisor.Provider != "ollama" {
		t.Errorf("expected provider ollama, got %q", cfg.Advisor.Provider)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Untouched fields keep defaults.
	if cfg.Advisor.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected default openai model, got %q", cfg.Advisor.OpenAIModel)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := parse([]byte("advisor: [not a map")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestDefaultConfigYAMLParses(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("embedded default.yaml does not parse: %v", err)
	}
	if cfg.Advisor.Model == "" {
		t.Error("embedded default.yaml should set a model")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: DEBUG\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected level DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config path")
	}
}
