package main

import (
	"testing"
)

func TestPreRunFallsBackToDefaultsWithoutConfigFile(t *testing.T) {
	// Point config resolution at an empty home so no config file is found.
	t.Setenv("HOME", t.TempDir())
	configPath = ""
	cfg = nil

	if err := rootCmd.PersistentPreRunE(analyzeCmd, nil); err != nil {
		t.Fatalf("expected built-in defaults without a config file, got error: %v", err)
	}
	if cfg == nil || cfg.Server.Port != 8000 {
		t.Errorf("built-in defaults not loaded: %+v", cfg)
	}
}

func TestPreRunRejectsMissingExplicitConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath = "/does/not/exist.yaml"
	defer func() { configPath = "" }()

	if err := rootCmd.PersistentPreRunE(analyzeCmd, nil); err == nil {
		t.Error("an explicit --config path that does not exist must be an error")
	}
}
