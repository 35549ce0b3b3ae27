package config

import (
	"os"
	"path/filepath"
	"testing"

	"printqueue/internal/ordering"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PRINTQUEUE_STRATEGY", "PRINTQUEUE_FORMAT", "PRINTQUEUE_LOG_LEVEL", "PRINTQUEUE_AUDIT"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Strategy != "legacy" {
		t.Errorf("expected Strategy=legacy, got %s", cfg.Strategy)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected Format=text, got %s", cfg.Output.Format)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected Level=warn, got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Strategy != "legacy" {
		t.Errorf("expected default strategy, got %s", cfg.Strategy)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Strategy = "topological"
	cfg.Audit.Enabled = true
	cfg.Logging.Categories = map[string]bool{"audit": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.RepairStrategy() != ordering.StrategyTopological {
		t.Errorf("expected topological, got %s", loaded.Strategy)
	}
	if !loaded.Audit.Enabled {
		t.Error("expected audit enabled")
	}
	if loaded.Logging.IsCategoryEnabled("audit") {
		t.Error("expected audit category disabled")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected json, got %s", cfg.Output.Format)
	}
	if cfg.Audit.FactLimit != 100000 {
		t.Errorf("expected default fact limit, got %d", cfg.Audit.FactLimit)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("strategy: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"strategy", func(c *Config) { c.Strategy = "bubble" }},
		{"format", func(c *Config) { c.Output.Format = "xml" }},
		{"fact limit", func(c *Config) { c.Audit.FactLimit = -1 }},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"log format", func(c *Config) { c.Logging.Format = "logfmt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestIsCategoryEnabled(t *testing.T) {
	c := LoggingConfig{}
	if !c.IsCategoryEnabled("repair") {
		t.Error("nil categories should enable everything")
	}

	c.Categories = map[string]bool{"repair": false, "audit": true}
	if c.IsCategoryEnabled("repair") {
		t.Error("repair should be disabled")
	}
	if !c.IsCategoryEnabled("audit") {
		t.Error("audit should be enabled")
	}
	if !c.IsCategoryEnabled("parse") {
		t.Error("unlisted categories default to enabled")
	}
}
