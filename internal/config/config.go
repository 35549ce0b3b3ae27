package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"printqueue/internal/ordering"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = ".printqueue.yaml"

// Config holds all printqueue configuration.
type Config struct {
	// Repair strategy: legacy or topological
	Strategy string `yaml:"strategy"`

	Output  OutputConfig  `yaml:"output"`
	Audit   AuditConfig   `yaml:"audit"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig configures the report sink.
type OutputConfig struct {
	Format string `yaml:"format"` // text, json, styled
}

// AuditConfig configures the Datalog violation audit.
type AuditConfig struct {
	Enabled   bool `yaml:"enabled"`
	FactLimit int  `yaml:"fact_limit"`
}

// DefaultConfig returns the defaults used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Strategy: string(ordering.StrategyLegacy),
		Output: OutputConfig{
			Format: "text",
		},
		Audit: AuditConfig{
			Enabled:   false,
			FactLimit: 100000,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
	}
}

// Load reads a YAML config file. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PRINTQUEUE_STRATEGY"); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv("PRINTQUEUE_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("PRINTQUEUE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PRINTQUEUE_AUDIT"); v != "" {
		// Unparseable values leave the setting alone
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Audit.Enabled = enabled
		}
	}
}

// RepairStrategy returns the parsed strategy. Call Validate first.
func (c *Config) RepairStrategy() ordering.Strategy {
	s, _ := ordering.ParseStrategy(c.Strategy)
	return s
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, ok := ordering.ParseStrategy(c.Strategy); !ok {
		return fmt.Errorf("unknown strategy %q (want legacy or topological)", c.Strategy)
	}

	switch c.Output.Format {
	case "text", "json", "styled":
	default:
		return fmt.Errorf("unknown output format %q (want text, json or styled)", c.Output.Format)
	}

	if c.Audit.FactLimit < 0 {
		return fmt.Errorf("audit.fact_limit must be >= 0, got %d", c.Audit.FactLimit)
	}

	return c.Logging.Validate()
}
