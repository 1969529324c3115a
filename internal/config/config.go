// Package config loads robkit's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "robkit.yaml"

// Config holds all robkit configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Assessment defaults
	Engine EngineConfig `yaml:"engine"`

	// Remote answer proposer
	Proposer ProposerConfig `yaml:"proposer"`

	// Batch evaluation
	Batch BatchConfig `yaml:"batch"`

	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig holds the defaults applied to answer files that leave them out.
type EngineConfig struct {
	Instrument string `yaml:"instrument"` // rob2, robins-e
	Variant    string `yaml:"variant"`    // confounding variant: A, B
	Output     string `yaml:"output"`     // yaml, json
}

// ProposerConfig configures the text-generation client.
type ProposerConfig struct {
	Enabled     bool    `yaml:"enabled"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Timeout     string  `yaml:"timeout"`
	Temperature float32 `yaml:"temperature"`
	MaxAttempts int     `yaml:"max_attempts"`
}

// BatchConfig bounds EvaluateBatch.
type BatchConfig struct {
	Concurrency int    `yaml:"concurrency"`
	Timeout     string `yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "robkit",
		Version: "0.3.0",

		Engine: EngineConfig{
			Instrument: "rob2",
			Variant:    "B",
			Output:     "yaml",
		},

		Proposer: ProposerConfig{
			Enabled:     false,
			Model:       "gemini-2.5-flash",
			Timeout:     "120s",
			Temperature: 0,
			MaxAttempts: 2,
		},

		Batch: BatchConfig{
			Concurrency: 4,
			Timeout:     "5m",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file gives the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
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
	// API key, later names win
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Proposer.APIKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Proposer.APIKey = key
	}

	if model := os.Getenv("ROBKIT_MODEL"); model != "" {
		c.Proposer.Model = model
	}
	if v := os.Getenv("ROBKIT_VARIANT"); v != "" {
		c.Engine.Variant = v
	}
	if lvl := os.Getenv("ROBKIT_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// GetProposerTimeout returns the proposer request timeout as a duration.
func (c *Config) GetProposerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Proposer.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// GetBatchTimeout returns the overall batch timeout as a duration.
func (c *Config) GetBatchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Batch.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

var (
	// ValidInstruments lists the instrument names accepted in engine.instrument.
	ValidInstruments = []string{"rob2", "robins-e"}
	// ValidVariants lists the confounding variants.
	ValidVariants = []string{"A", "B"}
	// ValidOutputs lists the output formats.
	ValidOutputs = []string{"yaml", "json"}
)

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !oneOf(c.Engine.Instrument, ValidInstruments) {
		return fmt.Errorf("invalid instrument: %q (valid: %v)", c.Engine.Instrument, ValidInstruments)
	}
	if !oneOf(strings.TrimSpace(c.Engine.Variant), ValidVariants) {
		return fmt.Errorf("invalid confounding variant: %q (valid: %v)", c.Engine.Variant, ValidVariants)
	}
	if !oneOf(c.Engine.Output, ValidOutputs) {
		return fmt.Errorf("invalid output format: %q (valid: %v)", c.Engine.Output, ValidOutputs)
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch concurrency must be positive, got %d", c.Batch.Concurrency)
	}
	if c.Proposer.Enabled {
		if c.Proposer.APIKey == "" {
			return fmt.Errorf("proposer API key not configured (set GEMINI_API_KEY or GOOGLE_API_KEY)")
		}
		if c.Proposer.Model == "" {
			return fmt.Errorf("proposer model not configured")
		}
	}
	return nil
}
