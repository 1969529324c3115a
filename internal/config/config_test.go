package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "ROBKIT_MODEL", "ROBKIT_VARIANT", "ROBKIT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "robkit", cfg.Name)
	assert.Equal(t, "rob2", cfg.Engine.Instrument)
	assert.Equal(t, "B", cfg.Engine.Variant)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.False(t, cfg.Proposer.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "robkit.yaml")

	cfg := DefaultConfig()
	cfg.Engine.Instrument = "robins-e"
	cfg.Engine.Variant = "A"
	cfg.Proposer.APIKey = "k-test"
	cfg.Logging.Categories = map[string]bool{"audit": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "robkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  output: json\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Engine.Output)
	assert.Equal(t, "rob2", cfg.Engine.Instrument)
	assert.Equal(t, "120s", cfg.Proposer.Timeout)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unterminated"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120*time.Second, cfg.GetProposerTimeout())
	assert.Equal(t, 5*time.Minute, cfg.GetBatchTimeout())

	cfg.Proposer.Timeout = "soon"
	cfg.Batch.Timeout = "-1s"
	assert.Equal(t, 120*time.Second, cfg.GetProposerTimeout())
	assert.Equal(t, 5*time.Minute, cfg.GetBatchTimeout())

	cfg.Proposer.Timeout = "45s"
	assert.Equal(t, 45*time.Second, cfg.GetProposerTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"lower-case variant", func(c *Config) { c.Engine.Variant = "a" }, ""},
		{"unknown instrument", func(c *Config) { c.Engine.Instrument = "quadas" }, "invalid instrument"},
		{"unknown variant", func(c *Config) { c.Engine.Variant = "C" }, "invalid confounding variant"},
		{"unknown output", func(c *Config) { c.Engine.Output = "xml" }, "invalid output format"},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, "concurrency must be positive"},
		{"proposer without key", func(c *Config) { c.Proposer.Enabled = true }, "API key not configured"},
		{"proposer without model", func(c *Config) {
			c.Proposer.Enabled = true
			c.Proposer.APIKey = "k"
			c.Proposer.Model = ""
		}, "model not configured"},
		{"key not needed while disabled", func(c *Config) { c.Proposer.APIKey = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	assert.False(t, lc.IsCategoryEnabled("assessment"))

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("assessment"))

	lc.Categories = map[string]bool{"audit": false}
	assert.False(t, lc.IsCategoryEnabled("audit"))
	assert.True(t, lc.IsCategoryEnabled("proposer"))
}
