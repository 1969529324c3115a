package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Proposer(t *testing.T) {
	t.Run("GEMINI_API_KEY sets the key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gem-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gem-key", cfg.Proposer.APIKey)
	})

	t.Run("GOOGLE_API_KEY wins over GEMINI_API_KEY", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gem-key")
		t.Setenv("GOOGLE_API_KEY", "goog-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "goog-key", cfg.Proposer.APIKey)
	})

	t.Run("empty variables leave the file value", func(t *testing.T) {
		clearEnv(t)

		cfg := &Config{Proposer: ProposerConfig{APIKey: "file-key", Model: "file-model"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "file-key", cfg.Proposer.APIKey)
		assert.Equal(t, "file-model", cfg.Proposer.Model)
	})

	t.Run("ROBKIT_MODEL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ROBKIT_MODEL", "gemini-2.5-pro")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gemini-2.5-pro", cfg.Proposer.Model)
	})
}

func TestEnvOverrides_EngineAndLogging(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROBKIT_VARIANT", "A")
	t.Setenv("ROBKIT_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "A", cfg.Engine.Variant)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
