package storybot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.Provider)
		assert.Equal(t, KeyCaller, cfg.KeyMode)
		assert.Equal(t, PromptPlain, cfg.PromptMode)
		assert.Equal(t, ":8081", cfg.Addr)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Empty(t, cfg.OutputDir)
		assert.False(t, cfg.TLSEnabled())
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("STORYBOT_KEY_MODE", "operator")
		t.Setenv("STORYBOT_API_KEY", "operator-key")
		t.Setenv("STORYBOT_PROMPT_MODE", "configured")
		t.Setenv("STORYBOT_HTTP_TIMEOUT", "30s")
		t.Setenv("STORYBOT_OUTPUT_DIR", "stories")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, KeyOperator, cfg.KeyMode)
		assert.Equal(t, "operator-key", cfg.APIKey)
		assert.Equal(t, PromptConfigured, cfg.PromptMode)
		assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, "stories", cfg.OutputDir)
	})

	t.Run("env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("STORYBOT_MODEL=gemini-1.5-pro\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("STORYBOT_MODEL") })

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "gemini-1.5-pro", cfg.Model)
	})

	t.Run("operator mode needs a key", func(t *testing.T) {
		t.Setenv("STORYBOT_KEY_MODE", "operator")
		t.Setenv("STORYBOT_API_KEY", "")

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Provider: ProviderGemini, KeyMode: KeyCaller, PromptMode: PromptPlain}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider = "openai" }},
		{"unknown key mode", func(c *Config) { c.KeyMode = "shared" }},
		{"unknown prompt mode", func(c *Config) { c.PromptMode = "fancy" }},
		{"operator without key", func(c *Config) { c.KeyMode = KeyOperator }},
		{"cert without key", func(c *Config) { c.TLSCert = "cert.pem" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
