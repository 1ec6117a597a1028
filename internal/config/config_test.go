package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/ws")

	assert.Equal(t, 4, cfg.Matcher.Window)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, filepath.Join("/ws", ".skipmatch", "history.db"), cfg.History.DatabasePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())

	d, err := cfg.DiscoveryTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, FileName)

	cfg := DefaultConfig(ws)
	cfg.Matcher.Window = 3
	cfg.History.Enabled = true
	cfg.Logging.DebugMode = true
	cfg.Logging.Categories = map[string]bool{"runner": true, "history": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Matcher.Window)
	assert.True(t, loaded.History.Enabled)
	assert.True(t, loaded.Logging.DebugMode)
	assert.Equal(t, cfg.Logging.Categories, loaded.Logging.Categories)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	ws := t.TempDir()
	cfg, err := LoadOrDefault(ws)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Matcher.Window)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("matcher:\n  window: 2\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Matcher.Window)
	assert.Equal(t, "5s", cfg.Discovery.Timeout, "unset sections keep defaults")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("window", func(t *testing.T) {
		t.Setenv("SKIPMATCH_WINDOW", "2")
		cfg := DefaultConfig(t.TempDir())
		cfg.applyEnvOverrides()
		assert.Equal(t, 2, cfg.Matcher.Window)
	})

	t.Run("window ignores garbage", func(t *testing.T) {
		t.Setenv("SKIPMATCH_WINDOW", "lots")
		cfg := DefaultConfig(t.TempDir())
		cfg.applyEnvOverrides()
		assert.Equal(t, 4, cfg.Matcher.Window)
	})

	t.Run("history db enables history", func(t *testing.T) {
		t.Setenv("SKIPMATCH_HISTORY_DB", "/tmp/j.db")
		cfg := DefaultConfig(t.TempDir())
		cfg.applyEnvOverrides()
		assert.True(t, cfg.History.Enabled)
		assert.Equal(t, "/tmp/j.db", cfg.History.DatabasePath)
	})

	t.Run("debug mode", func(t *testing.T) {
		t.Setenv("SKIPMATCH_DEBUG", "true")
		cfg := DefaultConfig(t.TempDir())
		cfg.applyEnvOverrides()
		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("discovery timeout", func(t *testing.T) {
		t.Setenv("SKIPMATCH_DISCOVERY_TIMEOUT", "250ms")
		cfg := DefaultConfig(t.TempDir())
		cfg.applyEnvOverrides()
		d, err := cfg.DiscoveryTimeout()
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, d)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero window", func(c *Config) { c.Matcher.Window = 0 }, "matcher.window"},
		{"bad timeout", func(c *Config) { c.Discovery.Timeout = "soon" }, "discovery.timeout"},
		{"negative timeout", func(c *Config) { c.Discovery.Timeout = "-1s" }, "discovery.timeout"},
		{"history without path", func(c *Config) {
			c.History.Enabled = true
			c.History.DatabasePath = ""
		}, "history.database_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
