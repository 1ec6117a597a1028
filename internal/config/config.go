// Package config loads and persists skipmatch configuration.
// The config file lives at <workspace>/.skipmatch/config.yaml; environment
// variables override file values so CI jobs can tune behavior without
// touching the workspace.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the workspace-relative config path.
const FileName = ".skipmatch/config.yaml"

// Config holds all skipmatch configuration.
type Config struct {
	// Matcher tunes the equivalence core.
	Matcher MatcherConfig `yaml:"matcher"`

	// Discovery configures the sandboxed predicate resolver.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// History configures the verdict journal.
	History HistoryConfig `yaml:"history"`

	// Logging configures the category file logger.
	Logging LoggingConfig `yaml:"logging"`
}

// MatcherConfig tunes the alignment search.
type MatcherConfig struct {
	// Window is the digit look-ahead cap per consumption step. The
	// reference encoder scanned up to four digits; treat this as a
	// complexity bound, not a correctness knob, when raising it.
	Window int `yaml:"window"`
}

// DiscoveryConfig configures the sandboxed interpreter.
type DiscoveryConfig struct {
	// Timeout bounds a single predicate invocation (Go duration string).
	Timeout string `yaml:"timeout"`

	// AllowExtraImports extends the safe stdlib import whitelist.
	// Packages granting filesystem, network or exec access stay blocked.
	AllowExtraImports []string `yaml:"allow_extra_imports"`
}

// HistoryConfig configures the SQLite verdict journal.
type HistoryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig mirrors the category logger settings.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultConfig returns the built-in defaults relative to workspace.
func DefaultConfig(workspace string) *Config {
	return &Config{
		Matcher: MatcherConfig{
			Window: 4,
		},
		Discovery: DiscoveryConfig{
			Timeout: "5s",
		},
		History: HistoryConfig{
			Enabled:      false,
			DatabasePath: filepath.Join(workspace, ".skipmatch", "history.db"),
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads a config file, applies env overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig(filepath.Dir(filepath.Dir(path)))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads <workspace>/.skipmatch/config.yaml if present,
// otherwise returns defaults. Env overrides apply either way.
func LoadOrDefault(workspace string) (*Config, error) {
	path := filepath.Join(workspace, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig(workspace)
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	return Load(path)
}

// Save writes the config as yaml, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SKIPMATCH_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Matcher.Window = n
		}
	}
	if v := os.Getenv("SKIPMATCH_HISTORY_DB"); v != "" {
		c.History.DatabasePath = v
		c.History.Enabled = true
	}
	if v := os.Getenv("SKIPMATCH_DISCOVERY_TIMEOUT"); v != "" {
		c.Discovery.Timeout = v
	}
	if v := os.Getenv("SKIPMATCH_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
}

// Validate rejects configurations the components cannot run with.
func (c *Config) Validate() error {
	if c.Matcher.Window < 1 {
		return fmt.Errorf("matcher.window must be at least 1, got %d", c.Matcher.Window)
	}
	if _, err := c.DiscoveryTimeout(); err != nil {
		return err
	}
	if c.History.Enabled && c.History.DatabasePath == "" {
		return fmt.Errorf("history.database_path required when history is enabled")
	}
	return nil
}

// DiscoveryTimeout parses the discovery timeout string.
func (c *Config) DiscoveryTimeout() (time.Duration, error) {
	if c.Discovery.Timeout == "" {
		return 5 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Discovery.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid discovery.timeout %q: %w", c.Discovery.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("discovery.timeout must be positive, got %s", d)
	}
	return d, nil
}
