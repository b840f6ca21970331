package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"binstream/pkg/binstream"
	"binstream/pkg/fixtures"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = ".binstream.yaml"

// Config holds all binstream configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Output   OutputConfig   `yaml:"output"`
	Fixtures FixturesConfig `yaml:"fixtures"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EngineConfig configures how parse passes treat invalid tokens.
type EngineConfig struct {
	FailPolicy string `yaml:"fail_policy"` // fail-fast, skip
}

// OutputConfig configures how the CLI renders compiled bytes.
type OutputConfig struct {
	Format string `yaml:"format"` // raw, hex, dump
}

// FixturesConfig configures the on-disk fixture store.
type FixturesConfig struct {
	Dir        string `yaml:"dir"`
	QuotaBytes int    `yaml:"quota_bytes"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

var (
	ValidFailPolicies = []string{"fail-fast", "skip"}
	ValidFormats      = []string{"raw", "hex", "dump"}
	ValidLogLevels    = []string{"debug", "info", "warn", "error"}
	ValidLogFormats   = []string{"console", "json"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			FailPolicy: "fail-fast",
		},
		Output: OutputConfig{
			Format: "raw",
		},
		Fixtures: FixturesConfig{
			Dir:        "fixtures",
			QuotaBytes: fixtures.DefaultQuota,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
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

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BINSTREAM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BINSTREAM_FAIL_POLICY"); v != "" {
		c.Engine.FailPolicy = v
	}
	if v := os.Getenv("BINSTREAM_FIXTURES_DIR"); v != "" {
		c.Fixtures.Dir = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !contains(ValidFailPolicies, c.Engine.FailPolicy) {
		return fmt.Errorf("invalid fail policy: %s (valid: %v)", c.Engine.FailPolicy, ValidFailPolicies)
	}
	if !contains(ValidFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, ValidFormats)
	}
	if !contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	if c.Fixtures.QuotaBytes < 0 {
		return fmt.Errorf("invalid fixture quota: %d", c.Fixtures.QuotaBytes)
	}
	return nil
}

// GetFailPolicy maps the configured policy name to the engine's policy.
func (c *Config) GetFailPolicy() binstream.FailPolicy {
	if c.Engine.FailPolicy == "skip" {
		return binstream.SkipInvalid
	}
	return binstream.FailFast
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
