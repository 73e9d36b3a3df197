// ABOUTME: Configuration loading and parsing for z11n-console
// ABOUTME: Supports YAML files with environment variable expansion and defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete z11n-console configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	State   StateConfig   `yaml:"state"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the management server address
type ServerConfig struct {
	URL string `yaml:"url"`
}

// StateConfig holds local state storage configuration
type StateConfig struct {
	// Path is the session database location. Defaults to
	// ~/.config/z11n/console.db when empty.
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File receives log output; the TUI owns the terminal, so logs
	// cannot go to stderr while it runs. Empty discards logs.
	File string `yaml:"file"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded.
// A missing file yields the defaults rather than an error, so a fresh
// install can point at a server with just --server.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.State.Path == "" {
		cfg.State.Path = DefaultStatePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	return filepath.Join(configDir(), "console.yaml")
}

// DefaultStatePath returns the conventional session database location.
func DefaultStatePath() string {
	return filepath.Join(configDir(), "console.db")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "z11n")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".z11n"
	}
	return filepath.Join(home, ".config", "z11n")
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{URL: "http://localhost:8080"},
		State:  StateConfig{Path: DefaultStatePath()},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug/info/warn/error", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text/json", c.Logging.Format)
	}

	return nil
}
