// Package config loads sparkos configuration from .sparkos/config.yaml,
// layered with .env files and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all sparkos configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Gemini uplink configuration
	Gemini GeminiConfig `yaml:"gemini"`

	// Persistence
	Store StoreConfig `yaml:"store"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Backup and restore
	Backup BackupConfig `yaml:"backup"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the Gemini API uplink.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`

	// Model overrides; empty means the built-in routing defaults
	DefaultModel  string `yaml:"default_model"`
	LiteModel     string `yaml:"lite_model"`
	ThinkingModel string `yaml:"thinking_model"`

	Timeout    string `yaml:"timeout"`
	MaxRetries int    `yaml:"max_retries"`
}

// StoreConfig configures the SQLite persistence layer.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig configures the HTTP API surface.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// BackupConfig configures backup export.
type BackupConfig struct {
	Directory string `yaml:"directory"`
}

// LoggingConfig configures categorized file logging. The logging package
// re-reads this section from disk itself to avoid an import cycle.
type LoggingConfig struct {
	Level      string          `yaml:"level"`
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	JSONFormat bool            `yaml:"json_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "sparkos",
		Version: "1.0.0",

		Gemini: GeminiConfig{
			Timeout:    "120s",
			MaxRetries: 2,
		},

		Store: StoreConfig{
			DatabasePath: ".sparkos/sparkos.db",
		},

		Server: ServerConfig{
			Addr:            ":8090",
			ReadTimeout:     "15s",
			WriteTimeout:    "120s",
			ShutdownTimeout: "10s",
		},

		Backup: BackupConfig{
			Directory: ".",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config path under the working directory.
func DefaultPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".sparkos", "config.yaml")
	}
	return filepath.Join(cwd, ".sparkos", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment variables win over the file; a .env next to the working
// directory is loaded first so it can supply them.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is not an error
	_ = godotenv.Load()

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
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("API_KEY"); key != "" && c.Gemini.APIKey == "" {
		c.Gemini.APIKey = key
	}
	if addr := os.Getenv("SPARKOS_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("SPARKOS_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if dir := os.Getenv("SPARKOS_BACKUP_DIR"); dir != "" {
		c.Backup.Directory = dir
	}
}

// GetGeminiTimeout returns the Gemini call timeout as a duration.
func (c *Config) GetGeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetReadTimeout returns the HTTP read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ReadTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetWriteTimeout returns the HTTP write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.WriteTimeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the graceful shutdown budget as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Validate validates the configuration for commands that need the uplink.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key not configured (set GEMINI_API_KEY)")
	}
	return nil
}
