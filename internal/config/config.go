// Package config loads and persists the client configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the client configuration.
type Config struct {
	// Backend server settings
	Server ServerConfig `toml:"server"`

	// Session persistence settings
	Session SessionConfig `toml:"session"`

	// Local card cache settings
	Cache CacheConfig `toml:"cache"`

	// Application settings
	App AppConfig `toml:"app"`
}

// ServerConfig contains backend connection settings.
type ServerConfig struct {
	BaseURL    string `toml:"base_url"`    // Backend base URL
	Timeout    string `toml:"timeout"`     // Per-request timeout (e.g., "10s")
	MaxRetries int    `toml:"max_retries"` // Retry attempts for transient failures
	RateLimit  string `toml:"rate_limit"`  // Minimum spacing between requests (e.g., "100ms")
}

// SessionConfig contains session cookie persistence settings.
type SessionConfig struct {
	CookieFile string `toml:"cookie_file"` // Path to the persisted session cookie
	Encrypt    bool   `toml:"encrypt"`     // Encrypt the cookie file at rest
}

// CacheConfig contains card cache settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"` // Enable the local card cache
	Path    string `toml:"path"`    // Path to the SQLite cache database
	TTL     string `toml:"ttl"`     // How long cached cards stay fresh (e.g., "168h")
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:    "http://localhost:8080",
			Timeout:    "10s",
			MaxRetries: 3,
			RateLimit:  "100ms",
		},
		Session: SessionConfig{
			CookieFile: "",
			Encrypt:    false,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "",
			TTL:     "168h",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".mana-tomb")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return configDir, nil
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from the given path.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base URL cannot be empty")
	}
	if _, err := time.ParseDuration(c.Server.Timeout); err != nil {
		return fmt.Errorf("invalid server timeout %q: %w", c.Server.Timeout, err)
	}
	if _, err := time.ParseDuration(c.Server.RateLimit); err != nil {
		return fmt.Errorf("invalid rate limit %q: %w", c.Server.RateLimit, err)
	}
	if c.Server.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", c.Server.MaxRetries)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}
	return nil
}

// GetServerTimeout returns the per-request timeout as a duration.
func (c *Config) GetServerTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.Timeout)
}

// GetRateLimit returns the request spacing as a duration.
func (c *Config) GetRateLimit() (time.Duration, error) {
	return time.ParseDuration(c.Server.RateLimit)
}

// GetCacheTTL returns the cache freshness window as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// CookieFilePath returns the configured cookie file path, defaulting to
// cookies.json in the config directory.
func (c *Config) CookieFilePath() (string, error) {
	if c.Session.CookieFile != "" {
		return c.Session.CookieFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cookies.json"), nil
}

// CachePath returns the configured cache database path, defaulting to
// cards.db in the config directory.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cards.db"), nil
}
