package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("unexpected base URL: %q", config.Server.BaseURL)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}

	timeout, err := config.GetServerTimeout()
	if err != nil || timeout != 10*time.Second {
		t.Errorf("unexpected timeout: %v, %v", timeout, err)
	}
	ttl, err := config.GetCacheTTL()
	if err != nil || ttl != 168*time.Hour {
		t.Errorf("unexpected cache TTL: %v, %v", ttl, err)
	}
	if !config.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
}

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	config, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if config.Server.BaseURL != DefaultConfig().Server.BaseURL {
		t.Errorf("expected defaults, got %+v", config)
	}
}

func TestLoadFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	original := DefaultConfig()
	original.Server.BaseURL = "https://mana-tomb.example.com"
	original.Server.MaxRetries = 5
	original.Session.Encrypt = true
	original.App.DebugMode = true

	data, err := toml.Marshal(original)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Server.BaseURL != "https://mana-tomb.example.com" {
		t.Errorf("unexpected base URL: %q", loaded.Server.BaseURL)
	}
	if loaded.Server.MaxRetries != 5 || !loaded.Session.Encrypt || !loaded.App.DebugMode {
		t.Errorf("config not round-tripped: %+v", loaded)
	}
}

func TestLoadFile_MalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("server = {{{"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error for malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.Server.BaseURL = "" }},
		{"bad timeout", func(c *Config) { c.Server.Timeout = "soon" }},
		{"bad rate limit", func(c *Config) { c.Server.RateLimit = "-" }},
		{"negative retries", func(c *Config) { c.Server.MaxRetries = -1 }},
		{"bad cache TTL", func(c *Config) { c.Cache.TTL = "weekly" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
