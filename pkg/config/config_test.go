package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got error: %v", err)
	}
}

func TestValidate_RateLimitingDisabled_AllowsZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 0
	cfg.RateLimiting.HTTP.Burst = 0
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config to be valid when rate limiting disabled, got error: %v", err)
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "server address required",
			mutate: func(c *Config) { c.Server.Address = "" },
		},
		{
			name:   "api base url must be absolute",
			mutate: func(c *Config) { c.API.BaseURL = "/experiments" },
		},
		{
			name:   "api timeout must be > 0",
			mutate: func(c *Config) { c.API.Timeout = 0 },
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Storage.Backend = "etcd" },
		},
		{
			name: "bolt path required",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendBolt
				c.Storage.BoltPath = ""
			},
		},
		{
			name: "redis address required",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendRedis
				c.Redis.Address = ""
			},
		},
		{
			name:   "retry attempts must be > 0",
			mutate: func(c *Config) { c.Storage.Retry.MaxAttempts = 0 },
		},
		{
			name:   "retry max delay below initial",
			mutate: func(c *Config) { c.Storage.Retry.MaxDelay = time.Millisecond },
		},
		{
			name: "tracing sample rate above 1",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.SampleRate = 2
			},
		},
		{
			name: "http rps must be > 0",
			mutate: func(c *Config) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.HTTP.RequestsPerSecond = 0
			},
		},
		{
			name: "http burst must be > 0",
			mutate: func(c *Config) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.HTTP.Burst = 0
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for case %q, got nil", tc.name)
			}
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != BackendBolt {
		t.Errorf("expected default backend %q, got %q", BackendBolt, cfg.Storage.Backend)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  address: ":9999"
api:
  base_url: "https://lab.example.org/api"
storage:
  backend: memory
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("THROTTLELAB_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("server.address = %q", cfg.Server.Address)
	}
	if cfg.API.BaseURL != "https://lab.example.org/api" {
		t.Errorf("api.base_url = %q", cfg.API.BaseURL)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("storage.backend = %q", cfg.Storage.Backend)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env override not applied, logging.level = %q", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("api.timeout = %v", cfg.API.Timeout)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: etcd\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid backend")
	}
}
