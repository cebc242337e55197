package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - family: tanner
    dir: /data/tanner
    prefix: tanner_report.json
geoip:
  database: /data/GeoLite2-Country.mmdb
redis:
  enabled: true
  addr: cache:6379
  cache_ttl: 1h
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Sources) != 1 || cfg.Sources[0].Family != "tanner" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if cfg.Sources[0].TopN != 10 {
		t.Errorf("TopN default not applied: %d", cfg.Sources[0].TopN)
	}
	if cfg.GeoIP.Database != "/data/GeoLite2-Country.mmdb" {
		t.Errorf("GeoIP.Database = %q", cfg.GeoIP.Database)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "cache:6379" || cfg.Redis.CacheTTL != Duration(time.Hour) {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	// Untouched sections keep their defaults.
	if cfg.Output.Dir != "reports" || cfg.Server.Port != 8080 {
		t.Errorf("defaults lost: output=%q server=%+v", cfg.Output.Dir, cfg.Server)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "sources: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"no sources", func(c *Config) { c.Sources = nil }, true},
		{"unknown family", func(c *Config) { c.Sources[0].Family = "dionaea" }, true},
		{"missing dir", func(c *Config) { c.Sources[0].Dir = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NoSourcesSentinel(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); !errors.Is(err, ErrNoSources) {
		t.Errorf("err = %v, want ErrNoSources", err)
	}
}
