// Package config provides configuration management for the analysis
// pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/record"
)

// ErrNoSources is returned when the configuration names no log sources.
var ErrNoSources = errors.New("no log sources configured")

// Duration wraps time.Duration so YAML values like "30s" or "24h" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds the full pipeline configuration.
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
	GeoIP   GeoIPConfig    `yaml:"geoip"`
	Redis   RedisConfig    `yaml:"redis"`
	Output  OutputConfig   `yaml:"output"`
	Server  ServerConfig   `yaml:"server"`
	Logging LoggingConfig  `yaml:"logging"`
}

// SourceConfig describes one honeypot log source on disk.
type SourceConfig struct {
	// Family selects the schema adapter: cowrie, sentrypeer, or tanner.
	Family string `yaml:"family"`

	// Dir is the directory tree holding this source's log files.
	Dir string `yaml:"dir"`

	// Prefix restricts ingestion to files whose name starts with it.
	// Empty matches every file in the tree.
	Prefix string `yaml:"prefix"`

	// TopN is the cutoff for this source's frequency tables.
	TopN int `yaml:"top_n"`
}

// GeoIPConfig holds geolocation database settings.
type GeoIPConfig struct {
	// Database is the path to a GeoLite2 country mmdb file. A missing file
	// disables enrichment rather than failing the run.
	Database string `yaml:"database"`
}

// RedisConfig holds settings for the optional shared geo cache.
type RedisConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Addr        string   `yaml:"addr"`
	PasswordEnv string   `yaml:"password_env"`
	DB          int      `yaml:"db"`
	PoolSize    int      `yaml:"pool_size"`
	KeyPrefix   string   `yaml:"key_prefix"`
	CacheTTL    Duration `yaml:"cache_ttl"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig holds settings for the optional report HTTP server.
type ServerConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Load reads configuration from a YAML file, layered over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns sensible defaults covering the three honeypot
// families under a conventional T-Pot layout.
func DefaultConfig() *Config {
	return &Config{
		Sources: []SourceConfig{
			{Family: string(record.FamilyCowrie), Dir: "logs/cowrie", Prefix: "cowrie.json.", TopN: 10},
			{Family: string(record.FamilySentryPeer), Dir: "logs/sentrypeer", Prefix: "sentrypeer", TopN: 10},
			{Family: string(record.FamilyTanner), Dir: "logs/tanner", Prefix: "tanner_report.json", TopN: 10},
		},
		GeoIP: GeoIPConfig{
			Database: "GeoLite2-Country.mmdb",
		},
		Redis: RedisConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			DB:        0,
			PoolSize:  10,
			KeyPrefix: "tpot:geo:",
			CacheTTL:  Duration(24 * time.Hour),
		},
		Output: OutputConfig{
			Dir: "reports",
		},
		Server: ServerConfig{
			Enabled:         false,
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks source definitions and fills per-source defaults.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	for i := range c.Sources {
		s := &c.Sources[i]
		switch record.Family(s.Family) {
		case record.FamilyCowrie, record.FamilySentryPeer, record.FamilyTanner:
		default:
			return fmt.Errorf("source %d: unknown family %q", i, s.Family)
		}
		if s.Dir == "" {
			return fmt.Errorf("source %d (%s): dir is required", i, s.Family)
		}
		if s.TopN <= 0 {
			s.TopN = 10
		}
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "reports"
	}
	return nil
}
