// Package config loads the cdome configuration: built-in defaults, then an
// optional YAML file, then environment overrides. Command-line flags are
// applied last by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/rules"
)

// Environment variables that override the file.
const (
	EnvListenAddr = "CDOME_LISTEN_ADDR"
	EnvLLMAPIKey  = "OPENAI_API_KEY"
	EnvLLMModel   = "CDOME_LLM_MODEL"
	EnvLLMBaseURL = "CDOME_LLM_BASE_URL"
	EnvLogLevel   = "CDOME_LOG_LEVEL"
)

// Config is the top-level application configuration.
// The file must never be committed with real secrets.
type Config struct {
	Version int          `yaml:"version"`
	Server  ServerConfig `yaml:"server"`
	Scan    ScanConfig   `yaml:"scan"`
	Store   StoreConfig  `yaml:"store"`
	LLM     LLMConfig    `yaml:"llm"`
	Log     LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `yaml:"cors_origins"`
}

// ScanConfig configures the scanner.
type ScanConfig struct {
	// Regions is the default region list. Empty means every enabled region.
	Regions []string `yaml:"regions"`

	RegionConcurrency int           `yaml:"region_concurrency"`
	DetailConcurrency int           `yaml:"detail_concurrency"`
	Timeout           time.Duration `yaml:"timeout"`

	Thresholds ThresholdConfig `yaml:"thresholds"`
}

// ThresholdConfig holds the age limits of the time-based checks.
type ThresholdConfig struct {
	AccessKeyMaxAgeDays int           `yaml:"access_key_max_age_days"`
	UnusedUserDays      int           `yaml:"unused_user_days"`
	SnapshotMaxAgeDays  int           `yaml:"snapshot_max_age_days"`
	TrailDeliveryWindow time.Duration `yaml:"trail_delivery_window"`
}

// StoreConfig bounds the in-memory result store.
type StoreConfig struct {
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

// LLMConfig configures the optional text-generation backend.
type LLMConfig struct {
	Enabled bool `yaml:"enabled"`

	// APIKey is the secret key of the backend. Prefer OPENAI_API_KEY.
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			ListenAddr:   ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 15 * time.Minute,
			CORSOrigins:  []string{"*"},
		},
		Scan: ScanConfig{
			RegionConcurrency: 5,
			DetailConcurrency: 10,
			Timeout:           10 * time.Minute,
			Thresholds: ThresholdConfig{
				AccessKeyMaxAgeDays: 90,
				UnusedUserDays:      90,
				SnapshotMaxAgeDays:  7,
				TrailDeliveryWindow: 24 * time.Hour,
			},
		},
		Store: StoreConfig{
			Capacity: 1000,
			TTL:      24 * time.Hour,
		},
		LLM: LLMConfig{
			Enabled: true,
			Model:   "gpt-4o-mini",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path, when path
// is non-empty, and then with the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields with the non-empty environment values returned
// by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvListenAddr); v != "" {
		c.Server.ListenAddr = v
	}
	if v := getenv(EnvLLMAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv(EnvLLMModel); v != "" {
		c.LLM.Model = v
	}
	if v := getenv(EnvLLMBaseURL); v != "" {
		c.LLM.BaseURL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// LLMActive reports whether the text-generation backend should be used.
func (c *Config) LLMActive() bool {
	return c.LLM.Enabled && c.LLM.APIKey != ""
}

// RuleOptions converts the thresholds into evaluation options. The clock is
// left unset for the engine to fill in.
func (c *Config) RuleOptions() rules.Options {
	const day = 24 * time.Hour
	t := c.Scan.Thresholds
	return rules.Options{
		AccessKeyMaxAge:     time.Duration(t.AccessKeyMaxAgeDays) * day,
		UnusedUserAge:       time.Duration(t.UnusedUserDays) * day,
		SnapshotMaxAge:      time.Duration(t.SnapshotMaxAgeDays) * day,
		TrailDeliveryWindow: t.TrailDeliveryWindow,
	}
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"json", "console"}
)

// Validate checks c for semantic correctness and returns all problems found.
// An empty slice means the config is valid.
func (c *Config) Validate() []error {
	if c == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	if c.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", c.Version))
	}
	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr: must not be empty"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server: timeouts must not be negative"))
	}
	if c.Scan.RegionConcurrency < 1 {
		errs = append(errs, fmt.Errorf("scan.region_concurrency: %d; must be at least 1", c.Scan.RegionConcurrency))
	}
	if c.Scan.DetailConcurrency < 1 {
		errs = append(errs, fmt.Errorf("scan.detail_concurrency: %d; must be at least 1", c.Scan.DetailConcurrency))
	}
	if c.Scan.Timeout < 0 {
		errs = append(errs, errors.New("scan.timeout: must not be negative"))
	}
	for _, r := range c.Scan.Regions {
		if strings.TrimSpace(r) == "" {
			errs = append(errs, errors.New("scan.regions: contains an empty region"))
			break
		}
	}
	t := c.Scan.Thresholds
	if t.AccessKeyMaxAgeDays < 1 || t.UnusedUserDays < 1 || t.SnapshotMaxAgeDays < 1 {
		errs = append(errs, errors.New("scan.thresholds: day limits must be at least 1"))
	}
	if t.TrailDeliveryWindow <= 0 {
		errs = append(errs, errors.New("scan.thresholds.trail_delivery_window: must be positive"))
	}
	if c.Store.Capacity < 1 {
		errs = append(errs, fmt.Errorf("store.capacity: %d; must be at least 1", c.Store.Capacity))
	}
	if c.Store.TTL <= 0 {
		errs = append(errs, errors.New("store.ttl: must be positive"))
	}
	if !contains(validLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown value %q; valid values: %s", c.Log.Level, strings.Join(validLevels, ", ")))
	}
	if !contains(validFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format: unknown value %q; valid values: %s", c.Log.Format, strings.Join(validFormats, ", ")))
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
