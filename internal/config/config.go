package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Auth modes for the Google services client.
const (
	AuthServiceAccount = "service_account"
	AuthAuthorizedUser = "authorized_user"
)

// Config is the main configuration structure
type Config struct {
	Google   GoogleConfig   `yaml:"google"`
	Sheet    SheetConfig    `yaml:"sheet"`
	Campaign CampaignConfig `yaml:"campaign"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GoogleConfig contains credentials for the Gmail and Sheets services
type GoogleConfig struct {
	AuthMode        string `yaml:"auth_mode"`        // service_account or authorized_user
	CredentialsFile string `yaml:"credentials_file"` // JSON credentials for the selected mode
}

// SheetConfig describes the contact table's location
type SheetConfig struct {
	Spreadsheet string `yaml:"spreadsheet"` // full URL or bare spreadsheet id
	Name        string `yaml:"name"`        // sheet (tab) name; empty = first sheet
	Timezone    string `yaml:"timezone"`    // IANA name for log timestamps; empty = local
}

// CampaignConfig contains send and reconciliation settings
type CampaignConfig struct {
	WarmupDelay time.Duration `yaml:"warmup_delay"` // one batch-level wait before the first Message-ID fetch
	MaxAttempts int           `yaml:"max_attempts"` // Message-ID fetch attempts per message
	BaseDelay   time.Duration `yaml:"base_delay"`   // backoff base between fetch attempts
	Label       string        `yaml:"label"`        // optional Gmail label applied to sent mail
}

// StorageConfig contains local storage settings
type StorageConfig struct {
	Path string `yaml:"path"` // BoltDB file for templates and pending reconciliations
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"` // Default: :9090
	Path       string `yaml:"path"`        // Default: /metrics
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.Google.AuthMode == "" {
		c.Google.AuthMode = AuthAuthorizedUser
	}
	if c.Google.CredentialsFile == "" {
		c.Google.CredentialsFile = "token.json"
	}

	if c.Campaign.WarmupDelay == 0 {
		c.Campaign.WarmupDelay = 10 * time.Second
	}
	if c.Campaign.MaxAttempts == 0 {
		c.Campaign.MaxAttempts = 5
	}
	if c.Campaign.BaseDelay == 0 {
		c.Campaign.BaseDelay = 2 * time.Second
	}

	if c.Storage.Path == "" {
		c.Storage.Path = "sheetsend.db"
	}

	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Google.AuthMode != AuthServiceAccount && c.Google.AuthMode != AuthAuthorizedUser {
		return fmt.Errorf("invalid google.auth_mode: %s (must be %s or %s)",
			c.Google.AuthMode, AuthServiceAccount, AuthAuthorizedUser)
	}

	if c.Campaign.MaxAttempts < 1 {
		return fmt.Errorf("campaign.max_attempts must be at least 1")
	}
	if c.Campaign.BaseDelay < 0 {
		return fmt.Errorf("campaign.base_delay must not be negative")
	}
	if c.Campaign.WarmupDelay < 0 {
		return fmt.Errorf("campaign.warmup_delay must not be negative")
	}

	if c.Sheet.Timezone != "" {
		if _, err := time.LoadLocation(c.Sheet.Timezone); err != nil {
			return fmt.Errorf("invalid sheet.timezone: %w", err)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// Location returns the timezone for log timestamps.
func (c *Config) Location() *time.Location {
	if c.Sheet.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Sheet.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
