package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return cfgPath
}

func TestLoad(t *testing.T) {
	content := `
google:
  auth_mode: "service_account"
  credentials_file: "sa.json"

sheet:
  spreadsheet: "https://docs.google.com/spreadsheets/d/1AbC_dEf/edit"
  name: "Contacts"
  timezone: "Asia/Kolkata"

campaign:
  warmup_delay: 5s
  max_attempts: 3
  base_delay: 1s
  label: "Campaign 2026"

storage:
  path: "/tmp/sheetsend-test.db"

metrics:
  enabled: true
  listen_addr: ":9191"

logging:
  level: "debug"
  format: "json"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Google.AuthMode != AuthServiceAccount {
		t.Errorf("AuthMode = %v, want service_account", cfg.Google.AuthMode)
	}
	if cfg.Sheet.Name != "Contacts" {
		t.Errorf("Sheet.Name = %v, want Contacts", cfg.Sheet.Name)
	}
	if cfg.Campaign.WarmupDelay != 5*time.Second {
		t.Errorf("WarmupDelay = %v, want 5s", cfg.Campaign.WarmupDelay)
	}
	if cfg.Campaign.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %v, want 3", cfg.Campaign.MaxAttempts)
	}
	if cfg.Campaign.Label != "Campaign 2026" {
		t.Errorf("Label = %v, want Campaign 2026", cfg.Campaign.Label)
	}
	if cfg.Metrics.ListenAddr != ":9191" {
		t.Errorf("Metrics.ListenAddr = %v, want :9191", cfg.Metrics.ListenAddr)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %v, want default /metrics", cfg.Metrics.Path)
	}
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Errorf("Location() = %v, want Asia/Kolkata", cfg.Location())
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sheet:\n  spreadsheet: \"abc123\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Google.AuthMode != AuthAuthorizedUser {
		t.Errorf("AuthMode default = %v, want authorized_user", cfg.Google.AuthMode)
	}
	if cfg.Campaign.WarmupDelay != 10*time.Second {
		t.Errorf("WarmupDelay default = %v, want 10s", cfg.Campaign.WarmupDelay)
	}
	if cfg.Campaign.MaxAttempts != 5 {
		t.Errorf("MaxAttempts default = %v, want 5", cfg.Campaign.MaxAttempts)
	}
	if cfg.Campaign.BaseDelay != 2*time.Second {
		t.Errorf("BaseDelay default = %v, want 2s", cfg.Campaign.BaseDelay)
	}
	if cfg.Storage.Path != "sheetsend.db" {
		t.Errorf("Storage.Path default = %v, want sheetsend.db", cfg.Storage.Path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging defaults = %v/%v, want info/text", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad auth mode", func(c *Config) { c.Google.AuthMode = "oauth_dance" }, true},
		{"zero attempts", func(c *Config) { c.Campaign.MaxAttempts = -1 }, true},
		{"negative base delay", func(c *Config) { c.Campaign.BaseDelay = -time.Second }, true},
		{"bad timezone", func(c *Config) { c.Sheet.Timezone = "Mars/Olympus" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.setDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() missing file error = nil, want error")
	}
}
