package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"carrental/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("CARRENTAL_TEST_SECRET", "s3cret")

	yamlContent := `
auth:
  jwt_secret: "${CARRENTAL_TEST_SECRET}"
store:
  latency_ms: 50
catalog:
  page_size: 6
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("expected jwt_secret from env, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Store.Latency() != 50*time.Millisecond {
		t.Errorf("expected latency 50ms, got %s", cfg.Store.Latency())
	}
	if cfg.Catalog.PageSize != 6 {
		t.Errorf("expected page size 6, got %d", cfg.Catalog.PageSize)
	}
	if len(cfg.Auth.Accounts) != 2 {
		t.Errorf("expected default accounts, got %d", len(cfg.Auth.Accounts))
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := Config{Auth: AuthConfig{JWTSecret: "secret"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "placeholder secret", mutate: func(c *Config) { c.Auth.JWTSecret = "YOUR_JWT_SECRET_HERE" }, wantErr: true},
		{name: "negative page size", mutate: func(c *Config) { c.Catalog.PageSize = -1 }, wantErr: true},
		{name: "redis without address", mutate: func(c *Config) { c.Redis.Enabled = true }, wantErr: true},
		{
			name: "duplicate account",
			mutate: func(c *Config) {
				c.Auth.Accounts = append(c.Auth.Accounts, AccountConfig{Email: "ADMIN@carrental.com", Password: "x", Role: models.RoleAdmin})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Catalog.PageSize != models.DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", models.DefaultPageSize, cfg.Catalog.PageSize)
	}
	if cfg.Auth.SessionTTL() != 7*24*time.Hour {
		t.Errorf("expected 7 day session ttl, got %s", cfg.Auth.SessionTTL())
	}
	if cfg.Payment.Delay() != 2*time.Second {
		t.Errorf("expected 2s payment delay, got %s", cfg.Payment.Delay())
	}
	if cfg.Wizard.DraftTTL() != 2*time.Hour {
		t.Errorf("expected 2h draft ttl, got %s", cfg.Wizard.DraftTTL())
	}
	if !cfg.Store.SeedEnabled() {
		t.Error("expected seeding enabled by default")
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.API.HTTP.Port)
	}
}

func TestValidateAccounts(t *testing.T) {
	tests := []struct {
		name     string
		accounts []AccountConfig
		wantErr  bool
	}{
		{name: "defaults", accounts: DefaultAccounts(), wantErr: false},
		{name: "empty email", accounts: []AccountConfig{{Password: "x", Role: models.RoleUser}}, wantErr: true},
		{name: "empty password", accounts: []AccountConfig{{Email: "a@b.c", Role: models.RoleUser}}, wantErr: true},
		{name: "bad role", accounts: []AccountConfig{{Email: "a@b.c", Password: "x", Role: "root"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccounts(tt.accounts)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAccounts() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExportInterval(t *testing.T) {
	if got := (ExportConfig{}).Interval(); got != 0 {
		t.Errorf("expected disabled export interval, got %s", got)
	}
	if got := (ExportConfig{IntervalHours: 24}).Interval(); got != 24*time.Hour {
		t.Errorf("expected 24h, got %s", got)
	}
}
