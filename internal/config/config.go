package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"carrental/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Redis      RedisConfig      `yaml:"redis"`
	Store      StoreConfig      `yaml:"store"`
	Payment    PaymentConfig    `yaml:"payment"`
	Auth       AuthConfig       `yaml:"auth"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Wizard     WizardConfig     `yaml:"wizard"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	CORS      APICORSConfig      `yaml:"cors"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port            int `yaml:"port"`
	ShutdownTimeout int `yaml:"shutdown_timeout"` // seconds
}

type APICORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type StoreConfig struct {
	LatencyMS int    `yaml:"latency_ms"`
	FleetFile string `yaml:"fleet_file"`
	Seed      *bool  `yaml:"seed"`
}

type PaymentConfig struct {
	DelayMS int `yaml:"delay_ms"`
}

type AuthConfig struct {
	JWTSecret       string          `yaml:"jwt_secret"`
	SessionTTLHours int             `yaml:"session_ttl_hours"`
	BcryptCost      int             `yaml:"bcrypt_cost"`
	LoginRateLimit  int             `yaml:"login_rate_limit"`
	LoginRateWindow int             `yaml:"login_rate_window"` // seconds
	CookieSecure    bool            `yaml:"cookie_secure"`
	Accounts        []AccountConfig `yaml:"accounts"`
}

// AccountConfig is a built-in login that exists without registration.
type AccountConfig struct {
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	Role       string `yaml:"role"`
	CustomerID int64  `yaml:"customer_id"`
}

type CatalogConfig struct {
	PageSize          int     `yaml:"page_size"`
	FeaturedMinRating float64 `yaml:"featured_min_rating"`
	FeaturedLimit     int     `yaml:"featured_limit"`
	RelatedLimit      int     `yaml:"related_limit"`
}

type WizardConfig struct {
	DraftTTLMinutes int `yaml:"draft_ttl_minutes"`
	SweepInterval   int `yaml:"sweep_interval"` // seconds
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type ExportConfig struct {
	Path          string `yaml:"path"`
	IntervalHours int    `yaml:"interval_hours"` // 0 disables scheduled exports
}

func (e ExportConfig) Interval() time.Duration {
	return time.Duration(e.IntervalHours) * time.Hour
}

func (s StoreConfig) Latency() time.Duration {
	return time.Duration(s.LatencyMS) * time.Millisecond
}

func (s StoreConfig) SeedEnabled() bool {
	return s.Seed == nil || *s.Seed
}

func (p PaymentConfig) Delay() time.Duration {
	return time.Duration(p.DelayMS) * time.Millisecond
}

func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

func (a AuthConfig) LoginWindow() time.Duration {
	return time.Duration(a.LoginRateWindow) * time.Second
}

func (w WizardConfig) DraftTTL() time.Duration {
	return time.Duration(w.DraftTTLMinutes) * time.Minute
}

func (w WizardConfig) SweepEvery() time.Duration {
	return time.Duration(w.SweepInterval) * time.Second
}

func Load(configPath string) (*Config, error) {
	// Load .env when present
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand environment variables before parsing
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "YOUR_JWT_SECRET_HERE" {
		return errors.New("auth jwt secret is required")
	}

	if c.Catalog.PageSize <= 0 {
		return errors.New("catalog page size must be positive")
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis address is required when redis is enabled")
	}

	return ValidateAccounts(c.Auth.Accounts)
}

func ValidateAccounts(accounts []AccountConfig) error {
	seen := make(map[string]bool)
	for _, a := range accounts {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		if email == "" {
			return fmt.Errorf("account '%s' has empty email", a.Name)
		}
		if a.Password == "" {
			return fmt.Errorf("account %s has empty password", email)
		}
		if a.Role != models.RoleAdmin && a.Role != models.RoleUser {
			return fmt.Errorf("account %s has unknown role %q", email, a.Role)
		}
		if seen[email] {
			return fmt.Errorf("duplicate account email found: %s", email)
		}
		seen[email] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "carrental"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.ShutdownTimeout == 0 {
		c.API.HTTP.ShutdownTimeout = 10
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 20
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 40
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.Store.LatencyMS == 0 {
		c.Store.LatencyMS = models.DefaultStoreLatency
	}
	if c.Payment.DelayMS == 0 {
		c.Payment.DelayMS = models.DefaultPaymentDelay
	}

	// Auth defaults
	if c.Auth.SessionTTLHours == 0 {
		c.Auth.SessionTTLHours = models.SessionTTL / 3600
	}
	if c.Auth.LoginRateLimit == 0 {
		c.Auth.LoginRateLimit = models.LoginRateLimit
	}
	if c.Auth.LoginRateWindow == 0 {
		c.Auth.LoginRateWindow = models.LoginRateWindow
	}
	if len(c.Auth.Accounts) == 0 {
		c.Auth.Accounts = DefaultAccounts()
	}

	// Catalog defaults
	if c.Catalog.PageSize == 0 {
		c.Catalog.PageSize = models.DefaultPageSize
	}
	if c.Catalog.FeaturedMinRating == 0 {
		c.Catalog.FeaturedMinRating = models.FeaturedMinRating
	}
	if c.Catalog.FeaturedLimit == 0 {
		c.Catalog.FeaturedLimit = models.FeaturedLimit
	}
	if c.Catalog.RelatedLimit == 0 {
		c.Catalog.RelatedLimit = models.RelatedLimit
	}

	if c.Wizard.DraftTTLMinutes == 0 {
		c.Wizard.DraftTTLMinutes = models.DraftTTL / 60
	}
	if c.Wizard.SweepInterval == 0 {
		c.Wizard.SweepInterval = 60
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "./exports"
	}
}

// DefaultAccounts are the two demo logins.
func DefaultAccounts() []AccountConfig {
	return []AccountConfig{
		{Email: "admin@carrental.com", Password: "admin123", Name: "Admin", Role: models.RoleAdmin},
		{Email: "user@email.com", Password: "user123", Name: "John Doe", Role: models.RoleUser, CustomerID: 1},
	}
}
