// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendNone     = "none"
)

// Catalog authorization modes, derived from which credentials are set.
const (
	AuthNone   = "none"
	AuthAPIKey = "api_key"
	AuthOAuth  = "oauth"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Session       SessionConfig       `yaml:"session"`
	Snapshots     SnapshotsConfig     `yaml:"snapshots"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// CatalogConfig defines catalog search API settings.
type CatalogConfig struct {
	SearchURL    string          `yaml:"search_url"`
	APIKey       string          `yaml:"api_key"`
	ClientID     string          `yaml:"client_id"`
	ClientSecret string          `yaml:"client_secret"`
	TokenURL     string          `yaml:"token_url"`
	Scope        string          `yaml:"scope"`
	PageSize     int             `yaml:"page_size"`
	Sort         string          `yaml:"sort"`
	Timeout      time.Duration   `yaml:"timeout"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// Auth reports which authorization mode the credentials select. An API key
// wins over OAuth client credentials.
func (c *CatalogConfig) Auth() string {
	switch {
	case c.APIKey != "":
		return AuthAPIKey
	case c.ClientID != "":
		return AuthOAuth
	default:
		return AuthNone
	}
}

// RateLimitConfig defines catalog API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// SessionConfig defines search session behavior.
type SessionConfig struct {
	LookAhead     int           `yaml:"look_ahead"`
	MinBatch      int           `yaml:"min_batch"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	EvictInterval time.Duration `yaml:"evict_interval"`
	MaxSessions   int           `yaml:"max_sessions"`
	NoticeBuffer  int           `yaml:"notice_buffer"`
	UpdateBuffer  int           `yaml:"update_buffer"`
}

// SnapshotsConfig defines where session snapshots are persisted.
type SnapshotsConfig struct {
	Backend       string        `yaml:"backend"` // postgres, sqlite, none
	SQLitePath    string        `yaml:"sqlite_path"`
	Retention     time.Duration `yaml:"retention"`
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig defines the operator webhook for catalog failures.
type WebhookConfig struct {
	Enabled    bool   `yaml:"enabled"`
	URL        string `yaml:"url"`
	AllNotices bool   `yaml:"all_notices"`
}

// TelemetryConfig defines OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Endpoint       string        `yaml:"endpoint"`
	Insecure       bool          `yaml:"insecure"`
	ServiceName    string        `yaml:"service_name"`
	SampleRatio    float64       `yaml:"sample_ratio"`
	MetricInterval time.Duration `yaml:"metric_interval"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, pretty
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied, for commands
// run without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyCatalogDefaults(&cfg.Catalog)
	applySessionDefaults(&cfg.Session)
	applySnapshotsDefaults(&cfg.Snapshots)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.SearchURL == "" {
		c.SearchURL = "https://api.zappos.com/Search"
	}
	if c.PageSize == 0 {
		c.PageSize = 20
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	applyRateLimitDefaults(&c.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applySessionDefaults(s *SessionConfig) {
	if s.LookAhead == 0 {
		s.LookAhead = 5
	}
	if s.MinBatch == 0 {
		s.MinBatch = 20
	}
	if s.IdleTTL == 0 {
		s.IdleTTL = 30 * time.Minute
	}
	if s.EvictInterval == 0 {
		s.EvictInterval = time.Minute
	}
	if s.MaxSessions == 0 {
		s.MaxSessions = 1000
	}
	if s.NoticeBuffer == 0 {
		s.NoticeBuffer = 32
	}
	if s.UpdateBuffer == 0 {
		s.UpdateBuffer = 16
	}
}

func applySnapshotsDefaults(s *SnapshotsConfig) {
	if s.Backend == "" {
		s.Backend = BackendSQLite
	}
	if s.SQLitePath == "" {
		s.SQLitePath = "data/snapshots.db"
	}
	if s.Retention == 0 {
		s.Retention = 7 * 24 * time.Hour
	}
	if s.PruneInterval == 0 {
		s.PruneInterval = time.Hour
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.ServiceName == "" {
		t.ServiceName = "product-search"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
	if t.MetricInterval == 0 {
		t.MetricInterval = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Snapshots.Backend {
	case BackendPostgres:
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required when snapshots.backend is postgres"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when snapshots.backend is postgres"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when snapshots.backend is postgres"))
		}
	case BackendSQLite, BackendNone:
	default:
		errs = append(errs, fmt.Errorf(
			"snapshots.backend must be one of: postgres, sqlite, none (got %q)",
			cfg.Snapshots.Backend,
		))
	}

	if cfg.Catalog.Auth() == AuthOAuth {
		if cfg.Catalog.ClientSecret == "" {
			errs = append(errs, fmt.Errorf("catalog.client_secret is required with catalog.client_id"))
		}
		if cfg.Catalog.TokenURL == "" {
			errs = append(errs, fmt.Errorf("catalog.token_url is required with catalog.client_id"))
		}
	}

	if cfg.Catalog.PageSize < 1 {
		errs = append(errs, fmt.Errorf("catalog.page_size must be positive (got %d)", cfg.Catalog.PageSize))
	}
	if cfg.Session.LookAhead < 0 {
		errs = append(errs, fmt.Errorf("session.look_ahead must not be negative (got %d)", cfg.Session.LookAhead))
	}
	if cfg.Session.MinBatch < 1 {
		errs = append(errs, fmt.Errorf("session.min_batch must be positive (got %d)", cfg.Session.MinBatch))
	}

	if cfg.Notifications.Webhook.Enabled && cfg.Notifications.Webhook.URL == "" {
		errs = append(errs, fmt.Errorf("notifications.webhook.url is required when webhook is enabled"))
	}

	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio must be within [0, 1] (got %g)", cfg.Telemetry.SampleRatio))
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
	}
	if !slices.Contains([]string{"text", "json", "pretty"}, cfg.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: text, json, pretty (got %q)", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}
