// Package config loads service configuration from config.yaml with
// environment variable overrides. Secrets (passwords, the JWT secret) come
// from the environment only.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for gridreport-engine.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// MigrationsPath points at the engine store migration files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	Auth      AuthConfig      `yaml:"auth"`
	Engine    EngineDBConfig  `yaml:"engine_db"`
	Reporting ReportingConfig `yaml:"reporting_db"`
	Query     QueryConfig     `yaml:"query"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// AuthConfig holds admin-API authentication settings.
type AuthConfig struct {
	// EnableVerification controls whether bearer tokens are validated on
	// mutating routes. Set to false for local development.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// Secret is the HS256 signing secret for admin tokens.
	Secret string `yaml:"-" env:"AUTH_JWT_SECRET"` // Secret - not in YAML
}

// EngineDBConfig holds PostgreSQL configuration for the engine store
// (data sources, report templates, generated reports).
type EngineDBConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"gridreport"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"gridreport_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
}

// ConnectionString returns a PostgreSQL connection string for the engine store.
func (c *EngineDBConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// ReportingConfig holds MySQL configuration for the reporting backend, the
// database that owns the whitelisted tables queries run against.
type ReportingConfig struct {
	Host         string `yaml:"host" env:"REPORTING_HOST" env-default:"localhost"`
	Port         int    `yaml:"port" env:"REPORTING_PORT" env-default:"3306"`
	User         string `yaml:"user" env:"REPORTING_USER" env-default:"reporter"`
	Password     string `yaml:"-" env:"REPORTING_PASSWORD"` // Secret - not in YAML
	Database     string `yaml:"database" env:"REPORTING_DATABASE" env-default:"reports"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"REPORTING_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"REPORTING_MAX_IDLE_CONNS" env-default:"2"`
}

// DSN returns a go-sql-driver DSN for the reporting backend. parseTime is
// required so temporal columns scan as time.Time for ISO-8601 normalization.
func (c *ReportingConfig) DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}

// QueryConfig bounds ad-hoc query requests.
type QueryConfig struct {
	DefaultLimit int `yaml:"default_limit" env:"QUERY_DEFAULT_LIMIT" env-default:"1000"`
	MaxLimit     int `yaml:"max_limit" env:"QUERY_MAX_LIMIT" env-default:"10000"`
}

// SchedulerConfig controls scheduled report generation.
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"true"`
	// Spec is a standard 5-field cron expression.
	Spec string `yaml:"spec" env:"SCHEDULER_SPEC" env-default:"0 6 * * *"`
}

// Load reads configuration from config.yaml (when present) with environment
// variable overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Query.DefaultLimit < 1 || c.Query.MaxLimit < c.Query.DefaultLimit {
		return fmt.Errorf("invalid query limits: default=%d max=%d", c.Query.DefaultLimit, c.Query.MaxLimit)
	}
	if c.Auth.EnableVerification && c.Auth.Secret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required when auth verification is enabled")
	}
	return nil
}
