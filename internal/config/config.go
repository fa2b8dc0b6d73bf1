// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Database struct {
		Driver          string        `json:"driver" env:"DB_DRIVER" envDefault:"postgres"`
		Host            string        `json:"host" env:"DB_HOST" envDefault:"localhost"`
		Port            string        `json:"port" env:"DB_PORT" envDefault:"5432"`
		User            string        `json:"user" env:"DB_USER" envDefault:"postgres"`
		Password        string        `json:"password" env:"DB_PASSWORD"`
		Name            string        `json:"name" env:"DB_NAME" envDefault:"peloton"`
		SSLMode         string        `json:"sslmode" env:"DB_SSLMODE" envDefault:"disable"`
		SearchPath      string        `json:"schema" env:"DB_SCHEMA" envDefault:"public"`
		SQLitePath      string        `json:"sqlite_path" env:"DB_SQLITE_PATH" envDefault:"peloton.db"`
		MaxOpenConns    int           `json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
		MaxIdleConns    int           `json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
		ConnMaxLifetime time.Duration `json:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
		LogQueries      bool          `json:"log_queries" env:"DB_LOG_QUERIES" envDefault:"false"`
	} `json:"database"`
	Engine struct {
		OperationTimeout time.Duration `json:"operation_timeout" env:"ENGINE_OPERATION_TIMEOUT" envDefault:"5s"`
		MaxRetries       uint          `json:"max_retries" env:"ENGINE_MAX_RETRIES" envDefault:"3"`
	} `json:"engine"`
	Permify struct {
		Host          string        `json:"host" env:"PERMIFY_HOST"`
		TenantID      string        `json:"tenant_id" env:"PERMIFY_TENANT" envDefault:"t1"`
		SchemaVersion string        `json:"schema_version" env:"PERMIFY_SCHEMA_VERSION"`
		BatchSize     int           `json:"batch_size" env:"PERMIFY_BATCH_SIZE" envDefault:"100"`
		Interval      time.Duration `json:"interval" env:"PERMIFY_RECONCILE_INTERVAL" envDefault:"1h"`
	} `json:"permify"`
	JWT struct {
		Secret       string        `json:"secret" env:"JWT_SECRET" envDefault:"your-secret-key"`
		ExpiryPeriod time.Duration `json:"expiry_period" env:"JWT_EXPIRY" envDefault:"24h"`
	} `json:"jwt"`
	Server struct {
		Port         string        `json:"port" env:"SERVER_PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	} `json:"server"`
	Metrics struct {
		Enabled bool `json:"enabled" env:"METRICS_ENABLED" envDefault:"true"`
	} `json:"metrics"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Engine.OperationTimeout <= 0 {
		return fmt.Errorf("engine operation timeout must be positive")
	}
	if c.Engine.MaxRetries == 0 {
		return fmt.Errorf("engine max retries must be at least 1")
	}
	return nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
		c.Database.SearchPath,
	)
}
