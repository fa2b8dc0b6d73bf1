package config_test

import (
	"testing"
	"time"

	"github.com/dangerclosesec/peloton/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 5*time.Second, cfg.Engine.OperationTimeout)
	assert.Equal(t, uint(3), cfg.Engine.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiryPeriod)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/peloton.db")
	t.Setenv("ENGINE_OPERATION_TIMEOUT", "750ms")
	t.Setenv("ENGINE_MAX_RETRIES", "5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/peloton.db", cfg.Database.SQLitePath)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.OperationTimeout)
	assert.Equal(t, uint(5), cfg.Engine.MaxRetries)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "db"
	cfg.Database.Port = "5433"
	cfg.Database.User = "u"
	cfg.Database.Password = "p"
	cfg.Database.Name = "n"
	cfg.Database.SSLMode = "disable"
	cfg.Database.SearchPath = "public"

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable search_path=public", cfg.DSN())
}
