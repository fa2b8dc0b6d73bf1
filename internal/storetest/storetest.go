// Package storetest provides migrated in-memory stores for tests.
package storetest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/dangerclosesec/peloton/internal/config"
	"github.com/dangerclosesec/peloton/internal/database"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := "peloton_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := database.OpenSQLite(context.Background(), database.MemoryDSN(name), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewStore returns a store over NewDB.
func NewStore(t testing.TB) *repository.Store {
	t.Helper()
	return repository.NewStore(NewDB(t))
}

// PostgresEnv enables tests against the postgres database described by the
// DB_* environment.
const PostgresEnv = "PELOTON_TEST_POSTGRES"

// NewPostgresStore returns a store over a migrated postgres database, skipping
// t unless PostgresEnv is set. The database is shared between tests, so
// callers keep their names unique.
func NewPostgresStore(t testing.TB) *repository.Store {
	t.Helper()
	if os.Getenv(PostgresEnv) == "" {
		t.Skipf("%s not set", PostgresEnv)
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Database.Driver = config.DriverPostgres

	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewStore(db)
}

// Rider inserts an active rider whose unique fields derive from name.
func Rider(t testing.TB, store *repository.Store, name string, ratingID int64) *model.Rider {
	t.Helper()

	rider := &model.Rider{
		ExternalID:    "ext-" + name,
		DisplayName:   name,
		RatingID:      ratingID,
		TermsAccepted: true,
		Active:        true,
	}
	require.NoError(t, store.Riders().Create(context.Background(), rider))
	return rider
}
