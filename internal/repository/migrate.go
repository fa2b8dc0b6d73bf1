package repository

import (
	"context"
	"fmt"

	"github.com/dangerclosesec/peloton/internal/model"
	"gorm.io/gorm"
)

// Models lists every table the store owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Rider{},
		&model.Organization{},
		&model.Membership{},
		&model.ActivityEvent{},
	}
}

// Migrate creates or updates the schema, including the unique indexes the
// membership invariants depend on.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
