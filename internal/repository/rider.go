// internal/repository/rider.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RiderRepository struct {
	db *gorm.DB
}

func NewRiderRepository(db *gorm.DB) *RiderRepository {
	return &RiderRepository{db: db}
}

// Create inserts rider and relies on the unique indexes to reject collisions.
// The insert runs in a savepoint so the surrounding transaction survives a
// violation long enough to report which field collided.
func (r *RiderRepository) Create(ctx context.Context, rider *model.Rider) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rider).Error
	})
	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err) {
		return fmt.Errorf("creating rider: %w", err)
	}
	return r.conflict(ctx, rider)
}

func (r *RiderRepository) conflict(ctx context.Context, rider *model.Rider) error {
	checks := []struct {
		column string
		value  interface{}
		err    error
	}{
		{"external_id", rider.ExternalID, domain.ErrDuplicateExternalID},
		{"display_name", rider.DisplayName, domain.ErrDuplicateName},
		{"rating_id", rider.RatingID, domain.ErrDuplicateRatingID},
	}
	for _, c := range checks {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Rider{}).Where(c.column+" = ?", c.value).Count(&count).Error; err != nil {
			return fmt.Errorf("resolving rider conflict: %w", err)
		}
		if count > 0 {
			return c.err
		}
	}
	return domain.ErrDuplicateName
}

func (r *RiderRepository) first(ctx context.Context, lock bool, query string, args ...interface{}) (*model.Rider, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = forUpdate(db)
	}
	var rider model.Rider
	if err := db.Where(query, args...).First(&rider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, fmt.Errorf("finding rider: %w", err)
	}
	return &rider, nil
}

func (r *RiderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Rider, error) {
	return r.first(ctx, false, "id = ?", id)
}

func (r *RiderRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Rider, error) {
	return r.first(ctx, false, "external_id = ?", externalID)
}

// FindByIDForUpdate loads the rider and locks its row until the transaction ends.
func (r *RiderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Rider, error) {
	return r.first(ctx, true, "id = ?", id)
}

func (r *RiderRepository) FindByExternalIDForUpdate(ctx context.Context, externalID string) (*model.Rider, error) {
	return r.first(ctx, true, "external_id = ?", externalID)
}

func (r *RiderRepository) FindByName(ctx context.Context, name string) (*model.Rider, error) {
	return r.first(ctx, false, "display_name = ?", name)
}

// FindByIDs returns the riders with the given ids in display name order.
func (r *RiderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Rider, error) {
	var riders []model.Rider
	if len(ids) == 0 {
		return riders, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("display_name").Find(&riders).Error; err != nil {
		return nil, fmt.Errorf("finding riders: %w", err)
	}
	return riders, nil
}

// SetActive toggles the active flag and reports whether a row changed.
func (r *RiderRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Rider{}).
		Where("id = ? AND active = ?", id, !active).
		Update("active", active)
	if result.Error != nil {
		return false, fmt.Errorf("updating rider: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
