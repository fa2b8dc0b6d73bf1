// internal/repository/organization.go
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

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// OrganizationFilter narrows List results
type OrganizationFilter struct {
	Kind       model.OrganizationKind
	ActiveOnly bool
	NamePrefix string
	ParentID   *uuid.UUID
	Limit      int
	Offset     int
}

func (r *OrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(org).Error
	})
	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err) {
		return fmt.Errorf("creating organization: %w", err)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Organization{}).Where("name = ?", org.Name).Count(&count).Error; err != nil {
		return fmt.Errorf("resolving organization conflict: %w", err)
	}
	if count == 0 && org.ExternalRefID != nil {
		return domain.ErrDuplicateExternalRef
	}
	return domain.ErrDuplicateName
}

func (r *OrganizationRepository) first(ctx context.Context, lock bool, query string, args ...interface{}) (*model.Organization, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = forUpdate(db)
	}
	var org model.Organization
	if err := db.Where(query, args...).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("finding organization: %w", err)
	}
	return &org, nil
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	return r.first(ctx, false, "id = ?", id)
}

// FindByIDForUpdate loads the organization and locks its row. Operations that
// count admins take this lock first so concurrent removals serialise.
func (r *OrganizationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	return r.first(ctx, true, "id = ?", id)
}

func (r *OrganizationRepository) FindByName(ctx context.Context, name string) (*model.Organization, error) {
	return r.first(ctx, false, "name = ?", name)
}

// List returns a page of organizations and the total matching count
func (r *OrganizationRepository) List(ctx context.Context, filter OrganizationFilter) ([]model.Organization, int64, error) {
	var orgs []model.Organization
	var count int64

	query := r.db.WithContext(ctx).Model(&model.Organization{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.NamePrefix != "" {
		query = query.Where("name LIKE ?", filter.NamePrefix+"%")
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query = query.Limit(limit)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Order("name").Find(&orgs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, count, nil
}

// SetActive toggles the active flag and reports whether a row changed.
func (r *OrganizationRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Organization{}).
		Where("id = ? AND active = ?", id, !active).
		Update("active", active)
	if result.Error != nil {
		return false, fmt.Errorf("updating organization: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// FindInBatches walks every organization, batchSize rows at a time.
func (r *OrganizationRepository) FindInBatches(ctx context.Context, batchSize int, fn func([]model.Organization) error) error {
	var batch []model.Organization
	result := r.db.WithContext(ctx).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	if result.Error != nil {
		return fmt.Errorf("walking organizations: %w", result.Error)
	}
	return nil
}
