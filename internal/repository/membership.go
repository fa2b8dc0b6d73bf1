// internal/repository/membership.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// membershipKey is the (rider, organization, kind) unique index.
var membershipKey = []clause.Column{{Name: "rider_id"}, {Name: "organization_id"}, {Name: "kind"}}

// MembershipRepositoryIface is the membership ledger the services work against.
type MembershipRepositoryIface interface {
	Find(ctx context.Context, riderID, orgID uuid.UUID, kind model.MembershipKind) (*model.Membership, error)
	FindByRider(ctx context.Context, riderID uuid.UUID, kinds ...model.MembershipKind) ([]model.Membership, error)
	Insert(ctx context.Context, m *model.Membership) (*model.Membership, error)
	Upsert(ctx context.Context, m *model.Membership) (*model.Membership, error)
	Transition(ctx context.Context, id uuid.UUID, from, to model.ApprovalState) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CountApproved(ctx context.Context, orgID uuid.UUID, kind model.MembershipKind) (int64, error)
	FindByOrganization(ctx context.Context, orgID uuid.UUID, state model.ApprovalState) ([]model.Membership, error)
	ApprovedOrganizations(ctx context.Context, riderID uuid.UUID, kinds []model.MembershipKind) ([]model.Organization, error)
	PendingRiders(ctx context.Context, orgID uuid.UUID) ([]model.Rider, error)
	FindApprovedInBatches(ctx context.Context, batchSize int, fn func([]model.Membership) error) error
}

var _ MembershipRepositoryIface = (*MembershipRepository)(nil)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Find returns the membership stored under the unique key
func (r *MembershipRepository) Find(ctx context.Context, riderID, orgID uuid.UUID, kind model.MembershipKind) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Where("rider_id = ? AND organization_id = ? AND kind = ?", riderID, orgID, kind).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("finding membership: %w", err)
	}
	return &m, nil
}

// FindByRider returns the rider's memberships, optionally restricted to kinds.
func (r *MembershipRepository) FindByRider(ctx context.Context, riderID uuid.UUID, kinds ...model.MembershipKind) ([]model.Membership, error) {
	var ms []model.Membership
	query := r.db.WithContext(ctx).Where("rider_id = ?", riderID)
	if len(kinds) > 0 {
		query = query.Where("kind IN ?", kinds)
	}
	if err := query.Order("kind").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("finding rider memberships: %w", err)
	}
	return ms, nil
}

// Insert creates m unless a record with the same key exists, then returns the
// stored record. A collision on another unique index means the rider already
// sits in a different organization of the same category.
func (r *MembershipRepository) Insert(ctx context.Context, m *model.Membership) (*model.Membership, error) {
	return r.write(ctx, m, clause.OnConflict{Columns: membershipKey, DoNothing: true})
}

// Upsert creates m or moves the existing record to m.State in place.
func (r *MembershipRepository) Upsert(ctx context.Context, m *model.Membership) (*model.Membership, error) {
	return r.write(ctx, m, clause.OnConflict{
		Columns: membershipKey,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"state":      m.State,
			"updated_at": time.Now().UTC(),
		}),
	})
}

func (r *MembershipRepository) write(ctx context.Context, m *model.Membership, onConflict clause.OnConflict) (*model.Membership, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(onConflict).Create(m).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("writing membership: %w", err)
	}
	return r.Find(ctx, m.RiderID, m.OrganizationID, m.Kind)
}

// Transition moves a membership from one state to another and reports whether
// the record was still in the expected state.
func (r *MembershipRepository) Transition(ctx context.Context, id uuid.UUID, from, to model.ApprovalState) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Membership{}).
		Where("id = ? AND state = ?", id, from).
		Update("state", to)
	if result.Error != nil {
		return false, fmt.Errorf("updating membership: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete removes the membership with the given id and reports whether it existed.
func (r *MembershipRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Membership{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("deleting membership: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CountApproved counts approved memberships of kind in the organization
func (r *MembershipRepository) CountApproved(ctx context.Context, orgID uuid.UUID, kind model.MembershipKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Membership{}).
		Where("organization_id = ? AND kind = ? AND state = ?", orgID, kind, model.StateApproved).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting memberships: %w", err)
	}
	return count, nil
}

// FindByOrganization returns the organization's memberships in the given state
func (r *MembershipRepository) FindByOrganization(ctx context.Context, orgID uuid.UUID, state model.ApprovalState) ([]model.Membership, error) {
	var ms []model.Membership
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND state = ?", orgID, state).
		Order("created_at").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("finding organization memberships: %w", err)
	}
	return ms, nil
}

// ApprovedOrganizations returns the organizations in which the rider holds an
// approved membership of one of kinds.
func (r *MembershipRepository) ApprovedOrganizations(ctx context.Context, riderID uuid.UUID, kinds []model.MembershipKind) ([]model.Organization, error) {
	sub := r.db.Model(&model.Membership{}).
		Select("organization_id").
		Where("rider_id = ? AND state = ? AND kind IN ?", riderID, model.StateApproved, kinds)

	var orgs []model.Organization
	if err := r.db.WithContext(ctx).Where("id IN (?)", sub).Order("kind, name").Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("finding rider organizations: %w", err)
	}
	return orgs, nil
}

// PendingRiders returns riders with a pending join request to the organization
func (r *MembershipRepository) PendingRiders(ctx context.Context, orgID uuid.UUID) ([]model.Rider, error) {
	sub := r.db.Model(&model.Membership{}).
		Select("rider_id").
		Where("organization_id = ? AND state = ?", orgID, model.StatePending)

	var riders []model.Rider
	if err := r.db.WithContext(ctx).Where("id IN (?)", sub).Order("display_name").Find(&riders).Error; err != nil {
		return nil, fmt.Errorf("finding pending riders: %w", err)
	}
	return riders, nil
}

// FindApprovedInBatches walks every approved membership, batchSize rows at a time.
func (r *MembershipRepository) FindApprovedInBatches(ctx context.Context, batchSize int, fn func([]model.Membership) error) error {
	var batch []model.Membership
	result := r.db.WithContext(ctx).
		Where("state = ?", model.StateApproved).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	if result.Error != nil {
		return fmt.Errorf("walking memberships: %w", result.Error)
	}
	return nil
}
