package service

import (
	"context"
	"errors"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/google/uuid"
)

type CreateOrganizationInput struct {
	Kind          model.OrganizationKind `json:"kind" validate:"required,oneof=club team"`
	Name          string                 `json:"name" validate:"required,min=3,max=50"`
	ParentID      *uuid.UUID             `json:"parent_id,omitempty"`
	ExternalRefID *int64                 `json:"external_ref_id,omitempty" validate:"omitempty,gt=0"`
	Note          string                 `json:"note,omitempty" validate:"max=500"`
}

// CreateOrganization creates a club or team with the actor as its first admin.
// The organization, the admin membership and the member membership commit
// together, so no organization is ever without an admin.
func (e *Engine) CreateOrganization(ctx context.Context, actor ActorIdentity, input CreateOrganizationInput) (*model.Organization, error) {
	var org *model.Organization
	err := e.execute(ctx, model.OpCreateOrganization, actor, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		if err := e.validateInput(input); err != nil {
			return err
		}

		rider, err := actor.resolve(ctx, tx, true)
		if err != nil {
			return err
		}
		rec.actor(rider)

		if input.ParentID != nil {
			if err := checkParent(ctx, tx, rider.ID, input); err != nil {
				return err
			}
		}

		org = &model.Organization{
			Kind:          input.Kind,
			Name:          input.Name,
			ExternalRefID: input.ExternalRefID,
			ParentID:      input.ParentID,
			CreatedByID:   rider.ID,
			Active:        true,
			Note:          input.Note,
		}
		if err := tx.Organizations().Create(ctx, org); err != nil {
			return err
		}
		rec.set("kind", string(org.Kind))
		rec.set("name", org.Name)

		held, err := tx.Memberships().FindByRider(ctx, rider.ID, model.KindsFor(org.Kind)...)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			return domain.ErrAlreadyMember
		}
		rec.organization(org.ID)

		for _, role := range []model.Role{model.RoleAdmin, model.RoleMember} {
			m, err := tx.Memberships().Insert(ctx, &model.Membership{
				RiderID:        rider.ID,
				OrganizationID: org.ID,
				Kind:           model.KindFor(org.Kind, role),
				State:          model.StateApproved,
			})
			if err != nil {
				return err
			}
			rec.grant(m)
		}
		if org.ParentID != nil {
			rec.changes = append(rec.changes, model.ParentRelation(model.RelationWrite, org))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// checkParent allows a parent only on teams; the parent must be an active club
// the creator administers.
func checkParent(ctx context.Context, tx *repository.Store, riderID uuid.UUID, input CreateOrganizationInput) error {
	if input.Kind != model.OrgKindTeam {
		return domain.ErrInvalidParent
	}
	parent, err := tx.Organizations().FindByID(ctx, *input.ParentID)
	if err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			return domain.ErrInvalidParent
		}
		return err
	}
	if parent.Kind != model.OrgKindClub || !parent.Active {
		return domain.ErrInvalidParent
	}
	return requireAdmin(ctx, tx, riderID, parent)
}

// SetOrgActive toggles an organization's active flag. Memberships are kept.
func (e *Engine) SetOrgActive(ctx context.Context, approver ActorIdentity, orgID uuid.UUID, active bool) (*model.Organization, error) {
	var org *model.Organization
	err := e.execute(ctx, model.OpSetOrgActive, approver, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		rec.organization(orgID)
		rec.set("active", active)

		rider, err := approver.resolve(ctx, tx, false)
		if err != nil {
			return err
		}
		rec.actor(rider)

		org, err = tx.Organizations().FindByIDForUpdate(ctx, orgID)
		if err != nil {
			return err
		}
		if err := requireAdmin(ctx, tx, rider.ID, org); err != nil {
			return err
		}
		if org.Active == active {
			return domain.ErrAlreadyInState
		}

		if _, err := tx.Organizations().SetActive(ctx, orgID, active); err != nil {
			return err
		}
		org.Active = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}
