package service

import (
	"context"
	"errors"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/google/uuid"
)

// RequestJoin files a pending member request for the actor. kind may be empty,
// in which case the member kind of the organization's category is used. A
// repeated request while pending returns the stored request.
func (e *Engine) RequestJoin(ctx context.Context, actor ActorIdentity, orgID uuid.UUID, kind model.MembershipKind) (*model.Membership, error) {
	var membership *model.Membership
	err := e.execute(ctx, model.OpRequestJoin, actor, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		rec.organization(orgID)

		rider, err := actor.resolve(ctx, tx, true)
		if err != nil {
			return err
		}
		rec.actor(rider)

		org, err := tx.Organizations().FindByID(ctx, orgID)
		if err != nil {
			return err
		}
		memberKind := model.KindFor(org.Kind, model.RoleMember)
		if kind != "" && kind != memberKind {
			return domain.ErrInvalidMembershipKind
		}
		rec.set("kind", string(memberKind))

		if !org.Active {
			return domain.ErrOrganizationInactive
		}

		held, err := sameCategory(ctx, tx, rider.ID, org)
		if err != nil {
			return err
		}
		if existing, ok := held[memberKind]; ok {
			if existing.Approved() {
				return domain.ErrAlreadyMember
			}
			membership = existing
			rec.unchanged()
			return nil
		}

		membership, err = tx.Memberships().Insert(ctx, &model.Membership{
			RiderID:        rider.ID,
			OrganizationID: org.ID,
			Kind:           memberKind,
			State:          model.StatePending,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// ApproveJoin moves a pending request to approved. Like every grant it needs an
// active organization and an active applicant; the request survives a refusal.
func (e *Engine) ApproveJoin(ctx context.Context, approver ActorIdentity, riderID, orgID uuid.UUID) (*model.Membership, error) {
	var membership *model.Membership
	err := e.execute(ctx, model.OpApproveJoin, approver, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		org, err := e.adminScope(ctx, tx, rec, approver, orgID, riderID)
		if err != nil {
			return err
		}
		if !org.Active {
			return domain.ErrOrganizationInactive
		}

		m, err := findRequest(ctx, tx, riderID, org)
		if err != nil {
			return err
		}
		if m.Approved() {
			return domain.ErrAlreadyInState
		}
		if _, err := lockTarget(ctx, tx, riderID); err != nil {
			return err
		}

		moved, err := tx.Memberships().Transition(ctx, m.ID, model.StatePending, model.StateApproved)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrRequestNotFound
		}
		m.State = model.StateApproved
		rec.grant(m)
		membership = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// RejectJoin discards a pending request.
func (e *Engine) RejectJoin(ctx context.Context, approver ActorIdentity, riderID, orgID uuid.UUID) error {
	return e.execute(ctx, model.OpRejectJoin, approver, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		org, err := e.adminScope(ctx, tx, rec, approver, orgID, riderID)
		if err != nil {
			return err
		}

		m, err := findRequest(ctx, tx, riderID, org)
		if err != nil {
			return err
		}
		if m.Approved() {
			return domain.ErrRequestNotFound
		}
		if err := dropMembership(ctx, tx, rec, m); err != nil {
			if errors.Is(err, domain.ErrMembershipNotFound) {
				return domain.ErrRequestNotFound
			}
			return err
		}
		return nil
	})
}

// AddMember adds a rider as an approved member without a request. An existing
// pending request is approved in place.
func (e *Engine) AddMember(ctx context.Context, approver ActorIdentity, targetRiderID, orgID uuid.UUID) (*model.Membership, error) {
	var membership *model.Membership
	err := e.execute(ctx, model.OpAddMember, approver, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		org, err := e.adminScope(ctx, tx, rec, approver, orgID, targetRiderID)
		if err != nil {
			return err
		}
		if !org.Active {
			return domain.ErrOrganizationInactive
		}

		target, err := lockTarget(ctx, tx, targetRiderID)
		if err != nil {
			return err
		}
		held, err := sameCategory(ctx, tx, target.ID, org)
		if err != nil {
			return err
		}

		membership, err = approve(ctx, tx, rec, held, target.ID, org, model.RoleMember)
		if err != nil {
			return err
		}
		if len(rec.changes) == 0 {
			rec.unchanged()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// AddAdmin grants admin to a rider, making sure the rider is also an approved
// member of the organization.
func (e *Engine) AddAdmin(ctx context.Context, approver ActorIdentity, targetRiderID, orgID uuid.UUID) (*model.Membership, error) {
	var membership *model.Membership
	err := e.execute(ctx, model.OpAddAdmin, approver, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		org, err := e.adminScope(ctx, tx, rec, approver, orgID, targetRiderID)
		if err != nil {
			return err
		}
		if !org.Active {
			return domain.ErrOrganizationInactive
		}

		target, err := lockTarget(ctx, tx, targetRiderID)
		if err != nil {
			return err
		}
		held, err := sameCategory(ctx, tx, target.ID, org)
		if err != nil {
			return err
		}

		if _, err := approve(ctx, tx, rec, held, target.ID, org, model.RoleMember); err != nil {
			return err
		}
		membership, err = approve(ctx, tx, rec, held, target.ID, org, model.RoleAdmin)
		if err != nil {
			return err
		}
		if len(rec.changes) == 0 {
			rec.unchanged()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// RemoveAdmin revokes admin from a rider. The organization row is locked before
// admins are counted, so two removals racing for the last two admins cannot
// both succeed. The target stays a member.
func (e *Engine) RemoveAdmin(ctx context.Context, approver ActorIdentity, targetRiderID, orgID uuid.UUID) error {
	return e.execute(ctx, model.OpRemoveAdmin, approver, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		org, err := e.adminScope(ctx, tx, rec, approver, orgID, targetRiderID)
		if err != nil {
			return err
		}

		m, err := tx.Memberships().Find(ctx, targetRiderID, org.ID, model.KindFor(org.Kind, model.RoleAdmin))
		if err != nil {
			return err
		}
		return dropAdmin(ctx, tx, rec, m)
	})
}

// RemoveMember removes a rider from the organization, admin rights included.
func (e *Engine) RemoveMember(ctx context.Context, approver ActorIdentity, targetRiderID, orgID uuid.UUID) error {
	return e.execute(ctx, model.OpRemoveMember, approver, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		org, err := e.adminScope(ctx, tx, rec, approver, orgID, targetRiderID)
		if err != nil {
			return err
		}
		return leaveOrganization(ctx, tx, rec, targetRiderID, org)
	})
}

// Leave removes the actor's membership of kind. Leaving as admin steps down and
// keeps the member record; leaving as member also drops admin rights and
// withdraws a pending request. A sole admin cannot leave either way.
func (e *Engine) Leave(ctx context.Context, actor ActorIdentity, orgID uuid.UUID, kind model.MembershipKind) error {
	return e.execute(ctx, model.OpLeave, actor, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		rec.organization(orgID)
		rec.set("kind", string(kind))

		rider, err := actor.resolve(ctx, tx, false)
		if err != nil {
			return err
		}
		rec.actor(rider)
		rec.target(rider.ID)

		org, err := tx.Organizations().FindByIDForUpdate(ctx, orgID)
		if err != nil {
			return err
		}
		if kind.OrganizationKind() != org.Kind {
			return domain.ErrInvalidMembershipKind
		}

		if kind.IsAdmin() {
			m, err := tx.Memberships().Find(ctx, rider.ID, org.ID, kind)
			if err != nil {
				return err
			}
			return dropAdmin(ctx, tx, rec, m)
		}
		return leaveOrganization(ctx, tx, rec, rider.ID, org)
	})
}

// adminScope resolves the approver, locks the organization and checks that the
// approver administers it.
func (e *Engine) adminScope(ctx context.Context, tx *repository.Store, rec *recorder, approver ActorIdentity, orgID, targetID uuid.UUID) (*model.Organization, error) {
	rec.organization(orgID)
	rec.target(targetID)

	rider, err := approver.resolve(ctx, tx, false)
	if err != nil {
		return nil, err
	}
	rec.actor(rider)

	org, err := tx.Organizations().FindByIDForUpdate(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(ctx, tx, rider.ID, org); err != nil {
		return nil, err
	}
	return org, nil
}

func findRequest(ctx context.Context, tx *repository.Store, riderID uuid.UUID, org *model.Organization) (*model.Membership, error) {
	m, err := tx.Memberships().Find(ctx, riderID, org.ID, model.KindFor(org.Kind, model.RoleMember))
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return m, nil
}

func lockTarget(ctx context.Context, tx *repository.Store, riderID uuid.UUID) (*model.Rider, error) {
	target, err := tx.Riders().FindByIDForUpdate(ctx, riderID)
	if err != nil {
		if errors.Is(err, domain.ErrRiderNotFound) {
			return nil, domain.ErrTargetNotRegistered
		}
		return nil, err
	}
	if !target.Active {
		return nil, domain.ErrRiderInactive
	}
	return target, nil
}

// approve upserts an approved membership for role, recording a grant unless
// the rider already held it approved.
func approve(ctx context.Context, tx *repository.Store, rec *recorder, held map[model.MembershipKind]*model.Membership, riderID uuid.UUID, org *model.Organization, role model.Role) (*model.Membership, error) {
	kind := model.KindFor(org.Kind, role)
	if existing, ok := held[kind]; ok && existing.Approved() {
		return existing, nil
	}

	m, err := tx.Memberships().Upsert(ctx, &model.Membership{
		RiderID:        riderID,
		OrganizationID: org.ID,
		Kind:           kind,
		State:          model.StateApproved,
	})
	if err != nil {
		return nil, err
	}
	rec.grant(m)
	return m, nil
}

// leaveOrganization drops every membership riderID holds in org, admin first.
// The caller must hold the organization row lock.
func leaveOrganization(ctx context.Context, tx *repository.Store, rec *recorder, riderID uuid.UUID, org *model.Organization) error {
	member, err := tx.Memberships().Find(ctx, riderID, org.ID, model.KindFor(org.Kind, model.RoleMember))
	if err != nil {
		return err
	}

	admin, err := tx.Memberships().Find(ctx, riderID, org.ID, model.KindFor(org.Kind, model.RoleAdmin))
	switch {
	case err == nil:
		if err := dropAdmin(ctx, tx, rec, admin); err != nil {
			return err
		}
	case !errors.Is(err, domain.ErrMembershipNotFound):
		return err
	}

	return dropMembership(ctx, tx, rec, member)
}
