package service

import (
	"context"
	"errors"
	"time"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/google/uuid"
)

// QueryService answers read-side questions. It never writes, so it may run over
// a replica store.
type QueryService struct {
	store   *repository.Store
	timeout time.Duration
}

func NewQueryService(store *repository.Store, timeout time.Duration) *QueryService {
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &QueryService{store: store, timeout: timeout}
}

// OrganizationMembership is a rider's standing in one organization.
type OrganizationMembership struct {
	Organization model.Organization  `json:"organization"`
	State        model.ApprovalState `json:"state"`
	Admin        bool                `json:"admin"`
}

// RiderProfile aggregates a rider with their current club and team.
type RiderProfile struct {
	Rider            *model.Rider            `json:"rider"`
	Club             *OrganizationMembership `json:"club,omitempty"`
	Team             *OrganizationMembership `json:"team,omitempty"`
	PowerProfileURL  string                  `json:"power_profile_url"`
	RacingProfileURL string                  `json:"racing_profile_url"`
}

func (p *RiderProfile) ClubAdmin() bool {
	return p.Club != nil && p.Club.Admin
}

func (p *RiderProfile) TeamAdmin() bool {
	return p.Team != nil && p.Team.Admin
}

// MemberView is an approved member of an organization.
type MemberView struct {
	Rider model.Rider `json:"rider"`
	Admin bool        `json:"admin"`
	Since time.Time   `json:"since"`
}

func (q *QueryService) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, q.timeout)
}

// read bounds a read and reports store failures as ErrStoreUnavailable.
func read[T any](ctx context.Context, q *QueryService, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := q.bounded(ctx)
	defer cancel()
	v, err := fn(ctx)
	return v, normalize(repository.Translate(err))
}

func (q *QueryService) FindRiderByExternalID(ctx context.Context, externalID string) (*model.Rider, error) {
	return read(ctx, q, func(ctx context.Context) (*model.Rider, error) {
		return q.store.Riders().FindByExternalID(ctx, externalID)
	})
}

// FindRiderByName looks a rider up by display name.
func (q *QueryService) FindRiderByName(ctx context.Context, name string) (*model.Rider, error) {
	return read(ctx, q, func(ctx context.Context) (*model.Rider, error) {
		return q.store.Riders().FindByName(ctx, name)
	})
}

func (q *QueryService) Rider(ctx context.Context, id uuid.UUID) (*model.Rider, error) {
	return read(ctx, q, func(ctx context.Context) (*model.Rider, error) {
		return q.store.Riders().FindByID(ctx, id)
	})
}

func (q *QueryService) Organization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	return read(ctx, q, func(ctx context.Context) (*model.Organization, error) {
		return q.store.Organizations().FindByID(ctx, id)
	})
}

func (q *QueryService) FindOrganizationByName(ctx context.Context, name string) (*model.Organization, error) {
	return read(ctx, q, func(ctx context.Context) (*model.Organization, error) {
		return q.store.Organizations().FindByName(ctx, name)
	})
}

type OrganizationPage struct {
	Organizations []model.Organization `json:"organizations"`
	Total         int64                `json:"total"`
}

func (q *QueryService) ListOrganizations(ctx context.Context, filter repository.OrganizationFilter) (*OrganizationPage, error) {
	return read(ctx, q, func(ctx context.Context) (*OrganizationPage, error) {
		orgs, total, err := q.store.Organizations().List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &OrganizationPage{Organizations: orgs, Total: total}, nil
	})
}

// MembershipsOf returns the organizations in which the rider holds an approved
// membership of one of kinds, or of any kind when kinds is empty.
func (q *QueryService) MembershipsOf(ctx context.Context, riderID uuid.UUID, kinds ...model.MembershipKind) ([]model.Organization, error) {
	if len(kinds) == 0 {
		kinds = []model.MembershipKind{model.KindClubMember, model.KindClubAdmin, model.KindTeamMember, model.KindTeamAdmin}
	}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, domain.ErrInvalidMembershipKind
		}
	}
	return read(ctx, q, func(ctx context.Context) ([]model.Organization, error) {
		return q.store.Memberships().ApprovedOrganizations(ctx, riderID, kinds)
	})
}

// AdminOrganizations returns the organizations the rider administers.
func (q *QueryService) AdminOrganizations(ctx context.Context, riderID uuid.UUID) ([]model.Organization, error) {
	return q.MembershipsOf(ctx, riderID, model.AdminKinds()...)
}

func (q *QueryService) PendingRequestsFor(ctx context.Context, orgID uuid.UUID) ([]model.Rider, error) {
	return read(ctx, q, func(ctx context.Context) ([]model.Rider, error) {
		if _, err := q.store.Organizations().FindByID(ctx, orgID); err != nil {
			return nil, err
		}
		return q.store.Memberships().PendingRiders(ctx, orgID)
	})
}

func (q *QueryService) IsAdmin(ctx context.Context, riderID, orgID uuid.UUID) (bool, error) {
	return read(ctx, q, func(ctx context.Context) (bool, error) {
		org, err := q.store.Organizations().FindByID(ctx, orgID)
		if err != nil {
			return false, err
		}
		err = requireAdmin(ctx, q.store, riderID, org)
		if errors.Is(err, domain.ErrNotAnAdmin) {
			return false, nil
		}
		return err == nil, err
	})
}

// Members lists the organization's approved members, admins flagged.
func (q *QueryService) Members(ctx context.Context, orgID uuid.UUID) ([]MemberView, error) {
	return read(ctx, q, func(ctx context.Context) ([]MemberView, error) {
		if _, err := q.store.Organizations().FindByID(ctx, orgID); err != nil {
			return nil, err
		}
		ms, err := q.store.Memberships().FindByOrganization(ctx, orgID, model.StateApproved)
		if err != nil {
			return nil, err
		}

		admins := make(map[uuid.UUID]bool)
		since := make(map[uuid.UUID]time.Time)
		var ids []uuid.UUID
		for _, m := range ms {
			if m.Kind.IsAdmin() {
				admins[m.RiderID] = true
				continue
			}
			since[m.RiderID] = m.CreatedAt
			ids = append(ids, m.RiderID)
		}

		riders, err := q.store.Riders().FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		views := make([]MemberView, 0, len(riders))
		for _, r := range riders {
			views = append(views, MemberView{Rider: r, Admin: admins[r.ID], Since: since[r.ID]})
		}
		return views, nil
	})
}

func (q *QueryService) Profile(ctx context.Context, riderID uuid.UUID) (*RiderProfile, error) {
	return read(ctx, q, func(ctx context.Context) (*RiderProfile, error) {
		rider, err := q.store.Riders().FindByID(ctx, riderID)
		if err != nil {
			return nil, err
		}
		return q.profile(ctx, rider)
	})
}

func (q *QueryService) ProfileByExternalID(ctx context.Context, externalID string) (*RiderProfile, error) {
	return read(ctx, q, func(ctx context.Context) (*RiderProfile, error) {
		rider, err := q.store.Riders().FindByExternalID(ctx, externalID)
		if err != nil {
			return nil, err
		}
		return q.profile(ctx, rider)
	})
}

func (q *QueryService) profile(ctx context.Context, rider *model.Rider) (*RiderProfile, error) {
	ms, err := q.store.Memberships().FindByRider(ctx, rider.ID)
	if err != nil {
		return nil, err
	}

	profile := &RiderProfile{
		Rider:            rider,
		PowerProfileURL:  rider.PowerProfileURL(),
		RacingProfileURL: rider.RacingProfileURL(),
	}
	for _, m := range ms {
		slot := &profile.Club
		if m.Kind.OrganizationKind() == model.OrgKindTeam {
			slot = &profile.Team
		}
		if *slot == nil {
			org, err := q.store.Organizations().FindByID(ctx, m.OrganizationID)
			if err != nil {
				return nil, err
			}
			*slot = &OrganizationMembership{Organization: *org, State: model.StatePending}
		}
		if m.Kind.IsAdmin() {
			(*slot).Admin = m.Approved()
			continue
		}
		(*slot).State = m.State
	}
	return profile, nil
}

// Activity returns activity events newest first with the total match count.
func (q *QueryService) Activity(ctx context.Context, params repository.QueryParams) ([]model.ActivityEvent, int64, error) {
	ctx, cancel := q.bounded(ctx)
	defer cancel()
	events, total, err := q.store.Activity().Query(ctx, params)
	if err != nil {
		return nil, 0, normalize(repository.Translate(err))
	}
	return events, total, nil
}
