package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dangerclosesec/peloton/internal/audit"
	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/dangerclosesec/peloton/internal/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func newEngine(t *testing.T, opts ...service.EngineOption) (*service.Engine, *repository.Store) {
	t.Helper()
	store := storetest.NewStore(t)
	return service.NewEngine(store, withTestDefaults(opts)...), store
}

func withTestDefaults(opts []service.EngineOption) []service.EngineOption {
	return append([]service.EngineOption{
		service.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	}, opts...)
}

func register(t *testing.T, engine *service.Engine, name string, ratingID int64) *model.Rider {
	t.Helper()
	rider, err := engine.Register(context.Background(), service.RegisterInput{
		ExternalID:    "ext-" + name,
		DisplayName:   name,
		RatingID:      ratingID,
		TermsAccepted: true,
	})
	require.NoError(t, err)
	return rider
}

func createClub(t *testing.T, engine *service.Engine, creator *model.Rider, name string) *model.Organization {
	t.Helper()
	org, err := engine.CreateOrganization(context.Background(), service.ActorByID(creator.ID), service.CreateOrganizationInput{
		Kind: model.OrgKindClub,
		Name: name,
	})
	require.NoError(t, err)
	return org
}

// join files a request for rider and has admin approve it.
func join(t *testing.T, engine *service.Engine, admin, rider *model.Rider, org *model.Organization) {
	t.Helper()
	ctx := context.Background()
	_, err := engine.RequestJoin(ctx, service.ActorByID(rider.ID), org.ID, "")
	require.NoError(t, err)
	_, err = engine.ApproveJoin(ctx, service.ActorByID(admin.ID), rider.ID, org.ID)
	require.NoError(t, err)
}

// removeAdminsConcurrently has every admin of a fresh club remove itself at
// once and checks that exactly one is refused. suffix keeps names unique on
// shared databases.
func removeAdminsConcurrently(t *testing.T, engine *service.Engine, store *repository.Store, admins int, suffix string) {
	t.Helper()
	ctx := context.Background()

	base := int64(1)
	if suffix != "" {
		base = time.Now().UnixNano()%1_000_000_000*10 + 1
	}
	riders := make([]*model.Rider, admins)
	for i := range riders {
		riders[i] = register(t, engine, "admin-"+string(rune('a'+i))+suffix, base+int64(i))
	}
	club := createClub(t, engine, riders[0], "Alpha"+suffix)
	for _, r := range riders[1:] {
		_, err := engine.AddAdmin(ctx, service.ActorByID(riders[0].ID), r.ID, club.ID)
		require.NoError(t, err)
	}

	var mu sync.Mutex
	var succeeded, lastAdmin int
	var g errgroup.Group
	for _, r := range riders {
		g.Go(func() error {
			err := engine.RemoveAdmin(ctx, service.ActorByID(r.ID), r.ID, club.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrLastAdmin):
				lastAdmin++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, admins-1, succeeded)
	assert.Equal(t, 1, lastAdmin)
	assert.EqualValues(t, 1, approvedAdmins(t, store, club))
}

func approvedAdmins(t *testing.T, store *repository.Store, org *model.Organization) int64 {
	t.Helper()
	n, err := store.Memberships().CountApproved(context.Background(), org.ID, model.KindFor(org.Kind, model.RoleAdmin))
	require.NoError(t, err)
	return n
}

func TestEngine_Register(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t)

	rider := register(t, engine, "Alpha", 1001)
	assert.True(t, rider.Active)
	assert.True(t, rider.TermsAccepted)

	tests := []struct {
		name  string
		input service.RegisterInput
		want  error
	}{
		{
			name:  "duplicate display name",
			input: service.RegisterInput{ExternalID: "ext-other", DisplayName: "Alpha", RatingID: 1002, TermsAccepted: true},
			want:  domain.ErrDuplicateName,
		},
		{
			name:  "duplicate external id",
			input: service.RegisterInput{ExternalID: "ext-Alpha", DisplayName: "Bravo", RatingID: 1003, TermsAccepted: true},
			want:  domain.ErrDuplicateExternalID,
		},
		{
			name:  "duplicate rating id",
			input: service.RegisterInput{ExternalID: "ext-charlie", DisplayName: "Charlie", RatingID: 1001, TermsAccepted: true},
			want:  domain.ErrDuplicateRatingID,
		},
		{
			name:  "terms not accepted",
			input: service.RegisterInput{ExternalID: "ext-delta", DisplayName: "Delta", RatingID: 1004},
			want:  domain.ErrTermsNotAccepted,
		},
		{
			name:  "name too short",
			input: service.RegisterInput{ExternalID: "ext-e", DisplayName: "Ed", RatingID: 1005, TermsAccepted: true},
			want:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Register(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEngine_CreateOrganization(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	alice := register(t, engine, "alice", 1)
	bob := register(t, engine, "bob", 2)

	club := createClub(t, engine, alice, "Alpha")
	assert.Equal(t, model.OrgKindClub, club.Kind)
	assert.True(t, club.Active)
	assert.Equal(t, alice.ID, club.CreatedByID)

	for _, kind := range model.KindsFor(model.OrgKindClub) {
		m, err := store.Memberships().Find(ctx, alice.ID, club.ID, kind)
		require.NoError(t, err)
		assert.True(t, m.Approved())
	}

	t.Run("duplicate name", func(t *testing.T) {
		_, err := engine.CreateOrganization(ctx, service.ActorByID(bob.ID), service.CreateOrganizationInput{
			Kind: model.OrgKindClub,
			Name: "Alpha",
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateName)
	})

	t.Run("second club for the same rider", func(t *testing.T) {
		_, err := engine.CreateOrganization(ctx, service.ActorByID(alice.ID), service.CreateOrganizationInput{
			Kind: model.OrgKindClub,
			Name: "Bravo",
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)

		_, err = store.Organizations().FindByName(ctx, "Bravo")
		assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
	})

	t.Run("unregistered creator", func(t *testing.T) {
		_, err := engine.CreateOrganization(ctx, service.ActorByExternalID("ghost"), service.CreateOrganizationInput{
			Kind: model.OrgKindClub,
			Name: "Ghosts",
		})
		assert.ErrorIs(t, err, domain.ErrRiderNotRegistered)
	})

	t.Run("team under a club", func(t *testing.T) {
		team, err := engine.CreateOrganization(ctx, service.ActorByID(alice.ID), service.CreateOrganizationInput{
			Kind:     model.OrgKindTeam,
			Name:     "Alpha Racing",
			ParentID: &club.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, team.ParentID)
		assert.Equal(t, club.ID, *team.ParentID)
	})

	t.Run("parent must be administered by the creator", func(t *testing.T) {
		_, err := engine.CreateOrganization(ctx, service.ActorByID(bob.ID), service.CreateOrganizationInput{
			Kind:     model.OrgKindTeam,
			Name:     "Bob Racing",
			ParentID: &club.ID,
		})
		assert.ErrorIs(t, err, domain.ErrNotAnAdmin)
	})

	t.Run("clubs have no parent", func(t *testing.T) {
		_, err := engine.CreateOrganization(ctx, service.ActorByID(bob.ID), service.CreateOrganizationInput{
			Kind:     model.OrgKindClub,
			Name:     "Bob Club",
			ParentID: &club.ID,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidParent)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := engine.CreateOrganization(ctx, service.ActorByID(bob.ID), service.CreateOrganizationInput{
			Kind: "league",
			Name: "League",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEngine_RequestJoin(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	admin := register(t, engine, "admin", 1)
	rider := register(t, engine, "rider", 2)
	club := createClub(t, engine, admin, "Alpha")

	first, err := engine.RequestJoin(ctx, service.ActorByID(rider.ID), club.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatePending, first.State)
	assert.Equal(t, model.KindClubMember, first.Kind)

	t.Run("repeat returns the same request", func(t *testing.T) {
		again, err := engine.RequestJoin(ctx, service.ActorByID(rider.ID), club.ID, model.KindClubMember)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		_, total, err := store.Activity().Query(ctx, repository.QueryParams{
			Operation: model.OpRequestJoin,
			Outcome:   domain.OutcomeOK,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("wrong kind", func(t *testing.T) {
		_, err := engine.RequestJoin(ctx, service.ActorByID(rider.ID), club.ID, model.KindTeamMember)
		assert.ErrorIs(t, err, domain.ErrInvalidMembershipKind)
	})

	t.Run("unknown organization", func(t *testing.T) {
		_, err := engine.RequestJoin(ctx, service.ActorByID(rider.ID), uuid.New(), "")
		assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
	})

	t.Run("already approved", func(t *testing.T) {
		_, err := engine.RequestJoin(ctx, service.ActorByID(admin.ID), club.ID, "")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	})
}

func TestEngine_OneOrganizationPerCategory(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t)

	alice := register(t, engine, "alice", 1)
	bob := register(t, engine, "bob", 2)
	carol := register(t, engine, "carol", 3)
	dave := register(t, engine, "dave", 4)

	alpha := createClub(t, engine, alice, "Alpha")
	bravo := createClub(t, engine, bob, "Bravo")
	join(t, engine, alice, carol, alpha)

	_, err := engine.RequestJoin(ctx, service.ActorByID(carol.ID), bravo.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)

	t.Run("pending request counts", func(t *testing.T) {
		_, err := engine.RequestJoin(ctx, service.ActorByID(dave.ID), alpha.ID, "")
		require.NoError(t, err)

		_, err = engine.RequestJoin(ctx, service.ActorByID(dave.ID), bravo.ID, "")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)

		_, err = engine.AddMember(ctx, service.ActorByID(bob.ID), dave.ID, bravo.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	})

	t.Run("club and team are independent", func(t *testing.T) {
		team, err := engine.CreateOrganization(ctx, service.ActorByID(bob.ID), service.CreateOrganizationInput{
			Kind: model.OrgKindTeam,
			Name: "Bravo Racing",
		})
		require.NoError(t, err)

		m, err := engine.RequestJoin(ctx, service.ActorByID(carol.ID), team.ID, "")
		require.NoError(t, err)
		assert.Equal(t, model.KindTeamMember, m.Kind)
	})
}

func TestEngine_ApproveAndReject(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	admin := register(t, engine, "admin", 1)
	member := register(t, engine, "member", 2)
	applicant := register(t, engine, "applicant", 3)
	club := createClub(t, engine, admin, "Alpha")
	join(t, engine, admin, member, club)

	_, err := engine.RequestJoin(ctx, service.ActorByID(applicant.ID), club.ID, "")
	require.NoError(t, err)

	t.Run("plain member cannot approve", func(t *testing.T) {
		_, err := engine.ApproveJoin(ctx, service.ActorByID(member.ID), applicant.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrNotAnAdmin)

		m, err := store.Memberships().Find(ctx, applicant.ID, club.ID, model.KindClubMember)
		require.NoError(t, err)
		assert.Equal(t, model.StatePending, m.State)

		events, _, err := store.Activity().Query(ctx, repository.QueryParams{Operation: model.OpApproveJoin, Outcome: "not_an_admin"})
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].ActorID)
		assert.Equal(t, member.ID, *events[0].ActorID)
	})

	t.Run("reject removes the request", func(t *testing.T) {
		require.NoError(t, engine.RejectJoin(ctx, service.ActorByID(admin.ID), applicant.ID, club.ID))

		_, err := store.Memberships().Find(ctx, applicant.ID, club.ID, model.KindClubMember)
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)

		_, err = engine.ApproveJoin(ctx, service.ActorByID(admin.ID), applicant.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("approving an approved member", func(t *testing.T) {
		_, err := engine.ApproveJoin(ctx, service.ActorByID(admin.ID), member.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyInState)
	})

	t.Run("rejecting an approved member", func(t *testing.T) {
		err := engine.RejectJoin(ctx, service.ActorByID(admin.ID), member.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("applicant deactivated after requesting", func(t *testing.T) {
		idle := register(t, engine, "idle", 4)
		_, err := engine.RequestJoin(ctx, service.ActorByID(idle.ID), club.ID, "")
		require.NoError(t, err)
		_, err = engine.DeactivateRider(ctx, idle.ID)
		require.NoError(t, err)

		_, err = engine.ApproveJoin(ctx, service.ActorByID(admin.ID), idle.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrRiderInactive)

		m, err := store.Memberships().Find(ctx, idle.ID, club.ID, model.KindClubMember)
		require.NoError(t, err)
		assert.Equal(t, model.StatePending, m.State)

		require.NoError(t, engine.RejectJoin(ctx, service.ActorByID(admin.ID), idle.ID, club.ID))
	})
}

func TestEngine_AddMemberAndAdmin(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	admin := register(t, engine, "admin", 1)
	target := register(t, engine, "target", 2)
	club := createClub(t, engine, admin, "Alpha")

	m, err := engine.AddAdmin(ctx, service.ActorByID(admin.ID), target.ID, club.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindClubAdmin, m.Kind)
	assert.True(t, m.Approved())

	member, err := store.Memberships().Find(ctx, target.ID, club.ID, model.KindClubMember)
	require.NoError(t, err)
	assert.True(t, member.Approved())
	assert.EqualValues(t, 2, approvedAdmins(t, store, club))

	t.Run("repeat is a no-op", func(t *testing.T) {
		again, err := engine.AddAdmin(ctx, service.ActorByID(admin.ID), target.ID, club.ID)
		require.NoError(t, err)
		assert.Equal(t, m.ID, again.ID)
	})

	t.Run("pending request approved in place", func(t *testing.T) {
		applicant := register(t, engine, "applicant", 3)
		req, err := engine.RequestJoin(ctx, service.ActorByID(applicant.ID), club.ID, "")
		require.NoError(t, err)

		added, err := engine.AddMember(ctx, service.ActorByID(admin.ID), applicant.ID, club.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ID, added.ID)
		assert.True(t, added.Approved())
	})

	t.Run("unregistered target", func(t *testing.T) {
		_, err := engine.AddMember(ctx, service.ActorByID(admin.ID), uuid.New(), club.ID)
		assert.ErrorIs(t, err, domain.ErrTargetNotRegistered)
	})

	t.Run("inactive target", func(t *testing.T) {
		idle := register(t, engine, "idle", 4)
		_, err := engine.DeactivateRider(ctx, idle.ID)
		require.NoError(t, err)

		_, err = engine.AddMember(ctx, service.ActorByID(admin.ID), idle.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrRiderInactive)
	})
}

func TestEngine_SoleAdminIsKept(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	admin := register(t, engine, "admin", 1)
	club := createClub(t, engine, admin, "Alpha")
	actor := service.ActorByID(admin.ID)

	assert.ErrorIs(t, engine.RemoveAdmin(ctx, actor, admin.ID, club.ID), domain.ErrLastAdmin)
	assert.ErrorIs(t, engine.RemoveMember(ctx, actor, admin.ID, club.ID), domain.ErrLastAdmin)
	assert.ErrorIs(t, engine.Leave(ctx, actor, club.ID, model.KindClubAdmin), domain.ErrLastAdmin)
	assert.ErrorIs(t, engine.Leave(ctx, actor, club.ID, model.KindClubMember), domain.ErrLastAdmin)

	assert.EqualValues(t, 1, approvedAdmins(t, store, club))
	_, err := store.Memberships().Find(ctx, admin.ID, club.ID, model.KindClubMember)
	assert.NoError(t, err)
}

func TestEngine_RemoveAdmin(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	alice := register(t, engine, "alice", 1)
	bob := register(t, engine, "bob", 2)
	club := createClub(t, engine, alice, "Alpha")
	_, err := engine.AddAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID)
	require.NoError(t, err)

	require.NoError(t, engine.RemoveAdmin(ctx, service.ActorByID(alice.ID), alice.ID, club.ID))
	assert.EqualValues(t, 1, approvedAdmins(t, store, club))

	_, err = store.Memberships().Find(ctx, alice.ID, club.ID, model.KindClubMember)
	assert.NoError(t, err, "removing admin keeps the member record")

	err = engine.RemoveAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID)
	assert.ErrorIs(t, err, domain.ErrNotAnAdmin)
}

// On SQLite the single connection already serialises these transactions; the
// postgres build tag runs the same race against the organization row lock.
func TestEngine_ConcurrentAdminRemoval(t *testing.T) {
	for _, admins := range []int{2, 4} {
		t.Run("self removal", func(t *testing.T) {
			engine, store := newEngine(t)
			removeAdminsConcurrently(t, engine, store, admins, "")
		})
	}

	t.Run("mutual removal", func(t *testing.T) {
		ctx := context.Background()
		engine, store := newEngine(t)

		alice := register(t, engine, "alice", 1)
		bob := register(t, engine, "bob", 2)
		club := createClub(t, engine, alice, "Alpha")
		_, err := engine.AddAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[0] = engine.RemoveAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID)
		}()
		go func() {
			defer wg.Done()
			errs[1] = engine.RemoveAdmin(ctx, service.ActorByID(bob.ID), alice.ID, club.ID)
		}()
		wg.Wait()

		failures := 0
		for _, err := range errs {
			if err != nil {
				failures++
				assert.True(t, errors.Is(err, domain.ErrNotAnAdmin) || errors.Is(err, domain.ErrLastAdmin), "unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, failures)
		assert.EqualValues(t, 1, approvedAdmins(t, store, club))
	})
}

func TestEngine_Leave(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	alice := register(t, engine, "alice", 1)
	bob := register(t, engine, "bob", 2)
	carol := register(t, engine, "carol", 3)
	club := createClub(t, engine, alice, "Alpha")
	_, err := engine.AddAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID)
	require.NoError(t, err)
	join(t, engine, alice, carol, club)

	t.Run("admin steps down", func(t *testing.T) {
		require.NoError(t, engine.Leave(ctx, service.ActorByID(bob.ID), club.ID, model.KindClubAdmin))

		_, err := store.Memberships().Find(ctx, bob.ID, club.ID, model.KindClubAdmin)
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
		_, err = store.Memberships().Find(ctx, bob.ID, club.ID, model.KindClubMember)
		assert.NoError(t, err)
	})

	t.Run("member leaves", func(t *testing.T) {
		require.NoError(t, engine.Leave(ctx, service.ActorByID(carol.ID), club.ID, model.KindClubMember))

		_, err := store.Memberships().Find(ctx, carol.ID, club.ID, model.KindClubMember)
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)

		err = engine.Leave(ctx, service.ActorByID(carol.ID), club.ID, model.KindClubMember)
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
	})

	t.Run("withdraws a pending request", func(t *testing.T) {
		_, err := engine.RequestJoin(ctx, service.ActorByID(carol.ID), club.ID, "")
		require.NoError(t, err)
		require.NoError(t, engine.Leave(ctx, service.ActorByID(carol.ID), club.ID, model.KindClubMember))

		pending, err := store.Memberships().PendingRiders(ctx, club.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("kind must match the organization", func(t *testing.T) {
		err := engine.Leave(ctx, service.ActorByID(bob.ID), club.ID, model.KindTeamMember)
		assert.ErrorIs(t, err, domain.ErrInvalidMembershipKind)
	})

	t.Run("admin removes a former admin", func(t *testing.T) {
		require.NoError(t, engine.RemoveMember(ctx, service.ActorByID(alice.ID), bob.ID, club.ID))
		_, err := store.Memberships().Find(ctx, bob.ID, club.ID, model.KindClubMember)
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
	})
}

func TestEngine_SetOrgActive(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	admin := register(t, engine, "admin", 1)
	member := register(t, engine, "member", 2)
	rider := register(t, engine, "rider", 3)
	applicant := register(t, engine, "applicant", 4)
	club := createClub(t, engine, admin, "Alpha")
	join(t, engine, admin, member, club)

	_, err := engine.RequestJoin(ctx, service.ActorByID(applicant.ID), club.ID, "")
	require.NoError(t, err)

	_, err = engine.SetOrgActive(ctx, service.ActorByID(member.ID), club.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotAnAdmin)

	org, err := engine.SetOrgActive(ctx, service.ActorByID(admin.ID), club.ID, false)
	require.NoError(t, err)
	assert.False(t, org.Active)

	_, err = engine.SetOrgActive(ctx, service.ActorByID(admin.ID), club.ID, false)
	assert.ErrorIs(t, err, domain.ErrAlreadyInState)

	_, err = engine.RequestJoin(ctx, service.ActorByID(rider.ID), club.ID, "")
	assert.ErrorIs(t, err, domain.ErrOrganizationInactive)

	_, err = store.Memberships().Find(ctx, member.ID, club.ID, model.KindClubMember)
	assert.NoError(t, err, "deactivation keeps memberships")

	t.Run("no grants while inactive", func(t *testing.T) {
		_, err := engine.ApproveJoin(ctx, service.ActorByID(admin.ID), applicant.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrOrganizationInactive)

		_, err = engine.AddMember(ctx, service.ActorByID(admin.ID), rider.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrOrganizationInactive)

		_, err = engine.AddAdmin(ctx, service.ActorByID(admin.ID), member.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrOrganizationInactive)
		_, err = store.Memberships().Find(ctx, member.ID, club.ID, model.KindClubAdmin)
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
		assert.EqualValues(t, 1, approvedAdmins(t, store, club))

		_, err = engine.AddAdmin(ctx, service.ActorByID(admin.ID), rider.ID, club.ID)
		assert.ErrorIs(t, err, domain.ErrOrganizationInactive)
		_, err = store.Memberships().Find(ctx, rider.ID, club.ID, model.KindClubMember)
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)

		req, err := store.Memberships().Find(ctx, applicant.ID, club.ID, model.KindClubMember)
		require.NoError(t, err)
		assert.Equal(t, model.StatePending, req.State)
	})

	org, err = engine.SetOrgActive(ctx, service.ActorByID(admin.ID), club.ID, true)
	require.NoError(t, err)
	assert.True(t, org.Active)

	approved, err := engine.ApproveJoin(ctx, service.ActorByID(admin.ID), applicant.ID, club.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved())
}

func TestEngine_RiderActivation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t)

	admin := register(t, engine, "admin", 1)
	rider := register(t, engine, "rider", 2)
	club := createClub(t, engine, admin, "Alpha")

	got, err := engine.DeactivateRider(ctx, rider.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = engine.DeactivateRider(ctx, rider.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyInState)

	_, err = engine.RequestJoin(ctx, service.ActorByID(rider.ID), club.ID, "")
	assert.ErrorIs(t, err, domain.ErrRiderInactive)

	got, err = engine.ActivateRider(ctx, rider.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)

	_, err = engine.ActivateRider(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRiderNotFound)
}

func TestEngine_ForwardsCommittedChanges(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var entries []audit.Entry
	forwarder := audit.ForwarderFunc(func(ctx context.Context, entry audit.Entry) error {
		mu.Lock()
		defer mu.Unlock()
		entries = append(entries, entry)
		return errors.New("downstream unavailable")
	})
	engine, store := newEngine(t, service.WithForwarder(forwarder))

	admin := register(t, engine, "admin", 1)
	club := createClub(t, engine, admin, "Alpha")

	_, err := engine.RequestJoin(ctx, service.ActorByID(admin.ID), club.ID, "")
	require.ErrorIs(t, err, domain.ErrAlreadyMember)

	require.Len(t, entries, 2, "failed operations are not forwarded")
	assert.Equal(t, model.OpRegister, entries[0].Event.Operation)
	assert.Empty(t, entries[0].Changes)

	created := entries[1]
	assert.Equal(t, model.OpCreateOrganization, created.Event.Operation)
	assert.Equal(t, domain.OutcomeOK, created.Event.Outcome)
	require.Len(t, created.Changes, 2)
	for _, change := range created.Changes {
		assert.Equal(t, model.RelationWrite, change.Op)
		assert.Equal(t, model.Entity{Type: "club", ID: club.ID.String()}, change.Entity)
		assert.Equal(t, model.Subject{Type: model.SubjectRider, ID: admin.ID.String()}, change.Subject)
	}

	stored, err := store.Activity().FindByID(ctx, created.Event.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.OrganizationID)
	assert.Equal(t, club.ID, *stored.OrganizationID)
}

// failActivityWrites makes the first n activity inserts fail with a busy error.
func failActivityWrites(t *testing.T, db *gorm.DB, n int64) *atomic.Int64 {
	t.Helper()
	var calls atomic.Int64
	err := db.Callback().Create().Before("gorm:create").Register("test:busy_activity", func(tx *gorm.DB) {
		if tx.Statement.Table != "activity_events" {
			return
		}
		if calls.Add(1) <= n {
			tx.AddError(errors.New("database is locked"))
		}
	})
	require.NoError(t, err)
	return &calls
}

func TestEngine_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers", func(t *testing.T) {
		db := storetest.NewDB(t)
		store := repository.NewStore(db)
		engine := service.NewEngine(store, withTestDefaults(nil)...)
		rider := storetest.Rider(t, store, "admin", 1)

		calls := failActivityWrites(t, db, 1)
		club := createClub(t, engine, rider, "Alpha")

		assert.EqualValues(t, 2, calls.Load())
		orgs, total, err := store.Organizations().List(ctx, repository.OrganizationFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, club.ID, orgs[0].ID)
	})

	t.Run("gives up", func(t *testing.T) {
		db := storetest.NewDB(t)
		store := repository.NewStore(db)
		engine := service.NewEngine(store, withTestDefaults([]service.EngineOption{service.WithMaxRetries(2)})...)
		rider := storetest.Rider(t, store, "admin", 1)

		failActivityWrites(t, db, 100)
		_, err := engine.CreateOrganization(ctx, service.ActorByID(rider.ID), service.CreateOrganizationInput{
			Kind: model.OrgKindClub,
			Name: "Alpha",
		})
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Equal(t, domain.KindStoreUnavailable, domain.KindOf(err))

		_, err = store.Organizations().FindByName(ctx, "Alpha")
		assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
	})
}
