package repository_test

import (
	"context"
	"testing"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipRepository_InsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewStore(t)
	alice := storetest.Rider(t, store, "alice", 1)
	club := newOrg(t, store, model.OrgKindClub, "Alpha", alice.ID)

	first, err := store.Memberships().Insert(ctx, &model.Membership{
		RiderID: alice.ID, OrganizationID: club.ID, Kind: model.KindClubMember, State: model.StatePending,
	})
	require.NoError(t, err)

	second, err := store.Memberships().Insert(ctx, &model.Membership{
		RiderID: alice.ID, OrganizationID: club.ID, Kind: model.KindClubMember, State: model.StatePending,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := store.Memberships().FindByRider(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMembershipRepository_OneOrganizationPerCategory(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewStore(t)
	alice := storetest.Rider(t, store, "alice", 1)
	alpha := newOrg(t, store, model.OrgKindClub, "Alpha", alice.ID)
	bravo := newOrg(t, store, model.OrgKindClub, "Bravo", alice.ID)
	team := newOrg(t, store, model.OrgKindTeam, "Team", alice.ID)

	_, err := store.Memberships().Insert(ctx, &model.Membership{
		RiderID: alice.ID, OrganizationID: alpha.ID, Kind: model.KindClubMember, State: model.StatePending,
	})
	require.NoError(t, err)

	_, err = store.Memberships().Insert(ctx, &model.Membership{
		RiderID: alice.ID, OrganizationID: bravo.ID, Kind: model.KindClubMember, State: model.StatePending,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)

	_, err = store.Memberships().Insert(ctx, &model.Membership{
		RiderID: alice.ID, OrganizationID: team.ID, Kind: model.KindTeamMember, State: model.StatePending,
	})
	assert.NoError(t, err)
}

func TestMembershipRepository_UpsertUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewStore(t)
	alice := storetest.Rider(t, store, "alice", 1)
	club := newOrg(t, store, model.OrgKindClub, "Alpha", alice.ID)

	pending, err := store.Memberships().Insert(ctx, &model.Membership{
		RiderID: alice.ID, OrganizationID: club.ID, Kind: model.KindClubMember, State: model.StatePending,
	})
	require.NoError(t, err)

	approved, err := store.Memberships().Upsert(ctx, &model.Membership{
		RiderID: alice.ID, OrganizationID: club.ID, Kind: model.KindClubMember, State: model.StateApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, pending.ID, approved.ID)
	assert.Equal(t, model.StateApproved, approved.State)
}

func TestMembershipRepository_TransitionAndCount(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewStore(t)
	alice := storetest.Rider(t, store, "alice", 1)
	bob := storetest.Rider(t, store, "bob", 2)
	club := newOrg(t, store, model.OrgKindClub, "Alpha", alice.ID)

	_, err := store.Memberships().Upsert(ctx, &model.Membership{
		RiderID: alice.ID, OrganizationID: club.ID, Kind: model.KindClubAdmin, State: model.StateApproved,
	})
	require.NoError(t, err)
	req, err := store.Memberships().Insert(ctx, &model.Membership{
		RiderID: bob.ID, OrganizationID: club.ID, Kind: model.KindClubMember, State: model.StatePending,
	})
	require.NoError(t, err)

	pending, err := store.Memberships().PendingRiders(ctx, club.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, bob.ID, pending[0].ID)

	moved, err := store.Memberships().Transition(ctx, req.ID, model.StatePending, model.StateApproved)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = store.Memberships().Transition(ctx, req.ID, model.StatePending, model.StateApproved)
	require.NoError(t, err)
	assert.False(t, moved)

	admins, err := store.Memberships().CountApproved(ctx, club.ID, model.KindClubAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, admins)

	orgs, err := store.Memberships().ApprovedOrganizations(ctx, bob.ID, []model.MembershipKind{model.KindClubMember})
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, club.ID, orgs[0].ID)

	deleted, err := store.Memberships().Delete(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.Memberships().Find(ctx, bob.ID, club.ID, model.KindClubMember)
	assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
}

func TestMembershipRepository_FindApprovedInBatches(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewStore(t)
	club := newOrg(t, store, model.OrgKindClub, "Alpha", storetest.Rider(t, store, "owner", 99).ID)

	for i, name := range []string{"a1", "a2", "a3"} {
		rider := storetest.Rider(t, store, name, int64(i+1))
		_, err := store.Memberships().Upsert(ctx, &model.Membership{
			RiderID: rider.ID, OrganizationID: club.ID, Kind: model.KindClubMember, State: model.StateApproved,
		})
		require.NoError(t, err)
	}

	var batches, total int
	err := store.Memberships().FindApprovedInBatches(ctx, 2, func(ms []model.Membership) error {
		batches++
		total += len(ms)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, batches)
	assert.Equal(t, 3, total)
}
