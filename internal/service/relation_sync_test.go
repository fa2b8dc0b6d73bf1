package service_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dangerclosesec/peloton/internal/audit"
	"github.com/dangerclosesec/peloton/internal/mocks"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRelationSyncService_Forward(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := mocks.NewMockRelationWriter(ctrl)
	relationSync := service.NewRelationSyncService(writer, nil, 0, nil)

	club := model.Entity{Type: "club", ID: "c1"}
	rider := model.Subject{Type: model.SubjectRider, ID: "r1"}

	gomock.InOrder(
		writer.EXPECT().WriteRelationship(gomock.Any(), club, "admin", rider).Return(nil),
		writer.EXPECT().DeleteRelationship(gomock.Any(), club, "member", rider).Return(errors.New("unavailable")),
	)

	err := relationSync.Forward(context.Background(), audit.Entry{
		Event: &model.ActivityEvent{Operation: model.OpAddAdmin},
		Changes: []model.RelationChange{
			{Op: model.RelationWrite, Entity: club, Relation: "admin", Subject: rider},
			{Op: model.RelationDelete, Entity: club, Relation: "member", Subject: rider},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestRelationSyncService_DryRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	relationSync := service.NewRelationSyncService(mocks.NewMockRelationWriter(ctrl), nil, 0, nil)
	relationSync.SetDryRun(true)

	err := relationSync.Apply(context.Background(), model.RelationChange{
		Op:       model.RelationWrite,
		Entity:   model.Entity{Type: "team", ID: "t1"},
		Relation: "member",
		Subject:  model.Subject{Type: model.SubjectRider, ID: "r1"},
	})
	assert.NoError(t, err)
}

// Engine commits reach the writer through the forwarder.
func TestRelationSyncService_EngineIntegration(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine, store := newEngine(t)
	alice := register(t, engine, "alice", 1)
	bob := register(t, engine, "bob", 2)
	club := createClub(t, engine, alice, "Alpha")

	writer := mocks.NewMockRelationWriter(ctrl)
	relationSync := service.NewRelationSyncService(writer, store, 0, nil)
	synced := service.NewEngine(store, withTestDefaults([]service.EngineOption{service.WithForwarder(relationSync)})...)

	entity := model.Entity{Type: "club", ID: club.ID.String()}
	subject := model.Subject{Type: model.SubjectRider, ID: bob.ID.String()}

	gomock.InOrder(
		writer.EXPECT().WriteRelationship(gomock.Any(), entity, "member", subject).Return(nil),
		writer.EXPECT().WriteRelationship(gomock.Any(), entity, "admin", subject).Return(nil),
	)
	writer.EXPECT().DeleteRelationship(gomock.Any(), entity, "admin", subject).Return(nil)

	_, err := synced.AddAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID)
	require.NoError(t, err)
	require.NoError(t, synced.RemoveAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID))
}

func TestRelationSyncService_Reconcile(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine, store := newEngine(t)
	alice := register(t, engine, "alice", 1)
	bob := register(t, engine, "bob", 2)
	carol := register(t, engine, "carol", 3)
	club := createClub(t, engine, alice, "Alpha")
	team, err := engine.CreateOrganization(ctx, service.ActorByID(alice.ID), service.CreateOrganizationInput{
		Kind:     model.OrgKindTeam,
		Name:     "Alpha Racing",
		ParentID: &club.ID,
	})
	require.NoError(t, err)
	join(t, engine, alice, bob, club)
	_, err = engine.RequestJoin(ctx, service.ActorByID(carol.ID), club.ID, "")
	require.NoError(t, err)

	writer := mocks.NewMockRelationWriter(ctrl)
	writer.EXPECT().
		WriteRelationship(gomock.Any(), model.Entity{Type: "team", ID: team.ID.String()}, "parent", model.Subject{Type: "club", ID: club.ID.String()}).
		Return(errors.New("unavailable"))
	// club admin, club member x2, team admin, team member
	writer.EXPECT().WriteRelationship(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(5)
	writer.EXPECT().ReadRelationships(gomock.Any(), "club", "").Return(nil, "", nil)
	writer.EXPECT().ReadRelationships(gomock.Any(), "team", "").Return(nil, "", nil)

	relationSync := service.NewRelationSyncService(writer, store, 0, nil)
	relationSync.SetBatchSize(2)

	stats, err := relationSync.Reconcile(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.Relations)
	assert.EqualValues(t, 0, stats.Deleted)
	assert.EqualValues(t, 1, stats.Failed)
}

// A revoke that never reached the authorization system is repaired by the
// next reconcile; tuples outside the managed relations survive.
func TestRelationSyncService_ReconcileRemovesStaleRelations(t *testing.T) {
	ctx := context.Background()

	engine, store := newEngine(t)
	alice := register(t, engine, "alice", 1)
	bob := register(t, engine, "bob", 2)
	club := createClub(t, engine, alice, "Alpha")
	join(t, engine, alice, bob, club)

	relations := newMemoryRelations(2)
	relationSync := service.NewRelationSyncService(relations, store, 0, nil)
	synced := service.NewEngine(store, withTestDefaults([]service.EngineOption{service.WithForwarder(relationSync)})...)

	_, err := synced.AddAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID)
	require.NoError(t, err)

	bobAdmin := model.RelationChange{
		Entity:   model.Entity{Type: "club", ID: club.ID.String()},
		Relation: "admin",
		Subject:  model.Subject{Type: model.SubjectRider, ID: bob.ID.String()},
	}
	require.True(t, relations.has(bobAdmin.Key()))

	relations.setFailDeletes(true)
	require.NoError(t, synced.RemoveAdmin(ctx, service.ActorByID(alice.ID), bob.ID, club.ID))
	require.True(t, relations.has(bobAdmin.Key()), "delete should have been lost")
	relations.setFailDeletes(false)

	viewer := model.RelationChange{
		Entity:   model.Entity{Type: "club", ID: club.ID.String()},
		Relation: "viewer",
		Subject:  model.Subject{Type: model.SubjectRider, ID: "outside"},
	}
	require.NoError(t, relations.WriteRelationship(ctx, viewer.Entity, viewer.Relation, viewer.Subject))

	stats, err := relationSync.Reconcile(ctx)
	require.NoError(t, err)
	// alice admin, alice member, bob member
	assert.EqualValues(t, 3, stats.Relations)
	assert.EqualValues(t, 1, stats.Deleted)
	assert.EqualValues(t, 0, stats.Failed)

	assert.False(t, relations.has(bobAdmin.Key()))
	assert.True(t, relations.has(viewer.Key()))
	assert.Equal(t, 4, relations.len())
}

func TestRelationSyncService_ReconcileReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, store := newEngine(t)
	writer := mocks.NewMockRelationWriter(ctrl)
	writer.EXPECT().ReadRelationships(gomock.Any(), "club", "").Return(nil, "", errors.New("unavailable"))

	_, err := service.NewRelationSyncService(writer, store, 0, nil).Reconcile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading club relations")
}

// memoryRelations is an in-memory authorization store paging its tuples in
// key order.
type memoryRelations struct {
	mu          sync.Mutex
	tuples      map[string]model.RelationChange
	pageSize    int
	failDeletes bool
}

func newMemoryRelations(pageSize int) *memoryRelations {
	return &memoryRelations{tuples: make(map[string]model.RelationChange), pageSize: pageSize}
}

func (m *memoryRelations) WriteRelationship(ctx context.Context, entity model.Entity, relation string, subject model.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := model.RelationChange{Op: model.RelationWrite, Entity: entity, Relation: relation, Subject: subject}
	m.tuples[c.Key()] = c
	return nil
}

func (m *memoryRelations) DeleteRelationship(ctx context.Context, entity model.Entity, relation string, subject model.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeletes {
		return errors.New("unavailable")
	}
	c := model.RelationChange{Entity: entity, Relation: relation, Subject: subject}
	delete(m.tuples, c.Key())
	return nil
}

func (m *memoryRelations) ReadRelationships(ctx context.Context, entityType, pageToken string) ([]model.RelationChange, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for key := range m.tuples {
		if strings.HasPrefix(key, entityType+":") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if pageToken != "" {
		var err error
		if start, err = strconv.Atoi(pageToken); err != nil {
			return nil, "", err
		}
	}
	end := start + m.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	page := make([]model.RelationChange, 0, end-start)
	for _, key := range keys[start:end] {
		page = append(page, m.tuples[key])
	}
	next := ""
	if end < len(keys) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

func (m *memoryRelations) setFailDeletes(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDeletes = fail
}

func (m *memoryRelations) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tuples[key]
	return ok
}

func (m *memoryRelations) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tuples)
}
