// internal/auth/permify.go

package auth

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	v1 "buf.build/gen/go/permifyco/permify/protocolbuffers/go/base/v1"
	permify_grpc "github.com/Permify/permify-go/grpc"
	"github.com/dangerclosesec/peloton/internal/model"
)

// Schema is the Permify model the membership relations are written against.
//
//go:embed schema.perm
var Schema string

const readPageSize uint32 = 100

type PermifyService struct {
	client        *permify_grpc.Client
	tenant        string
	schemaVersion string
	depth         int32

	mu        sync.Mutex
	snapToken string
}

func WithTenant(tenant string) func(*PermifyService) {
	return func(s *PermifyService) {
		s.tenant = tenant
	}
}

// WithSchemaVersion sets the schema version for the Permify service
func WithSchemaVersion(schemaVersion string) func(*PermifyService) {
	return func(s *PermifyService) {
		s.schemaVersion = schemaVersion
	}
}

// WithSnapToken sets the snap token for the Permify service
func WithSnapToken(snapToken string) func(*PermifyService) {
	return func(s *PermifyService) {
		s.snapToken = snapToken
	}
}

// WithDepth sets the depth for the Permify service
func WithDepth(depth int32) func(*PermifyService) {
	return func(s *PermifyService) {
		s.depth = depth
	}
}

// NewPermifyService creates a new Permify service
func NewPermifyService(host string, options ...func(*PermifyService)) (*PermifyService, error) {
	client, err := permify_grpc.NewClient(
		permify_grpc.Config{
			Endpoint: host,
		},
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)

	if err != nil {
		return nil, err
	}

	service := &PermifyService{client: client, depth: 50}
	for _, o := range options {
		o(service)
	}

	if service.tenant == "" {
		service.tenant = "t1"
	}

	return service, nil
}

// WriteSchema installs the peloton model and remembers the version Permify assigns.
func (s *PermifyService) WriteSchema(ctx context.Context) (string, error) {
	resp, err := s.client.Schema.Write(ctx, &v1.SchemaWriteRequest{
		TenantId: s.tenant,
		Schema:   Schema,
	})
	if err != nil {
		return "", fmt.Errorf("writing permify schema: %w", err)
	}
	s.schemaVersion = resp.SchemaVersion
	return resp.SchemaVersion, nil
}

// CheckPermission checks if a subject has a permission on an entity
func (s *PermifyService) CheckPermission(ctx context.Context, entity model.Entity, permission string, subject model.Subject) (bool, error) {
	cr, err := s.client.Permission.Check(ctx, &v1.PermissionCheckRequest{
		TenantId: s.tenant,
		Metadata: &v1.PermissionCheckRequestMetadata{
			SnapToken:     s.token(),
			SchemaVersion: s.schemaVersion,
			Depth:         s.depth,
		},
		Entity:     toEntity(entity),
		Permission: permission,
		Subject:    toSubject(subject),
	})
	if err != nil {
		return false, err
	}

	return cr.Can == v1.CheckResult_CHECK_RESULT_ALLOWED, nil
}

func (s *PermifyService) WriteRelationship(ctx context.Context, entity model.Entity, relation string, subject model.Subject) error {
	resp, err := s.client.Data.WriteRelationships(ctx, &v1.RelationshipWriteRequest{
		TenantId: s.tenant,
		Metadata: &v1.RelationshipWriteRequestMetadata{
			SchemaVersion: s.schemaVersion,
		},
		Tuples: []*v1.Tuple{
			{
				Entity:   toEntity(entity),
				Relation: relation,
				Subject:  toSubject(subject),
			},
		},
	})
	if err != nil {
		return err
	}

	s.setToken(resp.SnapToken)
	return nil
}

func (s *PermifyService) DeleteRelationship(ctx context.Context, entity model.Entity, relation string, subject model.Subject) error {
	resp, err := s.client.Data.DeleteRelationships(ctx, &v1.RelationshipDeleteRequest{
		TenantId: s.tenant,
		Filter: &v1.TupleFilter{
			Entity: &v1.EntityFilter{
				Type: entity.Type,
				Ids:  []string{entity.ID},
			},
			Relation: relation,
			Subject: &v1.SubjectFilter{
				Type: subject.Type,
				Ids:  []string{subject.ID},
			},
		},
	})
	if err != nil {
		return err
	}

	s.setToken(resp.SnapToken)
	return nil
}

// ReadRelationships returns one page of the tuples on entities of entityType
// and the token of the following page.
func (s *PermifyService) ReadRelationships(ctx context.Context, entityType, pageToken string) ([]model.RelationChange, string, error) {
	resp, err := s.client.Data.ReadRelationships(ctx, &v1.RelationshipReadRequest{
		TenantId: s.tenant,
		Metadata: &v1.RelationshipReadRequestMetadata{
			SnapToken: s.token(),
		},
		Filter: &v1.TupleFilter{
			Entity: &v1.EntityFilter{Type: entityType},
		},
		PageSize:        readPageSize,
		ContinuousToken: pageToken,
	})
	if err != nil {
		return nil, "", err
	}

	tuples := make([]model.RelationChange, 0, len(resp.Tuples))
	for _, t := range resp.Tuples {
		tuples = append(tuples, model.RelationChange{
			Op:       model.RelationWrite,
			Entity:   model.Entity{Type: t.GetEntity().GetType(), ID: t.GetEntity().GetId()},
			Relation: t.GetRelation(),
			Subject:  model.Subject{Type: t.GetSubject().GetType(), ID: t.GetSubject().GetId()},
		})
	}
	return tuples, resp.ContinuousToken, nil
}

func toEntity(e model.Entity) *v1.Entity {
	return &v1.Entity{Type: e.Type, Id: e.ID}
}

func toSubject(s model.Subject) *v1.Subject {
	return &v1.Subject{Type: s.Type, Id: s.ID}
}

func (s *PermifyService) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapToken
}

// setToken keeps the newest snap token so later checks see our own writes.
func (s *PermifyService) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapToken = token
}
