package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dangerclosesec/peloton/internal/audit"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -typed -source=./relation_sync.go -destination=../mocks/mock_relation_writer.go -package=mocks RelationWriter

// RelationWriter stores relationship tuples in the authorization system.
// ReadRelationships returns one page of the tuples held on entities of
// entityType and the token of the next page, empty on the last.
type RelationWriter interface {
	WriteRelationship(ctx context.Context, entity model.Entity, relation string, subject model.Subject) error
	DeleteRelationship(ctx context.Context, entity model.Entity, relation string, subject model.Subject) error
	ReadRelationships(ctx context.Context, entityType, pageToken string) ([]model.RelationChange, string, error)
}

// Ensure RelationSyncService implements the audit.Forwarder interface
var _ audit.Forwarder = (*RelationSyncService)(nil)

// RelationSyncService mirrors the membership ledger into the authorization
// system: incrementally from committed activity, and in full on reconcile.
type RelationSyncService struct {
	writer      RelationWriter
	store       *repository.Store
	interval    time.Duration
	batchSize   int
	concurrency int
	dryRun      bool // If true, don't make changes, just log
	logger      *slog.Logger
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// ReconcileStats summarises one reconciliation pass
type ReconcileStats struct {
	Relations int64 `json:"relations"`
	Deleted   int64 `json:"deleted"`
	Failed    int64 `json:"failed"`
}

// managedRelations are the relations Reconcile owns; anything else found on
// clubs and teams is left alone.
var managedRelations = map[string]bool{
	string(model.RoleAdmin):  true,
	string(model.RoleMember): true,
	"parent":                 true,
}

func NewRelationSyncService(writer RelationWriter, store *repository.Store, interval time.Duration, logger *slog.Logger) *RelationSyncService {
	if interval == 0 {
		interval = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RelationSyncService{
		writer:      writer,
		store:       store,
		interval:    interval,
		batchSize:   100,
		concurrency: 8,
		logger:      logger,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// SetBatchSize sets the number of rows read per batch
func (s *RelationSyncService) SetBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

// SetDryRun sets whether to actually make changes or just log what would be done
func (s *RelationSyncService) SetDryRun(dryRun bool) {
	s.dryRun = dryRun
}

// Forward implements audit.Forwarder.Forward
func (s *RelationSyncService) Forward(ctx context.Context, entry audit.Entry) error {
	var errs []error
	for _, change := range entry.Changes {
		if err := s.Apply(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply writes or deletes one tuple
func (s *RelationSyncService) Apply(ctx context.Context, change model.RelationChange) error {
	if s.dryRun {
		s.logger.InfoContext(ctx, "would sync relationship (dry run)",
			"op", change.Op,
			"entity", change.Entity.Type+":"+change.Entity.ID,
			"relation", change.Relation,
			"subject", change.Subject.Type+":"+change.Subject.ID,
		)
		return nil
	}

	var err error
	switch change.Op {
	case model.RelationWrite:
		err = s.writer.WriteRelationship(ctx, change.Entity, change.Relation, change.Subject)
	case model.RelationDelete:
		err = s.writer.DeleteRelationship(ctx, change.Entity, change.Relation, change.Subject)
	default:
		return fmt.Errorf("unknown relation op %q", change.Op)
	}
	if err != nil {
		return fmt.Errorf("syncing %s#%s@%s: %w", change.Entity.Type, change.Relation, change.Subject.Type, err)
	}
	return nil
}

// Start begins the periodic reconciliation process
func (s *RelationSyncService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		defer close(s.stoppedChan)

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if _, err := s.Reconcile(ctx); err != nil {
					s.logger.Error("reconciliation failed", "error", err)
				}
				cancel()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// Stop halts the reconciliation process
func (s *RelationSyncService) Stop() {
	close(s.stopChan)
	<-s.stoppedChan
}

// Reconcile makes the authorization system match the ledger: it writes one
// tuple per approved membership and per team with a parent club, then deletes
// managed tuples the ledger no longer implies. Individual failures are logged
// and counted; the pass continues.
func (s *RelationSyncService) Reconcile(ctx context.Context) (*ReconcileStats, error) {
	s.logger.Info("starting relation reconciliation", "dry_run", s.dryRun, "batch_size", s.batchSize)
	stats := &ReconcileStats{}
	desired := make(map[string]struct{})

	err := s.store.Memberships().FindApprovedInBatches(ctx, s.batchSize, func(batch []model.Membership) error {
		changes := make([]model.RelationChange, 0, len(batch))
		for i := range batch {
			changes = append(changes, model.MembershipRelation(model.RelationWrite, &batch[i]))
		}
		return s.applyBatch(ctx, changes, desired, &stats.Relations, &stats.Failed)
	})
	if err != nil {
		return stats, fmt.Errorf("reconciling memberships: %w", err)
	}

	err = s.store.Organizations().FindInBatches(ctx, s.batchSize, func(batch []model.Organization) error {
		var changes []model.RelationChange
		for i := range batch {
			if batch[i].Kind == model.OrgKindTeam && batch[i].ParentID != nil {
				changes = append(changes, model.ParentRelation(model.RelationWrite, &batch[i]))
			}
		}
		return s.applyBatch(ctx, changes, desired, &stats.Relations, &stats.Failed)
	})
	if err != nil {
		return stats, fmt.Errorf("reconciling organizations: %w", err)
	}

	for _, kind := range []model.OrganizationKind{model.OrgKindClub, model.OrgKindTeam} {
		stale, err := s.stale(ctx, string(kind), desired)
		if err != nil {
			return stats, fmt.Errorf("reading %s relations: %w", kind, err)
		}
		if err := s.applyBatch(ctx, stale, nil, &stats.Deleted, &stats.Failed); err != nil {
			return stats, fmt.Errorf("pruning %s relations: %w", kind, err)
		}
	}

	s.logger.Info("completed relation reconciliation",
		"relations", stats.Relations,
		"deleted", stats.Deleted,
		"failed", stats.Failed,
	)
	return stats, nil
}

// stale pages through the tuples held on entityType and returns delete
// changes for the managed ones missing from desired. Pages are read in full
// before anything is deleted so deletes cannot shift the cursor.
func (s *RelationSyncService) stale(ctx context.Context, entityType string, desired map[string]struct{}) ([]model.RelationChange, error) {
	var (
		stale []model.RelationChange
		token string
	)
	for {
		page, next, err := s.writer.ReadRelationships(ctx, entityType, token)
		if err != nil {
			return nil, err
		}
		for _, held := range page {
			if !managedRelations[held.Relation] {
				continue
			}
			if _, ok := desired[held.Key()]; ok {
				continue
			}
			held.Op = model.RelationDelete
			stale = append(stale, held)
		}
		if next == "" || next == token {
			return stale, nil
		}
		token = next
	}
}

// applyBatch applies changes concurrently, adding each key to seen when set.
func (s *RelationSyncService) applyBatch(ctx context.Context, changes []model.RelationChange, seen map[string]struct{}, done, failed *int64) error {
	for _, change := range changes {
		if seen != nil {
			seen[change.Key()] = struct{}{}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, change := range changes {
		g.Go(func() error {
			if err := s.Apply(gctx, change); err != nil {
				atomic.AddInt64(failed, 1)
				s.logger.Error("failed to sync relationship", "error", err)
				return nil
			}
			atomic.AddInt64(done, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
