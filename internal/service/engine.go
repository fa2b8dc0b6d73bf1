package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dangerclosesec/peloton/internal/audit"
	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultOperationTimeout = 5 * time.Second
	defaultMaxRetries       = 3
)

// Engine runs every state-changing membership operation. Each operation is one
// transaction; transient store failures retry the whole transaction.
type Engine struct {
	store      *repository.Store
	forwarder  audit.Forwarder
	validate   *validator.Validate
	logger     *slog.Logger
	timeout    time.Duration
	maxTries   uint
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

type EngineOption func(*Engine)

// WithForwarder sets where committed activity goes after commit.
func WithForwarder(f audit.Forwarder) EngineOption {
	return func(e *Engine) {
		e.forwarder = f
	}
}

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithOperationTimeout bounds each transaction attempt.
func WithOperationTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithMaxRetries caps transaction attempts, the first one included.
func WithMaxRetries(n uint) EngineOption {
	return func(e *Engine) {
		e.maxTries = n
	}
}

func WithBackOff(fn func() backoff.BackOff) EngineOption {
	return func(e *Engine) {
		e.newBackOff = fn
	}
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(store *repository.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:      store,
		forwarder:  audit.NoOpForwarder{},
		validate:   validator.New(),
		logger:     slog.Default(),
		timeout:    defaultOperationTimeout,
		maxTries:   defaultMaxRetries,
		newBackOff: defaultBackOff,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}

type txFunc func(ctx context.Context, tx *repository.Store, rec *recorder) error

// execute runs fn in a transaction, retrying transient failures with backoff.
// Domain outcomes are never retried. A committed operation's event is written
// inside the transaction; a failed operation's event is written afterwards on
// a best-effort basis.
func (e *Engine) execute(ctx context.Context, op string, actor ActorIdentity, fn txFunc) error {
	start := time.Now()

	rec := newRecorder(ctx, op, actor, e.now())
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		rec = newRecorder(ctx, op, actor, e.now())
		err := repository.Translate(e.attempt(ctx, rec, fn))
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, domain.ErrStoreUnavailable) {
			engineRetries.WithLabelValues(op).Inc()
			e.logger.WarnContext(ctx, "transaction attempt failed", "operation", op, "error", err)
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(e.newBackOff()), backoff.WithMaxTries(e.maxTries))

	err = normalize(err)
	observeOperation(op, domain.OutcomeOf(err), time.Since(start))

	if err != nil {
		e.recordFailure(ctx, rec, err)
		return err
	}

	e.logger.DebugContext(ctx, "operation committed", "operation", op, "requestID", rec.event.RequestID)
	e.forward(ctx, rec)
	return nil
}

func (e *Engine) attempt(ctx context.Context, rec *recorder, fn txFunc) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := fn(ctx, tx, rec); err != nil {
			return err
		}
		return rec.flush(ctx, tx)
	})
}

// normalize strips the backoff wrapper and folds every error outside the
// taxonomy into ErrStoreUnavailable.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	if domain.IsTerminal(err) || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

func (e *Engine) recordFailure(ctx context.Context, rec *recorder, cause error) {
	level := slog.LevelWarn
	if domain.KindOf(cause) == domain.KindStoreUnavailable {
		level = slog.LevelError
	}
	e.logger.Log(ctx, level, "operation failed",
		"operation", rec.event.Operation,
		"outcome", domain.OutcomeOf(cause),
		"error", cause,
		"requestID", rec.event.RequestID,
	)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	rec.event.Outcome = domain.OutcomeOf(cause)
	if err := e.store.Activity().Create(ctx, rec.event); err != nil {
		e.logger.WarnContext(ctx, "recording failed operation", "operation", rec.event.Operation, "error", err)
	}
}

func (e *Engine) forward(ctx context.Context, rec *recorder) {
	if rec.noop {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	entry := audit.Entry{Event: rec.event, Changes: rec.changes}
	if err := e.forwarder.Forward(ctx, entry); err != nil {
		e.logger.WarnContext(ctx, "forwarding activity", "operation", rec.event.Operation, "error", err)
	}
}

// recorder collects the activity event and authorization changes of one
// transaction attempt.
type recorder struct {
	event   *model.ActivityEvent
	changes []model.RelationChange
	noop    bool
}

func newRecorder(ctx context.Context, op string, actor ActorIdentity, now time.Time) *recorder {
	event := &model.ActivityEvent{
		Timestamp:       now,
		Operation:       op,
		ActorExternalID: actor.ExternalID,
		RequestID:       chimw.GetReqID(ctx),
		Context:         model.JSONMap{},
	}
	if actor.RiderID != uuid.Nil {
		id := actor.RiderID
		event.ActorID = &id
	}
	return &recorder{event: event}
}

func (r *recorder) actor(rider *model.Rider) {
	id := rider.ID
	r.event.ActorID = &id
	r.event.ActorExternalID = rider.ExternalID
}

func (r *recorder) organization(id uuid.UUID) {
	r.event.OrganizationID = &id
}

func (r *recorder) target(id uuid.UUID) {
	r.event.TargetRiderID = &id
}

func (r *recorder) set(key string, value interface{}) {
	r.event.Context[key] = value
}

func (r *recorder) grant(m *model.Membership) {
	r.changes = append(r.changes, model.MembershipRelation(model.RelationWrite, m))
}

func (r *recorder) revoke(m *model.Membership) {
	r.changes = append(r.changes, model.MembershipRelation(model.RelationDelete, m))
}

// unchanged marks an idempotent call that committed nothing.
func (r *recorder) unchanged() {
	r.noop = true
}

func (r *recorder) flush(ctx context.Context, tx *repository.Store) error {
	if r.noop {
		return nil
	}
	r.event.Outcome = domain.OutcomeOK
	return tx.Activity().Create(ctx, r.event)
}

// requireAdmin fails unless riderID holds an approved admin membership of org.
func requireAdmin(ctx context.Context, tx *repository.Store, riderID uuid.UUID, org *model.Organization) error {
	m, err := tx.Memberships().Find(ctx, riderID, org.ID, model.KindFor(org.Kind, model.RoleAdmin))
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return domain.ErrNotAnAdmin
		}
		return err
	}
	if !m.Approved() {
		return domain.ErrNotAnAdmin
	}
	return nil
}

// sameCategory returns riderID's memberships in org, failing when the rider
// holds a membership of the same category in a different organization.
func sameCategory(ctx context.Context, tx *repository.Store, riderID uuid.UUID, org *model.Organization) (map[model.MembershipKind]*model.Membership, error) {
	ms, err := tx.Memberships().FindByRider(ctx, riderID, model.KindsFor(org.Kind)...)
	if err != nil {
		return nil, err
	}
	held := make(map[model.MembershipKind]*model.Membership, len(ms))
	for i := range ms {
		if ms[i].OrganizationID != org.ID {
			return nil, domain.ErrAlreadyMember
		}
		held[ms[i].Kind] = &ms[i]
	}
	return held, nil
}

// dropAdmin deletes an admin membership unless it is the organization's last
// approved admin. The caller must hold the organization row lock.
func dropAdmin(ctx context.Context, tx *repository.Store, rec *recorder, m *model.Membership) error {
	if m.Approved() {
		admins, err := tx.Memberships().CountApproved(ctx, m.OrganizationID, m.Kind)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return domain.ErrLastAdmin
		}
	}
	return dropMembership(ctx, tx, rec, m)
}

func dropMembership(ctx context.Context, tx *repository.Store, rec *recorder, m *model.Membership) error {
	deleted, err := tx.Memberships().Delete(ctx, m.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrMembershipNotFound
	}
	if m.Approved() {
		rec.revoke(m)
	}
	return nil
}

func (e *Engine) validateInput(input interface{}) error {
	if err := e.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
