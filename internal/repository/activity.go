package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityChannel is the Postgres notification channel committed events are published on.
const ActivityChannel = "peloton_activity"

// ActivityRepository handles database operations for activity events
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{
		db: db,
	}
}

// Create inserts an activity event. On Postgres the event is also published
// with pg_notify, which delivers only once the surrounding transaction commits.
func (r *ActivityRepository) Create(ctx context.Context, event *model.ActivityEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	db := r.db.WithContext(ctx)
	if err := db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create activity event: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding activity event: %w", err)
	}
	if err := db.Exec("SELECT pg_notify(?, ?)", ActivityChannel, string(payload)).Error; err != nil {
		return fmt.Errorf("publishing activity event: %w", err)
	}
	return nil
}

// FindByID retrieves an activity event by its ID
func (r *ActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ActivityEvent, error) {
	var event model.ActivityEvent
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&event)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find activity event: %w", result.Error)
	}

	return &event, nil
}

// QueryParams holds parameters for querying activity events
type QueryParams struct {
	OrganizationID *uuid.UUID
	ActorID        *uuid.UUID
	Operation      string
	Outcome        string
	StartTime      time.Time
	EndTime        time.Time
	Limit          int
	Offset         int
}

// Query retrieves activity events based on the provided query parameters
func (r *ActivityRepository) Query(ctx context.Context, params QueryParams) ([]model.ActivityEvent, int64, error) {
	var events []model.ActivityEvent
	var count int64

	query := r.db.WithContext(ctx).Model(&model.ActivityEvent{})

	// Apply filters
	if params.OrganizationID != nil {
		query = query.Where("organization_id = ?", *params.OrganizationID)
	}
	if params.ActorID != nil {
		query = query.Where("actor_id = ?", *params.ActorID)
	}
	if params.Operation != "" {
		query = query.Where("operation = ?", params.Operation)
	}
	if params.Outcome != "" {
		query = query.Where("outcome = ?", params.Outcome)
	}
	if !params.StartTime.IsZero() {
		query = query.Where("timestamp >= ?", params.StartTime)
	}
	if !params.EndTime.IsZero() {
		query = query.Where("timestamp <= ?", params.EndTime)
	}

	// Get total count for pagination
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity events: %w", err)
	}

	// Apply pagination
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	} else {
		query = query.Limit(100) // Default limit
	}

	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	result := query.Order("timestamp DESC").Find(&events)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to query activity events: %w", result.Error)
	}

	return events, count, nil
}
