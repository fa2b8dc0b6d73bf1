package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityEvent records one engine operation and its outcome.
type ActivityEvent struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Timestamp       time.Time  `json:"timestamp" gorm:"index;not null"`
	ActorID         *uuid.UUID `json:"actor_id,omitempty" gorm:"type:uuid;index"`
	ActorExternalID string     `json:"actor_external_id,omitempty"`
	Operation       string     `json:"operation" gorm:"index;not null"`
	OrganizationID  *uuid.UUID `json:"organization_id,omitempty" gorm:"type:uuid;index"`
	TargetRiderID   *uuid.UUID `json:"target_rider_id,omitempty" gorm:"type:uuid"`
	Outcome         string     `json:"outcome" gorm:"index;not null"`
	Context         JSONMap    `json:"context,omitempty" gorm:"type:jsonb"`
	RequestID       string     `json:"request_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TableName specifies the table name for ActivityEvent
func (ActivityEvent) TableName() string {
	return "activity_events"
}

// BeforeCreate hook for ActivityEvent
func (e *ActivityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return nil
}

// JSONMap represents a generic map stored as JSONB in the database
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for JSONMap
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for JSONMap
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion failed: failed to decode JSONB")
	}

	return json.Unmarshal(bytes, m)
}

// Operation names recorded on activity events
const (
	OpRegister           = "register"
	OpDeactivateRider    = "deactivate_rider"
	OpActivateRider      = "activate_rider"
	OpCreateOrganization = "create_organization"
	OpRequestJoin        = "request_join"
	OpApproveJoin        = "approve_join"
	OpRejectJoin         = "reject_join"
	OpAddMember          = "add_member"
	OpRemoveMember       = "remove_member"
	OpAddAdmin           = "add_admin"
	OpRemoveAdmin        = "remove_admin"
	OpLeave              = "leave"
	OpSetOrgActive       = "set_org_active"
)
