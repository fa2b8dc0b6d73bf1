// internal/model/organization.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationKind string

const (
	OrgKindClub OrganizationKind = "club"
	OrgKindTeam OrganizationKind = "team"
)

// Valid reports whether k is a known organization kind.
func (k OrganizationKind) Valid() bool {
	return k == OrgKindClub || k == OrgKindTeam
}

type Organization struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Kind          OrganizationKind `gorm:"type:text;not null;index" json:"kind"`
	Name          string           `gorm:"type:text;uniqueIndex;not null" json:"name"`
	ExternalRefID *int64           `gorm:"uniqueIndex" json:"external_ref_id,omitempty"`
	ParentID      *uuid.UUID       `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	CreatedByID   uuid.UUID        `gorm:"type:uuid;not null" json:"created_by_id"`
	Active        bool             `gorm:"not null" json:"active"`
	Note          string           `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// BeforeCreate hook for Organization
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if !o.Kind.Valid() {
		return fmt.Errorf("invalid organization kind: %s", o.Kind)
	}
	return nil
}
