// internal/model/rider.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	powerProfileURL  = "https://zwiftpower.com/profile.php?z=%d"
	racingProfileURL = "https://www.zwiftracing.app/riders/%d"
)

// Rider is a registered individual. Riders are never deleted, only deactivated.
type Rider struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID    string    `gorm:"type:text;uniqueIndex;not null" json:"external_id"`
	DisplayName   string    `gorm:"type:text;uniqueIndex;not null" json:"display_name"`
	PlatformName  string    `gorm:"type:text" json:"platform_name,omitempty"`
	RatingID      int64     `gorm:"uniqueIndex;not null" json:"rating_id"`
	TermsAccepted bool      `gorm:"not null" json:"terms_accepted"`
	Active        bool      `gorm:"not null;index" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate hook for Rider
func (r *Rider) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// PowerProfileURL links the rider's ZwiftPower profile.
func (r *Rider) PowerProfileURL() string {
	return fmt.Sprintf(powerProfileURL, r.RatingID)
}

// RacingProfileURL links the rider's ZwiftRacing profile.
func (r *Rider) RacingProfileURL() string {
	return fmt.Sprintf(racingProfileURL, r.RatingID)
}
