package service

import (
	"context"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/google/uuid"
)

type RegisterInput struct {
	ExternalID    string `json:"external_id" validate:"required,max=64"`
	DisplayName   string `json:"display_name" validate:"required,min=3,max=50"`
	PlatformName  string `json:"platform_name" validate:"max=100"`
	RatingID      int64  `json:"rating_id" validate:"required,gt=0"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// Register creates a rider. Collisions on external id, display name or rating
// id are detected by the store's unique indexes. Registration grants no roles.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (*model.Rider, error) {
	var rider *model.Rider
	err := e.execute(ctx, model.OpRegister, ActorByExternalID(input.ExternalID), func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		if !input.TermsAccepted {
			return domain.ErrTermsNotAccepted
		}
		if err := e.validateInput(input); err != nil {
			return err
		}

		rider = &model.Rider{
			ExternalID:    input.ExternalID,
			DisplayName:   input.DisplayName,
			PlatformName:  input.PlatformName,
			RatingID:      input.RatingID,
			TermsAccepted: true,
			Active:        true,
		}
		if err := tx.Riders().Create(ctx, rider); err != nil {
			return err
		}

		rec.actor(rider)
		rec.set("display_name", rider.DisplayName)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rider, nil
}

// DeactivateRider soft-deactivates a rider. Memberships are kept.
func (e *Engine) DeactivateRider(ctx context.Context, riderID uuid.UUID) (*model.Rider, error) {
	return e.setRiderActive(ctx, model.OpDeactivateRider, riderID, false)
}

func (e *Engine) ActivateRider(ctx context.Context, riderID uuid.UUID) (*model.Rider, error) {
	return e.setRiderActive(ctx, model.OpActivateRider, riderID, true)
}

func (e *Engine) setRiderActive(ctx context.Context, op string, riderID uuid.UUID, active bool) (*model.Rider, error) {
	var rider *model.Rider
	err := e.execute(ctx, op, ActorIdentity{}, func(ctx context.Context, tx *repository.Store, rec *recorder) error {
		rec.target(riderID)

		changed, err := tx.Riders().SetActive(ctx, riderID, active)
		if err != nil {
			return err
		}
		rider, err = tx.Riders().FindByID(ctx, riderID)
		if err != nil {
			return err
		}
		if !changed {
			return domain.ErrAlreadyInState
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rider, nil
}
