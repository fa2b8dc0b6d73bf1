package service

import (
	"context"
	"errors"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/google/uuid"
)

// ActorIdentity names the rider on whose behalf an operation runs. The
// transport authenticates the caller; the engine only resolves the identity.
type ActorIdentity struct {
	RiderID    uuid.UUID
	ExternalID string
}

func ActorByID(id uuid.UUID) ActorIdentity {
	return ActorIdentity{RiderID: id}
}

func ActorByExternalID(externalID string) ActorIdentity {
	return ActorIdentity{ExternalID: externalID}
}

func (a ActorIdentity) IsZero() bool {
	return a.RiderID == uuid.Nil && a.ExternalID == ""
}

// resolve loads the actor. With lock set the rider row stays locked until the
// transaction ends, so operations that check the actor's own memberships run
// one at a time per rider.
func (a ActorIdentity) resolve(ctx context.Context, tx *repository.Store, lock bool) (*model.Rider, error) {
	var (
		rider *model.Rider
		err   error
	)
	switch {
	case a.RiderID != uuid.Nil && lock:
		rider, err = tx.Riders().FindByIDForUpdate(ctx, a.RiderID)
	case a.RiderID != uuid.Nil:
		rider, err = tx.Riders().FindByID(ctx, a.RiderID)
	case a.ExternalID != "" && lock:
		rider, err = tx.Riders().FindByExternalIDForUpdate(ctx, a.ExternalID)
	case a.ExternalID != "":
		rider, err = tx.Riders().FindByExternalID(ctx, a.ExternalID)
	default:
		return nil, domain.ErrRiderNotRegistered
	}
	if err != nil {
		if errors.Is(err, domain.ErrRiderNotFound) {
			return nil, domain.ErrRiderNotRegistered
		}
		return nil, err
	}
	if !rider.Active {
		return nil, domain.ErrRiderInactive
	}
	return rider, nil
}
