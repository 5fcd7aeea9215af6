package contract

import (
	"context"

	"formhive-be/internal/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// SyncCurrentPlan points the user's governing plan at planId
	// (nil falls back to the default plan at limit-check time).
	SyncCurrentPlan(ctx context.Context, userId uuid.UUID, planId *uuid.UUID) error
}
