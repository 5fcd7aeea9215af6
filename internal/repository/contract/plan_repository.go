package contract

import (
	"context"

	"formhive-be/internal/entity"
	"formhive-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *entity.Plan) error
	Update(ctx context.Context, plan *entity.Plan) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Plan, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Plan, error)
	// FindDefault returns the single default (free) plan.
	FindDefault(ctx context.Context) (*entity.Plan, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error)

	// ClearDefault unsets is_default on every plan except the given one.
	ClearDefault(ctx context.Context, exceptId uuid.UUID) error
	// CountSubscriptions reports how many subscriptions reference the plan.
	CountSubscriptions(ctx context.Context, planId uuid.UUID) (int64, error)
}
