package contract

import (
	"context"
	"time"

	"formhive-be/internal/entity"
	"formhive-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error

	// FindByID loads one subscription; forUpdate takes a row lock and
	// must only be used inside a unit-of-work transaction.
	FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Subscription, error)

	// FindOpenByUser returns the user's subscription in pending or
	// active status, if any. The single-open-subscription invariant is
	// enforced by the service under the user row lock, not here.
	FindOpenByUser(ctx context.Context, userId uuid.UUID, forUpdate bool) (*entity.Subscription, error)

	// FindDueForExpiry lists active subscriptions whose end date has
	// passed and which will not auto-renew.
	FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*entity.Subscription, error)

	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)
}
