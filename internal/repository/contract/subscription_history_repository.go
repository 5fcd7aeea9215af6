package contract

import (
	"context"

	"formhive-be/internal/entity"
	"formhive-be/internal/repository/specification"

	"github.com/google/uuid"
)

// SubscriptionHistoryRepository is append-only: no update or delete.
type SubscriptionHistoryRepository interface {
	Append(ctx context.Context, h *entity.SubscriptionHistory) error
	FindBySubscription(ctx context.Context, subscriptionId uuid.UUID, specs ...specification.Specification) ([]*entity.SubscriptionHistory, error)
	FindByUser(ctx context.Context, userId uuid.UUID, specs ...specification.Specification) ([]*entity.SubscriptionHistory, error)
}
