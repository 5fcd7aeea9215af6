package contract

import (
	"context"

	"formhive-be/internal/entity"

	"github.com/google/uuid"
)

type PaymentTransactionRepository interface {
	// Create inserts the row. A unique-constraint violation on
	// webhook_event_id is reported as apperr.ErrConflict.
	Create(ctx context.Context, t *entity.PaymentTransaction) error

	FindByWebhookEventID(ctx context.Context, eventId string) (*entity.PaymentTransaction, error)
	FindBySubscription(ctx context.Context, subscriptionId uuid.UUID) ([]*entity.PaymentTransaction, error)
}
