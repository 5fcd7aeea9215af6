package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentTransactionStatus string

const (
	PaymentTransactionSucceeded PaymentTransactionStatus = "succeeded"
	PaymentTransactionFailed    PaymentTransactionStatus = "failed"
	PaymentTransactionCancelled PaymentTransactionStatus = "cancelled"
	PaymentTransactionRefunded  PaymentTransactionStatus = "refunded"
)

// PaymentTransaction is one row per provider monetary event.
// WebhookEventId is unique across the ledger and acts as the
// idempotency key for webhook re-deliveries.
type PaymentTransaction struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	UserId         uuid.UUID

	Provider              string
	ProviderTransactionId string
	WebhookEventId        string

	Status   PaymentTransactionStatus
	Amount   float64
	Currency string

	FailureCode    *string
	FailureMessage *string
	RetryCount     int

	CreatedAt time.Time
}
