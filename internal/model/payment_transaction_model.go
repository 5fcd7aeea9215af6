package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentTransaction struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`

	Provider              string `gorm:"type:varchar(50);not null"`
	ProviderTransactionId string `gorm:"type:varchar(255);not null"`
	// Unique index is the idempotency gate: a concurrent redelivery
	// fails the insert and short-circuits the processor.
	WebhookEventId string `gorm:"type:varchar(255);uniqueIndex;not null"`

	Status   string  `gorm:"type:varchar(20);not null"`
	Amount   float64 `gorm:"type:decimal(10,2);not null;default:0"`
	Currency string  `gorm:"type:varchar(3);not null;default:'USD'"`

	FailureCode    *string `gorm:"type:varchar(100)"`
	FailureMessage *string `gorm:"type:text"`
	RetryCount     int     `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
