package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Subscription struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanId uuid.UUID `gorm:"type:uuid;not null;index"`

	PlanType     string  `gorm:"type:varchar(20);not null"`
	Status       string  `gorm:"type:varchar(20);not null;index"`
	BillingCycle string  `gorm:"type:varchar(20);not null"`
	Amount       float64 `gorm:"type:decimal(10,2);not null;default:0"`
	Currency     string  `gorm:"type:varchar(3);not null;default:'USD'"`

	StartDate   time.Time  `gorm:"not null"`
	EndDate     *time.Time `gorm:"index"`
	CancelledAt *time.Time

	TrialStartDate *time.Time
	TrialEndDate   *time.Time
	IsTrial        bool `gorm:"not null;default:false"`

	AutoRenew bool `gorm:"not null;default:true"`

	PaymentProvider        string  `gorm:"type:varchar(50)"`
	ProviderSubscriptionId *string `gorm:"type:varchar(255);index"`
	PaymentMethodId        *string `gorm:"type:varchar(255)"`

	FailedPaymentCount int `gorm:"not null;default:0"`

	// Metadata carries the pending plan change marker, if any.
	Metadata datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
