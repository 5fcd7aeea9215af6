package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type PlanChangeType string
type HistoryActor string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"

	PlanChangeUpgrade   PlanChangeType = "upgrade"
	PlanChangeDowngrade PlanChangeType = "downgrade"

	ActorUser   HistoryActor = "user"
	ActorAdmin  HistoryActor = "admin"
	ActorSystem HistoryActor = "system"
)

// MaxPaymentRetries is the number of consecutive payment failures
// tolerated before a subscription is suspended.
const MaxPaymentRetries = 3

// PendingPlanChange is a requested upgrade/downgrade that has not been
// confirmed by payment yet. The subscription keeps its original plan,
// amount and limits until Activate applies the change.
type PendingPlanChange struct {
	Type         PlanChangeType `json:"type"`
	TargetPlanId uuid.UUID      `json:"target_plan_id"`
	RequestedAt  time.Time      `json:"requested_at"`
}

type Subscription struct {
	Id     uuid.UUID
	UserId uuid.UUID
	PlanId uuid.UUID

	PlanType     BillingModel
	Status       SubscriptionStatus
	BillingCycle BillingCycle
	Amount       float64
	Currency     string

	StartDate   time.Time
	EndDate     *time.Time // nil for lifetime plans
	CancelledAt *time.Time

	TrialStartDate *time.Time
	TrialEndDate   *time.Time
	IsTrial        bool

	AutoRenew bool

	PaymentProvider        string
	ProviderSubscriptionId *string
	PaymentMethodId        *string

	// FailedPaymentCount is the consecutive failure streak; reset on
	// successful activation.
	FailedPaymentCount int

	// PendingChange is nil when no plan change has been requested.
	PendingChange *PendingPlanChange

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether no further transition may leave the
// current status.
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCancelled || s.Status == SubscriptionStatusExpired
}

// IsOpen reports whether the subscription blocks creation of another
// one for the same user.
func (s *Subscription) IsOpen() bool {
	return s.Status == SubscriptionStatusPending || s.Status == SubscriptionStatusActive
}
