package entity

import (
	"time"

	"github.com/google/uuid"
)

type HistoryAction string

const (
	HistoryActionCreated            HistoryAction = "created"
	HistoryActionActivated          HistoryAction = "activated"
	HistoryActionUpgradeRequested   HistoryAction = "upgrade_requested"
	HistoryActionDowngradeRequested HistoryAction = "downgrade_requested"
	HistoryActionPaymentFailed      HistoryAction = "payment_failed"
	HistoryActionCancelled          HistoryAction = "cancelled"
	HistoryActionExpired            HistoryAction = "expired"
)

// SubscriptionHistory is one append-only row per state transition.
// It is written by the state machine and never read back by it.
type SubscriptionHistory struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	UserId         uuid.UUID

	Action         HistoryAction
	PreviousStatus SubscriptionStatus
	NewStatus      SubscriptionStatus
	PreviousPlanId *uuid.UUID
	NewPlanId      *uuid.UUID

	// Amounts are nullable: a plan-change request records no new amount
	// because the price is unknown until payment confirms.
	PreviousAmount *float64
	NewAmount      *float64

	Reason    string
	ChangedBy HistoryActor
	Metadata  map[string]interface{}

	CreatedAt time.Time
}
