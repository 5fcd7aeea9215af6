package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSubscriptionRequest struct {
	PlanId       uuid.UUID `json:"plan_id" validate:"required"`
	BillingCycle string    `json:"billing_cycle" validate:"required,oneof=monthly yearly"`
}

type SubscriptionResponse struct {
	Id            uuid.UUID  `json:"id"`
	PlanId        uuid.UUID  `json:"plan_id"`
	PlanName      string     `json:"plan_name,omitempty"`
	Status        string     `json:"status"`
	BillingCycle  string     `json:"billing_cycle"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	AutoRenew     bool       `json:"auto_renew"`
	PendingChange *PendingChangeResponse `json:"pending_change,omitempty"`
}

type PendingChangeResponse struct {
	Type         string    `json:"type"`
	TargetPlanId uuid.UUID `json:"target_plan_id"`
	RequestedAt  time.Time `json:"requested_at"`
}

type ChangePlanRequest struct {
	SubscriptionId uuid.UUID `json:"subscription_id" validate:"required"`
	TargetPlanId   uuid.UUID `json:"target_plan_id" validate:"required"`
	Direction      string    `json:"direction" validate:"required,oneof=upgrade downgrade"`
}

type CancelSubscriptionRequest struct {
	SubscriptionId uuid.UUID `json:"subscription_id" validate:"required"`
	Reason         string    `json:"reason"`
}

type CheckoutRequest struct {
	SubscriptionId uuid.UUID `json:"subscription_id" validate:"required"`
}

type CheckoutResponse struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
	Token          string    `json:"token"`
	RedirectUrl    string    `json:"redirect_url"`
}

type SubscriptionStatusResponse struct {
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
	PlanName     string                `json:"plan_name"`
	IsActive     bool                  `json:"is_active"`
	Limits       PlanLimits            `json:"limits"`
}

type PlanLimits struct {
	MaxForms              int `json:"max_forms"`
	MaxSubmissionsPerForm int `json:"max_submissions_per_form"`
	MaxExportsPerForm     int `json:"max_exports_per_form"`
}

type HistoryEntryResponse struct {
	Id             uuid.UUID  `json:"id"`
	SubscriptionId uuid.UUID  `json:"subscription_id"`
	Action         string     `json:"action"`
	PreviousStatus string     `json:"previous_status"`
	NewStatus      string     `json:"new_status"`
	PreviousPlanId *uuid.UUID `json:"previous_plan_id,omitempty"`
	NewPlanId      *uuid.UUID `json:"new_plan_id,omitempty"`
	NewAmount      *float64   `json:"new_amount,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	ChangedBy      string     `json:"changed_by"`
	CreatedAt      time.Time  `json:"created_at"`
}
