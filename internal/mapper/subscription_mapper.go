package mapper

import (
	"encoding/json"

	"formhive-be/internal/entity"
	"formhive-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

// subscriptionMetadata is the JSONB envelope on the subscriptions row.
// The pending plan change lives here so the row itself keeps the plan
// the user actually paid for.
type subscriptionMetadata struct {
	PendingPlanChange *entity.PendingPlanChange `json:"pending_plan_change,omitempty"`
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	e := &entity.Subscription{
		Id:                     s.Id,
		UserId:                 s.UserId,
		PlanId:                 s.PlanId,
		PlanType:               entity.BillingModel(s.PlanType),
		Status:                 entity.SubscriptionStatus(s.Status),
		BillingCycle:           entity.BillingCycle(s.BillingCycle),
		Amount:                 s.Amount,
		Currency:               s.Currency,
		StartDate:              s.StartDate,
		EndDate:                s.EndDate,
		CancelledAt:            s.CancelledAt,
		TrialStartDate:         s.TrialStartDate,
		TrialEndDate:           s.TrialEndDate,
		IsTrial:                s.IsTrial,
		AutoRenew:              s.AutoRenew,
		PaymentProvider:        s.PaymentProvider,
		ProviderSubscriptionId: s.ProviderSubscriptionId,
		PaymentMethodId:        s.PaymentMethodId,
		FailedPaymentCount:     s.FailedPaymentCount,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
	if len(s.Metadata) > 0 {
		var meta subscriptionMetadata
		if err := json.Unmarshal(s.Metadata, &meta); err == nil {
			e.PendingChange = meta.PendingPlanChange
		}
	}
	return e
}

func (m *SubscriptionMapper) ToModel(e *entity.Subscription) *model.Subscription {
	if e == nil {
		return nil
	}
	s := &model.Subscription{
		Id:                     e.Id,
		UserId:                 e.UserId,
		PlanId:                 e.PlanId,
		PlanType:               string(e.PlanType),
		Status:                 string(e.Status),
		BillingCycle:           string(e.BillingCycle),
		Amount:                 e.Amount,
		Currency:               e.Currency,
		StartDate:              e.StartDate,
		EndDate:                e.EndDate,
		CancelledAt:            e.CancelledAt,
		TrialStartDate:         e.TrialStartDate,
		TrialEndDate:           e.TrialEndDate,
		IsTrial:                e.IsTrial,
		AutoRenew:              e.AutoRenew,
		PaymentProvider:        e.PaymentProvider,
		ProviderSubscriptionId: e.ProviderSubscriptionId,
		PaymentMethodId:        e.PaymentMethodId,
		FailedPaymentCount:     e.FailedPaymentCount,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
	}
	meta := subscriptionMetadata{PendingPlanChange: e.PendingChange}
	// Marshal of a plain struct cannot fail; an empty envelope is still
	// written so clearing the marker persists.
	raw, _ := json.Marshal(meta)
	s.Metadata = datatypes.JSON(raw)
	return s
}
