package mapper

import (
	"encoding/json"

	"formhive-be/internal/entity"
	"formhive-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) TransactionToEntity(t *model.PaymentTransaction) *entity.PaymentTransaction {
	if t == nil {
		return nil
	}
	return &entity.PaymentTransaction{
		Id:                    t.Id,
		SubscriptionId:        t.SubscriptionId,
		UserId:                t.UserId,
		Provider:              t.Provider,
		ProviderTransactionId: t.ProviderTransactionId,
		WebhookEventId:        t.WebhookEventId,
		Status:                entity.PaymentTransactionStatus(t.Status),
		Amount:                t.Amount,
		Currency:              t.Currency,
		FailureCode:           t.FailureCode,
		FailureMessage:        t.FailureMessage,
		RetryCount:            t.RetryCount,
		CreatedAt:             t.CreatedAt,
	}
}

func (m *PaymentMapper) TransactionToModel(t *entity.PaymentTransaction) *model.PaymentTransaction {
	if t == nil {
		return nil
	}
	return &model.PaymentTransaction{
		Id:                    t.Id,
		SubscriptionId:        t.SubscriptionId,
		UserId:                t.UserId,
		Provider:              t.Provider,
		ProviderTransactionId: t.ProviderTransactionId,
		WebhookEventId:        t.WebhookEventId,
		Status:                string(t.Status),
		Amount:                t.Amount,
		Currency:              t.Currency,
		FailureCode:           t.FailureCode,
		FailureMessage:        t.FailureMessage,
		RetryCount:            t.RetryCount,
		CreatedAt:             t.CreatedAt,
	}
}

func (m *PaymentMapper) HistoryToEntity(h *model.SubscriptionHistory) *entity.SubscriptionHistory {
	if h == nil {
		return nil
	}
	e := &entity.SubscriptionHistory{
		Id:             h.Id,
		SubscriptionId: h.SubscriptionId,
		UserId:         h.UserId,
		Action:         entity.HistoryAction(h.Action),
		PreviousStatus: entity.SubscriptionStatus(h.PreviousStatus),
		NewStatus:      entity.SubscriptionStatus(h.NewStatus),
		PreviousPlanId: h.PreviousPlanId,
		NewPlanId:      h.NewPlanId,
		PreviousAmount: h.PreviousAmount,
		NewAmount:      h.NewAmount,
		Reason:         h.Reason,
		ChangedBy:      entity.HistoryActor(h.ChangedBy),
		CreatedAt:      h.CreatedAt,
	}
	if len(h.Metadata) > 0 {
		var meta map[string]interface{}
		if err := json.Unmarshal(h.Metadata, &meta); err == nil {
			e.Metadata = meta
		}
	}
	return e
}

func (m *PaymentMapper) HistoryToModel(e *entity.SubscriptionHistory) *model.SubscriptionHistory {
	if e == nil {
		return nil
	}
	h := &model.SubscriptionHistory{
		Id:             e.Id,
		SubscriptionId: e.SubscriptionId,
		UserId:         e.UserId,
		Action:         string(e.Action),
		PreviousStatus: string(e.PreviousStatus),
		NewStatus:      string(e.NewStatus),
		PreviousPlanId: e.PreviousPlanId,
		NewPlanId:      e.NewPlanId,
		PreviousAmount: e.PreviousAmount,
		NewAmount:      e.NewAmount,
		Reason:         e.Reason,
		ChangedBy:      string(e.ChangedBy),
		CreatedAt:      e.CreatedAt,
	}
	if e.Metadata != nil {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			h.Metadata = datatypes.JSON(raw)
		}
	}
	return h
}
