package implementation

import (
	"context"
	"errors"
	"fmt"

	"formhive-be/internal/apperr"
	"formhive-be/internal/entity"
	"formhive-be/internal/mapper"
	"formhive-be/internal/model"
	"formhive-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentTransactionRepository(db *gorm.DB) contract.PaymentTransactionRepository {
	return &PaymentTransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *PaymentTransactionRepositoryImpl) Create(ctx context.Context, t *entity.PaymentTransaction) error {
	m := r.mapper.TransactionToModel(t)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		// Requires TranslateError on the gorm config; the unique index
		// on webhook_event_id is the replay gate.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: webhook event %s already recorded", apperr.ErrConflict, t.WebhookEventId)
		}
		return err
	}
	*t = *r.mapper.TransactionToEntity(m)
	return nil
}

func (r *PaymentTransactionRepositoryImpl) FindByWebhookEventID(ctx context.Context, eventId string) (*entity.PaymentTransaction, error) {
	var m model.PaymentTransaction
	err := r.db.WithContext(ctx).Where("webhook_event_id = ?", eventId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TransactionToEntity(&m), nil
}

func (r *PaymentTransactionRepositoryImpl) FindBySubscription(ctx context.Context, subscriptionId uuid.UUID) ([]*entity.PaymentTransaction, error) {
	var models []*model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	rows := make([]*entity.PaymentTransaction, len(models))
	for i, m := range models {
		rows[i] = r.mapper.TransactionToEntity(m)
	}
	return rows, nil
}
