package implementation

import (
	"context"

	"formhive-be/internal/entity"
	"formhive-be/internal/mapper"
	"formhive-be/internal/model"
	"formhive-be/internal/repository/contract"
	"formhive-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionHistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewSubscriptionHistoryRepository(db *gorm.DB) contract.SubscriptionHistoryRepository {
	return &SubscriptionHistoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *SubscriptionHistoryRepositoryImpl) Append(ctx context.Context, h *entity.SubscriptionHistory) error {
	m := r.mapper.HistoryToModel(h)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*h = *r.mapper.HistoryToEntity(m)
	return nil
}

func (r *SubscriptionHistoryRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionHistory, error) {
	var models []*model.SubscriptionHistory
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	rows := make([]*entity.SubscriptionHistory, len(models))
	for i, m := range models {
		rows[i] = r.mapper.HistoryToEntity(m)
	}
	return rows, nil
}

func (r *SubscriptionHistoryRepositoryImpl) FindBySubscription(ctx context.Context, subscriptionId uuid.UUID, specs ...specification.Specification) ([]*entity.SubscriptionHistory, error) {
	all := append([]specification.Specification{
		specification.Filter("subscription_id", subscriptionId),
		specification.OrderBy{Field: "created_at"},
	}, specs...)
	return r.findAll(ctx, all...)
}

func (r *SubscriptionHistoryRepositoryImpl) FindByUser(ctx context.Context, userId uuid.UUID, specs ...specification.Specification) ([]*entity.SubscriptionHistory, error) {
	all := append([]specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	}, specs...)
	return r.findAll(ctx, all...)
}
