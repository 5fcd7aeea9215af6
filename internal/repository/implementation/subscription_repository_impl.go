package implementation

import (
	"context"
	"errors"
	"time"

	"formhive-be/internal/entity"
	"formhive-be/internal/mapper"
	"formhive-be/internal/model"
	"formhive-be/internal/repository/contract"
	"formhive-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *entity.Subscription) error {
	m := r.mapper.ToModel(sub)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*sub = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *entity.Subscription) error {
	m := r.mapper.ToModel(sub)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*sub = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Subscription, error) {
	specs := []specification.Specification{specification.ByID{ID: id}}
	if forUpdate {
		specs = append(specs, specification.ForUpdate{})
	}
	return r.findOne(ctx, specs...)
}

func (r *SubscriptionRepositoryImpl) FindOpenByUser(ctx context.Context, userId uuid.UUID, forUpdate bool) (*entity.Subscription, error) {
	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusPending),
			string(entity.SubscriptionStatusActive),
		}},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if forUpdate {
		specs = append(specs, specification.ForUpdate{})
	}
	return r.findOne(ctx, specs...)
}

func (r *SubscriptionRepositoryImpl) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.db.WithContext(ctx).
		Where("status = ?", string(entity.SubscriptionStatusActive)).
		Where("auto_renew = ?", false).
		Where("end_date IS NOT NULL AND end_date < ?", now).
		Order("end_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	subs := make([]*entity.Subscription, len(models))
	for i, m := range models {
		subs[i] = r.mapper.ToEntity(m)
	}
	return subs, nil
}

func (r *SubscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	subs := make([]*entity.Subscription, len(models))
	for i, m := range models {
		subs[i] = r.mapper.ToEntity(m)
	}
	return subs, nil
}
