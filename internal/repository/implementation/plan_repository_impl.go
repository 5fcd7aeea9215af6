package implementation

import (
	"context"
	"errors"

	"formhive-be/internal/entity"
	"formhive-be/internal/mapper"
	"formhive-be/internal/model"
	"formhive-be/internal/repository/contract"
	"formhive-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlanMapper
}

func NewPlanRepository(db *gorm.DB) contract.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mapper.NewPlanMapper(),
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *entity.Plan) error {
	m := r.mapper.ToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.ToEntity(m)
	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *entity.Plan) error {
	m := r.mapper.ToModel(plan)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.ToEntity(m)
	return nil
}

func (r *PlanRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Plan{}).Error
}

func (r *PlanRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error) {
	var m model.Plan
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

func (r *PlanRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Plan, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *PlanRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*entity.Plan, error) {
	return r.findOne(ctx, specification.Filter("slug", slug))
}

func (r *PlanRepositoryImpl) FindDefault(ctx context.Context) (*entity.Plan, error) {
	return r.findOne(ctx, specification.Filter("is_default", true))
}

func (r *PlanRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error) {
	var models []*model.Plan
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	plans := make([]*entity.Plan, len(models))
	for i, m := range models {
		plans[i] = r.mapper.ToEntity(m)
	}
	return plans, nil
}

func (r *PlanRepositoryImpl) ClearDefault(ctx context.Context, exceptId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Plan{}).
		Where("id <> ?", exceptId).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

func (r *PlanRepositoryImpl) CountSubscriptions(ctx context.Context, planId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("plan_id = ?", planId).
		Count(&count).Error
	return count, err
}
