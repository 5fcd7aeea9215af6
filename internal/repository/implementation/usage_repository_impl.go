package implementation

import (
	"context"
	"errors"

	"formhive-be/internal/entity"
	"formhive-be/internal/mapper"
	"formhive-be/internal/model"
	"formhive-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FormMapper
}

func NewUsageRepository(db *gorm.DB) contract.UsageRepository {
	return &UsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewFormMapper(),
	}
}

func (r *UsageRepositoryImpl) CountFormsByUser(ctx context.Context, userId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Form{}).
		Where("user_id = ?", userId).
		Count(&count).Error
	return count, err
}

func (r *UsageRepositoryImpl) CountSubmissionsByForm(ctx context.Context, formId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FormSubmission{}).
		Where("form_id = ?", formId).
		Count(&count).Error
	return count, err
}

func (r *UsageRepositoryImpl) CountExportsByForm(ctx context.Context, formId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FormExport{}).
		Where("form_id = ?", formId).
		Count(&count).Error
	return count, err
}

func (r *UsageRepositoryImpl) CreateForm(ctx context.Context, form *entity.Form) error {
	m := r.mapper.ToModel(form)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*form = *r.mapper.ToEntity(m)
	return nil
}

func (r *UsageRepositoryImpl) FindFormByID(ctx context.Context, id uuid.UUID) (*entity.Form, error) {
	var m model.Form
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UsageRepositoryImpl) CreateSubmission(ctx context.Context, s *entity.FormSubmission) error {
	return r.db.WithContext(ctx).Create(r.mapper.SubmissionToModel(s)).Error
}

func (r *UsageRepositoryImpl) CreateExport(ctx context.Context, e *entity.FormExport) error {
	return r.db.WithContext(ctx).Create(r.mapper.ExportToModel(e)).Error
}
