package mapper

import (
	"encoding/json"

	"formhive-be/internal/entity"
	"formhive-be/internal/model"

	"gorm.io/datatypes"
)

type FormMapper struct{}

func NewFormMapper() *FormMapper {
	return &FormMapper{}
}

func (m *FormMapper) ToEntity(f *model.Form) *entity.Form {
	if f == nil {
		return nil
	}
	return &entity.Form{
		Id:        f.Id,
		UserId:    f.UserId,
		Name:      f.Name,
		Slug:      f.Slug,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func (m *FormMapper) ToModel(f *entity.Form) *model.Form {
	if f == nil {
		return nil
	}
	return &model.Form{
		Id:        f.Id,
		UserId:    f.UserId,
		Name:      f.Name,
		Slug:      f.Slug,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func (m *FormMapper) SubmissionToModel(s *entity.FormSubmission) *model.FormSubmission {
	if s == nil {
		return nil
	}
	out := &model.FormSubmission{
		Id:        s.Id,
		FormId:    s.FormId,
		CreatedAt: s.CreatedAt,
	}
	if s.Data != nil {
		if raw, err := json.Marshal(s.Data); err == nil {
			out.Data = datatypes.JSON(raw)
		}
	}
	return out
}

func (m *FormMapper) ExportToModel(e *entity.FormExport) *model.FormExport {
	if e == nil {
		return nil
	}
	return &model.FormExport{
		Id:        e.Id,
		FormId:    e.FormId,
		UserId:    e.UserId,
		Format:    e.Format,
		CreatedAt: e.CreatedAt,
	}
}
