package mapper

import (
	"formhive-be/internal/entity"
	"formhive-be/internal/model"
)

type PlanMapper struct{}

func NewPlanMapper() *PlanMapper {
	return &PlanMapper{}
}

func (m *PlanMapper) ToEntity(p *model.Plan) *entity.Plan {
	if p == nil {
		return nil
	}
	return &entity.Plan{
		Id:                    p.Id,
		Name:                  p.Name,
		Slug:                  p.Slug,
		Description:           p.Description,
		BillingModel:          entity.BillingModel(p.BillingModel),
		PriceMonthly:          p.PriceMonthly,
		PriceYearly:           p.PriceYearly,
		PriceLifetime:         p.PriceLifetime,
		Currency:              p.Currency,
		MaxForms:              p.MaxForms,
		MaxSubmissionsPerForm: p.MaxSubmissionsPerForm,
		MaxExportsPerForm:     p.MaxExportsPerForm,
		IsDefault:             p.IsDefault,
		IsActive:              p.IsActive,
		SortOrder:             p.SortOrder,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (m *PlanMapper) ToModel(p *entity.Plan) *model.Plan {
	if p == nil {
		return nil
	}
	return &model.Plan{
		Id:                    p.Id,
		Name:                  p.Name,
		Slug:                  p.Slug,
		Description:           p.Description,
		BillingModel:          string(p.BillingModel),
		PriceMonthly:          p.PriceMonthly,
		PriceYearly:           p.PriceYearly,
		PriceLifetime:         p.PriceLifetime,
		Currency:              p.Currency,
		MaxForms:              p.MaxForms,
		MaxSubmissionsPerForm: p.MaxSubmissionsPerForm,
		MaxExportsPerForm:     p.MaxExportsPerForm,
		IsDefault:             p.IsDefault,
		IsActive:              p.IsActive,
		SortOrder:             p.SortOrder,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}
