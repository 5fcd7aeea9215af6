package service

import (
	"context"
	"fmt"
	"time"

	"formhive-be/internal/apperr"
	"formhive-be/internal/dto"
	"formhive-be/internal/entity"
	"formhive-be/internal/pkg/logger"
	"formhive-be/internal/repository/specification"
	"formhive-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const planListCacheKey = "plans:active"

type IPlanService interface {
	// Public catalog, served from cache between mutations.
	GetPlans(ctx context.Context) ([]*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error)

	// Admin
	CreatePlan(ctx context.Context, req *dto.UpsertPlanRequest) (*dto.PlanResponse, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.UpsertPlanRequest) (*dto.PlanResponse, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *gocache.Cache
	logger     logger.ILogger
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IPlanService {
	return &planService{
		uowFactory: uowFactory,
		cache:      gocache.New(5*time.Minute, 10*time.Minute),
		logger:     log,
	}
}

func (s *planService) GetPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	if cached, ok := s.cache.Get(planListCacheKey); ok {
		return cached.([]*dto.PlanResponse), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	plans, err := uow.PlanRepository().FindAll(ctx,
		specification.Filter("is_active", true),
		specification.OrderBy{Field: "sort_order"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, toPlanResponse(p))
	}

	s.cache.Set(planListCacheKey, res, gocache.DefaultExpiration)
	return res, nil
}

func (s *planService) GetPlan(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: plan %s", apperr.ErrNotFound, id)
	}
	return toPlanResponse(plan), nil
}

func (s *planService) CreatePlan(ctx context.Context, req *dto.UpsertPlanRequest) (*dto.PlanResponse, error) {
	plan := planFromRequest(uuid.New(), req)
	if err := validatePlanInvariants(plan); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.PlanRepository().FindBySlug(ctx, plan.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: plan slug %q already exists", apperr.ErrConflict, plan.Slug)
	}

	if err := uow.PlanRepository().Create(ctx, plan); err != nil {
		return nil, err
	}
	// Exactly one plan may be the default.
	if plan.IsDefault {
		if err := uow.PlanRepository().ClearDefault(ctx, plan.Id); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.cache.Delete(planListCacheKey)
	s.logger.Info("PlanService", "Plan created", map[string]interface{}{
		"plan_id": plan.Id.String(),
		"slug":    plan.Slug,
	})
	return toPlanResponse(plan), nil
}

func (s *planService) UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.UpsertPlanRequest) (*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	plan, err := uow.PlanRepository().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: plan %s", apperr.ErrNotFound, id)
	}

	wasDefault := plan.IsDefault

	plan.Name = req.Name
	plan.Slug = req.Slug
	plan.Description = req.Description
	plan.BillingModel = entity.BillingModel(req.BillingModel)
	plan.PriceMonthly = req.PriceMonthly
	plan.PriceYearly = req.PriceYearly
	plan.PriceLifetime = req.PriceLifetime
	plan.Currency = req.Currency
	plan.MaxForms = req.MaxForms
	plan.MaxSubmissionsPerForm = req.MaxSubmissionsPerForm
	plan.MaxExportsPerForm = req.MaxExportsPerForm
	plan.IsDefault = req.IsDefault
	plan.IsActive = req.IsActive
	plan.SortOrder = req.SortOrder
	plan.UpdatedAt = time.Now()

	if err := validatePlanInvariants(plan); err != nil {
		return nil, err
	}
	if wasDefault && !plan.IsDefault {
		return nil, fmt.Errorf("%w: demote the default plan by promoting another one", apperr.ErrInvariantViolation)
	}
	if wasDefault && !plan.IsActive {
		return nil, fmt.Errorf("%w: the default plan cannot be deactivated", apperr.ErrInvariantViolation)
	}

	if err := uow.PlanRepository().Update(ctx, plan); err != nil {
		return nil, err
	}
	if plan.IsDefault {
		if err := uow.PlanRepository().ClearDefault(ctx, plan.Id); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.cache.Delete(planListCacheKey)
	return toPlanResponse(plan), nil
}

func (s *planService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	plan, err := uow.PlanRepository().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("%w: plan %s", apperr.ErrNotFound, id)
	}
	if plan.IsDefault {
		return fmt.Errorf("%w: the default plan cannot be deleted", apperr.ErrInvariantViolation)
	}

	count, err := uow.PlanRepository().CountSubscriptions(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d subscriptions still reference this plan", apperr.ErrInvariantViolation, count)
	}

	if err := uow.PlanRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.cache.Delete(planListCacheKey)
	s.logger.Info("PlanService", "Plan deleted", map[string]interface{}{
		"plan_id": id.String(),
		"slug":    plan.Slug,
	})
	return nil
}

func validatePlanInvariants(plan *entity.Plan) error {
	// The default plan is the fallback for users without a paid
	// subscription, so it must cost nothing.
	if plan.IsDefault && !plan.IsFree() {
		return fmt.Errorf("%w: the default plan must be free", apperr.ErrInvariantViolation)
	}
	return nil
}

func planFromRequest(id uuid.UUID, req *dto.UpsertPlanRequest) *entity.Plan {
	now := time.Now()
	return &entity.Plan{
		Id:                    id,
		Name:                  req.Name,
		Slug:                  req.Slug,
		Description:           req.Description,
		BillingModel:          entity.BillingModel(req.BillingModel),
		PriceMonthly:          req.PriceMonthly,
		PriceYearly:           req.PriceYearly,
		PriceLifetime:         req.PriceLifetime,
		Currency:              req.Currency,
		MaxForms:              req.MaxForms,
		MaxSubmissionsPerForm: req.MaxSubmissionsPerForm,
		MaxExportsPerForm:     req.MaxExportsPerForm,
		IsDefault:             req.IsDefault,
		IsActive:              req.IsActive,
		SortOrder:             req.SortOrder,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func toPlanResponse(p *entity.Plan) *dto.PlanResponse {
	return &dto.PlanResponse{
		Id:            p.Id,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		BillingModel:  string(p.BillingModel),
		PriceMonthly:  p.PriceMonthly,
		PriceYearly:   p.PriceYearly,
		PriceLifetime: p.PriceLifetime,
		Currency:      p.Currency,
		Limits: dto.PlanLimits{
			MaxForms:              p.MaxForms,
			MaxSubmissionsPerForm: p.MaxSubmissionsPerForm,
			MaxExportsPerForm:     p.MaxExportsPerForm,
		},
		IsDefault: p.IsDefault,
	}
}
