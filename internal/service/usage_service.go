package service

import (
	"context"
	"fmt"
	"time"

	"formhive-be/internal/apperr"
	"formhive-be/internal/dto"
	"formhive-be/internal/entity"
	"formhive-be/internal/pkg/logger"
	"formhive-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUsageService interface {
	// CheckLimit answers whether the user may perform the action right
	// now under the governing plan. formId is required for the
	// per-form actions and ignored for create_form.
	CheckLimit(ctx context.Context, userId uuid.UUID, action string, formId *uuid.UUID) (*dto.LimitCheckResponse, error)

	CreateForm(ctx context.Context, userId uuid.UUID, req *dto.CreateFormRequest) (*dto.FormResponse, error)
	SubmitForm(ctx context.Context, formId uuid.UUID, req *dto.SubmitFormRequest) error
	ExportForm(ctx context.Context, userId uuid.UUID, formId uuid.UUID, req *dto.ExportFormRequest) error
}

type usageService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewUsageService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IUsageService {
	return &usageService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

// governingPlan resolves the plan whose limits apply to the user:
// users.current_plan_id when the state machine has set it, the default
// plan otherwise.
func (s *usageService) governingPlan(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Plan, error) {
	user, err := uow.UserRepository().FindByID(ctx, userId, false)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userId)
	}

	if user.CurrentPlanId != nil {
		plan, err := uow.PlanRepository().FindByID(ctx, *user.CurrentPlanId)
		if err != nil {
			return nil, err
		}
		if plan != nil {
			return plan, nil
		}
		// Stale pointer to a deleted plan. Fall through to the default
		// rather than lock the user out.
		s.logger.Warn("UsageService", "current_plan_id points at a missing plan, using default", map[string]interface{}{
			"user_id": userId.String(),
			"plan_id": user.CurrentPlanId.String(),
		})
	}

	plan, err := uow.PlanRepository().FindDefault(ctx)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: no default plan configured", apperr.ErrInvariantViolation)
	}
	return plan, nil
}

// evaluate applies the limit convention: -1 is unlimited, 0 disables
// the feature outright.
func evaluate(action string, limit int, current int64) *dto.LimitCheckResponse {
	res := &dto.LimitCheckResponse{
		Action:  action,
		Limit:   limit,
		Current: current,
	}
	switch {
	case limit == -1:
		res.Allowed = true
		res.Remaining = -1
	case limit == 0:
		res.Allowed = false
		res.Remaining = 0
	default:
		remaining := int64(limit) - current
		if remaining < 0 {
			remaining = 0
		}
		res.Allowed = current < int64(limit)
		res.Remaining = remaining
	}
	return res
}

func (s *usageService) CheckLimit(ctx context.Context, userId uuid.UUID, action string, formId *uuid.UUID) (*dto.LimitCheckResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.checkLimit(ctx, uow, userId, action, formId)
}

func (s *usageService) checkLimit(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, action string, formId *uuid.UUID) (*dto.LimitCheckResponse, error) {
	plan, err := s.governingPlan(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	usage := uow.UsageRepository()

	switch action {
	case dto.ActionCreateForm:
		current, err := usage.CountFormsByUser(ctx, userId)
		if err != nil {
			return nil, err
		}
		return evaluate(action, plan.MaxForms, current), nil

	case dto.ActionCreateSubmission:
		if formId == nil {
			return nil, fmt.Errorf("%w: form id required for %s", apperr.ErrInvariantViolation, action)
		}
		current, err := usage.CountSubmissionsByForm(ctx, *formId)
		if err != nil {
			return nil, err
		}
		return evaluate(action, plan.MaxSubmissionsPerForm, current), nil

	case dto.ActionExportSubmissions:
		if formId == nil {
			return nil, fmt.Errorf("%w: form id required for %s", apperr.ErrInvariantViolation, action)
		}
		current, err := usage.CountExportsByForm(ctx, *formId)
		if err != nil {
			return nil, err
		}
		return evaluate(action, plan.MaxExportsPerForm, current), nil
	}

	return nil, fmt.Errorf("%w: unknown usage action %q", apperr.ErrNotFound, action)
}

func (s *usageService) CreateForm(ctx context.Context, userId uuid.UUID, req *dto.CreateFormRequest) (*dto.FormResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Lock the user row so the count-then-create pair cannot race with
	// another create for the same user.
	if _, err := uow.UserRepository().FindByID(ctx, userId, true); err != nil {
		return nil, err
	}

	check, err := s.checkLimit(ctx, uow, userId, dto.ActionCreateForm, nil)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, fmt.Errorf("%w: forms limit %d reached", apperr.ErrLimitExceeded, check.Limit)
	}

	now := time.Now()
	form := &entity.Form{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      req.Name,
		Slug:      req.Slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.UsageRepository().CreateForm(ctx, form); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.FormResponse{
		Id:       form.Id,
		Name:     form.Name,
		Slug:     form.Slug,
		IsActive: form.IsActive,
	}, nil
}

func (s *usageService) SubmitForm(ctx context.Context, formId uuid.UUID, req *dto.SubmitFormRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	form, err := uow.UsageRepository().FindFormByID(ctx, formId)
	if err != nil {
		return err
	}
	if form == nil || !form.IsActive {
		return fmt.Errorf("%w: form %s", apperr.ErrNotFound, formId)
	}

	// Submissions count against the owner's plan, not the submitter's.
	check, err := s.checkLimit(ctx, uow, form.UserId, dto.ActionCreateSubmission, &formId)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return fmt.Errorf("%w: submissions limit %d reached for this form", apperr.ErrLimitExceeded, check.Limit)
	}

	submission := &entity.FormSubmission{
		Id:        uuid.New(),
		FormId:    formId,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}
	if err := uow.UsageRepository().CreateSubmission(ctx, submission); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *usageService) ExportForm(ctx context.Context, userId uuid.UUID, formId uuid.UUID, req *dto.ExportFormRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	form, err := uow.UsageRepository().FindFormByID(ctx, formId)
	if err != nil {
		return err
	}
	if form == nil || form.UserId != userId {
		return fmt.Errorf("%w: form %s", apperr.ErrNotFound, formId)
	}

	check, err := s.checkLimit(ctx, uow, userId, dto.ActionExportSubmissions, &formId)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return fmt.Errorf("%w: exports limit %d reached for this form", apperr.ErrLimitExceeded, check.Limit)
	}

	format := req.Format
	if format == "" {
		format = "csv"
	}
	export := &entity.FormExport{
		Id:        uuid.New(),
		FormId:    formId,
		UserId:    userId,
		Format:    format,
		CreatedAt: time.Now(),
	}
	if err := uow.UsageRepository().CreateExport(ctx, export); err != nil {
		return err
	}
	return uow.Commit()
}
