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
	"formhive-be/pkg/events"
	"formhive-be/pkg/payment"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	StartCheckout(ctx context.Context, userId uuid.UUID, subscriptionId uuid.UUID) (*dto.CheckoutResponse, error)
	RequestPlanChange(ctx context.Context, userId uuid.UUID, req *dto.ChangePlanRequest) (*dto.SubscriptionResponse, error)
	Cancel(ctx context.Context, userId uuid.UUID, req *dto.CancelSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID) ([]*dto.HistoryEntryResponse, error)

	// ExpireDue transitions overdue subscriptions to expired, each in
	// its own transaction. It returns how many were expired.
	ExpireDue(ctx context.Context, now time.Time, batchSize int) (int, error)

	// Tx variants run inside a caller-supplied unit of work so the
	// webhook processor can make the transition and the payment ledger
	// row one atomic step. They return the events to publish after the
	// caller commits.
	ActivateTx(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, now time.Time) ([]events.Event, error)
	HandlePaymentFailureTx(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, reason string, now time.Time) ([]events.Event, error)
	CancelFromProviderTx(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, reason string, now time.Time) ([]events.Event, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	providers  *payment.Registry
	publisher  IPublisherService
	logger     logger.ILogger

	// billingEnabled gates the paid tiers. When false, zero-cost plans
	// still work; paid creates and checkouts are rejected.
	billingEnabled bool
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	providers *payment.Registry,
	publisher IPublisherService,
	log logger.ILogger,
	billingEnabled bool,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory:     uowFactory,
		providers:      providers,
		publisher:      publisher,
		logger:         log,
		billingEnabled: billingEnabled,
	}
}

// periodEnd computes when the paid period closes. Lifetime plans never
// expire, so they get a nil end date.
func periodEnd(model entity.BillingModel, cycle entity.BillingCycle, from time.Time) *time.Time {
	if model == entity.BillingModelLifetime {
		return nil
	}
	var end time.Time
	if cycle == entity.BillingCycleYearly {
		end = from.AddDate(0, 0, 365)
	} else {
		end = from.AddDate(0, 0, 30)
	}
	return &end
}

func (s *subscriptionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// The user row lock serializes concurrent creates for the same
	// user; the open-subscription check below is then race free.
	user, err := uow.UserRepository().FindByID(ctx, userId, true)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userId)
	}

	open, err := uow.SubscriptionRepository().FindOpenByUser(ctx, userId, false)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("%w: user already has a %s subscription", apperr.ErrConflict, open.Status)
	}

	plan, err := uow.PlanRepository().FindByID(ctx, req.PlanId)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, fmt.Errorf("%w: plan %s", apperr.ErrNotFound, req.PlanId)
	}

	cycle := entity.BillingCycle(req.BillingCycle)
	now := time.Now()
	amount := plan.PriceFor(cycle)
	if amount > 0 && !s.billingEnabled {
		return nil, fmt.Errorf("%w: billing is disabled, only zero-cost plans are available", apperr.ErrInvariantViolation)
	}

	sub := &entity.Subscription{
		Id:              uuid.New(),
		UserId:          userId,
		PlanId:          plan.Id,
		PlanType:        plan.BillingModel,
		Status:          entity.SubscriptionStatusPending,
		BillingCycle:    cycle,
		Amount:          amount,
		Currency:        plan.Currency,
		StartDate:       now,
		AutoRenew:       plan.BillingModel == entity.BillingModelRecurring,
		PaymentProvider: payment.ProviderMidtrans,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	deferred := []events.Event{s.lifecycleEvent(events.SubscriptionCreated, sub, user, plan.Name, now)}

	history := &entity.SubscriptionHistory{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		UserId:         userId,
		Action:         entity.HistoryActionCreated,
		PreviousStatus: "",
		NewStatus:      entity.SubscriptionStatusPending,
		NewPlanId:      &plan.Id,
		NewAmount:      &amount,
		ChangedBy:      entity.ActorUser,
		CreatedAt:      now,
	}

	// Zero-cost subscriptions never touch the payment provider: they
	// go straight to active, with no end date, and run until cancelled.
	if amount == 0 {
		sub.Status = entity.SubscriptionStatusActive
		sub.AutoRenew = false
		history.NewStatus = entity.SubscriptionStatusActive
	}

	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := uow.SubscriptionHistoryRepository().Append(ctx, history); err != nil {
		return nil, err
	}

	if amount == 0 {
		if err := uow.UserRepository().SyncCurrentPlan(ctx, userId, &plan.Id); err != nil {
			return nil, err
		}
		activated := &entity.SubscriptionHistory{
			Id:             uuid.New(),
			SubscriptionId: sub.Id,
			UserId:         userId,
			Action:         entity.HistoryActionActivated,
			PreviousStatus: entity.SubscriptionStatusPending,
			NewStatus:      entity.SubscriptionStatusActive,
			NewPlanId:      &plan.Id,
			NewAmount:      &amount,
			Reason:         "zero-cost plan, no payment required",
			ChangedBy:      entity.ActorSystem,
			CreatedAt:      now,
		}
		if err := uow.SubscriptionHistoryRepository().Append(ctx, activated); err != nil {
			return nil, err
		}
		deferred = append(deferred, s.lifecycleEvent(events.SubscriptionActivated, sub, user, plan.Name, now))
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishAll(ctx, deferred)
	s.logger.Info("SubscriptionService", "Subscription created", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         userId.String(),
		"plan":            plan.Slug,
		"status":          string(sub.Status),
	})

	return toSubscriptionResponse(sub, plan.Name), nil
}

func (s *subscriptionService) StartCheckout(ctx context.Context, userId uuid.UUID, subscriptionId uuid.UUID) (*dto.CheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindByID(ctx, subscriptionId, false)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.UserId != userId {
		return nil, fmt.Errorf("%w: subscription %s", apperr.ErrNotFound, subscriptionId)
	}
	if sub.Status != entity.SubscriptionStatusPending {
		return nil, fmt.Errorf("%w: checkout requires a pending subscription, got %s", apperr.ErrInvariantViolation, sub.Status)
	}

	// A pending plan change is paid at the target plan's current price.
	planId := sub.PlanId
	if sub.PendingChange != nil {
		planId = sub.PendingChange.TargetPlanId
	}
	plan, err := uow.PlanRepository().FindByID(ctx, planId)
	if err != nil {
		return nil, err
	}
	user, err := uow.UserRepository().FindByID(ctx, userId, false)
	if err != nil {
		return nil, err
	}
	if plan == nil || user == nil {
		return nil, fmt.Errorf("%w: subscription references missing plan or user", apperr.ErrInvariantViolation)
	}

	amount := sub.Amount
	if sub.PendingChange != nil {
		amount = plan.PriceFor(sub.BillingCycle)
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: zero-cost subscription has nothing to pay", apperr.ErrInvariantViolation)
	}
	if !s.billingEnabled {
		return nil, fmt.Errorf("%w: billing is disabled", apperr.ErrInvariantViolation)
	}

	provider, err := s.providers.Get(sub.PaymentProvider)
	if err != nil {
		return nil, err
	}

	session, err := provider.CreateCheckoutSession(ctx, payment.CheckoutParams{
		OrderID:       sub.Id,
		Amount:        amount,
		Currency:      sub.Currency,
		ItemID:        plan.Id,
		ItemName:      plan.Name,
		CustomerName:  user.FullName,
		CustomerEmail: user.Email,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		SubscriptionId: sub.Id,
		Token:          session.Token,
		RedirectUrl:    session.RedirectURL,
	}, nil
}

func (s *subscriptionService) RequestPlanChange(ctx context.Context, userId uuid.UUID, req *dto.ChangePlanRequest) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindByID(ctx, req.SubscriptionId, true)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.UserId != userId {
		return nil, fmt.Errorf("%w: subscription %s", apperr.ErrNotFound, req.SubscriptionId)
	}
	// Allowed from active, or from pending when a change is already on
	// file (a re-request before payment overwrites the earlier one).
	rerequest := sub.Status == entity.SubscriptionStatusPending && sub.PendingChange != nil
	if sub.Status != entity.SubscriptionStatusActive && !rerequest {
		return nil, fmt.Errorf("%w: plan changes require an active subscription, got %s", apperr.ErrInvariantViolation, sub.Status)
	}
	if sub.PlanId == req.TargetPlanId {
		return nil, fmt.Errorf("%w: subscription is already on that plan", apperr.ErrConflict)
	}

	target, err := uow.PlanRepository().FindByID(ctx, req.TargetPlanId)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.IsActive {
		return nil, fmt.Errorf("%w: plan %s", apperr.ErrNotFound, req.TargetPlanId)
	}

	now := time.Now()
	changeType := entity.PlanChangeType(req.Direction)
	previousStatus := sub.Status

	// The request only records intent. Plan, amount and limits stay
	// untouched until the payment webhook confirms; the subscription
	// parks at pending until then.
	sub.PendingChange = &entity.PendingPlanChange{
		Type:         changeType,
		TargetPlanId: target.Id,
		RequestedAt:  now,
	}
	sub.Status = entity.SubscriptionStatusPending
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	action := entity.HistoryActionUpgradeRequested
	if changeType == entity.PlanChangeDowngrade {
		action = entity.HistoryActionDowngradeRequested
	}
	history := &entity.SubscriptionHistory{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		UserId:         userId,
		Action:         action,
		PreviousStatus: previousStatus,
		NewStatus:      sub.Status,
		PreviousPlanId: &sub.PlanId,
		NewPlanId:      &target.Id,
		ChangedBy:      entity.ActorUser,
		CreatedAt:      now,
	}
	if err := uow.SubscriptionHistoryRepository().Append(ctx, history); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.BaseEvent{
		Type: events.SubscriptionChangePending,
		Data: map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"user_id":         userId.String(),
			"change_type":     string(changeType),
			"target_plan_id":  target.Id.String(),
		},
		OccurredAt: now,
	})
	s.logger.Info("SubscriptionService", "Plan change requested", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"change_type":     string(changeType),
		"target_plan":     target.Slug,
	})

	return toSubscriptionResponse(sub, target.Name), nil
}

// ActivateTx applies a confirmed payment. It is idempotent against
// replays: an already-active subscription with no pending change is
// left untouched. A pending plan change is applied here and only here.
func (s *subscriptionService) ActivateTx(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, now time.Time) ([]events.Event, error) {
	if sub.IsTerminal() {
		s.logger.Warn("SubscriptionService", "Payment confirmed for terminal subscription, ignoring transition", map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"status":          string(sub.Status),
		})
		return nil, nil
	}
	if sub.Status == entity.SubscriptionStatusActive && sub.PendingChange == nil {
		// Renewal payment: extend the period, nothing else changes.
		sub.EndDate = periodEnd(sub.PlanType, sub.BillingCycle, now)
		sub.FailedPaymentCount = 0
		sub.UpdatedAt = now
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return nil, err
		}
		return nil, nil
	}

	previousStatus := sub.Status
	previousPlanId := sub.PlanId

	if sub.PendingChange != nil {
		target, err := uow.PlanRepository().FindByID(ctx, sub.PendingChange.TargetPlanId)
		if err != nil {
			return nil, err
		}
		if target == nil || !target.IsActive {
			return nil, fmt.Errorf("%w: pending change targets unavailable plan %s", apperr.ErrInvariantViolation, sub.PendingChange.TargetPlanId)
		}
		sub.PlanId = target.Id
		sub.PlanType = target.BillingModel
		sub.Amount = target.PriceFor(sub.BillingCycle)
		sub.Currency = target.Currency
		sub.PendingChange = nil
	}

	sub.Status = entity.SubscriptionStatusActive
	sub.FailedPaymentCount = 0
	sub.EndDate = periodEnd(sub.PlanType, sub.BillingCycle, now)
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	if err := uow.UserRepository().SyncCurrentPlan(ctx, sub.UserId, &sub.PlanId); err != nil {
		return nil, err
	}

	history := &entity.SubscriptionHistory{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		UserId:         sub.UserId,
		Action:         entity.HistoryActionActivated,
		PreviousStatus: previousStatus,
		NewStatus:      entity.SubscriptionStatusActive,
		PreviousPlanId: &previousPlanId,
		NewPlanId:      &sub.PlanId,
		NewAmount:      &sub.Amount,
		Reason:         "payment confirmed",
		ChangedBy:      entity.ActorSystem,
		CreatedAt:      now,
	}
	if err := uow.SubscriptionHistoryRepository().Append(ctx, history); err != nil {
		return nil, err
	}

	return []events.Event{s.lifecycleEvent(events.SubscriptionActivated, sub, nil, "", now)}, nil
}

// HandlePaymentFailureTx records one failed attempt. The third
// consecutive failure suspends the subscription; before that the
// status is left alone so active users keep access during retries.
// Failures against an already-suspended subscription still count and
// still land in history, but the suspension side effects fire once.
func (s *subscriptionService) HandlePaymentFailureTx(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, reason string, now time.Time) ([]events.Event, error) {
	if sub.IsTerminal() {
		return nil, nil
	}

	previousStatus := sub.Status
	sub.FailedPaymentCount++
	sub.UpdatedAt = now

	suspend := previousStatus != entity.SubscriptionStatusSuspended &&
		sub.FailedPaymentCount >= entity.MaxPaymentRetries
	if suspend {
		sub.Status = entity.SubscriptionStatusSuspended
	}

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	history := &entity.SubscriptionHistory{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		UserId:         sub.UserId,
		Action:         entity.HistoryActionPaymentFailed,
		PreviousStatus: previousStatus,
		NewStatus:      sub.Status,
		Reason:         reason,
		ChangedBy:      entity.ActorSystem,
		Metadata: map[string]interface{}{
			"failed_payment_count": sub.FailedPaymentCount,
		},
		CreatedAt: now,
	}
	if err := uow.SubscriptionHistoryRepository().Append(ctx, history); err != nil {
		return nil, err
	}

	failedEvt := s.lifecycleEvent(events.PaymentFailed, sub, nil, "", now).(events.BaseEvent)
	failedEvt.Data["failed_payment_count"] = sub.FailedPaymentCount
	deferred := []events.Event{failedEvt}

	if suspend {
		// Suspended users fall back to the default plan's limits.
		if err := uow.UserRepository().SyncCurrentPlan(ctx, sub.UserId, nil); err != nil {
			return nil, err
		}
		deferred = append(deferred, s.lifecycleEvent(events.SubscriptionSuspended, sub, nil, "", now))
	}

	return deferred, nil
}

// CancelFromProviderTx handles provider-side cancellations and refunds.
// Replays against an already-cancelled subscription are no-ops.
func (s *subscriptionService) CancelFromProviderTx(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, reason string, now time.Time) ([]events.Event, error) {
	if sub.IsTerminal() {
		return nil, nil
	}
	if err := s.cancelLocked(ctx, uow, sub, reason, entity.ActorSystem, now); err != nil {
		return nil, err
	}
	return []events.Event{s.lifecycleEvent(events.SubscriptionCancelled, sub, nil, "", now)}, nil
}

// cancelLocked mutates a row the caller already holds a lock on.
func (s *subscriptionService) cancelLocked(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, reason string, actor entity.HistoryActor, now time.Time) error {
	previousStatus := sub.Status

	sub.Status = entity.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	sub.AutoRenew = false
	sub.PendingChange = nil
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	if err := uow.UserRepository().SyncCurrentPlan(ctx, sub.UserId, nil); err != nil {
		return err
	}

	history := &entity.SubscriptionHistory{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		UserId:         sub.UserId,
		Action:         entity.HistoryActionCancelled,
		PreviousStatus: previousStatus,
		NewStatus:      entity.SubscriptionStatusCancelled,
		Reason:         reason,
		ChangedBy:      actor,
		CreatedAt:      now,
	}
	return uow.SubscriptionHistoryRepository().Append(ctx, history)
}

func (s *subscriptionService) Cancel(ctx context.Context, userId uuid.UUID, req *dto.CancelSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindByID(ctx, req.SubscriptionId, true)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.UserId != userId {
		return nil, fmt.Errorf("%w: subscription %s", apperr.ErrNotFound, req.SubscriptionId)
	}
	if sub.Status == entity.SubscriptionStatusCancelled {
		// Idempotent: the caller gets the existing row back, no second
		// history entry is written.
		return toSubscriptionResponse(sub, ""), fmt.Errorf("%w", apperr.ErrAlreadyCancelled)
	}
	if sub.Status == entity.SubscriptionStatusExpired {
		return nil, fmt.Errorf("%w: expired subscriptions cannot be cancelled", apperr.ErrInvariantViolation)
	}

	now := time.Now()
	if err := s.cancelLocked(ctx, uow, sub, req.Reason, entity.ActorUser, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, s.lifecycleEvent(events.SubscriptionCancelled, sub, nil, "", now))
	s.logger.Info("SubscriptionService", "Subscription cancelled", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         userId.String(),
	})

	return toSubscriptionResponse(sub, ""), nil
}

func (s *subscriptionService) ExpireDue(ctx context.Context, now time.Time, batchSize int) (int, error) {
	listUow := s.uowFactory.NewUnitOfWork(ctx)
	due, err := listUow.SubscriptionRepository().FindDueForExpiry(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range due {
		// One transaction per subscription: a failure on one row must
		// not roll back the others.
		if err := s.expireOne(ctx, candidate.Id, now); err != nil {
			s.logger.Error("SubscriptionService", "Failed to expire subscription", map[string]interface{}{
				"subscription_id": candidate.Id.String(),
				"error":           err.Error(),
			})
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *subscriptionService) expireOne(ctx context.Context, subscriptionId uuid.UUID, now time.Time) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindByID(ctx, subscriptionId, true)
	if err != nil {
		return err
	}
	// Re-check under the lock: a webhook may have renewed or cancelled
	// the row between listing and locking.
	if sub == nil || sub.Status != entity.SubscriptionStatusActive ||
		sub.EndDate == nil || sub.EndDate.After(now) {
		return nil
	}

	previousStatus := sub.Status
	sub.Status = entity.SubscriptionStatusExpired
	sub.PendingChange = nil
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}
	if err := uow.UserRepository().SyncCurrentPlan(ctx, sub.UserId, nil); err != nil {
		return err
	}

	history := &entity.SubscriptionHistory{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		UserId:         sub.UserId,
		Action:         entity.HistoryActionExpired,
		PreviousStatus: previousStatus,
		NewStatus:      entity.SubscriptionStatusExpired,
		Reason:         "billing period ended without renewal",
		ChangedBy:      entity.ActorSystem,
		CreatedAt:      now,
	}
	if err := uow.SubscriptionHistoryRepository().Append(ctx, history); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.publisher.Publish(ctx, s.lifecycleEvent(events.SubscriptionExpired, sub, nil, "", now))
	return nil
}

func (s *subscriptionService) GetStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOpenByUser(ctx, userId, false)
	if err != nil {
		return nil, err
	}

	// Inactive or absent subscriptions fall back to the default plan.
	var plan *entity.Plan
	if sub != nil && sub.Status == entity.SubscriptionStatusActive {
		plan, err = uow.PlanRepository().FindByID(ctx, sub.PlanId)
	} else {
		plan, err = uow.PlanRepository().FindDefault(ctx)
	}
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: no governing plan available", apperr.ErrInvariantViolation)
	}

	res := &dto.SubscriptionStatusResponse{
		PlanName: plan.Name,
		IsActive: sub != nil && sub.Status == entity.SubscriptionStatusActive,
		Limits: dto.PlanLimits{
			MaxForms:              plan.MaxForms,
			MaxSubmissionsPerForm: plan.MaxSubmissionsPerForm,
			MaxExportsPerForm:     plan.MaxExportsPerForm,
		},
	}
	if sub != nil {
		res.Subscription = toSubscriptionResponse(sub, plan.Name)
	}
	return res, nil
}

func (s *subscriptionService) GetHistory(ctx context.Context, userId uuid.UUID) ([]*dto.HistoryEntryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	entries, err := uow.SubscriptionHistoryRepository().FindByUser(ctx, userId,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.HistoryEntryResponse, 0, len(entries))
	for _, h := range entries {
		res = append(res, &dto.HistoryEntryResponse{
			Id:             h.Id,
			SubscriptionId: h.SubscriptionId,
			Action:         string(h.Action),
			PreviousStatus: string(h.PreviousStatus),
			NewStatus:      string(h.NewStatus),
			PreviousPlanId: h.PreviousPlanId,
			NewPlanId:      h.NewPlanId,
			NewAmount:      h.NewAmount,
			Reason:         h.Reason,
			ChangedBy:      string(h.ChangedBy),
			CreatedAt:      h.CreatedAt,
		})
	}
	return res, nil
}

func (s *subscriptionService) lifecycleEvent(eventType string, sub *entity.Subscription, user *entity.User, planName string, now time.Time) events.Event {
	data := map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         sub.UserId.String(),
		"plan_id":         sub.PlanId.String(),
		"status":          string(sub.Status),
		"amount":          sub.Amount,
		"currency":        sub.Currency,
	}
	if user != nil {
		data["email"] = user.Email
		data["full_name"] = user.FullName
	}
	if planName != "" {
		data["plan_name"] = planName
	}
	return events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}
}

func (s *subscriptionService) publishAll(ctx context.Context, deferred []events.Event) {
	for _, evt := range deferred {
		s.publisher.Publish(ctx, evt)
	}
}

func toSubscriptionResponse(sub *entity.Subscription, planName string) *dto.SubscriptionResponse {
	res := &dto.SubscriptionResponse{
		Id:           sub.Id,
		PlanId:       sub.PlanId,
		PlanName:     planName,
		Status:       string(sub.Status),
		BillingCycle: string(sub.BillingCycle),
		Amount:       sub.Amount,
		Currency:     sub.Currency,
		StartDate:    sub.StartDate,
		EndDate:      sub.EndDate,
		CancelledAt:  sub.CancelledAt,
		AutoRenew:    sub.AutoRenew,
	}
	if sub.PendingChange != nil {
		res.PendingChange = &dto.PendingChangeResponse{
			Type:         string(sub.PendingChange.Type),
			TargetPlanId: sub.PendingChange.TargetPlanId,
			RequestedAt:  sub.PendingChange.RequestedAt,
		}
	}
	return res
}
