package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"formhive-be/internal/apperr"
	"formhive-be/internal/dto"
	"formhive-be/internal/entity"
	"formhive-be/pkg/events"
	"formhive-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subTestEnv struct {
	store     *fakeStore
	publisher *capturingPublisher
	service   ISubscriptionService

	user     *entity.User
	freePlan *entity.Plan
	proPlan  *entity.Plan
	bizPlan  *entity.Plan
}

func newSubTestEnv(t *testing.T) *subTestEnv {
	t.Helper()

	store := newFakeStore()
	publisher := &capturingPublisher{}

	env := &subTestEnv{
		store:     store,
		publisher: publisher,
		service:   NewSubscriptionService(&fakeFactory{store: store}, payment.NewRegistry(), publisher, nopLogger{}, true),
	}

	env.freePlan = &entity.Plan{
		Id: uuid.New(), Name: "Free", Slug: "free",
		BillingModel: entity.BillingModelRecurring, Currency: "USD",
		MaxForms: 3, MaxSubmissionsPerForm: 100, MaxExportsPerForm: 1,
		IsDefault: true, IsActive: true,
	}
	env.proPlan = &entity.Plan{
		Id: uuid.New(), Name: "Pro", Slug: "pro",
		BillingModel: entity.BillingModelRecurring,
		PriceMonthly: 19, PriceYearly: 190, Currency: "USD",
		MaxForms: 50, MaxSubmissionsPerForm: 10000, MaxExportsPerForm: -1,
		IsActive: true,
	}
	env.bizPlan = &entity.Plan{
		Id: uuid.New(), Name: "Business", Slug: "business",
		BillingModel: entity.BillingModelRecurring,
		PriceMonthly: 49, PriceYearly: 490, Currency: "USD",
		MaxForms: -1, MaxSubmissionsPerForm: -1, MaxExportsPerForm: -1,
		IsActive: true,
	}
	store.addPlan(env.freePlan)
	store.addPlan(env.proPlan)
	store.addPlan(env.bizPlan)

	env.user = &entity.User{Id: uuid.New(), Email: "owner@example.com", FullName: "Owner"}
	store.addUser(env.user)

	return env
}

// activeSub seeds an already-active paid subscription, as if a
// checkout had completed earlier.
func (env *subTestEnv) activeSub(plan *entity.Plan, cycle entity.BillingCycle) *entity.Subscription {
	now := time.Now()
	end := now.AddDate(0, 1, 0)
	sub := &entity.Subscription{
		Id:           uuid.New(),
		UserId:       env.user.Id,
		PlanId:       plan.Id,
		PlanType:     plan.BillingModel,
		Status:       entity.SubscriptionStatusActive,
		BillingCycle: cycle,
		Amount:       plan.PriceFor(cycle),
		Currency:     plan.Currency,
		StartDate:    now,
		EndDate:      &end,
		AutoRenew:    true,
	}
	env.store.addSub(sub)
	env.store.users[env.user.Id].CurrentPlanId = &plan.Id
	return sub
}

func TestCreateRejectsSecondOpenSubscription(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	first, err := env.service.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.proPlan.Id, BillingCycle: "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", first.Status)

	_, err = env.service.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.bizPlan.Id, BillingCycle: "monthly",
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateZeroCostActivatesWithoutPayment(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	res, err := env.service.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.freePlan.Id, BillingCycle: "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, "active", res.Status)
	assert.Zero(t, res.Amount)

	// No payment provider involvement, no ledger rows.
	assert.Empty(t, env.store.transactions)

	// Limits switch to the plan immediately.
	user := env.store.users[env.user.Id]
	require.NotNil(t, user.CurrentPlanId)
	assert.Equal(t, env.freePlan.Id, *user.CurrentPlanId)

	rows := env.store.historyFor(res.Id)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.HistoryActionCreated, rows[0].Action)
	assert.Equal(t, entity.HistoryActionActivated, rows[1].Action)

	assert.Equal(t, []string{events.SubscriptionCreated, events.SubscriptionActivated}, env.publisher.typesSeen())
}

func TestCreatePaidStaysPendingUntilWebhook(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	res, err := env.service.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.proPlan.Id, BillingCycle: "yearly",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, float64(190), res.Amount)
	assert.Nil(t, res.EndDate)

	// Pending subscriptions grant nothing.
	assert.Nil(t, env.store.users[env.user.Id].CurrentPlanId)
}

func TestRequestPlanChangeDefersEverything(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	sub := env.activeSub(env.proPlan, entity.BillingCycleMonthly)

	res, err := env.service.RequestPlanChange(ctx, env.user.Id, &dto.ChangePlanRequest{
		SubscriptionId: sub.Id,
		TargetPlanId:   env.bizPlan.Id,
		Direction:      "upgrade",
	})
	require.NoError(t, err)

	// Still on the old plan at the old price; only intent is recorded,
	// and the subscription parks at pending until payment confirms.
	stored := env.store.subscriptions[sub.Id]
	assert.Equal(t, entity.SubscriptionStatusPending, stored.Status)
	assert.Equal(t, env.proPlan.Id, stored.PlanId)
	assert.Equal(t, float64(19), stored.Amount)
	require.NotNil(t, stored.PendingChange)
	assert.Equal(t, entity.PlanChangeUpgrade, stored.PendingChange.Type)
	assert.Equal(t, env.bizPlan.Id, stored.PendingChange.TargetPlanId)

	require.NotNil(t, res.PendingChange)

	rows := env.store.historyFor(sub.Id)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.HistoryActionUpgradeRequested, rows[0].Action)
	assert.Equal(t, entity.SubscriptionStatusActive, rows[0].PreviousStatus)
	assert.Equal(t, entity.SubscriptionStatusPending, rows[0].NewStatus)
	// No amount is recorded until payment confirms the new price.
	assert.Nil(t, rows[0].NewAmount)

	// Limits are untouched.
	assert.Equal(t, env.proPlan.Id, *env.store.users[env.user.Id].CurrentPlanId)
}

func TestRequestPlanChangeCanBeRevisedBeforePayment(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	sub := env.activeSub(env.proPlan, entity.BillingCycleMonthly)

	_, err := env.service.RequestPlanChange(ctx, env.user.Id, &dto.ChangePlanRequest{
		SubscriptionId: sub.Id,
		TargetPlanId:   env.bizPlan.Id,
		Direction:      "upgrade",
	})
	require.NoError(t, err)

	// A second request before payment overwrites the first.
	_, err = env.service.RequestPlanChange(ctx, env.user.Id, &dto.ChangePlanRequest{
		SubscriptionId: sub.Id,
		TargetPlanId:   env.freePlan.Id,
		Direction:      "downgrade",
	})
	require.NoError(t, err)

	stored := env.store.subscriptions[sub.Id]
	require.NotNil(t, stored.PendingChange)
	assert.Equal(t, entity.PlanChangeDowngrade, stored.PendingChange.Type)
	assert.Equal(t, env.freePlan.Id, stored.PendingChange.TargetPlanId)

	rows := env.store.historyFor(sub.Id)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.HistoryActionDowngradeRequested, rows[1].Action)
}

func TestRequestPlanChangeRequiresActiveSubscription(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	created, err := env.service.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.proPlan.Id, BillingCycle: "monthly",
	})
	require.NoError(t, err)

	_, err = env.service.RequestPlanChange(ctx, env.user.Id, &dto.ChangePlanRequest{
		SubscriptionId: created.Id,
		TargetPlanId:   env.bizPlan.Id,
		Direction:      "upgrade",
	})
	require.ErrorIs(t, err, apperr.ErrInvariantViolation)
}

func TestActivateAppliesPendingChange(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	sub := env.activeSub(env.proPlan, entity.BillingCycleMonthly)

	_, err := env.service.RequestPlanChange(ctx, env.user.Id, &dto.ChangePlanRequest{
		SubscriptionId: sub.Id,
		TargetPlanId:   env.bizPlan.Id,
		Direction:      "upgrade",
	})
	require.NoError(t, err)

	uow := (&fakeFactory{store: env.store}).NewUnitOfWork(ctx)
	locked, err := uow.SubscriptionRepository().FindByID(ctx, sub.Id, true)
	require.NoError(t, err)

	now := time.Now()
	deferred, err := env.service.ActivateTx(ctx, uow, locked, now)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	stored := env.store.subscriptions[sub.Id]
	assert.Equal(t, entity.SubscriptionStatusActive, stored.Status)
	assert.Equal(t, env.bizPlan.Id, stored.PlanId)
	assert.Equal(t, float64(49), stored.Amount)
	assert.Nil(t, stored.PendingChange)
	assert.Zero(t, stored.FailedPaymentCount)

	assert.Equal(t, env.bizPlan.Id, *env.store.users[env.user.Id].CurrentPlanId)

	rows := env.store.historyFor(sub.Id)
	require.Len(t, rows, 2)
	activated := rows[1]
	assert.Equal(t, entity.HistoryActionActivated, activated.Action)
	assert.Equal(t, env.proPlan.Id, *activated.PreviousPlanId)
	assert.Equal(t, env.bizPlan.Id, *activated.NewPlanId)
	require.NotNil(t, activated.NewAmount)
	assert.Equal(t, float64(49), *activated.NewAmount)

	require.Len(t, deferred, 1)
	assert.Equal(t, events.SubscriptionActivated, deferred[0].EventType())
}

func TestActivateRenewalExtendsPeriodWithoutHistory(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	sub := env.activeSub(env.proPlan, entity.BillingCycleMonthly)
	oldEnd := *sub.EndDate

	uow := (&fakeFactory{store: env.store}).NewUnitOfWork(ctx)
	locked, _ := uow.SubscriptionRepository().FindByID(ctx, sub.Id, true)

	now := time.Now()
	deferred, err := env.service.ActivateTx(ctx, uow, locked, now)
	require.NoError(t, err)
	assert.Empty(t, deferred)

	stored := env.store.subscriptions[sub.Id]
	assert.True(t, stored.EndDate.After(oldEnd))
	assert.Empty(t, env.store.historyFor(sub.Id))
}

func TestThirdPaymentFailureSuspends(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	created, err := env.service.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.proPlan.Id, BillingCycle: "monthly",
	})
	require.NoError(t, err)

	factory := &fakeFactory{store: env.store}
	now := time.Now()
	for i := 1; i <= 3; i++ {
		uow := factory.NewUnitOfWork(ctx)
		locked, _ := uow.SubscriptionRepository().FindByID(ctx, created.Id, true)
		_, err := env.service.HandlePaymentFailureTx(ctx, uow, locked, "card declined", now)
		require.NoError(t, err)

		stored := env.store.subscriptions[created.Id]
		assert.Equal(t, i, stored.FailedPaymentCount)
		if i < entity.MaxPaymentRetries {
			assert.Equal(t, entity.SubscriptionStatusPending, stored.Status, "attempt %d must not suspend", i)
		} else {
			assert.Equal(t, entity.SubscriptionStatusSuspended, stored.Status)
		}
	}

	// One payment_failed row per attempt.
	rows := env.store.historyFor(created.Id)
	failures := 0
	for _, h := range rows {
		if h.Action == entity.HistoryActionPaymentFailed {
			failures++
		}
	}
	assert.Equal(t, 3, failures)
}

func TestPaymentFailureOnActiveKeepsAccessUntilThreshold(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	sub := env.activeSub(env.proPlan, entity.BillingCycleMonthly)

	factory := &fakeFactory{store: env.store}
	now := time.Now()
	for i := 1; i <= 2; i++ {
		uow := factory.NewUnitOfWork(ctx)
		locked, _ := uow.SubscriptionRepository().FindByID(ctx, sub.Id, true)
		_, err := env.service.HandlePaymentFailureTx(ctx, uow, locked, "insufficient funds", now)
		require.NoError(t, err)
	}

	stored := env.store.subscriptions[sub.Id]
	assert.Equal(t, entity.SubscriptionStatusActive, stored.Status)
	assert.Equal(t, env.proPlan.Id, *env.store.users[env.user.Id].CurrentPlanId)

	uow := factory.NewUnitOfWork(ctx)
	locked, _ := uow.SubscriptionRepository().FindByID(ctx, sub.Id, true)
	deferred, err := env.service.HandlePaymentFailureTx(ctx, uow, locked, "insufficient funds", now)
	require.NoError(t, err)

	stored = env.store.subscriptions[sub.Id]
	assert.Equal(t, entity.SubscriptionStatusSuspended, stored.Status)
	assert.Nil(t, env.store.users[env.user.Id].CurrentPlanId)

	types := []string{}
	for _, e := range deferred {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{events.PaymentFailed, events.SubscriptionSuspended}, types)
}

func TestPaymentFailureAfterSuspensionStillRecorded(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	created, err := env.service.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.proPlan.Id, BillingCycle: "monthly",
	})
	require.NoError(t, err)

	factory := &fakeFactory{store: env.store}
	now := time.Now()
	for i := 0; i < entity.MaxPaymentRetries; i++ {
		uow := factory.NewUnitOfWork(ctx)
		locked, _ := uow.SubscriptionRepository().FindByID(ctx, created.Id, true)
		_, err := env.service.HandlePaymentFailureTx(ctx, uow, locked, "card declined", now)
		require.NoError(t, err)
	}
	require.Equal(t, entity.SubscriptionStatusSuspended, env.store.subscriptions[created.Id].Status)

	// A fourth failure arrives after suspension. It still counts and
	// still gets its audit row, but suspension fires only once.
	uow := factory.NewUnitOfWork(ctx)
	locked, _ := uow.SubscriptionRepository().FindByID(ctx, created.Id, true)
	deferred, err := env.service.HandlePaymentFailureTx(ctx, uow, locked, "card declined", now)
	require.NoError(t, err)

	stored := env.store.subscriptions[created.Id]
	assert.Equal(t, entity.SubscriptionStatusSuspended, stored.Status)
	assert.Equal(t, 4, stored.FailedPaymentCount)

	failures := 0
	for _, h := range env.store.historyFor(created.Id) {
		if h.Action == entity.HistoryActionPaymentFailed {
			failures++
		}
	}
	assert.Equal(t, 4, failures)

	types := []string{}
	for _, e := range deferred {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{events.PaymentFailed}, types)
}

func TestBillingDisabledRejectsPaidFlows(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	disabled := NewSubscriptionService(&fakeFactory{store: env.store}, payment.NewRegistry(), env.publisher, nopLogger{}, false)

	_, err := disabled.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.proPlan.Id, BillingCycle: "monthly",
	})
	require.ErrorIs(t, err, apperr.ErrInvariantViolation)
	assert.Empty(t, env.store.subscriptions)

	// Zero-cost plans keep working with billing off.
	res, err := disabled.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.freePlan.Id, BillingCycle: "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, "active", res.Status)
}

func TestBillingDisabledRejectsCheckout(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	created, err := env.service.Create(ctx, env.user.Id, &dto.CreateSubscriptionRequest{
		PlanId: env.proPlan.Id, BillingCycle: "monthly",
	})
	require.NoError(t, err)

	disabled := NewSubscriptionService(&fakeFactory{store: env.store}, payment.NewRegistry(), env.publisher, nopLogger{}, false)
	_, err = disabled.StartCheckout(ctx, env.user.Id, created.Id)
	require.ErrorIs(t, err, apperr.ErrInvariantViolation)
}

func TestCancelIsIdempotent(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	sub := env.activeSub(env.proPlan, entity.BillingCycleMonthly)

	res, err := env.service.Cancel(ctx, env.user.Id, &dto.CancelSubscriptionRequest{
		SubscriptionId: sub.Id, Reason: "no longer needed",
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)
	assert.NotNil(t, res.CancelledAt)
	assert.Nil(t, env.store.users[env.user.Id].CurrentPlanId)

	again, err := env.service.Cancel(ctx, env.user.Id, &dto.CancelSubscriptionRequest{
		SubscriptionId: sub.Id,
	})
	require.ErrorIs(t, err, apperr.ErrAlreadyCancelled)
	require.NotNil(t, again)
	assert.Equal(t, "cancelled", again.Status)

	cancelRows := 0
	for _, h := range env.store.historyFor(sub.Id) {
		if h.Action == entity.HistoryActionCancelled {
			cancelRows++
		}
	}
	assert.Equal(t, 1, cancelRows, "second cancel must not append history")
}

func TestCancelClearsPendingChange(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	sub := env.activeSub(env.proPlan, entity.BillingCycleMonthly)

	_, err := env.service.RequestPlanChange(ctx, env.user.Id, &dto.ChangePlanRequest{
		SubscriptionId: sub.Id,
		TargetPlanId:   env.bizPlan.Id,
		Direction:      "upgrade",
	})
	require.NoError(t, err)

	_, err = env.service.Cancel(ctx, env.user.Id, &dto.CancelSubscriptionRequest{SubscriptionId: sub.Id})
	require.NoError(t, err)

	assert.Nil(t, env.store.subscriptions[sub.Id].PendingChange)
}

func TestExpireDueSweepsOverdueSubscriptions(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()
	sub := env.activeSub(env.proPlan, entity.BillingCycleMonthly)

	past := time.Now().AddDate(0, 0, -2)
	stored := env.store.subscriptions[sub.Id]
	stored.EndDate = &past
	stored.AutoRenew = false

	count, err := env.service.ExpireDue(ctx, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored = env.store.subscriptions[sub.Id]
	assert.Equal(t, entity.SubscriptionStatusExpired, stored.Status)
	assert.Nil(t, env.store.users[env.user.Id].CurrentPlanId)

	rows := env.store.historyFor(sub.Id)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.HistoryActionExpired, rows[0].Action)
	assert.Equal(t, entity.ActorSystem, rows[0].ChangedBy)

	// Second sweep finds nothing.
	count, err = env.service.ExpireDue(ctx, time.Now(), 100)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestExpireDueContinuesPastFailingRow(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	other := &entity.User{Id: uuid.New(), Email: "second@example.com", FullName: "Second"}
	env.store.addUser(other)

	past := time.Now().AddDate(0, 0, -2)
	overdue := func(userId uuid.UUID) *entity.Subscription {
		sub := &entity.Subscription{
			Id:           uuid.New(),
			UserId:       userId,
			PlanId:       env.proPlan.Id,
			PlanType:     env.proPlan.BillingModel,
			Status:       entity.SubscriptionStatusActive,
			BillingCycle: entity.BillingCycleMonthly,
			Amount:       env.proPlan.PriceMonthly,
			Currency:     env.proPlan.Currency,
			EndDate:      &past,
		}
		env.store.addSub(sub)
		return sub
	}
	broken := overdue(env.user.Id)
	healthy := overdue(other.Id)

	env.store.subUpdateErr[broken.Id] = errors.New("connection reset by peer")

	count, err := env.service.ExpireDue(ctx, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The failing row is left alone; the other one is swept.
	assert.Equal(t, entity.SubscriptionStatusActive, env.store.subscriptions[broken.Id].Status)
	assert.Equal(t, entity.SubscriptionStatusExpired, env.store.subscriptions[healthy.Id].Status)

	// Once the row can be written again the next sweep picks it up.
	delete(env.store.subUpdateErr, broken.Id)
	count, err = env.service.ExpireDue(ctx, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, entity.SubscriptionStatusExpired, env.store.subscriptions[broken.Id].Status)
}

func TestGetStatusFallsBackToDefaultPlan(t *testing.T) {
	env := newSubTestEnv(t)
	ctx := context.Background()

	res, err := env.service.GetStatus(ctx, env.user.Id)
	require.NoError(t, err)
	assert.False(t, res.IsActive)
	assert.Equal(t, "Free", res.PlanName)
	assert.Equal(t, 3, res.Limits.MaxForms)
	assert.Nil(t, res.Subscription)

	env.activeSub(env.bizPlan, entity.BillingCycleMonthly)

	res, err = env.service.GetStatus(ctx, env.user.Id)
	require.NoError(t, err)
	assert.True(t, res.IsActive)
	assert.Equal(t, "Business", res.PlanName)
	assert.Equal(t, -1, res.Limits.MaxForms)
}
