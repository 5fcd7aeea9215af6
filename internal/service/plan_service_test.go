package service

import (
	"context"
	"testing"

	"formhive-be/internal/apperr"
	"formhive-be/internal/dto"
	"formhive-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanEnv(t *testing.T) (*subTestEnv, IPlanService) {
	t.Helper()
	env := newSubTestEnv(t)
	return env, NewPlanService(&fakeFactory{store: env.store}, nopLogger{})
}

func TestCreatePlanRejectsPaidDefault(t *testing.T) {
	_, plans := newPlanEnv(t)

	_, err := plans.CreatePlan(context.Background(), &dto.UpsertPlanRequest{
		Name: "Paid Default", Slug: "paid-default",
		BillingModel: "recurring", PriceMonthly: 10, Currency: "USD",
		IsDefault: true, IsActive: true,
	})
	require.ErrorIs(t, err, apperr.ErrInvariantViolation)
}

func TestCreateDefaultPlanDemotesPreviousDefault(t *testing.T) {
	env, plans := newPlanEnv(t)

	created, err := plans.CreatePlan(context.Background(), &dto.UpsertPlanRequest{
		Name: "New Free", Slug: "new-free",
		BillingModel: "recurring", Currency: "USD",
		MaxForms: 5, MaxSubmissionsPerForm: 200, MaxExportsPerForm: 1,
		IsDefault: true, IsActive: true,
	})
	require.NoError(t, err)

	defaults := 0
	for _, p := range env.store.plans {
		if p.IsDefault {
			defaults++
			assert.Equal(t, created.Id, p.Id)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default plan at all times")
}

func TestCreatePlanRejectsDuplicateSlug(t *testing.T) {
	_, plans := newPlanEnv(t)

	_, err := plans.CreatePlan(context.Background(), &dto.UpsertPlanRequest{
		Name: "Pro Again", Slug: "pro",
		BillingModel: "recurring", PriceMonthly: 29, Currency: "USD",
		IsActive: true,
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestDeleteDefaultPlanRefused(t *testing.T) {
	env, plans := newPlanEnv(t)

	err := plans.DeletePlan(context.Background(), env.freePlan.Id)
	require.ErrorIs(t, err, apperr.ErrInvariantViolation)
	assert.Contains(t, env.store.plans, env.freePlan.Id)
}

func TestDeletePlanWithSubscriptionsRefused(t *testing.T) {
	env, plans := newPlanEnv(t)
	env.activeSub(env.proPlan, entity.BillingCycleMonthly)

	err := plans.DeletePlan(context.Background(), env.proPlan.Id)
	require.ErrorIs(t, err, apperr.ErrInvariantViolation)
}

func TestDeleteUnusedPlan(t *testing.T) {
	env, plans := newPlanEnv(t)

	err := plans.DeletePlan(context.Background(), env.bizPlan.Id)
	require.NoError(t, err)
	assert.NotContains(t, env.store.plans, env.bizPlan.Id)
}

func TestUpdatePlanCannotDemoteDefaultDirectly(t *testing.T) {
	env, plans := newPlanEnv(t)

	_, err := plans.UpdatePlan(context.Background(), env.freePlan.Id, &dto.UpsertPlanRequest{
		Name: "Free", Slug: "free",
		BillingModel: "recurring", Currency: "USD",
		MaxForms: 3, MaxSubmissionsPerForm: 100, MaxExportsPerForm: 1,
		IsDefault: false, IsActive: true,
	})
	require.ErrorIs(t, err, apperr.ErrInvariantViolation)
}

func TestGetPlansServesFromCacheUntilMutation(t *testing.T) {
	_, plans := newPlanEnv(t)
	ctx := context.Background()

	first, err := plans.GetPlans(ctx)
	require.NoError(t, err)
	initial := len(first)

	_, err = plans.CreatePlan(ctx, &dto.UpsertPlanRequest{
		Name: "Team", Slug: "team",
		BillingModel: "recurring", PriceMonthly: 9, Currency: "USD",
		MaxForms: 10, MaxSubmissionsPerForm: 1000, MaxExportsPerForm: 5,
		IsActive: true,
	})
	require.NoError(t, err)

	after, err := plans.GetPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, initial+1, len(after), "mutation must invalidate the catalog cache")
}
