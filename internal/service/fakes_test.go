package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"formhive-be/internal/apperr"
	"formhive-be/internal/entity"
	"formhive-be/internal/repository/contract"
	"formhive-be/internal/repository/specification"
	"formhive-be/internal/repository/unitofwork"
	"formhive-be/pkg/events"

	"github.com/google/uuid"
)

// In-memory repository doubles. One fakeStore backs every unit of work
// a test's factory hands out, so state survives across service calls
// the way a database would. Finders return copies; only Update/Create
// write back, matching how a row read inside a transaction behaves.

type fakeStore struct {
	mu sync.Mutex

	plans         map[uuid.UUID]*entity.Plan
	subscriptions map[uuid.UUID]*entity.Subscription
	history       []*entity.SubscriptionHistory
	transactions  map[string]*entity.PaymentTransaction // keyed by webhook event id
	users         map[uuid.UUID]*entity.User
	forms         map[uuid.UUID]*entity.Form
	submissions   map[uuid.UUID]int64 // per-form counts
	exports       map[uuid.UUID]int64

	// subUpdateErr injects a failure into subscription updates for the
	// given ids, to exercise partial-failure paths.
	subUpdateErr map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		plans:         make(map[uuid.UUID]*entity.Plan),
		subscriptions: make(map[uuid.UUID]*entity.Subscription),
		transactions:  make(map[string]*entity.PaymentTransaction),
		users:         make(map[uuid.UUID]*entity.User),
		forms:         make(map[uuid.UUID]*entity.Form),
		submissions:   make(map[uuid.UUID]int64),
		exports:       make(map[uuid.UUID]int64),
		subUpdateErr:  make(map[uuid.UUID]error),
	}
}

func (s *fakeStore) addPlan(p *entity.Plan)          { s.plans[p.Id] = p }
func (s *fakeStore) addUser(u *entity.User)          { s.users[u.Id] = u }
func (s *fakeStore) addSub(x *entity.Subscription)   { s.subscriptions[x.Id] = x }
func (s *fakeStore) historyFor(subId uuid.UUID) []*entity.SubscriptionHistory {
	var out []*entity.SubscriptionHistory
	for _, h := range s.history {
		if h.SubscriptionId == subId {
			out = append(out, h)
		}
	}
	return out
}

func copySub(src *entity.Subscription) *entity.Subscription {
	if src == nil {
		return nil
	}
	dup := *src
	if src.PendingChange != nil {
		pc := *src.PendingChange
		dup.PendingChange = &pc
	}
	return &dup
}

// --- unit of work ---

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) PlanRepository() contract.PlanRepository { return &fakePlanRepo{u.store} }
func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository {
	return &fakeSubscriptionRepo{u.store}
}
func (u *fakeUow) SubscriptionHistoryRepository() contract.SubscriptionHistoryRepository {
	return &fakeHistoryRepo{u.store}
}
func (u *fakeUow) PaymentTransactionRepository() contract.PaymentTransactionRepository {
	return &fakeTransactionRepo{u.store}
}
func (u *fakeUow) UserRepository() contract.UserRepository   { return &fakeUserRepo{u.store} }
func (u *fakeUow) UsageRepository() contract.UsageRepository { return &fakeUsageRepo{u.store} }

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

// --- repositories ---

type fakePlanRepo struct{ s *fakeStore }

func (r *fakePlanRepo) Create(ctx context.Context, plan *entity.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.plans[plan.Id] = plan
	return nil
}

func (r *fakePlanRepo) Update(ctx context.Context, plan *entity.Plan) error {
	return r.Create(ctx, plan)
}

func (r *fakePlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.plans, id)
	return nil
}

func (r *fakePlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, nil
	}
	dup := *p
	return &dup, nil
}

func (r *fakePlanRepo) FindBySlug(ctx context.Context, slug string) (*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.plans {
		if p.Slug == slug {
			dup := *p
			return &dup, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) FindDefault(ctx context.Context) (*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.plans {
		if p.IsDefault {
			dup := *p
			return &dup, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Plan
	for _, p := range r.s.plans {
		dup := *p
		out = append(out, &dup)
	}
	return out, nil
}

func (r *fakePlanRepo) ClearDefault(ctx context.Context, exceptId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.plans {
		if p.Id != exceptId {
			p.IsDefault = false
		}
	}
	return nil
}

func (r *fakePlanRepo) CountSubscriptions(ctx context.Context, planId uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, sub := range r.s.subscriptions {
		if sub.PlanId == planId {
			n++
		}
	}
	return n, nil
}

type fakeSubscriptionRepo struct{ s *fakeStore }

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.subscriptions[sub.Id] = copySub(sub)
	return nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.subUpdateErr[sub.Id]; err != nil {
		return err
	}
	r.s.subscriptions[sub.Id] = copySub(sub)
	return nil
}

func (r *fakeSubscriptionRepo) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copySub(r.s.subscriptions[id]), nil
}

func (r *fakeSubscriptionRepo) FindOpenByUser(ctx context.Context, userId uuid.UUID, forUpdate bool) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subscriptions {
		if sub.UserId == userId && sub.IsOpen() {
			return copySub(sub), nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Subscription
	for _, sub := range r.s.subscriptions {
		if sub.Status == entity.SubscriptionStatusActive && !sub.AutoRenew &&
			sub.EndDate != nil && !sub.EndDate.After(now) {
			out = append(out, copySub(sub))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Subscription
	for _, sub := range r.s.subscriptions {
		out = append(out, copySub(sub))
	}
	return out, nil
}

type fakeHistoryRepo struct{ s *fakeStore }

func (r *fakeHistoryRepo) Append(ctx context.Context, h *entity.SubscriptionHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.history = append(r.s.history, h)
	return nil
}

func (r *fakeHistoryRepo) FindBySubscription(ctx context.Context, subscriptionId uuid.UUID, specs ...specification.Specification) ([]*entity.SubscriptionHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.historyFor(subscriptionId), nil
}

func (r *fakeHistoryRepo) FindByUser(ctx context.Context, userId uuid.UUID, specs ...specification.Specification) ([]*entity.SubscriptionHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SubscriptionHistory
	for _, h := range r.s.history {
		if h.UserId == userId {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeTransactionRepo struct{ s *fakeStore }

func (r *fakeTransactionRepo) Create(ctx context.Context, t *entity.PaymentTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.transactions[t.WebhookEventId]; exists {
		return fmt.Errorf("%w: webhook event %s already recorded", apperr.ErrConflict, t.WebhookEventId)
	}
	r.s.transactions[t.WebhookEventId] = t
	return nil
}

func (r *fakeTransactionRepo) FindByWebhookEventID(ctx context.Context, eventId string) (*entity.PaymentTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[eventId]
	if !ok {
		return nil, nil
	}
	dup := *t
	return &dup, nil
}

func (r *fakeTransactionRepo) FindBySubscription(ctx context.Context, subscriptionId uuid.UUID) ([]*entity.PaymentTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PaymentTransaction
	for _, t := range r.s.transactions {
		if t.SubscriptionId == subscriptionId {
			dup := *t
			out = append(out, &dup)
		}
	}
	return out, nil
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	dup := *u
	if u.CurrentPlanId != nil {
		pid := *u.CurrentPlanId
		dup.CurrentPlanId = &pid
	}
	return &dup, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			dup := *u
			return &dup, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) SyncCurrentPlan(ctx context.Context, userId uuid.UUID, planId *uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userId]
	if !ok {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userId)
	}
	u.CurrentPlanId = planId
	return nil
}

type fakeUsageRepo struct{ s *fakeStore }

func (r *fakeUsageRepo) CountFormsByUser(ctx context.Context, userId uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, f := range r.s.forms {
		if f.UserId == userId {
			n++
		}
	}
	return n, nil
}

func (r *fakeUsageRepo) CountSubmissionsByForm(ctx context.Context, formId uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.submissions[formId], nil
}

func (r *fakeUsageRepo) CountExportsByForm(ctx context.Context, formId uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.exports[formId], nil
}

func (r *fakeUsageRepo) CreateForm(ctx context.Context, form *entity.Form) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.forms[form.Id] = form
	return nil
}

func (r *fakeUsageRepo) FindFormByID(ctx context.Context, id uuid.UUID) (*entity.Form, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.forms[id]
	if !ok {
		return nil, nil
	}
	dup := *f
	return &dup, nil
}

func (r *fakeUsageRepo) CreateSubmission(ctx context.Context, sub *entity.FormSubmission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.submissions[sub.FormId]++
	return nil
}

func (r *fakeUsageRepo) CreateExport(ctx context.Context, e *entity.FormExport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.exports[e.FormId]++
	return nil
}

// --- collaborators ---

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, evt events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *capturingPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
