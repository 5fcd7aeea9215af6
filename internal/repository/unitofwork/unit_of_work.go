package unitofwork

import (
	"context"

	"formhive-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PlanRepository() contract.PlanRepository
	SubscriptionRepository() contract.SubscriptionRepository
	SubscriptionHistoryRepository() contract.SubscriptionHistoryRepository
	PaymentTransactionRepository() contract.PaymentTransactionRepository
	UserRepository() contract.UserRepository
	UsageRepository() contract.UsageRepository
}
