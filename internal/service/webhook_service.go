package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formhive-be/internal/apperr"
	"formhive-be/internal/entity"
	"formhive-be/internal/pkg/logger"
	"formhive-be/internal/repository/unitofwork"
	"formhive-be/pkg/events"
	"formhive-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// replayMarkerTTL bounds the redis fast-path cache. The unique index
// on webhook_event_id stays authoritative forever.
const replayMarkerTTL = 24 * time.Hour

type IWebhookService interface {
	// Process handles one raw webhook delivery. A nil return means the
	// provider should stop retrying, including replays of events
	// already applied.
	Process(ctx context.Context, providerName string, headers map[string]string, rawBody []byte) error
}

type webhookService struct {
	uowFactory   unitofwork.RepositoryFactory
	providers    *payment.Registry
	subscription ISubscriptionService
	publisher    IPublisherService
	redisClient  *redis.Client // optional, nil disables the fast path
	logger       logger.ILogger
}

func NewWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	providers *payment.Registry,
	subscription ISubscriptionService,
	publisher IPublisherService,
	redisClient *redis.Client,
	log logger.ILogger,
) IWebhookService {
	return &webhookService{
		uowFactory:   uowFactory,
		providers:    providers,
		subscription: subscription,
		publisher:    publisher,
		redisClient:  redisClient,
		logger:       log,
	}
}

func (s *webhookService) Process(ctx context.Context, providerName string, headers map[string]string, rawBody []byte) error {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return err
	}

	// Signature first, on the untouched body. Nothing below runs for a
	// forged delivery.
	if err := provider.VerifySignature(headers, rawBody); err != nil {
		s.logger.Warn("WebhookService", "Rejected webhook with bad signature", map[string]interface{}{
			"provider": providerName,
		})
		return err
	}

	evt, err := provider.ParseEvent(rawBody)
	if err != nil {
		return err
	}

	switch evt.Category {
	case payment.EventPaymentPending:
		// Not a state change, nothing to record.
		return nil
	case payment.EventUnknown:
		s.logger.Warn("WebhookService", "Unrecognized webhook event, acknowledging without action", map[string]interface{}{
			"provider":   providerName,
			"raw_status": evt.RawStatus,
		})
		return nil
	}

	if s.seenRecently(ctx, evt.ID) {
		s.logger.Info("WebhookService", "Replay short-circuited by cache", map[string]interface{}{
			"event_id": evt.ID,
		})
		return nil
	}

	subscriptionId, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return fmt.Errorf("%w: order id %q is not a subscription id", apperr.ErrNotFound, evt.OrderID)
	}

	deferred, err := s.applyEvent(ctx, providerName, evt, subscriptionId)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			// Lost the race with a concurrent delivery of the same
			// event. The other one won; ack this one.
			s.logger.Info("WebhookService", "Duplicate webhook event, already recorded", map[string]interface{}{
				"event_id": evt.ID,
			})
			return nil
		}
		return err
	}

	s.markSeen(ctx, evt.ID)
	for _, e := range deferred {
		s.publisher.Publish(ctx, e)
	}

	s.logger.Info("WebhookService", "Webhook processed", map[string]interface{}{
		"provider":        providerName,
		"event_id":        evt.ID,
		"category":        string(evt.Category),
		"subscription_id": subscriptionId.String(),
	})
	return nil
}

// applyEvent runs the state transition and the ledger insert in one
// transaction. The unique index on webhook_event_id is the real
// idempotency gate: a duplicate insert rolls everything back.
func (s *webhookService) applyEvent(ctx context.Context, providerName string, evt *payment.Event, subscriptionId uuid.UUID) ([]events.Event, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.PaymentTransactionRepository().FindByWebhookEventID(ctx, evt.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	sub, err := uow.SubscriptionRepository().FindByID(ctx, subscriptionId, true)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: subscription %s", apperr.ErrNotFound, subscriptionId)
	}

	now := time.Now()
	var deferred []events.Event

	switch evt.Category {
	case payment.EventPaymentSucceeded:
		deferred, err = s.subscription.ActivateTx(ctx, uow, sub, now)
	case payment.EventPaymentFailed:
		deferred, err = s.subscription.HandlePaymentFailureTx(ctx, uow, sub, evt.FailureMessage, now)
	case payment.EventCancelled:
		deferred, err = s.subscription.CancelFromProviderTx(ctx, uow, sub, "cancelled by payment provider", now)
	}
	if err != nil {
		return nil, err
	}

	if err := uow.PaymentTransactionRepository().Create(ctx, buildLedgerRow(providerName, evt, sub, now)); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return deferred, nil
}

func buildLedgerRow(providerName string, evt *payment.Event, sub *entity.Subscription, now time.Time) *entity.PaymentTransaction {
	row := &entity.PaymentTransaction{
		Id:                    uuid.New(),
		SubscriptionId:        sub.Id,
		UserId:                sub.UserId,
		Provider:              providerName,
		ProviderTransactionId: evt.ProviderTransactionID,
		WebhookEventId:        evt.ID,
		Amount:                evt.GrossAmount,
		Currency:              evt.Currency,
		RetryCount:            sub.FailedPaymentCount,
		CreatedAt:             now,
	}

	switch evt.Category {
	case payment.EventPaymentSucceeded:
		row.Status = entity.PaymentTransactionSucceeded
	case payment.EventPaymentFailed:
		row.Status = entity.PaymentTransactionFailed
		if evt.FailureCode != "" {
			row.FailureCode = &evt.FailureCode
		}
		if evt.FailureMessage != "" {
			row.FailureMessage = &evt.FailureMessage
		}
	case payment.EventCancelled:
		row.Status = entity.PaymentTransactionCancelled
	}
	return row
}

func (s *webhookService) seenRecently(ctx context.Context, eventId string) bool {
	if s.redisClient == nil {
		return false
	}
	n, err := s.redisClient.Exists(ctx, replayKey(eventId)).Result()
	if err != nil {
		// Cache miss on error; the database check still protects us.
		return false
	}
	return n > 0
}

func (s *webhookService) markSeen(ctx context.Context, eventId string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Set(ctx, replayKey(eventId), "1", replayMarkerTTL).Err(); err != nil {
		s.logger.Warn("WebhookService", "Failed to mark webhook event in cache", map[string]interface{}{
			"event_id": eventId,
			"error":    err.Error(),
		})
	}
}

func replayKey(eventId string) string {
	return "webhook:event:" + eventId
}
