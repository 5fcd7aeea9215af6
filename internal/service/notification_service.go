package service

import (
	"context"
	"encoding/json"

	"formhive-be/internal/entity"
	"formhive-be/internal/pkg/logger"
	"formhive-be/internal/pkg/mailer"
	"formhive-be/internal/repository/unitofwork"
	"formhive-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// INotificationService turns committed lifecycle events into emails.
// Delivery is best effort: a failed send is logged and the event is
// acked anyway, it never blocks or retries the state machine.
type INotificationService interface {
	Start(ctx context.Context) error
}

type notificationService struct {
	pubSub     *gochannel.GoChannel
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	log logger.ILogger,
) INotificationService {
	return &notificationService{
		pubSub:     pubSub,
		uowFactory: uowFactory,
		mailer:     emailService,
		logger:     log,
	}
}

func (s *notificationService) Start(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, DomainEventsTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.handleMessage(ctx, msg)
		}
	}()

	s.logger.Info("NotificationService", "Listening for subscription events", nil)
	return nil
}

func (s *notificationService) handleMessage(ctx context.Context, msg *message.Message) {
	// Always ack: notification delivery must not wedge the bus.
	defer msg.Ack()

	var evt wireEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		s.logger.Error("NotificationService", "Failed to unmarshal event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	switch evt.Type {
	case events.SubscriptionActivated, events.SubscriptionCancelled, events.PaymentFailed:
	default:
		return
	}

	email, planName, ok := s.resolveRecipient(ctx, evt.Data)
	if !ok {
		return
	}

	var err error
	switch evt.Type {
	case events.SubscriptionActivated:
		amount, _ := evt.Data["amount"].(float64)
		currency, _ := evt.Data["currency"].(string)
		err = s.mailer.SendSubscriptionActivated(email, planName, amount, currency)
	case events.SubscriptionCancelled:
		err = s.mailer.SendSubscriptionCancelled(email, planName, "We're sorry to see you go.")
	case events.PaymentFailed:
		retries := 0
		if n, ok := evt.Data["failed_payment_count"].(float64); ok {
			retries = int(n)
		}
		err = s.mailer.SendPaymentFailed(email, planName, retries)
	}
	if err != nil {
		s.logger.Warn("NotificationService", "Failed to send email", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
		return
	}

	s.logger.Info("NotificationService", "Email sent", map[string]interface{}{
		"type": evt.Type,
	})
}

// resolveRecipient prefers the address carried in the event and falls
// back to a lookup for events published without user details.
func (s *notificationService) resolveRecipient(ctx context.Context, data map[string]interface{}) (email string, planName string, ok bool) {
	planName, _ = data["plan_name"].(string)

	if addr, found := data["email"].(string); found && addr != "" {
		return addr, planName, true
	}

	uidStr, _ := data["user_id"].(string)
	userId, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event without usable user_id", map[string]interface{}{
			"user_id": uidStr,
		})
		return "", "", false
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindByID(ctx, userId, false)
	if err != nil || user == nil {
		s.logger.Warn("NotificationService", "Could not resolve event recipient", map[string]interface{}{
			"user_id": userId.String(),
		})
		return "", "", false
	}

	if planName == "" {
		planName = s.resolvePlanName(ctx, uow, data)
	}
	return user.Email, planName, true
}

func (s *notificationService) resolvePlanName(ctx context.Context, uow unitofwork.UnitOfWork, data map[string]interface{}) string {
	pidStr, _ := data["plan_id"].(string)
	planId, err := uuid.Parse(pidStr)
	if err != nil {
		return ""
	}
	var plan *entity.Plan
	plan, err = uow.PlanRepository().FindByID(ctx, planId)
	if err != nil || plan == nil {
		return ""
	}
	return plan.Name
}
