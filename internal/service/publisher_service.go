package service

import (
	"context"
	"encoding/json"
	"time"

	"formhive-be/internal/pkg/logger"
	"formhive-be/pkg/events"
	pktNats "formhive-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DomainEventsTopic is the in-process channel lifecycle events fan out
// on. The notification worker subscribes to it.
const DomainEventsTopic = "subscription_events"

type IPublisherService interface {
	// Publish fans the event out to the in-process bus and, when
	// configured, to NATS JetStream. Callers invoke it only after the
	// owning transaction has committed; delivery failures are logged
	// and never fail the caller.
	Publish(ctx context.Context, evt events.Event)
}

type publisherService struct {
	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	logger  logger.ILogger
}

func NewPublisherService(pubSub *gochannel.GoChannel, natsPub *pktNats.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		pubSub:  pubSub,
		natsPub: natsPub,
		logger:  log,
	}
}

// wireEvent is the serialized form shared by both buses.
type wireEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (s *publisherService) Publish(ctx context.Context, evt events.Event) {
	payload, err := json.Marshal(wireEvent{
		Type:       evt.EventType(),
		Data:       evt.Payload(),
		OccurredAt: evt.Timestamp(),
	})
	if err != nil {
		s.logger.Error("PublisherService", "Failed to marshal event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
		return
	}

	if s.pubSub != nil {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("event_type", evt.EventType())
		if err := s.pubSub.Publish(DomainEventsTopic, msg); err != nil {
			s.logger.Warn("PublisherService", "Failed to publish to local bus", map[string]interface{}{
				"type":  evt.EventType(),
				"error": err.Error(),
			})
		}
	}

	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("PublisherService", "Failed to publish to NATS", map[string]interface{}{
				"type":  evt.EventType(),
				"error": err.Error(),
			})
		}
	}
}
