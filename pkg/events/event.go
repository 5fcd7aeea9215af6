package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event
	// (e.g., "SUBSCRIPTION_ACTIVATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation services publish.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Subscription lifecycle event types. Emitted after the owning
// transaction commits, never before.
const (
	SubscriptionCreated       = "SUBSCRIPTION_CREATED"
	SubscriptionActivated     = "SUBSCRIPTION_ACTIVATED"
	SubscriptionCancelled     = "SUBSCRIPTION_CANCELLED"
	SubscriptionSuspended     = "SUBSCRIPTION_SUSPENDED"
	SubscriptionExpired       = "SUBSCRIPTION_EXPIRED"
	SubscriptionChangePending = "SUBSCRIPTION_CHANGE_PENDING"
	PaymentFailed             = "PAYMENT_FAILED"
)
