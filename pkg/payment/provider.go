// Package payment abstracts the external payment gateways. The
// reconciliation core only sees normalized events; everything
// gateway-specific stays behind the Provider interface.
package payment

import (
	"context"
	"fmt"

	"formhive-be/internal/apperr"

	"github.com/google/uuid"
)

// EventCategory is the normalized class of a provider webhook event.
type EventCategory string

const (
	EventPaymentSucceeded EventCategory = "payment_succeeded"
	EventPaymentFailed    EventCategory = "payment_failed"
	EventCancelled        EventCategory = "cancelled"
	EventPaymentPending   EventCategory = "payment_pending"
	EventUnknown          EventCategory = "unknown"
)

// Event is a provider webhook notification reduced to what the
// reconciliation core needs.
type Event struct {
	// ID is the canonical webhook event id used for idempotency.
	ID       string
	Category EventCategory

	// OrderID carries the subscription id the checkout was opened with.
	OrderID               string
	ProviderTransactionID string

	GrossAmount    float64
	Currency       string
	FailureCode    string
	FailureMessage string

	// RawStatus is the provider's own status string, kept for the
	// payment ledger only; it is never shown to end users.
	RawStatus string
}

// CheckoutSession is the redirect handle returned when a checkout is
// opened for a pending subscription.
type CheckoutSession struct {
	Token       string
	RedirectURL string
}

// CheckoutParams describes the purchase a session is opened for.
type CheckoutParams struct {
	OrderID       uuid.UUID
	Amount        float64
	Currency      string
	ItemID        uuid.UUID
	ItemName      string
	CustomerName  string
	CustomerEmail string
}

// Provider is one payment gateway. VerifySignature must be called on
// the raw, unparsed body before ParseEvent or any business logic.
type Provider interface {
	Name() string
	VerifySignature(headers map[string]string, rawBody []byte) error
	ParseEvent(rawBody []byte) (*Event, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
}

// Registry maps provider names (webhook path segments) to providers.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: payment provider %q", apperr.ErrNotFound, name)
	}
	return p, nil
}
