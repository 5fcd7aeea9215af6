// Package apperr holds the domain error taxonomy. Services wrap these
// sentinels with context via fmt.Errorf("%w: ..."); the HTTP layer maps
// them to status codes with errors.Is and never exposes storage errors.
package apperr

import "errors"

var (
	// ErrNotFound: subscription, plan or user absent. Surfaced to the
	// caller, not retried.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a duplicate open subscription or a duplicate webhook
	// event. Idempotent no-op from the provider's point of view.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyCancelled: cancel called on an already-cancelled
	// subscription. The existing row is returned alongside.
	ErrAlreadyCancelled = errors.New("already cancelled")

	// ErrInvalidSignature: webhook rejected before any parsing or side
	// effect. Logged as a security event.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrTransientProvider: network/timeout talking to the payment
	// provider. The caller retries; never swallowed silently.
	ErrTransientProvider = errors.New("transient provider error")

	// ErrInvariantViolation: an operation would corrupt state (delete
	// the default plan, apply a pending change to a deleted plan).
	// Fatal to the operation only.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrLimitExceeded carries no numbers itself; the usage service
	// returns limit/current/remaining next to it.
	ErrLimitExceeded = errors.New("plan limit exceeded")
)
