package intake

import "errors"

var (
	// ErrUnknownStep is returned when a session is at a step with no handler.
	ErrUnknownStep = errors.New("intake: unknown step")
	// ErrNoProposedOffer means a confirm step was reached without an amount on the table.
	ErrNoProposedOffer = errors.New("intake: no proposed offer")
	ErrCallIDRequired  = errors.New("intake: call id required")
	ErrSessionNotFound = errors.New("intake: session not found")
)
