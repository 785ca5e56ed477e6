package leads

import "errors"

var (
	// ErrMissingCallID is returned when a record has no call id
	ErrMissingCallID = errors.New("call id is required")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrSinkNotConfigured is returned when a sink is missing required settings
	ErrSinkNotConfigured = errors.New("lead sink not configured")
)
