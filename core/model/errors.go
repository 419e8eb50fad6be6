package model

import "errors"

var (
	// ErrConfiguration marks a missing or malformed simulation parameter.
	// It is fatal: the run aborts before or at the offending step.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvariantViolation marks a bay or queue operation that would corrupt
	// simulation state, such as assigning an occupied bay.
	ErrInvariantViolation = errors.New("invariant violation")
)
