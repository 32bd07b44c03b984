package simulation

import "errors"

var (
	// ErrInvalidInput marks malformed run inputs: non-positive year counts,
	// annual data of the wrong length, or non-finite numbers arriving at the
	// float64 boundary. Rejected before any year is simulated.
	ErrInvalidInput = errors.New("invalid simulation input")

	// ErrDegenerateState marks a run whose portfolio hit zero or went
	// negative, making the withdrawal-rate divisions for later years
	// undefined. The engine stops at the offending year and returns the
	// years completed so far alongside the error.
	ErrDegenerateState = errors.New("degenerate portfolio state")
)
