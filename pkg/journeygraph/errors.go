package journeygraph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation signals a bug in graph construction or query
	// cleanup and must never be ignored.
	ErrInvariantViolation = errors.New("graph invariant violation")

	ErrOutOfRange           = errors.New("time outside of the graph epoch")
	ErrUnknownLocation      = errors.New("unknown location")
	ErrInvalidTrip          = errors.New("invalid trip")
	ErrInvalidQuery         = errors.New("invalid query")
	ErrProximityNotComputed = errors.New("location proximity has not been computed")
	ErrTransfersGenerated   = errors.New("transfer edges have already been generated")
)

// BuildError is returned for a trip that could not be added to the graph.
// Other trips are unaffected.
type BuildError struct {
	TripID string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("trip %s rejected: %v", e.TripID, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
