package cursor

import (
	"errors"
	"fmt"
)

// Domain errors for cursor operations.
var (
	// ErrNoSource indicates a cursor was constructed without a hand source.
	ErrNoSource = errors.New("cursor: no hand source")

	// ErrInvalidConfig indicates a tuning value outside its valid range.
	ErrInvalidConfig = errors.New("cursor: invalid config")

	// ErrDegeneratePointing indicates the hand root and sphere center
	// coincide, so there is no pointing direction.
	ErrDegeneratePointing = errors.New("cursor: degenerate pointing vector")

	// ErrDegenerateTwist indicates the twist angle is undefined because the
	// pointing axis or a projected up vector vanished.
	ErrDegenerateTwist = errors.New("cursor: degenerate twist")
)

// TickError wraps a rejected tick with its context.
type TickError struct {
	Tick    uint64
	Stage   string
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: %s: %v", e.Tick, e.Stage, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
