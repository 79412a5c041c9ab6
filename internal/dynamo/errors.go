package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrStoreFull indicates the particle store is at capacity.
	ErrStoreFull = errors.New("dynamo: particle store is full")

	// ErrInvalidConfig indicates a container or physics configuration that cannot be simulated.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnstable indicates the simulation produced NaN or Inf state.
	ErrUnstable = errors.New("dynamo: simulation unstable (NaN or Inf detected)")

	// ErrCanceled indicates the host loop was interrupted.
	ErrCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with host loop context.
type SimulationError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ConfigError returns an error wrapping ErrInvalidConfig with a reason.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
