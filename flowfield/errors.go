package flowfield

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrConfig indicates an invalid simulation configuration; checked
	// before the time loop starts.
	ErrConfig = errors.New("flowfield: invalid configuration")

	// ErrEmptyObstacle indicates an obstacle radius/placement that marks no
	// cell solid, or a center outside the grid.
	ErrEmptyObstacle = errors.New("flowfield: obstacle mask is empty or out of bounds")

	// ErrZeroDensity indicates a cell whose density reached zero or below,
	// making the velocity moments undefined.
	ErrZeroDensity = errors.New("flowfield: non-positive density")

	// ErrDiverged indicates a NaN or Inf in the distribution field, i.e.
	// a numerically unstable configuration (commonly tau too close to 0.5).
	ErrDiverged = errors.New("flowfield: non-finite value in distribution field")
)

// StepError wraps a runtime error with the timestep and cell at which the
// solver first observed it. Divergence is surfaced, not healed: the run
// stops and reports where the field went bad.
type StepError struct {
	Step    int
	X, Y    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d, cell (%d,%d): %v", e.Step, e.X, e.Y, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
