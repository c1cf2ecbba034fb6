package piddle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeStep indicates a time step that is zero, negative or not finite.
	ErrInvalidTimeStep = errors.New("piddle: invalid time step (dt must be finite and > 0)")

	// ErrInvalidBounds indicates an antiwindup upper bound below its lower bound.
	ErrInvalidBounds = errors.New("piddle: invalid bounds (upper < lower)")

	// ErrNonFiniteInput indicates a NaN or Inf error sample.
	ErrNonFiniteInput = errors.New("piddle: non-finite input")

	// ErrNonFiniteOutput indicates the controller produced NaN or Inf.
	ErrNonFiniteOutput = errors.New("piddle: non-finite output")

	// ErrUnknownParam indicates a tuning parameter name that is not recognised.
	ErrUnknownParam = errors.New("piddle: unknown parameter")
)

// StepError carries the sample that was rejected by [PID.Step].
type StepError struct {
	Input   float64
	Dt      float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (input=%g, dt=%g)", e.Wrapped.Error(), e.Input, e.Dt)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
