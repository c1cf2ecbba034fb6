package control

import (
	"fmt"
	"math"

	"github.com/san-kum/piddle/internal/dynamo"
	"github.com/san-kum/piddle/internal/piddle"
)

// Loop closes a PID around one measured state component. The error is
// target - x[Index]; the time step is taken from successive Compute calls.
type Loop struct {
	PID    *piddle.PID
	Target float64
	Index  int

	// Strict routes every tick through PID.Step and latches the first
	// rejection in Err. Otherwise ticks go through PID.Setup unchecked.
	Strict bool

	nominalDt float64
	prevT     float64
	first     bool
	err       error
}

// NewLoop wraps pid. nominalDt is used for the first tick, when there is no
// previous sample time to difference against.
func NewLoop(pid *piddle.PID, target, nominalDt float64) *Loop {
	return &Loop{
		PID:       pid,
		Target:    target,
		nominalDt: nominalDt,
		first:     true,
	}
}

func (l *Loop) Compute(x dynamo.State, t float64) dynamo.Control {
	if l.Index >= len(x) {
		l.latch(fmt.Errorf("%w: measured index %d, state has %d", dynamo.ErrDimensionMismatch, l.Index, len(x)))
		return dynamo.Control{0}
	}

	err := l.Target - x[l.Index]

	dt := l.nominalDt
	if !l.first {
		dt = t - l.prevT
	}
	l.first = false
	l.prevT = t

	if !l.Strict {
		return dynamo.Control{l.PID.Setup(err, dt)}
	}
	if l.err != nil {
		return dynamo.Control{0}
	}
	u, stepErr := l.PID.Step(err, dt)
	if stepErr != nil {
		l.latch(fmt.Errorf("%w: %w", dynamo.ErrStepRejected, stepErr))
		return dynamo.Control{0}
	}
	return dynamo.Control{u}
}

func (l *Loop) latch(err error) {
	if l.err == nil {
		l.err = err
	}
}

// Err returns the first error seen since the last Reset.
func (l *Loop) Err() error { return l.err }

// Reset clears controller state and the sample clock.
func (l *Loop) Reset() {
	l.PID.Reset()
	l.prevT = 0
	l.first = true
	l.err = nil
}

// GetParams returns tunable parameters for live adjustment
func (l *Loop) GetParams() map[string]float64 {
	params := l.PID.GetParams()
	params["target"] = l.Target
	return params
}

// SetParam adjusts a loop or PID parameter
func (l *Loop) SetParam(name string, value float64) error {
	if name == "target" {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("target: %w", piddle.ErrNonFiniteInput)
		}
		l.Target = value
		return nil
	}
	return l.PID.SetParam(name, value)
}

var (
	_ dynamo.FallibleController = (*Loop)(nil)
	_ dynamo.Configurable       = (*Loop)(nil)
)
