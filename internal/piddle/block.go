package piddle

import "math"

// Block is a single element of a control loop.
type Block interface {
	Setup(input, dt float64) float64
	Reset()
	Enable()
	Disable()
	IsEnabled() bool
	IsDisabled() bool
}

// switchable holds the enabled flag shared by every block. Reset never
// touches it.
type switchable struct {
	disabled bool
}

func (s *switchable) Enable()          { s.disabled = false }
func (s *switchable) Disable()         { s.disabled = true }
func (s *switchable) IsEnabled() bool  { return !s.disabled }
func (s *switchable) IsDisabled() bool { return s.disabled }

// SetEnabled sets the flag from a boolean, for configuration loaders.
func (s *switchable) SetEnabled(on bool) { s.disabled = !on }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var (
	_ Block = (*Proportional)(nil)
	_ Block = (*Integral)(nil)
	_ Block = (*Filter)(nil)
	_ Block = (*Derivative)(nil)
	_ Block = (*Antiwindup)(nil)
	_ Block = (*PID)(nil)
	_ Block = (*Guarded)(nil)
)
