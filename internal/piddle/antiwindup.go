package piddle

// Antiwindup saturates the controller output to [lower, upper] and tells the
// controller when the integral should stop accumulating.
type Antiwindup struct {
	switchable
	upper float64
	lower float64
}

// NewAntiwindup returns ErrInvalidBounds when upper < lower.
func NewAntiwindup(upper, lower float64) (*Antiwindup, error) {
	a := &Antiwindup{}
	if err := a.SetBounds(upper, lower); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Antiwindup) Upper() float64 { return a.upper }
func (a *Antiwindup) Lower() float64 { return a.lower }

// SetBounds leaves the previous bounds in place when upper < lower or
// either bound is NaN.
func (a *Antiwindup) SetBounds(upper, lower float64) error {
	if !(upper >= lower) {
		return ErrInvalidBounds
	}
	a.upper = upper
	a.lower = lower
	return nil
}

// Integration returns 1 when input lies within the bounds and 0 otherwise.
// NaN is never within bounds.
func (a *Antiwindup) Integration(input float64) float64 {
	if input >= a.lower && input <= a.upper {
		return 1
	}
	return 0
}

// Setup clamps input when enabled and passes it through otherwise. NaN is
// passed through unchanged.
func (a *Antiwindup) Setup(input, dt float64) float64 {
	if a.disabled {
		return input
	}
	switch {
	case input > a.upper:
		return a.upper
	case input < a.lower:
		return a.lower
	default:
		return input
	}
}

func (a *Antiwindup) Reset() {}
