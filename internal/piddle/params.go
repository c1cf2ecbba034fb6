package piddle

import (
	"fmt"
	"math"
)

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	upper, lower := p.Bounds()
	return map[string]float64{
		"kp":     p.proportional.Gain(),
		"ki":     p.integral.Gain(),
		"kd":     p.derivative.Gain(),
		"cutoff": p.CutoffFrequency(),
		"upper":  upper,
		"lower":  lower,
	}
}

// SetParam adjusts a single parameter by name. Gains and the cutoff must be
// finite; bounds may be infinite.
func (p *PID) SetParam(name string, value float64) error {
	if math.IsNaN(value) {
		return fmt.Errorf("%s: %w", name, ErrNonFiniteInput)
	}
	switch name {
	case "kp", "ki", "kd", "cutoff":
		if !isFinite(value) {
			return fmt.Errorf("%s: %w", name, ErrNonFiniteInput)
		}
	}
	switch name {
	case "kp":
		p.proportional.SetGain(value)
	case "ki":
		p.integral.SetGain(value)
	case "kd":
		p.derivative.SetGain(value)
	case "cutoff":
		p.SetCutoffFrequency(value)
	case "upper":
		return p.SetBounds(value, p.antiwindup.Lower())
	case "lower":
		return p.SetBounds(p.antiwindup.Upper(), value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
