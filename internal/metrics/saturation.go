package metrics

import "github.com/san-kum/piddle/internal/dynamo"

// Saturation is the fraction of ticks in which the first control input sat
// on either actuator bound.
type Saturation struct {
	upper, lower float64
	hits         int
	samples      int
}

func NewSaturation(upper, lower float64) *Saturation {
	return &Saturation{upper: upper, lower: lower}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if len(u) == 0 {
		return
	}
	if u[0] >= s.upper || u[0] <= s.lower {
		s.hits++
	}
}

func (s *Saturation) SetBounds(upper, lower float64) {
	s.upper = upper
	s.lower = lower
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.hits) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.hits = 0
	s.samples = 0
}

// Default returns the metric set reported for a PID run.
func Default(target float64, upper, lower float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewIAE(target, 0),
		NewOvershoot(target, 0),
		NewControlEffort(),
		NewSaturation(upper, lower),
		NewChatter(),
	}
}

// Retarget updates the setpoint and actuator bounds of the metrics in ms
// that depend on them. Other metrics are left alone.
func Retarget(ms []dynamo.Metric, target, upper, lower float64) {
	for _, m := range ms {
		switch m := m.(type) {
		case *IAE:
			m.SetTarget(target)
		case *Overshoot:
			m.SetTarget(target)
		case *Saturation:
			m.SetBounds(upper, lower)
		}
	}
}
