package piddle

// Integral accumulates the error with the trapezoidal rule. The accumulator
// holds the unscaled integral; the gain is applied on output only, so gain
// changes do not rewrite history.
type Integral struct {
	switchable
	gain      float64
	acc       float64
	prevInput float64
}

func NewIntegral(gain float64) *Integral {
	return &Integral{gain: gain}
}

func (i *Integral) Gain() float64     { return i.gain }
func (i *Integral) SetGain(g float64) { i.gain = g }

// Accumulator returns the unscaled integral since the last reset.
func (i *Integral) Accumulator() float64 { return i.acc }

// Setup advances the accumulator on every call, including while disabled,
// so re-enabling resumes from a consistent trajectory.
func (i *Integral) Setup(err, dt float64) float64 {
	i.acc += 0.5 * (err + i.prevInput) * dt
	i.prevInput = err
	if i.disabled {
		return 0
	}
	return i.gain * i.acc
}

func (i *Integral) Reset() {
	i.acc = 0
	i.prevInput = 0
}
