package piddle

// Gains groups the three PID gains.
type Gains struct {
	P float64
	I float64
	D float64
}

// Terms is the breakdown of the most recent Setup call.
type Terms struct {
	P           float64
	I           float64
	D           float64
	Gate        float64
	Unsaturated float64
	Output      float64
}

// PID composes the proportional, integral and derivative terms with an
// antiwindup stage. Sub-blocks are held by value: copying a PID yields an
// independent controller and no two controllers share state.
type PID struct {
	switchable
	proportional Proportional
	integral     Integral
	derivative   Derivative
	antiwindup   Antiwindup

	// unsaturated sum of the previous tick, read by the integration gate
	lastUnsaturated float64
	last            Terms
}

// NewPID builds an enabled controller. A cutoffHz <= 0 disables derivative
// filtering; upper < lower returns ErrInvalidBounds.
func NewPID(g Gains, cutoffHz, upper, lower float64) (*PID, error) {
	aw, err := NewAntiwindup(upper, lower)
	if err != nil {
		return nil, err
	}
	return &PID{
		proportional: *NewProportional(g.P),
		integral:     *NewIntegral(g.I),
		derivative:   *NewDerivative(g.D, cutoffHz),
		antiwindup:   *aw,
	}, nil
}

// Setup runs one control tick: gate, integrate, sum, saturate. A disabled
// controller returns 0 and leaves every sub-block untouched.
func (p *PID) Setup(err, dt float64) float64 {
	if p.disabled {
		return 0
	}

	gate := p.antiwindup.Integration(p.lastUnsaturated)
	i := p.integral.Setup(gate*err, dt)
	prop := p.proportional.Setup(err, dt)
	d := p.derivative.Setup(err, dt)

	u := prop + i + d
	out := p.antiwindup.Setup(u, dt)

	p.lastUnsaturated = u
	p.last = Terms{P: prop, I: i, D: d, Gate: gate, Unsaturated: u, Output: out}
	return out
}

// Step is Setup behind input validation. Rejected samples leave the
// controller exactly as it was, including when the computed output turns
// out not to be finite.
func (p *PID) Step(err, dt float64) (float64, error) {
	if !isFinite(dt) || dt <= 0 {
		return 0, &StepError{Input: err, Dt: dt, Wrapped: ErrInvalidTimeStep}
	}
	if !isFinite(err) {
		return 0, &StepError{Input: err, Dt: dt, Wrapped: ErrNonFiniteInput}
	}

	saved := *p
	out := p.Setup(err, dt)
	if !isFinite(out) {
		*p = saved
		return 0, &StepError{Input: err, Dt: dt, Wrapped: ErrNonFiniteOutput}
	}
	return out, nil
}

// Reset clears the state of every sub-block. The enabled flags are kept.
func (p *PID) Reset() {
	p.proportional.Reset()
	p.integral.Reset()
	p.derivative.Reset()
	p.antiwindup.Reset()
	p.lastUnsaturated = 0
	p.last = Terms{}
}

// Last returns the breakdown of the most recent tick.
func (p *PID) Last() Terms { return p.last }

func (p *PID) Gains() Gains {
	return Gains{
		P: p.proportional.Gain(),
		I: p.integral.Gain(),
		D: p.derivative.Gain(),
	}
}

func (p *PID) SetGains(g Gains) {
	p.proportional.SetGain(g.P)
	p.integral.SetGain(g.I)
	p.derivative.SetGain(g.D)
}

// Bounds returns the antiwindup (upper, lower) pair.
func (p *PID) Bounds() (float64, float64) {
	return p.antiwindup.Upper(), p.antiwindup.Lower()
}

func (p *PID) SetBounds(upper, lower float64) error {
	return p.antiwindup.SetBounds(upper, lower)
}

func (p *PID) CutoffFrequency() float64      { return p.derivative.CutoffFrequency() }
func (p *PID) SetCutoffFrequency(hz float64) { p.derivative.SetCutoffFrequency(hz) }

// Integral returns the unscaled integral accumulator.
func (p *PID) Integral() float64 { return p.integral.Accumulator() }
