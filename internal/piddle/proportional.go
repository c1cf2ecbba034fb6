package piddle

// Proportional multiplies the error by a gain.
type Proportional struct {
	switchable
	gain float64
}

func NewProportional(gain float64) *Proportional {
	return &Proportional{gain: gain}
}

func (p *Proportional) Gain() float64     { return p.gain }
func (p *Proportional) SetGain(g float64) { p.gain = g }

// Setup ignores dt.
func (p *Proportional) Setup(err, dt float64) float64 {
	if p.disabled {
		return 0
	}
	return p.gain * err
}

func (p *Proportional) Reset() {}
