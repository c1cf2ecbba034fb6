package piddle

// Derivative estimates the error slope with a backward difference and
// optionally smooths it through its own low-pass filter.
type Derivative struct {
	switchable
	gain      float64
	prevError float64
	filter    Filter
}

// NewDerivative builds a derivative term. A cutoff <= 0 leaves the filter
// disabled so that "0 Hz" means no filtering.
func NewDerivative(gain, cutoffHz float64) *Derivative {
	d := &Derivative{gain: gain}
	d.filter.cutoffHz = cutoffHz
	if cutoffHz <= 0 {
		d.filter.Disable()
	}
	return d
}

func (d *Derivative) Gain() float64     { return d.gain }
func (d *Derivative) SetGain(g float64) { d.gain = g }

func (d *Derivative) CutoffFrequency() float64      { return d.filter.cutoffHz }
func (d *Derivative) SetCutoffFrequency(hz float64) { d.filter.cutoffHz = hz }

func (d *Derivative) EnableFilter()       { d.filter.Enable() }
func (d *Derivative) DisableFilter()      { d.filter.Disable() }
func (d *Derivative) FilterEnabled() bool { return d.filter.IsEnabled() }

// Setup divides by dt without checking it; dt == 0 yields Inf or NaN.
func (d *Derivative) Setup(err, dt float64) float64 {
	if d.disabled {
		return 0
	}
	return d.gain * d.differentiate(err, dt)
}

func (d *Derivative) differentiate(err, dt float64) float64 {
	diff := (err - d.prevError) / dt
	d.prevError = err
	if d.filter.IsEnabled() {
		diff = d.filter.Setup(diff, dt)
	}
	return diff
}

// Reset clears the previous error and the filter, whether or not the filter
// is enabled.
func (d *Derivative) Reset() {
	d.prevError = 0
	d.filter.Reset()
}
