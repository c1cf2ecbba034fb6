package piddle

import "math"

// Filter is a first-order Butterworth low-pass filter discretised with the
// matched Z-transform: the continuous pole -2*pi*fc maps to exp(-2*pi*fc*dt).
//
// The smoothing factor is recomputed from dt and the cutoff on every call, so
// the filter tolerates a variable sample rate and live cutoff changes. A
// cutoff or dt <= 0 gives alpha <= 0 and the output stops tracking the
// input; callers validate that at configuration time.
type Filter struct {
	switchable
	cutoffHz float64
	output   float64
}

func NewFilter(cutoffHz float64) *Filter {
	return &Filter{cutoffHz: cutoffHz}
}

func (f *Filter) CutoffFrequency() float64      { return f.cutoffHz }
func (f *Filter) SetCutoffFrequency(hz float64) { f.cutoffHz = hz }
func (f *Filter) Output() float64               { return f.output }

// Alpha returns the smoothing factor for a step of dt seconds.
func (f *Filter) Alpha(dt float64) float64 {
	return 1 - math.Exp(-dt*2*math.Pi*f.cutoffHz)
}

func (f *Filter) Setup(input, dt float64) float64 {
	if f.disabled {
		return 0
	}
	f.output += (input - f.output) * f.Alpha(dt)
	return f.output
}

func (f *Filter) Reset() {
	f.output = 0
}
