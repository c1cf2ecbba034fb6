package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum returns the one-sided amplitude spectrum of samples taken every
// dt seconds. The mean is removed and a Hann window applied before the
// transform. freqs[i] is the frequency of amps[i] in Hz.
func Spectrum(samples []float64, dt float64) (freqs, amps []float64) {
	n := len(samples)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	w := window.Hann(n)
	x := make([]float64, n)
	gain := 0.0
	for i, v := range samples {
		x[i] = (v - mean) * w[i]
		gain += w[i]
	}
	if gain == 0 {
		return nil, nil
	}

	coeffs := fft.FFTReal(x)
	half := n/2 + 1
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		amps[k] = 2 * cmplx.Abs(coeffs[k]) / gain
	}
	return freqs, amps
}

// Dominant returns the strongest non-DC component of samples. It returns
// zeros when there are too few samples to resolve one.
func Dominant(samples []float64, dt float64) (freq, amp float64) {
	freqs, amps := Spectrum(samples, dt)
	for k := 1; k < len(amps); k++ {
		if amps[k] > amp {
			freq, amp = freqs[k], amps[k]
		}
	}
	return freq, amp
}
