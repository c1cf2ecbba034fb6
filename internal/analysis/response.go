package analysis

import "math"

// RiseTime is the time the output takes to go from 10% to 90% of the way
// from its starting value to target. It returns NaN if either crossing
// never happens.
func RiseTime(times, ys []float64, target float64) float64 {
	if len(ys) == 0 || len(times) < len(ys) {
		return math.NaN()
	}
	start := ys[0]
	span := target - start
	if span == 0 {
		return 0
	}

	t10, t90 := math.NaN(), math.NaN()
	for i, y := range ys {
		progress := (y - start) / span
		if math.IsNaN(t10) && progress >= 0.1 {
			t10 = times[i]
		}
		if progress >= 0.9 {
			t90 = times[i]
			break
		}
	}
	return t90 - t10
}

// SettlingTime is the earliest time after which the output stays within
// band (a fraction of the step size) of target. It returns NaN if the
// output is outside the band at the last sample.
func SettlingTime(times, ys []float64, target, band float64) float64 {
	if len(ys) == 0 || len(times) < len(ys) {
		return math.NaN()
	}
	tol := band * math.Abs(target-ys[0])
	if tol == 0 {
		tol = band
	}

	settled := math.NaN()
	for i := len(ys) - 1; i >= 0; i-- {
		if !(math.Abs(ys[i]-target) <= tol) {
			break
		}
		settled = times[i]
	}
	return settled
}

// Tail returns the trailing fraction of s, at least two samples when s
// has them.
func Tail(s []float64, fraction float64) []float64 {
	n := int(float64(len(s)) * fraction)
	n = max(n, min(2, len(s)))
	return s[len(s)-n:]
}
