package integrators

import (
	"math"

	"github.com/san-kum/piddle/internal/dynamo"
)

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// fifth-order weights minus the embedded fourth-order ones
	dpE = [7]float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

// RK45 integrates each control interval with adaptive Dormand-Prince
// sub-steps. The input is held for the whole interval, so the controller
// still samples at the fixed tick while stiff stretches of the plant get
// smaller internal steps.
type RK45 struct {
	Tol      float64
	MaxSteps int

	safety, minScale, maxScale float64

	k  [7]dynamo.State
	xs dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		Tol:      1e-8,
		MaxSteps: 1000,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

func (r *RK45) ensureScratch(n int) {
	if len(r.xs) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.xs = make(dynamo.State, n)
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.ensureScratch(len(x))

	cur := x.Clone()
	end := t + dt
	h := dt
	for steps := 0; t < end && steps < r.MaxSteps; steps++ {
		h = math.Min(h, end-t)
		next, errRatio := r.attempt(dyn, cur, u, t, h)

		if math.IsNaN(errRatio) {
			return next
		}
		if errRatio <= 1 || steps == r.MaxSteps-1 {
			cur = next
			t += h
		}

		scale := r.maxScale
		if errRatio > 0 {
			scale = r.safety * math.Pow(errRatio, -0.2)
		}
		h *= math.Min(r.maxScale, math.Max(r.minScale, scale))
		if !(h > 0) {
			break
		}
	}
	return cur
}

// attempt takes one Dormand-Prince step of size h and returns the fifth-order
// solution with its scaled error estimate; a ratio <= 1 is accepted.
func (r *RK45) attempt(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, h float64) (dynamo.State, float64) {
	copy(r.k[0], dyn.Derive(x, u, t))
	for s := 1; s < 7; s++ {
		for i := range x {
			acc := 0.0
			for j := 0; j < s; j++ {
				acc += dpA[s][j] * r.k[j][i]
			}
			r.xs[i] = x[i] + h*acc
		}
		copy(r.k[s], dyn.Derive(r.xs, u, t+dpC[s]*h))
	}

	// the last stage is evaluated at the fifth-order solution
	next := r.xs.Clone()

	errMax := 0.0
	for i := range x {
		est := 0.0
		for s := 0; s < 7; s++ {
			est += dpE[s] * r.k[s][i]
		}
		scale := r.Tol * (1 + math.Max(math.Abs(x[i]), math.Abs(next[i])))
		errMax = math.Max(errMax, math.Abs(h*est)/scale)
	}
	return next, errMax
}
