package integrators

import "github.com/san-kum/piddle/internal/dynamo"

// Euler is the explicit first-order method. It matches the zero-order hold
// the controller assumes between ticks and is cheap enough for sweeps.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	next := make(dynamo.State, len(x))
	for i := range x {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}
