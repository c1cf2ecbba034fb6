// Package sim runs a plant and a controller in a fixed-step loop.
//
// The controller is evaluated once per tick on the current state and its
// output is held constant while the integrator advances the plant by Dt.
// [RunAll] runs independent simulations concurrently for side-by-side
// comparisons.
package sim
