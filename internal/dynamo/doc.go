// Package dynamo provides the shared types of the closed-loop lab.
//
// A plant ([System]) is advanced by an [Integrator] under the input chosen by
// a [Controller]:
//
//   - [State]: plant state vector, x[0] is the measured output
//   - [System]: ODE right-hand side dX/dt = f(X, u, t)
//   - [Controller]: feedback law evaluated once per tick
//   - [Metric], [Observer]: per-tick hooks used by the simulator
//
// Plants and controllers implementing [Configurable] support live tuning.
package dynamo
