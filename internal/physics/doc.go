// Package physics provides plants for closed-loop testing of the PID block.
//
// Each plant implements [dynamo.System] with a single control input and
// reports its measured output in x[0]:
//
//   - [Thermal]: first-order heater, the textbook PID target
//   - [SpringMass]: second-order damped oscillator
//   - [Pendulum]: nonlinear, gravity-loaded second-order plant
//
// All plants implement [dynamo.Configurable] for runtime parameter
// adjustment.
package physics
