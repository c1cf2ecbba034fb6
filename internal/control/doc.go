// Package control adapts the PID block to the simulator.
//
// [Loop] implements [dynamo.Controller] around a [piddle.PID]:
//
//	pid, _ := piddle.NewPID(piddle.Gains{P: 2, I: 0.5}, 0, 1, 0)
//	loop := control.NewLoop(pid, target, dt)
//	s := sim.New(plant, integ, loop, logger)
//	// Loop.Compute is called each timestep
//
// Loop implements [dynamo.Configurable] so gains, bounds, cutoff and target
// can be tuned while a simulation runs.
package control
