// Package piddle implements a discrete-time PID control block.
//
// A [PID] composes four blocks, each usable on its own:
//
//   - [Proportional]: stateless gain
//   - [Integral]: trapezoidal accumulator
//   - [Derivative]: backward difference, optionally smoothed by a [Filter]
//   - [Antiwindup]: output saturation and conditional-integration gate
//
// All of them implement [Block]. The package owns no I/O and takes no locks;
// wrap a controller in [Guarded] when it is shared between goroutines.
//
// # Usage
//
//	pid, err := piddle.NewPID(piddle.Gains{P: 1, I: 0.5, D: 0.1}, 0, 5, -5)
//	if err != nil {
//	    return err
//	}
//	for {
//	    u, err := pid.Step(target-measure(), dt)
//	    ...
//	}
//
// [PID.Setup] is the raw per-tick computation; [PID.Step] validates dt and
// rejects non-finite values before they reach the actuator.
package piddle
