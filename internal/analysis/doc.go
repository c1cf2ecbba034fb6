// Package analysis post-processes stored closed-loop runs.
//
// Response measures ([RiseTime], [SettlingTime]) read the measured output
// against the setpoint. [Spectrum] and [Dominant] look for sustained
// oscillation in a signal, typically the tracking error after the initial
// transient, which is how an over-tuned loop shows itself.
package analysis
