// Package viz runs a closed loop live in the terminal.
//
// The model steps the simulator at roughly wall-clock speed and draws the
// plant, the measured output against the target and the actuator command.
// Loop parameters can be retuned while the simulation runs.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset plant, controller and parameters
//	Tab   - Select next parameter
//	Up/K  - Scale selected parameter by 1.05
//	Down/J- Scale selected parameter by 0.95
//	Q     - Quit
package viz
