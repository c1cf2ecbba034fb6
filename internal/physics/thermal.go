package physics

import (
	"fmt"

	"github.com/san-kum/piddle/internal/dynamo"
)

const (
	DefaultHeaterPower  = 40.0 // W at u = 1
	DefaultHeatLoss     = 0.8  // W/K to ambient
	DefaultHeatCapacity = 12.0 // J/K
	DefaultAmbient      = 0.0
)

// Thermal is a lumped first-order heater: a single thermal mass driven by a
// power input and losing heat to ambient. State is [T]; T is measured
// relative to DefaultAmbient by default, so a target of 1 means one kelvin
// above the surroundings.
type Thermal struct {
	Power    float64
	Loss     float64
	Capacity float64
	Ambient  float64
}

func NewThermal() *Thermal {
	return &Thermal{
		Power:    DefaultHeaterPower,
		Loss:     DefaultHeatLoss,
		Capacity: DefaultHeatCapacity,
		Ambient:  DefaultAmbient,
	}
}

func (h *Thermal) StateDim() int   { return 1 }
func (h *Thermal) ControlDim() int { return 1 }

func (h *Thermal) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	duty := 0.0
	if len(u) > 0 {
		duty = u[0]
	}
	dT := (h.Power*duty - h.Loss*(x[0]-h.Ambient)) / h.Capacity
	return dynamo.State{dT}
}

// TimeConstant is C/k, the open-loop settling scale in seconds.
func (h *Thermal) TimeConstant() float64 {
	return h.Capacity / h.Loss
}

func (h *Thermal) GetParams() map[string]float64 {
	return map[string]float64{
		"power":    h.Power,
		"loss":     h.Loss,
		"capacity": h.Capacity,
		"ambient":  h.Ambient,
	}
}

func (h *Thermal) SetParam(name string, value float64) error {
	switch name {
	case "power":
		h.Power = value
	case "loss":
		h.Loss = value
	case "capacity":
		if value <= 0 {
			return fmt.Errorf("capacity must be positive, got %g", value)
		}
		h.Capacity = value
	case "ambient":
		h.Ambient = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
