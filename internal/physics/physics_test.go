package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/piddle/internal/dynamo"
)

func TestThermalEquilibrium(t *testing.T) {
	h := NewThermal()
	// at T = P*u/k the net heat flow is zero
	u := 0.5
	eq := h.Power * u / h.Loss
	dx := h.Derive(dynamo.State{eq}, dynamo.Control{u}, 0)
	if math.Abs(dx[0]) > 1e-12 {
		t.Errorf("expected zero derivative at equilibrium, got %f", dx[0])
	}
	if h.TimeConstant() != DefaultHeatCapacity/DefaultHeatLoss {
		t.Errorf("unexpected time constant %f", h.TimeConstant())
	}
}

func TestSpringMassRestoringForce(t *testing.T) {
	s := NewSpringMass()
	dx := s.Derive(dynamo.State{1, 0}, nil, 0)
	if dx[1] >= 0 {
		t.Errorf("expected restoring acceleration, got %f", dx[1])
	}
	if e := s.Energy(dynamo.State{1, 0}); e != 0.5*DefaultStiffness {
		t.Errorf("expected energy %f, got %f", 0.5*DefaultStiffness, e)
	}
}

func TestPendulumHangingAtRest(t *testing.T) {
	p := NewPendulum()
	dx := p.Derive(dynamo.State{0, 0}, dynamo.Control{0}, 0)
	if dx[0] != 0 || dx[1] != 0 {
		t.Errorf("expected rest, got %v", dx)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		dyn, err := New(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if dyn.ControlDim() != 1 {
			t.Errorf("%s: expected 1 control, got %d", name, dyn.ControlDim())
		}
	}
	if _, err := New("nbody"); err == nil {
		t.Error("expected error for unknown plant")
	}
}

func TestSetParam(t *testing.T) {
	tests := []struct {
		name string
		sys  dynamo.Configurable
		key  string
	}{
		{"thermal", NewThermal(), "power"},
		{"spring_mass", NewSpringMass(), "stiffness"},
		{"pendulum", NewPendulum(), "length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sys.SetParam(tt.key, 2.5); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := tt.sys.GetParams()[tt.key]; got != 2.5 {
				t.Errorf("expected 2.5, got %f", got)
			}
			if err := tt.sys.SetParam("bogus", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
				t.Errorf("expected ErrUnknownParam, got %v", err)
			}
		})
	}
}
