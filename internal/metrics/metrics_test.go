package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/piddle/internal/dynamo"
)

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, dynamo.Control{-2}, 0)
	m.Observe(nil, dynamo.Control{4}, 1)

	if m.Value() != 3 {
		t.Errorf("expected 3, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestIAE(t *testing.T) {
	m := NewIAE(1, 0)
	// error 1 -> 0 over one second, then 0 -> 1 over one second
	m.Observe(dynamo.State{0}, nil, 0)
	m.Observe(dynamo.State{1}, nil, 1)
	m.Observe(dynamo.State{2}, nil, 2)

	if math.Abs(m.Value()-1.0) > 1e-12 {
		t.Errorf("expected 1.0, got %f", m.Value())
	}
}

func TestOvershoot(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		ys     []float64
		want   float64
	}{
		{"rising with overshoot", 10, []float64{0, 5, 12, 9, 10}, 0.2},
		{"falling with overshoot", 0, []float64{4, 1, -1, 0}, 0.25},
		{"no crossing", 10, []float64{0, 5, 9}, 0},
		{"starts on target", 3, []float64{3, 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewOvershoot(tt.target, 0)
			for i, y := range tt.ys {
				m.Observe(dynamo.State{y}, nil, float64(i))
			}
			if math.Abs(m.Value()-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, m.Value())
			}
		})
	}
}

func TestRetarget(t *testing.T) {
	ms := Default(10, 1, 0)
	iae, over, sat := ms[0].(*IAE), ms[1].(*Overshoot), ms[3].(*Saturation)

	for i, y := range []float64{0, 5, 12} {
		observeAll(ms, dynamo.State{y}, dynamo.Control{0.5}, float64(i))
	}
	if over.Value() == 0 {
		t.Fatal("expected overshoot before retarget")
	}

	Retarget(ms, 20, 2, -2)
	if iae.Target() != 20 || over.Target() != 20 {
		t.Errorf("targets not moved: iae %f overshoot %f", iae.Target(), over.Target())
	}
	if over.Value() != 0 {
		t.Errorf("overshoot should restart on a new target, got %f", over.Value())
	}

	// rising from 12 toward 20, peaking at 22
	for i, y := range []float64{12, 22, 20} {
		observeAll(ms, dynamo.State{y}, dynamo.Control{1}, float64(3+i))
	}
	if math.Abs(over.Value()-0.25) > 1e-12 {
		t.Errorf("expected overshoot 0.25 against new target, got %f", over.Value())
	}
	// u = 1 no longer sits on the widened bounds
	if sat.Value() != 0 {
		t.Errorf("expected no saturation, got %f", sat.Value())
	}
}

func observeAll(ms []dynamo.Metric, x dynamo.State, u dynamo.Control, t float64) {
	for _, m := range ms {
		m.Observe(x, u, t)
	}
}

func TestSaturation(t *testing.T) {
	m := NewSaturation(1, -1)
	for _, u := range []float64{1, 0.5, -1, 0} {
		m.Observe(nil, dynamo.Control{u}, 0)
	}
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestDefaultNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default(1, 1, 0) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 metrics, got %d", len(seen))
	}
}

func TestChatter(t *testing.T) {
	m := NewChatter()
	if m.Value() != 0 {
		t.Errorf("expected 0 with no samples, got %f", m.Value())
	}

	// constant slope: every delta is 1, no spread
	for i := 0; i < 5; i++ {
		m.Observe(nil, dynamo.Control{float64(i)}, float64(i))
	}
	if m.Value() != 0 {
		t.Errorf("expected 0 for a ramp, got %f", m.Value())
	}

	m.Reset()
	// deltas +1, -1, +1, -1: sample stddev of {1,-1,1,-1} is sqrt(4/3)
	for _, u := range []float64{0, 1, 0, 1, 0} {
		m.Observe(nil, dynamo.Control{u}, 0)
	}
	if want := math.Sqrt(4.0 / 3.0); math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}
}
