package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/piddle/internal/config"
	"github.com/san-kum/piddle/internal/dynamo"
	"github.com/san-kum/piddle/internal/piddle"
	"github.com/san-kum/piddle/internal/sim"
)

func TestNewAndRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 5

	exp, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 500 {
		t.Errorf("expected 500 steps, got %d", res.StepsTaken)
	}
	for _, name := range []string{"iae", "overshoot", "control_effort", "saturation", "chatter"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if last := res.States[len(res.States)-1][0]; last <= 0 {
		t.Errorf("plant did not heat: %f", last)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		target error
	}{
		{"invalid config", func(c *config.Config) { c.Dt = 0 }, config.ErrInvalid},
		{"unknown plant", func(c *config.Config) { c.Plant = "boiler" }, nil},
		{"unknown integrator", func(c *config.Config) { c.Integrator = "leapfrog" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			_, err := New(cfg, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestInitialDimension(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Plant = "pendulum"
	cfg.Initial = []float64{0.1}

	exp, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := exp.Run(context.Background()); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestExperimentKeepsOwnConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	exp, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Target = 99
	if exp.Info().Target != config.DefaultTarget {
		t.Errorf("experiment saw caller mutation: %f", exp.Info().Target)
	}
}

func TestAblations(t *testing.T) {
	cfg := config.GetPreset("thermal", "aggressive")
	variants := Ablations(cfg)

	want := map[string]piddle.Term{
		"no-antiwindup": piddle.TermAntiwindup,
		"no-filter":     piddle.TermFilter,
		"no-integral":   piddle.TermIntegral,
		"no-derivative": piddle.TermDerivative,
	}
	if len(variants) != len(want)+1 || variants[0].Name != "baseline" {
		t.Fatalf("unexpected variants: %+v", variants)
	}

	for _, v := range variants {
		pid, err := v.Cfg.BuildPID()
		if err != nil {
			t.Fatal(err)
		}
		for name, term := range want {
			if got, exp := pid.TermEnabled(term), name != v.Name; got != exp {
				t.Errorf("%s: %s enabled = %v, want %v", v.Name, term, got, exp)
			}
		}
	}
	if cfg.PID.Enabled.Antiwindup != nil {
		t.Error("ablation modified the source config")
	}
}

func TestDisabledAntiwindupLeavesOutputUnclamped(t *testing.T) {
	cfg := config.GetPreset("thermal", "gentle")
	cfg.PID.Kp, cfg.PID.Ki = 2, 1

	var jobs []sim.Job
	for _, v := range Ablations(cfg)[:2] {
		exp, err := New(v.Cfg, nil)
		if err != nil {
			t.Fatal(err)
		}
		job, err := exp.Job(v.Name)
		if err != nil {
			t.Fatal(err)
		}
		jobs = append(jobs, job)
	}

	out := sim.RunAll(context.Background(), jobs)
	for _, o := range out {
		if o.Err != nil {
			t.Fatalf("%s: %v", o.Name, o.Err)
		}
	}
	clamped, unclamped := peakControl(out[0].Result), peakControl(out[1].Result)
	if clamped > cfg.PID.Upper {
		t.Errorf("baseline output %f above upper bound %f", clamped, cfg.PID.Upper)
	}
	if !(unclamped > cfg.PID.Upper) {
		t.Errorf("no-antiwindup output peaked at %f, want above %f", unclamped, cfg.PID.Upper)
	}
}

func peakControl(res *dynamo.Result) float64 {
	peak := math.Inf(-1)
	for _, u := range res.Controls {
		peak = max(peak, u[0])
	}
	return peak
}
