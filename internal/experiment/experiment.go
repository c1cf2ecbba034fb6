// Package experiment wires a config.Config into a runnable closed loop.
package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/piddle/internal/config"
	"github.com/san-kum/piddle/internal/control"
	"github.com/san-kum/piddle/internal/dynamo"
	"github.com/san-kum/piddle/internal/integrators"
	"github.com/san-kum/piddle/internal/metrics"
	"github.com/san-kum/piddle/internal/physics"
	"github.com/san-kum/piddle/internal/sim"
	"github.com/san-kum/piddle/internal/storage"
)

// Experiment owns one plant, integrator and PID loop. Instances share
// nothing, so several can run concurrently.
type Experiment struct {
	cfg        *config.Config
	System     dynamo.System
	Integrator dynamo.Integrator
	Loop       *control.Loop
	Sim        *sim.Simulator
}

// New validates cfg, logging any warnings, and builds the loop it describes.
func New(cfg *config.Config, log *zap.Logger) (*Experiment, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Check(log); err != nil {
		return nil, err
	}

	dyn, err := physics.New(cfg.Plant)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	pid, err := cfg.BuildPID()
	if err != nil {
		return nil, err
	}

	loop := control.NewLoop(pid, cfg.Target, cfg.Dt)
	loop.Strict = cfg.Strict

	s := sim.New(dyn, integ, loop, log.With(zap.String("plant", cfg.Plant)))
	for _, m := range metrics.Default(cfg.Target, cfg.PID.Upper, cfg.PID.Lower) {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:        cfg.Clone(),
		System:     dyn,
		Integrator: integ,
		Loop:       loop,
		Sim:        s,
	}, nil
}

// X0 returns the configured initial state, checked against the plant.
func (e *Experiment) X0() (dynamo.State, error) {
	x0 := e.cfg.InitState(e.System.StateDim())
	if len(x0) != e.System.StateDim() {
		return nil, fmt.Errorf("%w: initial has %d values, %s expects %d",
			dynamo.ErrDimensionMismatch, len(x0), e.cfg.Plant, e.System.StateDim())
	}
	return x0, nil
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		ValidateState: true,
		LogEvery:      int(1/e.cfg.Dt + 0.5),
	}
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	x0, err := e.X0()
	if err != nil {
		return nil, err
	}
	return e.Sim.Run(ctx, x0, e.SimConfig())
}

// Job packages the experiment for sim.RunAll.
func (e *Experiment) Job(name string) (sim.Job, error) {
	x0, err := e.X0()
	if err != nil {
		return sim.Job{}, err
	}
	return sim.Job{Name: name, Sim: e.Sim, X0: x0, Cfg: e.SimConfig()}, nil
}

// Info describes the experiment for the run store.
func (e *Experiment) Info() storage.RunInfo {
	p := e.cfg.PID
	return storage.RunInfo{
		Plant:      e.cfg.Plant,
		Integrator: e.cfg.Integrator,
		Dt:         e.cfg.Dt,
		Duration:   e.cfg.Duration,
		Target:     e.cfg.Target,
		Kp:         p.Kp,
		Ki:         p.Ki,
		Kd:         p.Kd,
		CutoffHz:   p.CutoffHz,
		Upper:      p.Upper,
		Lower:      p.Lower,
		Strict:     e.cfg.Strict,
	}
}
