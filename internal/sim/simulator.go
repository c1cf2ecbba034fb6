package sim

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/piddle/internal/dynamo"
)

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
	// LogEvery emits a debug record every n ticks; 0 disables tick logging.
	LogEvery int
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		ValidateState: true,
	}
}

type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	controller dynamo.Controller
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	log        *zap.Logger
}

// New builds a simulator. A nil logger discards output.
func New(dyn dynamo.System, integrator dynamo.Integrator, controller dynamo.Controller, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		log:        log,
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() dynamo.System         { return s.dyn }
func (s *Simulator) Controller() dynamo.Controller { return s.controller }

// Advance runs a single tick: the controller sees x at time t, the plant is
// integrated over dt under the resulting input.
func (s *Simulator) Advance(x dynamo.State, t, dt float64) (dynamo.State, dynamo.Control, error) {
	u := s.controller.Compute(x, t)
	if fc, ok := s.controller.(dynamo.FallibleController); ok && fc.Err() != nil {
		return x, u, fc.Err()
	}

	for _, m := range s.metrics {
		m.Observe(x, u, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, u, t)
	}

	return s.integrator.Step(s.dyn, x, u, t, dt), u, nil
}

func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*dynamo.Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &dynamo.Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	s.log.Debug("simulation started",
		zap.Int("steps", steps),
		zap.Float64("dt", cfg.Dt),
		zap.Int("state_dim", len(x)),
	)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		next, u, err := s.Advance(x, t, cfg.Dt)
		if err != nil {
			s.log.Warn("controller rejected step", zap.Int("step", i), zap.Float64("t", t), zap.Error(err))
			return result, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}

		if cfg.ValidateState && !next.IsValid() {
			s.log.Warn("state diverged", zap.Int("step", i), zap.Float64("t", t), zap.Float64s("control", u))
			return result, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: dynamo.ErrInvalidState}
		}

		// t advances by index so long runs do not accumulate rounding
		x = next
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)

		if cfg.LogEvery > 0 && i%cfg.LogEvery == 0 {
			s.log.Debug("tick", zap.Int("step", i), zap.Float64("t", t), zap.Float64s("x", x), zap.Float64s("u", u))
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug("simulation finished", zap.Int("steps", result.StepsTaken), zap.Any("metrics", result.Metrics))
	return result, nil
}

func (s *Simulator) validate(x0 dynamo.State, cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive and finite, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("duration must be positive and finite, got %f", cfg.Duration)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: initial state has %d values, plant expects %d", dynamo.ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	return nil
}
