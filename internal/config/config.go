package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/piddle/internal/piddle"
)

const (
	DefaultPlant      = "thermal"
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.01
	DefaultDuration   = 60.0
	DefaultTarget     = 10.0
	DefaultKp         = 2.0
	DefaultKi         = 0.5
	DefaultKd         = 0.0
	DefaultCutoffHz   = 0.0
	DefaultUpper      = 1.0
	DefaultLower      = 0.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Plant      string    `yaml:"plant"`
	Integrator string    `yaml:"integrator"`
	Dt         float64   `yaml:"dt"`
	Duration   float64   `yaml:"duration"`
	Target     float64   `yaml:"target"`
	Initial    []float64 `yaml:"initial,omitempty"`
	Strict     bool      `yaml:"strict"`
	PID        PIDConfig `yaml:"pid"`
}

type PIDConfig struct {
	Kp       float64       `yaml:"kp"`
	Ki       float64       `yaml:"ki"`
	Kd       float64       `yaml:"kd"`
	CutoffHz float64       `yaml:"cutoff_hz"`
	Upper    float64       `yaml:"upper"`
	Lower    float64       `yaml:"lower"`
	Enabled  EnabledConfig `yaml:"enabled,omitempty"`
}

// EnabledConfig toggles blocks. A nil entry keeps the constructor default:
// every block on, except the derivative filter when cutoff_hz <= 0.
type EnabledConfig struct {
	PID          *bool `yaml:"pid,omitempty"`
	Proportional *bool `yaml:"proportional,omitempty"`
	Integral     *bool `yaml:"integral,omitempty"`
	Derivative   *bool `yaml:"derivative,omitempty"`
	Filter       *bool `yaml:"filter,omitempty"`
	Antiwindup   *bool `yaml:"antiwindup,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant:      DefaultPlant,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Target:     DefaultTarget,
		PID: PIDConfig{
			Kp:       DefaultKp,
			Ki:       DefaultKi,
			Kd:       DefaultKd,
			CutoffHz: DefaultCutoffHz,
			Upper:    DefaultUpper,
			Lower:    DefaultLower,
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Initial = slices.Clone(c.Initial)
	e := &out.PID.Enabled
	for _, p := range []**bool{&e.PID, &e.Proportional, &e.Integral, &e.Derivative, &e.Filter, &e.Antiwindup} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	return &out
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads a YAML file over a copy of base. Keys missing from the file
// keep base's values; base itself is not modified.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate returns fatal problems as an error and questionable but usable
// settings as warnings.
func (c *Config) Validate() ([]string, error) {
	var errs []error
	var warnings []string

	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		errs = append(errs, fmt.Errorf("%w: dt must be finite and > 0, got %g", ErrInvalid, c.Dt))
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		errs = append(errs, fmt.Errorf("%w: duration must be finite and > 0, got %g", ErrInvalid, c.Duration))
	}
	if !(c.PID.Upper >= c.PID.Lower) {
		errs = append(errs, fmt.Errorf("%w: pid.upper (%g) < pid.lower (%g)", ErrInvalid, c.PID.Upper, c.PID.Lower))
	}
	for name, v := range map[string]float64{
		"kp": c.PID.Kp, "ki": c.PID.Ki, "kd": c.PID.Kd,
		"cutoff_hz": c.PID.CutoffHz, "target": c.Target,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s is not finite", ErrInvalid, name))
		}
	}

	filterOn := c.PID.CutoffHz > 0
	if c.PID.Enabled.Filter != nil {
		filterOn = *c.PID.Enabled.Filter
	}
	if filterOn && c.PID.CutoffHz <= 0 {
		warnings = append(warnings, fmt.Sprintf("derivative filter enabled with cutoff_hz=%g: derivative output will stay at zero", c.PID.CutoffHz))
	}
	for name, v := range map[string]float64{"kp": c.PID.Kp, "ki": c.PID.Ki, "kd": c.PID.Kd} {
		if v < 0 {
			warnings = append(warnings, fmt.Sprintf("negative gain %s=%g: loop acts in reverse", name, v))
		}
	}
	if c.PID.Upper == c.PID.Lower {
		warnings = append(warnings, "pid.upper == pid.lower: output is constant")
	}

	return warnings, errors.Join(errs...)
}

// Check validates the config and logs warnings.
func (c *Config) Check(log *zap.Logger) error {
	warnings, err := c.Validate()
	for _, w := range warnings {
		log.Warn(w, zap.String("plant", c.Plant))
	}
	return err
}

// BuildPID constructs the controller described by the pid section.
func (c *Config) BuildPID() (*piddle.PID, error) {
	p := c.PID
	pid, err := piddle.NewPID(piddle.Gains{P: p.Kp, I: p.Ki, D: p.Kd}, p.CutoffHz, p.Upper, p.Lower)
	if err != nil {
		return nil, err
	}

	toggles := []struct {
		on   *bool
		term piddle.Term
	}{
		{p.Enabled.Proportional, piddle.TermProportional},
		{p.Enabled.Integral, piddle.TermIntegral},
		{p.Enabled.Derivative, piddle.TermDerivative},
		{p.Enabled.Filter, piddle.TermFilter},
		{p.Enabled.Antiwindup, piddle.TermAntiwindup},
	}
	for _, tg := range toggles {
		if tg.on == nil {
			continue
		}
		if *tg.on {
			pid.EnableTerm(tg.term)
		} else {
			pid.DisableTerm(tg.term)
		}
	}
	if p.Enabled.PID != nil && !*p.Enabled.PID {
		pid.Disable()
	}
	return pid, nil
}

// InitState returns the configured initial state, or zeros of length dim.
func (c *Config) InitState(dim int) []float64 {
	if len(c.Initial) > 0 {
		x := make([]float64, len(c.Initial))
		copy(x, c.Initial)
		return x
	}
	return make([]float64, dim)
}
