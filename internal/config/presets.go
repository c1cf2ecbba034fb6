package config

import "sort"

func off() *bool { v := false; return &v }

var Presets = map[string]map[string]*Config{
	"thermal": {
		"gentle": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.05, Duration: 120, Target: 10,
			PID: PIDConfig{Kp: 0.5, Ki: 0.05, Upper: 1, Lower: 0},
		},
		"aggressive": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.05, Duration: 60, Target: 10,
			PID: PIDConfig{Kp: 4, Ki: 1.5, Kd: 0.2, CutoffHz: 2, Upper: 1, Lower: 0},
		},
		// output is not clamped; integration is still gated on the bounds
		"unclamped": {
			Plant: "thermal", Integrator: "rk4", Dt: 0.05, Duration: 60, Target: 10,
			PID: PIDConfig{Kp: 2, Ki: 1, Upper: 1, Lower: 0, Enabled: EnabledConfig{Antiwindup: off()}},
		},
	},
	"spring_mass": {
		"position": {
			Plant: "spring_mass", Integrator: "rk4", Dt: 0.01, Duration: 20, Target: 1,
			PID: PIDConfig{Kp: 30, Ki: 40, Kd: 6, CutoffHz: 10, Upper: 50, Lower: -50},
		},
		"noisy-derivative": {
			Plant: "spring_mass", Integrator: "rk4", Dt: 0.01, Duration: 20, Target: 1,
			PID: PIDConfig{Kp: 30, Ki: 40, Kd: 6, Upper: 50, Lower: -50},
		},
	},
	"pendulum": {
		"hold": {
			Plant: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20, Target: 0.5,
			PID: PIDConfig{Kp: 40, Ki: 20, Kd: 8, CutoffHz: 15, Upper: 20, Lower: -20},
		},
		"weak-motor": {
			Plant: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20, Target: 0.5,
			PID: PIDConfig{Kp: 40, Ki: 20, Kd: 8, CutoffHz: 15, Upper: 5, Lower: -5},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(plant, name string) *Config {
	byName, ok := Presets[plant]
	if !ok {
		return nil
	}
	cfg, ok := byName[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(plant string) []string {
	byName, ok := Presets[plant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var plantDefaults = map[string]string{
	"thermal":     "gentle",
	"spring_mass": "position",
	"pendulum":    "hold",
}

// ForPlant returns the starting config for plant: its default preset when
// one exists, otherwise DefaultConfig with the plant name set.
func ForPlant(plant string) *Config {
	if cfg := GetPreset(plant, plantDefaults[plant]); cfg != nil {
		return cfg
	}
	cfg := DefaultConfig()
	cfg.Plant = plant
	return cfg
}
