package experiment

import "github.com/san-kum/piddle/internal/config"

type Variant struct {
	Name string
	Cfg  *config.Config
}

// Ablations returns cfg unchanged as "baseline" followed by one copy per
// block with that block switched off.
func Ablations(cfg *config.Config) []Variant {
	without := func(name string, field func(*config.EnabledConfig) **bool) Variant {
		c := cfg.Clone()
		off := false
		*field(&c.PID.Enabled) = &off
		return Variant{Name: name, Cfg: c}
	}
	return []Variant{
		{Name: "baseline", Cfg: cfg.Clone()},
		without("no-antiwindup", func(e *config.EnabledConfig) **bool { return &e.Antiwindup }),
		without("no-filter", func(e *config.EnabledConfig) **bool { return &e.Filter }),
		without("no-integral", func(e *config.EnabledConfig) **bool { return &e.Integral }),
		without("no-derivative", func(e *config.EnabledConfig) **bool { return &e.Derivative }),
	}
}
