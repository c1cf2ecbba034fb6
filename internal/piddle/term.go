package piddle

import "fmt"

// Term names one of the sub-blocks owned by a PID.
type Term int

const (
	TermProportional Term = iota
	TermIntegral
	TermDerivative
	TermFilter
	TermAntiwindup
)

var termNames = [...]string{
	TermProportional: "proportional",
	TermIntegral:     "integral",
	TermDerivative:   "derivative",
	TermFilter:       "filter",
	TermAntiwindup:   "antiwindup",
}

func (t Term) String() string {
	if t < 0 || int(t) >= len(termNames) {
		return fmt.Sprintf("Term(%d)", int(t))
	}
	return termNames[t]
}

// ParseTerm maps a term name back to its Term.
func ParseTerm(name string) (Term, error) {
	for i, n := range termNames {
		if n == name {
			return Term(i), nil
		}
	}
	return 0, fmt.Errorf("piddle: unknown term %q", name)
}

func (p *PID) EnableTerm(t Term)  { p.setTerm(t, true) }
func (p *PID) DisableTerm(t Term) { p.setTerm(t, false) }

func (p *PID) setTerm(t Term, on bool) {
	switch t {
	case TermProportional:
		p.proportional.SetEnabled(on)
	case TermIntegral:
		p.integral.SetEnabled(on)
	case TermDerivative:
		p.derivative.SetEnabled(on)
	case TermFilter:
		p.derivative.filter.SetEnabled(on)
	case TermAntiwindup:
		p.antiwindup.SetEnabled(on)
	}
}

func (p *PID) TermEnabled(t Term) bool {
	switch t {
	case TermProportional:
		return p.proportional.IsEnabled()
	case TermIntegral:
		return p.integral.IsEnabled()
	case TermDerivative:
		return p.derivative.IsEnabled()
	case TermFilter:
		return p.derivative.FilterEnabled()
	case TermAntiwindup:
		return p.antiwindup.IsEnabled()
	}
	return false
}
