package physics

import (
	"fmt"
	"sort"

	"github.com/san-kum/piddle/internal/dynamo"
)

var plants = map[string]func() dynamo.System{
	"thermal":     func() dynamo.System { return NewThermal() },
	"spring_mass": func() dynamo.System { return NewSpringMass() },
	"pendulum":    func() dynamo.System { return NewPendulum() },
}

// New returns a fresh plant registered under name.
func New(name string) (dynamo.System, error) {
	fn, ok := plants[name]
	if !ok {
		return nil, fmt.Errorf("unknown plant: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(plants))
	for name := range plants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
