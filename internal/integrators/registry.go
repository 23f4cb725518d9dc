package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/walksim/internal/dynamo"
)

var factories = map[string]func() dynamo.Integrator{
	"bdf":   func() dynamo.Integrator { return NewBDF() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"rk45":  func() dynamo.Integrator { return NewRK45() },
	"euler": func() dynamo.Integrator { return NewEuler() },
}

// New returns a fresh integrator by name.
func New(name string) (dynamo.Integrator, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
