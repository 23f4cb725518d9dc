package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/control"
	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/integrators"
	"github.com/san-kum/walksim/internal/metrics"
	"github.com/san-kum/walksim/internal/walker"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	policies    map[string]func(cfg *config.Config) dynamo.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		policies:    make(map[string]func(cfg *config.Config) dynamo.Controller),
	}

	for _, name := range integrators.Names() {
		r.integrators[name] = func() dynamo.Integrator {
			integ, _ := integrators.New(name)
			return integ
		}
	}

	r.policies["none"] = func(cfg *config.Config) dynamo.Controller {
		return control.NewNone(1)
	}
	r.policies["constant"] = func(cfg *config.Config) dynamo.Controller {
		return control.NewConstant(cfg.Torque)
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetPolicy(name string, cfg *config.Config) (dynamo.Controller, error) {
	if name == "" {
		name = config.DefaultPolicy
	}
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListPolicies() []string {
	return sortedKeys(r.policies)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are the gait metrics recorded for every run.
func (r *Registry) DefaultMetrics(model *walker.Model) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewStepPeriod(),
		metrics.NewStepLength(),
		metrics.NewSpeed(),
		metrics.NewEnergyLoss(model),
		metrics.NewEnergyDrift(model),
	}
}
