package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

// Experiment is one configured walker run.
type Experiment struct {
	cfg    *config.Config
	model  *walker.Model
	driver *sim.Driver
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg.Clone()}
}

// Build validates cfg and returns an experiment wired with the default
// metrics.
func Build(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg := NewRegistry()
	e := New(cfg)
	if err := e.Setup(reg, nil); err != nil {
		return nil, err
	}
	return e, nil
}

// Setup builds the model and driver from the registry. Extra metrics are
// added after the defaults.
func (e *Experiment) Setup(reg *Registry, extra []dynamo.Metric) error {
	integ, err := reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	policy, err := reg.GetPolicy(e.cfg.Policy, e.cfg)
	if err != nil {
		return err
	}

	e.model = walker.NewModel(e.cfg.WalkerParams(), policy)
	e.driver = sim.New(e.model, integ, e.cfg.Guard())
	for _, m := range reg.DefaultMetrics(e.model) {
		e.driver.AddMetric(m)
	}
	for _, m := range extra {
		e.driver.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.driver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.driver.Run(ctx, e.cfg.InitState(), e.cfg.SimConfig())
}

func (e *Experiment) Stream(ctx context.Context) (*sim.Stream, error) {
	if e.driver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.driver.Stream(ctx, e.cfg.InitState(), e.cfg.SimConfig()), nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Model() *walker.Model { return e.model }

// Driver returns the underlying driver for adding observers.
func (e *Experiment) Driver() *sim.Driver { return e.driver }
