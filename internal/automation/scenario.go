package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/experiment"
	"github.com/san-kum/walksim/internal/sim"
)

// Scenario is a scripted sequence of walker runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Base        string         `yaml:"base"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the scenario's base preset. Zero values leave the
// base untouched.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Params     map[string]float64 `yaml:"params"`
	X0         []float64          `yaml:"x0"`
	Dt         float64            `yaml:"dt"`
	MaxT       float64            `yaml:"max_t"`
	StopAfter  int                `yaml:"stop_after"`
	Integrator string             `yaml:"integrator"`
	Policy     string             `yaml:"policy"`
	Torque     float64            `yaml:"torque"`
	Save       bool               `yaml:"save"`
}

type ScenarioResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config resolves a step against the scenario base.
func (s *Scenario) Config(step ScenarioStep) (*config.Config, error) {
	preset := step.Preset
	if preset == "" {
		preset = s.Base
	}
	if preset == "" {
		preset = "reference"
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", preset)
	}

	for name, v := range step.Params {
		next, err := cfg.WithParam(name, v)
		if err != nil {
			return nil, err
		}
		cfg = next
	}
	if len(step.X0) > 0 {
		cfg.X0 = append([]float64(nil), step.X0...)
	}
	if step.Dt != 0 {
		cfg.Dt = step.Dt
	}
	if step.MaxT != 0 {
		cfg.MaxT = step.MaxT
	}
	if step.StopAfter != 0 {
		cfg.StopAfter = step.StopAfter
	}
	if step.Integrator != "" {
		cfg.Integrator = step.Integrator
	}
	if step.Policy != "" {
		cfg.Policy = step.Policy
	}
	if step.Torque != 0 {
		cfg.Torque = step.Torque
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first step that
// cannot be built or fails outright. Falls are results, not failures.
func RunScenario(ctx context.Context, scenario *Scenario, log *zap.Logger) ([]ScenarioResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]ScenarioResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.Info("scenario step", zap.String("scenario", scenario.Name), zap.String("step", name),
			zap.Int("index", i+1), zap.Int("of", len(scenario.Steps)))

		cfg, err := scenario.Config(step)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		exp, err := experiment.Build(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) setup: %w", i+1, name, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}
		log.Info("scenario step done", zap.String("step", name),
			zap.Stringer("outcome", result.Outcome), zap.Int("strikes", len(result.Strikes)))

		results = append(results, ScenarioResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}
