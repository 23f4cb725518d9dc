package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

const (
	DefaultDt         = 1e-4
	DefaultMaxT       = 10.0
	DefaultDownsample = 100
	DefaultIntegrator = "bdf"
	DefaultPolicy     = "none"
)

type Config struct {
	Params     ParamsConfig `yaml:"params"`
	X0         []float64    `yaml:"x0"`
	Dt         float64      `yaml:"dt"`
	MaxT       float64      `yaml:"max_t"`
	Downsample int          `yaml:"downsample"`
	StopAfter  int          `yaml:"stop_after,omitempty"`
	Integrator string       `yaml:"integrator"`
	Policy     string       `yaml:"policy"`
	Torque     float64      `yaml:"torque,omitempty"`
	Event      EventConfig  `yaml:"event"`
}

type ParamsConfig struct {
	Alpha   float64 `yaml:"alpha"`
	MHip    float64 `yaml:"m_hip"`
	MSwing  float64 `yaml:"m_sw"`
	Length  float64 `yaml:"l"`
	Gravity float64 `yaml:"g"`
}

type EventConfig struct {
	MinStance float64 `yaml:"min_stance"`
	Gap       float64 `yaml:"gap"`
}

func DefaultConfig() *Config {
	p := walker.DefaultParams()
	g := walker.DefaultGuard()
	return &Config{
		Params: ParamsConfig{
			Alpha:   p.Alpha,
			MHip:    p.MHip,
			MSwing:  p.MSwing,
			Length:  p.Length,
			Gravity: p.Gravity,
		},
		X0:         walker.DefaultInitialState(),
		Dt:         DefaultDt,
		MaxT:       DefaultMaxT,
		Downsample: DefaultDownsample,
		Integrator: DefaultIntegrator,
		Policy:     DefaultPolicy,
		Event:      EventConfig{MinStance: g.MinStance, Gap: g.Gap},
	}
}

// Load reads a YAML config. Keys missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Clone() *Config {
	out := *c
	out.X0 = append([]float64(nil), c.X0...)
	return &out
}

func (c *Config) WalkerParams() walker.Params {
	return walker.Params{
		Alpha:   c.Params.Alpha,
		MHip:    c.Params.MHip,
		MSwing:  c.Params.MSwing,
		Length:  c.Params.Length,
		Gravity: c.Params.Gravity,
	}
}

func (c *Config) Guard() walker.Guard {
	return walker.Guard{MinStance: c.Event.MinStance, Gap: c.Event.Gap}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:         c.Dt,
		MaxT:       c.MaxT,
		Downsample: c.Downsample,
		StopAfter:  c.StopAfter,
	}
}

func (c *Config) InitState() dynamo.State {
	return dynamo.State(append([]float64(nil), c.X0...))
}

// WithParam returns a copy with one physical parameter replaced, using
// the names of walker.Params.GetParams.
func (c *Config) WithParam(name string, value float64) (*Config, error) {
	p, err := c.WalkerParams().With(name, value)
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	out.Params = ParamsConfig{
		Alpha:   p.Alpha,
		MHip:    p.MHip,
		MSwing:  p.MSwing,
		Length:  p.Length,
		Gravity: p.Gravity,
	}
	return out, nil
}

func (c *Config) Validate() error {
	if err := c.WalkerParams().Validate(); err != nil {
		return err
	}
	if err := c.Guard().Validate(); err != nil {
		return err
	}
	if err := c.SimConfig().Validate(); err != nil {
		return err
	}
	x0 := c.InitState()
	if len(x0) != walker.StateDim {
		return fmt.Errorf("%w: x0 has %d components, want %d", dynamo.ErrDimensionMismatch, len(x0), walker.StateDim)
	}
	if !x0.IsValid() {
		return fmt.Errorf("%w: x0 %v", dynamo.ErrInvalidState, c.X0)
	}
	if c.Integrator == "" {
		return fmt.Errorf("%w: integrator must be named", dynamo.ErrParameterBounds)
	}
	return nil
}
