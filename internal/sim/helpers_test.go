package sim_test

import (
	"github.com/san-kum/walksim/internal/dynamo"
)

// scriptedIntegrator returns a fixed sequence of states and records the
// states it was asked to step from.
type scriptedIntegrator struct {
	script []dynamo.State
	inputs []dynamo.State
	resets int
	err    error
	failAt int
}

func (s *scriptedIntegrator) Step(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	s.inputs = append(s.inputs, x.Clone())
	n := len(s.inputs)
	if s.err != nil && n >= s.failAt {
		return nil, s.err
	}
	if n <= len(s.script) {
		return s.script[n-1].Clone(), nil
	}
	return x.Clone(), nil
}

func (s *scriptedIntegrator) Reset() { s.resets++ }

// countingMetric counts observations and strikes.
type countingMetric struct {
	observed int
	strikes  int
	lastT    float64
}

func (c *countingMetric) Name() string { return "counting" }

func (c *countingMetric) Observe(x dynamo.State, t float64) {
	c.observed++
	c.lastT = t
}

func (c *countingMetric) Value() float64 { return float64(c.observed) }

func (c *countingMetric) Reset() {
	c.observed = 0
	c.strikes = 0
	c.lastT = 0
}
