package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/walksim/internal/analysis"
	"github.com/san-kum/walksim/internal/automation"
	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

func TestSummary(t *testing.T) {
	res := &sim.Result{
		Times:      []float64{0, 0.5},
		States:     []dynamo.State{{0, 0, 0, 0}, {0, 0, 0, 0}},
		Feet:       []walker.Point{{}, {X: 0.1875}},
		Strikes:    []sim.StrikeEvent{{Index: 1}},
		Outcome:    sim.TimedOut,
		Metrics:    map[string]float64{"step_period": 0.86, "energy": 1.5},
		StepsTaken: 5000,
	}

	out := Summary("walker_1234abcd", res, 12*time.Millisecond)
	for _, want := range []string{"walker_1234abcd", "timed_out", "5000", "0.1875 m", "step_period", "energy", "12ms"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "energy"), strings.Index(out, "step_period"))
}

func TestSummaryEmptyResult(t *testing.T) {
	out := Summary("", &sim.Result{Outcome: sim.Incomplete}, 0)
	assert.Contains(t, out, "incomplete")
	assert.NotContains(t, out, "final t")
	assert.NotContains(t, out, "metrics")
}

func TestCycle(t *testing.T) {
	lc := &analysis.LimitCycle{
		X0:          walker.DefaultInitialState(),
		Period:      0.8632,
		Residual:    4e-4,
		Iterations:  3,
		Multipliers: []complex128{0.2, complex(0.1, 0.05)},
	}
	out := Cycle(lc)
	assert.Contains(t, out, "-0.10791001")
	assert.Contains(t, out, "0.8632 s")
	assert.Contains(t, out, "stable")
	assert.NotContains(t, out, "unstable")

	lc.Multipliers = []complex128{1.3}
	assert.Contains(t, Cycle(lc), "unstable")
}

func TestMonteCarlo(t *testing.T) {
	s := &automation.MonteCarloSummary{
		Trials:  make([]automation.MonteCarloTrial, 4),
		Walking: 3,
		Fell:    1,
	}
	out := MonteCarlo(s)
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "trials")
}
