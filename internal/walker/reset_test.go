package walker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/walksim/internal/dynamo"
)

// preImpact is a state just inside the default strike window.
func preImpact() dynamo.State {
	return dynamo.State{0.1079, -0.49, 0.2108, -0.35}
}

func TestResetRelabelsLegs(t *testing.T) {
	p := DefaultParams()
	states := []dynamo.State{
		preImpact(),
		{0.2, -1.0, 0.395, 0.5},
		{0.05, -0.3, 0.095, 0.0},
		{0.3, 0.0, 0.595, 1.0},
	}

	for _, x := range states {
		got := Reset(x, p)
		assert.Equal(t, -x[StanceAngle], got[StanceAngle])
		assert.Equal(t, -2*x[StanceAngle], got[SwingAngle])
	}
}

func TestResetVelocities(t *testing.T) {
	p := DefaultParams()
	x := preImpact()
	got := Reset(x, p)

	c := math.Cos(x[SwingAngle])
	s := math.Sin(x[SwingAngle])
	den := 1 + p.Beta()*s*s

	assert.InDelta(t, c/den*x[StanceRate], got[StanceRate], 1e-15)
	assert.InDelta(t, c*(1-c)/den*x[StanceRate], got[SwingRate], 1e-15)
	assert.LessOrEqual(t, math.Abs(got[StanceRate]), math.Abs(x[StanceRate]))
}

func TestResetIsPure(t *testing.T) {
	p := DefaultParams()
	x := preImpact()
	before := x.Clone()

	a := Reset(x, p)
	b := Reset(x, p)

	assert.Equal(t, a, b)
	assert.Equal(t, before, x, "input state must not be modified")
}

func TestResetIgnoresPreImpactSwingRate(t *testing.T) {
	p := DefaultParams()
	x := preImpact()
	y := x.Clone()
	y[SwingRate] = 5

	assert.Equal(t, Reset(x, p), Reset(y, p))
}
