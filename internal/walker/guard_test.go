package walker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/walksim/internal/dynamo"
)

func TestGuardStrike(t *testing.T) {
	tests := []struct {
		name  string
		guard Guard
		state dynamo.State
		want  bool
	}{
		{"inside window", DefaultGuard(), dynamo.State{0.1, 0, 0.195, 0}, true},
		{"gap too wide", DefaultGuard(), dynamo.State{0.1, 0, 0.15, 0}, false},
		{"swing foot below slope", DefaultGuard(), dynamo.State{0.1, 0, 0.21, 0}, false},
		{"exactly on slope", DefaultGuard(), dynamo.State{0.1, 0, 0.2, 0}, false},
		{"stance leg behind vertical", DefaultGuard(), dynamo.State{-0.1, 0, -0.205, 0}, false},
		{"mid-swing scuff", DefaultGuard(), dynamo.State{0.005, 0, 0.005, 0}, false},
		{"wider window", Guard{MinStance: 0.01, Gap: 0.1}, dynamo.State{0.1, 0, 0.15, 0}, true},
		{"zero min stance", Guard{MinStance: 0, Gap: 0.01}, dynamo.State{0.005, 0, 0.005, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.guard.Strike(tt.state))
		})
	}
}

func TestGuardValidate(t *testing.T) {
	assert.NoError(t, DefaultGuard().Validate())
	assert.ErrorIs(t, Guard{MinStance: 0.01, Gap: 0}.Validate(), dynamo.ErrParameterBounds)
	assert.ErrorIs(t, Guard{MinStance: -1, Gap: 0.01}.Validate(), dynamo.ErrParameterBounds)
	assert.ErrorIs(t, Guard{MinStance: 0.01, Gap: math.NaN()}.Validate(), dynamo.ErrParameterBounds)
}

func TestFallen(t *testing.T) {
	flat := DefaultParams()
	flat.Alpha = 0

	tests := []struct {
		name   string
		params Params
		state  dynamo.State
		want   bool
	}{
		{"reference start", DefaultParams(), DefaultInitialState(), false},
		{"upright on flat", flat, dynamo.State{0, 0, 0, 0}, false},
		{"leg past horizontal on flat", flat, dynamo.State{math.Pi/2 + 0.1, 0, 0, 0}, true},
		{"leg past horizontal backwards", flat, dynamo.State{-math.Pi/2 - 0.1, 0, 0, 0}, true},
		{"leg near horizontal on slope", DefaultParams(), dynamo.State{1.2, 0, 0, 0}, false},
		{"leg under slope", DefaultParams(), dynamo.State{math.Pi/2 + 0.2, 0, 0, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallen(tt.state, tt.params))
		})
	}
}
