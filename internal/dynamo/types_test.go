package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_AddScaled(t *testing.T) {
	tests := []struct {
		name string
		s, v State
		h    float64
		want State
	}{
		{"same length", State{1, 2, 3}, State{4, 5, 6}, 2, State{9, 12, 15}},
		{"negative step", State{4, 5}, State{1, 1}, -1, State{3, 4}},
		{"short v", State{1, 2, 3}, State{1}, 1, State{2, 2, 3}},
		{"zero step", State{1, 2}, State{7, 7}, 0, State{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.s.AddScaled(tt.v, tt.h)
			if got.MaxAbsDiff(tt.want) != 0 || len(got) != len(tt.want) {
				t.Errorf("AddScaled = %v, want %v", got, tt.want)
			}
		})
	}

	s := State{1, 2}
	s.AddScaled(State{1, 1}, 1)
	if s[0] != 1 || s[1] != 2 {
		t.Error("AddScaled modified its receiver")
	}
}

func TestState_MaxAbsDiff(t *testing.T) {
	a := State{1, 2, 3}
	if d := a.MaxAbsDiff(State{1, 2.5, 2}); d != 1 {
		t.Errorf("MaxAbsDiff = %v, want 1", d)
	}
	if d := a.MaxAbsDiff(State{1}); d != 0 {
		t.Errorf("MaxAbsDiff over common length = %v, want 0", d)
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	src := State{1, 2, 3}
	c := src.Clone()
	c[0] = 99
	if src[0] == 99 {
		t.Error("Clone did not create independent copy")
	}
}

func TestControllerFunc(t *testing.T) {
	f := ControllerFunc(func(x State, t float64) Control {
		return Control{x[0] * t}
	})
	u := f.Compute(State{2}, 3)
	if len(u) != 1 || u[0] != 6 {
		t.Errorf("ControllerFunc returned %v", u)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Time: 1.5, Step: 150, Wrapped: ErrNumericalDivergence}
	expected := "step 150 (t=1.5000): dynamo: integrator step did not converge"
	if err.Error() != expected {
		t.Errorf("SimulationError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrNumericalDivergence) {
		t.Error("SimulationError should unwrap to its cause")
	}
}
