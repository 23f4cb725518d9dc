package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the infinity norm of s-other over their common length.
func (s State) MaxAbsDiff(other State) float64 {
	d := 0.0
	for i := range s {
		if i >= len(other) {
			break
		}
		d = math.Max(d, math.Abs(s[i]-other[i]))
	}
	return d
}

// AddScaled returns s + h*v as a new state. Components of s past the end
// of v are copied unchanged.
func (s State) AddScaled(v State, h float64) State {
	out := s.Clone()
	for i := range min(len(s), len(v)) {
		out[i] += h * v[i]
	}
	return out
}

type Control []float64

// System is a continuous flow dX/dt = f(X, t). Any control input is
// evaluated inside Derive through the system's own Controller.
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
	ControlDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, t float64, dt float64) (State, error)
}

// Multistep integrators keep history from earlier steps. Reset discards it
// and must be called whenever the state jumps discontinuously.
type Multistep interface {
	Integrator
	Reset()
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

// Controller maps a state to a control input. It is the pluggable control
// policy of a System.
type Controller interface {
	Compute(x State, t float64) Control
}

type ControllerFunc func(x State, t float64) Control

func (f ControllerFunc) Compute(x State, t float64) Control { return f(x, t) }

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}
