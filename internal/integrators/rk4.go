package integrators

import (
	"fmt"

	"github.com/san-kum/walksim/internal/dynamo"
)

type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// stage evaluates the derivative at x and copies it into dst.
func stage(sys dynamo.System, x dynamo.State, t float64, dst dynamo.State) error {
	dx, err := sys.Derive(x, t)
	if err != nil {
		return err
	}
	copy(dst, dx)
	return nil
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	n := len(x)
	r.ensureScratch(n)

	if err := stage(sys, x, t, r.k1); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	if err := stage(sys, r.scratch, t+dt*0.5, r.k2); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	if err := stage(sys, r.scratch, t+dt*0.5, r.k3); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	if err := stage(sys, r.scratch, t+dt, r.k4); err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return checked(result)
}

// checked rejects non-finite results; they mean the step diverged.
func checked(x dynamo.State) (dynamo.State, error) {
	if !x.IsValid() {
		return nil, fmt.Errorf("%w: %w", dynamo.ErrNumericalDivergence, dynamo.ErrInvalidState)
	}
	return x, nil
}
