package integrators

import "github.com/san-kum/walksim/internal/dynamo"

// Euler is the explicit first-order method. It drifts quickly on the
// walker and is kept as a baseline for integrator comparisons.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t float64, dt float64) (dynamo.State, error) {
	dx, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}
	return checked(x.AddScaled(dx, dt))
}
