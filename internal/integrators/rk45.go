package integrators

import (
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. The seventh stage reuses the fifth-order
// solution, so only its error weight is needed.
var (
	dpNodes = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}

	dpCoupling = [6][]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
	}

	// fifth-order weights
	dpWeights = [6]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0}

	// fifth minus fourth order
	dpErrWeights = [7]float64{
		35.0/384.0 - 5179.0/57600.0,
		0,
		500.0/1113.0 - 7571.0/16695.0,
		125.0/192.0 - 393.0/640.0,
		-2187.0/6784.0 + 92097.0/339200.0,
		11.0/84.0 - 187.0/2100.0,
		-1.0 / 40.0,
	}
)

// DefaultRK45Tol is the relative tolerance used to propose the next step
// size when RK45 runs as a fixed-step integrator.
const DefaultRK45Tol = 1e-6

type RK45 struct {
	Tol float64

	safety   float64
	minScale float64
	maxScale float64

	k       [7]dynamo.State
	scratch dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		Tol:      DefaultRK45Tol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) ensureScratch(n int) {
	if len(r.scratch) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
		r.scratch = make(dynamo.State, n)
	}
}

// Step takes one fixed step of size dt with the fifth-order solution; the
// embedded error estimate is discarded.
func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	newX, _, err := r.StepAdaptive(sys, x, t, dt, r.Tol)
	return newX, err
}

// StepAdaptive advances x by dt and proposes the next step size for a
// relative error of tol. The step is taken even when the error estimate
// exceeds tol; callers that need rejection compare the proposal with dt.
func (r *RK45) StepAdaptive(sys dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	n := len(x)
	r.ensureScratch(n)

	if err := stage(sys, x, t, r.k[0]); err != nil {
		return nil, 0, err
	}
	for s := 1; s < 6; s++ {
		for i := 0; i < n; i++ {
			acc := 0.0
			for j, a := range dpCoupling[s] {
				acc += a * r.k[j][i]
			}
			r.scratch[i] = x[i] + dt*acc
		}
		if err := stage(sys, r.scratch, t+dpNodes[s]*dt, r.k[s]); err != nil {
			return nil, 0, err
		}
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for j, b := range dpWeights {
			acc += b * r.k[j][i]
		}
		xNew[i] = x[i] + dt*acc
	}
	if err := stage(sys, xNew, t+dt, r.k[6]); err != nil {
		return nil, 0, err
	}

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := 0.0
		for j, e := range dpErrWeights {
			est += e * r.k[j][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*r.k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(dt*est)/scale)
	}

	xNew, err := checked(xNew)
	return xNew, r.propose(dt, errMax/tol), err
}

// propose scales dt from the error ratio, shrinking on a fourth-order and
// growing on a fifth-order estimate.
func (r *RK45) propose(dt, errRatio float64) float64 {
	switch {
	case errRatio > 1:
		return dt * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		return dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	default:
		return dt * r.maxScale
	}
}
