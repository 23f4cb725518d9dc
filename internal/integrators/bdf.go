package integrators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/walksim/internal/dynamo"
)

const (
	DefaultBDFMaxIter = 8
	DefaultBDFTol     = 1e-10
)

// BDF is a fixed-step implicit backward differentiation stepper. It runs
// BDF2 once it has a step of history and falls back to backward Euler
// (BDF1) on the first step, after Reset, or whenever the caller hands it a
// state or step size that does not continue the previous step.
//
// Each step solves the implicit equation with a chord Newton iteration:
// the Jacobian is formed once per step by forward differences and
// LU-factored with gonum.
type BDF struct {
	MaxIter int
	Tol     float64

	prev   dynamo.State
	last   dynamo.State
	lastDt float64
	order  int

	jac  *mat.Dense
	lu   mat.LU
	rhs  *mat.VecDense
	dlt  *mat.VecDense
	pert dynamo.State
}

func NewBDF() *BDF {
	return &BDF{MaxIter: DefaultBDFMaxIter, Tol: DefaultBDFTol}
}

// Reset drops the step history so the next step starts at first order.
func (b *BDF) Reset() {
	b.prev = nil
	b.last = nil
	b.lastDt = 0
	b.order = 0
}

// Order reports the order used by the most recent successful step, or 0
// before the first one.
func (b *BDF) Order() int { return b.order }

func (b *BDF) ensureScratch(n int) {
	if b.jac == nil || b.jac.RawMatrix().Rows != n {
		b.jac = mat.NewDense(n, n, nil)
		b.rhs = mat.NewVecDense(n, nil)
		b.dlt = mat.NewVecDense(n, nil)
		b.pert = make(dynamo.State, n)
	}
}

func (b *BDF) continues(x dynamo.State, dt float64) bool {
	return b.prev != nil && b.last != nil &&
		len(b.last) == len(x) && dt == b.lastDt &&
		b.last.MaxAbsDiff(x) == 0
}

func (b *BDF) Step(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	n := len(x)
	b.ensureScratch(n)

	maxIter := b.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultBDFMaxIter
	}
	tol := b.Tol
	if tol <= 0 {
		tol = DefaultBDFTol
	}

	// y = c + gh*f(y, t+dt)
	order := 1
	c := x.Clone()
	gh := dt
	if b.continues(x, dt) {
		order = 2
		for i := range c {
			c[i] = (4*x[i] - b.prev[i]) / 3
		}
		gh = 2 * dt / 3
	}

	fx, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}
	if err := b.factorize(sys, x, fx, t, gh); err != nil {
		return nil, err
	}

	y := make(dynamo.State, n)
	for i := range y {
		y[i] = x[i] + dt*fx[i]
	}

	tNext := t + dt
	for iter := 0; iter < maxIter; iter++ {
		fy, err := sys.Derive(y, tNext)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			b.rhs.SetVec(i, y[i]-c[i]-gh*fy[i])
		}
		if err := b.lu.SolveVecTo(b.dlt, false, b.rhs); err != nil {
			return nil, fmt.Errorf("%w: newton solve: %v", dynamo.ErrNumericalDivergence, err)
		}

		worst := 0.0
		for i := 0; i < n; i++ {
			d := b.dlt.AtVec(i)
			y[i] -= d
			worst = math.Max(worst, math.Abs(d)/(1+math.Abs(y[i])))
		}
		if !y.IsValid() {
			break
		}
		if worst < tol {
			b.prev = x.Clone()
			b.last = y.Clone()
			b.lastDt = dt
			b.order = order
			return y, nil
		}
	}

	b.Reset()
	return nil, fmt.Errorf("%w: BDF%d newton did not converge in %d iterations",
		dynamo.ErrNumericalDivergence, order, maxIter)
}

// factorize builds I - gh*J, with J the forward-difference Jacobian of the
// system at x, and LU-factors it.
func (b *BDF) factorize(sys dynamo.System, x, fx dynamo.State, t, gh float64) error {
	n := len(x)
	copy(b.pert, x)
	for j := 0; j < n; j++ {
		h := 1e-7 * math.Max(1, math.Abs(x[j]))
		b.pert[j] = x[j] + h
		fp, err := sys.Derive(b.pert, t)
		if err != nil {
			return err
		}
		b.pert[j] = x[j]
		for i := 0; i < n; i++ {
			v := -gh * (fp[i] - fx[i]) / h
			if i == j {
				v += 1
			}
			b.jac.Set(i, j, v)
		}
	}
	b.lu.Factorize(b.jac)
	return nil
}
