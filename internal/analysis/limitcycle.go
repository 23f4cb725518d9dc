package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/integrators"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

var (
	ErrNoStrike     = errors.New("analysis: walker did not complete a step")
	ErrNoLimitCycle = errors.New("analysis: limit cycle search did not converge")
)

type LimitCycleOptions struct {
	Dt float64
	// MaxT bounds the time allowed for a single step.
	MaxT    float64
	Tol     float64
	MaxIter int
	// FDStep is the finite-difference step for the stride-map Jacobian.
	// It must be large against the state jump of one time step, since
	// strikes are only resolved to the nearest step.
	FDStep     float64
	Guard      walker.Guard
	Integrator func() dynamo.Integrator
}

func DefaultLimitCycleOptions() LimitCycleOptions {
	return LimitCycleOptions{
		Dt:         1e-4,
		MaxT:       5,
		Tol:        2e-3,
		MaxIter:    25,
		FDStep:     5e-3,
		Guard:      walker.DefaultGuard(),
		Integrator: func() dynamo.Integrator { return integrators.NewBDF() },
	}
}

// LimitCycle is a fixed point of the stride map.
type LimitCycle struct {
	// X0 is the post-strike state of the gait.
	X0         dynamo.State
	Period     float64
	Residual   float64
	Iterations int
	// Multipliers are the eigenvalues of the stride map's Jacobian on the
	// section.
	Multipliers []complex128
}

// Stable reports whether every multiplier lies inside the unit circle.
func (lc *LimitCycle) Stable() bool {
	for _, m := range lc.Multipliers {
		if cmplx.Abs(m) >= 1 {
			return false
		}
	}
	return len(lc.Multipliers) > 0
}

// strideMap integrates one step from a post-strike state. The section
// theta_sw = 2*theta_st leaves three free coordinates:
// (theta_st, dtheta_st, dtheta_sw).
type strideMap struct {
	params walker.Params
	opts   LimitCycleOptions
}

func section(z []float64) dynamo.State {
	return dynamo.State{z[0], z[1], 2 * z[0], z[2]}
}

func project(x dynamo.State) []float64 {
	return []float64{x[walker.StanceAngle], x[walker.StanceRate], x[walker.SwingRate]}
}

func (s *strideMap) apply(ctx context.Context, z []float64) ([]float64, float64, error) {
	d := sim.New(walker.NewModel(s.params, nil), s.opts.Integrator(), s.opts.Guard)
	res, err := d.Run(ctx, section(z), sim.Config{
		Dt:         s.opts.Dt,
		MaxT:       s.opts.MaxT,
		Downsample: math.MaxInt32,
		StopAfter:  1,
	})
	if err != nil {
		return nil, 0, err
	}
	if res.Outcome != sim.StrikeLimit {
		return nil, 0, fmt.Errorf("%w: outcome %s from %v", ErrNoStrike, res.Outcome, z)
	}
	ev := res.Strikes[0]
	return project(ev.PostImpact), ev.Duration, nil
}

// jacobian is the forward-difference Jacobian of the stride map at z.
func (s *strideMap) jacobian(ctx context.Context, z, fz []float64) (*mat.Dense, error) {
	n := len(z)
	jac := mat.NewDense(n, n, nil)
	zp := append([]float64(nil), z...)
	for j := 0; j < n; j++ {
		h := s.opts.FDStep
		zp[j] = z[j] + h
		fp, _, err := s.apply(ctx, zp)
		if err != nil {
			return nil, err
		}
		zp[j] = z[j]
		for i := 0; i < n; i++ {
			jac.Set(i, j, (fp[i]-fz[i])/h)
		}
	}
	return jac, nil
}

// FindLimitCycle searches for a periodic gait by Newton iteration on the
// stride map, starting from the post-strike state guess.
func FindLimitCycle(ctx context.Context, p walker.Params, guess dynamo.State, opts LimitCycleOptions) (*LimitCycle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(guess) != walker.StateDim {
		return nil, fmt.Errorf("%w: guess has %d components", dynamo.ErrDimensionMismatch, len(guess))
	}
	defaults := DefaultLimitCycleOptions()
	if opts.Integrator == nil {
		opts.Integrator = defaults.Integrator
	}
	if opts.Guard == (walker.Guard{}) {
		opts.Guard = defaults.Guard
	}

	sm := &strideMap{params: p, opts: opts}
	z := project(guess)
	eye := mat.NewDiagDense(3, []float64{1, 1, 1})

	for iter := 1; iter <= opts.MaxIter; iter++ {
		fz, period, err := sm.apply(ctx, z)
		if err != nil {
			return nil, err
		}
		f := mat.NewVecDense(3, []float64{fz[0] - z[0], fz[1] - z[1], fz[2] - z[2]})
		residual := mat.Norm(f, math.Inf(1))

		jac, err := sm.jacobian(ctx, z, fz)
		if err != nil {
			return nil, err
		}

		if residual < opts.Tol {
			return &LimitCycle{
				X0:          section(z),
				Period:      period,
				Residual:    residual,
				Iterations:  iter,
				Multipliers: multipliers(jac),
			}, nil
		}

		// solve (DS - I) dz = -F
		var sys mat.Dense
		sys.Sub(jac, eye)
		var dz mat.VecDense
		if err := dz.SolveVec(&sys, f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoLimitCycle, err)
		}

		// damp long steps so the walker does not leave the basin
		scale := 1.0
		if step := mat.Norm(&dz, math.Inf(1)); step > 0.05 {
			scale = 0.05 / step
		}
		for i := range z {
			z[i] -= scale * dz.AtVec(i)
		}
	}

	return nil, fmt.Errorf("%w after %d iterations", ErrNoLimitCycle, opts.MaxIter)
}

func multipliers(jac *mat.Dense) []complex128 {
	var eig mat.Eigen
	if ok := eig.Factorize(jac, mat.EigenNone); !ok {
		return nil
	}
	return eig.Values(nil)
}
