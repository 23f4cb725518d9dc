package automation

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/experiment"
	"github.com/san-kum/walksim/internal/sim"
)

// Sweep varies one physical parameter over an evenly spaced range.
type Sweep struct {
	Base    *config.Config
	Param   string
	Min     float64
	Max     float64
	Points  int
	Workers int
	// Transient strikes are dropped before steady-state periods are
	// collected.
	Transient int
	// PeriodTol merges steady-state periods closer than this.
	PeriodTol float64
}

type SweepPoint struct {
	Value   float64
	Outcome sim.Outcome
	Strikes int
	// Periods are the distinct steady-state step periods: one for a
	// period-one gait, two after a period doubling, many for chaos.
	Periods    []float64
	StepLength float64
	Err        string
}

// Values are the evenly spaced parameter values of the sweep, Min and Max
// included.
func (s *Sweep) Values() []float64 {
	if s.Points == 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Points-1)
	values := make([]float64, s.Points)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

func (s *Sweep) validate() error {
	if s.Base == nil {
		return fmt.Errorf("sweep needs a base config")
	}
	if s.Points < 1 {
		return fmt.Errorf("sweep needs at least one point, got %d", s.Points)
	}
	if _, err := s.Base.WithParam(s.Param, s.Min); err != nil {
		return err
	}
	return nil
}

// RunSweep runs every point concurrently on its own driver. A point whose
// integrator fails is reported in its Err field; only setup errors and
// cancellation abort the sweep.
func RunSweep(ctx context.Context, sweep *Sweep, log *zap.Logger) ([]SweepPoint, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := sweep.validate(); err != nil {
		return nil, err
	}

	workers := sweep.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	tol := sweep.PeriodTol
	if tol <= 0 {
		tol = 1e-3
	}

	values := sweep.Values()
	points := make([]SweepPoint, len(values))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range values {
		g.Go(func() error {
			cfg, err := sweep.Base.WithParam(sweep.Param, v)
			if err != nil {
				return err
			}
			exp, err := experiment.Build(cfg)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
			}

			res, err := exp.Run(gctx)
			point := SweepPoint{Value: v}
			if res != nil {
				point.Outcome = res.Outcome
				point.Strikes = len(res.Strikes)
				point.StepLength = res.Metrics["step_length"]
				point.Periods = DistinctPeriods(durations(res.Strikes), sweep.Transient, tol)
			}
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				point.Err = err.Error()
			}
			points[i] = point

			log.Debug("sweep point", zap.String("param", sweep.Param), zap.Float64("value", v),
				zap.Stringer("outcome", point.Outcome), zap.Float64s("periods", point.Periods))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func durations(strikes []sim.StrikeEvent) []float64 {
	out := make([]float64, len(strikes))
	for i, ev := range strikes {
		out[i] = ev.Duration
	}
	return out
}

// DistinctPeriods drops the first transient values and merges the rest
// into clusters no wider than tol, returning the sorted cluster means.
func DistinctPeriods(periods []float64, transient int, tol float64) []float64 {
	if transient >= len(periods) {
		return nil
	}
	tail := append([]float64(nil), periods[transient:]...)
	sort.Float64s(tail)

	var out []float64
	start := 0
	for i := 1; i <= len(tail); i++ {
		if i < len(tail) && tail[i]-tail[start] <= tol {
			continue
		}
		sum := 0.0
		for _, p := range tail[start:i] {
			sum += p
		}
		out = append(out, sum/float64(i-start))
		start = i
	}
	return out
}

// MaxBranches is the largest number of distinct periods across points.
func MaxBranches(points []SweepPoint) int {
	n := 0
	for _, p := range points {
		n = max(n, len(p.Periods))
	}
	return n
}
