package automation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/experiment"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

// MonteCarlo estimates the basin of attraction of a gait by perturbing
// the post-strike initial state.
type MonteCarlo struct {
	Base *config.Config
	// Perturbation is the half-width of the uniform noise added to the
	// stance angle and both rates.
	Perturbation float64
	Trials       int
	Workers      int
	// Seed 0 seeds from the clock.
	Seed int64
	// MinStrikes a trial must reach to count as walking.
	MinStrikes int
}

type MonteCarloTrial struct {
	ID      int
	X0      dynamo.State
	Outcome sim.Outcome
	Strikes int
	Walking bool
}

type MonteCarloSummary struct {
	Trials  []MonteCarloTrial
	Walking int
	Fell    int
	Failed  int
}

// WalkingFraction is the share of trials that kept walking.
func (s *MonteCarloSummary) WalkingFraction() float64 {
	if len(s.Trials) == 0 {
		return 0
	}
	return float64(s.Walking) / float64(len(s.Trials))
}

// perturbations draws every trial's initial state up front so results do
// not depend on scheduling.
func (mc *MonteCarlo) perturbations() []dynamo.State {
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	base := mc.Base.InitState()
	out := make([]dynamo.State, mc.Trials)
	for i := range out {
		x := base.Clone()
		x[walker.StanceAngle] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		x[walker.StanceRate] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		x[walker.SwingRate] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		// stay on the post-strike section
		x[walker.SwingAngle] = 2 * x[walker.StanceAngle]
		out[i] = x
	}
	return out
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarlo, log *zap.Logger) (*MonteCarloSummary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if mc.Base == nil || mc.Trials < 1 {
		return nil, fmt.Errorf("monte carlo needs a base config and at least one trial")
	}
	if err := mc.Base.Validate(); err != nil {
		return nil, err
	}

	workers := mc.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	starts := mc.perturbations()
	trials := make([]MonteCarloTrial, len(starts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, x0 := range starts {
		g.Go(func() error {
			cfg := mc.Base.Clone()
			cfg.X0 = x0
			exp, err := experiment.Build(cfg)
			if err != nil {
				return err
			}

			res, err := exp.Run(gctx)
			if res == nil || (err != nil && gctx.Err() != nil) {
				return err
			}
			trial := MonteCarloTrial{ID: i, X0: x0, Outcome: res.Outcome, Strikes: len(res.Strikes)}
			trial.Walking = res.Outcome.Walking() && trial.Strikes >= mc.MinStrikes
			trials[i] = trial

			if (i+1)%10 == 0 {
				log.Debug("monte carlo progress", zap.Int("trial", i+1), zap.Int("of", mc.Trials))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &MonteCarloSummary{Trials: trials}
	for _, t := range trials {
		switch {
		case t.Walking:
			summary.Walking++
		case t.Outcome == sim.Fell:
			summary.Fell++
		case t.Outcome == sim.IntegratorFailed:
			summary.Failed++
		}
	}
	return summary, nil
}
