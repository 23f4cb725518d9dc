// Package optim searches walker parameters for the best gait.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/experiment"
)

var ErrNoWalkingGait = errors.New("optim: no parameter combination kept walking")

// GridSearch evaluates every combination of the given parameter values.
// Parameter names are those accepted by config.Config.WithParam.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize looks for the largest metric value instead of the smallest.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Params  map[string]float64
	Value   float64
	Walking bool
}

// Search runs the walker at every grid point and returns the best walking
// candidate by metricName, along with every candidate evaluated. Runs that
// fall or fail are recorded but never chosen.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (*Candidate, []Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	s := &search{grid: g, base: base, metric: metricName, best: math.Inf(1), bestIdx: -1}
	if g.Maximize {
		s.best = math.Inf(-1)
	}
	if err := s.recurse(ctx, 0, map[string]float64{}); err != nil {
		return nil, s.all, err
	}
	if s.bestIdx < 0 {
		return nil, s.all, ErrNoWalkingGait
	}
	best := s.all[s.bestIdx]
	return &best, s.all, nil
}

type search struct {
	grid    *GridSearch
	base    *config.Config
	metric  string
	best    float64
	bestIdx int
	all     []Candidate
}

func (s *search) better(v float64) bool {
	if s.grid.Maximize {
		return v > s.best
	}
	return v < s.best
}

func (s *search) evaluate(ctx context.Context, current map[string]float64) error {
	cfg := s.base
	for name, v := range current {
		var err error
		if cfg, err = cfg.WithParam(name, v); err != nil {
			return err
		}
	}

	params := make(map[string]float64, len(current))
	for k, v := range current {
		params[k] = v
	}
	cand := Candidate{Params: params, Value: math.NaN()}

	exp, err := experiment.Build(cfg)
	if err != nil {
		// out-of-bounds combinations are skipped, not fatal
		s.all = append(s.all, cand)
		return nil
	}
	result, err := exp.Run(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == nil && result != nil {
		cand.Walking = result.Outcome.Walking() && len(result.Strikes) > 0
		if v, ok := result.Metrics[s.metric]; ok {
			cand.Value = v
		}
	}

	s.all = append(s.all, cand)
	if cand.Walking && !math.IsNaN(cand.Value) && s.better(cand.Value) {
		s.best = cand.Value
		s.bestIdx = len(s.all) - 1
	}
	return nil
}

func (s *search) recurse(ctx context.Context, depth int, current map[string]float64) error {
	if depth == len(s.grid.paramNames) {
		return s.evaluate(ctx, current)
	}

	paramName := s.grid.paramNames[depth]
	for _, val := range s.grid.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := s.recurse(ctx, depth+1, newParams); err != nil {
			return err
		}
	}
	return nil
}
