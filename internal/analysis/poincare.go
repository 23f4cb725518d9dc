package analysis

import (
	"github.com/san-kum/walksim/internal/sim"
)

// ReturnMap pairs one post-strike state component with its value at the
// next strike. A period-one gait collapses to a single point on the
// diagonal.
func ReturnMap(strikes []sim.StrikeEvent, idx int) *PhasePortrait2D {
	section := &PhasePortrait2D{
		XIndex: idx,
		YIndex: idx,
		Points: make([]struct{ X, Y float64 }, 0, len(strikes)),
	}
	for i := 1; i < len(strikes); i++ {
		prev, next := strikes[i-1].PostImpact, strikes[i].PostImpact
		if idx >= len(prev) || idx >= len(next) {
			return nil
		}
		section.Points = append(section.Points, struct{ X, Y float64 }{X: prev[idx], Y: next[idx]})
	}
	return section
}

// PeriodicityResidual is the largest change of the post-strike state
// between consecutive strikes after skipping transient strikes. It is
// zero on an exact period-one gait. ok is false with fewer than two
// strikes left to compare.
func PeriodicityResidual(strikes []sim.StrikeEvent, transient int) (residual float64, ok bool) {
	if transient < 0 {
		transient = 0
	}
	if len(strikes)-transient < 2 {
		return 0, false
	}
	for i := transient + 1; i < len(strikes); i++ {
		residual = max(residual, strikes[i].PostImpact.MaxAbsDiff(strikes[i-1].PostImpact))
	}
	return residual, true
}
