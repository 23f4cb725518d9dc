package walker

import (
	"fmt"
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
)

const (
	DefaultMinStance = 0.010
	DefaultStrikeGap = 0.010
)

// Guard detects foot strike on a sampled trajectory. The swing foot is on
// the slope when θ_sw = 2θ_st; Gap is the tolerance window on that
// condition and must be wide enough to contain at least one sample.
type Guard struct {
	MinStance float64 // stance leg must be past vertical by this much
	Gap       float64
}

func DefaultGuard() Guard {
	return Guard{MinStance: DefaultMinStance, Gap: DefaultStrikeGap}
}

func (g Guard) Validate() error {
	if g.MinStance < 0 || math.IsNaN(g.MinStance) {
		return fmt.Errorf("%w: min_stance must be non-negative, got %g", dynamo.ErrParameterBounds, g.MinStance)
	}
	if g.Gap <= 0 || math.IsNaN(g.Gap) {
		return fmt.Errorf("%w: strike gap must be positive, got %g", dynamo.ErrParameterBounds, g.Gap)
	}
	return nil
}

func (g Guard) Strike(x dynamo.State) bool {
	if x[StanceAngle] <= g.MinStance {
		return false
	}
	gap := 2*x[StanceAngle] - x[SwingAngle]
	return gap > 0 && gap < g.Gap
}

// Fallen reports whether the stance leg has rotated past the point where
// it can keep contact with the slope.
func Fallen(x dynamo.State, p Params) bool {
	psi := x[StanceAngle] - p.Alpha
	return math.Tan(p.Alpha)*(p.Length*math.Sin(psi)) > p.Length*math.Cos(psi)
}
