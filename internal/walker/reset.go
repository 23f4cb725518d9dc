package walker

import (
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
)

// Reset maps the pre-impact state to the post-impact state. The legs swap
// roles and angular momentum about the impact point is conserved.
func Reset(x dynamo.State, p Params) dynamo.State {
	beta := p.Beta()
	sinSw, cosSw := math.Sincos(x[SwingAngle])
	den := 1 + beta*sinSw*sinSw

	return dynamo.State{
		-x[StanceAngle],
		cosSw / den * x[StanceRate],
		-2 * x[StanceAngle],
		cosSw * (1 - cosSw) / den * x[StanceRate],
	}
}
