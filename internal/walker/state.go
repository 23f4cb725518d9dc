package walker

import "github.com/san-kum/walksim/internal/dynamo"

// Indices into a walker state vector.
const (
	StanceAngle = iota
	StanceRate
	SwingAngle
	SwingRate

	StateDim
)

// DefaultInitialState is a post-strike state on the periodic gait of
// DefaultParams. It is not periodic for other masses or slopes.
func DefaultInitialState() dynamo.State {
	return dynamo.State{-0.10791001, 0.52174036, -0.21582003, 0.01216315}
}
