package walker

import (
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
)

// Point is a world-frame position: x horizontal, y vertical.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrideVector is the displacement from the stance foot to the swing foot.
func StrideVector(x dynamo.State, p Params) Point {
	stance := x[StanceAngle] - p.Alpha
	swing := x[StanceAngle] - x[SwingAngle] - p.Alpha
	return Point{
		X: p.Length*math.Sin(stance) - p.Length*math.Sin(swing),
		Y: p.Length*math.Cos(stance) - p.Length*math.Cos(swing),
	}
}

// FootTracker accumulates the world position of the stance foot.
type FootTracker struct {
	params  Params
	pos     Point
	strides int
}

func NewFootTracker(p Params) *FootTracker {
	return &FootTracker{params: p}
}

func (f *FootTracker) Position() Point { return f.pos }

func (f *FootTracker) Strides() int { return f.strides }

// Advance moves the stance foot to where the swing foot lands. x must be
// the pre-impact state.
func (f *FootTracker) Advance(x dynamo.State) Point {
	d := StrideVector(x, f.params)
	f.pos.X += d.X
	f.pos.Y += d.Y
	f.strides++
	return f.pos
}
