package control

import "github.com/san-kum/walksim/internal/dynamo"

// None applies no input. It is the policy of the passive walker.
type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{
		dim: dim,
	}
}

func (n *None) Compute(x dynamo.State, t float64) dynamo.Control {
	return make(dynamo.Control, n.dim)
}

// Constant applies the same input at every instant. With a hip torque it
// gives a crude powered walker that can go on level ground.
type Constant struct {
	u dynamo.Control
}

func NewConstant(u ...float64) *Constant {
	return &Constant{u: append(dynamo.Control(nil), u...)}
}

func (c *Constant) Compute(x dynamo.State, t float64) dynamo.Control {
	out := make(dynamo.Control, len(c.u))
	copy(out, c.u)
	return out
}
