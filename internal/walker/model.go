package walker

import (
	"fmt"
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
)

// Model is the continuous swing-phase dynamics of the compass gait. It is
// safe to share between goroutines as long as its policy is.
type Model struct {
	params Params
	beta   float64
	gamma  float64
	policy dynamo.Controller
}

// NewModel builds the dynamics for p. The policy's first control component
// is applied as a hip torque normalised by m_hip*l^2; a nil policy applies
// no torque.
func NewModel(p Params, policy dynamo.Controller) *Model {
	return &Model{
		params: p,
		beta:   p.Beta(),
		gamma:  p.Gamma(),
		policy: policy,
	}
}

func (m *Model) Params() Params { return m.params }

func (m *Model) StateDim() int {
	return StateDim
}

func (m *Model) ControlDim() int {
	return 1
}

func (m *Model) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if len(x) != StateDim {
		return nil, fmt.Errorf("%w: walker state has %d components, want %d", dynamo.ErrDimensionMismatch, len(x), StateDim)
	}

	thSt, dthSt := x[StanceAngle], x[StanceRate]
	thSw, dthSw := x[SwingAngle], x[SwingRate]
	b, g, alpha := m.beta, m.gamma, m.params.Alpha

	inv, err := MassMatrix(thSw, b).Inverse()
	if err != nil {
		return nil, err
	}

	sinSw := math.Sin(thSw)
	n1 := -b * sinSw * (dthSw*dthSw - 2*dthSt*dthSw)
	n2 := -b * dthSt * dthSt * sinSw

	sinStance := math.Sin(thSt - alpha)
	sinSwing := math.Sin(thSt - thSw - alpha)
	g1 := b*g*(sinSwing-sinStance) - g*sinStance
	g2 := -b * g * sinSwing

	// hip torque acts equally and oppositely on the two legs
	tau := m.torque(x, t)
	ddSt, ddSw := inv.MulVec(-(n1+g1)-tau, -(n2+g2)+tau)

	return dynamo.State{dthSt, ddSt, dthSw, ddSw}, nil
}

func (m *Model) torque(x dynamo.State, t float64) float64 {
	if m.policy == nil {
		return 0
	}
	u := m.policy.Compute(x, t)
	if len(u) == 0 {
		return 0
	}
	return u[0]
}

// Kinetic returns the kinetic energy in joules.
func (m *Model) Kinetic(x dynamo.State) float64 {
	dSt, dSw := x[StanceRate], x[SwingRate]
	rel := dSt - dSw
	ke := 0.5*dSt*dSt + 0.5*m.beta*(dSt*dSt+rel*rel-2*dSt*rel*math.Cos(x[SwingAngle]))
	return m.scale() * ke
}

// Potential returns the gravitational potential energy in joules, measured
// from the stance foot.
func (m *Model) Potential(x dynamo.State) float64 {
	hip := math.Cos(x[StanceAngle] - m.params.Alpha)
	foot := hip - math.Cos(x[StanceAngle]-x[SwingAngle]-m.params.Alpha)
	return m.scale() * m.gamma * (hip + m.beta*foot)
}

func (m *Model) Energy(x dynamo.State) float64 {
	return m.Kinetic(x) + m.Potential(x)
}

func (m *Model) scale() float64 {
	return m.params.MHip * m.params.Length * m.params.Length
}
