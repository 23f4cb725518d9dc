package walker

import (
	"fmt"
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
)

// SingularThreshold is the smallest |det| accepted by Mat2.Inverse.
const SingularThreshold = 1e-12

// Mat2 is the 2x2 matrix [[A, B], [C, D]].
type Mat2 struct {
	A, B, C, D float64
}

func (m Mat2) Det() float64 {
	return m.A*m.D - m.B*m.C
}

func (m Mat2) Inverse() (Mat2, error) {
	det := m.Det()
	if math.Abs(det) < SingularThreshold || math.IsNaN(det) {
		return Mat2{}, fmt.Errorf("%w: det=%g", dynamo.ErrSingularMassMatrix, det)
	}
	inv := 1.0 / det
	return Mat2{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
	}, nil
}

func (m Mat2) MulVec(x, y float64) (float64, float64) {
	return m.A*x + m.B*y, m.C*x + m.D*y
}

// MassMatrix returns the walker's mass matrix normalised by m_hip*l^2.
func MassMatrix(thetaSw, beta float64) Mat2 {
	k := 1 - math.Cos(thetaSw)
	return Mat2{
		A: 1 + 2*beta*k,
		B: -beta * k,
		C: -beta * k,
		D: beta,
	}
}
