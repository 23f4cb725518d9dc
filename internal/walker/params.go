package walker

import (
	"fmt"
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
)

// Params holds the walker's physical constants. It is a value type; use
// With to derive a modified copy.
type Params struct {
	Alpha   float64 // slope angle [rad]
	MHip    float64 // hip mass [kg]
	MSwing  float64 // swing leg (foot) mass [kg]
	Length  float64 // leg length [m]
	Gravity float64 // [m/s^2]
}

func DefaultParams() Params {
	return Params{
		Alpha:   -0.0005 * math.Pi,
		MHip:    1.0,
		MSwing:  0.050,
		Length:  0.50,
		Gravity: 9.8,
	}
}

// Beta is the swing-to-hip mass ratio.
func (p Params) Beta() float64 { return p.MSwing / p.MHip }

// Gamma is g/l, the squared natural frequency of the legs.
func (p Params) Gamma() float64 { return p.Gravity / p.Length }

func (p Params) Validate() error {
	for name, v := range p.GetParams() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", dynamo.ErrParameterBounds, name)
		}
	}
	switch {
	case p.MHip <= 0:
		return fmt.Errorf("%w: m_hip must be positive, got %g", dynamo.ErrParameterBounds, p.MHip)
	case p.MSwing <= 0:
		// a massless swing leg makes the mass matrix singular
		return fmt.Errorf("%w: m_sw must be positive, got %g", dynamo.ErrParameterBounds, p.MSwing)
	case p.Length <= 0:
		return fmt.Errorf("%w: l must be positive, got %g", dynamo.ErrParameterBounds, p.Length)
	case p.Gravity <= 0:
		return fmt.Errorf("%w: g must be positive, got %g", dynamo.ErrParameterBounds, p.Gravity)
	case math.Abs(p.Alpha) >= math.Pi/4:
		return fmt.Errorf("%w: |alpha| must be below pi/4, got %g", dynamo.ErrParameterBounds, p.Alpha)
	}
	return nil
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha": p.Alpha,
		"m_hip": p.MHip,
		"m_sw":  p.MSwing,
		"l":     p.Length,
		"g":     p.Gravity,
	}
}

// With returns a copy of p with one named parameter replaced.
func (p Params) With(name string, value float64) (Params, error) {
	switch name {
	case "alpha":
		p.Alpha = value
	case "m_hip":
		p.MHip = value
	case "m_sw":
		p.MSwing = value
	case "l":
		p.Length = value
	case "g":
		p.Gravity = value
	default:
		return p, fmt.Errorf("unknown param: %s", name)
	}
	return p, nil
}
