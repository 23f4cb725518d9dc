// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types shared by the
// walker model, the integrators and the hybrid driver:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface; steps report failure
//   - [Multistep]: steppers that carry history and must be re-seeded
//   - [Controller]: pluggable control policy evaluated by a System
//   - [Metric]: per-sample observation accumulated over a run
//
// Failures are reported through the sentinel errors in this package,
// usually wrapped in a [SimulationError] that records where they happened:
//
//	if errors.Is(err, dynamo.ErrSingularMassMatrix) {
//	    // unphysical parameters or state
//	}
package dynamo
