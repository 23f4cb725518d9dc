// Package control provides policies for the walker's hip actuator.
//
// A policy implements [dynamo.Controller]; the first component of its
// output is the hip torque, applied with equal and opposite sign to the
// two legs. The walker is passive by default:
//
//   - [None]: zero input
//   - [Constant]: a fixed input, mostly useful for tests and sweeps
//
// # Usage
//
//	model := walker.NewModel(walker.DefaultParams(), control.NewNone(1))
//
// The policy is consulted at every derivative evaluation, including the
// inner iterations of implicit integrators, so it must be a pure function
// of state and time.
package control
