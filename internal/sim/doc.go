// Package sim drives the hybrid walker simulation.
//
// A [Driver] alternates between three phases: integrating the continuous
// dynamics one fixed step at a time, transitioning through the reset map
// when the swing foot strikes, and stopping when the walker falls or the
// time limit is reached. Time is always k*dt for a global step counter k,
// so it increases strictly across resets.
//
//	d := sim.New(model, integrators.NewBDF(), walker.DefaultGuard())
//	res, err := d.Run(ctx, walker.DefaultInitialState(), sim.DefaultConfig())
//
// [Driver.Stream] produces the same samples lazily as an iter.Seq.
package sim
