// Package analysis provides gait analysis tools for recorded and simulated
// walker runs:
//
//   - [DominantFrequency] and [PowerSpectrum]: spectral content of a state series
//   - [ReturnMap] and [PeriodicityResidual]: strike-to-strike behaviour
//   - [FindLimitCycle]: Newton search for a periodic gait on the stride map
//   - [PhasePortraitToASCII] and [BifurcationToASCII]: terminal plots
//
// # Limit cycles
//
// A periodic gait is a fixed point of the stride map, which sends one
// post-strike state to the next. Its stability follows from the
// multipliers of the map's Jacobian:
//
//	lc, err := analysis.FindLimitCycle(ctx, params, guess, analysis.DefaultLimitCycleOptions())
//	if err == nil && lc.Stable() {
//	    // lc.X0 starts a walking gait
//	}
package analysis
