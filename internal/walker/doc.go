// Package walker models the compass-gait passive dynamic walker.
//
// The walker is a hybrid system: [Model] implements [dynamo.System] for the
// continuous swing phase, and the discrete pieces act between steps:
//
//   - [Params]: immutable physical constants and derived ratios
//   - [Model]: equations of motion with a pluggable control hook
//   - [Reset]: impact map applied at foot strike
//   - [Guard]: foot-strike detector with tunable tolerance window
//   - [Fallen]: loss of ground contact
//   - [FootTracker]: world position of the stance foot
//
// All angles are measured from the slope normal. The state layout is
// (θ_st, θ̇_st, θ_sw, θ̇_sw), see [StanceAngle] and friends.
package walker
