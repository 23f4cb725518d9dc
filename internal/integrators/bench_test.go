package integrators

import (
	"testing"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/walker"
)

func benchStep(b *testing.B, integ dynamo.Integrator, sys dynamo.System, x dynamo.State, dt float64) {
	b.Helper()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := integ.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			b.Fatal(err)
		}
		x = next
	}
}

func BenchmarkEuler(b *testing.B) {
	benchStep(b, NewEuler(), &simpleDynamics{}, dynamo.State{1.0, 0.0}, 0.01)
}

func BenchmarkRK4(b *testing.B) {
	benchStep(b, NewRK4(), &simpleDynamics{}, dynamo.State{1.0, 0.0}, 0.01)
}

func BenchmarkRK45(b *testing.B) {
	benchStep(b, NewRK45(), &simpleDynamics{}, dynamo.State{1.0, 0.0}, 0.01)
}

func BenchmarkBDF(b *testing.B) {
	benchStep(b, NewBDF(), &simpleDynamics{}, dynamo.State{1.0, 0.0}, 0.01)
}

// The walker benchmarks restart from the same state periodically so the
// trajectory never runs into a fall.
func benchWalker(b *testing.B, integ dynamo.Integrator) {
	model := walker.NewModel(walker.DefaultParams(), nil)
	x0 := walker.DefaultInitialState()
	x := x0.Clone()
	const dt = 1e-4

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%2000 == 0 {
			x = x0.Clone()
		}
		next, err := integ.Step(model, x, float64(i%2000)*dt, dt)
		if err != nil {
			b.Fatal(err)
		}
		x = next
	}
}

func BenchmarkBDF_Walker(b *testing.B) {
	benchWalker(b, NewBDF())
}

func BenchmarkRK4_Walker(b *testing.B) {
	benchWalker(b, NewRK4())
}
