package sim_test

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/integrators"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

func (c *countingMetric) OnStrike(ev sim.StrikeEvent) { c.strikes++ }

func referenceDriver() *sim.Driver {
	model := walker.NewModel(walker.DefaultParams(), nil)
	return sim.New(model, integrators.NewBDF(), walker.DefaultGuard())
}

func fullConfig(maxT float64) sim.Config {
	cfg := sim.DefaultConfig()
	cfg.MaxT = maxT
	cfg.Downsample = 1
	return cfg
}

var _ = Describe("Driver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("the reference gait", Ordered, func() {
		var res *sim.Result

		BeforeAll(func() {
			if testing.Short() {
				Skip("ten second reference run")
			}
			var err error
			res, err = referenceDriver().Run(context.Background(), walker.DefaultInitialState(), fullConfig(10))
			Expect(err).NotTo(HaveOccurred())
		})

		It("walks for the whole run", func() {
			Expect(res.Outcome).To(Equal(sim.TimedOut))
			Expect(res.StepsTaken).To(Equal(99999))
			Expect(res.Times[res.Len()-1]).To(BeNumerically("~", 9.9999, 1e-9))
		})

		It("finds foot strikes with a plausible period", func() {
			Expect(len(res.Strikes)).To(BeNumerically(">=", 5))
			for _, ev := range res.Strikes[1:] {
				Expect(ev.Duration).To(BeNumerically(">", 0.3))
				Expect(ev.Duration).To(BeNumerically("<", 1.5))
			}
		})

		It("returns to nearly the same post-strike state", func() {
			n := len(res.Strikes)
			a, b := res.Strikes[n-2].PostImpact, res.Strikes[n-1].PostImpact
			Expect(a.MaxAbsDiff(b)).To(BeNumerically("<", 0.05))
			Expect(b[walker.SwingAngle]).To(Equal(2 * b[walker.StanceAngle]))
		})

		It("keeps time strictly increasing across resets", func() {
			for i := 1; i < res.Len(); i++ {
				Expect(res.Times[i]).To(BeNumerically(">", res.Times[i-1]))
			}
		})

		It("never moves the foot backwards", func() {
			for i := 1; i < len(res.Feet); i++ {
				Expect(res.Feet[i].X).To(BeNumerically(">=", res.Feet[i-1].X))
			}
			Expect(res.Feet[len(res.Feet)-1].X).To(BeNumerically(">", 0))
		})

		It("is bit-identical when repeated", func() {
			again, err := referenceDriver().Run(ctx, walker.DefaultInitialState(), fullConfig(10))
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Times).To(Equal(res.Times))
			Expect(again.States).To(Equal(res.States))
			Expect(again.Feet).To(Equal(res.Feet))
			Expect(again.Strikes).To(Equal(res.Strikes))
		})
	})

	Context("on level ground", func() {
		It("ends the same way every time", func() {
			if testing.Short() {
				Skip("long run")
			}
			p := walker.DefaultParams()
			p.Alpha = 0
			cfg := sim.DefaultConfig()
			cfg.MaxT = 5

			var outcomes []sim.Outcome
			var strikes []int
			for i := 0; i < 2; i++ {
				d := sim.New(walker.NewModel(p, nil), integrators.NewBDF(), walker.DefaultGuard())
				res, err := d.Run(ctx, walker.DefaultInitialState(), cfg)
				Expect(err).NotTo(HaveOccurred())
				outcomes = append(outcomes, res.Outcome)
				strikes = append(strikes, len(res.Strikes))
			}
			Expect(outcomes[0]).To(BeElementOf(sim.Fell, sim.TimedOut))
			Expect(outcomes[1]).To(Equal(outcomes[0]))
			Expect(strikes[1]).To(Equal(strikes[0]))
		})
	})

	Context("reusing a driver", func() {
		It("gives the same result on the second run", func() {
			d := referenceDriver()
			cfg := fullConfig(1.2)
			first, err := d.Run(ctx, walker.DefaultInitialState(), cfg)
			Expect(err).NotTo(HaveOccurred())
			second, err := d.Run(ctx, walker.DefaultInitialState(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.States).To(Equal(first.States))
			Expect(second.Strikes).To(Equal(first.Strikes))
		})
	})

	Context("with a scripted strike", func() {
		var (
			integ  *scriptedIntegrator
			d      *sim.Driver
			strike dynamo.State
			params walker.Params
		)

		BeforeEach(func() {
			params = walker.DefaultParams()
			strike = dynamo.State{0.1, 0.5, 0.195, 0.0}
			integ = &scriptedIntegrator{script: []dynamo.State{strike}}
			d = sim.New(walker.NewModel(params, nil), integ, walker.DefaultGuard())
		})

		It("applies the reset map and reseeds the integrator", func() {
			res, err := d.Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 0.01, MaxT: 0.04, Downsample: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Strikes).To(HaveLen(1))

			Expect(integ.inputs[1]).To(Equal(walker.Reset(strike, params)))
			Expect(integ.resets).To(Equal(2))

			ev := res.Strikes[0]
			Expect(ev.Index).To(Equal(1))
			Expect(ev.Step).To(Equal(1))
			Expect(ev.Duration).To(Equal(0.01))
			Expect(ev.PreImpact).To(Equal(strike))
		})

		It("moves the foot from the sample after the strike", func() {
			res, err := d.Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 0.01, MaxT: 0.04, Downsample: 1})
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Times).To(HaveLen(4))
			for k, tm := range res.Times {
				Expect(tm).To(Equal(float64(k) * 0.01))
			}
			Expect(res.States[1]).To(Equal(strike))
			Expect(res.Feet[0]).To(Equal(walker.Point{}))
			Expect(res.Feet[1]).To(Equal(walker.Point{}))
			Expect(res.Feet[2]).To(Equal(walker.StrideVector(strike, params)))
			Expect(res.Strikes[0].Foot).To(Equal(res.Feet[2]))
		})

		It("notifies observers and strike-aware metrics", func() {
			var seen []sim.StrikeEvent
			d.AddObserver(sim.StrikeObserverFunc(func(ev sim.StrikeEvent) {
				seen = append(seen, ev)
			}))
			m := &countingMetric{}
			d.AddMetric(m)

			res, err := d.Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 0.01, MaxT: 0.04, Downsample: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal(res.Strikes))
			Expect(m.strikes).To(Equal(1))
			Expect(m.observed).To(Equal(res.StepsTaken))
			Expect(res.Metrics).To(HaveKeyWithValue("counting", float64(res.StepsTaken)))
		})

		It("stops after the requested number of strikes", func() {
			res, err := d.Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 0.01, MaxT: 1, Downsample: 1, StopAfter: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(sim.StrikeLimit))
			Expect(res.StepsTaken).To(Equal(1))
			Expect(res.Len()).To(Equal(2))
		})
	})

	Context("when a fall and a strike coincide", func() {
		It("reports the fall without resetting", func() {
			// fallen past horizontal and geometrically striking at once
			both := dynamo.State{3.0, 0, 5.995, 0}
			params := walker.DefaultParams()
			Expect(walker.Fallen(both, params)).To(BeTrue())
			Expect(walker.DefaultGuard().Strike(both)).To(BeTrue())

			integ := &scriptedIntegrator{script: []dynamo.State{both}}
			d := sim.New(walker.NewModel(params, nil), integ, walker.DefaultGuard())
			res, err := d.Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 0.01, MaxT: 1, Downsample: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(sim.Fell))
			Expect(res.Strikes).To(BeEmpty())
			Expect(res.States[res.Len()-1]).To(Equal(both))
		})
	})

	Context("when the integrator fails", func() {
		It("returns the partial trajectory and a simulation error", func() {
			boom := errors.New("boom")
			integ := &scriptedIntegrator{err: boom, failAt: 4}
			d := sim.New(walker.NewModel(walker.DefaultParams(), nil), integ, walker.DefaultGuard())

			res, err := d.Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 0.01, MaxT: 1, Downsample: 1})
			Expect(err).To(MatchError(boom))
			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(4))
			Expect(simErr.Time).To(BeNumerically("~", 0.03, 1e-12))

			Expect(res.Outcome).To(Equal(sim.IntegratorFailed))
			Expect(res.StepsTaken).To(Equal(3))
			Expect(res.Len()).To(Equal(4))
		})

		It("treats a non-finite state as divergence", func() {
			integ := &scriptedIntegrator{script: []dynamo.State{{math.NaN(), 0, 0, 0}}}
			d := sim.New(walker.NewModel(walker.DefaultParams(), nil), integ, walker.DefaultGuard())

			res, err := d.Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 0.01, MaxT: 1})
			Expect(err).To(MatchError(dynamo.ErrNumericalDivergence))
			Expect(res.Outcome).To(Equal(sim.IntegratorFailed))
		})

		It("surfaces a singular mass matrix", func() {
			p := walker.DefaultParams()
			p.MSwing = 0
			d := sim.New(walker.NewModel(p, nil), integrators.NewBDF(), walker.DefaultGuard())

			res, err := d.Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 1e-3, MaxT: 1})
			Expect(err).To(MatchError(dynamo.ErrSingularMassMatrix))
			Expect(res.Outcome).To(Equal(sim.IntegratorFailed))
			Expect(res.Len()).To(Equal(1))
		})
	})

	Context("cancellation", func() {
		It("stops before the first step when already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			res, err := referenceDriver().Run(cctx, walker.DefaultInitialState(), sim.DefaultConfig())
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Outcome).To(Equal(sim.Canceled))
			Expect(res.StepsTaken).To(BeZero())
			Expect(res.Len()).To(Equal(1))
		})

		It("stops at the next step after cancel", func() {
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()

			integ := &scriptedIntegrator{script: []dynamo.State{{0.1, 0.5, 0.195, 0.0}}}
			d := sim.New(walker.NewModel(walker.DefaultParams(), nil), integ, walker.DefaultGuard())
			d.AddObserver(sim.StrikeObserverFunc(func(sim.StrikeEvent) { cancel() }))

			res, err := d.Run(cctx, walker.DefaultInitialState(), sim.Config{Dt: 0.01, MaxT: 1, Downsample: 1})
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Outcome).To(Equal(sim.Canceled))
			Expect(res.StepsTaken).To(Equal(1))
			Expect(res.Strikes).To(HaveLen(1))
		})
	})

	Context("downsampling", func() {
		It("keeps the grid and the final sample", func() {
			cfg := sim.Config{Dt: 1e-3, MaxT: 1, Downsample: 10}
			res, err := referenceDriver().Run(ctx, walker.DefaultInitialState(), cfg)
			Expect(err).NotTo(HaveOccurred())

			n := res.Len()
			for i, tm := range res.Times[:n-1] {
				Expect(tm).To(Equal(float64(i*10) * cfg.Dt))
			}
			Expect(res.Times[n-1]).To(Equal(float64(res.StepsTaken) * cfg.Dt))
		})
	})

	Context("input validation", func() {
		It("rejects a bad config", func() {
			_, err := referenceDriver().Run(ctx, walker.DefaultInitialState(), sim.Config{Dt: 0, MaxT: 1})
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("rejects a state of the wrong size", func() {
			_, err := referenceDriver().Run(ctx, dynamo.State{0, 0}, sim.DefaultConfig())
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("rejects a non-finite state", func() {
			_, err := referenceDriver().Run(ctx, dynamo.State{0, math.Inf(1), 0, 0}, sim.DefaultConfig())
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
		})

		It("rejects a bad guard", func() {
			d := sim.New(walker.NewModel(walker.DefaultParams(), nil), integrators.NewBDF(), walker.Guard{MinStance: 0.01, Gap: 0})
			_, err := d.Run(ctx, walker.DefaultInitialState(), sim.DefaultConfig())
			Expect(err).To(HaveOccurred())
		})
	})
})
