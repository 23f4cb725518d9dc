package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

var _ = Describe("Stream", func() {
	cfg := sim.Config{Dt: 1e-3, MaxT: 1.5, Downsample: 5}

	It("yields the same samples as Run", func() {
		ctx := context.Background()
		want, err := referenceDriver().Run(ctx, walker.DefaultInitialState(), cfg)
		Expect(err).NotTo(HaveOccurred())

		s := referenceDriver().Stream(ctx, walker.DefaultInitialState(), cfg)
		var times []float64
		var states []dynamo.State
		var feet []walker.Point
		for sample := range s.All() {
			times = append(times, sample.Time)
			states = append(states, sample.State)
			feet = append(feet, sample.Foot)
		}

		Expect(s.Err()).NotTo(HaveOccurred())
		Expect(s.Outcome()).To(Equal(want.Outcome))
		Expect(s.Strikes()).To(Equal(want.Strikes))
		Expect(s.StepsTaken()).To(Equal(want.StepsTaken))
		Expect(times).To(Equal(want.Times))
		Expect(states).To(Equal(want.States))
		Expect(feet).To(Equal(want.Feet))
	})

	It("cannot be ranged over twice", func() {
		s := referenceDriver().Stream(context.Background(), walker.DefaultInitialState(), cfg)
		first := 0
		for range s.All() {
			first++
		}
		Expect(first).To(BeNumerically(">", 1))

		second := 0
		for range s.All() {
			second++
		}
		Expect(second).To(BeZero())
	})

	It("stops when the consumer does", func() {
		s := referenceDriver().Stream(context.Background(), walker.DefaultInitialState(), cfg)
		var last sim.Sample
		n := 0
		for sample := range s.All() {
			last = sample
			n++
			if n == 3 {
				break
			}
		}
		Expect(last.Step).To(Equal(10))
		Expect(s.Outcome()).To(Equal(sim.Incomplete))
		Expect(s.Err()).NotTo(HaveOccurred())
	})

	It("reports validation errors without yielding", func() {
		s := referenceDriver().Stream(context.Background(), dynamo.State{1}, cfg)
		Expect(s.Err()).To(MatchError(dynamo.ErrDimensionMismatch))
		for range s.All() {
			Fail("unexpected sample")
		}
	})
})
