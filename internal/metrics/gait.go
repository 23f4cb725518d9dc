package metrics

import (
	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/sim"
)

// StepPeriod is the mean time between strikes.
type StepPeriod struct {
	total   float64
	strikes int
}

func NewStepPeriod() *StepPeriod { return &StepPeriod{} }

func (s *StepPeriod) Name() string { return "step_period" }

func (s *StepPeriod) Observe(x dynamo.State, t float64) {}

func (s *StepPeriod) OnStrike(ev sim.StrikeEvent) {
	s.total += ev.Duration
	s.strikes++
}

func (s *StepPeriod) Value() float64 {
	if s.strikes == 0 {
		return 0
	}
	return s.total / float64(s.strikes)
}

func (s *StepPeriod) Reset() {
	s.total = 0
	s.strikes = 0
}

// StepLength is the mean horizontal distance the stance foot moves per
// strike.
type StepLength struct {
	last    float64
	strikes int
}

func NewStepLength() *StepLength { return &StepLength{} }

func (s *StepLength) Name() string { return "step_length" }

func (s *StepLength) Observe(x dynamo.State, t float64) {}

func (s *StepLength) OnStrike(ev sim.StrikeEvent) {
	s.last = ev.Foot.X
	s.strikes++
}

func (s *StepLength) Value() float64 {
	if s.strikes == 0 {
		return 0
	}
	return s.last / float64(s.strikes)
}

func (s *StepLength) Reset() {
	s.last = 0
	s.strikes = 0
}

// Speed is the mean forward speed of the stance foot up to the last
// strike.
type Speed struct {
	distance float64
	elapsed  float64
}

func NewSpeed() *Speed { return &Speed{} }

func (s *Speed) Name() string { return "speed" }

func (s *Speed) Observe(x dynamo.State, t float64) {}

func (s *Speed) OnStrike(ev sim.StrikeEvent) {
	s.distance = ev.Foot.X
	s.elapsed = ev.Time
}

func (s *Speed) Value() float64 {
	if s.elapsed <= 0 {
		return 0
	}
	return s.distance / s.elapsed
}

func (s *Speed) Reset() {
	s.distance = 0
	s.elapsed = 0
}
