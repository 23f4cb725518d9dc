package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/walker"
)

// Outcome classifies how a run ended.
type Outcome int

const (
	// Incomplete means the run has not finished, or its consumer stopped
	// reading a stream early.
	Incomplete Outcome = iota
	Fell
	TimedOut
	IntegratorFailed
	Canceled
	// StrikeLimit means the run stopped after Config.StopAfter strikes.
	StrikeLimit
)

var outcomeNames = map[Outcome]string{
	Incomplete:       "incomplete",
	Fell:             "fell",
	TimedOut:         "timed_out",
	IntegratorFailed: "integrator_failed",
	Canceled:         "canceled",
	StrikeLimit:      "strike_limit",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for o, name := range outcomeNames {
		if name == s {
			return o, nil
		}
	}
	return Incomplete, fmt.Errorf("sim: unknown outcome %q", s)
}

// Walking reports whether the walker was still upright when the run ended.
func (o Outcome) Walking() bool {
	return o == TimedOut || o == StrikeLimit
}

type Config struct {
	Dt   float64
	MaxT float64
	// Downsample keeps every Downsample-th sample. The final sample is
	// always kept. Zero means 1.
	Downsample int
	// StopAfter ends the run after that many strikes. Zero means no limit.
	StopAfter int
}

func DefaultConfig() Config {
	return Config{
		Dt:         1e-4,
		MaxT:       10.0,
		Downsample: 100,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrParameterBounds, c.Dt)
	}
	if !(c.MaxT > 0) || math.IsInf(c.MaxT, 0) {
		return fmt.Errorf("%w: max_t must be positive, got %g", dynamo.ErrParameterBounds, c.MaxT)
	}
	if c.steps() < 1 {
		return fmt.Errorf("%w: max_t %g leaves no room for a step of %g", dynamo.ErrParameterBounds, c.MaxT, c.Dt)
	}
	if c.Downsample < 0 {
		return fmt.Errorf("%w: downsample must not be negative, got %d", dynamo.ErrParameterBounds, c.Downsample)
	}
	if c.StopAfter < 0 {
		return fmt.Errorf("%w: stop_after must not be negative, got %d", dynamo.ErrParameterBounds, c.StopAfter)
	}
	return nil
}

// steps is the number of integration steps a run may take; the last
// sample lands at max_t - dt.
func (c Config) steps() int {
	return int(math.Round(c.MaxT/c.Dt)) - 1
}

func (c Config) every() int {
	if c.Downsample < 1 {
		return 1
	}
	return c.Downsample
}

// Sample is one point of a trajectory. Foot is the stance foot contact
// point in world coordinates.
type Sample struct {
	Step  int
	Time  float64
	State dynamo.State
	Foot  walker.Point
}

// StrikeEvent describes one confirmed foot strike.
type StrikeEvent struct {
	// Index counts strikes from 1.
	Index int
	Step  int
	Time  float64
	// Duration is the time since the previous strike, or since the start
	// of the run for the first one.
	Duration   float64
	PreImpact  dynamo.State
	PostImpact dynamo.State
	// Foot is the new stance foot position.
	Foot walker.Point
}

type StrikeObserver interface {
	OnStrike(ev StrikeEvent)
}

type StrikeObserverFunc func(ev StrikeEvent)

func (f StrikeObserverFunc) OnStrike(ev StrikeEvent) { f(ev) }

type Result struct {
	Times   []float64
	States  []dynamo.State
	Feet    []walker.Point
	Strikes []StrikeEvent
	Outcome Outcome
	Metrics map[string]float64
	// StepsTaken counts integration steps, before downsampling.
	StepsTaken int
}

// Len is the number of recorded samples.
func (r *Result) Len() int { return len(r.Times) }

func (r *Result) append(s Sample) {
	r.Times = append(r.Times, s.Time)
	r.States = append(r.States, s.State)
	r.Feet = append(r.Feet, s.Foot)
}
