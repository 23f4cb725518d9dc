package sim

import (
	"context"
	"iter"

	"github.com/san-kum/walksim/internal/dynamo"
)

// Stream is a lazily evaluated run. Samples are produced as the consumer
// ranges over All; the simulation advances only while the consumer reads.
// A Stream is finite and cannot be restarted: ranging over All a second
// time yields nothing.
type Stream struct {
	d   *Driver
	ctx context.Context
	x0  dynamo.State
	cfg Config

	used    bool
	outcome Outcome
	err     error
	strikes []StrikeEvent
	steps   int
}

// Stream prepares a lazy run from x0. Validation errors surface through
// Err and leave All empty.
func (d *Driver) Stream(ctx context.Context, x0 dynamo.State, cfg Config) *Stream {
	s := &Stream{d: d, ctx: ctx, x0: x0.Clone(), cfg: cfg}
	if err := d.validate(x0, cfg); err != nil {
		s.used = true
		s.err = err
	}
	return s
}

func (s *Stream) All() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		if s.used {
			return
		}
		s.used = true

		r := s.d.newRun(s.x0, s.cfg, yield)
		s.err = r.loop(s.ctx)
		s.outcome = r.outcome
		s.strikes = r.strikes
		s.steps = r.k
	}
}

// Outcome is Incomplete until the stream has been fully consumed.
func (s *Stream) Outcome() Outcome { return s.outcome }

func (s *Stream) Err() error { return s.err }

func (s *Stream) Strikes() []StrikeEvent { return s.strikes }

func (s *Stream) StepsTaken() int { return s.steps }

// Metrics reads the driver's metrics; meaningful once the stream is done.
func (s *Stream) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.d.metrics))
	for _, m := range s.d.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
