package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/walker"
)

type phase int

const (
	integrating phase = iota
	transitioning
	falling
	done
)

// Driver runs the hybrid walker simulation: continuous flow integrated
// step by step, interrupted by foot strikes that apply the reset map, and
// ended by a fall, the time limit, a failure or cancellation.
//
// A Driver holds integrator state and is not safe for concurrent runs.
// Independent runs need independent drivers.
type Driver struct {
	model      *walker.Model
	integrator dynamo.Integrator
	guard      walker.Guard
	metrics    []dynamo.Metric
	observers  []StrikeObserver
}

func New(model *walker.Model, integrator dynamo.Integrator, guard walker.Guard) *Driver {
	return &Driver{
		model:      model,
		integrator: integrator,
		guard:      guard,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]StrikeObserver, 0),
	}
}

func (d *Driver) Model() *walker.Model { return d.model }

// AddMetric registers a metric observed at every step. Metrics that also
// implement StrikeObserver are told about strikes.
func (d *Driver) AddMetric(m dynamo.Metric) { d.metrics = append(d.metrics, m) }

func (d *Driver) AddObserver(o StrikeObserver) { d.observers = append(d.observers, o) }

// Run simulates from x0 and returns the downsampled trajectory. On
// integrator failure or cancellation the partial result is returned
// together with the error.
func (d *Driver) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := d.validate(x0, cfg); err != nil {
		return nil, err
	}

	capacity := cfg.steps()/cfg.every() + 2
	result := &Result{
		Times:   make([]float64, 0, capacity),
		States:  make([]dynamo.State, 0, capacity),
		Feet:    make([]walker.Point, 0, capacity),
		Metrics: make(map[string]float64),
	}

	r := d.newRun(x0, cfg, func(s Sample) bool {
		result.append(s)
		return true
	})
	err := r.loop(ctx)

	result.Outcome = r.outcome
	result.Strikes = r.strikes
	result.StepsTaken = r.k
	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

func (d *Driver) validate(x0 dynamo.State, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := d.guard.Validate(); err != nil {
		return err
	}
	if len(x0) != d.model.StateDim() {
		return fmt.Errorf("%w: initial state has %d components, want %d",
			dynamo.ErrDimensionMismatch, len(x0), d.model.StateDim())
	}
	if !x0.IsValid() {
		return fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidState, x0)
	}
	return nil
}

// run is the mutable state of one simulation.
type run struct {
	d     *Driver
	cfg   Config
	limit int
	every int
	emit  func(Sample) bool

	phase   phase
	outcome Outcome
	k       int
	x       dynamo.State
	last    Sample
	emitted int
	feet    *walker.FootTracker

	lastStrike float64
	strikes    []StrikeEvent
}

func (d *Driver) newRun(x0 dynamo.State, cfg Config, emit func(Sample) bool) *run {
	if ms, ok := d.integrator.(dynamo.Multistep); ok {
		ms.Reset()
	}
	for _, m := range d.metrics {
		m.Reset()
	}
	return &run{
		d:       d,
		cfg:     cfg,
		limit:   cfg.steps(),
		every:   cfg.every(),
		emit:    emit,
		phase:   integrating,
		x:       x0.Clone(),
		emitted: -1,
		feet:    walker.NewFootTracker(d.model.Params()),
	}
}

func (r *run) time() float64 { return float64(r.k) * r.cfg.Dt }

// loop drives the phase machine until a terminal phase. It returns a
// non-nil error only for failures and cancellation.
func (r *run) loop(ctx context.Context) error {
	if !r.record(Sample{Step: 0, Time: 0, State: r.x.Clone(), Foot: r.feet.Position()}) {
		return nil
	}

	for r.phase != done {
		var err error
		switch r.phase {
		case integrating:
			err = r.integrate(ctx)
		case transitioning:
			r.transition()
		case falling:
			r.finish(Fell)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) integrate(ctx context.Context) error {
	if r.k >= r.limit {
		r.finish(TimedOut)
		return nil
	}

	select {
	case <-ctx.Done():
		r.finish(Canceled)
		return fmt.Errorf("sim: canceled at t=%.4f: %w", r.time(), ctx.Err())
	default:
	}

	t := r.time()
	next, err := r.d.integrator.Step(r.d.model, r.x, t, r.cfg.Dt)
	if err == nil && !next.IsValid() {
		err = fmt.Errorf("%w: %w", dynamo.ErrNumericalDivergence, dynamo.ErrInvalidState)
	}
	if err != nil {
		r.finish(IntegratorFailed)
		return &dynamo.SimulationError{Step: r.k + 1, Time: t, State: r.x.Clone(), Wrapped: err}
	}

	r.k++
	r.x = next
	t = r.time()
	for _, m := range r.d.metrics {
		m.Observe(r.x, t)
	}
	if !r.record(Sample{Step: r.k, Time: t, State: r.x.Clone(), Foot: r.feet.Position()}) {
		r.phase = done
		return nil
	}

	switch {
	case walker.Fallen(r.x, r.d.model.Params()):
		r.phase = falling
	case r.d.guard.Strike(r.x):
		r.phase = transitioning
	}
	return nil
}

func (r *run) transition() {
	t := r.time()
	pre := r.x.Clone()
	post := walker.Reset(pre, r.d.model.Params())
	foot := r.feet.Advance(pre)

	ev := StrikeEvent{
		Index:      len(r.strikes) + 1,
		Step:       r.k,
		Time:       t,
		Duration:   t - r.lastStrike,
		PreImpact:  pre,
		PostImpact: post.Clone(),
		Foot:       foot,
	}
	r.strikes = append(r.strikes, ev)
	r.lastStrike = t
	r.x = post

	if ms, ok := r.d.integrator.(dynamo.Multistep); ok {
		ms.Reset()
	}
	for _, m := range r.d.metrics {
		if o, ok := m.(StrikeObserver); ok {
			o.OnStrike(ev)
		}
	}
	for _, o := range r.d.observers {
		o.OnStrike(ev)
	}

	if r.cfg.StopAfter > 0 && len(r.strikes) >= r.cfg.StopAfter {
		r.finish(StrikeLimit)
		return
	}
	r.phase = integrating
}

// record emits s if it falls on the downsampling grid and remembers it
// as the latest sample. It reports whether the consumer wants more.
func (r *run) record(s Sample) bool {
	r.last = s
	if s.Step%r.every != 0 {
		return true
	}
	r.emitted = s.Step
	return r.emit(s)
}

// finish enters the terminal phase, flushing the latest sample if
// downsampling skipped it.
func (r *run) finish(o Outcome) {
	r.outcome = o
	r.phase = done
	if r.emitted != r.last.Step {
		r.emitted = r.last.Step
		r.emit(r.last)
	}
}
