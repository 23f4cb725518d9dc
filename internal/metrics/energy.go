package metrics

import (
	"math"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/sim"
)

// Energy is the mean mechanical energy over the observed samples.
type Energy struct {
	name        string
	sys         dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewEnergy(sys dynamo.Hamiltonian) *Energy {
	return &Energy{
		name: "energy",
		sys:  sys,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, t float64) {
	e.totalEnergy += e.sys.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of mechanical energy within a
// single continuous phase. Energy is only conserved between strikes, so
// the baseline moves to the post-impact energy at every strike.
type EnergyDrift struct {
	name     string
	sys      dynamo.Hamiltonian
	baseline float64
	maxDrift float64
	primed   bool
}

func NewEnergyDrift(sys dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		sys:  sys,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.sys.Energy(x)
	if !e.primed {
		e.baseline = energy
		e.primed = true
		return
	}
	if e.baseline != 0 {
		drift := math.Abs(energy-e.baseline) / math.Abs(e.baseline)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) OnStrike(ev sim.StrikeEvent) {
	e.baseline = e.sys.Energy(ev.PostImpact)
	e.primed = true
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.baseline = 0
	e.maxDrift = 0
	e.primed = false
}

// KineticEnergy is implemented by walker.Model.
type KineticEnergy interface {
	Kinetic(x dynamo.State) float64
}

// EnergyLoss is the mean fraction of kinetic energy lost per impact.
type EnergyLoss struct {
	sys     KineticEnergy
	total   float64
	impacts int
}

func NewEnergyLoss(sys KineticEnergy) *EnergyLoss {
	return &EnergyLoss{sys: sys}
}

func (e *EnergyLoss) Name() string { return "energy_loss" }

func (e *EnergyLoss) Observe(x dynamo.State, t float64) {}

func (e *EnergyLoss) OnStrike(ev sim.StrikeEvent) {
	before := e.sys.Kinetic(ev.PreImpact)
	if before <= 0 {
		return
	}
	after := e.sys.Kinetic(ev.PostImpact)
	e.total += (before - after) / before
	e.impacts++
}

func (e *EnergyLoss) Value() float64 {
	if e.impacts == 0 {
		return 0
	}
	return e.total / float64(e.impacts)
}

func (e *EnergyLoss) Reset() {
	e.total = 0
	e.impacts = 0
}
