package metrics

import (
	"math"

	"github.com/stevetorr/flare-pp/internal/md"
)

// EnergyDrift tracks the worst relative deviation of the total energy
// from its value at the first observed sample.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(th md.Thermo) {
	if e.samples == 0 {
		e.initial = th.Total
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(th.Total-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
