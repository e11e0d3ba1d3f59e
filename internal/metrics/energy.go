package metrics

import (
	"math"

	"github.com/san-kum/molopt/internal/driver"
)

// BestEnergy tracks the lowest total energy seen.
type BestEnergy struct {
	name string
	best float64
}

func NewBestEnergy() *BestEnergy {
	return &BestEnergy{name: "best_energy", best: math.Inf(1)}
}

func (b *BestEnergy) Name() string { return b.name }

func (b *BestEnergy) Observe(s driver.Sample) {
	b.best = math.Min(b.best, s.Energy.Total())
}

// Value returns the lowest energy, or +Inf before any sample.
func (b *BestEnergy) Value() float64 { return b.best }

func (b *BestEnergy) Reset() { b.best = math.Inf(1) }

// EnergyDrop is the decrease of total energy from the first observed step
// to the latest one, relative to the first when it is non-zero.
type EnergyDrop struct {
	name     string
	relative bool
	first    float64
	current  float64
	samples  int
}

func NewEnergyDrop() *EnergyDrop {
	return &EnergyDrop{name: "energy_drop"}
}

// NewRelativeEnergyDrop reports the drop as a fraction of the first energy.
func NewRelativeEnergyDrop() *EnergyDrop {
	return &EnergyDrop{name: "relative_energy_drop", relative: true}
}

func (e *EnergyDrop) Name() string { return e.name }

func (e *EnergyDrop) Observe(s driver.Sample) {
	total := s.Energy.Total()
	if e.samples == 0 {
		e.first = total
	}
	e.current = total
	e.samples++
}

func (e *EnergyDrop) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	drop := e.first - e.current
	if e.relative {
		if e.first == 0 {
			return 0
		}
		return drop / math.Abs(e.first)
	}
	return drop
}

func (e *EnergyDrop) Reset() {
	e.first = 0
	e.current = 0
	e.samples = 0
}
