package driver

import (
	"github.com/san-kum/molopt/internal/energy"
	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/optimizer"
	"github.com/san-kum/molopt/internal/structure"
)

// Sample is what metrics and observers see after each step.
type Sample struct {
	Iteration int
	Energy    energy.State
	Accepted  bool
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample, c structure.Collection)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Sample, c structure.Collection)

func (f ObserverFunc) OnStep(s Sample, c structure.Collection) { f(s, c) }

// OutcomeReporter is implemented by steppers that expose whether their
// last move was kept.
type OutcomeReporter interface {
	Last() optimizer.Outcome
}

// Rebonder is implemented by collections whose topology can be rebuilt
// from their current positions.
type Rebonder interface {
	Rebond(cutoffs molecule.BondDistanceTable)
}

type Config struct {
	Iterations int
	Seed       int64
	// Rebond rebuilds the bond graph between iterations using Cutoffs.
	Rebond  bool
	Cutoffs molecule.BondDistanceTable
}

type Result struct {
	Energies   []energy.State
	Accepted   []bool
	Initial    energy.State
	Final      energy.State
	Positions  []molecule.Vec3
	Metrics    map[string]float64
	StepsTaken int
}

// AcceptedCount returns the number of kept moves.
func (r *Result) AcceptedCount() int {
	n := 0
	for _, a := range r.Accepted {
		if a {
			n++
		}
	}
	return n
}

// Totals returns the total energy after every step.
func (r *Result) Totals() []float64 {
	out := make([]float64, len(r.Energies))
	for i, e := range r.Energies {
		out[i] = e.Total()
	}
	return out
}
