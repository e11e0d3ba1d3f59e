// Package energy evaluates the potential energy of a structure as a
// harmonic bond term plus a Lennard-Jones term over atom pairs separated by
// more than a configurable number of bonds.
package energy

import (
	"fmt"
	"math"

	"github.com/san-kum/molopt/internal/forcefield"
	"github.com/san-kum/molopt/internal/structure"
	"github.com/san-kum/molopt/internal/topology"
)

// minRootsPerWorker keeps tiny structures on a single goroutine.
const minRootsPerWorker = 8

// State is the energy of one configuration split by term.
type State struct {
	Bond float64
	VDW  float64
}

func (s State) Total() float64 { return s.Bond + s.VDW }

func (s State) String() string {
	return fmt.Sprintf("total=%.6f bond=%.6f vdw=%.6f", s.Total(), s.Bond, s.VDW)
}

// PairCounting selects how often a non-bonded pair enters the sum.
type PairCounting int

const (
	// BothWays sums every eligible pair once from each atom's side, so each
	// pair contributes twice.
	BothWays PairCounting = iota
	// Once sums a pair only from the lower-indexed atom.
	Once
)

func (p PairCounting) String() string {
	if p == Once {
		return "once"
	}
	return "both"
}

// ParsePairCounting maps "both" or "once" to a PairCounting.
func ParsePairCounting(s string) (PairCounting, error) {
	switch s {
	case "both", "":
		return BothWays, nil
	case "once":
		return Once, nil
	default:
		return BothWays, fmt.Errorf("unknown pair counting: %s", s)
	}
}

// Evaluator computes energies from a parameter set. It holds no per-call
// state and is safe for concurrent use.
type Evaluator struct {
	params    *forcefield.Parameters
	order     int
	traversal topology.Traversal
	counting  PairCounting
	workers   int
}

type Option func(*Evaluator)

// WithOrder sets the exclusion order: pairs at most order bonds apart get
// no non-bonded energy.
func WithOrder(order int) Option {
	return func(e *Evaluator) { e.order = order }
}

func WithTraversal(t topology.Traversal) Option {
	return func(e *Evaluator) { e.traversal = t }
}

func WithPairCounting(p PairCounting) Option {
	return func(e *Evaluator) { e.counting = p }
}

// WithWorkers spreads the non-bonded sum over n goroutines. Results are
// identical for any n.
func WithWorkers(n int) Option {
	return func(e *Evaluator) { e.workers = n }
}

func New(params *forcefield.Parameters, opts ...Option) *Evaluator {
	if params == nil {
		params = forcefield.Default()
	}
	e := &Evaluator{
		params:    params,
		order:     topology.DefaultExclusionOrder,
		traversal: topology.BreadthFirst,
		counting:  BothWays,
		workers:   1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Parameters() *forcefield.Parameters { return e.params }

// Evaluate returns both energy terms of the collection's current positions.
func (e *Evaluator) Evaluate(c structure.Collection) (State, error) {
	bond, err := e.BondEnergy(c)
	if err != nil {
		return State{}, err
	}
	vdw, err := e.VDWEnergy(c)
	if err != nil {
		return State{}, err
	}
	return State{Bond: bond, VDW: vdw}, nil
}

// BondEnergy sums 0.5*k*(r-r0)^2 over bonded pairs with a known
// equilibrium length.
func (e *Evaluator) BondEnergy(c structure.Collection) (float64, error) {
	enum, err := bondsOf(c)
	if err != nil {
		return 0, err
	}

	pos := c.Positions()
	k := e.params.SpringConstant
	energy := 0.0

	for _, b := range topology.Pairs(enum) {
		r0, ok := e.params.BondLength(c.SpeciesAt(b.I), c.SpeciesAt(b.J))
		if !ok {
			continue
		}
		dr := pos[b.I].DistanceTo(pos[b.J]) - r0
		energy += 0.5 * k * dr * dr
	}

	return energy, nil
}

// VDWEnergy sums the Lennard-Jones potential over every root atom and the
// atoms beyond the exclusion order from it. Each root's contribution is
// accumulated separately and the partial sums are added in root order.
func (e *Evaluator) VDWEnergy(c structure.Collection) (float64, error) {
	enum, err := bondsOf(c)
	if err != nil {
		return 0, err
	}

	n := c.Len()
	partial := make([]float64, n)
	errs := make([]error, n)

	parallelFor(n, minRootsPerWorker, e.workers, func(start, end int) {
		for i := start; i < end; i++ {
			partial[i], errs[i] = e.rootEnergy(c, enum, i)
		}
	})

	energy := 0.0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			return 0, errs[i]
		}
		energy += partial[i]
	}
	return energy, nil
}

func (e *Evaluator) rootEnergy(c structure.Collection, enum topology.Enumerator, i int) (float64, error) {
	eligible, err := topology.Eligible(enum, i, e.order, e.traversal)
	if err != nil {
		return 0, err
	}

	pos := c.Positions()
	si := c.SpeciesAt(i)
	energy := 0.0

	for _, j := range eligible {
		if e.counting == Once && j <= i {
			continue
		}
		lj, ok := e.params.LennardJonesFor(si, c.SpeciesAt(j))
		if !ok {
			continue
		}
		energy += LennardJones(lj.Epsilon, lj.Sigma, pos[i].DistanceTo(pos[j]))
	}

	return energy, nil
}

// LennardJones returns 4*eps*((sigma/r)^12 - (sigma/r)^6), or 0 for r <= 0
// where the potential is undefined.
func LennardJones(epsilon, sigma, r float64) float64 {
	if r <= 0 {
		return 0
	}
	r6 := math.Pow(sigma/r, 6)
	r12 := r6 * r6
	return 4 * epsilon * (r12 - r6)
}

// Harmonic returns 0.5*k*(r-r0)^2.
func Harmonic(k, r, r0 float64) float64 {
	dr := r - r0
	return 0.5 * k * dr * dr
}

func bondsOf(c structure.Collection) (topology.Enumerator, error) {
	enum := c.Bonds()
	if enum == nil {
		return nil, &topology.ConfigurationError{Op: "evaluate energy", Wrapped: topology.ErrNoBondData}
	}
	return enum, nil
}
