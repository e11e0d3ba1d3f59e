// Package structure holds a molecule as the optimizer sees it: species by
// index, a mutable position buffer and the bond topology.
package structure

import (
	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/topology"
)

// Collection is the data the energy model and optimizer work on. Positions
// returns the live buffer; writes through it move the atoms. Bonds returns
// nil when the collection carries no bond data.
type Collection interface {
	Len() int
	SpeciesAt(i int) molecule.Species
	Positions() []molecule.Vec3
	Bonds() topology.Enumerator
}

// Structure is the in-memory Collection built from an atom list.
type Structure struct {
	Label     string
	species   []molecule.Species
	masses    []float64
	positions []molecule.Vec3
	graph     *topology.Graph
}

// New copies atoms into a Structure and detects bonds from their current
// geometry.
func New(label string, atoms []molecule.Atom, cutoffs molecule.BondDistanceTable) *Structure {
	s := NewWithoutBonds(label, atoms)
	s.Rebond(cutoffs)
	return s
}

// NewWithoutBonds copies atoms into a Structure with no bond data.
func NewWithoutBonds(label string, atoms []molecule.Atom) *Structure {
	s := &Structure{
		Label:     label,
		species:   make([]molecule.Species, len(atoms)),
		masses:    make([]float64, len(atoms)),
		positions: make([]molecule.Vec3, len(atoms)),
	}
	for i, a := range atoms {
		s.species[i] = a.Species
		s.masses[i] = a.Mass
		s.positions[i] = a.Position
	}
	return s
}

func (s *Structure) Len() int                         { return len(s.species) }
func (s *Structure) SpeciesAt(i int) molecule.Species { return s.species[i] }
func (s *Structure) Positions() []molecule.Vec3       { return s.positions }
func (s *Structure) Species() []molecule.Species      { return s.species }

// Bonds returns the bond graph, or nil when none was built.
func (s *Structure) Bonds() topology.Enumerator {
	if s.graph == nil {
		return nil
	}
	return s.graph
}

// Graph returns the concrete bond graph, or nil.
func (s *Structure) Graph() *topology.Graph { return s.graph }

// Rebond recomputes the bond graph from the current positions.
func (s *Structure) Rebond(cutoffs molecule.BondDistanceTable) {
	s.graph = topology.Build(s.species, s.positions, cutoffs)
}

// SetGraph replaces the bond topology, e.g. with bonds supplied by a file.
func (s *Structure) SetGraph(g *topology.Graph) { s.graph = g }

// Atoms returns the atoms at their current positions.
func (s *Structure) Atoms() []molecule.Atom {
	atoms := make([]molecule.Atom, len(s.species))
	for i := range atoms {
		atoms[i] = molecule.Atom{Species: s.species[i], Position: s.positions[i], Mass: s.masses[i]}
	}
	return atoms
}

// MassCenter returns the mass-weighted mean of the current positions.
func (s *Structure) MassCenter() (molecule.Vec3, error) {
	return molecule.MassCenter(s.Atoms())
}

// Clone returns a deep copy sharing no buffers with s. The bond graph is
// immutable and is shared.
func (s *Structure) Clone() *Structure {
	c := &Structure{
		Label:     s.Label,
		species:   make([]molecule.Species, len(s.species)),
		masses:    make([]float64, len(s.masses)),
		positions: molecule.ClonePositions(s.positions),
		graph:     s.graph,
	}
	copy(c.species, s.species)
	copy(c.masses, s.masses)
	return c
}
