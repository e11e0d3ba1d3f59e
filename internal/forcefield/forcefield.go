// Package forcefield holds the parameter tables used to build bonds and
// evaluate energies, and reads them from YAML files.
package forcefield

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/molopt/internal/molecule"
	"gopkg.in/yaml.v3"
)

const DefaultSpringConstant = 500.0

var ErrInvalidParameter = errors.New("forcefield: invalid parameter")

// LJ holds the Lennard-Jones well depth and characteristic distance.
type LJ struct {
	Epsilon float64
	Sigma   float64
}

// Parameters is a complete parameter set. BondLengths and LennardJones do
// not distinguish pair direction; Cutoffs does.
type Parameters struct {
	Masses         molecule.MassTable
	Cutoffs        molecule.BondDistanceTable
	BondLengths    map[molecule.Pair]float64
	LennardJones   map[molecule.Pair]LJ
	SpringConstant float64
}

// Default returns the built-in parameters for C, H and O.
func Default() *Parameters {
	return &Parameters{
		Masses:  molecule.DefaultMasses(),
		Cutoffs: molecule.DefaultBondDistances(),
		BondLengths: map[molecule.Pair]float64{
			{A: molecule.Carbon, B: molecule.Hydrogen}: 1.1,
			{A: molecule.Carbon, B: molecule.Carbon}:   1.6,
			{A: molecule.Carbon, B: molecule.Oxygen}:   1.5,
			{A: molecule.Hydrogen, B: molecule.Oxygen}: 1.0,
		},
		LennardJones: map[molecule.Pair]LJ{
			{A: molecule.Carbon, B: molecule.Hydrogen}: {Epsilon: 0.035, Sigma: 1.32},
			{A: molecule.Carbon, B: molecule.Carbon}:   {Epsilon: 0.05, Sigma: 1.92},
			{A: molecule.Carbon, B: molecule.Oxygen}:   {Epsilon: 0.06, Sigma: 1.8},
			{A: molecule.Hydrogen, B: molecule.Oxygen}: {Epsilon: 0.045, Sigma: 1.2},
		},
		SpringConstant: DefaultSpringConstant,
	}
}

// BondLength returns the equilibrium length for a species pair in either
// order.
func (p *Parameters) BondLength(a, b molecule.Species) (float64, bool) {
	r0, ok := p.BondLengths[molecule.Pair{A: a, B: b}.Sorted()]
	return r0, ok
}

// LennardJonesFor returns the LJ parameters for a species pair in either
// order.
func (p *Parameters) LennardJonesFor(a, b molecule.Species) (LJ, bool) {
	lj, ok := p.LennardJones[molecule.Pair{A: a, B: b}.Sorted()]
	return lj, ok
}

// Validate rejects physically meaningless entries.
func (p *Parameters) Validate() error {
	for s, m := range p.Masses {
		if m <= 0 {
			return fmt.Errorf("%w: mass of %s must be positive, got %g", ErrInvalidParameter, s, m)
		}
	}
	for pair, d := range p.Cutoffs {
		if d < 0 {
			return fmt.Errorf("%w: cutoff %s-%s is negative", ErrInvalidParameter, pair.A, pair.B)
		}
	}
	for pair, r0 := range p.BondLengths {
		if r0 < 0 {
			return fmt.Errorf("%w: bond length %s-%s is negative", ErrInvalidParameter, pair.A, pair.B)
		}
	}
	for pair, lj := range p.LennardJones {
		if lj.Sigma < 0 {
			return fmt.Errorf("%w: sigma %s-%s is negative", ErrInvalidParameter, pair.A, pair.B)
		}
	}
	if p.SpringConstant < 0 {
		return fmt.Errorf("%w: spring constant is negative", ErrInvalidParameter)
	}
	return nil
}

type pairEntry struct {
	A        string  `yaml:"a"`
	B        string  `yaml:"b"`
	Distance float64 `yaml:"distance,omitempty"`
	Length   float64 `yaml:"length,omitempty"`
	Epsilon  float64 `yaml:"epsilon,omitempty"`
	Sigma    float64 `yaml:"sigma,omitempty"`
}

type fileFormat struct {
	SpringConstant *float64           `yaml:"spring_constant,omitempty"`
	Masses         map[string]float64 `yaml:"masses,omitempty"`
	BondCutoffs    []pairEntry        `yaml:"bond_cutoffs,omitempty"`
	BondLengths    []pairEntry        `yaml:"bond_lengths,omitempty"`
	LennardJones   []pairEntry        `yaml:"lennard_jones,omitempty"`
}

// Parse reads a YAML parameter document on top of Default, so a file only
// needs the entries it changes. A bond cutoff entry sets one direction.
func Parse(data []byte) (*Parameters, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	p := Default()
	if f.SpringConstant != nil {
		p.SpringConstant = *f.SpringConstant
	}
	for s, m := range f.Masses {
		p.Masses[molecule.Species(s)] = m
	}
	for _, e := range f.BondCutoffs {
		p.Cutoffs[molecule.Pair{A: molecule.Species(e.A), B: molecule.Species(e.B)}] = e.Distance
	}
	for _, e := range f.BondLengths {
		p.BondLengths[molecule.Pair{A: molecule.Species(e.A), B: molecule.Species(e.B)}.Sorted()] = e.Length
	}
	for _, e := range f.LennardJones {
		key := molecule.Pair{A: molecule.Species(e.A), B: molecule.Species(e.B)}.Sorted()
		p.LennardJones[key] = LJ{Epsilon: e.Epsilon, Sigma: e.Sigma}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads a parameter file. An empty path yields Default.
func Load(path string) (*Parameters, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("forcefield %s: %w", path, err)
	}
	return p, nil
}

// Save writes p as YAML.
func Save(path string, p *Parameters) error {
	k := p.SpringConstant
	f := fileFormat{
		SpringConstant: &k,
		Masses:         make(map[string]float64, len(p.Masses)),
	}
	for s, m := range p.Masses {
		f.Masses[string(s)] = m
	}
	for _, pair := range sortedPairs(p.Cutoffs) {
		f.BondCutoffs = append(f.BondCutoffs, pairEntry{A: string(pair.A), B: string(pair.B), Distance: p.Cutoffs[pair]})
	}
	for _, pair := range sortedPairs(p.BondLengths) {
		f.BondLengths = append(f.BondLengths, pairEntry{A: string(pair.A), B: string(pair.B), Length: p.BondLengths[pair]})
	}
	for _, pair := range sortedPairs(p.LennardJones) {
		lj := p.LennardJones[pair]
		f.LennardJones = append(f.LennardJones, pairEntry{A: string(pair.A), B: string(pair.B), Epsilon: lj.Epsilon, Sigma: lj.Sigma})
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
