package structure

import (
	"math"
	"testing"

	"github.com/san-kum/molopt/internal/molecule"
)

func carbonChain(t *testing.T, xs ...float64) []molecule.Atom {
	t.Helper()
	atoms := make([]molecule.Atom, 0, len(xs))
	for _, x := range xs {
		a, err := molecule.NewAtom(molecule.Carbon, molecule.Vec3{X: x}, molecule.DefaultMasses())
		if err != nil {
			t.Fatal(err)
		}
		atoms = append(atoms, a)
	}
	return atoms
}

func TestNew(t *testing.T) {
	s := New("chain", carbonChain(t, 0, 1.5, 3.0), molecule.DefaultBondDistances())

	if s.Len() != 3 {
		t.Fatalf("expected 3 atoms, got %d", s.Len())
	}
	if s.Bonds() == nil {
		t.Fatal("expected bond data")
	}
	if s.Graph().BondCount() != 2 {
		t.Errorf("expected 2 bonds, got %d", s.Graph().BondCount())
	}
	if s.SpeciesAt(1) != molecule.Carbon {
		t.Errorf("unexpected species %s", s.SpeciesAt(1))
	}
}

func TestNewWithoutBonds(t *testing.T) {
	s := NewWithoutBonds("bare", carbonChain(t, 0, 1.5))
	if s.Bonds() != nil {
		t.Error("expected nil bond enumerator")
	}
}

func TestPositionsAreLive(t *testing.T) {
	s := New("chain", carbonChain(t, 0, 1.5), molecule.DefaultBondDistances())

	s.Positions()[1] = molecule.Vec3{X: 2.0}
	if s.Atoms()[1].Position.X != 2.0 {
		t.Error("writes through Positions should move the atom")
	}
}

func TestRebond(t *testing.T) {
	s := New("chain", carbonChain(t, 0, 1.5), molecule.DefaultBondDistances())

	s.Positions()[1] = molecule.Vec3{X: 5.0}
	if s.Graph().BondCount() != 1 {
		t.Fatal("topology should not change until Rebond")
	}

	s.Rebond(molecule.DefaultBondDistances())
	if s.Graph().BondCount() != 0 {
		t.Errorf("expected no bonds after stretching, got %d", s.Graph().BondCount())
	}
}

func TestClone(t *testing.T) {
	s := New("chain", carbonChain(t, 0, 1.5), molecule.DefaultBondDistances())
	c := s.Clone()

	c.Positions()[0] = molecule.Vec3{X: -1}
	if s.Positions()[0].X != 0 {
		t.Error("clone shares the position buffer")
	}
	if c.Label != s.Label {
		t.Error("label not copied")
	}
}

func TestMassCenter(t *testing.T) {
	s := New("pair", carbonChain(t, 0, 2), molecule.DefaultBondDistances())

	c, err := s.MassCenter()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.X-1.0) > 1e-12 || c.Y != 0 {
		t.Errorf("expected (1, 0), got %v", c)
	}
}
