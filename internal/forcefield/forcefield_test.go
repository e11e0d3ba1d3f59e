package forcefield

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/molopt/internal/molecule"
)

func TestDefault(t *testing.T) {
	p := Default()

	if p.SpringConstant != 500.0 {
		t.Errorf("expected k=500, got %f", p.SpringConstant)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default parameters invalid: %v", err)
	}
	if len(p.Species()) != 3 {
		t.Errorf("expected 3 species, got %v", p.Species())
	}
}

func TestLookupsIgnoreOrder(t *testing.T) {
	p := Default()

	tests := []struct {
		a, b molecule.Species
		r0   float64
		lj   LJ
	}{
		{molecule.Carbon, molecule.Hydrogen, 1.1, LJ{0.035, 1.32}},
		{molecule.Hydrogen, molecule.Carbon, 1.1, LJ{0.035, 1.32}},
		{molecule.Oxygen, molecule.Carbon, 1.5, LJ{0.06, 1.8}},
		{molecule.Oxygen, molecule.Hydrogen, 1.0, LJ{0.045, 1.2}},
		{molecule.Carbon, molecule.Carbon, 1.6, LJ{0.05, 1.92}},
	}

	for _, tt := range tests {
		r0, ok := p.BondLength(tt.a, tt.b)
		if !ok || r0 != tt.r0 {
			t.Errorf("BondLength(%s,%s) = %f,%v want %f", tt.a, tt.b, r0, ok, tt.r0)
		}
		lj, ok := p.LennardJonesFor(tt.a, tt.b)
		if !ok || lj != tt.lj {
			t.Errorf("LennardJonesFor(%s,%s) = %+v,%v want %+v", tt.a, tt.b, lj, ok, tt.lj)
		}
	}
}

func TestLookupsMissing(t *testing.T) {
	p := Default()

	if _, ok := p.BondLength(molecule.Hydrogen, molecule.Hydrogen); ok {
		t.Error("H-H bond length should be missing")
	}
	if _, ok := p.LennardJonesFor(molecule.Oxygen, molecule.Oxygen); ok {
		t.Error("O-O LJ should be missing")
	}
}

func TestParseOverrides(t *testing.T) {
	doc := []byte(`
spring_constant: 250
masses:
  N: 14.0
bond_cutoffs:
  - {a: C, b: N, distance: 1.5}
bond_lengths:
  - {a: N, b: C, length: 1.47}
lennard_jones:
  - {a: H, b: H, epsilon: 0.02, sigma: 1.0}
`)

	p, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.SpringConstant != 250 {
		t.Errorf("expected k=250, got %f", p.SpringConstant)
	}
	if m, err := p.Masses.Mass("N"); err != nil || m != 14.0 {
		t.Errorf("N mass = %f, %v", m, err)
	}
	if d := p.Cutoffs[molecule.Pair{A: molecule.Carbon, B: "N"}]; d != 1.5 {
		t.Errorf("C-N cutoff = %f", d)
	}
	if _, ok := p.Cutoffs[molecule.Pair{A: "N", B: molecule.Carbon}]; ok {
		t.Error("cutoff entries are directional")
	}
	if r0, ok := p.BondLength(molecule.Carbon, "N"); !ok || r0 != 1.47 {
		t.Errorf("C-N length = %f, %v", r0, ok)
	}
	if _, ok := p.LennardJonesFor(molecule.Hydrogen, molecule.Hydrogen); !ok {
		t.Error("expected H-H LJ entry")
	}
	if r0, _ := p.BondLength(molecule.Carbon, molecule.Carbon); r0 != 1.6 {
		t.Errorf("defaults should survive, C-C = %f", r0)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"negative mass", "masses: {C: -1}"},
		{"negative sigma", "lennard_jones: [{a: C, b: C, epsilon: 0.1, sigma: -1}]"},
		{"negative k", "spring_constant: -3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}

	if _, err := Parse([]byte("masses: [")); err == nil {
		t.Error("expected yaml error")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ff.yaml")

	p := Default()
	p.SpringConstant = 321
	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SpringConstant != 321 {
		t.Errorf("expected k=321, got %f", loaded.SpringConstant)
	}
	if len(loaded.Cutoffs) != len(p.Cutoffs) {
		t.Errorf("expected %d cutoffs, got %d", len(p.Cutoffs), len(loaded.Cutoffs))
	}
}

func TestLoadEmptyPath(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if p.SpringConstant != DefaultSpringConstant {
		t.Error("empty path should yield defaults")
	}
}
