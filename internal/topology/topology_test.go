package topology

import (
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/molopt/internal/molecule"
)

func ring(n int) *Graph {
	bonds := make([]Bond, 0, n)
	for i := 0; i < n-1; i++ {
		bonds = append(bonds, Bond{I: i, J: i + 1})
	}
	bonds = append(bonds, Bond{I: 0, J: n - 1})
	return NewGraph(n, bonds)
}

func chain(n int) *Graph {
	bonds := make([]Bond, 0, n)
	for i := 0; i < n-1; i++ {
		bonds = append(bonds, Bond{I: i, J: i + 1})
	}
	return NewGraph(n, bonds)
}

func TestFindBonds_Collinear(t *testing.T) {
	species := []molecule.Species{molecule.Carbon, molecule.Carbon, molecule.Carbon}
	positions := []molecule.Vec3{{}, {X: 1.5}, {X: 3.0}}

	bonds := FindBonds(species, positions, molecule.DefaultBondDistances())
	if len(bonds) != 2 {
		t.Fatalf("expected 2 bonds, got %d", len(bonds))
	}

	want := []Bond{{0, 1}, {1, 2}}
	if !reflect.DeepEqual(bonds, want) {
		t.Errorf("expected %v, got %v", want, bonds)
	}
}

func TestFindBonds_Deterministic(t *testing.T) {
	species := []molecule.Species{molecule.Carbon, molecule.Hydrogen, molecule.Oxygen, molecule.Hydrogen}
	positions := []molecule.Vec3{{}, {X: 1.0}, {Y: 1.4}, {Y: 2.2}}
	table := molecule.DefaultBondDistances()

	first := FindBonds(species, positions, table)
	second := FindBonds(species, positions, table)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("bond detection not deterministic: %v vs %v", first, second)
	}
	if len(first) != 3 {
		t.Errorf("expected 3 bonds, got %v", first)
	}
}

func TestCountBonds(t *testing.T) {
	masses := molecule.DefaultMasses()
	var atoms []molecule.Atom
	for _, x := range []float64{0, 1.5, 3.0} {
		a, err := molecule.NewAtom(molecule.Carbon, molecule.Vec3{X: x}, masses)
		if err != nil {
			t.Fatal(err)
		}
		atoms = append(atoms, a)
	}

	if n := CountBonds(atoms, molecule.DefaultBondDistances()); n != 2 {
		t.Errorf("expected 2 bonds, got %d", n)
	}
}

func TestNewGraph(t *testing.T) {
	g := NewGraph(3, []Bond{{1, 0}, {1, 2}, {2, 2}, {0, 7}})

	if g.BondCount() != 2 {
		t.Fatalf("expected 2 valid bonds, got %d", g.BondCount())
	}
	if got := g.Neighbors(1); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("neighbors of 1 = %v", got)
	}
	if got := g.Neighbors(5); got != nil {
		t.Errorf("expected nil neighbors out of range, got %v", got)
	}
	if got := g.Bonds()[0]; got != (Bond{0, 1}) {
		t.Errorf("expected normalised bond (0,1), got %v", got)
	}
}

func TestPairs(t *testing.T) {
	g := ring(4)
	want := g.Bonds()

	wrapped := struct{ Enumerator }{g}
	got := Pairs(wrapped)
	if len(got) != len(want) {
		t.Fatalf("expected %d pairs, got %d", len(want), len(got))
	}
	for _, b := range got {
		if b.I >= b.J {
			t.Errorf("pair %v not ordered", b)
		}
	}
}

func TestBuildTree_WellFormed(t *testing.T) {
	var bonds []Bond
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			bonds = append(bonds, Bond{i, j})
		}
	}
	g := NewGraph(5, bonds)

	for _, tr := range []Traversal{BreadthFirst, DepthFirst} {
		for root := 0; root < g.Len(); root++ {
			tree, err := BuildTree(g, root, tr)
			if err != nil {
				t.Fatalf("BuildTree(%d, %s): %v", root, tr, err)
			}

			nodes := tree.Nodes()
			if nodes[0].Atom != root || nodes[0].Depth != 0 || nodes[0].Parent != -1 {
				t.Errorf("%s root %d: first node %+v", tr, root, nodes[0])
			}

			seen := make(map[int]bool)
			roots := 0
			for _, nd := range nodes {
				if seen[nd.Atom] {
					t.Errorf("%s root %d: atom %d visited twice", tr, root, nd.Atom)
				}
				seen[nd.Atom] = true
				if nd.Depth == 0 {
					roots++
				}
			}
			if roots != 1 {
				t.Errorf("%s root %d: %d nodes at depth 0", tr, root, roots)
			}
			if tree.Len() != 5 {
				t.Errorf("%s root %d: expected 5 nodes, got %d", tr, root, tree.Len())
			}
		}
	}
}

func TestBuildTree_Chain(t *testing.T) {
	g := chain(6)

	for _, tr := range []Traversal{BreadthFirst, DepthFirst} {
		got, err := Eligible(g, 0, DefaultExclusionOrder, tr)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, []int{4, 5}) {
			t.Errorf("%s: eligible from 0 = %v, want [4 5]", tr, got)
		}

		got, err = Eligible(g, 2, DefaultExclusionOrder, tr)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("%s: eligible from 2 = %v, want none", tr, got)
		}
	}
}

func TestBuildTree_RingDepth(t *testing.T) {
	g := ring(6)

	dfs, err := BuildTree(g, 0, DepthFirst)
	if err != nil {
		t.Fatal(err)
	}
	bfs, err := BuildTree(g, 0, BreadthFirst)
	if err != nil {
		t.Fatal(err)
	}

	if d, _ := dfs.Depth(5); d != 5 {
		t.Errorf("dfs depth of 5 = %d, want 5", d)
	}
	if d, _ := bfs.Depth(5); d != 1 {
		t.Errorf("bfs depth of 5 = %d, want 1", d)
	}

	if got := dfs.Beyond(3); !reflect.DeepEqual(got, []int{4, 5}) {
		t.Errorf("dfs beyond 3 = %v", got)
	}
	if got := bfs.Beyond(3); len(got) != 0 {
		t.Errorf("bfs beyond 3 = %v, want none", got)
	}
}

func TestBuildTree_Isolated(t *testing.T) {
	g := NewGraph(3, nil)

	tree, err := BuildTree(g, 1, BreadthFirst)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 1 {
		t.Errorf("expected root only, got %d nodes", tree.Len())
	}
	if len(tree.Beyond(0)) != 0 {
		t.Error("root must never be eligible")
	}
	if _, ok := tree.Depth(0); ok {
		t.Error("atom 0 should be unreached")
	}
}

func TestBuildTree_NoBondData(t *testing.T) {
	var g *Graph

	for _, e := range []Enumerator{nil, g} {
		_, err := BuildTree(e, 0, BreadthFirst)

		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("expected *ConfigurationError, got %v", err)
		}
		if !errors.Is(err, ErrNoBondData) {
			t.Errorf("expected ErrNoBondData, got %v", err)
		}
	}
}

func TestBuildTree_BadRoot(t *testing.T) {
	_, err := BuildTree(chain(3), 3, BreadthFirst)
	if !errors.Is(err, ErrAtomIndex) {
		t.Errorf("expected ErrAtomIndex, got %v", err)
	}
}

func TestParseTraversal(t *testing.T) {
	tests := []struct {
		in   string
		want Traversal
		err  bool
	}{
		{"bfs", BreadthFirst, false},
		{"", BreadthFirst, false},
		{"dfs", DepthFirst, false},
		{"depth-first", DepthFirst, false},
		{"random", BreadthFirst, true},
	}

	for _, tt := range tests {
		got, err := ParseTraversal(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseTraversal(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseTraversal(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
