package topology

import "github.com/san-kum/molopt/internal/molecule"

// Bond is an unordered pair of atom indices, stored with I < J.
type Bond struct {
	I, J int
}

// Enumerator lists the directly bonded neighbors of an atom.
type Enumerator interface {
	Len() int
	Neighbors(i int) []int
}

// FindBonds tests every unordered atom pair against the cutoff table and
// returns the bonded ones ordered by (I, J). The cost is quadratic in the
// atom count.
func FindBonds(species []molecule.Species, positions []molecule.Vec3, table molecule.BondDistanceTable) []Bond {
	n := len(species)
	bonds := make([]Bond, 0, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := positions[i].DistanceTo(positions[j])
			if table.Bonded(species[i], species[j], d) {
				bonds = append(bonds, Bond{I: i, J: j})
			}
		}
	}

	return bonds
}

// CountBonds returns the number of bonded pairs among atoms.
func CountBonds(atoms []molecule.Atom, table molecule.BondDistanceTable) int {
	count := 0
	for i := range atoms {
		for j := i + 1; j < len(atoms); j++ {
			if atoms[i].IsBondedTo(atoms[j], table) {
				count++
			}
		}
	}
	return count
}

// Graph is an adjacency-list bond graph over a fixed number of atoms.
type Graph struct {
	n     int
	bonds []Bond
	adj   [][]int
}

// NewGraph builds a graph over n atoms. Bonds referencing atoms outside
// [0, n) or joining an atom to itself are dropped.
func NewGraph(n int, bonds []Bond) *Graph {
	g := &Graph{
		n:     n,
		bonds: make([]Bond, 0, len(bonds)),
		adj:   make([][]int, n),
	}

	for _, b := range bonds {
		i, j := b.I, b.J
		if i > j {
			i, j = j, i
		}
		if i < 0 || j >= n || i == j {
			continue
		}
		g.bonds = append(g.bonds, Bond{I: i, J: j})
		g.adj[i] = append(g.adj[i], j)
		g.adj[j] = append(g.adj[j], i)
	}

	return g
}

// Build finds the bonds of a structure and wraps them in a Graph.
func Build(species []molecule.Species, positions []molecule.Vec3, table molecule.BondDistanceTable) *Graph {
	return NewGraph(len(species), FindBonds(species, positions, table))
}

func (g *Graph) Len() int { return g.n }

// Neighbors returns the atoms bonded to i in bond order. The slice must not
// be modified.
func (g *Graph) Neighbors(i int) []int {
	if i < 0 || i >= g.n {
		return nil
	}
	return g.adj[i]
}

// Bonds returns a copy of the bond list.
func (g *Graph) Bonds() []Bond {
	c := make([]Bond, len(g.bonds))
	copy(c, g.bonds)
	return c
}

// BondCount returns the number of bonds in the graph.
func (g *Graph) BondCount() int { return len(g.bonds) }

// Pairs lists the bonds reachable through e, each once with I < J.
func Pairs(e Enumerator) []Bond {
	if g, ok := e.(*Graph); ok {
		return g.Bonds()
	}

	var bonds []Bond
	for i := 0; i < e.Len(); i++ {
		for _, j := range e.Neighbors(i) {
			if j > i {
				bonds = append(bonds, Bond{I: i, J: j})
			}
		}
	}
	return bonds
}
