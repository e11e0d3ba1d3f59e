package forcefield

import (
	"sort"

	"github.com/san-kum/molopt/internal/molecule"
)

func sortedPairs[V any](m map[molecule.Pair]V) []molecule.Pair {
	pairs := make([]molecule.Pair, 0, len(m))
	for p := range m {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// Species lists every species with a mass entry, sorted.
func (p *Parameters) Species() []molecule.Species {
	out := make([]molecule.Species, 0, len(p.Masses))
	for s := range p.Masses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LennardJonesPairs returns the LJ table keys in a stable order.
func (p *Parameters) LennardJonesPairs() []molecule.Pair { return sortedPairs(p.LennardJones) }

// BondLengthPairs returns the bond-length table keys in a stable order.
func (p *Parameters) BondLengthPairs() []molecule.Pair { return sortedPairs(p.BondLengths) }
