package molecule

// Species is the element tag of an atom, e.g. "C".
type Species string

const (
	Carbon   Species = "C"
	Hydrogen Species = "H"
	Oxygen   Species = "O"
)

// Pair is an ordered species pair. Tables keyed by Pair may hold different
// values for (A,B) and (B,A).
type Pair struct {
	A, B Species
}

// Reverse returns the pair with its members swapped.
func (p Pair) Reverse() Pair { return Pair{A: p.B, B: p.A} }

// Sorted returns the pair with members in lexical order, the key used by
// tables that do not distinguish direction.
func (p Pair) Sorted() Pair {
	if p.B < p.A {
		return p.Reverse()
	}
	return p
}

// MassTable maps a species to its atomic mass.
type MassTable map[Species]float64

// DefaultMasses returns the masses of the built-in species.
func DefaultMasses() MassTable {
	return MassTable{
		Carbon:   12.0,
		Hydrogen: 1.0,
		Oxygen:   16.0,
	}
}

// Mass returns the mass of s or an *UnknownSpeciesError.
func (t MassTable) Mass(s Species) (float64, error) {
	m, ok := t[s]
	if !ok {
		return 0, &UnknownSpeciesError{Species: s}
	}
	return m, nil
}

// BondDistanceTable holds the maximum bonding distance per ordered pair.
type BondDistanceTable map[Pair]float64

// DefaultBondDistances returns the cutoffs of the built-in species. Each
// unordered pair is stored in both directions with the same value.
func DefaultBondDistances() BondDistanceTable {
	return BondDistanceTable{
		{Carbon, Carbon}:   1.6,
		{Carbon, Hydrogen}: 1.1,
		{Hydrogen, Carbon}: 1.1,
		{Carbon, Oxygen}:   1.5,
		{Oxygen, Carbon}:   1.5,
		{Oxygen, Hydrogen}: 1.0,
		{Hydrogen, Oxygen}: 1.0,
	}
}

// Bonded reports whether two atoms of species a and b at distance d are
// bonded. The (a,b) entry gates the test: when it is absent the pair is never
// bonded. Otherwise d must be below either directional cutoff.
func (t BondDistanceTable) Bonded(a, b Species, d float64) bool {
	forward, ok := t[Pair{a, b}]
	if !ok {
		return false
	}
	if d < forward {
		return true
	}
	if backward, ok := t[Pair{b, a}]; ok && d < backward {
		return true
	}
	return false
}

// Atom is a single particle.
type Atom struct {
	Species  Species
	Position Vec3
	Mass     float64
}

// NewAtom builds an atom whose mass is looked up in masses.
func NewAtom(s Species, pos Vec3, masses MassTable) (Atom, error) {
	m, err := masses.Mass(s)
	if err != nil {
		return Atom{}, err
	}
	return Atom{Species: s, Position: pos, Mass: m}, nil
}

// DistanceTo returns the Euclidean distance to other.
func (a Atom) DistanceTo(other Atom) float64 {
	return a.Position.DistanceTo(other.Position)
}

// IsBondedTo reports whether a and other are bonded under table.
func (a Atom) IsBondedTo(other Atom, table BondDistanceTable) bool {
	return table.Bonded(a.Species, other.Species, a.DistanceTo(other))
}

// MassCenter returns the mass-weighted mean position of atoms.
func MassCenter(atoms []Atom) (Vec3, error) {
	var sum Vec3
	total := 0.0
	for _, at := range atoms {
		sum = sum.Add(at.Position.Scale(at.Mass))
		total += at.Mass
	}
	if total <= 0 {
		return Vec3{}, ErrEmptyStructure
	}
	return sum.Scale(1 / total), nil
}
