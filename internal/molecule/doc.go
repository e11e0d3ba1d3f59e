// Package molecule provides the atom model shared by every other package.
//
// The package defines the particle-level primitives:
//
//   - [Species]: chemical element tag of an atom
//   - [Vec3]: position in 3-space
//   - [Atom]: species, position and the mass derived from the species
//   - [MassTable]: mass lookup by species
//   - [BondDistanceTable]: directional bonding cutoff by species pair
//
// # Bonding
//
// Two atoms are bonded when their distance is below the cutoff stored for
// either direction of the pair:
//
//	a, _ := molecule.NewAtom(molecule.Carbon, molecule.Vec3{}, masses)
//	b, _ := molecule.NewAtom(molecule.Carbon, molecule.Vec3{X: 1.5}, masses)
//	bonded := a.IsBondedTo(b, molecule.DefaultBondDistances())
//
// A pair missing from the table is never bonded; this is not an error.
package molecule
