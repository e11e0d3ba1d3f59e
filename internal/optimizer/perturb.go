package optimizer

import (
	"math/rand"

	"github.com/san-kum/molopt/internal/molecule"
)

// DefaultMaxShift bounds the per-axis displacement of a trial move.
const DefaultMaxShift = 0.05

// Perturber proposes a displacement for each of n atoms.
type Perturber interface {
	Perturb(rng *rand.Rand, n int) []molecule.Vec3
}

// UniformPerturber draws every axis of every displacement independently
// from U[-MaxShift, +MaxShift].
type UniformPerturber struct {
	MaxShift float64
}

func (u UniformPerturber) Perturb(rng *rand.Rand, n int) []molecule.Vec3 {
	shifts := make([]molecule.Vec3, n)
	for i := range shifts {
		shifts[i] = molecule.Vec3{
			X: u.uniform(rng),
			Y: u.uniform(rng),
			Z: u.uniform(rng),
		}
	}
	return shifts
}

func (u UniformPerturber) uniform(rng *rand.Rand) float64 {
	return (2*rng.Float64() - 1) * u.MaxShift
}

// PerturberFunc adapts a function to Perturber.
type PerturberFunc func(rng *rand.Rand, n int) []molecule.Vec3

func (f PerturberFunc) Perturb(rng *rand.Rand, n int) []molecule.Vec3 { return f(rng, n) }
