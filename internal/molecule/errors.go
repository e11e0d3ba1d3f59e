package molecule

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSpecies indicates a species with no entry in the mass table.
	ErrUnknownSpecies = errors.New("molecule: unknown species")

	// ErrEmptyStructure indicates an operation that needs at least one atom
	// with positive mass.
	ErrEmptyStructure = errors.New("molecule: empty structure")
)

// UnknownSpeciesError reports the species that failed the mass lookup.
type UnknownSpeciesError struct {
	Species Species
}

func (e *UnknownSpeciesError) Error() string {
	return fmt.Sprintf("molecule: unknown species %q", string(e.Species))
}

func (e *UnknownSpeciesError) Unwrap() error {
	return ErrUnknownSpecies
}
