package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBondData indicates that no bond topology was supplied at all,
	// which is distinct from a topology with zero bonds.
	ErrNoBondData = errors.New("topology: structure carries no bond data")

	// ErrAtomIndex indicates an atom index outside [0, Len()).
	ErrAtomIndex = errors.New("topology: atom index out of range")
)

// ConfigurationError wraps a failure caused by how the structure was set up
// rather than by its geometry.
type ConfigurationError struct {
	Op      string
	Wrapped error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Wrapped)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Wrapped
}
