package optim

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/molopt/internal/driver"
	"github.com/san-kum/molopt/internal/structure"
)

const (
	ParamMaxShift = "max_shift"
	ParamSeed     = "seed"
)

// ShiftSeedSweep runs the grid max shift x seed on copies of st and returns
// the settings with the lowest final energy.
func ShiftSeedSweep(
	ctx context.Context,
	base driver.Settings,
	st *structure.Structure,
	shifts []float64,
	seeds []int64,
	log *zap.Logger,
) (*Trial, []Trial, error) {
	seedValues := make([]float64, len(seeds))
	for i, s := range seeds {
		seedValues[i] = float64(s)
	}

	grid := NewGridSearch(
		[]string{ParamMaxShift, ParamSeed},
		[][]float64{shifts, seedValues},
	)

	build := func(params map[string]float64) (*driver.Experiment, error) {
		s := base
		s.MaxShift = params[ParamMaxShift]
		s.Seed = int64(params[ParamSeed])
		return driver.NewExperiment(s, st, log), nil
	}

	return grid.Search(ctx, build, FinalEnergy)
}
