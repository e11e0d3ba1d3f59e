// Package optim searches optimizer settings for the lowest final energy.
package optim

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/san-kum/molopt/internal/driver"
)

// FinalEnergy selects the run's final total energy as the objective rather
// than a named metric.
const FinalEnergy = "final_energy"

var ErrNoTrials = errors.New("optim: no trial completed")

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Result *driver.Result
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs one experiment per grid point and returns the point with the
// lowest objective. Points whose experiment fails are skipped. All
// completed trials are returned in grid order.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*driver.Experiment, error),
	metricName string,
) (*Trial, []Trial, error) {

	var trials []Trial
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &trials); err != nil {
		return nil, trials, err
	}

	if len(trials) == 0 {
		return nil, nil, ErrNoTrials
	}

	best := 0
	for i := range trials {
		if trials[i].Value < trials[best].Value {
			best = i
		}
	}
	b := trials[best]
	return &b, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*driver.Experiment, error),
	metricName string,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}

		val, ok := objective(result, metricName)
		if !ok {
			return nil
		}

		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		*trials = append(*trials, Trial{Params: params, Value: val, Result: result})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}

func objective(result *driver.Result, metricName string) (float64, bool) {
	if metricName == FinalEnergy {
		v := result.Final.Total()
		return v, !math.IsNaN(v)
	}
	v, ok := result.Metrics[metricName]
	return v, ok && !math.IsNaN(v)
}

// SortTrials orders trials by ascending objective.
func SortTrials(trials []Trial) {
	sort.SliceStable(trials, func(i, j int) bool {
		return trials[i].Value < trials[j].Value
	})
}
