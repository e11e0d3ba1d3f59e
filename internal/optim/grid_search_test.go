package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/molopt/internal/driver"
	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/structure"
)

func testChain(t *testing.T) *structure.Structure {
	t.Helper()
	atoms := make([]molecule.Atom, 5)
	for i := range atoms {
		a, err := molecule.NewAtom(molecule.Carbon, molecule.Vec3{X: float64(i) * 1.45}, molecule.DefaultMasses())
		if err != nil {
			t.Fatal(err)
		}
		atoms[i] = a
	}
	return structure.New("chain", atoms, molecule.DefaultBondDistances())
}

func TestShiftSeedSweep(t *testing.T) {
	st := testChain(t)
	base := driver.DefaultSettings()
	base.Iterations = 30

	best, trials, err := ShiftSeedSweep(context.Background(), base, st,
		[]float64{0.01, 0.05}, []int64{1, 2, 3}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(trials) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(trials))
	}
	for _, tr := range trials {
		if tr.Value < best.Value {
			t.Errorf("trial %v beats best %v", tr.Params, best.Params)
		}
	}
	if trials[0].Params[ParamMaxShift] != 0.01 || trials[0].Params[ParamSeed] != 1 {
		t.Errorf("trials should follow grid order, got %v", trials[0].Params)
	}
	if trials[5].Params[ParamMaxShift] != 0.05 || trials[5].Params[ParamSeed] != 3 {
		t.Errorf("unexpected last trial %v", trials[5].Params)
	}

	shift, seed, value := best.Params[ParamMaxShift], best.Params[ParamSeed], best.Value
	SortTrials(trials)
	if trials[0].Value != best.Value {
		t.Error("sorted trials should start with the best")
	}
	if best.Value != value || best.Params[ParamMaxShift] != shift || best.Params[ParamSeed] != seed {
		t.Errorf("sorting trials changed the returned best: %v %f", best.Params, best.Value)
	}
}

func TestGridSearchMetric(t *testing.T) {
	st := testChain(t)
	g := NewGridSearch([]string{"iterations"}, [][]float64{{1, 10}})

	build := func(params map[string]float64) (*driver.Experiment, error) {
		s := driver.DefaultSettings()
		s.Iterations = int(params["iterations"])
		return driver.NewExperiment(s, st, nil), nil
	}

	_, _, err := g.Search(context.Background(), build, "missing_metric")
	if !errors.Is(err, ErrNoTrials) {
		t.Errorf("expected ErrNoTrials for unknown metric, got %v", err)
	}
}

func TestGridSearchSkipsBuildErrors(t *testing.T) {
	st := testChain(t)
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})

	build := func(params map[string]float64) (*driver.Experiment, error) {
		if params["x"] == 1 {
			return nil, errors.New("bad point")
		}
		s := driver.DefaultSettings()
		s.Iterations = 5
		return driver.NewExperiment(s, st, nil), nil
	}

	best, trials, err := g.Search(context.Background(), build, FinalEnergy)
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 1 || best.Params["x"] != 2 {
		t.Errorf("expected only x=2, got %v", trials)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"x"}, [][]float64{{1}})
	_, _, err := g.Search(ctx, func(map[string]float64) (*driver.Experiment, error) {
		t.Fatal("should not build after cancel")
		return nil, nil
	}, FinalEnergy)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
