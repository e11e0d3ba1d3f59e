package driver

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/molopt/internal/energy"
	"github.com/san-kum/molopt/internal/forcefield"
	"github.com/san-kum/molopt/internal/optimizer"
	"github.com/san-kum/molopt/internal/structure"
	"github.com/san-kum/molopt/internal/topology"
)

// Settings fully describes one optimization run.
type Settings struct {
	Params     *forcefield.Parameters
	Order      int
	Traversal  topology.Traversal
	Counting   energy.PairCounting
	Workers    int
	MaxShift   float64
	Seed       int64
	Iterations int
	Rebond     bool
}

func DefaultSettings() Settings {
	return Settings{
		Params:     forcefield.Default(),
		Order:      topology.DefaultExclusionOrder,
		Traversal:  topology.BreadthFirst,
		Counting:   energy.BothWays,
		Workers:    1,
		MaxShift:   optimizer.DefaultMaxShift,
		Iterations: 100,
	}
}

// Experiment wires an evaluator, optimizer and runner around a private copy
// of a structure.
type Experiment struct {
	settings  Settings
	structure *structure.Structure
	eval      *energy.Evaluator
	opt       *optimizer.Optimizer
	runner    *Runner
}

func NewExperiment(s Settings, st *structure.Structure, log *zap.Logger, metrics ...Metric) *Experiment {
	if s.Params == nil {
		s.Params = forcefield.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	eval := energy.New(s.Params,
		energy.WithOrder(s.Order),
		energy.WithTraversal(s.Traversal),
		energy.WithPairCounting(s.Counting),
		energy.WithWorkers(s.Workers),
	)
	opt := optimizer.New(eval,
		optimizer.WithSeed(s.Seed),
		optimizer.WithMaxShift(s.MaxShift),
		optimizer.WithLogger(log.Named("optimizer")),
	)

	runner := New(opt, eval)
	runner.SetLogger(log.Named("driver"))
	for _, m := range metrics {
		runner.AddMetric(m)
	}

	return &Experiment{
		settings:  s,
		structure: st.Clone(),
		eval:      eval,
		opt:       opt,
		runner:    runner,
	}
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	return e.runner.Run(ctx, e.structure, Config{
		Iterations: e.settings.Iterations,
		Seed:       e.settings.Seed,
		Rebond:     e.settings.Rebond,
		Cutoffs:    e.settings.Params.Cutoffs,
	})
}

// Runner returns the underlying runner for adding observers.
func (e *Experiment) Runner() *Runner { return e.runner }

// Structure returns the experiment's working copy.
func (e *Experiment) Structure() *structure.Structure { return e.structure }

func (e *Experiment) Optimizer() *optimizer.Optimizer { return e.opt }

func (e *Experiment) Settings() Settings { return e.settings }

func (e *Experiment) Evaluator() *energy.Evaluator { return e.eval }
