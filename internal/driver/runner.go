// Package driver runs an optimizer against a structure for a fixed number
// of iterations, feeding metrics and observers after every step.
package driver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/molopt/internal/energy"
	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/optimizer"
	"github.com/san-kum/molopt/internal/structure"
)

var (
	ErrNoCutoffs     = errors.New("driver: rebond requested without cutoffs")
	ErrNotRebondable = errors.New("driver: rebond requested for a collection that cannot rebond")
)

type Runner struct {
	stepper   optimizer.Stepper
	eval      optimizer.Evaluator
	metrics   []Metric
	observers []Observer
	log       *zap.Logger
}

func New(stepper optimizer.Stepper, eval optimizer.Evaluator) *Runner {
	return &Runner{
		stepper:   stepper,
		eval:      eval,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       zap.NewNop(),
	}
}

func (r *Runner) AddMetric(m Metric)         { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }
func (r *Runner) SetLogger(l *zap.Logger)    { r.log = l }
func (r *Runner) Stepper() optimizer.Stepper { return r.stepper }

// Run steps the collection cfg.Iterations times. The context is checked
// between steps only; a cancelled run returns the partial result together
// with the context error.
func (r *Runner) Run(ctx context.Context, c structure.Collection, cfg Config) (*Result, error) {
	if err := validateConfig(cfg, c); err != nil {
		return nil, err
	}

	result := &Result{
		Energies: make([]energy.State, 0, cfg.Iterations),
		Accepted: make([]bool, 0, cfg.Iterations),
		Metrics:  make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	initial, err := r.eval.Evaluate(c)
	if err != nil {
		return nil, fmt.Errorf("initial energy: %w", err)
	}
	result.Initial = initial
	result.Final = initial

	r.log.Info("optimization started",
		zap.Int("atoms", c.Len()),
		zap.Int("iterations", cfg.Iterations),
		zap.Int64("seed", cfg.Seed),
		zap.Float64("energy", initial.Total()),
	)

	reporter, _ := r.stepper.(OutcomeReporter)

	for i := 0; i < cfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			r.finish(result, c)
			return result, ctx.Err()
		default:
		}

		if cfg.Rebond && i > 0 {
			c.(Rebonder).Rebond(cfg.Cutoffs)
		}

		st, err := r.stepper.Step(i, c)
		if err != nil {
			r.finish(result, c)
			return result, fmt.Errorf("step %d: %w", i, err)
		}

		accepted := false
		if reporter != nil {
			accepted = reporter.Last().Accepted
		}

		sample := Sample{Iteration: i, Energy: st, Accepted: accepted}
		for _, m := range r.metrics {
			m.Observe(sample)
		}
		for _, obs := range r.observers {
			obs.OnStep(sample, c)
		}

		result.Energies = append(result.Energies, st)
		result.Accepted = append(result.Accepted, accepted)
		result.Final = st
		result.StepsTaken++
	}

	r.finish(result, c)

	r.log.Info("optimization finished",
		zap.Int("steps", result.StepsTaken),
		zap.Int("accepted", result.AcceptedCount()),
		zap.Float64("energy", result.Final.Total()),
	)

	return result, nil
}

func (r *Runner) finish(result *Result, c structure.Collection) {
	result.Positions = molecule.ClonePositions(c.Positions())
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config, c structure.Collection) error {
	if cfg.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", cfg.Iterations)
	}
	if c.Len() == 0 {
		return molecule.ErrEmptyStructure
	}
	if cfg.Rebond {
		if len(cfg.Cutoffs) == 0 {
			return ErrNoCutoffs
		}
		if _, ok := c.(Rebonder); !ok {
			return ErrNotRebondable
		}
	}
	return nil
}
