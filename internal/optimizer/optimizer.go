// Package optimizer implements greedy stochastic local search over atom
// positions. Each step perturbs the best known configuration, keeps the move
// when the energy does not rise and rolls it back otherwise.
package optimizer

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/molopt/internal/energy"
	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/structure"
)

var (
	ErrAtomCountChanged = errors.New("optimizer: atom count changed")
	ErrShiftCount       = errors.New("optimizer: perturber returned wrong number of shifts")
)

// Phase is the state of the optimizer after its most recent transition.
type Phase int

const (
	Uninitialized Phase = iota
	Ready
	Perturbed
	Accepted
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Perturbed:
		return "perturbed"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Stepper advances a collection by one optimization step, mutating its
// positions in place.
type Stepper interface {
	Step(iteration int, c structure.Collection) (energy.State, error)
}

// Evaluator computes the energy of a collection's current positions.
type Evaluator interface {
	Evaluate(c structure.Collection) (energy.State, error)
}

// Outcome records one step.
type Outcome struct {
	Iteration int
	Initial   energy.State
	Candidate energy.State
	Accepted  bool
}

// Optimizer owns the best known positions for the lifetime of a run. It is
// not safe for concurrent use.
type Optimizer struct {
	eval      Evaluator
	rng       *rand.Rand
	perturber Perturber
	log       *zap.Logger

	best  []molecule.Vec3
	phase Phase
	last  Outcome
	steps int
}

var _ Stepper = (*Optimizer)(nil)

type Option func(*Optimizer)

func WithSeed(seed int64) Option {
	return func(o *Optimizer) { o.rng = rand.New(rand.NewSource(seed)) }
}

func WithRand(rng *rand.Rand) Option {
	return func(o *Optimizer) { o.rng = rng }
}

func WithPerturber(p Perturber) Option {
	return func(o *Optimizer) { o.perturber = p }
}

// WithMaxShift uses a UniformPerturber bounded by d.
func WithMaxShift(d float64) Option {
	return func(o *Optimizer) { o.perturber = UniformPerturber{MaxShift: d} }
}

// WithInitialPositions seeds the best configuration at construction, so the
// first step starts from pos rather than from the buffer it is given.
func WithInitialPositions(pos []molecule.Vec3) Option {
	return func(o *Optimizer) {
		o.best = molecule.ClonePositions(pos)
		o.phase = Ready
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Optimizer) { o.log = l }
}

func New(eval Evaluator, opts ...Option) *Optimizer {
	o := &Optimizer{
		eval:      eval,
		perturber: UniformPerturber{MaxShift: DefaultMaxShift},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Step runs one perturb, evaluate, accept-or-rollback cycle. The first call
// adopts the buffer as the best configuration unless initial positions were
// given, then proceeds as any other step. On return the buffer holds the
// best configuration and the returned state is its energy.
func (o *Optimizer) Step(iteration int, c structure.Collection) (energy.State, error) {
	pos := c.Positions()

	if o.best == nil {
		o.best = molecule.ClonePositions(pos)
		o.phase = Ready
	}
	if len(pos) != len(o.best) {
		return energy.State{}, fmt.Errorf("%w: have %d, want %d", ErrAtomCountChanged, len(pos), len(o.best))
	}

	initial, err := o.eval.Evaluate(c)
	if err != nil {
		return energy.State{}, fmt.Errorf("evaluate initial: %w", err)
	}

	drifted := !samePositions(pos, o.best)
	snapshot := molecule.ClonePositions(o.best)

	shifts := o.perturber.Perturb(o.rng, len(pos))
	if len(shifts) != len(pos) {
		return energy.State{}, fmt.Errorf("%w: got %d for %d atoms", ErrShiftCount, len(shifts), len(pos))
	}
	for i := range o.best {
		o.best[i] = o.best[i].Add(shifts[i])
		pos[i] = o.best[i]
	}
	o.phase = Perturbed

	candidate, err := o.eval.Evaluate(c)
	if err != nil {
		copy(o.best, snapshot)
		copy(pos, snapshot)
		o.phase = Rejected
		return energy.State{}, fmt.Errorf("evaluate candidate: %w", err)
	}

	accepted := candidate.Total() <= initial.Total()
	result := candidate

	if accepted {
		o.phase = Accepted
	} else {
		copy(o.best, snapshot)
		copy(pos, o.best)
		o.phase = Rejected

		result = initial
		if drifted {
			result, err = o.eval.Evaluate(c)
			if err != nil {
				return energy.State{}, fmt.Errorf("evaluate best: %w", err)
			}
		}
	}

	o.steps++
	o.last = Outcome{
		Iteration: iteration,
		Initial:   initial,
		Candidate: candidate,
		Accepted:  accepted,
	}

	o.log.Debug("optimizer step",
		zap.Int("iteration", iteration),
		zap.Float64("initial", initial.Total()),
		zap.Float64("candidate", candidate.Total()),
		zap.Bool("accepted", accepted),
		zap.Bool("drifted", drifted),
	)

	return result, nil
}

// Last returns the outcome of the most recent step.
func (o *Optimizer) Last() Outcome { return o.last }

// Best returns a copy of the best known positions, or nil before the first
// step.
func (o *Optimizer) Best() []molecule.Vec3 {
	if o.best == nil {
		return nil
	}
	return molecule.ClonePositions(o.best)
}

func (o *Optimizer) Phase() Phase { return o.phase }

// Steps returns the number of completed steps.
func (o *Optimizer) Steps() int { return o.steps }

func samePositions(a, b []molecule.Vec3) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
