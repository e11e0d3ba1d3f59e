package optimizer_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/molopt/internal/energy"
	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/optimizer"
	"github.com/san-kum/molopt/internal/structure"
	"github.com/san-kum/molopt/internal/topology"
)

// carbonPair returns two bonded carbons d apart on the x axis.
func carbonPair(d float64) *structure.Structure {
	atoms := []molecule.Atom{
		{Species: molecule.Carbon, Mass: 12.0},
		{Species: molecule.Carbon, Position: molecule.Vec3{X: d}, Mass: 12.0},
	}
	s := structure.NewWithoutBonds("pair", atoms)
	s.SetGraph(topology.NewGraph(2, []topology.Bond{{I: 0, J: 1}}))
	return s
}

func carbonChain(n int, gap float64) *structure.Structure {
	atoms := make([]molecule.Atom, n)
	for i := range atoms {
		atoms[i] = molecule.Atom{Species: molecule.Carbon, Position: molecule.Vec3{X: float64(i) * gap}, Mass: 12.0}
	}
	return structure.New("chain", atoms, molecule.DefaultBondDistances())
}

// stretch moves the last atom by dx along x.
func stretch(dx float64) optimizer.Perturber {
	return optimizer.PerturberFunc(func(_ *rand.Rand, n int) []molecule.Vec3 {
		shifts := make([]molecule.Vec3, n)
		shifts[n-1] = molecule.Vec3{X: dx}
		return shifts
	})
}

var _ = Describe("Optimizer", func() {
	var eval *energy.Evaluator

	BeforeEach(func() {
		eval = energy.New(nil)
	})

	Describe("phases", func() {
		It("starts uninitialized", func() {
			opt := optimizer.New(eval, optimizer.WithSeed(1))
			Expect(opt.Phase()).To(Equal(optimizer.Uninitialized))
			Expect(opt.Best()).To(BeNil())
			Expect(opt.Phase().String()).To(Equal("uninitialized"))
		})

		It("is ready when initial positions are given", func() {
			s := carbonPair(1.6)
			opt := optimizer.New(eval, optimizer.WithInitialPositions(s.Positions()))
			Expect(opt.Phase()).To(Equal(optimizer.Ready))
			Expect(opt.Best()).To(Equal(s.Positions()))
		})

		It("reports accepted and rejected steps", func() {
			s := carbonPair(1.5)

			opt := optimizer.New(eval, optimizer.WithPerturber(stretch(0.05)))
			_, err := opt.Step(0, s)
			Expect(err).NotTo(HaveOccurred())
			Expect(opt.Phase()).To(Equal(optimizer.Accepted))

			opt = optimizer.New(eval, optimizer.WithPerturber(stretch(-0.05)))
			_, err = opt.Step(0, s)
			Expect(err).NotTo(HaveOccurred())
			Expect(opt.Phase()).To(Equal(optimizer.Rejected))
			Expect(opt.Phase().String()).To(Equal("rejected"))
		})
	})

	Describe("a pair at equilibrium", func() {
		It("returns the pre-call positions when every move raises the energy", func() {
			s := carbonPair(1.6)
			before := molecule.ClonePositions(s.Positions())

			opt := optimizer.New(eval, optimizer.WithSeed(7))
			st, err := opt.Step(0, s)
			Expect(err).NotTo(HaveOccurred())

			Expect(opt.Last().Accepted).To(BeFalse())
			Expect(st.Total()).To(BeNumerically("~", 0, 1e-12))
			for i, p := range s.Positions() {
				Expect(p.X).To(BeNumerically("~", before[i].X, 1e-12))
				Expect(p.Y).To(BeNumerically("~", before[i].Y, 1e-12))
				Expect(p.Z).To(BeNumerically("~", before[i].Z, 1e-12))
			}
		})
	})

	Describe("rollback", func() {
		It("restores the best positions exactly", func() {
			s := carbonPair(1.6)
			before := molecule.ClonePositions(s.Positions())

			opt := optimizer.New(eval, optimizer.WithPerturber(stretch(0.5)))
			st, err := opt.Step(3, s)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Positions()).To(Equal(before))
			Expect(opt.Best()).To(Equal(before))
			Expect(st).To(Equal(opt.Last().Initial))
			Expect(opt.Last().Iteration).To(Equal(3))
			Expect(opt.Last().Candidate.Bond).To(BeNumerically("~", 62.5, 1e-9))
		})

		It("undoes drift of the buffer between steps", func() {
			s := carbonPair(1.6)
			opt := optimizer.New(eval, optimizer.WithPerturber(stretch(0.5)))
			_, err := opt.Step(0, s)
			Expect(err).NotTo(HaveOccurred())
			best := opt.Best()

			s.Positions()[1] = molecule.Vec3{X: 1.61}

			st, err := opt.Step(1, s)
			Expect(err).NotTo(HaveOccurred())
			Expect(opt.Last().Accepted).To(BeFalse())
			Expect(s.Positions()).To(Equal(best))
			Expect(st.Total()).To(Equal(0.0))
			Expect(opt.Last().Initial.Total()).To(BeNumerically(">", 0))
		})

		It("starts from the constructor positions", func() {
			s := carbonPair(1.5)
			start := carbonPair(1.6).Positions()

			opt := optimizer.New(eval,
				optimizer.WithInitialPositions(start),
				optimizer.WithPerturber(stretch(0.5)))
			_, err := opt.Step(0, s)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Positions()).To(Equal(start))
		})
	})

	Describe("acceptance", func() {
		It("keeps a move that lowers the energy", func() {
			s := carbonPair(1.5)

			opt := optimizer.New(eval, optimizer.WithPerturber(stretch(0.05)))
			st, err := opt.Step(0, s)
			Expect(err).NotTo(HaveOccurred())

			Expect(opt.Last().Accepted).To(BeTrue())
			Expect(s.Positions()[1].X).To(BeNumerically("~", 1.55, 1e-12))
			Expect(opt.Best()).To(Equal(s.Positions()))
			Expect(st.Total()).To(BeNumerically("<", opt.Last().Initial.Total()))
		})

		It("keeps a move that leaves the energy unchanged", func() {
			s := carbonPair(1.5)

			opt := optimizer.New(eval, optimizer.WithPerturber(stretch(0)))
			_, err := opt.Step(0, s)
			Expect(err).NotTo(HaveOccurred())
			Expect(opt.Last().Accepted).To(BeTrue())
		})
	})

	Describe("a chain with a fixed seed", func() {
		It("never raises the energy of the best configuration", func() {
			s := carbonChain(6, 1.45)
			opt := optimizer.New(eval, optimizer.WithSeed(42))

			prev, err := eval.Evaluate(s)
			Expect(err).NotTo(HaveOccurred())

			accepted := 0
			for i := 0; i < 300; i++ {
				st, err := opt.Step(i, s)
				Expect(err).NotTo(HaveOccurred())
				Expect(opt.Last().Initial).To(Equal(prev))
				Expect(st.Total()).To(BeNumerically("<=", prev.Total()))
				if opt.Last().Accepted {
					accepted++
				}
				prev = st
			}
			Expect(accepted).To(BeNumerically(">", 0))
			Expect(opt.Steps()).To(Equal(300))
		})

		It("reproduces the same trajectory", func() {
			a, b := carbonChain(5, 1.45), carbonChain(5, 1.45)
			optA := optimizer.New(eval, optimizer.WithSeed(99))
			optB := optimizer.New(eval, optimizer.WithRand(rand.New(rand.NewSource(99))))

			for i := 0; i < 50; i++ {
				ea, err := optA.Step(i, a)
				Expect(err).NotTo(HaveOccurred())
				eb, err := optB.Step(i, b)
				Expect(err).NotTo(HaveOccurred())
				Expect(ea).To(Equal(eb))
			}
			Expect(a.Positions()).To(Equal(b.Positions()))
		})
	})

	Describe("errors", func() {
		It("rejects a collection whose atom count changed", func() {
			opt := optimizer.New(eval, optimizer.WithSeed(1))
			_, err := opt.Step(0, carbonPair(1.6))
			Expect(err).NotTo(HaveOccurred())

			_, err = opt.Step(1, carbonChain(3, 1.5))
			Expect(err).To(MatchError(optimizer.ErrAtomCountChanged))
		})

		It("surfaces missing bond data without moving atoms", func() {
			atoms := []molecule.Atom{
				{Species: molecule.Carbon, Mass: 12.0},
				{Species: molecule.Carbon, Position: molecule.Vec3{X: 1.5}, Mass: 12.0},
			}
			s := structure.NewWithoutBonds("bare", atoms)
			before := molecule.ClonePositions(s.Positions())

			opt := optimizer.New(eval, optimizer.WithSeed(1))
			_, err := opt.Step(0, s)
			Expect(err).To(MatchError(topology.ErrNoBondData))
			Expect(s.Positions()).To(Equal(before))
		})

		It("rejects a perturber returning the wrong number of shifts", func() {
			bad := optimizer.PerturberFunc(func(_ *rand.Rand, _ int) []molecule.Vec3 {
				return []molecule.Vec3{{X: 1}}
			})
			opt := optimizer.New(eval, optimizer.WithPerturber(bad))
			_, err := opt.Step(0, carbonPair(1.6))
			Expect(err).To(MatchError(optimizer.ErrShiftCount))
		})
	})
})

var _ = Describe("UniformPerturber", func() {
	It("stays within the shift bound on every axis", func() {
		p := optimizer.UniformPerturber{MaxShift: optimizer.DefaultMaxShift}
		rng := rand.New(rand.NewSource(3))

		shifts := p.Perturb(rng, 500)
		Expect(shifts).To(HaveLen(500))
		for _, s := range shifts {
			for _, v := range []float64{s.X, s.Y, s.Z} {
				Expect(v).To(BeNumerically(">=", -0.05))
				Expect(v).To(BeNumerically("<=", 0.05))
			}
		}
	})
})
