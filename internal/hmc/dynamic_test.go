package hmc_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hmcsim/internal/dynamo"
	"github.com/san-kum/hmcsim/internal/hmc"
	"github.com/san-kum/hmcsim/internal/integrators"
	"github.com/san-kum/hmcsim/internal/physics"
	"github.com/san-kum/hmcsim/internal/sim"
)

func gaussianSystem(dim int) *physics.EuclideanSystem {
	return physics.NewEuclideanSystem(physics.NewStdGaussian(dim), nil)
}

var _ = Describe("DynamicMultinomial", func() {
	It("rejects invalid configuration", func() {
		sys := gaussianSystem(1)
		integ := integrators.NewLeapfrog(sys, 0.1)
		_, err := hmc.NewDynamicMultinomial(sys, integ, dynamo.NewRand(1), 0, 1000)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		_, err = hmc.NewDynamicMultinomial(sys, integ, dynamo.NewRand(1), 5, 0)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("flags a divergent first leaf and counts only its step", func() {
		integ := &shiftIntegrator{Delta: 10}
		d, err := hmc.NewDynamicMultinomial(slopeSystem{Slope: 100}, integ, &scriptedRand{floats: []float64{0.2}}, 5, 50)
		Expect(err).NotTo(HaveOccurred())
		s := dynamo.NewChainState([]float64{0}, []float64{1}, 1)

		next, st := d.SampleDynamics(s)

		Expect(next).To(BeIdenticalTo(s))
		Expect(st.Divergent).To(BeTrue())
		Expect(st.NumSteps).To(Equal(1))
		Expect(st.TreeDepth).To(Equal(0))
		Expect(st.AcceptProb).To(BeNumerically("~", 0, 1e-12))
	})

	It("terminates without counting a failed integrator step", func() {
		integ := &shiftIntegrator{Delta: 1, FailAt: 1}
		d, err := hmc.NewDynamicMultinomial(slopeSystem{Slope: 1}, integ, &scriptedRand{floats: []float64{0.7}}, 5, 1000)
		Expect(err).NotTo(HaveOccurred())
		s := dynamo.NewChainState([]float64{0}, []float64{1}, 1)

		next, st := d.SampleDynamics(s)

		Expect(next).To(BeIdenticalTo(s))
		Expect(st.Divergent).To(BeFalse())
		Expect(st.NumSteps).To(Equal(0))
		Expect(st.AcceptProb).To(Equal(0.0))
	})

	It("stops at the maximum tree depth when the trajectory never turns", func() {
		// A flat energy with constant momentum never satisfies the U-turn
		// criterion, so the tree doubles until the cap.
		integ := &shiftIntegrator{Delta: 1}
		d, err := hmc.NewDynamicMultinomial(slopeSystem{Slope: 0}, integ, &scriptedRand{floats: []float64{0.1}}, 4, 1000)
		Expect(err).NotTo(HaveOccurred())
		s := dynamo.NewChainState([]float64{0}, []float64{1}, 1)

		_, st := d.SampleDynamics(s)

		Expect(st.TreeDepth).To(Equal(3))
		Expect(st.NumSteps).To(Equal(1 + 2 + 4 + 8))
		Expect(st.AcceptProb).To(Equal(1.0))
		Expect(st.Divergent).To(BeFalse())
	})

	// With H = ln2*|x| and two doublings every leaf density is known: the
	// first leaf weighs 1/2, the second subtree holds an inner leaf of 1/2
	// and an outer leaf of 1/4. The outer leaf wins the subtree with
	// probability 1/3, and each new subtree replaces the current proposal
	// with probability 1/2. Draws come in the order: direction, progressive
	// draw, direction, subtree draw, progressive draw.
	DescribeTable("selects proposals by subtree weight",
		func(draws []float64, wantPos float64) {
			rng := &scriptedRand{floats: draws}
			d, err := hmc.NewDynamicMultinomial(slopeSystem{Slope: math.Ln2}, &shiftIntegrator{Delta: 1}, rng, 2, 1000)
			Expect(err).NotTo(HaveOccurred())
			s := dynamo.NewChainState([]float64{0}, []float64{1}, 1)

			next, st := d.SampleDynamics(s)

			Expect(rng.nf).To(Equal(5))
			Expect(next.Pos[0]).To(Equal(wantPos))
			Expect(st.NumSteps).To(Equal(3))
			Expect(st.TreeDepth).To(Equal(1))
			Expect(st.AcceptProb).To(BeNumerically("~", 1.25/3, 1e-12))
			Expect(st.Hamiltonian).To(BeNumerically("~", math.Ln2*math.Abs(wantPos), 1e-12))
		},
		Entry("outer leaf of the second subtree", []float64{0.2, 0.4, 0.7, 0.3, 0.45}, -2.0),
		Entry("inner leaf of the second subtree", []float64{0.2, 0.4, 0.7, 0.35, 0.45}, -1.0),
		Entry("second subtree rejected", []float64{0.2, 0.4, 0.7, 0.3, 0.55}, 1.0),
		Entry("both subtrees rejected", []float64{0.2, 0.6, 0.7, 0.3, 0.55}, 0.0),
		Entry("backward first", []float64{0.7, 0.4, 0.2, 0.3, 0.55}, -1.0),
		Entry("backward first, forward outer leaf", []float64{0.7, 0.6, 0.2, 0.3, 0.45}, 2.0),
	)

	It("does not modify the current state", func() {
		sys := gaussianSystem(3)
		d, err := hmc.NewDynamicMultinomial(sys, integrators.NewLeapfrog(sys, 0.2), dynamo.NewRand(9), 5, 1000)
		Expect(err).NotTo(HaveOccurred())
		s := dynamo.NewChainState([]float64{0.1, -0.4, 1.2}, []float64{1, 0.5, -0.3}, 1)
		orig := s.Clone()

		d.SampleDynamics(s)

		Expect(s.Pos).To(Equal(orig.Pos))
		Expect(s.Mom).To(Equal(orig.Mom))
	})

	Context("on a one dimensional standard Gaussian", func() {
		var result *sim.Result

		BeforeEach(func() {
			sys := gaussianSystem(1)
			d, err := hmc.NewDynamicMultinomial(sys, integrators.NewLeapfrog(sys, 0.25), dynamo.NewRand(2024), 5, 1000)
			Expect(err).NotTo(HaveOccurred())
			result, err = sim.New(d).Run(context.Background(), dynamo.NewChainState([]float64{0.5}, nil, 1), 5000)
			Expect(err).NotTo(HaveOccurred())
		})

		It("records valid statistics for every transition", func() {
			Expect(result.Stats.AcceptProb).To(HaveLen(4999))
			for i := range result.Stats.AcceptProb {
				Expect(result.Stats.AcceptProb[i]).To(BeNumerically(">=", 0))
				Expect(result.Stats.AcceptProb[i]).To(BeNumerically("<=", 1))
				Expect(result.Stats.TreeDepth[i]).To(BeNumerically("<", 5))
			}
			Expect(result.Stats.NumDivergent()).To(Equal(0))
		})

		It("samples the target moments", func() {
			mean, variance := stat.MeanVariance(result.Trace("pos").Column(0), nil)
			Expect(mean).To(BeNumerically("~", 0, 0.1))
			Expect(variance).To(BeNumerically("~", 1, 0.15))
		})
	})
})

var _ = Describe("DynamicMultinomial chain", func() {
	run := func(seed int64) *sim.Result {
		sys := gaussianSystem(2)
		d, err := hmc.NewDynamicMultinomial(sys, integrators.NewLeapfrog(sys, 0.3), dynamo.NewRand(seed), 5, 1000)
		Expect(err).NotTo(HaveOccurred())
		result, err := sim.New(d).Run(context.Background(), dynamo.NewChainState([]float64{0.3, -0.2}, nil, 1), 300)
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	It("is reproducible for a fixed seed", func() {
		a := run(11)
		b := run(11)
		Expect(a.Traces).To(Equal(b.Traces))
		Expect(a.Stats).To(Equal(b.Stats))

		c := run(12)
		Expect(c.Traces).NotTo(Equal(a.Traces))
	})
})

var _ = Describe("StaticMetropolis chain", func() {
	run := func(seed int64, n int) *sim.Result {
		sys := gaussianSystem(1)
		m, err := hmc.NewStaticMetropolis(sys, integrators.NewLeapfrog(sys, 0.25), dynamo.NewRand(seed), 6)
		Expect(err).NotTo(HaveOccurred())
		result, err := sim.New(m).Run(context.Background(), dynamo.NewChainState([]float64{0}, nil, 1), n)
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	It("samples a standard Gaussian", func() {
		result := run(42, 10000)
		pos := result.Trace("pos").Column(0)
		Expect(pos).To(HaveLen(10000))

		mean, variance := stat.MeanVariance(pos, nil)
		Expect(mean).To(BeNumerically("~", 0, 0.05))
		Expect(variance).To(BeNumerically("~", 1, 0.1))
	})

	It("is reproducible for a fixed seed", func() {
		a := run(7, 500)
		b := run(7, 500)
		Expect(a.Traces).To(Equal(b.Traces))
		Expect(a.Stats).To(Equal(b.Stats))
	})
})

var _ = Describe("Correlated momentum chains", func() {
	It("samples a standard Gaussian with partial refreshes", func() {
		sys := gaussianSystem(1)
		m, err := hmc.NewRandomMetropolisCorrelated(sys, integrators.NewLeapfrog(sys, 0.25), dynamo.NewRand(99), 4, 8, 0.8)
		Expect(err).NotTo(HaveOccurred())
		result, err := sim.New(m).Run(context.Background(), dynamo.NewChainState([]float64{0}, nil, 1), 10000)
		Expect(err).NotTo(HaveOccurred())

		mean, variance := stat.MeanVariance(result.Trace("pos").Column(0), nil)
		Expect(mean).To(BeNumerically("~", 0, 0.15))
		Expect(variance).To(BeNumerically("~", 1, 0.2))
	})

	It("rejects an invalid coefficient", func() {
		sys := gaussianSystem(1)
		_, err := hmc.NewStaticMetropolisCorrelated(sys, integrators.NewLeapfrog(sys, 0.1), dynamo.NewRand(1), 5, 2)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})
})
