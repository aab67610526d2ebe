package hmc_test

import (
	"math"

	"github.com/san-kum/hmcsim/internal/dynamo"
)

// scriptedRand replays fixed uniform draws so tests can pin decisions.
type scriptedRand struct {
	floats []float64
	ints   []int
	nf, ni int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[r.nf%len(r.floats)]
	r.nf++
	return v
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.ni%len(r.ints)]
	r.ni++
	return v % n
}

func (r *scriptedRand) NormFloat64() float64 { return 0.5 }

// shiftIntegrator moves Pos[0] by Delta*Dir per step and fails on call
// FailAt (1-based) when FailAt > 0.
type shiftIntegrator struct {
	Delta  float64
	FailAt int
	calls  int
}

func (f *shiftIntegrator) Step(s *dynamo.ChainState) (*dynamo.ChainState, error) {
	f.calls++
	if f.FailAt > 0 && f.calls == f.FailAt {
		return nil, &dynamo.IntegrationError{State: s, Wrapped: dynamo.ErrIntegration}
	}
	next := s.Clone()
	next.Pos[0] += f.Delta * float64(s.Dir)
	return next, nil
}

// slopeSystem has H = Slope*|Pos[0]|, independent of the momentum energy.
type slopeSystem struct {
	Slope float64
}

func (l slopeSystem) Energy(s *dynamo.ChainState) float64 {
	return l.Slope * math.Abs(s.Pos[0])
}

func (l slopeSystem) MomentumGradient(s *dynamo.ChainState) []float64 {
	g := make([]float64, len(s.Mom))
	copy(g, s.Mom)
	return g
}

func (l slopeSystem) SampleMomentum(s *dynamo.ChainState, rng dynamo.Rand) []float64 {
	m := make([]float64, s.Dim())
	for i := range m {
		m[i] = rng.NormFloat64()
	}
	return m
}
