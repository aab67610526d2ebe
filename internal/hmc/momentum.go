package hmc

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/hmcsim/internal/dynamo"
)

// MomentumRefresh is the Gibbs step on the momentum given the position.
// Implementations assign a new momentum slice rather than writing into the
// old one, so values already recorded from s stay intact.
type MomentumRefresh interface {
	Refresh(sys dynamo.System, s *dynamo.ChainState, rng dynamo.Rand) *dynamo.ChainState
}

// IndependentRefresh resamples the momentum from its conditional.
type IndependentRefresh struct{}

func (IndependentRefresh) Refresh(sys dynamo.System, s *dynamo.ChainState, rng dynamo.Rand) *dynamo.ChainState {
	s.Mom = sys.SampleMomentum(s, rng)
	return s
}

// CorrelatedRefresh performs the Crank-Nicolson update
//
//	p <- sqrt(1 - c^2) p + c p_ind
//
// which leaves a zero mean Gaussian momentum conditional invariant. Coeff 1
// is an independent resample, coeff 0 keeps the momentum, so that
// consecutive trajectories continue along the same path.
type CorrelatedRefresh struct {
	Coeff float64
}

func NewCorrelatedRefresh(coeff float64) (CorrelatedRefresh, error) {
	if !(coeff >= 0 && coeff <= 1) {
		return CorrelatedRefresh{}, dynamo.ConfigError("momentum resample coefficient must be in [0, 1], got %v", coeff)
	}
	return CorrelatedRefresh{Coeff: coeff}, nil
}

func (c CorrelatedRefresh) Refresh(sys dynamo.System, s *dynamo.ChainState, rng dynamo.Rand) *dynamo.ChainState {
	switch {
	case s.Mom == nil || c.Coeff == 1:
		s.Mom = sys.SampleMomentum(s, rng)
	case c.Coeff != 0:
		ind := sys.SampleMomentum(s, rng)
		keep := math.Sqrt(1 - c.Coeff*c.Coeff)
		mom := make([]float64, len(ind))
		floats.ScaleTo(mom, keep, s.Mom)
		floats.AddScaled(mom, c.Coeff, ind)
		s.Mom = mom
	}
	return s
}
