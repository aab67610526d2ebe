package hmc

import (
	"github.com/san-kum/hmcsim/internal/dynamo"
)

// Metropolis generates a trajectory from the current state in its current
// integration direction and uses the end point, with the direction negated
// so that the move is an involution, as a Metropolis proposal. The direction
// is negated again whatever the decision: it is restored on acceptance and
// flipped on rejection.
type Metropolis struct {
	base
	length TrajectoryLength
}

// NewMetropolis combines a trajectory length strategy with a momentum
// refresh strategy.
func NewMetropolis(sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand, length TrajectoryLength, refresh MomentumRefresh) *Metropolis {
	if refresh == nil {
		refresh = IndependentRefresh{}
	}
	return &Metropolis{
		base:   base{sys: sys, integ: integ, rng: rng, refresh: refresh},
		length: length,
	}
}

// NewStaticMetropolis is the original Hybrid Monte Carlo algorithm.
func NewStaticMetropolis(sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand, nStep int) (*Metropolis, error) {
	length, err := NewStaticLength(nStep)
	if err != nil {
		return nil, err
	}
	return NewMetropolis(sys, integ, rng, length, IndependentRefresh{}), nil
}

func NewRandomMetropolis(sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand, lo, hi int) (*Metropolis, error) {
	length, err := NewRandomLength(lo, hi)
	if err != nil {
		return nil, err
	}
	return NewMetropolis(sys, integ, rng, length, IndependentRefresh{}), nil
}

func NewStaticMetropolisCorrelated(sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand, nStep int, coeff float64) (*Metropolis, error) {
	length, err := NewStaticLength(nStep)
	if err != nil {
		return nil, err
	}
	refresh, err := NewCorrelatedRefresh(coeff)
	if err != nil {
		return nil, err
	}
	return NewMetropolis(sys, integ, rng, length, refresh), nil
}

func NewRandomMetropolisCorrelated(sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand, lo, hi int, coeff float64) (*Metropolis, error) {
	length, err := NewRandomLength(lo, hi)
	if err != nil {
		return nil, err
	}
	refresh, err := NewCorrelatedRefresh(coeff)
	if err != nil {
		return nil, err
	}
	return NewMetropolis(sys, integ, rng, length, refresh), nil
}

func (m *Metropolis) Dynamic() bool { return false }

func (m *Metropolis) SampleDynamics(s *dynamo.ChainState) (*dynamo.ChainState, dynamo.TransitionStats) {
	nStep := m.length.NumSteps(m.rng)
	return m.transition(s, nStep)
}

func (m *Metropolis) transition(s *dynamo.ChainState, nStep int) (*dynamo.ChainState, dynamo.TransitionStats) {
	hInit := m.sys.Energy(s)

	proposal := s.Clone()
	for k := 0; k < nStep; k++ {
		next, err := m.integ.Step(proposal)
		if err != nil {
			log.Warningf("Terminating trajectory due to integrator error: %v", err)
			return s, dynamo.TransitionStats{Hamiltonian: hInit, AcceptProb: 0, NumSteps: k}
		}
		proposal = next
	}

	proposal.Dir = -proposal.Dir
	hFinal := m.sys.Energy(proposal)
	accept := acceptProb(hInit, hFinal)

	next, h := s, hInit
	if m.rng.Float64() < accept {
		next, h = proposal, hFinal
	}
	next.Dir = -next.Dir

	return next, dynamo.TransitionStats{Hamiltonian: h, AcceptProb: accept, NumSteps: nStep}
}
