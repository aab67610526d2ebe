package dynamo

import "math"

// ChainState is a point in the joint position-momentum space together with
// the direction in which trajectories are integrated.
type ChainState struct {
	Pos []float64
	// Mom is nil until the momentum has been sampled.
	Mom []float64
	Dir int
}

func NewChainState(pos, mom []float64, dir int) *ChainState {
	if dir == 0 {
		dir = 1
	}
	return &ChainState{Pos: pos, Mom: mom, Dir: dir}
}

func (s *ChainState) Dim() int { return len(s.Pos) }

// Clone returns a deep copy, the copy shares no storage with s.
func (s *ChainState) Clone() *ChainState {
	c := &ChainState{Dir: s.Dir}
	c.Pos = cloneVec(s.Pos)
	if s.Mom != nil {
		c.Mom = cloneVec(s.Mom)
	}
	return c
}

func (s *ChainState) HasMomentum() bool { return s.Mom != nil }

func (s *ChainState) IsValid() bool {
	return finite(s.Pos) && finite(s.Mom)
}

func cloneVec(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// System is a Hamiltonian system on the joint position-momentum space.
type System interface {
	Energy(s *ChainState) float64
	MomentumGradient(s *ChainState) []float64
	SampleMomentum(s *ChainState, rng Rand) []float64
}

// EuclideanSystem is a separable system, H(q, p) = V(q) + K(p), which
// additionally exposes the potential gradient.
type EuclideanSystem interface {
	System
	PositionGradient(s *ChainState) []float64
	Dim() int
}

// Integrator advances a state by one step in the direction s.Dir. It must
// not mutate s and fails with an error wrapping ErrIntegration.
type Integrator interface {
	Step(s *ChainState) (*ChainState, error)
}

// TransitionStats summarises one dynamics transition. TreeDepth and
// Divergent are only meaningful for dynamic samplers.
type TransitionStats struct {
	Hamiltonian float64
	AcceptProb  float64
	NumSteps    int
	TreeDepth   int
	Divergent   bool
}

// Sampler performs the two Markov transitions of one chain iteration.
type Sampler interface {
	System() System
	SampleMomentum(s *ChainState) *ChainState
	SampleDynamics(s *ChainState) (*ChainState, TransitionStats)
	// Dynamic reports whether TreeDepth and Divergent are populated.
	Dynamic() bool
}
