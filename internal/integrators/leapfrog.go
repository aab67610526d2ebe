package integrators

import (
	"github.com/san-kum/hmcsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Leapfrog is the Störmer-Verlet scheme for separable Hamiltonians. It is
// reversible and volume preserving, the step direction is taken from the
// state being advanced.
type Leapfrog struct {
	sys      dynamo.EuclideanSystem
	stepSize float64
}

func NewLeapfrog(sys dynamo.EuclideanSystem, stepSize float64) *Leapfrog {
	return &Leapfrog{sys: sys, stepSize: stepSize}
}

func (l *Leapfrog) StepSize() float64 { return l.stepSize }

func (l *Leapfrog) Step(s *dynamo.ChainState) (*dynamo.ChainState, error) {
	if s.Mom == nil {
		return nil, dynamo.ErrNoMomentum
	}
	n := s.Dim()
	dt := l.stepSize * float64(s.Dir)
	halfDt := 0.5 * dt

	next := &dynamo.ChainState{
		Pos: make([]float64, n),
		Mom: make([]float64, n),
		Dir: s.Dir,
	}

	floats.AddScaledTo(next.Mom, s.Mom, -halfDt, l.sys.PositionGradient(s))
	// dK/dp only depends on the momentum, the old position is fine here.
	scratch := &dynamo.ChainState{Pos: s.Pos, Mom: next.Mom, Dir: s.Dir}
	floats.AddScaledTo(next.Pos, s.Pos, dt, l.sys.MomentumGradient(scratch))
	floats.AddScaled(next.Mom, -halfDt, l.sys.PositionGradient(next))

	if !next.IsValid() {
		return nil, &dynamo.IntegrationError{State: next, Wrapped: dynamo.ErrIntegration}
	}
	return next, nil
}
