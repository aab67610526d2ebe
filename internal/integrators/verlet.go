package integrators

import (
	"github.com/san-kum/hmcsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Verlet is the position Verlet scheme: half drift, full kick, half drift.
// It needs one gradient evaluation per step like Leapfrog but evaluates it
// between the two positions.
type Verlet struct {
	sys      dynamo.EuclideanSystem
	stepSize float64
}

func NewVerlet(sys dynamo.EuclideanSystem, stepSize float64) *Verlet {
	return &Verlet{sys: sys, stepSize: stepSize}
}

func (v *Verlet) StepSize() float64 { return v.stepSize }

func (v *Verlet) Step(s *dynamo.ChainState) (*dynamo.ChainState, error) {
	if s.Mom == nil {
		return nil, dynamo.ErrNoMomentum
	}
	n := s.Dim()
	dt := v.stepSize * float64(s.Dir)
	halfDt := 0.5 * dt

	mid := &dynamo.ChainState{Pos: make([]float64, n), Mom: s.Mom, Dir: s.Dir}
	floats.AddScaledTo(mid.Pos, s.Pos, halfDt, v.sys.MomentumGradient(s))

	next := &dynamo.ChainState{
		Pos: make([]float64, n),
		Mom: make([]float64, n),
		Dir: s.Dir,
	}
	floats.AddScaledTo(next.Mom, s.Mom, -dt, v.sys.PositionGradient(mid))
	mid.Mom = next.Mom
	floats.AddScaledTo(next.Pos, mid.Pos, halfDt, v.sys.MomentumGradient(mid))

	if !next.IsValid() {
		return nil, &dynamo.IntegrationError{State: next, Wrapped: dynamo.ErrIntegration}
	}
	return next, nil
}
