package physics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/hmcsim/internal/dynamo"
)

// EuclideanSystem is H(q, p) = V(q) + p'M^-1p/2 for a diagonal mass matrix M.
type EuclideanSystem struct {
	Potential Potential
	// Mass is the diagonal of M, nil means identity.
	Mass []float64
}

func NewEuclideanSystem(pot Potential, mass []float64) *EuclideanSystem {
	return &EuclideanSystem{Potential: pot, Mass: mass}
}

func (e *EuclideanSystem) Dim() int { return e.Potential.Dim() }

func (e *EuclideanSystem) mass(i int) float64 {
	if e.Mass == nil {
		return 1
	}
	return e.Mass[i]
}

func (e *EuclideanSystem) Kinetic(s *dynamo.ChainState) float64 {
	return 0.5 * floats.Dot(s.Mom, e.MomentumGradient(s))
}

func (e *EuclideanSystem) Energy(s *dynamo.ChainState) float64 {
	return e.Potential.Value(s.Pos) + e.Kinetic(s)
}

func (e *EuclideanSystem) PositionGradient(s *dynamo.ChainState) []float64 {
	return e.Potential.Gradient(s.Pos)
}

func (e *EuclideanSystem) MomentumGradient(s *dynamo.ChainState) []float64 {
	grad := make([]float64, len(s.Mom))
	if e.Mass == nil {
		copy(grad, s.Mom)
		return grad
	}
	return floats.DivTo(grad, s.Mom, e.Mass)
}

func (e *EuclideanSystem) SampleMomentum(s *dynamo.ChainState, rng dynamo.Rand) []float64 {
	mom := make([]float64, s.Dim())
	for i := range mom {
		mom[i] = math.Sqrt(e.mass(i)) * rng.NormFloat64()
	}
	return mom
}
