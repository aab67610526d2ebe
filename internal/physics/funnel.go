package physics

import "math"

// Funnel is Neal's funnel: v ~ N(0, Scale^2) and x_i | v ~ N(0, exp(v)).
// Pos[0] holds v. The neck of the funnel is where leapfrog trajectories
// typically diverge.
type Funnel struct {
	N     int
	Scale float64
}

func NewFunnel(dim int) *Funnel {
	return &Funnel{N: dim, Scale: 3.0}
}

func (f *Funnel) Dim() int { return f.N }

func (f *Funnel) Value(pos []float64) float64 {
	v := pos[0]
	val := 0.5 * v * v / (f.Scale * f.Scale)
	ev := math.Exp(-v)
	for _, x := range pos[1:] {
		val += 0.5*x*x*ev + 0.5*v
	}
	return val
}

func (f *Funnel) Gradient(pos []float64) []float64 {
	grad := make([]float64, len(pos))
	v := pos[0]
	ev := math.Exp(-v)
	grad[0] = v / (f.Scale * f.Scale)
	for i, x := range pos[1:] {
		grad[0] += 0.5 - 0.5*x*x*ev
		grad[i+1] = x * ev
	}
	return grad
}

func (f *Funnel) GetParams() map[string]float64 {
	return map[string]float64{"scale": f.Scale}
}

func (f *Funnel) SetParam(n string, v float64) error {
	if n != "scale" {
		return unknownParam(n)
	}
	f.Scale = v
	return nil
}
