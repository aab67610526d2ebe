package physics

// Rosenbrock is the banana shaped density with
// V(x) = sum_i B(x_{i+1} - x_i^2)^2 + (A - x_i)^2.
type Rosenbrock struct {
	N    int
	A, B float64
}

func NewRosenbrock(dim int) *Rosenbrock {
	return &Rosenbrock{N: dim, A: 1.0, B: 5.0}
}

func (r *Rosenbrock) Dim() int { return r.N }

func (r *Rosenbrock) Value(pos []float64) float64 {
	v := 0.0
	for i := 0; i < len(pos)-1; i++ {
		c := pos[i+1] - pos[i]*pos[i]
		d := r.A - pos[i]
		v += r.B*c*c + d*d
	}
	return v
}

func (r *Rosenbrock) Gradient(pos []float64) []float64 {
	grad := make([]float64, len(pos))
	for i := 0; i < len(pos)-1; i++ {
		c := pos[i+1] - pos[i]*pos[i]
		grad[i] += -4*r.B*pos[i]*c - 2*(r.A-pos[i])
		grad[i+1] += 2 * r.B * c
	}
	return grad
}

func (r *Rosenbrock) GetParams() map[string]float64 {
	return map[string]float64{"A": r.A, "B": r.B}
}

func (r *Rosenbrock) SetParam(n string, v float64) error {
	switch n {
	case "A":
		r.A = v
	case "B":
		r.B = v
	default:
		return unknownParam(n)
	}
	return nil
}
