package physics

// DoubleWell places a bistable quartic well A(x^2-B)^2 on every coordinate,
// with modes at ±sqrt(B).
type DoubleWell struct {
	N    int
	A, B float64
}

func NewDoubleWell(dim int) *DoubleWell {
	return &DoubleWell{N: dim, A: 1.0, B: 1.0}
}

func (d *DoubleWell) Dim() int { return d.N }

func (d *DoubleWell) Value(pos []float64) float64 {
	v := 0.0
	for _, x := range pos {
		w := x*x - d.B
		v += d.A * w * w
	}
	return v
}

func (d *DoubleWell) Gradient(pos []float64) []float64 {
	grad := make([]float64, len(pos))
	for i, x := range pos {
		grad[i] = 4 * d.A * x * (x*x - d.B)
	}
	return grad
}

func (d *DoubleWell) GetParams() map[string]float64 {
	return map[string]float64{"A": d.A, "B": d.B}
}

func (d *DoubleWell) SetParam(n string, v float64) error {
	switch n {
	case "A":
		d.A = v
	case "B":
		d.B = v
	default:
		return unknownParam(n)
	}
	return nil
}
