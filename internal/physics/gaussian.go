package physics

// Gaussian is a product of independent normals.
type Gaussian struct {
	Mean []float64
	Std  []float64
}

func NewGaussian(mean, std []float64) *Gaussian {
	return &Gaussian{Mean: mean, Std: std}
}

func NewStdGaussian(dim int) *Gaussian {
	mean := make([]float64, dim)
	std := make([]float64, dim)
	for i := range std {
		std[i] = 1
	}
	return NewGaussian(mean, std)
}

func (g *Gaussian) Dim() int { return len(g.Mean) }

func (g *Gaussian) Value(pos []float64) float64 {
	v := 0.0
	for i, x := range pos {
		z := (x - g.Mean[i]) / g.Std[i]
		v += 0.5 * z * z
	}
	return v
}

func (g *Gaussian) Gradient(pos []float64) []float64 {
	grad := make([]float64, len(pos))
	for i, x := range pos {
		grad[i] = (x - g.Mean[i]) / (g.Std[i] * g.Std[i])
	}
	return grad
}

// GetParams reports the first coordinate's mean and std. SetParam applies
// to every coordinate.
func (g *Gaussian) GetParams() map[string]float64 {
	if len(g.Mean) == 0 {
		return map[string]float64{}
	}
	return map[string]float64{"mean": g.Mean[0], "std": g.Std[0]}
}

func (g *Gaussian) SetParam(n string, v float64) error {
	var dst []float64
	switch n {
	case "mean":
		dst = g.Mean
	case "std":
		dst = g.Std
	default:
		return unknownParam(n)
	}
	for i := range dst {
		dst[i] = v
	}
	return nil
}
