package physics

import "fmt"

// Potential is the negative log density (up to a constant) of a target.
type Potential interface {
	Value(pos []float64) float64
	Gradient(pos []float64) []float64
	Dim() int
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

func unknownParam(name string) error {
	return fmt.Errorf("unknown parameter: %s", name)
}
