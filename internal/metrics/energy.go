package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hmcsim/internal/dynamo"
	"github.com/san-kum/hmcsim/internal/sim"
)

// EBFMI is the energy Bayesian fraction of missing information: the mean
// squared change of the Hamiltonian between transitions divided by its
// variance. Values well below 0.3 indicate the momentum refresh explores the
// energy levels poorly.
type EBFMI struct {
	energies []float64
}

func NewEBFMI() *EBFMI { return &EBFMI{} }

func (e *EBFMI) Name() string { return "e_bfmi" }

func (e *EBFMI) Observe(ts dynamo.TransitionStats) {
	e.energies = append(e.energies, ts.Hamiltonian)
}

func (e *EBFMI) Value() float64 {
	return EnergyBFMI(e.energies)
}

func (e *EBFMI) Reset() {
	e.energies = e.energies[:0]
}

// EnergyBFMI computes the E-BFMI of a sequence of Hamiltonian values. It
// returns NaN for fewer than two values or a constant sequence.
func EnergyBFMI(h []float64) float64 {
	n := len(h)
	if n < 2 {
		return math.NaN()
	}
	mean := stat.Mean(h, nil)

	var num, den float64
	for i, v := range h {
		if i > 0 {
			d := v - h[i-1]
			num += d * d
		}
		den += (v - mean) * (v - mean)
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// EnergyDrift tracks the largest absolute distance of the chain Hamiltonian
// from its first observed value.
type EnergyDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(ts dynamo.TransitionStats) {
	if e.samples == 0 {
		e.initial = ts.Hamiltonian
	}
	e.samples++
	if math.IsNaN(ts.Hamiltonian) {
		return
	}
	e.maxDrift = math.Max(e.maxDrift, math.Abs(ts.Hamiltonian-e.initial))
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// Default returns the metrics attached to every chain run by the CLI.
func Default(dynamic bool) []sim.Metric {
	ms := []sim.Metric{NewAcceptRate(), NewMeanSteps(), NewEBFMI(), NewEnergyDrift()}
	if dynamic {
		ms = append(ms, NewMeanTreeDepth(), NewDivergenceCount())
	}
	return ms
}
