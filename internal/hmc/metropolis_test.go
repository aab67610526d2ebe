package hmc_test

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/hmcsim/internal/dynamo"
	"github.com/san-kum/hmcsim/internal/hmc"
	"github.com/san-kum/hmcsim/internal/integrators"
	"github.com/san-kum/hmcsim/internal/physics"
)

func newUphillSampler(t *testing.T, u float64) (*hmc.Metropolis, *shiftIntegrator) {
	t.Helper()
	integ := &shiftIntegrator{Delta: 1}
	m, err := hmc.NewStaticMetropolis(slopeSystem{Slope: 1}, integ, &scriptedRand{floats: []float64{u}}, 2)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	return m, integ
}

func TestMetropolis_AcceptKeepsDirection(t *testing.T) {
	m, _ := newUphillSampler(t, 0.01)
	s := dynamo.NewChainState([]float64{1}, []float64{0}, 1)

	next, st := m.SampleDynamics(s)

	if next.Dir != 1 {
		t.Errorf("direction after acceptance = %d, want 1", next.Dir)
	}
	if next.Pos[0] != 3 {
		t.Errorf("accepted position = %v, want 3", next.Pos[0])
	}
	if want := math.Exp(-2); math.Abs(st.AcceptProb-want) > 1e-12 {
		t.Errorf("accept prob = %v, want %v", st.AcceptProb, want)
	}
	if st.Hamiltonian != 3 {
		t.Errorf("hamiltonian = %v, want 3", st.Hamiltonian)
	}
	if st.NumSteps != 2 {
		t.Errorf("n_step = %d, want 2", st.NumSteps)
	}
}

func TestMetropolis_RejectFlipsDirection(t *testing.T) {
	m, _ := newUphillSampler(t, 0.9)
	s := dynamo.NewChainState([]float64{1}, []float64{0}, 1)

	next, st := m.SampleDynamics(s)

	if next != s {
		t.Error("rejected transition should return the current state")
	}
	if next.Dir != -1 {
		t.Errorf("direction after rejection = %d, want -1", next.Dir)
	}
	if next.Pos[0] != 1 {
		t.Errorf("position changed on rejection: %v", next.Pos[0])
	}
	if st.Hamiltonian != 1 {
		t.Errorf("hamiltonian = %v, want 1", st.Hamiltonian)
	}
}

func TestMetropolis_DownhillAlwaysAccepted(t *testing.T) {
	integ := &shiftIntegrator{Delta: -0.25}
	m, err := hmc.NewStaticMetropolis(slopeSystem{Slope: 1}, integ, &scriptedRand{floats: []float64{0.999}}, 2)
	if err != nil {
		t.Fatal(err)
	}
	s := dynamo.NewChainState([]float64{1}, []float64{0}, 1)

	next, st := m.SampleDynamics(s)

	if st.AcceptProb != 1 {
		t.Errorf("accept prob = %v, want exactly 1", st.AcceptProb)
	}
	if next.Dir != 1 || next.Pos[0] != 0.5 {
		t.Errorf("unexpected state after downhill move: pos %v dir %d", next.Pos[0], next.Dir)
	}
}

func TestMetropolis_IntegrationFailure(t *testing.T) {
	integ := &shiftIntegrator{Delta: 1, FailAt: 3}
	m, err := hmc.NewStaticMetropolis(slopeSystem{Slope: 1}, integ, &scriptedRand{floats: []float64{0}}, 5)
	if err != nil {
		t.Fatal(err)
	}
	s := dynamo.NewChainState([]float64{1}, []float64{0}, 1)

	next, st := m.SampleDynamics(s)

	if next != s {
		t.Error("failed trajectory should keep the original state")
	}
	if next.Dir != 1 || next.Pos[0] != 1 {
		t.Errorf("original state modified: pos %v dir %d", next.Pos[0], next.Dir)
	}
	if st.AcceptProb != 0 {
		t.Errorf("accept prob = %v, want 0", st.AcceptProb)
	}
	if st.NumSteps != 2 {
		t.Errorf("n_step = %d, want 2", st.NumSteps)
	}
}

func TestMetropolis_ZeroSteps(t *testing.T) {
	integ := &shiftIntegrator{Delta: 1}
	m, err := hmc.NewStaticMetropolis(slopeSystem{Slope: 1}, integ, &scriptedRand{floats: []float64{0.5}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	s := dynamo.NewChainState([]float64{1}, []float64{0.3}, -1)

	next, st := m.SampleDynamics(s)

	if next.Pos[0] != 1 || next.Mom[0] != 0.3 || next.Dir != -1 {
		t.Errorf("zero step transition changed the state: %+v", next)
	}
	if st.AcceptProb != 1 || st.NumSteps != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestRandomMetropolis_InvalidRange(t *testing.T) {
	sys := physics.NewEuclideanSystem(physics.NewStdGaussian(1), nil)
	integ := integrators.NewLeapfrog(sys, 0.1)

	tests := []struct {
		name   string
		lo, hi int
	}{
		{"reversed", 5, 3},
		{"zero lower", 0, 5},
		{"negative lower", -1, 5},
		{"empty", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hmc.NewRandomMetropolis(sys, integ, dynamo.NewRand(1), tt.lo, tt.hi)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestStaticMetropolis_NegativeSteps(t *testing.T) {
	_, err := hmc.NewStaticMetropolis(slopeSystem{}, &shiftIntegrator{}, dynamo.NewRand(1), -1)
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRandomLength_Range(t *testing.T) {
	length, err := hmc.NewRandomLength(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	rng := dynamo.NewRand(7)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		n := length.NumSteps(rng)
		if n < 2 || n > 4 {
			t.Fatalf("step count %d outside [2, 4]", n)
		}
		seen[n] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all of 2, 3, 4 to be drawn, got %v", seen)
	}
}

func TestMetropolis_AcceptProbIsProbability(t *testing.T) {
	sys := physics.NewEuclideanSystem(physics.NewDoubleWell(2), nil)
	integ := integrators.NewLeapfrog(sys, 0.2)
	rng := dynamo.NewRand(3)
	m, err := hmc.NewRandomMetropolis(sys, integ, rng, 5, 15)
	if err != nil {
		t.Fatal(err)
	}

	s := dynamo.NewChainState([]float64{1, -1}, nil, 1)
	for i := 0; i < 500; i++ {
		s = m.SampleMomentum(s)
		var st dynamo.TransitionStats
		s, st = m.SampleDynamics(s)
		if st.AcceptProb < 0 || st.AcceptProb > 1 || math.IsNaN(st.AcceptProb) {
			t.Fatalf("iteration %d: accept prob %v", i, st.AcceptProb)
		}
		if st.NumSteps < 5 || st.NumSteps > 15 {
			t.Fatalf("iteration %d: n_step %d", i, st.NumSteps)
		}
	}
}
