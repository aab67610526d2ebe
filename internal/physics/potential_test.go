package physics

import (
	"math"
	"testing"

	"github.com/san-kum/hmcsim/internal/dynamo"
)

func numericGradient(p Potential, pos []float64) []float64 {
	const h = 1e-6
	grad := make([]float64, len(pos))
	x := make([]float64, len(pos))
	for i := range pos {
		copy(x, pos)
		x[i] = pos[i] + h
		up := p.Value(x)
		x[i] = pos[i] - h
		down := p.Value(x)
		grad[i] = (up - down) / (2 * h)
	}
	return grad
}

func TestPotentialGradients(t *testing.T) {
	tests := []struct {
		name string
		pot  Potential
		pos  []float64
	}{
		{"gaussian", NewGaussian([]float64{1, -2}, []float64{0.5, 3}), []float64{0.3, 0.7}},
		{"double well", NewDoubleWell(3), []float64{0.9, -1.3, 0.1}},
		{"funnel", NewFunnel(3), []float64{0.4, -0.8, 1.5}},
		{"rosenbrock", NewRosenbrock(3), []float64{0.2, 0.9, -0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pot.Gradient(tt.pos)
			want := numericGradient(tt.pot, tt.pos)
			for i := range want {
				if math.Abs(got[i]-want[i]) > 1e-4*math.Max(1, math.Abs(want[i])) {
					t.Errorf("grad[%d] = %v, finite difference %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestDoubleWellMinima(t *testing.T) {
	dw := NewDoubleWell(1)
	for _, x := range []float64{-1, 1} {
		if v := dw.Value([]float64{x}); v != 0 {
			t.Errorf("V(%v) = %v, want 0", x, v)
		}
	}
	if dw.Value([]float64{0}) != dw.A*dw.B*dw.B {
		t.Errorf("barrier height wrong: %v", dw.Value([]float64{0}))
	}
}

func TestConfigurable(t *testing.T) {
	targets := []Configurable{NewStdGaussian(2), NewDoubleWell(1), NewFunnel(2), NewRosenbrock(2)}
	for _, c := range targets {
		for name := range c.GetParams() {
			if err := c.SetParam(name, 2.5); err != nil {
				t.Errorf("%T.SetParam(%s): %v", c, name, err)
			}
			if got := c.GetParams()[name]; got != 2.5 {
				t.Errorf("%T param %s = %v after set", c, name, got)
			}
		}
		if err := c.SetParam("nonexistent", 1); err == nil {
			t.Errorf("%T accepted an unknown parameter", c)
		}
	}
}

func TestEuclideanSystem(t *testing.T) {
	sys := NewEuclideanSystem(NewStdGaussian(2), []float64{1, 4})
	s := dynamo.NewChainState([]float64{1, 2}, []float64{2, 4}, 1)

	// V = (1 + 4)/2, K = 4/2 + 16/8
	if e := sys.Energy(s); math.Abs(e-6.5) > 1e-12 {
		t.Errorf("energy = %v, want 6.5", e)
	}
	g := sys.MomentumGradient(s)
	if g[0] != 2 || g[1] != 1 {
		t.Errorf("momentum gradient = %v, want [2 1]", g)
	}
	if sys.Dim() != 2 {
		t.Errorf("Dim() = %d", sys.Dim())
	}

	unit := NewEuclideanSystem(NewStdGaussian(2), nil)
	if k := unit.Kinetic(s); k != 10 {
		t.Errorf("identity mass kinetic = %v, want 10", k)
	}
	if g := unit.MomentumGradient(s); g[0] != 2 || g[1] != 4 || &g[0] == &s.Mom[0] {
		t.Errorf("identity mass gradient = %v, want a copy of [2 4]", g)
	}
}

func TestEuclideanSystemSampleMomentum(t *testing.T) {
	sys := NewEuclideanSystem(NewStdGaussian(1), []float64{4})
	rng := dynamo.NewRand(3)
	s := dynamo.NewChainState([]float64{0}, nil, 1)

	n := 20000
	sumSq := 0.0
	for i := 0; i < n; i++ {
		p := sys.SampleMomentum(s, rng)
		sumSq += p[0] * p[0]
	}
	if v := sumSq / float64(n); math.Abs(v-4) > 0.2 {
		t.Errorf("momentum variance = %v, want ~4", v)
	}
}
