package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/op/go-logging"

	"github.com/san-kum/hmcsim/internal/config"
	"github.com/san-kum/hmcsim/internal/dynamo"
)

func init() {
	logging.SetLevel(logging.ERROR, "sim")
	logging.SetLevel(logging.ERROR, "hmc")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	targets := r.ListTargets()
	if len(targets) != 4 || targets[0] != "doublewell" {
		t.Errorf("unexpected targets %v", targets)
	}

	for _, name := range targets {
		pot, err := r.GetTarget(name, 3, nil)
		if err != nil {
			t.Fatalf("GetTarget(%s): %v", name, err)
		}
		if pot.Dim() != 3 {
			t.Errorf("%s: dim %d", name, pot.Dim())
		}
	}

	if _, err := r.GetTarget("nonexistent", 1, nil); err == nil {
		t.Error("expected error for unknown target")
	}
	if _, err := r.GetTarget("funnel", 2, map[string]float64{"bogus": 1}); err == nil {
		t.Error("expected error for unknown target parameter")
	}
}

func TestNew_AllSamplers(t *testing.T) {
	for _, name := range config.Samplers {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Sampler = name
			cfg.Samples = 50
			cfg.Seed = 3

			exp, err := New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			res, err := exp.Run(context.Background())
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(res.Trace("pos").Values) != 50 {
				t.Errorf("expected 50 samples, got %d", len(res.Trace("pos").Values))
			}
			for _, m := range []string{"accept_rate", "mean_steps", "energy_drift"} {
				if _, ok := res.Metrics[m]; !ok {
					t.Errorf("missing %s metric", m)
				}
			}
			_, hasDepth := res.Metrics["mean_tree_depth"]
			if hasDepth != (name == "dynamic") {
				t.Errorf("mean_tree_depth present = %v", hasDepth)
			}
		})
	}
}

func TestNew_Verlet(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Integrator = "verlet"
	cfg.Samples = 20
	exp, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sampler = "random"
	cfg.StepRange = [2]int{5, 5}
	if _, err := New(cfg); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	cfg = config.DefaultConfig()
	cfg.Integrator = "rk4"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestRun_Reproducible(t *testing.T) {
	run := func() []float64 {
		cfg := config.GetPreset("gaussian", "nuts")
		cfg.Samples = 30
		cfg.Seed = 17
		exp, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		res, err := exp.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res.Final.Pos
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs with the same seed differ: %v vs %v", a, b)
		}
	}
}

func TestRunFrom(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Samples = 20
	exp, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	init := dynamo.NewChainState([]float64{0.5, -0.5}, []float64{0.1, 0.2}, -1)
	res, err := exp.RunFrom(context.Background(), init, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Trace("pos").Values[0]; got[0] != 0.5 || got[1] != -0.5 {
		t.Errorf("first sample %v is not the resumed state", got)
	}
	if math.IsNaN(res.Stats.Hamiltonian[0]) {
		t.Error("hamiltonian of the resumed state is NaN")
	}

	_, err = exp.RunFrom(context.Background(), dynamo.NewChainState([]float64{1}, nil, 1), 10)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
