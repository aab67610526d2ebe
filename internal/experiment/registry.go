package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/hmcsim/internal/config"
	"github.com/san-kum/hmcsim/internal/dynamo"
	"github.com/san-kum/hmcsim/internal/hmc"
	"github.com/san-kum/hmcsim/internal/integrators"
	"github.com/san-kum/hmcsim/internal/physics"
)

type samplerFactory func(cfg *config.Config, sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand) (dynamo.Sampler, error)

type Registry struct {
	targets     map[string]func(dim int) physics.Potential
	integrators map[string]func(sys dynamo.EuclideanSystem, stepSize float64) dynamo.Integrator
	samplers    map[string]samplerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		targets:     make(map[string]func(int) physics.Potential),
		integrators: make(map[string]func(dynamo.EuclideanSystem, float64) dynamo.Integrator),
		samplers:    make(map[string]samplerFactory),
	}

	r.targets["gaussian"] = func(dim int) physics.Potential { return physics.NewStdGaussian(dim) }
	r.targets["doublewell"] = func(dim int) physics.Potential { return physics.NewDoubleWell(dim) }
	r.targets["funnel"] = func(dim int) physics.Potential { return physics.NewFunnel(dim) }
	r.targets["rosenbrock"] = func(dim int) physics.Potential { return physics.NewRosenbrock(dim) }

	r.integrators["leapfrog"] = func(sys dynamo.EuclideanSystem, stepSize float64) dynamo.Integrator {
		return integrators.NewLeapfrog(sys, stepSize)
	}
	r.integrators["verlet"] = func(sys dynamo.EuclideanSystem, stepSize float64) dynamo.Integrator {
		return integrators.NewVerlet(sys, stepSize)
	}

	r.samplers["static"] = func(cfg *config.Config, sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand) (dynamo.Sampler, error) {
		return hmc.NewStaticMetropolis(sys, integ, rng, cfg.NumSteps)
	}
	r.samplers["random"] = func(cfg *config.Config, sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand) (dynamo.Sampler, error) {
		return hmc.NewRandomMetropolis(sys, integ, rng, cfg.StepRange[0], cfg.StepRange[1])
	}
	r.samplers["static_correlated"] = func(cfg *config.Config, sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand) (dynamo.Sampler, error) {
		return hmc.NewStaticMetropolisCorrelated(sys, integ, rng, cfg.NumSteps, cfg.MomResampleCoeff)
	}
	r.samplers["random_correlated"] = func(cfg *config.Config, sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand) (dynamo.Sampler, error) {
		return hmc.NewRandomMetropolisCorrelated(sys, integ, rng, cfg.StepRange[0], cfg.StepRange[1], cfg.MomResampleCoeff)
	}
	r.samplers["dynamic"] = func(cfg *config.Config, sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand) (dynamo.Sampler, error) {
		return hmc.NewDynamicMultinomial(sys, integ, rng, cfg.MaxTreeDepth, cfg.MaxDeltaH)
	}

	return r
}

// GetTarget builds the named potential and applies params to it.
func (r *Registry) GetTarget(name string, dim int, params map[string]float64) (physics.Potential, error) {
	fn, ok := r.targets[name]
	if !ok {
		return nil, fmt.Errorf("unknown target: %s", name)
	}
	pot := fn(dim)
	if len(params) == 0 {
		return pot, nil
	}
	c, ok := pot.(physics.Configurable)
	if !ok {
		return nil, fmt.Errorf("target %s has no parameters", name)
	}
	for k, v := range params {
		if err := c.SetParam(k, v); err != nil {
			return nil, fmt.Errorf("target %s: %w", name, err)
		}
	}
	return pot, nil
}

func (r *Registry) GetIntegrator(name string, sys dynamo.EuclideanSystem, stepSize float64) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(sys, stepSize), nil
}

func (r *Registry) GetSampler(cfg *config.Config, sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand) (dynamo.Sampler, error) {
	fn, ok := r.samplers[cfg.Sampler]
	if !ok {
		return nil, fmt.Errorf("unknown sampler: %s", cfg.Sampler)
	}
	return fn(cfg, sys, integ, rng)
}

func (r *Registry) ListTargets() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
