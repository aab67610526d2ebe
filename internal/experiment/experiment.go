package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/hmcsim/internal/config"
	"github.com/san-kum/hmcsim/internal/dynamo"
	"github.com/san-kum/hmcsim/internal/metrics"
	"github.com/san-kum/hmcsim/internal/physics"
	"github.com/san-kum/hmcsim/internal/sim"
)

// Experiment is a chain assembled from a run configuration.
type Experiment struct {
	cfg     *config.Config
	system  *physics.EuclideanSystem
	sampler dynamo.Sampler
	chain   *sim.Chain
}

func New(cfg *config.Config) (*Experiment, error) {
	return NewWithRegistry(NewRegistry(), cfg)
}

func NewWithRegistry(reg *Registry, cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pot, err := reg.GetTarget(cfg.Target, cfg.Dim, cfg.TargetParams)
	if err != nil {
		return nil, err
	}
	sys := physics.NewEuclideanSystem(pot, cfg.Mass)

	integ, err := reg.GetIntegrator(cfg.Integrator, sys, cfg.StepSize)
	if err != nil {
		return nil, err
	}

	sampler, err := reg.GetSampler(cfg, sys, integ, dynamo.NewRand(cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("sampler %s: %w", cfg.Sampler, err)
	}

	chain := sim.New(sampler)
	for _, m := range metrics.Default(sampler.Dynamic()) {
		chain.AddMetric(m)
	}

	return &Experiment{cfg: cfg, system: sys, sampler: sampler, chain: chain}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) System() *physics.EuclideanSystem { return e.system }

// Chain returns the underlying chain for adding observers.
func (e *Experiment) Chain() *sim.Chain { return e.chain }

// InitialState is the configured starting position without momentum.
func (e *Experiment) InitialState() *dynamo.ChainState {
	return dynamo.NewChainState(e.cfg.GetInitPos(), nil, 1)
}

// Run draws the configured number of samples from the configured start.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.RunFrom(ctx, e.InitialState(), e.cfg.Samples)
}

// RunFrom continues the chain from a given state, for example one restored
// from a checkpoint.
func (e *Experiment) RunFrom(ctx context.Context, init *dynamo.ChainState, n int) (*sim.Result, error) {
	if init.Dim() != e.cfg.Dim {
		return nil, fmt.Errorf("%w: state has dim %d, config %d", dynamo.ErrDimensionMismatch, init.Dim(), e.cfg.Dim)
	}
	return e.chain.Run(ctx, init, n)
}
