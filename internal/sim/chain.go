package sim

import (
	"context"
	"fmt"

	"github.com/op/go-logging"

	"github.com/san-kum/hmcsim/internal/dynamo"
)

var log = logging.MustGetLogger("sim")

// Chain drives a sampler over many iterations and records derived
// quantities and statistics.
type Chain struct {
	sampler   dynamo.Sampler
	metrics   []Metric
	observers []Observer
}

func New(sampler dynamo.Sampler) *Chain {
	return &Chain{
		sampler:   sampler,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (c *Chain) AddMetric(m Metric)     { c.metrics = append(c.metrics, m) }
func (c *Chain) AddObserver(o Observer) { c.observers = append(c.observers, o) }

// Run draws n samples starting from init, which is recorded as sample 0. A
// missing momentum is sampled first. With no extractors the position and
// momentum are recorded. The chain takes ownership of init.
//
// If ctx is canceled the samples drawn so far are returned with ctx.Err().
func (c *Chain) Run(ctx context.Context, init *dynamo.ChainState, n int, extractors ...Extractor) (*Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}
	if len(extractors) == 0 {
		extractors = []Extractor{ExtractPos, ExtractMom}
	}

	state := init
	if !state.HasMomentum() {
		state = c.sampler.SampleMomentum(state)
	}
	if len(state.Mom) != len(state.Pos) {
		return nil, fmt.Errorf("%w: pos %d, mom %d", dynamo.ErrDimensionMismatch, len(state.Pos), len(state.Mom))
	}

	for _, m := range c.metrics {
		m.Reset()
	}

	result := &Result{
		Traces:  make([]Trace, len(extractors)),
		Stats:   newStats(n, c.sampler.Dynamic()),
		Metrics: make(map[string]float64),
	}
	for j, ex := range extractors {
		result.Traces[j] = Trace{Name: ex.Name, Values: make([][]float64, n)}
	}

	record := func(s int) {
		for j, ex := range extractors {
			result.Traces[j].Values[s] = cloneVec(ex.Fn(state))
		}
	}

	result.Stats.Hamiltonian[0] = c.sampler.System().Energy(state)
	record(0)
	log.Infof("Running chain for %d samples", n)

	for s := 1; s < n; s++ {
		select {
		case <-ctx.Done():
			log.Warningf("Chain canceled after %d samples", s)
			c.finish(result, state, s)
			return result, ctx.Err()
		default:
		}

		state = c.sampler.SampleMomentum(state)
		var ts dynamo.TransitionStats
		state, ts = c.sampler.SampleDynamics(state)

		result.Stats.record(s, ts)
		record(s)

		for _, m := range c.metrics {
			m.Observe(ts)
		}
		for _, obs := range c.observers {
			obs.OnTransition(s, state, ts)
		}
	}

	c.finish(result, state, n)
	log.Infof("Finished chain")
	return result, nil
}

func (c *Chain) finish(result *Result, state *dynamo.ChainState, n int) {
	if n < len(result.Stats.Hamiltonian) {
		result.Stats.truncate(n)
		for j := range result.Traces {
			result.Traces[j].Values = result.Traces[j].Values[:n]
		}
	}
	for _, m := range c.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = state
}

func cloneVec(v []float64) []float64 {
	if v == nil {
		return nil
	}
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
