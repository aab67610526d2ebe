package hmc

import (
	"github.com/san-kum/hmcsim/internal/dynamo"
	"github.com/san-kum/hmcsim/internal/logspace"
	"gonum.org/v1/gonum/floats"
)

// DynamicMultinomial grows a trajectory by repeatedly doubling a binary tree
// of states, integrating randomly backward or forward, until the tree makes
// a U-turn or reaches MaxTreeDepth. The next state is drawn from all tree
// leaves with probability proportional to their density, with progressive
// resampling biased towards the most recently added subtree.
type DynamicMultinomial struct {
	base
	maxTreeDepth int
	maxDeltaH    float64
}

func NewDynamicMultinomial(sys dynamo.System, integ dynamo.Integrator, rng dynamo.Rand, maxTreeDepth int, maxDeltaH float64) (*DynamicMultinomial, error) {
	if maxTreeDepth < 1 {
		return nil, dynamo.ConfigError("max tree depth must be positive, got %d", maxTreeDepth)
	}
	if !(maxDeltaH > 0) {
		return nil, dynamo.ConfigError("max delta h must be positive, got %v", maxDeltaH)
	}
	return &DynamicMultinomial{
		base:         base{sys: sys, integ: integ, rng: rng, refresh: IndependentRefresh{}},
		maxTreeDepth: maxTreeDepth,
		maxDeltaH:    maxDeltaH,
	}, nil
}

func (d *DynamicMultinomial) Dynamic() bool { return true }

// subtree accumulates the summed momentum and the total relative density of
// the leaves built so far. Each recursive call owns its own accumulator.
type subtree struct {
	sumMom []float64
	weight logspace.Float
}

func newSubtree(dim int) *subtree {
	return &subtree{sumMom: make([]float64, dim), weight: logspace.Zero()}
}

type treeStats struct {
	numSteps   int
	divergent  bool
	sumAccProb float64
}

// uTurn reports whether the span between s1 and s2 with summed momentum
// sumMom has started to double back on itself.
func (d *DynamicMultinomial) uTurn(s1, s2 *dynamo.ChainState, sumMom []float64) bool {
	return floats.Dot(d.sys.MomentumGradient(s1), sumMom) < 0 ||
		floats.Dot(d.sys.MomentumGradient(s2), sumMom) < 0
}

// build extends the tree from edge by 2^depth steps in edge.Dir. It returns
// the inner and outer edges of the new subtree and the subtree proposal. On
// termination the states are nil and must be discarded.
func (d *DynamicMultinomial) build(depth int, edge *dynamo.ChainState, acc *subtree, st *treeStats, hInit float64) (terminate bool, inner, outer, proposal *dynamo.ChainState) {
	if depth == 0 {
		leaf, err := d.integ.Step(edge)
		if err != nil {
			log.Warningf("Terminating tree build due to integrator error: %v", err)
			return true, nil, nil, nil
		}
		h := d.sys.Energy(leaf)
		floats.Add(acc.sumMom, leaf.Mom)
		acc.weight = acc.weight.Add(logspace.FromLog(hInit - h))
		st.sumAccProb += acceptProb(hInit, h)
		st.numSteps++
		if !(h-hInit <= d.maxDeltaH) {
			st.divergent = true
			log.Warningf("Terminating tree build due to integrator divergence (delta_h = %.1e).", h-hInit)
			return true, nil, nil, nil
		}
		return false, leaf, leaf, leaf
	}

	accInner := newSubtree(edge.Dim())
	terminate, inner, mid, propInner := d.build(depth-1, edge, accInner, st, hInit)
	if terminate {
		return true, nil, nil, nil
	}
	accOuter := newSubtree(edge.Dim())
	terminate, _, outer, propOuter := d.build(depth-1, mid, accOuter, st, hInit)
	if terminate {
		return true, nil, nil, nil
	}

	weight := accInner.weight.Add(accOuter.weight)
	proposal = propInner
	if d.rng.Float64() < accOuter.weight.Ratio(weight) {
		proposal = propOuter
	}
	acc.weight = acc.weight.Add(weight)

	sumMom := floats.AddTo(make([]float64, edge.Dim()), accInner.sumMom, accOuter.sumMom)
	terminate = d.uTurn(inner, outer, sumMom)
	floats.Add(acc.sumMom, sumMom)
	return terminate, inner, outer, proposal
}

func (d *DynamicMultinomial) SampleDynamics(s *dynamo.ChainState) (*dynamo.ChainState, dynamo.TransitionStats) {
	hInit := d.sys.Energy(s)
	sumMom := make([]float64, s.Dim())
	copy(sumMom, s.Mom)
	weight := logspace.One()
	var st treeStats

	next, left, right := s, s.Clone(), s.Clone()
	left.Dir = -1
	right.Dir = +1

	treeDepth := 0
	for depth := 0; depth < d.maxTreeDepth; depth++ {
		treeDepth = depth
		acc := newSubtree(s.Dim())
		var terminate bool
		var proposal *dynamo.ChainState
		if d.rng.Float64() < 0.5 {
			terminate, _, right, proposal = d.build(depth, right, acc, &st, hInit)
		} else {
			terminate, _, left, proposal = d.build(depth, left, acc, &st, hInit)
		}
		if terminate {
			break
		}
		if d.rng.Float64() < acc.weight.Ratio(weight) {
			next = proposal
		}
		weight = weight.Add(acc.weight)
		floats.Add(sumMom, acc.sumMom)
		if d.uTurn(left, right, sumMom) {
			break
		}
	}

	stats := dynamo.TransitionStats{
		Hamiltonian: d.sys.Energy(next),
		NumSteps:    st.numSteps,
		TreeDepth:   treeDepth,
		Divergent:   st.divergent,
	}
	if st.numSteps > 0 {
		stats.AcceptProb = st.sumAccProb / float64(st.numSteps)
	}
	return next, stats
}
