package sim

import "github.com/san-kum/hmcsim/internal/dynamo"

// Extractor derives a recorded quantity from a chain state. Fn must not
// modify the state; the chain copies the returned slice.
type Extractor struct {
	Name string
	Fn   func(s *dynamo.ChainState) []float64
}

var (
	ExtractPos = Extractor{Name: "pos", Fn: func(s *dynamo.ChainState) []float64 { return s.Pos }}
	ExtractMom = Extractor{Name: "mom", Fn: func(s *dynamo.ChainState) []float64 { return s.Mom }}
)

// Trace is the sequence of values of one extractor, one entry per sample.
type Trace struct {
	Name   string
	Values [][]float64
}

// Column returns component i of every sample.
func (t *Trace) Column(i int) []float64 {
	col := make([]float64, len(t.Values))
	for j, v := range t.Values {
		col[j] = v[i]
	}
	return col
}

// Stats are the chain statistics. Hamiltonian has one entry per sample, the
// others one per transition. TreeDepth and Divergent are nil for samplers
// which are not dynamic.
type Stats struct {
	Hamiltonian []float64 `json:"hamiltonian"`
	NumSteps    []int     `json:"n_step"`
	AcceptProb  []float64 `json:"accept_prob"`
	TreeDepth   []int     `json:"tree_depth,omitempty"`
	Divergent   []bool    `json:"divergent,omitempty"`
}

func newStats(n int, dynamic bool) *Stats {
	st := &Stats{
		Hamiltonian: make([]float64, n),
		NumSteps:    make([]int, n-1),
		AcceptProb:  make([]float64, n-1),
	}
	if dynamic {
		st.TreeDepth = make([]int, n-1)
		st.Divergent = make([]bool, n-1)
	}
	return st
}

// record stores the statistics of the transition producing sample s.
func (st *Stats) record(s int, ts dynamo.TransitionStats) {
	st.Hamiltonian[s] = ts.Hamiltonian
	st.NumSteps[s-1] = ts.NumSteps
	st.AcceptProb[s-1] = ts.AcceptProb
	if st.TreeDepth != nil {
		st.TreeDepth[s-1] = ts.TreeDepth
		st.Divergent[s-1] = ts.Divergent
	}
}

func (st *Stats) truncate(n int) {
	st.Hamiltonian = st.Hamiltonian[:n]
	st.NumSteps = st.NumSteps[:n-1]
	st.AcceptProb = st.AcceptProb[:n-1]
	if st.TreeDepth != nil {
		st.TreeDepth = st.TreeDepth[:n-1]
		st.Divergent = st.Divergent[:n-1]
	}
}

func (st *Stats) NumDivergent() int {
	n := 0
	for _, d := range st.Divergent {
		if d {
			n++
		}
	}
	return n
}

// Metric summarises transitions as they are produced.
type Metric interface {
	Name() string
	Observe(ts dynamo.TransitionStats)
	Value() float64
	Reset()
}

// Observer is notified after every transition, i is the index of the new
// sample.
type Observer interface {
	OnTransition(i int, s *dynamo.ChainState, ts dynamo.TransitionStats)
}

type ObserverFunc func(i int, s *dynamo.ChainState, ts dynamo.TransitionStats)

func (f ObserverFunc) OnTransition(i int, s *dynamo.ChainState, ts dynamo.TransitionStats) {
	f(i, s, ts)
}

type Result struct {
	Traces  []Trace
	Stats   *Stats
	Metrics map[string]float64
	// Final is the chain state after the last transition.
	Final *dynamo.ChainState
}

func (r *Result) Trace(name string) *Trace {
	for i := range r.Traces {
		if r.Traces[i].Name == name {
			return &r.Traces[i]
		}
	}
	return nil
}
