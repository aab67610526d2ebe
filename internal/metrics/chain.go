package metrics

import "github.com/san-kum/hmcsim/internal/dynamo"

// AcceptRate is the mean acceptance probability over observed transitions.
type AcceptRate struct {
	sum     float64
	samples int
}

func NewAcceptRate() *AcceptRate { return &AcceptRate{} }

func (a *AcceptRate) Name() string { return "accept_rate" }

func (a *AcceptRate) Observe(ts dynamo.TransitionStats) {
	a.sum += ts.AcceptProb
	a.samples++
}

func (a *AcceptRate) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *AcceptRate) Reset() {
	a.sum = 0
	a.samples = 0
}

type DivergenceCount struct {
	count int
}

func NewDivergenceCount() *DivergenceCount { return &DivergenceCount{} }

func (d *DivergenceCount) Name() string { return "divergences" }

func (d *DivergenceCount) Observe(ts dynamo.TransitionStats) {
	if ts.Divergent {
		d.count++
	}
}

func (d *DivergenceCount) Value() float64 { return float64(d.count) }
func (d *DivergenceCount) Reset()         { d.count = 0 }

// MeanInt averages an integer transition statistic such as the step count or
// the tree depth.
type MeanInt struct {
	name    string
	field   func(ts dynamo.TransitionStats) int
	sum     int
	samples int
}

func NewMeanSteps() *MeanInt {
	return &MeanInt{
		name:  "mean_steps",
		field: func(ts dynamo.TransitionStats) int { return ts.NumSteps },
	}
}

func NewMeanTreeDepth() *MeanInt {
	return &MeanInt{
		name:  "mean_tree_depth",
		field: func(ts dynamo.TransitionStats) int { return ts.TreeDepth },
	}
}

func (m *MeanInt) Name() string { return m.name }

func (m *MeanInt) Observe(ts dynamo.TransitionStats) {
	m.sum += m.field(ts)
	m.samples++
}

func (m *MeanInt) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.sum) / float64(m.samples)
}

func (m *MeanInt) Reset() {
	m.sum = 0
	m.samples = 0
}
