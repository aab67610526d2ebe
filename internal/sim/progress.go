package sim

import "github.com/san-kum/hmcsim/internal/dynamo"

// ProgressLogger logs the mean acceptance probability every Period
// transitions.
type ProgressLogger struct {
	Period int
	Total  int

	sumAccept float64
	count     int
	divergent int
}

func NewProgressLogger(period, total int) *ProgressLogger {
	if period <= 0 {
		period = 100
	}
	return &ProgressLogger{Period: period, Total: total}
}

func (p *ProgressLogger) OnTransition(i int, s *dynamo.ChainState, ts dynamo.TransitionStats) {
	p.sumAccept += ts.AcceptProb
	p.count++
	if ts.Divergent {
		p.divergent++
	}
	if p.count == p.Period || i == p.Total-1 {
		log.Infof("%d/%d: mean accept prob %.3f, H=%.4f, divergent %d",
			i+1, p.Total, p.sumAccept/float64(p.count), ts.Hamiltonian, p.divergent)
		p.sumAccept = 0
		p.count = 0
		p.divergent = 0
	}
}
