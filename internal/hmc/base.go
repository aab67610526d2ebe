package hmc

import (
	"math"

	"github.com/op/go-logging"

	"github.com/san-kum/hmcsim/internal/dynamo"
)

var log = logging.MustGetLogger("hmc")

// base holds the collaborators shared by all samplers.
type base struct {
	sys     dynamo.System
	integ   dynamo.Integrator
	rng     dynamo.Rand
	refresh MomentumRefresh
}

func (b *base) System() dynamo.System { return b.sys }

func (b *base) SampleMomentum(s *dynamo.ChainState) *dynamo.ChainState {
	return b.refresh.Refresh(b.sys, s, b.rng)
}

// acceptProb is min(1, exp(hInit - h)), with NaN energies never accepted.
func acceptProb(hInit, h float64) float64 {
	a := math.Exp(hInit - h)
	if math.IsNaN(a) {
		return 0
	}
	return math.Min(1, a)
}
