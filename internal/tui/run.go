package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/hmcsim/internal/dynamo"
	"github.com/san-kum/hmcsim/internal/sim"
)

// Sender is the part of tea.Program the chain observer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards transitions to the view at most every interval. The last
// transition is always forwarded. Acceptance and divergence totals cover
// every transition, including the ones that were not forwarded.
func Observer(p Sender, total int, interval time.Duration) sim.Observer {
	var (
		last      time.Time
		count     int
		sumAccept float64
		divergent int
	)
	return sim.ObserverFunc(func(i int, s *dynamo.ChainState, ts dynamo.TransitionStats) {
		count++
		sumAccept += ts.AcceptProb
		if ts.Divergent {
			divergent++
		}
		if i != total-1 && time.Since(last) < interval {
			return
		}
		last = time.Now()
		pos := make([]float64, len(s.Pos))
		copy(pos, s.Pos)
		p.Send(TransitionMsg{
			Iter:         i,
			Pos:          pos,
			Stats:        ts,
			MeanAccept:   sumAccept / float64(count),
			NumDivergent: divergent,
		})
	})
}

// Run draws n samples from init while showing the live view. Quitting the
// view cancels the chain, which then returns its partial result.
func Run(ctx context.Context, title string, chain *sim.Chain, init *dynamo.ChainState, n int) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(title, n, cancel))
	chain.AddObserver(Observer(p, n, 50*time.Millisecond))

	done := make(chan DoneMsg, 1)
	go func() {
		res, err := chain.Run(ctx, init, n)
		msg := DoneMsg{Result: res, Err: err}
		done <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	msg := <-done
	return msg.Result, msg.Err
}
