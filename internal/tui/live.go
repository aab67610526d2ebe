// Package tui is the live terminal view of a running chain.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/hmcsim/internal/dynamo"
	"github.com/san-kum/hmcsim/internal/sim"
	"github.com/san-kum/hmcsim/internal/viz"
)

const (
	width           = 60
	height          = 16
	historyCapacity = 400
)

// TransitionMsg reports one chain transition to the view. MeanAccept and
// NumDivergent are running totals over all transitions up to Iter.
type TransitionMsg struct {
	Iter  int
	Pos   []float64
	Stats dynamo.TransitionStats

	MeanAccept   float64
	NumDivergent int
}

// DoneMsg is sent when the chain returns.
type DoneMsg struct {
	Result *sim.Result
	Err    error
}

type tickMsg time.Time

type Model struct {
	title  string
	total  int
	iter   int
	frame  int
	cancel context.CancelFunc

	meanAccept float64
	divergent  int
	energies  []float64
	samples   [][]float64
	canvas    [][]rune

	done   bool
	result *sim.Result
	err    error
}

// NewModel creates a view for a chain of total samples. cancel is called
// when the user quits before the chain is done.
func NewModel(title string, total int, cancel context.CancelFunc) Model {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return Model{
		title:    title,
		total:    total,
		cancel:   cancel,
		energies: make([]float64, 0, historyCapacity),
		samples:  make([][]float64, 0, historyCapacity),
		canvas:   canvas,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.done && m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case TransitionMsg:
		m.observe(msg)
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m *Model) observe(msg TransitionMsg) {
	m.iter = msg.Iter
	m.meanAccept = msg.MeanAccept
	m.divergent = msg.NumDivergent
	m.energies = appendCapped(m.energies, msg.Stats.Hamiltonian)
	if len(m.samples) == historyCapacity {
		m.samples = m.samples[1:]
	}
	m.samples = append(m.samples, msg.Pos)
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) == historyCapacity {
		s = s[1:]
	}
	return append(s, v)
}

// Result returns the chain result once DoneMsg was received.
func (m Model) Result() (*sim.Result, error) {
	return m.result, m.err
}

func (m *Model) clear() {
	for y := range m.canvas {
		for x := range m.canvas[y] {
			m.canvas[y][x] = ' '
		}
	}
}

func (m *Model) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		m.canvas[y][x] = c
	}
}

// drawScatter plots the first two coordinates of the recent samples, or the
// first coordinate against the iteration for one dimensional targets.
func (m *Model) drawScatter() {
	m.clear()
	if len(m.samples) == 0 {
		return
	}

	xs := make([]float64, len(m.samples))
	ys := make([]float64, len(m.samples))
	for i, p := range m.samples {
		if len(p) >= 2 {
			xs[i], ys[i] = p[0], p[1]
		} else {
			xs[i], ys[i] = float64(i), p[0]
		}
	}
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)

	for i := range xs {
		cx := int((xs[i] - xlo) / (xhi - xlo) * float64(width-1))
		cy := height - 1 - int((ys[i]-ylo)/(yhi-ylo)*float64(height-1))
		c := '.'
		if i >= len(xs)-10 {
			c = 'o'
		}
		if i == len(xs)-1 {
			c = 'O'
		}
		m.set(cx, cy, c)
	}
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo > hi {
		return 0, 1
	}
	if hi-lo < 1e-12 {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

func (m Model) View() string {
	var b strings.Builder

	status := viz.StatusRunning.Render(viz.AnimatedSpinner(m.frame) + " sampling")
	if m.done {
		status = viz.StatusPaused.Render("done")
	}
	b.WriteString(viz.Title.Render(m.title) + "  " + status + "\n\n")

	progress := 0.0
	if m.total > 1 {
		progress = float64(m.iter) / float64(m.total-1)
	}
	b.WriteString(viz.ProgressBar(progress, width) + fmt.Sprintf(" %d/%d\n\n", m.iter+1, m.total))

	m.drawScatter()
	rows := make([]string, len(m.canvas))
	for i, row := range m.canvas {
		rows[i] = string(row)
	}
	b.WriteString(viz.Panel.Render(strings.Join(rows, "\n")) + "\n")
	b.WriteString(viz.Separator(width) + "\n")

	b.WriteString(viz.MetricLabel.Render("H        ") + viz.SparklineChart(m.energies, width) + "\n")
	b.WriteString(viz.MetricLabel.Render("accept   ") + viz.MetricValue.Render(fmt.Sprintf("%.3f", m.meanAccept)) + "\n")
	div := viz.MetricValue.Render(fmt.Sprintf("%d", m.divergent))
	if m.divergent > 0 {
		div = viz.StatusDivergent.Render(fmt.Sprintf("%d", m.divergent))
	}
	b.WriteString(viz.MetricLabel.Render("divergent") + " " + div + "\n")
	if m.err != nil {
		b.WriteString(viz.StatusDivergent.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + viz.KeyHint.Render("q to stop"))
	return b.String()
}
