package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hmcsim/internal/analysis"
)

var (
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	cellStyle  = lipgloss.NewStyle().Width(11).Align(lipgloss.Right)
	nameStyle  = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("245"))
)

// TracePlot draws values as a line plot. Traces longer than width are
// thinned by taking every k-th value.
func TracePlot(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return Subtle.Render("(no samples)")
	}
	data := values
	if width > 0 && len(values) > width {
		step := (len(values) + width - 1) / width
		data = make([]float64, 0, width)
		for i := 0; i < len(values); i += step {
			data = append(data, values[i])
		}
	}
	chart := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
	return graphStyle.Render(chart)
}

// AutocorrPlot draws the autocorrelation of values up to maxLag.
func AutocorrPlot(values []float64, maxLag, width, height int) string {
	acf := analysis.Autocorrelation(values)
	if len(acf) == 0 {
		return Subtle.Render("(no samples)")
	}
	if maxLag+1 < len(acf) {
		acf = acf[:maxLag+1]
	}
	return TracePlot(acf, fmt.Sprintf("autocorrelation, lags 0-%d", len(acf)-1), width, height)
}

// SummaryTable lays out one row per component.
func SummaryTable(name string, sums []analysis.Summary) string {
	var b strings.Builder
	header := []string{"mean", "std", "5%", "50%", "95%", "ess", "r-hat"}
	b.WriteString(nameStyle.Render(""))
	for _, h := range header {
		b.WriteString(Title.Inherit(cellStyle).Render(h))
	}
	b.WriteString("\n")

	for i, s := range sums {
		b.WriteString(nameStyle.Render(fmt.Sprintf("%s[%d]", name, i)))
		for _, v := range []float64{s.Mean, s.Std, s.Q05, s.Q50, s.Q95, s.ESS, s.RHat} {
			b.WriteString(MetricValue.Inherit(cellStyle).Render(fmt.Sprintf("%.4g", v)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// MetricsPanel renders metrics sorted by name.
func MetricsPanel(title string, metrics map[string]float64) string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(Title.Render(title) + "\n")
	for _, k := range keys {
		b.WriteString(MetricLabel.Width(18).Render(k))
		b.WriteString(MetricValue.Render(fmt.Sprintf("%.4f", metrics[k])) + "\n")
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}
