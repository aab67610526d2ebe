// Package viz renders chain output for the terminal.
//
//   - [TracePlot]: asciigraph line plot of one trace component
//   - [AutocorrPlot]: autocorrelation function up to a maximum lag
//   - [SummaryTable]: lipgloss table of per-component summaries
//   - [MetricsPanel]: chain metrics in a bordered panel
//
// Styles and small widgets such as [ProgressBar] and [SparklineChart] are
// shared with the live view in package tui.
package viz
