// Package analysis provides convergence diagnostics for Markov chains.
//
//   - [Autocorrelation]: normalised autocorrelation function via FFT
//   - [EffectiveSampleSize]: Geyer initial monotone sequence estimator
//   - [SplitRHat]: potential scale reduction over split chains
//   - [Summarize]: mean, standard deviation, quantiles and Monte Carlo error
//
// # Mixing
//
// The integrated autocorrelation time tells how many draws are worth one
// independent draw:
//
//	ess := analysis.EffectiveSampleSize(trace.Column(0))
//	if ess < 100 {
//	    // chain too short for reliable estimates
//	}
package analysis
