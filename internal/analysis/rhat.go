package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SplitRHat computes the potential scale reduction factor after splitting
// every chain in half. Chains are truncated to the shortest length. Values
// close to 1 indicate the chains agree.
func SplitRHat(chains ...[]float64) float64 {
	if len(chains) == 0 {
		return math.NaN()
	}
	n := len(chains[0])
	for _, c := range chains[1:] {
		n = min(n, len(c))
	}
	half := n / 2
	if half < 2 {
		return math.NaN()
	}

	means := make([]float64, 0, 2*len(chains))
	vars := make([]float64, 0, 2*len(chains))
	for _, c := range chains {
		for _, part := range [][]float64{c[:half], c[half : 2*half]} {
			m, v := stat.MeanVariance(part, nil)
			means = append(means, m)
			vars = append(vars, v)
		}
	}

	w := stat.Mean(vars, nil)
	if w == 0 {
		return math.NaN()
	}
	b := stat.Variance(means, nil) // B/n
	varPlus := float64(half-1)/float64(half)*w + b
	return math.Sqrt(varPlus / w)
}

// Summary describes the marginal distribution of one chain component.
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Q05  float64 `json:"q05"`
	Q50  float64 `json:"q50"`
	Q95  float64 `json:"q95"`
	ESS  float64 `json:"ess"`
	MCSE float64 `json:"mcse"`
	RHat float64 `json:"rhat"`
}

func Summarize(x []float64) Summary {
	if len(x) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(x, nil)
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	ess := EffectiveSampleSize(x)
	return Summary{
		Mean: mean,
		Std:  std,
		Q05:  stat.Quantile(0.05, stat.Empirical, sorted, nil),
		Q50:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q95:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
		ESS:  ess,
		MCSE: std / math.Sqrt(ess),
		RHat: SplitRHat(x),
	}
}

// SummarizeColumns summarises every component of a sequence of vectors.
func SummarizeColumns(values [][]float64) []Summary {
	if len(values) == 0 {
		return nil
	}
	dim := len(values[0])
	out := make([]Summary, dim)
	col := make([]float64, len(values))
	for i := 0; i < dim; i++ {
		for j, v := range values {
			col[j] = v[i]
		}
		out[i] = Summarize(col)
	}
	return out
}
