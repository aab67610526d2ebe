package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Autocorrelation returns the normalised autocorrelation of x at lags
// 0..len(x)-1. The series is zero padded so that the circular correlation
// computed by the FFT equals the linear one. A constant series has
// autocorrelation 1 at lag 0 and 0 elsewhere.
func Autocorrelation(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	mean := stat.Mean(x, nil)

	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	for i, v := range x {
		padded[i] = v - mean
	}

	freq := fft.FFTReal(padded)
	for i, c := range freq {
		freq[i] = c * cmplx.Conj(c)
	}
	acov := fft.IFFT(freq)

	acf := make([]float64, n)
	c0 := real(acov[0])
	if c0 <= 0 {
		acf[0] = 1
		return acf
	}
	for i := range acf {
		acf[i] = real(acov[i]) / c0
	}
	return acf
}

// IntegratedTime estimates the integrated autocorrelation time of x using
// Geyer's initial monotone sequence: sums of adjacent lag pairs are added
// while positive and forced to be non-increasing.
func IntegratedTime(x []float64) float64 {
	acf := Autocorrelation(x)
	n := len(acf)
	if n < 4 {
		return 1
	}

	tau := -1.0
	prev := math.Inf(1)
	for k := 0; k+1 < n; k += 2 {
		pair := acf[k] + acf[k+1]
		if pair <= 0 {
			break
		}
		if pair > prev {
			pair = prev
		}
		tau += 2 * pair
		prev = pair
	}
	// bounds the effective sample size of anti-correlated chains by n*log10(n)
	minTau := 1 / math.Log10(float64(n))
	return math.Max(tau, minTau)
}

// EffectiveSampleSize is the number of independent draws carrying the same
// information about the mean as x.
func EffectiveSampleSize(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return float64(len(x)) / IntegratedTime(x)
}
