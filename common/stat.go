package common

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"
)

// ECDF of the samples, NaN samples are left out and the input is not modified
func ECDF(samples []float64) plotter.XYs {
	sorted := make([]float64, 0, len(samples))
	for _, s := range samples {
		if !math.IsNaN(s) {
			sorted = append(sorted, s)
		}
	}
	n := len(sorted)
	stat.SortWeighted(sorted, nil)
	ecdfs := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		ecdfs[i].X = sorted[i]
		ecdfs[i].Y = stat.CDF(sorted[i], stat.Empirical, sorted, nil)
	}
	return ecdfs
}

// mean over the non NaN values, ok is false when there are none
func NanMean(x []float64) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), false
	}
	return sum / float64(n), true
}
