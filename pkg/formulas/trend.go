package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// LinearTrend fits an ordinary least-squares line through a series of values
// indexed 0..n-1 and returns the intercept and the per-step slope.
//
// Returns (0, 0) when fewer than two points are available, since no trend
// can be estimated from a single observation.
func LinearTrend(values []float64) (intercept, slope float64) {
	if len(values) < 2 {
		return 0, 0
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope = stat.LinearRegression(xs, values, nil, false)
	return intercept, slope
}
