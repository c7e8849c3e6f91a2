package formulas

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Median calculates the median of a slice of float64 values.
// The input is not modified.
func Median(data []float64) float64 {
	return Quantile(data, 0.5)
}

// Quantile calculates the p-quantile (0 <= p <= 1) of a slice of float64 values.
// The input is not modified.
func Quantile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// CoefficientOfVariation calculates relative volatility (std dev / mean).
// Returns 0 for empty input or a zero mean.
func CoefficientOfVariation(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	mean := Mean(data)
	if mean == 0 {
		return 0
	}
	cv := StdDev(data) / mean
	if cv < 0 {
		return -cv
	}
	return cv
}
