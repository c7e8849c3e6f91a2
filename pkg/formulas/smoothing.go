package formulas

import (
	"github.com/markcheno/go-talib"
)

// SMA calculates a simple moving average over the series and returns the
// smoothed values aligned with the input (the first period-1 positions keep
// the raw values, since the moving average is undefined there).
//
// Returns the input unchanged when the series is shorter than the period.
func SMA(values []float64, period int) []float64 {
	if period < 2 || len(values) < period {
		return values
	}

	sma := talib.Sma(values, period)

	smoothed := make([]float64, len(values))
	copy(smoothed, values[:period-1])
	for i := period - 1; i < len(values); i++ {
		if !isNaN(sma[i]) {
			smoothed[i] = sma[i]
		} else {
			smoothed[i] = values[i]
		}
	}

	return smoothed
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
