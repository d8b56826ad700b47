package calculator

import (
	"errors"
	"math"
)

// In this package a NaN entry marks an undefined value, both in inputs and
// outputs. NaN never leaves the package: Compute converts every output into
// a model.IndicatorSeries with explicit undefined flags.

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMA returns the trailing simple moving average at every index. Entries
// before period-1, and windows containing an undefined value, are undefined.
// A constant window averages to its value exactly.
func SMA(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		start := i - period + 1
		if flatWindow(values, start, i) {
			out[i] = values[start]
			continue
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// WMA returns the linearly weighted moving average: weights 1..period with
// the most recent value weighted heaviest, normalised by period*(period+1)/2.
func WMA(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 {
		return out
	}
	divider := float64(period*(period+1)) / 2
	for i := period - 1; i < len(values); i++ {
		start := i - period + 1
		if flatWindow(values, start, i) {
			out[i] = values[start]
			continue
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += float64(j-start+1) * values[j]
		}
		out[i] = sum / divider
	}
	return out
}

// flatWindow reports whether values[start..end] all equal values[start].
// A NaN never compares equal, so undefined windows still fall through.
func flatWindow(values []float64, start, end int) bool {
	for j := start + 1; j <= end; j++ {
		if values[j] != values[start] {
			return false
		}
	}
	return values[start] == values[start]
}

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
