package calculator

import "math"

// RollingHigh returns the maximum of the trailing period values at every
// index; undefined before period-1 or when the window holds an undefined value.
func RollingHigh(values []float64, period int) []float64 {
	return rollingExtreme(values, period, func(v, best float64) bool { return v > best }, math.Inf(-1))
}

// RollingLow returns the minimum of the trailing period values at every index.
func RollingLow(values []float64, period int) []float64 {
	return rollingExtreme(values, period, func(v, best float64) bool { return v < best }, math.Inf(1))
}

func rollingExtreme(values []float64, period int, better func(v, best float64) bool, seed float64) []float64 {
	out := undefined(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		best := seed
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				best = math.NaN()
				break
			}
			if better(values[j], best) {
				best = values[j]
			}
		}
		out[i] = best
	}
	return out
}
