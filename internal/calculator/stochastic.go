package calculator

import "math"

// RawStochastic returns %K before smoothing: where close sits within the
// trailing period high/low range, scaled to 0..100. A flat range (high
// equals low over the window) is undefined.
func RawStochastic(highs, lows, closes []float64, period int) []float64 {
	hi := RollingHigh(highs, period)
	lo := RollingLow(lows, period)
	out := undefined(len(closes))
	for i := range closes {
		rng := hi[i] - lo[i]
		if math.IsNaN(rng) || rng == 0 {
			continue
		}
		out[i] = 100 * ((closes[i] - lo[i]) / rng)
	}
	return out
}

// Stochastic returns the slowed %K (SMA of raw %K) and %D (SMA of slowed %K).
// Undefined raw values propagate through both smoothing windows.
func Stochastic(highs, lows, closes []float64, kPeriod, kSlowing, dPeriod int) (k, d []float64) {
	raw := RawStochastic(highs, lows, closes, kPeriod)
	k = SMA(raw, kSlowing)
	d = SMA(k, dPeriod)
	return k, d
}
