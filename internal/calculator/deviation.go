package calculator

import "math"

// Deviation returns the percentage deviation of value from base at every
// index: (value - base) / base * 100. Undefined when either input is
// undefined, base is zero, or the result is not finite.
func Deviation(value, base []float64) []float64 {
	out := undefined(len(value))
	for i := range value {
		if i >= len(base) {
			break
		}
		v, b := value[i], base[i]
		if math.IsNaN(v) || math.IsNaN(b) || b == 0 {
			continue
		}
		dev := (v - b) / b * 100
		if math.IsNaN(dev) || math.IsInf(dev, 0) {
			continue
		}
		out[i] = dev
	}
	return out
}
