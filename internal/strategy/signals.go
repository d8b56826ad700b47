package strategy

// Trend-ordering codes, named by the ordering of a=dev_5_20, b=dev_20_60
// and c=dev_5_60 that selects them.
const (
	TrendACB = 1  // a >= c >= b
	TrendCAB = 2  // c >= a >= b
	TrendCBA = 3  // c >= b >= a
	TrendBCA = -1 // b >= c >= a
	TrendBAC = -2 // b >= a >= c
	TrendABC = -3 // remaining ordering
)

// Deviation-extreme codes.
const (
	DeviationOverextendedUp   = 4
	DeviationOverextendedDown = -4
)

// Bias-direction codes. These overlap numerically with the trend codes but
// belong to a separate series.
const (
	BiasUp   = 3
	BiasDown = -3
)

// Oscillator-extreme codes.
const (
	OscillatorOverbought = 100
	OscillatorOversold   = 0
)

type trendRule struct {
	name  string
	match func(a, b, c float64) bool
	code  int
}

// trendRules is evaluated top to bottom and the first match wins. Every
// comparison is >=, so an exact three-way tie always resolves to TrendACB.
var trendRules = []trendRule{
	{"a>=c>=b", func(a, b, c float64) bool { return a >= c && c >= b }, TrendACB},
	{"c>=a>=b", func(a, b, c float64) bool { return c >= a && a >= b }, TrendCAB},
	{"c>=b>=a", func(a, b, c float64) bool { return c >= b && b >= a }, TrendCBA},
	{"b>=c>=a", func(a, b, c float64) bool { return b >= c && c >= a }, TrendBCA},
	{"b>=a>=c", func(a, b, c float64) bool { return b >= a && a >= c }, TrendBAC},
}

// classifyTrend maps the three deviations to a trend-ordering code.
func classifyTrend(a, b, c float64) int {
	for _, r := range trendRules {
		if r.match(a, b, c) {
			return r.code
		}
	}
	return TrendABC
}

// classifyDeviation flags a close that sits at least threshold percent away
// from the mid SMA. Anything in between carries no signal.
func classifyDeviation(dev, threshold float64) (int, bool) {
	switch {
	case dev >= threshold:
		return DeviationOverextendedUp, true
	case dev <= -threshold:
		return DeviationOverextendedDown, true
	default:
		return 0, false
	}
}

func classifyBias(dev float64) int {
	if dev >= 0 {
		return BiasUp
	}
	return BiasDown
}

// classifyOscillator flags overbought and oversold slowed %K readings.
func classifyOscillator(k, low, high float64) (int, bool) {
	switch {
	case k >= high:
		return OscillatorOverbought, true
	case k <= low:
		return OscillatorOversold, true
	default:
		return 0, false
	}
}
