package calculator

// EMA folds values left to right with smoothing factor 2/(span+1). The
// recursion is seeded with the first value rather than a windowed SMA, so
// the result is defined from index 0.
func EMA(values []float64, span int) []float64 {
	out := undefined(len(values))
	if span <= 0 || len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		prev := out[i-1]
		out[i] = prev + alpha*(values[i]-prev)
	}
	return out
}

// MACD returns the fast-minus-slow EMA difference, its EMA signal line and
// the histogram (difference minus signal).
func MACD(closes []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMA(macd, signal)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = macd[i] - sig[i]
	}
	return macd, sig, hist
}
