package calculator

import (
	"math"
	"testing"
	"time"

	"TWScreener/internal/model"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func barsFromCloses(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   day0.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func flatCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func linearCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func mustStore(t *testing.T, bars []model.OHLCV) *SeriesStore {
	t.Helper()
	s, err := NewStore("TEST", bars)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

func assertUndefined(t *testing.T, label string, values []float64, from, to int) {
	t.Helper()
	for i := from; i < to; i++ {
		if !math.IsNaN(values[i]) {
			t.Errorf("%s[%d]: expected undefined, got %.6f", label, i, values[i])
		}
	}
}
