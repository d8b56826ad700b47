package calculator

import (
	"math"
	"testing"
)

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5, 6}, 5)
	if err != nil {
		t.Fatalf("CalculateSMA: %v", err)
	}
	assertClose(t, "SMA(5)", v, 4, 1e-12)

	if _, err := CalculateSMA([]float64{1, 2}, 5); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := CalculateSMA([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestSMA_Period3(t *testing.T) {
	// (100+102+104)/3 = 102, (102+104+103)/3 = 103, (104+103+105)/3 = 104
	got := SMA([]float64{100, 102, 104, 103, 105}, 3)
	assertUndefined(t, "SMA(3)", got, 0, 2)
	for i, want := range map[int]float64{2: 102, 3: 103, 4: 104} {
		assertClose(t, "SMA(3)", got[i], want, 1e-12)
	}
}

func TestSMA_UndefinedInputPropagates(t *testing.T) {
	in := []float64{1, 2, math.NaN(), 4, 5, 6, 7}
	got := SMA(in, 3)
	assertUndefined(t, "SMA(3)", got, 0, 5)
	assertClose(t, "SMA(3)[5]", got[5], 5, 1e-12)
	assertClose(t, "SMA(3)[6]", got[6], 6, 1e-12)
}

func TestSMA_LongWindowBoundary(t *testing.T) {
	got := SMA(linearCloses(60, 100, 1), 60)
	assertUndefined(t, "SMA(60)", got, 0, 59)
	if math.IsNaN(got[59]) {
		t.Fatal("SMA(60) must be defined at index 59 of a 60-bar series")
	}
	assertClose(t, "SMA(60)[59]", got[59], 129.5, 1e-9)

	short := SMA(linearCloses(59, 100, 1), 60)
	assertUndefined(t, "SMA(60) on 59 bars", short, 0, 59)
}

func TestWMA_HandCalculated(t *testing.T) {
	// weights 1,2,3 over the last three values, divider 6
	got := WMA([]float64{1, 2, 3, 4, 5}, 3)
	assertUndefined(t, "WMA(3)", got, 0, 2)
	assertClose(t, "WMA(3)[2]", got[2], 14.0/6, 1e-12)
	assertClose(t, "WMA(3)[3]", got[3], 20.0/6, 1e-12)
	assertClose(t, "WMA(3)[4]", got[4], 26.0/6, 1e-12)
}

func TestSMAWMA_FlatWindowsExact(t *testing.T) {
	for _, price := range []float64{100, 33.3, 123.45, 10.1, 0.7} {
		closes := flatCloses(30, price)
		wma := WMA(closes, 5)
		sma := SMA(closes, 20)
		for i := 4; i < len(closes); i++ {
			if wma[i] != price {
				t.Fatalf("price %v: WMA(5)[%d] = %.17g, want exact", price, i, wma[i])
			}
		}
		for i := 19; i < len(closes); i++ {
			if sma[i] != price {
				t.Fatalf("price %v: SMA(20)[%d] = %.17g, want exact", price, i, sma[i])
			}
		}
	}
}

func TestSMA_WindowWithNaNStaysUndefined(t *testing.T) {
	values := []float64{math.NaN(), math.NaN(), math.NaN(), 4, 4, 4}
	got := SMA(values, 3)
	assertUndefined(t, "SMA(3)", got, 0, 5)
	if got[5] != 4 {
		t.Errorf("SMA(3)[5] = %v, want 4", got[5])
	}
	wma := WMA(values, 3)
	assertUndefined(t, "WMA(3)", wma, 0, 5)
	if wma[5] != 4 {
		t.Errorf("WMA(3)[5] = %v, want 4", wma[5])
	}
}

func TestEMA_SeededByFirstValue(t *testing.T) {
	// span 3 => alpha 0.5
	got := EMA([]float64{10, 20, 30}, 3)
	assertClose(t, "EMA[0]", got[0], 10, 0)
	assertClose(t, "EMA[1]", got[1], 15, 1e-12)
	assertClose(t, "EMA[2]", got[2], 22.5, 1e-12)
}

func TestEMA_EachIndexFromPrevious(t *testing.T) {
	closes := linearCloses(40, 50, 0.7)
	got := EMA(closes, 12)
	alpha := 2.0 / 13
	for i := 1; i < len(closes); i++ {
		want := got[i-1] + alpha*(closes[i]-got[i-1])
		if got[i] != want {
			t.Fatalf("index %d: got %.12f, want %.12f", i, got[i], want)
		}
	}
	if len(EMA(nil, 12)) != 0 {
		t.Error("EMA of empty input must be empty")
	}
}

func TestMACD_FlatSeriesHistogramZero(t *testing.T) {
	macd, sig, hist := MACD(flatCloses(80, 100), 12, 26, 9)
	for i := range hist {
		if macd[i] != 0 || sig[i] != 0 || hist[i] != 0 {
			t.Fatalf("index %d: macd=%.12f signal=%.12f hist=%.12f, want all 0", i, macd[i], sig[i], hist[i])
		}
	}
}

func TestMACD_DefinedFromFirstBar(t *testing.T) {
	closes := linearCloses(5, 10, 1)
	macd, sig, hist := MACD(closes, 12, 26, 9)
	for i := range closes {
		if math.IsNaN(macd[i]) || math.IsNaN(sig[i]) || math.IsNaN(hist[i]) {
			t.Errorf("index %d: momentum must be defined from index 0", i)
		}
	}
	if macd[0] != 0 {
		t.Errorf("macd[0]: got %.6f, want 0", macd[0])
	}
	if macd[4] <= 0 {
		t.Errorf("rising closes must give positive macd, got %.6f", macd[4])
	}
}
