package strategy

import (
	"fmt"

	"TWScreener/internal/calculator"
	"TWScreener/internal/model"
)

// Thresholds configures the signal classifiers. Zero fields take the defaults.
type Thresholds struct {
	DeviationExtreme float64 `yaml:"deviation_extreme"`
	OscillatorLow    float64 `yaml:"oscillator_low"`
	OscillatorHigh   float64 `yaml:"oscillator_high"`
}

// Params is the complete engine configuration.
type Params struct {
	Indicators calculator.Params `yaml:"indicators"`
	Thresholds Thresholds        `yaml:"thresholds"`
}

// DefaultParams returns the standard windows with a ±5% deviation extreme
// and 20/80 oscillator bands.
func DefaultParams() Params {
	return Params{
		Indicators: calculator.DefaultParams(),
		Thresholds: Thresholds{DeviationExtreme: 5, OscillatorLow: 20, OscillatorHigh: 80},
	}
}

// WithDefaults fills every zero field from DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	p.Indicators = p.Indicators.WithDefaults()
	if p.Thresholds.DeviationExtreme == 0 {
		p.Thresholds.DeviationExtreme = d.Thresholds.DeviationExtreme
	}
	if p.Thresholds.OscillatorLow == 0 {
		p.Thresholds.OscillatorLow = d.Thresholds.OscillatorLow
	}
	if p.Thresholds.OscillatorHigh == 0 {
		p.Thresholds.OscillatorHigh = d.Thresholds.OscillatorHigh
	}
	return p
}

// Validate checks the indicator windows and threshold ordering.
func (p Params) Validate() error {
	if err := p.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if p.Thresholds.DeviationExtreme <= 0 {
		return fmt.Errorf("thresholds: deviation_extreme must be positive")
	}
	if p.Thresholds.OscillatorLow >= p.Thresholds.OscillatorHigh {
		return fmt.Errorf("thresholds: oscillator_low must be below oscillator_high")
	}
	return nil
}

// Analyze runs every indicator and signal stage over the store and returns
// a fresh result. It holds no state between calls, so concurrent calls on
// different stores are safe.
func Analyze(store *calculator.SeriesStore, p Params) *model.Analysis {
	ind := calculator.Compute(store, p.Indicators)
	return &model.Analysis{
		Symbol:     store.Symbol(),
		Bars:       store.Bars(),
		Indicators: ind,
		Signals:    Evaluate(&ind, p.Thresholds),
	}
}

// Evaluate classifies every bar into the four signal series.
func Evaluate(ind *model.Indicators, th Thresholds) model.Signals {
	n := ind.DevShortMid.Len()
	trend := newCodes(n)
	deviation := newCodes(n)
	bias := newCodes(n)
	oscillator := newCodes(n)

	for i := 0; i < n; i++ {
		a, okA := ind.DevShortMid.At(i)
		b, okB := ind.DevMidLong.At(i)
		c, okC := ind.DevShortLong.At(i)
		if okA && okB && okC {
			trend.set(i, classifyTrend(a, b, c))
		}
		if okC {
			bias.set(i, classifyBias(c))
		}
		if dev, ok := ind.DevCloseMid.At(i); ok {
			if code, hit := classifyDeviation(dev, th.DeviationExtreme); hit {
				deviation.set(i, code)
			}
		}
		if k, ok := ind.StochK.At(i); ok {
			if code, hit := classifyOscillator(k, th.OscillatorLow, th.OscillatorHigh); hit {
				oscillator.set(i, code)
			}
		}
	}

	return model.Signals{
		Trend:      trend.series("trend"),
		Deviation:  deviation.series("deviation"),
		Bias:       bias.series("bias"),
		Oscillator: oscillator.series("oscillator"),
	}
}

type codes struct {
	values []int
	valid  []bool
}

func newCodes(n int) *codes {
	return &codes{values: make([]int, n), valid: make([]bool, n)}
}

func (c *codes) set(i, code int) {
	c.values[i] = code
	c.valid[i] = true
}

func (c *codes) series(name string) model.SignalSeries {
	return model.NewSeries(name, c.values, c.valid)
}

// Summarize reduces an analysis to the latest-bar view used for ranking.
// Each field reads the final element of its series; an undefined final
// element is reported as nil.
func Summarize(a *model.Analysis) model.Snapshot {
	snap := model.Snapshot{Symbol: a.Symbol, Bars: len(a.Bars)}
	if len(a.Bars) == 0 {
		return snap
	}
	snap.AsOf = a.Bars[len(a.Bars)-1].Time
	snap.Quote = QuoteOf(a.Bars)
	snap.K = lastFloat(a.Indicators.StochK)
	snap.D = lastFloat(a.Indicators.StochD)
	snap.Trend = lastInt(a.Signals.Trend)
	snap.Deviation = lastInt(a.Signals.Deviation)
	snap.Bias = lastInt(a.Signals.Bias)
	snap.Oscillator = lastInt(a.Signals.Oscillator)

	// average of the five sessions before the latest one
	if n := len(a.Bars); n >= 6 {
		vols := make([]float64, 0, n-1)
		for _, b := range a.Bars[:n-1] {
			vols = append(vols, b.Volume)
		}
		if avg, err := calculator.CalculateSMA(vols, 5); err == nil {
			snap.AvgVolume5 = &avg
		}
	}
	return snap
}

// QuoteOf derives the latest price and percentage change from the last two bars.
func QuoteOf(bars []model.OHLCV) model.Quote {
	if len(bars) == 0 {
		return model.Quote{}
	}
	last := bars[len(bars)-1]
	q := model.Quote{Price: last.Close}
	if len(bars) >= 2 {
		if prev := bars[len(bars)-2].Close; prev != 0 {
			q.ChangePercent = (last.Close - prev) / prev * 100
		}
	}
	return q
}

func lastFloat(s model.IndicatorSeries) *float64 {
	if v, ok := s.Last(); ok {
		return &v
	}
	return nil
}

func lastInt(s model.SignalSeries) *int {
	if v, ok := s.Last(); ok {
		return &v
	}
	return nil
}
