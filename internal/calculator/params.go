package calculator

import "fmt"

// Params configures the indicator windows. Zero fields take the defaults.
type Params struct {
	SMAShort int `yaml:"sma_short"`
	SMAMid   int `yaml:"sma_mid"`
	SMALong  int `yaml:"sma_long"`

	WMAFast int `yaml:"wma_fast"`
	WMASlow int `yaml:"wma_slow"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	KPeriod  int `yaml:"k_period"`
	KSlowing int `yaml:"k_slowing"`
	DPeriod  int `yaml:"d_period"`
}

// DefaultParams returns the standard windows: SMA 5/20/60, WMA 5/10,
// MACD 12/26/9 and stochastic 9/3/3.
func DefaultParams() Params {
	return Params{
		SMAShort: 5, SMAMid: 20, SMALong: 60,
		WMAFast: 5, WMASlow: 10,
		MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		KPeriod: 9, KSlowing: 3, DPeriod: 3,
	}
}

// WithDefaults fills zero fields from DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	fill := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&p.SMAShort, d.SMAShort)
	fill(&p.SMAMid, d.SMAMid)
	fill(&p.SMALong, d.SMALong)
	fill(&p.WMAFast, d.WMAFast)
	fill(&p.WMASlow, d.WMASlow)
	fill(&p.MACDFast, d.MACDFast)
	fill(&p.MACDSlow, d.MACDSlow)
	fill(&p.MACDSignal, d.MACDSignal)
	fill(&p.KPeriod, d.KPeriod)
	fill(&p.KSlowing, d.KSlowing)
	fill(&p.DPeriod, d.DPeriod)
	return p
}

// Validate checks that every window is positive and the MACD spans are ordered.
func (p Params) Validate() error {
	windows := []struct {
		name string
		v    int
	}{
		{"sma_short", p.SMAShort}, {"sma_mid", p.SMAMid}, {"sma_long", p.SMALong},
		{"wma_fast", p.WMAFast}, {"wma_slow", p.WMASlow},
		{"macd_fast", p.MACDFast}, {"macd_slow", p.MACDSlow}, {"macd_signal", p.MACDSignal},
		{"k_period", p.KPeriod}, {"k_slowing", p.KSlowing}, {"d_period", p.DPeriod},
	}
	for _, w := range windows {
		if w.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", w.name, w.v)
		}
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be shorter than macd_slow (%d)", p.MACDFast, p.MACDSlow)
	}
	return nil
}

// MaxWindow returns the longest lookback needed before every windowed
// indicator is defined.
func (p Params) MaxWindow() int {
	m := 0
	for _, v := range []int{p.SMAShort, p.SMAMid, p.SMALong, p.WMAFast, p.WMASlow, p.KPeriod + p.KSlowing + p.DPeriod - 2} {
		if v > m {
			m = v
		}
	}
	return m
}
