package model

import "time"

// Indicators holds every derived numeric series of one analysis, each
// index-aligned to the input bars.
type Indicators struct {
	SMAShort IndicatorSeries
	SMAMid   IndicatorSeries
	SMALong  IndicatorSeries
	WMAFast  IndicatorSeries
	WMASlow  IndicatorSeries

	MACD       IndicatorSeries
	MACDSignal IndicatorSeries
	MACDHist   IndicatorSeries

	StochK IndicatorSeries
	StochD IndicatorSeries

	DevShortMid  IndicatorSeries // dev_5_20
	DevMidLong   IndicatorSeries // dev_20_60
	DevShortLong IndicatorSeries // dev_5_60
	DevCloseMid  IndicatorSeries // dev_1_20
}

// All returns the indicator series in their canonical output order.
func (ind *Indicators) All() []IndicatorSeries {
	return []IndicatorSeries{
		ind.SMAShort, ind.SMAMid, ind.SMALong,
		ind.WMAFast, ind.WMASlow,
		ind.MACD, ind.MACDSignal, ind.MACDHist,
		ind.StochK, ind.StochD,
		ind.DevShortMid, ind.DevMidLong, ind.DevShortLong, ind.DevCloseMid,
	}
}

// Signals holds the four independent signal series. Their code ranges
// overlap numerically but each is its own namespace.
type Signals struct {
	Trend      SignalSeries
	Deviation  SignalSeries
	Bias       SignalSeries
	Oscillator SignalSeries
}

// All returns the signal series in their canonical output order.
func (s *Signals) All() []SignalSeries {
	return []SignalSeries{s.Trend, s.Deviation, s.Bias, s.Oscillator}
}

// Analysis is the complete, immutable result of analysing one symbol.
type Analysis struct {
	Symbol     string
	Bars       []OHLCV
	Indicators Indicators
	Signals    Signals
}

// Trim drops the first offset bars from every series. Used by chart
// consumers that hide warm-up bars; the warm-up values themselves were
// computed from the full history.
func (a *Analysis) Trim(offset int) *Analysis {
	if offset < 0 {
		offset = 0
	}
	if offset > len(a.Bars) {
		offset = len(a.Bars)
	}
	ind := a.Indicators
	out := &Analysis{
		Symbol: a.Symbol,
		Bars:   append([]OHLCV(nil), a.Bars[offset:]...),
		Indicators: Indicators{
			SMAShort:     ind.SMAShort.Slice(offset),
			SMAMid:       ind.SMAMid.Slice(offset),
			SMALong:      ind.SMALong.Slice(offset),
			WMAFast:      ind.WMAFast.Slice(offset),
			WMASlow:      ind.WMASlow.Slice(offset),
			MACD:         ind.MACD.Slice(offset),
			MACDSignal:   ind.MACDSignal.Slice(offset),
			MACDHist:     ind.MACDHist.Slice(offset),
			StochK:       ind.StochK.Slice(offset),
			StochD:       ind.StochD.Slice(offset),
			DevShortMid:  ind.DevShortMid.Slice(offset),
			DevMidLong:   ind.DevMidLong.Slice(offset),
			DevShortLong: ind.DevShortLong.Slice(offset),
			DevCloseMid:  ind.DevCloseMid.Slice(offset),
		},
		Signals: Signals{
			Trend:      a.Signals.Trend.Slice(offset),
			Deviation:  a.Signals.Deviation.Slice(offset),
			Bias:       a.Signals.Bias.Slice(offset),
			Oscillator: a.Signals.Oscillator.Slice(offset),
		},
	}
	return out
}

// Snapshot is the latest-bar view of an analysis read by ranking and
// filtering. Nil fields mean "no opinion".
type Snapshot struct {
	Symbol     string    `json:"symbol"`
	AsOf       time.Time `json:"as_of"`
	Bars       int       `json:"bars"`
	Quote      Quote     `json:"quote"`
	K          *float64  `json:"k"`
	D          *float64  `json:"d"`
	Trend      *int      `json:"trend"`
	Deviation  *int      `json:"deviation"`
	Bias       *int      `json:"bias"`
	Oscillator *int      `json:"oscillator"`
	AvgVolume5 *float64  `json:"avg_volume_5"`
}
