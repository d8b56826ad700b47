package calculator

import (
	"fmt"

	"TWScreener/internal/model"
)

// Compute derives every indicator series from the store. p should already
// have defaults applied and be validated.
func Compute(store *SeriesStore, p Params) model.Indicators {
	closes := store.Closes()
	highs := store.Highs()
	lows := store.Lows()

	smaShort := SMA(closes, p.SMAShort)
	smaMid := SMA(closes, p.SMAMid)
	smaLong := SMA(closes, p.SMALong)
	macd, macdSignal, macdHist := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	k, d := Stochastic(highs, lows, closes, p.KPeriod, p.KSlowing, p.DPeriod)

	series := model.NewIndicatorSeries
	return model.Indicators{
		SMAShort: series(fmt.Sprintf("sma%d", p.SMAShort), smaShort),
		SMAMid:   series(fmt.Sprintf("sma%d", p.SMAMid), smaMid),
		SMALong:  series(fmt.Sprintf("sma%d", p.SMALong), smaLong),
		WMAFast:  series(fmt.Sprintf("wma%d", p.WMAFast), WMA(closes, p.WMAFast)),
		WMASlow:  series(fmt.Sprintf("wma%d", p.WMASlow), WMA(closes, p.WMASlow)),

		MACD:       series("macd", macd),
		MACDSignal: series("macd_signal", macdSignal),
		MACDHist:   series("macd_hist", macdHist),

		StochK: series("stochastic_k", k),
		StochD: series("stochastic_d", d),

		DevShortMid:  series(fmt.Sprintf("dev_%d_%d", p.SMAShort, p.SMAMid), Deviation(smaShort, smaMid)),
		DevMidLong:   series(fmt.Sprintf("dev_%d_%d", p.SMAMid, p.SMALong), Deviation(smaMid, smaLong)),
		DevShortLong: series(fmt.Sprintf("dev_%d_%d", p.SMAShort, p.SMALong), Deviation(smaShort, smaLong)),
		DevCloseMid:  series(fmt.Sprintf("dev_1_%d", p.SMAMid), Deviation(closes, smaMid)),
	}
}
