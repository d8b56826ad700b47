package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Quote is the latest traded state of a symbol, derived from its last two bars.
type Quote struct {
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}
