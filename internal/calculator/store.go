package calculator

import (
	"errors"
	"fmt"
	"math"

	"TWScreener/internal/model"
)

var (
	// ErrNotAscending is returned when bar dates repeat or go backwards.
	ErrNotAscending = errors.New("bars must have strictly ascending dates")
	// ErrEmptySeries is returned when no bar survives validation.
	ErrEmptySeries = errors.New("no valid bars")
)

// SeriesStore holds the validated, date-ordered bars of one security.
type SeriesStore struct {
	symbol  string
	bars    []model.OHLCV
	dropped int
}

// NewStore validates bars and returns a store over a private copy of them.
// Bars with a non-finite price or volume are dropped; duplicated or
// out-of-order dates are rejected.
func NewStore(symbol string, bars []model.OHLCV) (*SeriesStore, error) {
	kept := make([]model.OHLCV, 0, len(bars))
	dropped := 0
	for _, b := range bars {
		if !finiteBar(b) {
			dropped++
			continue
		}
		if n := len(kept); n > 0 && !b.Time.After(kept[n-1].Time) {
			return nil, fmt.Errorf("%w: bar %d at %s follows %s", ErrNotAscending,
				n, b.Time.Format("2006-01-02"), kept[n-1].Time.Format("2006-01-02"))
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		return nil, ErrEmptySeries
	}
	return &SeriesStore{symbol: symbol, bars: kept, dropped: dropped}, nil
}

func finiteBar(b model.OHLCV) bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s *SeriesStore) Symbol() string { return s.symbol }
func (s *SeriesStore) Len() int       { return len(s.bars) }

// Dropped reports how many malformed bars were discarded.
func (s *SeriesStore) Dropped() int { return s.dropped }

// Bars returns a copy of the validated bars.
func (s *SeriesStore) Bars() []model.OHLCV {
	return append([]model.OHLCV(nil), s.bars...)
}

// Last returns the most recent bar.
func (s *SeriesStore) Last() model.OHLCV { return s.bars[len(s.bars)-1] }

func (s *SeriesStore) Closes() []float64  { return s.column(func(b model.OHLCV) float64 { return b.Close }) }
func (s *SeriesStore) Highs() []float64   { return s.column(func(b model.OHLCV) float64 { return b.High }) }
func (s *SeriesStore) Lows() []float64    { return s.column(func(b model.OHLCV) float64 { return b.Low }) }
func (s *SeriesStore) Volumes() []float64 { return s.column(func(b model.OHLCV) float64 { return b.Volume }) }

func (s *SeriesStore) column(pick func(model.OHLCV) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = pick(b)
	}
	return out
}
