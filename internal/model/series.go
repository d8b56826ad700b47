package model

import (
	"encoding/json"
	"math"
)

// Series is a named, index-aligned sequence where every entry is either a
// value or explicitly undefined. Values cannot be modified after construction.
type Series[T float64 | int] struct {
	name   string
	values []T
	valid  []bool
}

// IndicatorSeries holds a derived numeric indicator.
type IndicatorSeries = Series[float64]

// SignalSeries holds discrete signal codes.
type SignalSeries = Series[int]

// NewSeries copies values and valid into a new Series. Entries beyond
// len(valid) are undefined.
func NewSeries[T float64 | int](name string, values []T, valid []bool) Series[T] {
	s := Series[T]{
		name:   name,
		values: make([]T, len(values)),
		valid:  make([]bool, len(values)),
	}
	for i := range values {
		if i < len(valid) && valid[i] {
			s.values[i] = values[i]
			s.valid[i] = true
		}
	}
	return s
}

// NewIndicatorSeries builds an IndicatorSeries treating every non-finite
// entry (NaN, ±Inf) as undefined.
func NewIndicatorSeries(name string, values []float64) IndicatorSeries {
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return NewSeries(name, values, valid)
}

func (s Series[T]) Name() string { return s.name }
func (s Series[T]) Len() int     { return len(s.values) }

// At returns the value at i and whether it is defined. Out-of-range
// indexes are undefined.
func (s Series[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(s.values) || !s.valid[i] {
		var zero T
		return zero, false
	}
	return s.values[i], true
}

// Last returns the final element, which may be undefined.
func (s Series[T]) Last() (T, bool) {
	return s.At(len(s.values) - 1)
}

// LastDefined returns the most recent defined value and its index.
func (s Series[T]) LastDefined() (T, int, bool) {
	for i := len(s.values) - 1; i >= 0; i-- {
		if s.valid[i] {
			return s.values[i], i, true
		}
	}
	var zero T
	return zero, -1, false
}

// Defined counts the defined entries.
func (s Series[T]) Defined() int {
	n := 0
	for _, ok := range s.valid {
		if ok {
			n++
		}
	}
	return n
}

// Slice returns the entries from index from onwards as a new Series.
func (s Series[T]) Slice(from int) Series[T] {
	if from < 0 {
		from = 0
	}
	if from > len(s.values) {
		from = len(s.values)
	}
	return NewSeries(s.name, s.values[from:], s.valid[from:])
}

// Pointers returns one entry per index, nil where undefined.
func (s Series[T]) Pointers() []*T {
	out := make([]*T, len(s.values))
	for i := range s.values {
		if s.valid[i] {
			v := s.values[i]
			out[i] = &v
		}
	}
	return out
}

// MarshalJSON renders the series as {"name": ..., "values": [...]} with
// undefined entries as null.
func (s Series[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string `json:"name"`
		Values []*T   `json:"values"`
	}{s.name, s.Pointers()})
}
