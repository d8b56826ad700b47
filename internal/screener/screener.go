// Package screener ranks and filters a list of candidate symbols by running
// the analysis engine over each one on a bounded worker pool.
package screener

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"TWScreener/internal/calculator"
	"TWScreener/internal/metrics"
	"TWScreener/internal/model"
	"TWScreener/internal/strategy"
)

const (
	// DefaultWorkers bounds the number of symbols analysed concurrently.
	DefaultWorkers = 10
	// unrankedRank sorts candidates without a rank after every ranked one.
	unrankedRank = 999
	sharesPerLot = 1000
)

// ErrInsufficientHistory is returned for symbols with fewer bars than
// Criteria.MinBars.
var ErrInsufficientHistory = errors.New("insufficient history")

// Criteria holds the screening thresholds.
type Criteria struct {
	MinPrice         float64 `yaml:"min_price"`
	MinChangePercent float64 `yaml:"min_change_percent"`
	VolumeMultiple   float64 `yaml:"volume_multiple"`
	MinBars          int     `yaml:"min_bars"`
}

// DefaultCriteria returns the standard screening thresholds.
func DefaultCriteria() Criteria {
	return Criteria{
		MinPrice:         35,
		MinChangePercent: 2,
		VolumeMultiple:   2,
		MinBars:          60,
	}
}

// WithDefaults fills zero fields from DefaultCriteria.
func (c Criteria) WithDefaults() Criteria {
	d := DefaultCriteria()
	if c.MinPrice == 0 {
		c.MinPrice = d.MinPrice
	}
	if c.MinChangePercent == 0 {
		c.MinChangePercent = d.MinChangePercent
	}
	if c.VolumeMultiple == 0 {
		c.VolumeMultiple = d.VolumeMultiple
	}
	if c.MinBars == 0 {
		c.MinBars = d.MinBars
	}
	return c
}

func (c Criteria) passesQuote(price, changePercent float64) bool {
	return price > c.MinPrice && changePercent > c.MinChangePercent
}

// Source provides validated price history for a symbol.
type Source interface {
	Collect(ctx context.Context, symbol string) (*calculator.SeriesStore, error)
}

// Screener runs screening passes. It is safe for concurrent use.
type Screener struct {
	source   Source
	params   strategy.Params
	criteria Criteria
	workers  int
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates a Screener. Zero criteria fields and a non-positive worker
// count fall back to defaults.
func New(source Source, params strategy.Params, criteria Criteria, workers int, m *metrics.Metrics) *Screener {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Screener{
		source:   source,
		params:   params.WithDefaults(),
		criteria: criteria.WithDefaults(),
		workers:  workers,
		metrics:  m,
		now:      time.Now,
	}
}

// Criteria returns the effective thresholds.
func (s *Screener) Criteria() Criteria { return s.criteria }

// Analyze collects the history of symbol and runs the full engine on it.
func (s *Screener) Analyze(ctx context.Context, symbol string) (*model.Analysis, error) {
	store, err := s.source.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if store.Len() < s.criteria.MinBars {
		return nil, fmt.Errorf("%s: %d bars, need %d: %w", symbol, store.Len(), s.criteria.MinBars, ErrInsufficientHistory)
	}
	return strategy.Analyze(store, s.params), nil
}

// Run screens every candidate and returns the surviving results sorted by
// rank. Candidates that fail to analyse are kept with their error;
// candidates rejected by a filter are dropped.
func (s *Screener) Run(ctx context.Context, candidates []model.Candidate) *model.ScreenRun {
	run := &model.ScreenRun{
		ID:         uuid.NewString(),
		StartedAt:  s.now(),
		Candidates: len(candidates),
	}

	slots := make([]*model.ScreenResult, len(candidates))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, cand := range candidates {
		wg.Add(1)
		go func(i int, cand model.Candidate) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				slots[i] = failed(cand, ctx.Err())
				return
			}
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				slots[i] = failed(cand, err)
				return
			}

			start := time.Now()
			res, keep := s.screen(ctx, cand)
			status := metrics.StatusOK
			switch {
			case res.Err != nil:
				status = metrics.StatusError
			case !keep:
				status = metrics.StatusFiltered
			}
			s.metrics.ObserveAnalysis(status, time.Since(start))
			if keep {
				slots[i] = &res
			}
		}(i, cand)
	}
	wg.Wait()

	for _, r := range slots {
		if r != nil {
			run.Results = append(run.Results, *r)
		}
	}
	sort.SliceStable(run.Results, func(i, j int) bool {
		ri, rj := rankOf(run.Results[i].Candidate), rankOf(run.Results[j].Candidate)
		if ri != rj {
			return ri < rj
		}
		return run.Results[i].Candidate.Symbol < run.Results[j].Candidate.Symbol
	})
	run.FinishedAt = s.now()
	s.metrics.ObserveRun(run.Passed())
	return run
}

// screen evaluates one candidate. The bool reports whether the result
// belongs in the run.
func (s *Screener) screen(ctx context.Context, cand model.Candidate) (model.ScreenResult, bool) {
	// Quoted candidates are filtered before any fetch.
	if cand.Price > 0 && !s.criteria.passesQuote(cand.Price, cand.ChangePercent) {
		return model.ScreenResult{Candidate: cand}, false
	}

	a, err := s.Analyze(ctx, cand.Symbol)
	if err != nil {
		return *failed(cand, err), true
	}
	snap := strategy.Summarize(a)

	if cand.Price == 0 {
		cand.Price = snap.Quote.Price
		cand.ChangePercent = snap.Quote.ChangePercent
		if !s.criteria.passesQuote(cand.Price, cand.ChangePercent) {
			return model.ScreenResult{Candidate: cand}, false
		}
	}

	if snap.AvgVolume5 == nil {
		return *failed(cand, fmt.Errorf("%s: no volume average: %w", cand.Symbol, ErrInsufficientHistory)), true
	}
	avgLots := *snap.AvgVolume5 / sharesPerLot
	if avgLots <= 0 {
		return model.ScreenResult{Candidate: cand}, false
	}
	estLots := cand.EstimatedVolumeLots
	if estLots == 0 {
		estLots = a.Bars[len(a.Bars)-1].Volume / sharesPerLot
	}
	if estLots <= s.criteria.VolumeMultiple*avgLots {
		return model.ScreenResult{Candidate: cand}, false
	}

	return model.ScreenResult{
		Candidate:           cand,
		Snapshot:            &snap,
		AvgVolume5Lots:      avgLots,
		EstimatedVolumeLots: estLots,
	}, true
}

func failed(cand model.Candidate, err error) *model.ScreenResult {
	return &model.ScreenResult{Candidate: cand, Err: err, Error: err.Error()}
}

func rankOf(c model.Candidate) int {
	if c.Rank <= 0 {
		return unrankedRank
	}
	return c.Rank
}
