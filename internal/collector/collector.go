package collector

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"TWScreener/internal/cache"
	"TWScreener/internal/calculator"
	"TWScreener/internal/metrics"
	"TWScreener/internal/model"
)

// DefaultLookbackDays is the calendar window requested per symbol.
const DefaultLookbackDays = 300

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Data  map[string][]model.OHLCV
	Err   map[string]error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if err, ok := m.Err[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Data[symbol]; ok {
		return bars, nil
	}
	return GenerateMockBars(m.Price, days, time.Now()), nil
}

// Calls reports how many fetches were made.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

// GenerateMockBars builds count gently rising daily bars ending the day before end.
func GenerateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   day.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches price history, going through the cache first, and
// returns a validated store.
type Collector struct {
	Fetcher Fetcher
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Days    int
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, c cache.Cache, m *metrics.Metrics) *Collector {
	if c == nil {
		c = cache.Nop{}
	}
	return &Collector{Fetcher: fetcher, Cache: c, Metrics: m, Days: DefaultLookbackDays}
}

// Collect returns the validated price history of symbol. Only validated
// bars are cached, so a cache hit never needs to drop anything.
func (c *Collector) Collect(ctx context.Context, symbol string) (*calculator.SeriesStore, error) {
	cached, ok, err := c.Cache.Get(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] cache get %s: %v", symbol, err)
	}
	if ok {
		if store, err := calculator.NewStore(symbol, cached); err == nil {
			c.Metrics.CacheHit()
			return store, nil
		}
		log.Printf("[WARN] discarding invalid cached bars for %s", symbol)
	}

	start := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.Days)
	c.Metrics.ObserveFetch(c.Fetcher.Name(), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars %s: %w", symbol, err)
	}
	store, err := calculator.NewStore(symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", symbol, err)
	}
	if n := store.Dropped(); n > 0 {
		log.Printf("[WARN] %s: dropped %d malformed bars", symbol, n)
	}
	if err := c.Cache.Put(ctx, symbol, store.Bars()); err != nil {
		log.Printf("[WARN] cache put %s: %v", symbol, err)
	}
	return store, nil
}
