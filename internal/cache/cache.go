// Package cache stores fetched price history between screening runs so
// repeated analyses of the same symbol do not hit the data source again.
package cache

import (
	"context"
	"sync"
	"time"

	"TWScreener/internal/model"
)

// DefaultTTL matches the hourly refresh of per-stock analyses.
const DefaultTTL = time.Hour

// Cache stores daily bars by symbol.
type Cache interface {
	Get(ctx context.Context, symbol string) ([]model.OHLCV, bool, error)
	Put(ctx context.Context, symbol string, bars []model.OHLCV) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]model.OHLCV, bool, error) { return nil, false, nil }
func (Nop) Put(context.Context, string, []model.OHLCV) error         { return nil }

type memoryEntry struct {
	bars    []model.OHLCV
	expires time.Time
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache; ttl <= 0 uses DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, symbol string) ([]model.OHLCV, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[symbol]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, symbol)
		return nil, false, nil
	}
	return append([]model.OHLCV(nil), e.bars...), true, nil
}

func (m *MemoryCache) Put(_ context.Context, symbol string, bars []model.OHLCV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[symbol] = memoryEntry{
		bars:    append([]model.OHLCV(nil), bars...),
		expires: m.now().Add(m.ttl),
	}
	return nil
}
