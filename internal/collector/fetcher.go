package collector

import (
	"context"
	"errors"

	"TWScreener/internal/model"
)

// ErrNoData is returned when a data source has no bars for a symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching daily price history.
// Implementations return bars in ascending date order.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}
