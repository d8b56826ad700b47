package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"TWScreener/internal/model"
)

const finMindBaseURL = "https://api.finmindtrade.com/api/v4/data"

// FinMindFetcher implements Fetcher using the FinMind TaiwanStockPrice dataset.
type FinMindFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Now     func() time.Time
}

// NewFinMindFetcher creates a new fetcher with optional token and proxy.
func NewFinMindFetcher(token, proxyURL string) *FinMindFetcher {
	return &FinMindFetcher{
		BaseURL: finMindBaseURL,
		Token:   token,
		Client:  newHTTPClient(proxyURL),
		Now:     time.Now,
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *FinMindFetcher) Name() string { return "finmind" }

// finMindBar is one row of the TaiwanStockPrice dataset.
type finMindBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"max"`
	Low    float64 `json:"min"`
	Close  float64 `json:"close"`
	Volume float64 `json:"Trading_Volume"`
}

type finMindResponse struct {
	Status       int          `json:"status"`
	Msg          string       `json:"msg"`
	ErrorMessage string       `json:"error_message"`
	Data         []finMindBar `json:"data"`
}

// FetchDailyBars requests the last days calendar days of prices.
func (f *FinMindFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	now := f.Now()
	q := url.Values{}
	q.Set("dataset", "TaiwanStockPrice")
	q.Set("data_id", symbol)
	q.Set("start_date", now.AddDate(0, 0, -days).Format("2006-01-02"))
	q.Set("end_date", now.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finmind fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("finmind fetch %s: status %d, body: %s", symbol, resp.StatusCode, string(body))
	}

	var result finMindResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("finmind decode %s: %w", symbol, err)
	}
	if result.Status != http.StatusOK {
		msg := result.ErrorMessage
		if msg == "" {
			msg = result.Msg
		}
		return nil, fmt.Errorf("finmind api error %d: %s", result.Status, msg)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("finmind %s: %w", symbol, ErrNoData)
	}

	bars := make([]model.OHLCV, 0, len(result.Data))
	for _, row := range result.Data {
		t, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, fmt.Errorf("finmind %s: parse date %q: %w", symbol, row.Date, err)
		}
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
