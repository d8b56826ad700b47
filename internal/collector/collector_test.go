package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TWScreener/internal/cache"
	"TWScreener/internal/calculator"
	"TWScreener/internal/model"
)

func TestFinMindFetcher_FetchDailyBars(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"status":200,"msg":"success","data":[
			{"date":"2024-05-03","open":10,"max":12,"min":9,"close":11,"Trading_Volume":5000},
			{"date":"2024-05-02","open":9,"max":10,"min":8,"close":10,"Trading_Volume":4000}
		]}`)
	}))
	defer srv.Close()

	f := NewFinMindFetcher("secret", "")
	f.BaseURL = srv.URL
	f.Now = func() time.Time { return time.Date(2024, 5, 3, 15, 0, 0, 0, time.UTC) }

	bars, err := f.FetchDailyBars(context.Background(), "2330", 300)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Time.Before(bars[1].Time) {
		t.Error("bars must be sorted ascending")
	}
	if bars[1].High != 12 || bars[1].Low != 9 || bars[1].Volume != 5000 {
		t.Errorf("unexpected field mapping: %+v", bars[1])
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("authorization header: got %q", gotAuth)
	}
	want := "data_id=2330&dataset=TaiwanStockPrice&end_date=2024-05-03&start_date=2023-07-08"
	if gotQuery != want {
		t.Errorf("query: got %q, want %q", gotQuery, want)
	}
}

func TestFinMindFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noData bool
	}{
		{"api error", http.StatusOK, `{"status":402,"msg":"Requests reach the upper limit"}`, false},
		{"http error", http.StatusBadGateway, `bad gateway`, false},
		{"empty", http.StatusOK, `{"status":200,"data":[]}`, true},
		{"bad date", http.StatusOK, `{"status":200,"data":[{"date":"05/03/2024"}]}`, false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			fmt.Fprint(w, tt.body)
		}))
		f := NewFinMindFetcher("", "")
		f.BaseURL = srv.URL
		_, err := f.FetchDailyBars(context.Background(), "2330", 30)
		srv.Close()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if tt.noData != errors.Is(err, ErrNoData) {
			t.Errorf("%s: errors.Is(err, ErrNoData) = %v, err = %v", tt.name, !tt.noData, err)
		}
	}
}

func TestYahooFetcher_NullBarsBecomeNaN(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1714521600,1714608000,1714694400],
			"indicators":{"quote":[{"open":[1,null,3],"high":[2,null,4],"low":[0.5,null,2],
			"close":[1.5,null,3.5],"volume":[100,null,300]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/chart/"
	bars, err := f.FetchDailyBars(context.Background(), "2330", 30)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if gotPath != "/chart/2330.TW" {
		t.Errorf("path: got %q", gotPath)
	}
	if len(bars) != 3 || !math.IsNaN(bars[1].Close) {
		t.Fatalf("null quote must map to NaN, got %+v", bars)
	}
	store, err := calculator.NewStore("2330", bars)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Len() != 2 || store.Dropped() != 1 {
		t.Errorf("store: len=%d dropped=%d, want 2/1", store.Len(), store.Dropped())
	}
}

func TestYahooFetcher_NullVolumeDropsBar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1714521600,1714608000,1714694400],
			"indicators":{"quote":[{"open":[1,2,3],"high":[2,3,4],"low":[0.5,1.5,2],
			"close":[1.5,2.5,3.5],"volume":[100,null,300]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/chart/"
	bars, err := f.FetchDailyBars(context.Background(), "2330", 30)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if len(bars) != 3 || !math.IsNaN(bars[1].Volume) || bars[1].Close != 2.5 {
		t.Fatalf("null volume must map to NaN, got %+v", bars)
	}
	store, err := calculator.NewStore("2330", bars)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Len() != 2 || store.Dropped() != 1 {
		t.Errorf("store: len=%d dropped=%d, want 2/1", store.Len(), store.Dropped())
	}
	if v := store.Volumes(); v[0] != 100 || v[1] != 300 {
		t.Errorf("volumes: got %v", v)
	}
}

func TestYahooFetcher_SymbolMapping(t *testing.T) {
	f := NewYahooFetcher("")
	tests := map[string]string{
		"2330":     "2330.TW",
		"6488.TWO": "6488.TWO",
		"^TWII":    "^TWII",
		"AAPL":     "AAPL",
	}
	for in, want := range tests {
		if got := f.yahooSymbol(in); got != want {
			t.Errorf("yahooSymbol(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/"
	if _, err := f.FetchDailyBars(context.Background(), "9999", 30); err == nil {
		t.Error("expected api error")
	}
}

func TestCollector_UsesCache(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock := &MockFetcher{Data: map[string][]model.OHLCV{"2330": GenerateMockBars(600, 80, end)}}
	col := NewCollector(mock, cache.NewMemoryCache(time.Hour), nil)

	for i := 0; i < 3; i++ {
		store, err := col.Collect(context.Background(), "2330")
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if store.Len() != 80 {
			t.Fatalf("expected 80 bars, got %d", store.Len())
		}
	}
	if mock.Calls() != 1 {
		t.Errorf("expected 1 fetch, got %d", mock.Calls())
	}
}

func TestCollector_Errors(t *testing.T) {
	boom := errors.New("boom")
	bars := GenerateMockBars(100, 3, time.Now())
	bars[2].Time = bars[0].Time
	mock := &MockFetcher{
		Err:  map[string]error{"BAD": boom},
		Data: map[string][]model.OHLCV{"DUP": bars},
	}
	col := NewCollector(mock, nil, nil)

	if _, err := col.Collect(context.Background(), "BAD"); !errors.Is(err, boom) {
		t.Errorf("fetch error must be wrapped, got %v", err)
	}
	if _, err := col.Collect(context.Background(), "DUP"); !errors.Is(err, calculator.ErrNotAscending) {
		t.Errorf("expected ErrNotAscending, got %v", err)
	}
}
