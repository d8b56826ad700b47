package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"TWScreener/internal/calculator"
	"TWScreener/internal/collector"
	"TWScreener/internal/metrics"
	"TWScreener/internal/model"
	"TWScreener/internal/recorder"
	"TWScreener/internal/screener"
	"TWScreener/internal/strategy"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeAnalyzer struct{ bars int }

func (f fakeAnalyzer) Analyze(_ context.Context, symbol string) (*model.Analysis, error) {
	switch symbol {
	case "NONE":
		return nil, fmt.Errorf("fetch daily bars %s: %w", symbol, collector.ErrNoData)
	case "NEW":
		return nil, fmt.Errorf("%s: %w", symbol, screener.ErrInsufficientHistory)
	}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, f.bars)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = model.OHLCV{Time: day.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	store, err := calculator.NewStore(symbol, bars)
	if err != nil {
		return nil, err
	}
	return strategy.Analyze(store, strategy.DefaultParams()), nil
}

type fakeScanner struct {
	busy bool
	got  []model.Candidate
}

func (f *fakeScanner) Scan(candidates []model.Candidate) *model.ScreenRun {
	if f.busy {
		return nil
	}
	f.got = candidates
	run := &model.ScreenRun{ID: "run-1", Candidates: len(candidates)}
	for _, c := range candidates {
		run.Results = append(run.Results, model.ScreenResult{Candidate: c})
	}
	return run
}

type stubRecorder struct {
	recorder.NoopRecorder
	runs []recorder.RunSummary
}

func (s *stubRecorder) RecentRuns(limit int) ([]recorder.RunSummary, error) {
	if limit < len(s.runs) {
		return s.runs[:limit], nil
	}
	return s.runs, nil
}

func newTestServer(scanner *fakeScanner) *Server {
	return &Server{
		Analyzer: fakeAnalyzer{bars: 150},
		Scanner:  scanner,
		Recorder: &stubRecorder{runs: []recorder.RunSummary{{ID: "b"}, {ID: "a"}}},
		Metrics:  metrics.NewMetrics(nil),
		Watchlist: []model.Candidate{
			{Symbol: "2330", Rank: 1},
		},
	}
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(&fakeScanner{}).Router(), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestGetAnalysis(t *testing.T) {
	router := newTestServer(&fakeScanner{}).Router()

	var resp struct {
		Symbol     string        `json:"symbol"`
		Offset     int           `json:"offset"`
		Bars       []model.OHLCV `json:"bars"`
		Indicators []struct {
			Name   string     `json:"name"`
			Values []*float64 `json:"values"`
		} `json:"indicators"`
		Signals []struct {
			Name   string `json:"name"`
			Values []*int `json:"values"`
		} `json:"signals"`
	}

	w := do(t, router, http.MethodGet, "/api/v1/analysis/2330", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Offset != DefaultChartOffset || len(resp.Bars) != 150-DefaultChartOffset {
		t.Errorf("offset %d, bars %d", resp.Offset, len(resp.Bars))
	}
	if len(resp.Indicators) != 14 || resp.Indicators[0].Name != "sma5" {
		t.Fatalf("indicators: %+v", resp.Indicators)
	}
	if len(resp.Signals) != 4 || resp.Signals[0].Name != "trend" {
		t.Fatalf("signals: %+v", resp.Signals)
	}
	if v := resp.Signals[0].Values[0]; v == nil || *v != strategy.TrendCBA {
		t.Errorf("trend after trim: %v", v)
	}

	// With no trim the warm-up bars come back as null.
	w = do(t, router, http.MethodGet, "/api/v1/analysis/2330?offset=0", "")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Indicators[2].Name != "sma60" || resp.Indicators[2].Values[0] != nil {
		t.Errorf("sma60[0] must be null: %+v", resp.Indicators[2].Values[0])
	}
}

func TestGetAnalysis_Errors(t *testing.T) {
	router := newTestServer(&fakeScanner{}).Router()
	tests := []struct {
		path string
		code int
	}{
		{"/api/v1/analysis/2330?offset=-1", http.StatusBadRequest},
		{"/api/v1/analysis/2330?offset=abc", http.StatusBadRequest},
		{"/api/v1/analysis/NONE", http.StatusNotFound},
		{"/api/v1/analysis/NEW", http.StatusUnprocessableEntity},
		{"/api/v1/snapshot/NONE", http.StatusNotFound},
	}
	for _, tt := range tests {
		if w := do(t, router, http.MethodGet, tt.path, ""); w.Code != tt.code {
			t.Errorf("%s: got %d, want %d", tt.path, w.Code, tt.code)
		}
	}
}

func TestGetSnapshot(t *testing.T) {
	w := do(t, newTestServer(&fakeScanner{}).Router(), http.MethodGet, "/api/v1/snapshot/2330", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Symbol != "2330" || snap.Bars != 150 || snap.Quote.Price != 249 {
		t.Errorf("snapshot: %+v", snap)
	}
	if snap.Trend == nil || *snap.Trend != strategy.TrendCBA {
		t.Errorf("trend: %v", snap.Trend)
	}
}

func TestPostScreen(t *testing.T) {
	scanner := &fakeScanner{}
	router := newTestServer(scanner).Router()

	w := do(t, router, http.MethodPost, "/api/v1/screen", "")
	if w.Code != http.StatusOK {
		t.Fatalf("watchlist scan: %d %s", w.Code, w.Body.String())
	}
	if len(scanner.got) != 1 || scanner.got[0].Symbol != "2330" {
		t.Errorf("empty body must use the watchlist, got %+v", scanner.got)
	}

	w = do(t, router, http.MethodPost, "/api/v1/screen", `{"candidates":[{"symbol":"2317"},{"symbol":"2454","rank":3}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("posted scan: %d %s", w.Code, w.Body.String())
	}
	if len(scanner.got) != 2 || scanner.got[1].Rank != 3 {
		t.Errorf("posted candidates: %+v", scanner.got)
	}
	if !strings.Contains(w.Body.String(), `"passed":2`) {
		t.Errorf("body: %s", w.Body.String())
	}

	if w := do(t, router, http.MethodPost, "/api/v1/screen", `{"candidates":`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d", w.Code)
	}

	scanner.busy = true
	if w := do(t, router, http.MethodPost, "/api/v1/screen", ""); w.Code != http.StatusConflict {
		t.Errorf("busy scanner: got %d", w.Code)
	}
}

func TestGetRuns(t *testing.T) {
	router := newTestServer(&fakeScanner{}).Router()
	w := do(t, router, http.MethodGet, "/api/v1/runs?limit=1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total":1`) {
		t.Errorf("runs: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodGet, "/api/v1/runs?limit=0", ""); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0: got %d", w.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(&fakeScanner{})
	s.Metrics.ObserveRun(7)
	w := do(t, s.Router(), http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "twscreener_last_run_passed 7") {
		t.Errorf("metrics: %d %s", w.Code, w.Body.String())
	}
}
