// Package api exposes the analysis engine and screener over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"TWScreener/internal/collector"
	"TWScreener/internal/metrics"
	"TWScreener/internal/model"
	"TWScreener/internal/recorder"
	"TWScreener/internal/screener"
	"TWScreener/internal/strategy"
)

// DefaultChartOffset is the number of leading warm-up bars hidden from
// chart consumers.
const DefaultChartOffset = 101

// Analyzer runs the engine over one symbol.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*model.Analysis, error)
}

// Scanner runs a screening pass. It returns nil when a scan is already
// running.
type Scanner interface {
	Scan(candidates []model.Candidate) *model.ScreenRun
}

// Server holds the HTTP handlers' collaborators.
type Server struct {
	Analyzer  Analyzer
	Scanner   Scanner
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Watchlist []model.Candidate
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	if s.Metrics != nil {
		router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/analysis/:symbol", s.getAnalysis)
	v1.GET("/snapshot/:symbol", s.getSnapshot)
	v1.POST("/screen", s.postScreen)
	v1.GET("/runs", s.getRuns)
	return router
}

// getAnalysis returns every series for charting.
// GET /api/v1/analysis/:symbol?offset=101
func (s *Server) getAnalysis(c *gin.Context) {
	offset := DefaultChartOffset
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		offset = n
	}

	a, err := s.Analyzer.Analyze(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	trimmed := a.Trim(offset)
	c.JSON(http.StatusOK, gin.H{
		"symbol":     trimmed.Symbol,
		"offset":     offset,
		"bars":       trimmed.Bars,
		"indicators": trimmed.Indicators.All(),
		"signals":    trimmed.Signals.All(),
	})
}

// getSnapshot returns the latest-bar view of one symbol.
// GET /api/v1/snapshot/:symbol
func (s *Server) getSnapshot(c *gin.Context) {
	a, err := s.Analyzer.Analyze(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, strategy.Summarize(a))
}

type screenRequest struct {
	Candidates []model.Candidate `json:"candidates"`
}

// postScreen runs a screening pass over the posted candidates, or over the
// configured watchlist when the body is empty.
// POST /api/v1/screen
func (s *Server) postScreen(c *gin.Context) {
	var req screenRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidates := req.Candidates
	if len(candidates) == 0 {
		candidates = s.Watchlist
	}
	if len(candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no candidates given and watchlist is empty"})
		return
	}

	run := s.Scanner.Scan(candidates)
	if run == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a scan is already running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   run,
		"passed": run.Passed(),
		"failed": run.Failed(),
	})
}

// getRuns lists recent screening runs.
// GET /api/v1/runs?limit=10
func (s *Server) getRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	runs, err := s.Recorder.RecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"data": runs, "total": len(runs)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, collector.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, screener.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// requestLogger logs failed or slow requests.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if c.Writer.Status() >= 400 || duration > time.Second {
			log.Printf("[WARN] %s %s %d %v", c.Request.Method, path, c.Writer.Status(), duration)
		}
	}
}
