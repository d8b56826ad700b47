package scheduler

import (
	"context"
	"fmt"
	"html"
	"log"
	"sync"
	"sync/atomic"

	"TWScreener/internal/model"
	"TWScreener/internal/notifier"
	"TWScreener/internal/recorder"
	"TWScreener/internal/screener"
	"TWScreener/internal/strategy"

	"github.com/robfig/cron/v3"
)

// DefaultScanCron runs the scan on weekdays after the TWSE close.
const DefaultScanCron = "0 30 14 * * 1-5"

// Scheduler manages the cron tasks and bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Screener  *screener.Screener
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Watchlist []model.Candidate
	Ctx       context.Context

	running atomic.Bool
	mu      sync.RWMutex
	last    *model.ScreenRun
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, scr *screener.Screener, n notifier.Notifier, rec recorder.Recorder, watchlist []model.Candidate) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		Screener:  scr,
		Notifier:  n,
		Recorder:  rec,
		Watchlist: watchlist,
		Ctx:       ctx,
	}
}

// Register registers the daily scan task.
func (s *Scheduler) Register(scanCron string) error {
	if scanCron == "" {
		scanCron = DefaultScanCron
	}
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow screens the watchlist immediately. It returns nil if a scan
// is already in progress.
func (s *Scheduler) RunScanNow() *model.ScreenRun {
	return s.scan(s.Watchlist)
}

// Scan screens the given candidates, records and reports the run.
func (s *Scheduler) Scan(candidates []model.Candidate) *model.ScreenRun {
	return s.scan(candidates)
}

// LastRun returns the most recent completed run, or nil.
func (s *Scheduler) LastRun() *model.ScreenRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Scheduler) scanTask() {
	s.scan(s.Watchlist)
}

func (s *Scheduler) scan(candidates []model.Candidate) *model.ScreenRun {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("[WARN] scan already running, skipped")
		return nil
	}
	defer s.running.Store(false)

	log.Printf("[INFO] running scan over %d candidates", len(candidates))
	run := s.Screener.Run(s.Ctx, candidates)
	log.Printf("[INFO] scan %s finished: %d passed, %d failed", run.ID, run.Passed(), run.Failed())

	s.mu.Lock()
	s.last = run
	s.mu.Unlock()

	if err := s.Recorder.RecordScreen(run); err != nil {
		log.Printf("[ERROR] record scan %s: %v", run.ID, err)
	}
	s.trySend(notifier.FormatScreenReport(run))
	return run
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, cmd notifier.Command) string {
	switch cmd.Name {
	case "/scan", "選股":
		if s.RunScanNow() == nil {
			return "⏳ 選股執行中，請稍候"
		}
		return ""
	case "/analyze", "查詢":
		symbol := cmd.Arg(0)
		if symbol == "" {
			return "用法: /analyze &lt;代號&gt;"
		}
		return s.analyze(ctx, symbol)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) analyze(ctx context.Context, symbol string) string {
	a, err := s.Screener.Analyze(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] analyze %s: %v", symbol, err)
		return fmt.Sprintf("❌ %s 分析失敗: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
	}
	snap := strategy.Summarize(a)
	return notifier.FormatSnapshot(&snap)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
