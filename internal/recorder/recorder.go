package recorder

import (
	"time"

	"TWScreener/internal/model"
)

// RunSummary is the stored header of one screening run.
type RunSummary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Candidates int       `json:"candidates"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
}

func summarize(run *model.ScreenRun) RunSummary {
	return RunSummary{
		ID:         run.ID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Candidates: run.Candidates,
		Passed:     run.Passed(),
		Failed:     run.Failed(),
	}
}

// Recorder persists screening history for later analysis.
type Recorder interface {
	RecordScreen(run *model.ScreenRun) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
