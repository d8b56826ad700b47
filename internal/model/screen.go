package model

import "time"

// Candidate is one symbol submitted to a screening run. Price and
// ChangePercent are optional; zero means "derive from history".
type Candidate struct {
	Symbol              string  `json:"symbol" yaml:"symbol"`
	Name                string  `json:"name,omitempty" yaml:"name"`
	Rank                int     `json:"rank,omitempty" yaml:"rank"`
	Price               float64 `json:"price,omitempty" yaml:"price"`
	ChangePercent       float64 `json:"change_percent,omitempty" yaml:"change_percent"`
	EstimatedVolumeLots float64 `json:"estimated_volume_lots,omitempty" yaml:"estimated_volume_lots"`
}

// ScreenResult is the outcome of screening one candidate. Either Err is set
// or Snapshot is populated.
type ScreenResult struct {
	Candidate           Candidate `json:"candidate"`
	Snapshot            *Snapshot `json:"snapshot,omitempty"`
	AvgVolume5Lots      float64   `json:"avg_volume_5_lots,omitempty"`
	EstimatedVolumeLots float64   `json:"estimated_volume_lots,omitempty"`
	Err                 error     `json:"-"`
	Error               string    `json:"error,omitempty"`
}

// ScreenRun groups the results of one screening pass.
type ScreenRun struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Candidates int            `json:"candidates"`
	Results    []ScreenResult `json:"results"`
}

// Passed counts results without an error.
func (r *ScreenRun) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts results carrying an error.
func (r *ScreenRun) Failed() int {
	return len(r.Results) - r.Passed()
}
