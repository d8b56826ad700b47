package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TWScreener/internal/model"
)

// SQLiteRecorder persists screening history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS screen_runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			candidates  INTEGER,
			passed      INTEGER,
			failed      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON screen_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS screen_results (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id              TEXT NOT NULL REFERENCES screen_runs(id),
			symbol              TEXT NOT NULL,
			name                TEXT,
			rank                INTEGER,
			price               REAL,
			change_percent      REAL,
			est_volume_lots     REAL,
			avg_volume_5_lots   REAL,
			as_of               INTEGER,
			stochastic_k        REAL,
			stochastic_d        REAL,
			trend               INTEGER,
			deviation           INTEGER,
			bias                INTEGER,
			oscillator          INTEGER,
			error               TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON screen_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_symbol ON screen_results(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScreen stores the run header and every result in one transaction.
// Undefined snapshot values are stored as NULL.
func (r *SQLiteRecorder) RecordScreen(run *model.ScreenRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	sum := summarize(run)
	if _, err := tx.Exec(`INSERT INTO screen_runs
		(id, started_at, finished_at, candidates, passed, failed)
		VALUES (?,?,?,?,?,?)`,
		sum.ID, sum.StartedAt.Unix(), sum.FinishedAt.Unix(),
		sum.Candidates, sum.Passed, sum.Failed,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO screen_results
		(run_id, symbol, name, rank, price, change_percent, est_volume_lots, avg_volume_5_lots,
		 as_of, stochastic_k, stochastic_d, trend, deviation, bias, oscillator, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range run.Results {
		c := res.Candidate
		var (
			asOf                  sql.NullInt64
			k, d                  sql.NullFloat64
			trend, dev, bias, osc sql.NullInt64
			errText               sql.NullString
		)
		if s := res.Snapshot; s != nil {
			asOf = sql.NullInt64{Int64: s.AsOf.Unix(), Valid: true}
			k, d = nullFloat(s.K), nullFloat(s.D)
			trend, dev = nullInt(s.Trend), nullInt(s.Deviation)
			bias, osc = nullInt(s.Bias), nullInt(s.Oscillator)
		}
		if res.Error != "" {
			errText = sql.NullString{String: res.Error, Valid: true}
		}
		if _, err := stmt.Exec(run.ID, c.Symbol, c.Name, c.Rank, c.Price, c.ChangePercent,
			res.EstimatedVolumeLots, res.AvgVolume5Lots,
			asOf, k, d, trend, dev, bias, osc, errText,
		); err != nil {
			return fmt.Errorf("insert result %s: %w", c.Symbol, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit run headers, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, started_at, finished_at, candidates, passed, failed
		FROM screen_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var started, finished int64
		if err := rows.Scan(&s.ID, &started, &finished, &s.Candidates, &s.Passed, &s.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.Unix(started, 0)
		s.FinishedAt = time.Unix(finished, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
