package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"loopnet_scraper/models"
)

// SQLiteStore keeps operational data: one run record per state pass and the
// progress log. Listing data itself only lives in the exported report.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		state TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		state TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON scrape_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO scrape_runs (state, started_at, status, listings_found, errors_count)
		VALUES (?, ?, ?, ?, ?)`,
		run.State, run.StartedAt, run.Status, run.ListingsFound, run.ErrorsCount)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs
		SET finished_at = ?, status = ?, listings_found = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingsFound, run.ErrorsCount, run.ID)
	return err
}

// Log records a progress message; runID may be nil for run-independent
// messages. Logging failures are swallowed, bookkeeping must never stop a
// scrape.
func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, state string) {
	s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message, state)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, state)
}
