package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/alvmarrod/news-weaver/internal/aggregate"
	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawl_runs (
		run_id TEXT PRIMARY KEY,
		site_name TEXT NOT NULL,
		domain TEXT NOT NULL,
		seed_url TEXT NOT NULL,
		workers INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP NOT NULL,
		termination_reason TEXT
	);

	CREATE TABLE IF NOT EXISTS fetches (
		fetch_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES crawl_runs(run_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS visits (
		visit_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		url TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		outlinks INTEGER NOT NULL,
		content_type TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES crawl_runs(run_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS url_decisions (
		decision_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		url TEXT NOT NULL,
		within_domain INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES crawl_runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_fetches_run ON fetches(run_id);
	CREATE INDEX IF NOT EXISTS idx_visits_run ON visits(run_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_run ON url_decisions(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run and its merged dataset in a single transaction.
// A run without an id gets a fresh UUID. Returns the run id.
func (s *Storage) SaveRun(run Run, ds aggregate.Dataset) (string, error) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO crawl_runs (run_id, site_name, domain, seed_url, workers, started_at, ended_at, termination_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.SiteName, run.Domain, run.SeedURL, run.Workers,
		run.StartedAt.UTC(), run.EndedAt.UTC(), run.TerminationReason)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertFetches(tx, run.RunID, ds.Fetches); err != nil {
		return "", err
	}
	if err := insertVisits(tx, run.RunID, ds.Visits); err != nil {
		return "", err
	}
	if err := insertDecisions(tx, run.RunID, ds.Decisions); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.RunID, nil
}

func insertFetches(tx *sql.Tx, runID string, fetches []telemetry.FetchRecord) error {
	stmt, err := tx.Prepare("INSERT INTO fetches (run_id, url, status_code) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare fetch insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range fetches {
		if _, err := stmt.Exec(runID, f.URL, f.StatusCode); err != nil {
			return fmt.Errorf("failed to insert fetch: %w", err)
		}
	}
	return nil
}

func insertVisits(tx *sql.Tx, runID string, visits []telemetry.VisitRecord) error {
	stmt, err := tx.Prepare("INSERT INTO visits (run_id, url, size_bytes, outlinks, content_type) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare visit insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range visits {
		if _, err := stmt.Exec(runID, v.URL, v.Size, v.Outlinks, v.ContentType); err != nil {
			return fmt.Errorf("failed to insert visit: %w", err)
		}
	}
	return nil
}

func insertDecisions(tx *sql.Tx, runID string, decisions []telemetry.URLDecision) error {
	stmt, err := tx.Prepare("INSERT INTO url_decisions (run_id, url, within_domain) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		if _, err := stmt.Exec(runID, d.URL, d.WithinDomain); err != nil {
			return fmt.Errorf("failed to insert decision: %w", err)
		}
	}
	return nil
}

// GetRun retrieves a run by id, returns nil if not found
func (s *Storage) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, site_name, domain, seed_url, workers, started_at, ended_at, termination_reason
		FROM crawl_runs
		WHERE run_id = ?
	`, runID)
	return scanRun(row)
}

// LatestRun returns the most recently started run, or nil if none was stored
func (s *Storage) LatestRun() (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, site_name, domain, seed_url, workers, started_at, ended_at, termination_reason
		FROM crawl_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`)
	return scanRun(row)
}

func scanRun(row *sql.Row) (*Run, error) {
	var run Run
	var reason sql.NullString
	err := row.Scan(&run.RunID, &run.SiteName, &run.Domain, &run.SeedURL, &run.Workers,
		&run.StartedAt, &run.EndedAt, &reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.TerminationReason = reason.String
	return &run, nil
}

// ListRuns returns up to limit runs, newest first, with their record counts
func (s *Storage) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT r.run_id, r.site_name, r.domain, r.seed_url, r.workers, r.started_at, r.ended_at, r.termination_reason,
			(SELECT COUNT(*) FROM fetches f WHERE f.run_id = r.run_id),
			(SELECT COUNT(*) FROM visits v WHERE v.run_id = r.run_id),
			(SELECT COUNT(*) FROM url_decisions d WHERE d.run_id = r.run_id)
		FROM crawl_runs r
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var rs RunSummary
		var reason sql.NullString
		if err := rows.Scan(&rs.RunID, &rs.SiteName, &rs.Domain, &rs.SeedURL, &rs.Workers,
			&rs.StartedAt, &rs.EndedAt, &reason, &rs.Fetches, &rs.Visits, &rs.Decisions); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rs.TerminationReason = reason.String
		runs = append(runs, rs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// LoadDataset reads back the dataset stored for a run, in insertion order
func (s *Storage) LoadDataset(runID string) (aggregate.Dataset, error) {
	ds := aggregate.Dataset{
		Fetches:   []telemetry.FetchRecord{},
		Visits:    []telemetry.VisitRecord{},
		Decisions: []telemetry.URLDecision{},
	}

	rows, err := s.db.Query("SELECT url, status_code FROM fetches WHERE run_id = ? ORDER BY fetch_id", runID)
	if err != nil {
		return ds, fmt.Errorf("failed to load fetches: %w", err)
	}
	for rows.Next() {
		var f telemetry.FetchRecord
		if err := rows.Scan(&f.URL, &f.StatusCode); err != nil {
			rows.Close()
			return ds, fmt.Errorf("failed to scan fetch: %w", err)
		}
		ds.Fetches = append(ds.Fetches, f)
	}
	if err := closeRows(rows); err != nil {
		return ds, fmt.Errorf("error iterating fetches: %w", err)
	}

	rows, err = s.db.Query("SELECT url, size_bytes, outlinks, content_type FROM visits WHERE run_id = ? ORDER BY visit_id", runID)
	if err != nil {
		return ds, fmt.Errorf("failed to load visits: %w", err)
	}
	for rows.Next() {
		var v telemetry.VisitRecord
		if err := rows.Scan(&v.URL, &v.Size, &v.Outlinks, &v.ContentType); err != nil {
			rows.Close()
			return ds, fmt.Errorf("failed to scan visit: %w", err)
		}
		ds.Visits = append(ds.Visits, v)
	}
	if err := closeRows(rows); err != nil {
		return ds, fmt.Errorf("error iterating visits: %w", err)
	}

	rows, err = s.db.Query("SELECT url, within_domain FROM url_decisions WHERE run_id = ? ORDER BY decision_id", runID)
	if err != nil {
		return ds, fmt.Errorf("failed to load url decisions: %w", err)
	}
	for rows.Next() {
		var d telemetry.URLDecision
		if err := rows.Scan(&d.URL, &d.WithinDomain); err != nil {
			rows.Close()
			return ds, fmt.Errorf("failed to scan url decision: %w", err)
		}
		ds.Decisions = append(ds.Decisions, d)
	}
	if err := closeRows(rows); err != nil {
		return ds, fmt.Errorf("error iterating url decisions: %w", err)
	}

	return ds, nil
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
