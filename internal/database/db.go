package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

const timeLayout = time.RFC3339

var runColumns = []string{
	"id", "run_id", "country", "country_name", "start_time", "end_time", "resolution_seconds",
	"max_power_mw", "min_power_mw", "avg_power_mw", "daily_volatility_pct",
	"peak_time", "trough_time", "created_at",
}

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generation_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		country TEXT NOT NULL,
		country_name TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		resolution_seconds INTEGER NOT NULL,
		max_power_mw REAL NOT NULL,
		min_power_mw REAL NOT NULL,
		avg_power_mw REAL NOT NULL,
		daily_volatility_pct REAL NOT NULL,
		peak_time TEXT,
		trough_time TEXT,
		created_at TEXT NOT NULL,
		published INTEGER DEFAULT 0,
		UNIQUE(run_id, country)
	);
	CREATE TABLE IF NOT EXISTS generation_points (
		run_row_id INTEGER NOT NULL REFERENCES generation_runs(id) ON DELETE CASCADE,
		timestamp TEXT NOT NULL,
		source TEXT NOT NULL,
		power_mw REAL NOT NULL,
		PRIMARY KEY(run_row_id, timestamp, source)
	);
	CREATE TABLE IF NOT EXISTS generation_shares (
		run_row_id INTEGER NOT NULL REFERENCES generation_runs(id) ON DELETE CASCADE,
		source TEXT NOT NULL,
		share REAL NOT NULL,
		PRIMARY KEY(run_row_id, source)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_country ON generation_runs(country);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON generation_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_published ON generation_runs(published);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// NewRunID returns an identifier grouping the countries of one invocation
func NewRunID() string {
	return uuid.NewString()
}

// SaveRun stores a country summary together with its aligned points.
// A missing RunID or CreatedAt is filled in; s.ID is set to the new row id.
func (db *DB) SaveRun(s *models.MixSummary, points []models.GenerationRecord) error {
	if s.RunID == "" {
		s.RunID = NewRunID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Insert("generation_runs").
		Columns(runColumns[1:]...).
		Values(
			s.RunID, s.Country, s.CountryName,
			formatTime(s.Start), formatTime(s.End), int64(s.Resolution/time.Second),
			s.Stats.MaxPowerMW, s.Stats.MinPowerMW, s.Stats.AvgPowerMW, s.Stats.DailyVolatilityPct,
			formatTime(s.Stats.PeakTime), formatTime(s.Stats.TroughTime), formatTime(s.CreatedAt),
		).ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	res, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run id: %w", err)
	}

	shareStmt, err := tx.Prepare(`INSERT INTO generation_shares (run_row_id, source, share) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing share insert: %w", err)
	}
	defer shareStmt.Close()
	for source, share := range s.Shares {
		if _, err := shareStmt.Exec(rowID, source, share); err != nil {
			return fmt.Errorf("inserting share %s: %w", source, err)
		}
	}

	pointStmt, err := tx.Prepare(`INSERT OR REPLACE INTO generation_points (run_row_id, timestamp, source, power_mw) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing point insert: %w", err)
	}
	defer pointStmt.Close()
	for _, p := range points {
		if _, err := pointStmt.Exec(rowID, formatTime(p.Timestamp), p.Source, p.PowerMW); err != nil {
			return fmt.Errorf("inserting point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	s.ID = int(rowID)
	return nil
}

// ListRuns retrieves archived runs, newest first. Empty country lists all countries;
// limit 0 means no limit.
func (db *DB) ListRuns(country string, limit int) ([]models.MixSummary, error) {
	b := sq.Select(runColumns...).From("generation_runs").OrderBy("created_at DESC", "country")
	b = whereCountry(b, country)
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return db.queryRuns(b)
}

// ListUnpublishedRuns retrieves runs not yet sent to the broker, oldest first.
// Empty country lists all countries.
func (db *DB) ListUnpublishedRuns(country string) ([]models.MixSummary, error) {
	b := sq.Select(runColumns...).From("generation_runs").
		Where(sq.Eq{"published": 0}).
		OrderBy("created_at", "country")
	b = whereCountry(b, country)
	return db.queryRuns(b)
}

// whereCountry filters by zone code; codes are stored upper case
func whereCountry(b sq.SelectBuilder, country string) sq.SelectBuilder {
	if country == "" {
		return b
	}
	return b.Where(sq.Eq{"country": strings.ToUpper(strings.TrimSpace(country))})
}

// MarkPublished marks a run as published
func (db *DB) MarkPublished(id int) error {
	query := `UPDATE generation_runs SET published = 1 WHERE id = ?`
	_, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("marking run as published: %w", err)
	}
	return nil
}

// CountPoints returns the number of archived points of a run
func (db *DB) CountPoints(id int) (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM generation_points WHERE run_row_id = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting points: %w", err)
	}
	return n, nil
}

func (db *DB) queryRuns(b sq.SelectBuilder) ([]models.MixSummary, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var results []models.MixSummary
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.loadShares(results); err != nil {
		return nil, err
	}
	return results, nil
}

func scanRun(rows *sql.Rows) (models.MixSummary, error) {
	var (
		s                            models.MixSummary
		startStr, endStr, createdStr string
		peakStr, troughStr           sql.NullString
		resolutionSeconds            int64
	)
	if err := rows.Scan(
		&s.ID, &s.RunID, &s.Country, &s.CountryName, &startStr, &endStr, &resolutionSeconds,
		&s.Stats.MaxPowerMW, &s.Stats.MinPowerMW, &s.Stats.AvgPowerMW, &s.Stats.DailyVolatilityPct,
		&peakStr, &troughStr, &createdStr,
	); err != nil {
		return s, fmt.Errorf("scanning row: %w", err)
	}
	s.Resolution = time.Duration(resolutionSeconds) * time.Second

	var err error
	if s.Start, err = parseTime(startStr); err != nil {
		return s, fmt.Errorf("parsing start_time: %w", err)
	}
	if s.End, err = parseTime(endStr); err != nil {
		return s, fmt.Errorf("parsing end_time: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdStr); err != nil {
		return s, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.Stats.PeakTime, err = parseTime(peakStr.String); err != nil {
		return s, fmt.Errorf("parsing peak_time: %w", err)
	}
	if s.Stats.TroughTime, err = parseTime(troughStr.String); err != nil {
		return s, fmt.Errorf("parsing trough_time: %w", err)
	}
	return s, nil
}

func (db *DB) loadShares(runs []models.MixSummary) error {
	if len(runs) == 0 {
		return nil
	}

	byID := make(map[int]*models.MixSummary, len(runs))
	ids := make([]int, 0, len(runs))
	for i := range runs {
		runs[i].Shares = make(map[string]float64)
		byID[runs[i].ID] = &runs[i]
		ids = append(ids, runs[i].ID)
	}

	query, args, err := sq.Select("run_row_id", "source", "share").
		From("generation_shares").
		Where(sq.Eq{"run_row_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building share query: %w", err)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return fmt.Errorf("querying shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int
			source string
			share  float64
		)
		if err := rows.Scan(&id, &source, &share); err != nil {
			return fmt.Errorf("scanning share: %w", err)
		}
		if run, ok := byID[id]; ok {
			run.Shares[source] = share
		}
	}
	return rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
