package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/segeodata/deso-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS indicator_values (
	area       TEXT NOT NULL,
	year       INTEGER NOT NULL,
	source     TEXT NOT NULL,
	value      REAL NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (area, year, source)
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	years      TEXT NOT NULL,
	method     TEXT NOT NULL,
	language   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	area_count INTEGER NOT NULL DEFAULT 0,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_results (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	area             TEXT NOT NULL,
	year             INTEGER NOT NULL,
	education_pct    REAL NOT NULL,
	low_income_pct   REAL NOT NULL,
	unemployment_pct REAL NOT NULL,
	idx              REAL NOT NULL,
	area_type        INTEGER NOT NULL,
	label            TEXT NOT NULL,
	year_mean        REAL NOT NULL,
	year_std         REAL NOT NULL,
	kommun           TEXT NOT NULL DEFAULT '',
	lan              TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, area, year)
);

CREATE INDEX IF NOT EXISTS idx_indicator_values_year ON indicator_values(year, source);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_results_run_id ON run_results(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutIndicators(ctx context.Context, source model.IndicatorSource, records []model.IndicatorRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO indicator_values (area, year, source, value, fetched_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (area, year, source) DO UPDATE SET value = excluded.value, fetched_at = excluded.fetched_at`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare indicator upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Area, r.Year, string(source), r.Value, now); err != nil {
			return eris.Wrapf(err, "sqlite: upsert indicator %s %s", source, r.Key())
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit indicators")
}

func (s *SQLiteStore) GetIndicators(ctx context.Context, source model.IndicatorSource, years []int) ([]model.IndicatorRecord, error) {
	query := `SELECT area, year, value FROM indicator_values WHERE source = ?`
	args := []any{string(source)}

	if len(years) > 0 {
		query += ` AND year IN (?` + strings.Repeat(", ?", len(years)-1) + `)`
		for _, y := range years {
			args = append(args, y)
		}
	}
	query += ` ORDER BY year, area`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get indicators %s", source)
	}
	defer rows.Close()

	var out []model.IndicatorRecord
	for rows.Next() {
		var r model.IndicatorRecord
		if err := rows.Scan(&r.Area, &r.Year, &r.Value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan indicator")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate indicators")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, years []int, method, language string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	yearsJSON, err := json.Marshal(years)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal years")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, years, method, language, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(yearsJSON), method, language, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Years:     years,
		Method:    method,
		Language:  language,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, areaCount int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, area_count = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), areaCount, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, years, method, language, status, area_count, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, years, method, language, status, area_count, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) PutResults(ctx context.Context, runID string, records []model.ClassifiedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_results
		 (run_id, area, year, education_pct, low_income_pct, unemployment_pct, idx, area_type, label, year_mean, year_std, kommun, lan)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare result insert")
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			runID, r.Area, r.Year,
			r.EducationPct, r.LowIncomePct, r.UnemploymentPct, r.Index,
			int(r.AreaType), r.Label, r.YearMean, r.YearStdDev, r.Kommun, r.Lan,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert result %s/%d for run %s", r.Area, r.Year, runID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit results")
}

func (s *SQLiteStore) GetResults(ctx context.Context, runID string) ([]model.ClassifiedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT area, year, education_pct, low_income_pct, unemployment_pct, idx, area_type, label, year_mean, year_std, kommun, lan
		 FROM run_results WHERE run_id = ? ORDER BY year, area`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get results for run %s", runID)
	}
	defer rows.Close()

	var out []model.ClassifiedRecord
	for rows.Next() {
		var r model.ClassifiedRecord
		var areaType int
		err := rows.Scan(
			&r.Area, &r.Year,
			&r.EducationPct, &r.LowIncomePct, &r.UnemploymentPct, &r.Index,
			&areaType, &r.Label, &r.YearMean, &r.YearStdDev, &r.Kommun, &r.Lan,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		r.AreaType = model.AreaType(areaType)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate results")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var yearsJSON string
	var errMsg sql.NullString

	err := row.Scan(&r.ID, &yearsJSON, &r.Method, &r.Language, &r.Status, &r.AreaCount, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(yearsJSON), &r.Years); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal years")
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	return &r, nil
}
