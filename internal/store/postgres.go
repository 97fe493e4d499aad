package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/segeodata/deso-cli/internal/db"
	"github.com/segeodata/deso-cli/internal/model"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres wraps an existing pool. The store owns the pool and closes
// it on Close.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS indicator_values (
	area       TEXT NOT NULL,
	year       INTEGER NOT NULL,
	source     TEXT NOT NULL,
	value      DOUBLE PRECISION NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (area, year, source)
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	years      JSONB NOT NULL,
	method     TEXT NOT NULL,
	language   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	area_count INTEGER NOT NULL DEFAULT 0,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_results (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	area             TEXT NOT NULL,
	year             INTEGER NOT NULL,
	education_pct    DOUBLE PRECISION NOT NULL,
	low_income_pct   DOUBLE PRECISION NOT NULL,
	unemployment_pct DOUBLE PRECISION NOT NULL,
	idx              DOUBLE PRECISION NOT NULL,
	area_type        INTEGER NOT NULL,
	label            TEXT NOT NULL,
	year_mean        DOUBLE PRECISION NOT NULL,
	year_std         DOUBLE PRECISION NOT NULL,
	kommun           TEXT NOT NULL DEFAULT '',
	lan              TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, area, year)
);

CREATE INDEX IF NOT EXISTS idx_indicator_values_year ON indicator_values(year, source);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_results_run_id ON run_results(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var indicatorColumns = []string{"area", "year", "source", "value", "fetched_at"}

func (s *PostgresStore) PutIndicators(ctx context.Context, source model.IndicatorSource, records []model.IndicatorRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{r.Area, r.Year, string(source), r.Value, now}
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "indicator_values",
		Columns:      indicatorColumns,
		ConflictKeys: []string{"area", "year", "source"},
	}, rows)
	return eris.Wrapf(err, "postgres: put indicators %s", source)
}

func (s *PostgresStore) GetIndicators(ctx context.Context, source model.IndicatorSource, years []int) ([]model.IndicatorRecord, error) {
	query := `SELECT area, year, value FROM indicator_values WHERE source = $1`
	args := []any{string(source)}

	if len(years) > 0 {
		query += ` AND year = ANY($2)`
		args = append(args, years)
	}
	query += ` ORDER BY year, area`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get indicators %s", source)
	}
	defer rows.Close()

	var out []model.IndicatorRecord
	for rows.Next() {
		var r model.IndicatorRecord
		if err := rows.Scan(&r.Area, &r.Year, &r.Value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan indicator")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate indicators")
}

func (s *PostgresStore) CreateRun(ctx context.Context, years []int, method, language string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	yearsJSON, err := json.Marshal(years)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal years")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, years, method, language, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, yearsJSON, method, language, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
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

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, areaCount int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, area_count = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusComplete), areaCount, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, years, method, language, status, area_count, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)

	r, err := scanPostgresRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	return r, err
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, years, method, language, status, area_count, error, created_at, updated_at FROM runs`
	var args []any

	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + strconv.Itoa(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + strconv.Itoa(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPostgresRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

var resultColumns = []string{
	"run_id", "area", "year",
	"education_pct", "low_income_pct", "unemployment_pct",
	"idx", "area_type", "label", "year_mean", "year_std", "kommun", "lan",
}

func (s *PostgresStore) PutResults(ctx context.Context, runID string, records []model.ClassifiedRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			runID, r.Area, r.Year,
			r.EducationPct, r.LowIncomePct, r.UnemploymentPct,
			r.Index, int(r.AreaType), r.Label, r.YearMean, r.YearStdDev, r.Kommun, r.Lan,
		}
	}

	_, err := db.CopyFrom(ctx, s.pool, "run_results", resultColumns, rows)
	return eris.Wrapf(err, "postgres: put results for run %s", runID)
}

func (s *PostgresStore) GetResults(ctx context.Context, runID string) ([]model.ClassifiedRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT area, year, education_pct, low_income_pct, unemployment_pct, idx, area_type, label, year_mean, year_std, kommun, lan
		 FROM run_results WHERE run_id = $1 ORDER BY year, area`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get results for run %s", runID)
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
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		r.AreaType = model.AreaType(areaType)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate results")
}

func scanPostgresRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var yearsJSON []byte
	var errMsg *string

	err := row.Scan(&r.ID, &yearsJSON, &r.Method, &r.Language, &r.Status, &r.AreaCount, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	if err := json.Unmarshal(yearsJSON, &r.Years); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal years")
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}
