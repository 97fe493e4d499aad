// Package store persists fetched indicator series, classification runs,
// and their results.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/segeodata/deso-cli/internal/db"
	"github.com/segeodata/deso-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Indicator cache
	PutIndicators(ctx context.Context, source model.IndicatorSource, records []model.IndicatorRecord) error
	GetIndicators(ctx context.Context, source model.IndicatorSource, years []int) ([]model.IndicatorRecord, error)

	// Runs
	CreateRun(ctx context.Context, years []int, method, language string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, areaCount int) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Results
	PutResults(ctx context.Context, runID string, records []model.ClassifiedRecord) error
	GetResults(ctx context.Context, runID string) ([]model.ClassifiedRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a store for the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(databaseURL)
	case "postgres":
		pool, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgres(pool), nil
	default:
		return nil, eris.Errorf("store: unsupported driver %q (want sqlite or postgres)", driver)
	}
}
