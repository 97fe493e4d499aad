package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segeodata/deso-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteIndicatorRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []model.IndicatorRecord{
		{Area: "0114A0010", Year: 2022, Value: 10.5},
		{Area: "0114A0010", Year: 2023, Value: 11.0},
		{Area: "0180C2230", Year: 2023, Value: 31.2},
	}
	require.NoError(t, s.PutIndicators(ctx, model.SourceEducation, records))

	got, err := s.GetIndicators(ctx, model.SourceEducation, nil)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	// Year filter.
	got, err = s.GetIndicators(ctx, model.SourceEducation, []int{2023})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, 2023, r.Year)
	}

	// Other sources are isolated.
	got, err = s.GetIndicators(ctx, model.SourceUnemployment, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteIndicatorUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutIndicators(ctx, model.SourceEconomic,
		[]model.IndicatorRecord{{Area: "0114A0010", Year: 2023, Value: 10.0}}))
	require.NoError(t, s.PutIndicators(ctx, model.SourceEconomic,
		[]model.IndicatorRecord{{Area: "0114A0010", Year: 2023, Value: 12.0}}))

	got, err := s.GetIndicators(ctx, model.SourceEconomic, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12.0, got[0].Value)
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []int{2022, 2023}, "deso_statistics", "sv")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	require.NoError(t, s.CompleteRun(ctx, run.ID, 5984))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 5984, got.AreaCount)
	assert.Equal(t, []int{2022, 2023}, got.Years)
	assert.Equal(t, "deso_statistics", got.Method)
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []int{2023}, "deso_statistics", "sv")
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, eris.New("upstream timeout")))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "upstream timeout", got.Error)
}

func TestSQLiteRunNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "nope")
	assert.Error(t, err)

	assert.Error(t, s.CompleteRun(ctx, "nope", 1))
	assert.Error(t, s.FailRun(ctx, "nope", nil))
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, []int{2022}, "deso_statistics", "sv")
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, []int{2023}, "deso_statistics", "en")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, b.ID, 100))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, b.ID, complete[0].ID)

	running, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, a.ID, running[0].ID)
}

func TestSQLiteResultsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []int{2023}, "deso_statistics", "sv")
	require.NoError(t, err)

	records := []model.ClassifiedRecord{
		{
			IndexRecord: model.IndexRecord{
				Area: "0180C2230", Year: 2023,
				EducationPct: 12.5, LowIncomePct: 20.0, UnemploymentPct: 7.5,
				Index: 13.333333333333334,
			},
			AreaType: model.AreaTypeGood,
			Label:    "Områden med goda socioekonomiska förutsättningar",
			YearMean: 20.0, YearStdDev: 5.0,
			Kommun: "Stockholm", Lan: "Stockholms län",
		},
		{
			IndexRecord: model.IndexRecord{
				Area: "1480C1180", Year: 2023,
				EducationPct: 35.0, LowIncomePct: 40.0, UnemploymentPct: 15.0,
				Index: 30.0,
			},
			AreaType: model.AreaTypeMajorChallenges,
			Label:    "Områden med stora socioekonomiska utmaningar",
			YearMean: 20.0, YearStdDev: 5.0,
			Kommun: "Göteborg", Lan: "Västra Götalands län",
		},
	}
	require.NoError(t, s.PutResults(ctx, run.ID, records))

	got, err := s.GetResults(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	// Unknown run yields nothing.
	got, err = s.GetResults(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteOpenDriver(t *testing.T) {
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(context.Background()))

	_, err = Open(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}
