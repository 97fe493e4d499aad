package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segeodata/deso-cli/internal/model"
	"github.com/segeodata/deso-cli/internal/store"
)

func newServerWithData(t *testing.T) (*httptest.Server, *model.Run) {
	t.Helper()
	ctx := context.Background()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(ctx))

	run, err := st.CreateRun(ctx, []int{2023}, "deso_statistics", "sv")
	require.NoError(t, err)
	require.NoError(t, st.PutResults(ctx, run.ID, []model.ClassifiedRecord{
		{
			IndexRecord: model.IndexRecord{
				Area: "0180C2230", Year: 2023,
				EducationPct: 12.5, LowIncomePct: 20.0, UnemploymentPct: 7.5,
				Index: 13.33,
			},
			AreaType: model.AreaTypeGood,
			Label:    "Områden med goda socioekonomiska förutsättningar",
			YearMean: 20, YearStdDev: 5,
		},
	}))
	require.NoError(t, st.CompleteRun(ctx, run.ID, 1))

	srv := httptest.NewServer(newRouter(st))
	t.Cleanup(srv.Close)
	return srv, run
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServeHealth(t *testing.T) {
	srv, _ := newServerWithData(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestServeListRuns(t *testing.T) {
	srv, run := newServerWithData(t)

	var runs []model.Run
	status := getJSON(t, srv.URL+"/runs", &runs)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
}

func TestServeListRunsStatusFilter(t *testing.T) {
	srv, _ := newServerWithData(t)

	var runs []model.Run
	status := getJSON(t, srv.URL+"/runs?status=failed", &runs)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, runs)
}

func TestServeGetRun(t *testing.T) {
	srv, run := newServerWithData(t)

	var got model.Run
	status := getJSON(t, srv.URL+"/runs/"+run.ID, &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, []int{2023}, got.Years)

	status = getJSON(t, srv.URL+"/runs/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServeGetResults(t *testing.T) {
	srv, run := newServerWithData(t)

	var records []model.ClassifiedRecord
	status := getJSON(t, srv.URL+"/runs/"+run.ID+"/results", &records)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, records, 1)
	assert.Equal(t, "0180C2230", records[0].Area)
	assert.Equal(t, model.AreaTypeGood, records[0].AreaType)

	status = getJSON(t, srv.URL+"/runs/nope/results", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
