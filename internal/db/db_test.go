package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "indicator_values", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"indicator_values"}, []string{"area", "year", "value"}).WillReturnResult(3)

	rows := [][]any{
		{"0114A0010", 2023, 12.5},
		{"0114A0020", 2023, 8.0},
		{"0180C2230", 2023, 31.2},
	}
	n, err := CopyFrom(context.Background(), mock, "indicator_values", []string{"area", "year", "value"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"indicator_values"}, []string{"area"}).WillReturnError(fmt.Errorf("copy failed"))

	rows := [][]any{{"0114A0010"}}
	_, err = CopyFrom(context.Background(), mock, "indicator_values", []string{"area"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO indicator_values")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "deso.runs",
		Columns:      []string{"id", "status"},
		ConflictKeys: []string{"id"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "deso.runs",
		ConflictKeys: []string{"id"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:   "deso.runs",
		Columns: []string{"id", "status"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_deso_indicator_values"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_deso_indicator_values"}, []string{"area", "year", "source", "value"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "deso"."indicator_values"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()
	mock.ExpectRollback()

	rows := [][]any{
		{"0114A0010", 2023, "education", 12.5},
		{"0114A0020", 2023, "education", 8.0},
	}
	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "deso.indicator_values",
		Columns:      []string{"area", "year", "source", "value"},
		ConflictKeys: []string{"area", "year", "source"},
	}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"deso.indicator_values", `"deso"."indicator_values"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeTable(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"area", "year", "value"})
	assert.Equal(t, `"area", "year", "value"`, result)
}
