package scb

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/segeodata/deso-cli/internal/model"
)

// Indicator defines one SCB table that contributes to the socioeconomic
// index. Each implementation knows its table, its variable selection,
// and how to reduce the raw cells to one percentage per (area, year).
type Indicator interface {
	// Name returns the indicator's identity in the merged index.
	Name() model.IndicatorSource

	// TableID returns the SCB table identifier (e.g. "TAB5956").
	TableID() string

	// Fetch downloads and reduces the table for the given years. Areas
	// with suppressed values for a year are absent from the result.
	Fetch(ctx context.Context, c *Client, years []int) ([]model.IndicatorRecord, error)
}

// All returns the three indicators of the socioeconomic index.
func All() []Indicator {
	return []Indicator{&Education{}, &EconomicStandard{}, &Unemployment{}}
}

// IndicatorSet holds one fetched series per indicator.
type IndicatorSet struct {
	Education    []model.IndicatorRecord
	Economic     []model.IndicatorRecord
	Unemployment []model.IndicatorRecord
}

// FetchAll fetches the three indicator series concurrently. The first
// failing indicator cancels the others.
func FetchAll(ctx context.Context, c *Client, years []int) (*IndicatorSet, error) {
	var set IndicatorSet

	g, gCtx := errgroup.WithContext(ctx)
	for _, ind := range All() {
		g.Go(func() error {
			records, err := ind.Fetch(gCtx, c, years)
			if err != nil {
				return err
			}
			switch ind.Name() {
			case model.SourceEducation:
				set.Education = records
			case model.SourceEconomic:
				set.Economic = records
			case model.SourceUnemployment:
				set.Unemployment = records
			}
			zap.L().Info("scb: fetched indicator",
				zap.String("indicator", string(ind.Name())),
				zap.String("table", ind.TableID()),
				zap.Int("rows", len(records)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &set, nil
}

// yearCodes formats years as the string codes the API expects.
func yearCodes(years []int) []string {
	codes := make([]string, len(years))
	for i, y := range years {
		codes[i] = strconv.Itoa(y)
	}
	return codes
}

// cellValue parses one content cell. Returns false for the suppression
// markers SCB uses for small populations ("..", ".") and empty cells.
func cellValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == ".." || s == "." {
		return 0, false
	}
	// Swedish locale decimals appear in some output formats.
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// rowKey extracts the DeSO area code and year from a data row, returning
// false for rows outside the DeSO region set or with malformed keys.
func rowKey(td *TableData, row DataRow, regionIdx, timeIdx int) (string, int, bool) {
	if regionIdx < 0 || timeIdx < 0 {
		return "", 0, false
	}
	if len(row.Key) <= regionIdx || len(row.Key) <= timeIdx {
		return "", 0, false
	}
	area := row.Key[regionIdx]
	if !model.ValidDesoCode(area) {
		// The region dimension mixes DeSO with kommun/län aggregates;
		// keep DeSO rows only.
		return "", 0, false
	}
	year, err := strconv.Atoi(row.Key[timeIdx])
	if err != nil {
		return "", 0, false
	}
	return area, year, true
}
