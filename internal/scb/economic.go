package scb

import (
	"context"

	"github.com/segeodata/deso-cli/internal/model"
)

// EconomicStandard reads the share of persons with low economic standard
// from table TAB6436. The table publishes the share directly; the only
// reduction needed is proportion-to-percentage normalization.
type EconomicStandard struct{}

func (e *EconomicStandard) Name() model.IndicatorSource { return model.SourceEconomic }
func (e *EconomicStandard) TableID() string             { return "TAB6436" }

func (e *EconomicStandard) Fetch(ctx context.Context, c *Client, years []int) ([]model.IndicatorRecord, error) {
	td, err := c.TableData(ctx, e.TableID(), []VariableSelection{
		{VariableCode: "Tid", ValueCodes: yearCodes(years)},
		{VariableCode: "Region", ValueCodes: []string{"*"}},
		{VariableCode: "Alder", ValueCodes: []string{"tot"}},
		{VariableCode: "ContentsCode", ValueCodes: []string{"000007OQ"}},
	})
	if err != nil {
		return nil, err
	}

	regionIdx := td.keyIndex("Region")
	timeIdx := td.keyIndex("Tid")

	var out []model.IndicatorRecord
	maxValue := 0.0
	for _, row := range td.Data {
		area, year, ok := rowKey(td, row, regionIdx, timeIdx)
		if !ok {
			continue
		}
		if len(row.Values) == 0 {
			continue
		}
		v, ok := cellValue(row.Values[0])
		if !ok {
			continue
		}
		if v > maxValue {
			maxValue = v
		}
		out = append(out, model.IndicatorRecord{Area: area, Year: year, Value: v})
	}

	// Some output formats deliver the share as a 0-1 proportion instead
	// of 0-100. Detect and convert once over the whole series.
	if maxValue > 0 && maxValue <= 1.0 {
		for i := range out {
			out[i].Value *= 100
		}
	}

	return out, nil
}
