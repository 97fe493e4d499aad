package scb

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/segeodata/deso-cli/internal/model"
)

// Unemployment computes the unemployment rate for ages 20-64 from table
// TAB5551, which publishes the unemployed count and the labour force
// (employed plus unemployed) as two content columns.
type Unemployment struct{}

func (u *Unemployment) Name() model.IndicatorSource { return model.SourceUnemployment }
func (u *Unemployment) TableID() string             { return "TAB5551" }

func (u *Unemployment) Fetch(ctx context.Context, c *Client, years []int) ([]model.IndicatorRecord, error) {
	td, err := c.TableData(ctx, u.TableID(), []VariableSelection{
		{VariableCode: "Tid", ValueCodes: yearCodes(years)},
		{VariableCode: "Region", ValueCodes: []string{"*"}},
		{VariableCode: "Kon", ValueCodes: []string{"1+2"}},
		{VariableCode: "Alder", ValueCodes: []string{"20-64"}},
		{VariableCode: "ContentsCode", ValueCodes: []string{"0000079T", "0000077H"}},
	})
	if err != nil {
		return nil, err
	}

	if td.contentCount() < 2 {
		return nil, eris.Errorf("scb: table %s response has %d content columns, want 2", u.TableID(), td.contentCount())
	}

	regionIdx := td.keyIndex("Region")
	timeIdx := td.keyIndex("Tid")

	var out []model.IndicatorRecord
	for _, row := range td.Data {
		area, year, ok := rowKey(td, row, regionIdx, timeIdx)
		if !ok {
			continue
		}
		if len(row.Values) < 2 {
			continue
		}
		unemployed, ok := cellValue(row.Values[0])
		if !ok {
			continue
		}
		labourForce, ok := cellValue(row.Values[1])
		if !ok || labourForce <= 0 {
			continue
		}
		out = append(out, model.IndicatorRecord{
			Area:  area,
			Year:  year,
			Value: unemployed / labourForce * 100,
		})
	}
	return out, nil
}
