package scb

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/segeodata/deso-cli/internal/model"
)

// Education computes the share of the population whose highest completed
// education is pre-upper-secondary ("förgymnasial"), from population
// counts per education level in table TAB5956.
type Education struct{}

func (e *Education) Name() model.IndicatorSource { return model.SourceEducation }
func (e *Education) TableID() string             { return "TAB5956" }

func (e *Education) Fetch(ctx context.Context, c *Client, years []int) ([]model.IndicatorRecord, error) {
	td, err := c.TableData(ctx, e.TableID(), []VariableSelection{
		{VariableCode: "Tid", ValueCodes: yearCodes(years)},
		{VariableCode: "Region", ValueCodes: []string{"*"}},
		{VariableCode: "UtbildningsNiva", ValueCodes: []string{"*"}},
		{VariableCode: "ContentsCode", ValueCodes: []string{"000005MO"}},
	})
	if err != nil {
		return nil, err
	}

	regionIdx := td.keyIndex("Region")
	timeIdx := td.keyIndex("Tid")
	levelIdx := td.keyIndex("UtbildningsNiva")
	if levelIdx < 0 {
		return nil, eris.Errorf("scb: table %s response missing education level dimension", e.TableID())
	}

	// Population per (area, year): pre-upper-secondary count and total
	// across all levels. Suppressed level counts poison the whole cell:
	// a total computed without them would understate the denominator, so
	// the area/year is dropped instead.
	type counts struct {
		pre, total float64
		suppressed bool
	}
	byKey := make(map[model.AreaYear]*counts)

	for _, row := range td.Data {
		area, year, ok := rowKey(td, row, regionIdx, timeIdx)
		if !ok {
			continue
		}
		key := model.AreaYear{Area: area, Year: year}
		cts := byKey[key]
		if cts == nil {
			cts = &counts{}
			byKey[key] = cts
		}

		if len(row.Values) == 0 {
			cts.suppressed = true
			continue
		}
		v, ok := cellValue(row.Values[0])
		if !ok {
			cts.suppressed = true
			continue
		}

		cts.total += v
		if isPreUpperSecondary(row.Key[levelIdx]) {
			cts.pre += v
		}
	}

	var out []model.IndicatorRecord
	for key, cts := range byKey {
		if cts.suppressed || cts.total <= 0 {
			continue
		}
		out = append(out, model.IndicatorRecord{
			Area:  key.Area,
			Year:  key.Year,
			Value: cts.pre / cts.total * 100,
		})
	}
	return out, nil
}

// isPreUpperSecondary matches the education level codes for pre-upper-
// secondary education. TAB5956 codes the levels 1-7; levels 1 and 2 are
// "förgymnasial utbildning" (shorter and 9(10) years respectively).
func isPreUpperSecondary(levelCode string) bool {
	switch strings.TrimSpace(levelCode) {
	case "1", "2":
		return true
	default:
		return false
	}
}
