// Package analyze computes the DeSO socioeconomic index and classifies
// areas into the five area types used by SCB's regional statistics.
package analyze

import (
	"sort"

	"go.uber.org/zap"

	"github.com/segeodata/deso-cli/internal/model"
)

// Merge joins the three indicator datasets on (area, year) and computes
// the socioeconomic index for every key present in all three sources.
// The join is strict: an (area, year) missing from any one source is
// excluded, never averaged over fewer than three indicators. Years not in
// the requested list are ignored; a nil year list keeps every year.
//
// A year with no surviving rows contributes nothing to the output rather
// than failing; callers that require data for every requested year check
// the result (see Classify and the analyze command).
func Merge(education, economic, unemployment []model.IndicatorRecord, years []int) []model.IndexRecord {
	wantYear := yearSet(years)

	edu := indexByKey(education, wantYear)
	eco := indexByKey(economic, wantYear)
	une := indexByKey(unemployment, wantYear)

	var merged []model.IndexRecord
	for key, eduVal := range edu {
		ecoVal, ok := eco[key]
		if !ok {
			continue
		}
		uneVal, ok := une[key]
		if !ok {
			continue
		}
		merged = append(merged, model.IndexRecord{
			Area:            key.Area,
			Year:            key.Year,
			EducationPct:    eduVal,
			LowIncomePct:    ecoVal,
			UnemploymentPct: uneVal,
			// Unrounded; rounding is a display concern and would compound
			// error before classification.
			Index: (eduVal + ecoVal + uneVal) / 3,
		})
	}

	// Deterministic output order. Nothing downstream depends on it, but it
	// keeps exports and diffs stable.
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Year != merged[j].Year {
			return merged[i].Year < merged[j].Year
		}
		return merged[i].Area < merged[j].Area
	})

	zap.L().Info("analyze: merged indicators",
		zap.Int("education_rows", len(education)),
		zap.Int("economic_rows", len(economic)),
		zap.Int("unemployment_rows", len(unemployment)),
		zap.Int("merged_rows", len(merged)),
	)

	return merged
}

// indexByKey builds the (area, year) → value lookup for one source,
// filtered to the requested years. Duplicate keys keep the last value.
func indexByKey(records []model.IndicatorRecord, wantYear map[int]bool) map[model.AreaYear]float64 {
	out := make(map[model.AreaYear]float64, len(records))
	for _, r := range records {
		if wantYear != nil && !wantYear[r.Year] {
			continue
		}
		out[r.Key()] = r.Value
	}
	return out
}

func yearSet(years []int) map[int]bool {
	if len(years) == 0 {
		return nil
	}
	set := make(map[int]bool, len(years))
	for _, y := range years {
		set[y] = true
	}
	return set
}
