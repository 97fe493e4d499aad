// Package model defines the records flowing through the DeSO analysis pipeline.
package model

import "fmt"

// IndicatorSource identifies one of the three input indicator tables.
type IndicatorSource string

const (
	SourceEducation    IndicatorSource = "education"
	SourceEconomic     IndicatorSource = "economic_standard"
	SourceUnemployment IndicatorSource = "unemployment"
)

// IndicatorRecord is one observation for a single indicator: the share of
// the population (0-100) matching the indicator's condition in one DeSO
// area for one year. Suppressed or missing values never become records;
// the SCB parsers drop them, so absence of a record is the missing marker.
type IndicatorRecord struct {
	Area  string  `json:"area"`
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Key returns the (area, year) join key for the record.
func (r IndicatorRecord) Key() AreaYear {
	return AreaYear{Area: r.Area, Year: r.Year}
}

// AreaYear is the composite key the merger joins on.
type AreaYear struct {
	Area string
	Year int
}

func (k AreaYear) String() string {
	return fmt.Sprintf("%s/%d", k.Area, k.Year)
}

// IndexRecord is the merged row for one (area, year): the three indicator
// percentages and their unweighted mean. Only produced when all three
// indicators are present, so Index is always defined.
type IndexRecord struct {
	Area            string  `json:"area"`
	Year            int     `json:"year"`
	EducationPct    float64 `json:"education_pct"`
	LowIncomePct    float64 `json:"low_income_pct"`
	UnemploymentPct float64 `json:"unemployment_pct"`
	Index           float64 `json:"socioeconomic_index"`
}

// ClassifiedRecord is an IndexRecord plus its area type and the per-year
// statistics that produced it. The area type is relative to the year's
// distribution over all input areas and must be recomputed whenever the
// input set changes; it is not a durable property of the area.
type ClassifiedRecord struct {
	IndexRecord
	AreaType   AreaType `json:"area_type"`
	Label      string   `json:"area_type_label"`
	YearMean   float64  `json:"year_mean"`
	YearStdDev float64  `json:"year_std"`
	Kommun     string   `json:"kommun,omitempty"`
	Lan        string   `json:"lan,omitempty"`
}
