package analyze

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/segeodata/deso-cli/internal/model"
)

// Method selects how classification boundaries are derived.
type Method string

const (
	// MethodDesoStatistics derives boundaries from the mean and sample
	// standard deviation of the input areas themselves, per year.
	MethodDesoStatistics Method = "deso_statistics"

	// MethodRegsoBoundaries would reuse the RegSO-level boundaries for the
	// year. Recognized but not implemented; requesting it is an error.
	MethodRegsoBoundaries Method = "regso_boundaries"
)

// Options configures one classification call. There is no package-level
// default analyzer; every call carries its own options.
type Options struct {
	Method   Method
	Language language.Tag
}

// DefaultOptions returns options matching the original tool's defaults:
// distribution-relative boundaries and Swedish labels.
func DefaultOptions() Options {
	return Options{Method: MethodDesoStatistics, Language: language.Swedish}
}

// AreaType maps an index value to its category given the year's mean and
// sample standard deviation. Thresholds are evaluated from the extreme
// tail inward and boundaries are inclusive toward the lower-numbered
// (worse) category: an index exactly at mean+std is type 2, exactly at
// the mean is type 3, exactly at mean-std is type 4.
func AreaType(index, mean, std float64) model.AreaType {
	switch {
	case index >= mean+2*std:
		return model.AreaTypeMajorChallenges
	case index >= mean+std:
		return model.AreaTypeChallenges
	case index >= mean:
		return model.AreaTypeMixed
	case index >= mean-std:
		return model.AreaTypeGood
	default:
		return model.AreaTypeVeryGood
	}
}

// Classify assigns an area type to every input record, deriving boundaries
// independently per year. It is a pure function of its input: data from
// one year never influences another year's statistics, and re-running on
// the same input yields the same categories.
//
// A year with fewer than two records fails the whole call with
// ErrInsufficientSample; a degenerate std of zero would otherwise put
// every area at the mean boundary. Empty input fails with ErrMissingData.
func Classify(records []model.IndexRecord, opts Options) ([]model.ClassifiedRecord, error) {
	if opts.Method != MethodDesoStatistics {
		return nil, eris.Wrapf(ErrUnsupportedMethod, "analyze: method %q", opts.Method)
	}
	if len(records) == 0 {
		return nil, eris.Wrap(ErrMissingData, "analyze: no index records to classify")
	}

	byYear := make(map[int][]model.IndexRecord)
	for _, r := range records {
		byYear[r.Year] = append(byYear[r.Year], r)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	var out []model.ClassifiedRecord
	for _, year := range years {
		subset := byYear[year]

		values := make([]float64, len(subset))
		for i, r := range subset {
			values[i] = r.Index
		}

		m := mean(values)
		std, ok := sampleStdDev(values)
		if !ok {
			return nil, eris.Wrapf(ErrInsufficientSample,
				"analyze: year %d has %d area(s), need at least 2", year, len(subset))
		}

		for _, r := range subset {
			at := AreaType(r.Index, m, std)
			out = append(out, model.ClassifiedRecord{
				IndexRecord: r,
				AreaType:    at,
				Label:       at.Label(opts.Language),
				YearMean:    m,
				YearStdDev:  std,
			})
		}

		zap.L().Info("analyze: classified year",
			zap.Int("year", year),
			zap.Int("areas", len(subset)),
			zap.Float64("mean", m),
			zap.Float64("std", std),
		)
	}

	return out, nil
}

// ParseMethod converts a method selector string into a Method. Unknown
// selectors and the deferred RegSO variant both fail loudly instead of
// defaulting.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodDesoStatistics:
		return MethodDesoStatistics, nil
	case MethodRegsoBoundaries:
		return "", eris.Wrap(ErrUnsupportedMethod, "analyze: regso_boundaries is not implemented")
	default:
		return "", eris.Wrapf(ErrUnsupportedMethod, "analyze: unknown method %q (valid: %s)", s, MethodDesoStatistics)
	}
}
