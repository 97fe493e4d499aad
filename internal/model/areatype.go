package model

import (
	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
)

// AreaType is the ordinal socioeconomic category of a DeSO area, 1 (major
// challenges) through 5 (very good conditions). Higher index values map to
// lower-numbered categories.
type AreaType int

const (
	AreaTypeMajorChallenges AreaType = 1
	AreaTypeChallenges      AreaType = 2
	AreaTypeMixed           AreaType = 3
	AreaTypeGood            AreaType = 4
	AreaTypeVeryGood        AreaType = 5
)

// Valid reports whether t is one of the five defined categories.
func (t AreaType) Valid() bool {
	return t >= AreaTypeMajorChallenges && t <= AreaTypeVeryGood
}

var labelsSwedish = map[AreaType]string{
	AreaTypeMajorChallenges: "Områden med stora socioekonomiska utmaningar",
	AreaTypeChallenges:      "Områden med socioekonomiska utmaningar",
	AreaTypeMixed:           "Socioekonomiskt blandade områden",
	AreaTypeGood:            "Områden med goda socioekonomiska förutsättningar",
	AreaTypeVeryGood:        "Områden med mycket goda socioekonomiska förutsättningar",
}

var labelsEnglish = map[AreaType]string{
	AreaTypeMajorChallenges: "Areas with major socioeconomic challenges",
	AreaTypeChallenges:      "Areas with socioeconomic challenges",
	AreaTypeMixed:           "Socioeconomically mixed areas",
	AreaTypeGood:            "Areas with good socioeconomic conditions",
	AreaTypeVeryGood:        "Areas with very good socioeconomic conditions",
}

// Label returns the human-readable description of the area type in the
// given language. Labels exist for Swedish ("sv", the SCB default) and
// English ("en"). Unknown area types yield an empty string.
func (t AreaType) Label(lang language.Tag) string {
	base, _ := lang.Base()
	if base.String() == "en" {
		return labelsEnglish[t]
	}
	return labelsSwedish[t]
}

// ParseLanguage validates a caller-supplied language selector and returns
// the matched tag. Only Swedish and English are supported; anything else
// is an error rather than a silent fallback.
func ParseLanguage(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, eris.Wrapf(err, "model: parse language %q", s)
	}
	base, _ := tag.Base()
	switch base.String() {
	case "sv", "en":
		return tag, nil
	default:
		return language.Und, eris.Errorf("model: unsupported language %q (valid: sv, en)", s)
	}
}
