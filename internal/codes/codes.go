// Package codes resolves Swedish regional codes to names. A DeSO code
// embeds its kommun (first four digits) and län (first two digits), so
// a classified area can be labeled with both from the code alone.
package codes

import (
	_ "embed"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/segeodata/deso-cli/internal/model"
)

//go:embed regions.yaml
var regionsYAML []byte

// Registry maps kommun and län codes to their official names.
type Registry struct {
	kommuner map[string]string
	lan      map[string]string
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded code lists.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = parse(regionsYAML)
	})
	return defaultRegistry, defaultErr
}

func parse(data []byte) (*Registry, error) {
	var wrapper struct {
		Regions struct {
			Lan      map[string]string `yaml:"lan"`
			Kommuner map[string]string `yaml:"kommuner"`
		} `yaml:"regions"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "codes: parse region list")
	}
	if len(wrapper.Regions.Lan) == 0 || len(wrapper.Regions.Kommuner) == 0 {
		return nil, eris.New("codes: region list is empty")
	}
	return &Registry{
		kommuner: wrapper.Regions.Kommuner,
		lan:      wrapper.Regions.Lan,
	}, nil
}

// KommunName returns the name for a four-digit kommun code.
func (r *Registry) KommunName(code string) (string, bool) {
	name, ok := r.kommuner[code]
	return name, ok
}

// LanName returns the name for a two-digit län code.
func (r *Registry) LanName(code string) (string, bool) {
	name, ok := r.lan[code]
	return name, ok
}

// Area holds the regional context of one DeSO code.
type Area struct {
	Deso       string
	KommunCode string
	Kommun     string
	LanCode    string
	Lan        string
}

// Resolve derives the kommun and län of a DeSO code. Unknown codes
// resolve with empty names so callers can still emit the raw codes.
func (r *Registry) Resolve(desoCode string) (Area, error) {
	if !model.ValidDesoCode(desoCode) {
		return Area{}, eris.Errorf("codes: %q is not a valid DeSO code", desoCode)
	}
	kommunCode := model.KommunCode(desoCode)
	lanCode := model.LanCode(desoCode)
	area := Area{
		Deso:       desoCode,
		KommunCode: kommunCode,
		LanCode:    lanCode,
	}
	area.Kommun = r.kommuner[kommunCode]
	area.Lan = r.lan[lanCode]
	return area, nil
}

// Enrich fills in kommun and län names on classified records in place.
// Records with codes outside the registry keep empty names.
func (r *Registry) Enrich(records []model.ClassifiedRecord) {
	for i := range records {
		area, err := r.Resolve(records[i].Area)
		if err != nil {
			continue
		}
		records[i].Kommun = area.Kommun
		records[i].Lan = area.Lan
	}
}

// Kommuner returns all known kommun codes in sorted order.
func (r *Registry) Kommuner() []string {
	out := make([]string, 0, len(r.kommuner))
	for code := range r.kommuner {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Lan returns all known län codes in sorted order.
func (r *Registry) Lan() []string {
	out := make([]string, 0, len(r.lan))
	for code := range r.lan {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
