package codes

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segeodata/deso-cli/internal/model"
)

func TestDefaultRegistry(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	name, ok := r.KommunName("0180")
	require.True(t, ok)
	assert.Equal(t, "Stockholm", name)

	name, ok = r.LanName("14")
	require.True(t, ok)
	assert.Equal(t, "Västra Götalands län", name)

	_, ok = r.KommunName("9999")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	area, err := r.Resolve("1480C1180")
	require.NoError(t, err)
	assert.Equal(t, "1480", area.KommunCode)
	assert.Equal(t, "Göteborg", area.Kommun)
	assert.Equal(t, "14", area.LanCode)
	assert.Equal(t, "Västra Götalands län", area.Lan)

	_, err = r.Resolve("1480")
	assert.Error(t, err)
}

func TestResolveUnknownKommun(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	// Structurally valid DeSO code with a kommun outside the registry.
	area, err := r.Resolve("9912A0010")
	require.NoError(t, err)
	assert.Equal(t, "9912", area.KommunCode)
	assert.Empty(t, area.Kommun)
}

func TestEnrich(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	records := []model.ClassifiedRecord{
		{IndexRecord: model.IndexRecord{Area: "0180C2230", Year: 2023}},
		{IndexRecord: model.IndexRecord{Area: "bogus", Year: 2023}},
	}
	r.Enrich(records)

	assert.Equal(t, "Stockholm", records[0].Kommun)
	assert.Equal(t, "Stockholms län", records[0].Lan)
	assert.Empty(t, records[1].Kommun)
}

func TestRegistryListings(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	kommuner := r.Kommuner()
	assert.Len(t, kommuner, 290)
	assert.True(t, sort.StringsAreSorted(kommuner))

	lan := r.Lan()
	assert.Len(t, lan, 21)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := parse([]byte("regions: {}"))
	assert.Error(t, err)

	_, err = parse([]byte("not: [valid"))
	assert.Error(t, err)
}
