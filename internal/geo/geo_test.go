package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfroelund/json2tab/internal/model"
)

func writeBorders(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const eezFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"UNION": "Netherlands", "ISO_TER1": "NLD"},
      "geometry": {"type": "Polygon", "coordinates": [[[3,50],[8,50],[8,54],[3,54],[3,50]]]}
    },
    {
      "type": "Feature",
      "properties": {"UNION": "Denmark", "ISO_TER1": "DNK"},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[7,54],[13,54],[13,58],[7,58],[7,54]]],
        [[[14,54],[16,54],[16,56],[14,56],[14,54]]]
      ]}
    }
  ]
}`

const landFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Netherlands", "ISO3166-1-Alpha-3": "NLD"},
      "geometry": {"type": "Polygon", "coordinates": [[[4,51],[7,51],[7,53],[4,53],[4,51]]]}
    }
  ]
}`

func TestLoadCountries_GeoJSON(t *testing.T) {
	path := writeBorders(t, "eez.geojson", eezFixture)

	index, err := LoadCountries(path, false)
	require.NoError(t, err)

	assert.Equal(t, "Netherlands", index.Country(52.0, 5.0))
	assert.Equal(t, "Denmark", index.Country(56.0, 10.0))
	assert.Equal(t, "Denmark", index.Country(55.0, 15.0)) // second multipolygon part
	assert.Equal(t, "", index.Country(40.0, 40.0))
}

func TestLoadCountries_PreferISO3(t *testing.T) {
	path := writeBorders(t, "eez.geojson", eezFixture)

	index, err := LoadCountries(path, true)
	require.NoError(t, err)

	assert.Equal(t, "NLD", index.Country(52.0, 5.0))
	assert.Equal(t, "DNK", index.Country(56.0, 10.0))
}

func TestLoadCountries_FirstContainingWins(t *testing.T) {
	// Overlap on the 7..8 lon band between 54 and the NL box top: the NL
	// feature comes first in the file so it wins there.
	path := writeBorders(t, "eez.geojson", eezFixture)

	index, err := LoadCountries(path, false)
	require.NoError(t, err)
	assert.Equal(t, "Netherlands", index.Country(53.9, 7.5))
}

func TestLoadCountries_SkipsPlaceholderNames(t *testing.T) {
	path := writeBorders(t, "eez.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {
	      "type": "Feature",
	      "properties": {"name": "-99", "ISO3166-1-Alpha-3": "FRA"},
	      "geometry": {"type": "Polygon", "coordinates": [[[0,45],[2,45],[2,47],[0,47],[0,45]]]}
	    }
	  ]
	}`)

	index, err := LoadCountries(path, false)
	require.NoError(t, err)
	assert.Equal(t, "FRA", index.Country(46.0, 1.0))
}

func TestLoadCountries_UnsupportedExtension(t *testing.T) {
	_, err := LoadCountries("borders.kml", false)
	assert.Error(t, err)
}

func TestPolygonContains_Hole(t *testing.T) {
	path := writeBorders(t, "land.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {
	      "type": "Feature",
	      "properties": {"name": "Ringland"},
	      "geometry": {"type": "Polygon", "coordinates": [
	        [[0,0],[10,0],[10,10],[0,10],[0,0]],
	        [[4,4],[6,4],[6,6],[4,6],[4,4]]
	      ]}
	    }
	  ]
	}`)

	index, err := LoadCountries(path, false)
	require.NoError(t, err)
	assert.Equal(t, "Ringland", index.Country(2.0, 2.0))
	assert.Equal(t, "", index.Country(5.0, 5.0)) // inside the hole
}

func TestClassifier_Classify(t *testing.T) {
	eez, err := LoadCountries(writeBorders(t, "eez.geojson", eezFixture), false)
	require.NoError(t, err)
	land, err := LoadCountries(writeBorders(t, "land.geojson", landFixture), false)
	require.NoError(t, err)

	c := NewClassifier(eez, land)

	country, offshore := c.Classify(52.0, 5.0)
	assert.Equal(t, "Netherlands", country)
	assert.False(t, offshore)

	country, offshore = c.Classify(53.5, 3.5)
	assert.Equal(t, "Netherlands", country)
	assert.True(t, offshore)

	country, offshore = c.Classify(40.0, 40.0)
	assert.Equal(t, "", country)
	assert.False(t, offshore)
}

func TestClassifier_NoLandIndex(t *testing.T) {
	eez, err := LoadCountries(writeBorders(t, "eez.geojson", eezFixture), false)
	require.NoError(t, err)

	c := NewClassifier(eez, nil)
	country, offshore := c.Classify(53.5, 3.5)
	assert.Equal(t, "Netherlands", country)
	assert.False(t, offshore)
}

func TestClassifier_Annotate(t *testing.T) {
	eez, err := LoadCountries(writeBorders(t, "eez.geojson", eezFixture), false)
	require.NoError(t, err)
	land, err := LoadCountries(writeBorders(t, "land.geojson", landFixture), false)
	require.NoError(t, err)

	records := []*model.TurbineRecord{
		{Latitude: 52.0, Longitude: 5.0, Country: "XX", IsOffshore: true},
		{Latitude: 53.5, Longitude: 3.5},
		{Latitude: 40.0, Longitude: 40.0, Country: "TR"},
	}

	NewClassifier(eez, land).Annotate(records, true, true)

	assert.Equal(t, "Netherlands", records[0].Country)
	assert.False(t, records[0].IsOffshore)
	assert.Equal(t, "Netherlands", records[1].Country)
	assert.True(t, records[1].IsOffshore)
	// Outside every border: the existing country survives.
	assert.Equal(t, "TR", records[2].Country)
	assert.False(t, records[2].IsOffshore)
}

func TestClassifier_AnnotateCountryOnly(t *testing.T) {
	eez, err := LoadCountries(writeBorders(t, "eez.geojson", eezFixture), false)
	require.NoError(t, err)
	land, err := LoadCountries(writeBorders(t, "land.geojson", landFixture), false)
	require.NoError(t, err)

	records := []*model.TurbineRecord{{Latitude: 53.5, Longitude: 3.5, IsOffshore: false}}
	NewClassifier(eez, land).Annotate(records, true, false)

	assert.Equal(t, "Netherlands", records[0].Country)
	assert.False(t, records[0].IsOffshore)
}
