package derive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfroelund/json2tab/internal/catalog"
	"github.com/mfroelund/json2tab/internal/model"
)

const resolverSpecs = `{
  "WT_V90": {
    "type_id": "1", "turbine_model": "Vestas V90-3.0",
    "diameter": 90, "hub_height": 105, "rated_power": 3000, "wind_speeds": [4, 5, 6, 7]
  },
  "WT_V112": {
    "type_id": "2", "turbine_model": "Vestas V112-3.0",
    "diameter": 112, "hub_height": 119, "rated_power": 3075, "wind_speeds": [4, 5, 6]
  },
  "WT_V80A": {
    "turbine_model": "Vestas V80-2.0",
    "diameter": 80, "hub_height": 67, "rated_power": 2000, "wind_speeds": [4, 5]
  },
  "WT_V80B": {
    "turbine_model": "Vestas V80-2.0",
    "diameter": 80, "hub_height": 78, "rated_power": 2000, "wind_speeds": [4, 5, 6]
  },
  "WT_V80C": {
    "turbine_model": "Vestas V80-1.8",
    "diameter": 80, "hub_height": 67, "rated_power": 1800, "wind_speeds": [4, 5]
  },
  "WT_FO": {
    "turbine_model": "FO_09001",
    "diameter": 90, "hub_height": 100
  },
  "WT_LINKED": {
    "type_id": "9", "turbine_model": "unknown special",
    "diameter": 55, "hub_height": 50, "rated_power": 900
  },
  "WT_SIBLING": {
    "type_id": "9", "turbine_model": "Vestas V66-1.75",
    "diameter": 66, "hub_height": 67, "rated_power": 1750, "wind_speeds": [4, 5, 6]
  },
  "WT_PROTO1": {
    "turbine_model": "Vestas prototype mk2",
    "diameter": 52, "hub_height": 55, "rated_power": 600, "wind_speeds": [4, 5]
  },
  "WT_PROTO2": {
    "turbine_model": "Vestas prototype mk3",
    "diameter": 52, "hub_height": 55, "rated_power": 600, "wind_speeds": [4, 5]
  }
}`

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specs.json")
	require.NoError(t, os.WriteFile(path, []byte(resolverSpecs), 0o644))
	c, err := catalog.Load(path)
	require.NoError(t, err)
	return NewResolver(c)
}

func TestByTurbineType_TypeID(t *testing.T) {
	r := newTestResolver(t)
	d, idx, used := r.ByTurbineType("1", nil, false)
	assert.Equal(t, "Vestas V90-3.0", d)
	assert.Equal(t, 0, idx)
	assert.False(t, used)
}

func TestByTurbineType_TypeCode(t *testing.T) {
	r := newTestResolver(t)
	d, idx, _ := r.ByTurbineType("WT_V112", nil, false)
	assert.Equal(t, "Vestas V112-3.0", d)
	assert.Equal(t, 1, idx)
}

func TestByTurbineType_DesignationCaseInsensitive(t *testing.T) {
	r := newTestResolver(t)
	d, idx, _ := r.ByTurbineType("vestas v90-3.0", nil, false)
	assert.Equal(t, "Vestas V90-3.0", d)
	assert.Equal(t, 0, idx)
}

func TestByTurbineType_RichestWindSpeedsWins(t *testing.T) {
	r := newTestResolver(t)
	_, idx, _ := r.ByTurbineType("Vestas V80-2.0", nil, false)
	// Two entries carry this designation; the one with more wind speed
	// samples wins.
	assert.Equal(t, 3, idx)
}

func TestByTurbineType_EnrichesUnknownType(t *testing.T) {
	r := newTestResolver(t)
	d, idx, used := r.ByTurbineType("V112", nil, false)
	assert.Equal(t, "Vestas V112-3.0", d)
	assert.Equal(t, 1, idx)
	assert.False(t, used)
}

func TestByTurbineType_FollowsCrossReference(t *testing.T) {
	r := newTestResolver(t)
	d, idx, _ := r.ByTurbineType("unknown special", nil, false)
	assert.Equal(t, "Vestas V66-1.75", d)
	assert.Equal(t, 7, idx)
}

func TestByTurbineType_NoMatch(t *testing.T) {
	r := newTestResolver(t)
	d, idx, _ := r.ByTurbineType("Gearbox GB-1", nil, false)
	assert.Equal(t, "", d)
	assert.Equal(t, model.NoMatchIndex, idx)
}

func TestEnrich_ExcludesPlaceholderTypes(t *testing.T) {
	r := newTestResolver(t)
	d, used := r.Enrich("V90", nil, true, false)
	assert.Equal(t, "Vestas V90-3.0", d)
	assert.False(t, used)
}

func TestEnrich_ModePicksMostFrequent(t *testing.T) {
	r := newTestResolver(t)
	d, _ := r.Enrich("V80", nil, true, false)
	assert.Equal(t, "Vestas V80-2.0", d)
}

func TestEnrich_UndesignatedRowsCannotWin(t *testing.T) {
	r := newTestResolver(t)
	// Diameter 52 matches only the prototype rows, none of which carries a
	// designation; enriching returns the input unchanged instead of "".
	d, _ := r.Enrich("Vestas V52", nil, true, false)
	assert.Equal(t, "Vestas V52", d)
}

func TestMostFrequentDesignation(t *testing.T) {
	r := newTestResolver(t)

	// One vote each for V80-2.0 and V80-1.8: the tie resolves to the
	// lexicographically smaller designation.
	assert.Equal(t, "Vestas V80-1.8", r.mostFrequentDesignation([]int{2, 4}))

	// Prototype rows carry no designation and never win the mode.
	assert.Equal(t, "Vestas V80-2.0", r.mostFrequentDesignation([]int{8, 9, 2}))
	assert.Equal(t, "", r.mostFrequentDesignation([]int{8, 9}))
}

func TestEnrich_ClosestPowerWithRowData(t *testing.T) {
	r := newTestResolver(t)
	d, used := r.Enrich("Vestas V80", map[string]any{"power_rating": 1850}, false, false)
	assert.Equal(t, "Vestas V80-1.8", d)
	assert.True(t, used)
}

func TestEnrich_UnchangedWhenNothingUsable(t *testing.T) {
	r := newTestResolver(t)
	d, used := r.Enrich("mystery", nil, true, false)
	assert.Equal(t, "mystery", d)
	assert.False(t, used)
}

func TestSpecs(t *testing.T) {
	r := newTestResolver(t)
	e, idx := r.Specs("Vestas V90-3.0")
	require.NotNil(t, e)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 90.0, e.Diameter)

	e, idx = r.Specs("Vestas V999")
	assert.Nil(t, e)
	assert.Equal(t, model.NoMatchIndex, idx)
}
