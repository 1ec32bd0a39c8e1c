package matcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfroelund/json2tab/internal/catalog"
	"github.com/mfroelund/json2tab/internal/model"
)

const matcherSpecs = `{
  "WT_V80": {
    "turbine_model": "Vestas V80-2.0",
    "diameter": 80, "hub_height": 67, "rated_power": 2000, "wind_speeds": [4, 5, 6]
  },
  "WT_V90": {
    "turbine_model": "Vestas V90-3.0",
    "diameter": 90, "hub_height": 105, "rated_power": 3000, "wind_speeds": [4, 5, 6, 7]
  },
  "WT_E101": {
    "turbine_model": "Enercon E-101",
    "diameter": 101, "hub_height": 99, "rated_power": 3050, "wind_speeds": [4, 5, 6]
  },
  "WT_V164": {
    "turbine_model": "Vestas V164-8.0",
    "diameter": 164, "hub_height": 106, "rated_power": 8000, "wind_speeds": [4, 5, 6]
  }
}`

const v80OnlySpecs = `{
  "WT_V80": {
    "turbine_model": "Vestas V80-2.0",
    "diameter": 80, "hub_height": 67, "rated_power": 2000, "wind_speeds": [4, 5, 6]
  }
}`

const prototypeSpecs = `{
  "WT_X1": {
    "turbine_model": "Vestas prototype mk2",
    "diameter": 90, "hub_height": 30, "rated_power": 2000, "wind_speeds": [4, 5, 6]
  },
  "WT_X2": {
    "turbine_model": "Vestas prototype mk3",
    "diameter": 90, "hub_height": 30, "rated_power": 2000, "wind_speeds": [4, 5, 6]
  },
  "WT_V94": {
    "turbine_model": "Vestas V94-3.0",
    "diameter": 94, "hub_height": 105, "rated_power": 3075, "wind_speeds": [4, 5, 6, 7]
  }
}`

func loadCatalog(t *testing.T, specs string) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specs.json")
	require.NoError(t, os.WriteFile(path, []byte(specs), 0o644))
	c, err := catalog.Load(path)
	require.NoError(t, err)
	return c
}

func newOrchestrator(t *testing.T, specs string, opts Options) *Orchestrator {
	t.Helper()
	return New(loadCatalog(t, specs), nil, opts)
}

func TestResolve_LookupByType(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{})
	res := o.Resolve(&model.TurbineRecord{Type: "Vestas V90-3.0"})
	assert.Equal(t, "Vestas V90-3.0", res.ModelDesignation)
	assert.Equal(t, 1, res.MatchedIndex)
	assert.Equal(t, model.StrategyLookupType, res.Strategy)
}

func TestResolve_CacheHitOnRepeat(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{})
	first := o.Resolve(&model.TurbineRecord{Type: "Vestas V90-3.0"})
	second := o.Resolve(&model.TurbineRecord{Type: "Vestas V90-3.0"})
	assert.Equal(t, model.StrategyLookupType, first.Strategy)
	assert.Equal(t, model.StrategyCacheHitType, second.Strategy)
	assert.Equal(t, first.ModelDesignation, second.ModelDesignation)
	assert.Equal(t, first.MatchedIndex, second.MatchedIndex)
}

func TestResolve_QualifiedLookupCachesBareType(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{})
	res := o.Resolve(&model.TurbineRecord{Manufacturer: "Vestas", Type: "V90-3.0"})
	assert.Equal(t, "Vestas V90-3.0", res.ModelDesignation)
	assert.Equal(t, model.StrategyLookupQualified, res.Strategy)

	// The bare type is now cached too.
	res = o.Resolve(&model.TurbineRecord{Type: "V90-3.0"})
	assert.Equal(t, model.StrategyCacheHitType, res.Strategy)
}

func TestResolve_QualifiedCacheHit(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{})
	o.cache["Vestas V90-3.0"] = cacheEntry{designation: "Vestas V90-3.0", index: 1}

	res := o.Resolve(&model.TurbineRecord{Manufacturer: "Vestas", Type: "V90-3.0"})
	assert.Equal(t, model.StrategyCacheHitQualified, res.Strategy)
	assert.Equal(t, 1, res.MatchedIndex)
}

func TestResolve_PlausibilityRejectContinuesCascade(t *testing.T) {
	o := newOrchestrator(t, v80OnlySpecs, Options{})

	// Rotor radius above the hub height cannot be real; the type lookup must
	// be rejected and, with nothing else to try, the record stays unmatched.
	res := o.Resolve(&model.TurbineRecord{
		Type: "Vestas V80-2.0", Radius: 80, HubHeight: 70,
	})
	assert.Equal(t, model.StrategyNotMatched, res.Strategy)
	assert.Equal(t, model.NoMatchIndex, res.MatchedIndex)
	assert.Empty(t, res.ModelDesignation)

	// A plausible tower with the same type matches normally.
	res = o.Resolve(&model.TurbineRecord{
		Type: "Vestas V80-2.0", Radius: 30, HubHeight: 70,
	})
	assert.Equal(t, model.StrategyLookupType, res.Strategy)
}

func TestResolve_ForbiddenTypeIsIgnored(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{ForbiddenTypes: []string{"Vestas V90-3.0"}})
	res := o.Resolve(&model.TurbineRecord{Type: "Vestas V90-3.0"})
	assert.Equal(t, model.StrategyNotMatched, res.Strategy)
}

func TestResolve_EnrichedQualifiedType(t *testing.T) {
	o := newOrchestrator(t, prototypeSpecs, Options{})

	// "Vestas V90" hits no catalog field directly, and around diameter 90 the
	// full catalog holds only designation-less prototype rows. Enriching the
	// qualified type over the filtered view lands on the V94 instead.
	res := o.Resolve(&model.TurbineRecord{Manufacturer: "Vestas", Type: "V90"})
	require.Equal(t, model.StrategyLookupEnriched, res.Strategy)
	assert.Equal(t, "Vestas V94-3.0", res.ModelDesignation)
	assert.Equal(t, 2, res.MatchedIndex)

	// The enriched resolution is cached under the bare type too.
	res = o.Resolve(&model.TurbineRecord{Type: "V90"})
	assert.Equal(t, model.StrategyCacheHitType, res.Strategy)
	assert.Equal(t, "Vestas V94-3.0", res.ModelDesignation)
}

func TestResolve_DimensionGuess(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{})
	res := o.Resolve(&model.TurbineRecord{Diameter: 90, HubHeight: 80, PowerRating: 3000})
	assert.Equal(t, "Vestas V90-3.0", res.ModelDesignation)
	assert.Equal(t, model.StrategyDimensionMapper, res.Strategy)
}

func TestResolve_TowerProperties(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{})
	// 95 m falls in no heuristic diameter band, so the catalog dimension
	// scoring decides.
	res := o.Resolve(&model.TurbineRecord{Diameter: 95})
	assert.Equal(t, "Vestas V90-3.0", res.ModelDesignation)
	assert.Equal(t, 1, res.MatchedIndex)
	assert.Equal(t, model.StrategyLookupTower, res.Strategy)
}

func TestResolve_ProbabilisticFallback(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{UseProbabilisticMapper: true})
	// A 5-digit ID encodes diameter 101, which maps onto the E101.
	res := o.Resolve(&model.TurbineRecord{Type: "10100", Latitude: 48, Longitude: 10})
	require.Equal(t, model.StrategyProbabilistic, res.Strategy)
	assert.Equal(t, 2, res.MatchedIndex)
}

func TestResolve_DefaultSelectorFallback(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{UseDefaultSelector: true})
	// North Sea, whole-degree coordinates: regional default is the V164.
	res := o.Resolve(&model.TurbineRecord{Latitude: 56, Longitude: 2, IsOffshore: true})
	require.Equal(t, model.StrategyDefaultSelector, res.Strategy)
	assert.Equal(t, 3, res.MatchedIndex)
}

func TestResolve_NotMatchedWithFallbacksDisabled(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{})
	res := o.Resolve(&model.TurbineRecord{Latitude: 56, Longitude: 2})
	assert.Equal(t, model.StrategyNotMatched, res.Strategy)
	assert.False(t, res.Matched())
}

func TestMatchAll_FillsRecordsAndStats(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, DefaultOptions())
	records := []*model.TurbineRecord{
		{Type: "Vestas V90-3.0", Country: "DK"},
		{Type: "Vestas V90-3.0", Country: "DK"},
		{Type: "Vestas V80-2.0", Country: "DE"},
	}

	run, stats := o.MatchAll(records)

	assert.Equal(t, 3, run.Total)
	assert.NotEmpty(t, run.ID)
	assert.True(t, strings.HasPrefix(run.Suffix, "_matched_by_json2tab_"))

	assert.Equal(t, "Vestas V90-3.0", records[0].ModelDesignation)
	assert.Equal(t, model.StrategyLookupType, records[0].MatchedBy)
	assert.Equal(t, model.StrategyCacheHitType, records[1].MatchedBy)

	// Dimensions are backfilled from the matched entry.
	assert.Equal(t, 45.0, records[0].Radius)
	assert.Equal(t, 90.0, records[0].Diameter)
	assert.Equal(t, 105.0, records[0].HubHeight)
	assert.Equal(t, 3000.0, records[0].PowerRating)

	assert.Equal(t, 3, stats.Total())
	assert.Equal(t, 1, stats.Global[model.StrategyCacheHitType])
	assert.Equal(t, 2, stats.PerCountry["DK"][model.StrategyLookupType]+
		stats.PerCountry["DK"][model.StrategyCacheHitType])
	assert.Equal(t, []string{"DE", "DK"}, stats.Countries())
}

func TestAddToCache_FirstWriterWins(t *testing.T) {
	o := newOrchestrator(t, matcherSpecs, Options{})
	o.addToCache([]string{"key"}, "first", 1)
	o.addToCache([]string{"key"}, "second", 2)
	assert.Equal(t, cacheEntry{designation: "first", index: 1}, o.cache["key"])
}

func TestExtendType(t *testing.T) {
	assert.Equal(t, "Vestas V90", extendType("V90", "Vestas"))
	assert.Equal(t, "Siemens Gamesa SG-8.0", extendType("SG-8.0", "Siemens Gamesa Renewable"))
	// Already qualified types are not extended again.
	assert.Equal(t, "", extendType("Vestas V90", "Vestas"))
	assert.Equal(t, "", extendType("", "Vestas"))
	assert.Equal(t, "", extendType("V90", ""))
}
