// Package model holds the shared data types of the turbine type-resolution
// engine: located turbine records, reference catalog entries and match results.
package model

import "time"

// NoMatchIndex is the sentinel catalog line index for records that could not
// be matched to any reference turbine type.
const NoMatchIndex = -1

// TurbineRecord describes one physical wind turbine installation that is
// being classified. The orchestrator fills in the resolution fields
// (ModelDesignation, MatchedIndex, MatchedBy) in place.
type TurbineRecord struct {
	ID           string  `csv:"id,omitempty" json:"id,omitempty"`
	Name         string  `csv:"name,omitempty" json:"name,omitempty"`
	Latitude     float64 `csv:"latitude" json:"latitude"`
	Longitude    float64 `csv:"longitude" json:"longitude"`
	Manufacturer string  `csv:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Type         string  `csv:"type,omitempty" json:"type,omitempty"`
	Diameter     float64 `csv:"diameter,omitempty" json:"diameter,omitempty"`
	Radius       float64 `csv:"radius,omitempty" json:"radius,omitempty"`
	HubHeight    float64 `csv:"hub_height,omitempty" json:"hub_height,omitempty"`
	PowerRating  float64 `csv:"power_rating,omitempty" json:"power_rating,omitempty"`
	HeightOffset float64 `csv:"height_offset,omitempty" json:"height_offset,omitempty"`
	Country      string  `csv:"country,omitempty" json:"country,omitempty"`
	IsOffshore   bool    `csv:"is_offshore,omitempty" json:"is_offshore,omitempty"`
	Source       string  `csv:"source,omitempty" json:"source,omitempty"`

	// Extra carries source columns that have no canonical field. Values are
	// kept as decoded and interpreted lazily through the attrs helpers.
	Extra map[string]any `csv:"-" json:"-"`

	// Resolution output, written by the orchestrator.
	ModelDesignation string `csv:"model_designation,omitempty" json:"model_designation,omitempty"`
	MatchedIndex     int    `csv:"matched_line_index" json:"matched_line_index"`
	MatchedBy        string `csv:"matched_by,omitempty" json:"matched_by,omitempty"`
}

// AttrMap exposes the record as a loosely typed property map for the
// alias-based attribute getters. Canonical fields shadow Extra entries;
// zero-valued numerics and empty strings are omitted so that alias fallback
// can take over.
func (r *TurbineRecord) AttrMap() map[string]any {
	m := make(map[string]any, len(r.Extra)+10)
	for k, v := range r.Extra {
		m[k] = v
	}
	putString(m, "manufacturer", r.Manufacturer)
	putString(m, "type", r.Type)
	putString(m, "country", r.Country)
	putFloat(m, "latitude", r.Latitude)
	putFloat(m, "longitude", r.Longitude)
	putFloat(m, "diameter", r.Diameter)
	putFloat(m, "radius", r.Radius)
	putFloat(m, "hub_height", r.HubHeight)
	putFloat(m, "power_rating", r.PowerRating)
	if r.IsOffshore {
		m["is_offshore"] = true
	}
	return m
}

// CatalogEntry is one reference turbine type. Entries are immutable after
// catalog load and are identified by their line index into the full catalog.
type CatalogEntry struct {
	TypeCode         string
	TypeID           int
	TurbineModel     string
	ModelDesignation string
	Manufacturer     string
	Diameter         float64
	Radius           float64
	Height           float64
	ZHeight          float64
	RatedPower       float64
	IsOffshore       bool

	WindSpeeds    []float64
	Cp            []float64
	Ct            []float64
	CpGen         []float64
	CtGen         []float64
	PowerCurveGen []float64
	CtLow         float64
	CtHigh        float64

	IsManufacturerData  bool
	IsKnownManufacturer bool

	// Precomputed richness scores used for candidate sorting.
	WindSpeedsLen  int
	DesignationLen int

	SourceFile string
}

// AttrMap exposes the entry as a property map for the alias-based getters,
// mirroring the field names the catalog sources use.
func (e *CatalogEntry) AttrMap() map[string]any {
	m := make(map[string]any, 8)
	putString(m, "type_code", e.TypeCode)
	putString(m, "turbine_model", e.TurbineModel)
	putString(m, "model_designation", e.ModelDesignation)
	putString(m, "manufacturer", e.Manufacturer)
	putFloat(m, "diameter", e.Diameter)
	putFloat(m, "radius", e.Radius)
	putFloat(m, "height", e.Height)
	putFloat(m, "z_height", e.ZHeight)
	putFloat(m, "rated_power", e.RatedPower)
	return m
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func putFloat(m map[string]any, key string, value float64) {
	if value != 0 {
		m[key] = value
	}
}

// MatchResult is the outcome of resolving one record: the designation (empty
// when unmatched), the catalog line index (NoMatchIndex when unmatched) and
// the strategy tag that produced it. The tag is always set.
type MatchResult struct {
	ModelDesignation string
	MatchedIndex     int
	Strategy         string
}

// Matched reports whether the result carries a usable designation.
func (r MatchResult) Matched() bool {
	return r.ModelDesignation != "" && r.MatchedIndex != NoMatchIndex
}

// Strategy tags, one per cascade stage. The exact strings are part of the
// statistics report format.
const (
	StrategyCacheHitType      = "CacheHit(TurbineType)"
	StrategyCacheHitQualified = "CacheHit(Manufacturer+TurbineType)"
	StrategyLookupQualified   = "DatabaseLookup(Manufacturer+TurbineType)"
	StrategyLookupType        = "DatabaseLookup(TurbineType)"
	StrategyLookupEnriched    = "DatabaseLookup(EnrichedTurbineType)"
	StrategyDimensionMapper   = "DimensionLocationMapper"
	StrategyLookupTower       = "DatabaseLookup(TowerProperties)"
	StrategyProbabilistic     = "ProbabilisticMapper"
	StrategyDefaultSelector   = "DefaultTurbineSelector"
	StrategyNotMatched        = "NotMatched"
)

// KnownStrategies lists the strategy tags in report order, headed by the
// synthetic "Total" row.
var KnownStrategies = []string{
	"Total",
	StrategyCacheHitType,
	StrategyCacheHitQualified,
	StrategyLookupQualified,
	StrategyLookupType,
	StrategyDimensionMapper,
	StrategyLookupTower,
	StrategyProbabilistic,
	StrategyDefaultSelector,
}

// MatchRun captures the metadata of one completed matching run.
type MatchRun struct {
	ID        string
	Suffix    string
	Generated time.Time
	Total     int
}
