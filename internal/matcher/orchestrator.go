// Package matcher drives the per-record matching cascade: cache lookups,
// catalog resolution, dimension and location heuristics, each tried in strict
// order until one produces a plausible model designation.
package matcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mfroelund/json2tab/internal/attrs"
	"github.com/mfroelund/json2tab/internal/catalog"
	"github.com/mfroelund/json2tab/internal/derive"
	"github.com/mfroelund/json2tab/internal/heuristic"
	"github.com/mfroelund/json2tab/internal/model"
	"github.com/mfroelund/json2tab/internal/nameparse"
)

// Options tune the tail of the cascade.
type Options struct {
	// ForbiddenTypes are raw type strings known to be garbage; records
	// carrying one are treated as untyped.
	ForbiddenTypes []string

	// UseProbabilisticMapper enables the hash-based fallback stage.
	UseProbabilisticMapper bool

	// UseDefaultSelector enables the regional default stage.
	UseDefaultSelector bool
}

// DefaultOptions enables both fallback stages.
func DefaultOptions() Options {
	return Options{UseProbabilisticMapper: true, UseDefaultSelector: true}
}

type cacheEntry struct {
	designation string
	index       int
}

// Orchestrator matches turbine records to catalog model designations. It is
// not safe for concurrent use; the match cache is single-writer.
type Orchestrator struct {
	catalog  *catalog.Catalog
	resolver *derive.Resolver
	selector *heuristic.DefaultSelector
	opts     Options
	cache    map[string]cacheEntry
	progress rate.Sometimes
}

// New returns an orchestrator over the given catalog.
func New(c *catalog.Catalog, selector *heuristic.DefaultSelector, opts Options) *Orchestrator {
	if selector == nil {
		selector = heuristic.NewDefaultSelector()
	}
	return &Orchestrator{
		catalog:  c,
		resolver: derive.NewResolver(c),
		selector: selector,
		opts:     opts,
		cache:    make(map[string]cacheEntry),
		progress: rate.Sometimes{Interval: 2 * time.Second},
	}
}

// MatchAll resolves every record in place and returns the run metadata plus
// the per-strategy statistics. Record fields radius, diameter, hub height and
// power rating are backfilled from the matched catalog entry where the record
// itself has none.
func (o *Orchestrator) MatchAll(records []*model.TurbineRecord) (*model.MatchRun, *Stats) {
	generated := time.Now()
	stamp := generated.Format("20060102_150405") + fmt.Sprintf("_%06d", generated.Nanosecond()/1000)
	run := &model.MatchRun{
		ID:        uuid.NewString(),
		Suffix:    "_matched_by_json2tab_" + stamp,
		Generated: generated,
		Total:     len(records),
	}

	o.cache = make(map[string]cacheEntry)
	stats := NewStats()

	zap.L().Info("matching turbine types",
		zap.String("run_id", run.ID), zap.Int("turbines", len(records)))

	for i, rec := range records {
		result := o.Resolve(rec)

		rec.ModelDesignation = result.ModelDesignation
		rec.MatchedIndex = result.MatchedIndex
		rec.MatchedBy = result.Strategy
		o.backfillDimensions(rec, result.MatchedIndex)

		stats.Add(result.Strategy, rec.Country)

		o.progress.Do(func() {
			zap.L().Info("matching progress",
				zap.Int("done", i+1), zap.Int("total", len(records)))
		})
	}

	return run, stats
}

// backfillDimensions completes the record's physical attributes from the
// matched catalog entry, record values taking precedence.
func (o *Orchestrator) backfillDimensions(rec *model.TurbineRecord, matchedIndex int) {
	sources := []map[string]any{rec.AttrMap()}
	if matchedIndex != model.NoMatchIndex {
		sources = append(sources, o.catalog.Entry(matchedIndex).AttrMap())
	}

	rec.Radius = attrs.Radius(sources...)
	rec.Diameter = 2 * rec.Radius
	rec.HubHeight = attrs.Height(sources...)
	rec.PowerRating = attrs.RatedPowerKW(sources...)
}

// matchContext carries one record's normalized inputs through the stages.
type matchContext struct {
	record *model.TurbineRecord
	attrs  map[string]any

	turbineType  string
	extendedType string

	diameter float64
	height   float64
	power    float64
}

type stage struct {
	name string
	run  func(*matchContext) (model.MatchResult, bool)
}

// Resolve runs the cascade for one record. Stages are tried in order; the
// first that accepts wins. The result's strategy tag is always set, falling
// back to NotMatched.
func (o *Orchestrator) Resolve(rec *model.TurbineRecord) model.MatchResult {
	data := rec.AttrMap()
	ctx := &matchContext{
		record:      rec,
		attrs:       data,
		turbineType: strings.Trim(rec.Type, "?"),
		diameter:    attrs.Diameter(data),
		height:      attrs.Height(data),
		power:       attrs.RatedPowerKW(data),
	}

	for _, forbidden := range o.opts.ForbiddenTypes {
		if ctx.turbineType == forbidden {
			ctx.turbineType = ""
			break
		}
	}

	stages := []stage{
		{model.StrategyCacheHitType, o.stageCacheType},
		{model.StrategyCacheHitQualified, o.stageCacheExtendedType},
		{model.StrategyLookupQualified, o.stageLookupExtendedType},
		{model.StrategyLookupType, o.stageLookupType},
		{model.StrategyLookupEnriched, o.stageLookupEnriched},
		{model.StrategyDimensionMapper, o.stageDimensionGuess},
		{model.StrategyLookupTower, o.stageTowerProperties},
		{model.StrategyProbabilistic, o.stageProbabilistic},
		{model.StrategyDefaultSelector, o.stageDefaultSelector},
	}

	for _, s := range stages {
		if result, ok := s.run(ctx); ok {
			return result
		}
	}

	zap.L().Error("no turbine type found",
		zap.Float64("latitude", rec.Latitude), zap.Float64("longitude", rec.Longitude),
		zap.String("country", rec.Country),
		zap.String("manufacturer", rec.Manufacturer),
		zap.String("turbine_type", ctx.turbineType),
		zap.String("extended_type", ctx.extendedType))

	if ctx.turbineType != "" {
		zap.L().Warn("possibly missing model name parsing rules",
			zap.String("turbine_type", ctx.turbineType))
	}

	return model.MatchResult{
		MatchedIndex: model.NoMatchIndex,
		Strategy:     model.StrategyNotMatched,
	}
}

// stageCacheType serves a cache hit on the bare type string. An implausible
// cached candidate discredits the type string for the rest of the cascade.
func (o *Orchestrator) stageCacheType(ctx *matchContext) (model.MatchResult, bool) {
	if ctx.turbineType == "" {
		return model.MatchResult{}, false
	}
	entry, ok := o.cache[ctx.turbineType]
	if !ok {
		return model.MatchResult{}, false
	}
	if !o.towerImplements(ctx, entry.index) {
		ctx.turbineType = ""
		return model.MatchResult{}, false
	}
	return model.MatchResult{
		ModelDesignation: entry.designation,
		MatchedIndex:     entry.index,
		Strategy:         model.StrategyCacheHitType,
	}, true
}

// stageCacheExtendedType builds the manufacturer-qualified type and serves a
// cache hit on it.
func (o *Orchestrator) stageCacheExtendedType(ctx *matchContext) (model.MatchResult, bool) {
	ctx.extendedType = extendType(ctx.turbineType, strings.Trim(ctx.record.Manufacturer, "?"))
	if ctx.extendedType == "" {
		return model.MatchResult{}, false
	}
	entry, ok := o.cache[ctx.extendedType]
	if !ok {
		return model.MatchResult{}, false
	}
	if !o.towerImplements(ctx, entry.index) {
		ctx.extendedType = ""
		return model.MatchResult{}, false
	}
	return model.MatchResult{
		ModelDesignation: entry.designation,
		MatchedIndex:     entry.index,
		Strategy:         model.StrategyCacheHitQualified,
	}, true
}

func (o *Orchestrator) stageLookupExtendedType(ctx *matchContext) (model.MatchResult, bool) {
	if ctx.turbineType == "" || ctx.extendedType == "" {
		return model.MatchResult{}, false
	}
	designation, idx, _ := o.resolver.ByTurbineType(ctx.extendedType, ctx.attrs, false)
	if designation == "" || !o.towerImplements(ctx, idx) {
		return model.MatchResult{}, false
	}
	zap.L().Debug("matched by manufacturer-qualified type",
		zap.String("extended_type", ctx.extendedType),
		zap.String("model_designation", designation))
	o.addToCache([]string{ctx.extendedType, ctx.turbineType}, designation, idx)
	return model.MatchResult{
		ModelDesignation: designation,
		MatchedIndex:     idx,
		Strategy:         model.StrategyLookupQualified,
	}, true
}

func (o *Orchestrator) stageLookupType(ctx *matchContext) (model.MatchResult, bool) {
	if ctx.turbineType == "" {
		return model.MatchResult{}, false
	}
	designation, idx, _ := o.resolver.ByTurbineType(ctx.turbineType, ctx.attrs, false)
	if designation == "" || !o.towerImplements(ctx, idx) {
		return model.MatchResult{}, false
	}
	zap.L().Debug("matched by turbine type",
		zap.String("turbine_type", ctx.turbineType),
		zap.String("model_designation", designation))
	o.addToCache([]string{ctx.turbineType}, designation, idx)
	return model.MatchResult{
		ModelDesignation: designation,
		MatchedIndex:     idx,
		Strategy:         model.StrategyLookupType,
	}, true
}

// stageLookupEnriched retries the qualified and bare type strings after
// enriching them against the filtered catalog view, but only when their
// manufacturer is a recognized one.
func (o *Orchestrator) stageLookupEnriched(ctx *matchContext) (model.MatchResult, bool) {
	if ctx.turbineType == "" {
		return model.MatchResult{}, false
	}
	for _, raw := range []string{ctx.extendedType, ctx.turbineType} {
		if raw == "" || !nameparse.Parse(raw).IsKnownManufacturer {
			continue
		}
		enriched, _ := o.resolver.Enrich(raw, ctx.attrs, true, true)
		if enriched == raw {
			continue
		}
		designation, idx, _ := o.resolver.ByTurbineType(enriched, ctx.attrs, false)
		if designation == "" || !o.towerImplements(ctx, idx) {
			continue
		}
		zap.L().Debug("matched by enriched type",
			zap.String("raw", raw), zap.String("enriched", enriched),
			zap.String("model_designation", designation))
		o.addToCache([]string{enriched, raw, ctx.turbineType}, designation, idx)
		return model.MatchResult{
			ModelDesignation: designation,
			MatchedIndex:     idx,
			Strategy:         model.StrategyLookupEnriched,
		}, true
	}
	return model.MatchResult{}, false
}

func (o *Orchestrator) stageDimensionGuess(ctx *matchContext) (model.MatchResult, bool) {
	guess := heuristic.MapDimensions(ctx.diameter, ctx.height, ctx.power,
		ctx.record.IsOffshore, ctx.record.Country)
	if guess == "" {
		return model.MatchResult{}, false
	}
	designation, idx := o.guessToDesignation(guess)
	if designation == "" {
		return model.MatchResult{}, false
	}
	zap.L().Debug("matched by dimension guess",
		zap.String("guess", guess), zap.String("model_designation", designation))
	return model.MatchResult{
		ModelDesignation: designation,
		MatchedIndex:     idx,
		Strategy:         model.StrategyDimensionMapper,
	}, true
}

func (o *Orchestrator) stageTowerProperties(ctx *matchContext) (model.MatchResult, bool) {
	if ctx.diameter == 0 && ctx.height == 0 && ctx.power == 0 {
		return model.MatchResult{}, false
	}
	entry, idx := o.catalog.ByTowerProperties(ctx.diameter, ctx.height, ctx.power,
		ctx.record.IsOffshore)
	if entry == nil || entry.ModelDesignation == "" {
		return model.MatchResult{}, false
	}
	zap.L().Debug("matched by tower properties",
		zap.Float64("diameter", ctx.diameter), zap.Float64("height", ctx.height),
		zap.Float64("power", ctx.power),
		zap.String("model_designation", entry.ModelDesignation))
	return model.MatchResult{
		ModelDesignation: entry.ModelDesignation,
		MatchedIndex:     idx,
		Strategy:         model.StrategyLookupTower,
	}, true
}

func (o *Orchestrator) stageProbabilistic(ctx *matchContext) (model.MatchResult, bool) {
	if !o.opts.UseProbabilisticMapper {
		return model.MatchResult{}, false
	}
	guess := heuristic.MapProbabilistic(ctx.turbineType,
		ctx.record.Latitude, ctx.record.Longitude, ctx.diameter)
	if guess == "" {
		return model.MatchResult{}, false
	}
	designation, idx := o.guessToDesignation(guess)
	if designation == "" {
		return model.MatchResult{}, false
	}
	zap.L().Debug("matched probabilistically",
		zap.String("guess", guess), zap.String("model_designation", designation))
	return model.MatchResult{
		ModelDesignation: designation,
		MatchedIndex:     idx,
		Strategy:         model.StrategyProbabilistic,
	}, true
}

func (o *Orchestrator) stageDefaultSelector(ctx *matchContext) (model.MatchResult, bool) {
	if !o.opts.UseDefaultSelector {
		return model.MatchResult{}, false
	}
	guess := o.selector.DefaultTurbine(ctx.record.Latitude, ctx.record.Longitude)
	if guess == "" {
		return model.MatchResult{}, false
	}
	designation, idx := o.guessToDesignation(guess)
	if designation == "" {
		return model.MatchResult{}, false
	}
	zap.L().Debug("matched by regional default",
		zap.String("guess", guess), zap.String("model_designation", designation))
	return model.MatchResult{
		ModelDesignation: designation,
		MatchedIndex:     idx,
		Strategy:         model.StrategyDefaultSelector,
	}, true
}

// guessToDesignation resolves a heuristic model guess through the cache or
// the catalog, checking the designation field first. Successful resolutions
// are cached under the guess.
func (o *Orchestrator) guessToDesignation(guess string) (string, int) {
	if entry, ok := o.cache[guess]; ok {
		return entry.designation, entry.index
	}
	designation, idx := o.resolver.ByDesignationFirst(guess, false)
	if designation == "" {
		return "", model.NoMatchIndex
	}
	o.addToCache([]string{guess}, designation, idx)
	return designation, idx
}

// addToCache stores a resolution under each key. First writer wins: a cached
// key is never overwritten within a run.
func (o *Orchestrator) addToCache(keys []string, designation string, index int) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := o.cache[key]; !ok {
			o.cache[key] = cacheEntry{designation: designation, index: index}
		}
	}
}

// towerImplements checks basic physical plausibility of matching the record
// against a catalog candidate: the larger known rotor radius must sit below
// the larger known hub height.
func (o *Orchestrator) towerImplements(ctx *matchContext, index int) bool {
	if index == model.NoMatchIndex {
		return false
	}
	specs := o.catalog.Entry(index).AttrMap()

	radius := maxFloat(attrs.Radius(ctx.attrs), attrs.Radius(specs))
	height := maxFloat(attrs.Height(ctx.attrs), attrs.Height(specs))
	if radius == 0 && height == 0 {
		return true
	}
	if radius < height {
		return true
	}

	zap.L().Info("implausible radius/height combination",
		zap.Float64("radius", radius), zap.Float64("height", height),
		zap.String("model_designation", o.catalog.Entry(index).ModelDesignation))
	return false
}

// extendType qualifies a bare type string with the first two words of the
// manufacturer name, unless the type already starts with them.
func extendType(turbineType, manufacturer string) string {
	if turbineType == "" || manufacturer == "" {
		return ""
	}
	parts := strings.Split(manufacturer, " ")
	code := parts[0]
	if len(parts) > 1 {
		code += " " + parts[1]
	}
	if code == "" || strings.HasPrefix(strings.ToLower(turbineType), strings.ToLower(code)) {
		return ""
	}
	return code + " " + turbineType
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
