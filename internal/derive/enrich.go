package derive

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/attrs"
	"github.com/mfroelund/json2tab/internal/model"
	"github.com/mfroelund/json2tab/internal/nameparse"
)

// Enriching must never introduce synthetic wf101 placeholder types.
var wf101Designation = regexp.MustCompile(`^FO_\d+`)

// Enrich maps a generic model designation to a more specific one by
// filtering the catalog on the manufacturer, diameter and power that can be
// read from the designation itself plus the optional additionalData of the
// turbine. With exactPower the power filter is a tight relative band that is
// progressively halved; without it the candidate with the closest power
// wins. Returns the input designation unchanged when enriching fails, plus a
// flag reporting whether additionalData contributed.
func (r *Resolver) Enrich(designation string, additionalData map[string]any, exactPower, filtered bool) (string, bool) {
	parsed := nameparse.Parse(designation)

	manufacturer := parsed.Manufacturer
	diameter := parsed.Diameter
	power := parsed.Power
	rowDataUsed := false

	if power == 0 {
		power = attrs.RatedPowerKW(additionalData)
		rowDataUsed = rowDataUsed || power > 0
	}
	if diameter == 0 {
		diameter = attrs.Diameter(additionalData)
		rowDataUsed = rowDataUsed || diameter > 0
	}

	if manufacturer == "" && diameter == 0 && power == 0 {
		zap.L().Debug("enriching failed, no usable filters",
			zap.String("model_designation", designation))
		return designation, rowDataUsed
	}

	candidates := r.subset(r.catalog.Indexes(filtered), func(e *model.CatalogEntry) bool {
		return !wf101Designation.MatchString(e.ModelDesignation)
	})

	if parsed.ManufacturerPattern != nil {
		candidates = r.subset(candidates, func(e *model.CatalogEntry) bool {
			return parsed.ManufacturerPattern.MatchesPrefix(e.Manufacturer)
		})
	} else if manufacturer != "" {
		candidates = r.subset(candidates, func(e *model.CatalogEntry) bool {
			return strings.EqualFold(e.Manufacturer, manufacturer)
		})
	}

	if diameter > 0 {
		candidates = r.subset(candidates, func(e *model.CatalogEntry) bool {
			return math.Abs(e.Diameter-diameter) < 5
		})
	}

	if power > 0 && exactPower {
		threshold := (power / 750) / 100
		candidates = r.subset(candidates, func(e *model.CatalogEntry) bool {
			return math.Abs(e.RatedPower-power)/power < threshold
		})
	}

	if len(candidates) > 1 {
		if positive := r.subset(candidates, func(e *model.CatalogEntry) bool {
			return e.RatedPower > 0
		}); len(positive) > 0 {
			candidates = positive
		}
	}

	if len(candidates) > 1 {
		if withCurves := r.subset(candidates, func(e *model.CatalogEntry) bool {
			return e.WindSpeedsLen > 0
		}); len(withCurves) > 0 {
			candidates = withCurves
		}
	}

	if len(candidates) > 1 && diameter > 0 {
		for _, threshold := range []float64{3, 1} {
			tighter := r.subset(candidates, func(e *model.CatalogEntry) bool {
				return math.Abs(e.Diameter-diameter) < threshold
			})
			if len(tighter) > 0 {
				candidates = tighter
			}
		}
	}

	if len(candidates) > 1 && power > 0 && exactPower {
		threshold := (power / 750) / 100
		for len(candidates) > 1 && int(threshold*100) > 0 {
			threshold /= 2
			tighter := r.subset(candidates, func(e *model.CatalogEntry) bool {
				return math.Abs(e.RatedPower-power)/power < threshold
			})
			if len(tighter) == 0 {
				break
			}
			candidates = tighter
			threshold /= 2
		}
	}

	switch {
	case len(candidates) > 0 && power > 0 && !exactPower:
		sort.SliceStable(candidates, func(i, j int) bool {
			return math.Abs(r.catalog.Entry(candidates[i]).RatedPower-power) <
				math.Abs(r.catalog.Entry(candidates[j]).RatedPower-power)
		})
		enriched := r.catalog.Entry(candidates[0]).ModelDesignation
		zap.L().Debug("approximated model designation by closest power",
			zap.String("from", designation), zap.String("to", enriched))
		return enriched, rowDataUsed

	case len(candidates) == 1:
		enriched := r.catalog.Entry(candidates[0]).ModelDesignation
		zap.L().Debug("enriched model designation",
			zap.String("from", designation), zap.String("to", enriched))
		return enriched, rowDataUsed

	case len(candidates) > 1:
		if mode := r.mostFrequentDesignation(candidates); mode != "" {
			zap.L().Debug("enriched model designation to most frequent",
				zap.String("from", designation), zap.String("to", mode))
			return mode, rowDataUsed
		}
	}

	zap.L().Debug("enriching failed, filters too strict",
		zap.String("model_designation", designation))
	return designation, rowDataUsed
}

// ClosestPoweredWithCt finds a designation near the given one that carries
// thrust curve data, searching the full catalog without a power band.
func (r *Resolver) ClosestPoweredWithCt(designation string) string {
	enriched, _ := r.Enrich(designation, nil, false, false)
	return enriched
}

// mostFrequentDesignation picks the designation occurring most often among
// the candidates, ignoring entries that carry none; ties resolve to the
// lexicographically smallest. Returns "" when no candidate has a designation.
func (r *Resolver) mostFrequentDesignation(candidates []int) string {
	counts := make(map[string]int)
	for _, idx := range candidates {
		if d := r.catalog.Entry(idx).ModelDesignation; d != "" {
			counts[d]++
		}
	}
	best := ""
	bestCount := 0
	for designation, count := range counts {
		if count > bestCount || (count == bestCount && designation < best) {
			best = designation
			bestCount = count
		}
	}
	return best
}
