// Package catalog loads turbine type specifications from JSON and CSV files
// and serves lookups over them. The catalog keeps every loaded row in file
// order; the row's position is its line index, which match results refer
// back to.
package catalog

import (
	"math"

	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/model"
)

// Dimension score weights. Diameter is the strongest signal a tower gives
// about its type, power second, height weakest.
const (
	diameterWeight = 3.0
	heightWeight   = 1.5
	powerWeight    = 2.0

	// Weight applied to a dimension that was not given, so that near-ties
	// resolve toward smaller (onshore) or more powerful (offshore) types.
	preferenceWeight = 1e-6
)

// Catalog holds the full set of loaded turbine type specs plus the filtered
// subset usable for dimension matching.
type Catalog struct {
	entries  []model.CatalogEntry
	filtered []int
}

// Len returns the number of entries in the full catalog.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns the entry at the given line index of the full catalog, or nil
// when the index is out of range.
func (c *Catalog) Entry(lineIndex int) *model.CatalogEntry {
	if lineIndex < 0 || lineIndex >= len(c.entries) {
		return nil
	}
	return &c.entries[lineIndex]
}

// Indexes returns the line indexes of the requested view in load order. The
// filtered view holds only types with a known manufacturer, a model
// designation and power curve data.
func (c *Catalog) Indexes(filtered bool) []int {
	if filtered {
		return c.filtered
	}
	all := make([]int, len(c.entries))
	for i := range all {
		all[i] = i
	}
	return all
}

// refilter rebuilds the filtered view over the current entries.
func (c *Catalog) refilter() {
	c.filtered = c.filtered[:0]
	for i, e := range c.entries {
		if e.IsKnownManufacturer && e.WindSpeedsLen > 0 && e.DesignationLen > 0 {
			c.filtered = append(c.filtered, i)
		}
	}
	zap.L().Info("filtered turbine types to those with known manufacturer, wind speed data and model designation",
		zap.Int("full", len(c.entries)),
		zap.Int("filtered", len(c.filtered)))
}

// ByTowerProperties finds the filtered catalog entry closest to the given
// tower dimensions. A zero dimension counts as unknown; dimensions outside
// the catalog's own range are dropped rather than extrapolated. Returns the
// matched entry and its line index, or nil and NoMatchIndex when no
// dimension survives.
func (c *Catalog) ByTowerProperties(diameter, height, power float64, isOffshore bool) (*model.CatalogEntry, int) {
	if len(c.filtered) == 0 {
		return nil, model.NoMatchIndex
	}

	dMin, dMax := c.fieldRange(func(e *model.CatalogEntry) float64 { return e.Diameter })
	hMin, hMax := c.fieldRange(func(e *model.CatalogEntry) float64 { return e.Height })
	pMin, pMax := c.fieldRange(func(e *model.CatalogEntry) float64 { return e.RatedPower })

	if diameter > 0 && (diameter < dMin || diameter > dMax) {
		zap.L().Info("diameter outside known range, dropped to avoid extrapolation",
			zap.Float64("diameter", diameter))
		diameter = 0
	}
	if height > 0 && (height < hMin || height > hMax) {
		zap.L().Info("height outside known range, dropped to avoid extrapolation",
			zap.Float64("height", height))
		height = 0
	}
	if power > 0 && (power < pMin || power > pMax) {
		zap.L().Info("power outside known range, dropped to avoid extrapolation",
			zap.Float64("power", power))
		power = 0
	}

	if diameter == 0 && height == 0 && power == 0 {
		return nil, model.NoMatchIndex
	}

	n := len(c.filtered)
	diameterScores := make([]float64, n)
	powerScores := make([]float64, n)
	var heightScores []float64
	if height > 0 {
		heightScores = make([]float64, n)
	}

	for i, idx := range c.filtered {
		e := &c.entries[idx]
		if diameter > 0 {
			diameterScores[i] = math.Abs(e.Diameter - diameter)
		} else {
			diameterScores[i] = math.Abs(e.Diameter)
		}
		if power > 0 {
			powerScores[i] = math.Abs(e.RatedPower - power)
		} else {
			powerScores[i] = math.Abs(e.RatedPower)
		}
		if height > 0 {
			heightScores[i] = math.Abs(e.Height - height)
		}
	}

	normalize(diameterScores)
	normalize(powerScores)
	normalize(heightScores)

	diameterFactor := preferenceWeight
	if diameter > 0 {
		diameterFactor = diameterWeight
	}
	powerFactor := preferenceWeight
	if power > 0 {
		powerFactor = powerWeight
	} else if isOffshore {
		// Negative preference: near-ties resolve toward the most powerful
		// type offshore, the least powerful onshore.
		powerFactor = -preferenceWeight
	}

	cols := 2.0
	if height > 0 {
		cols = 3.0
	}

	best := -1
	bestScore := math.Inf(1)
	for i := range c.filtered {
		total := diameterScores[i]*diameterFactor + powerScores[i]*powerFactor
		if height > 0 {
			total += heightScores[i] * heightWeight
		}
		total /= cols
		if total < bestScore {
			bestScore = total
			best = i
		}
	}

	if best < 0 {
		return nil, model.NoMatchIndex
	}
	lineIndex := c.filtered[best]
	return &c.entries[lineIndex], lineIndex
}

func (c *Catalog) fieldRange(field func(*model.CatalogEntry) float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, idx := range c.filtered {
		v := field(&c.entries[idx])
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func normalize(scores []float64) {
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max <= 0 {
		return
	}
	for i := range scores {
		scores[i] /= max
	}
}
