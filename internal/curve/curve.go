// Package curve reconciles the cp/ct/power curve arrays of catalog entries
// and derives power curves for entries that only carry coefficients.
package curve

import (
	"math"

	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/model"
)

// Air density at sea level in kg/m^3, used for power calculations.
const airDensity = 1.225

// Curves holds length-matched curve data for one catalog entry. All slices
// have the same length; empty slices mean the source carried no usable data
// for that series.
type Curves struct {
	WindSpeeds []float64
	Cp         []float64
	Ct         []float64
	Power      []float64
}

// Read picks the curve arrays of an entry whose lengths match its wind speed
// grid. Generated ct curves are preferred over the plain ones since they
// cover the full speed range.
func Read(entry *model.CatalogEntry) Curves {
	ws := entry.WindSpeeds
	if len(ws) == 0 {
		return Curves{}
	}

	c := Curves{
		WindSpeeds: ws,
		Cp:         matchLength(ws, entry.Cp, entry.CpGen),
		Ct:         matchLength(ws, entry.CtGen, entry.Ct),
		Power:      matchLength(ws, entry.PowerCurveGen),
	}
	if len(c.Cp) > 0 && len(c.Ct) > 0 {
		zap.L().Debug("found cp and ct data",
			zap.String("model_designation", entry.ModelDesignation),
			zap.Int("points", len(ws)))
	}
	return c
}

// matchLength returns the first candidate whose length equals the wind speed
// grid.
func matchLength(ws []float64, candidates ...[]float64) []float64 {
	for _, c := range candidates {
		if len(c) == len(ws) {
			return c
		}
	}
	return nil
}

// CalculatePowerCurve derives power output in kW per wind speed. With cp data
// the output follows cp times the kinetic power through the rotor disc,
// capped at rated power. Without cp data it falls back to a linear ramp from
// cutIn to ratedSpeed.
func CalculatePowerCurve(windSpeeds, cp []float64, radius, ratedPowerKW, cutIn, ratedSpeed float64) []float64 {
	area := math.Pi * radius * radius
	var power []float64

	if len(cp) > 0 {
		for i, ws := range windSpeeds {
			if i >= len(cp) || cp[i] <= 0 {
				power = append(power, 0)
				continue
			}
			powerIn := 0.5 * airDensity * area * ws * ws * ws / 1000
			p := cp[i] * powerIn
			if ratedPowerKW > 0 {
				p = math.Min(p, ratedPowerKW)
			}
			power = append(power, p)
		}
		return power
	}

	if ratedPowerKW <= 0 {
		return nil
	}

	for _, ws := range windSpeeds {
		switch {
		case ws < cutIn:
			power = append(power, 0)
		case ws < ratedSpeed:
			power = append(power, (ws-cutIn)/(ratedSpeed-cutIn)*ratedPowerKW)
		default:
			power = append(power, ratedPowerKW)
		}
	}
	return power
}

// CutIn approximates the cut-in speed: the grid point just before cp first
// becomes positive.
func (c Curves) CutIn() float64 {
	if len(c.WindSpeeds) == 0 || len(c.Cp) == 0 {
		return 0
	}
	for i, cp := range c.Cp {
		if cp > 0 {
			if i > 0 {
				return c.WindSpeeds[i-1]
			}
			return c.WindSpeeds[0]
		}
	}
	return c.WindSpeeds[0]
}

// CutOut approximates the cut-out speed: the grid point just before ct drops
// to zero past its peak. Without such a drop the highest grid speed is used.
func (c Curves) CutOut() float64 {
	if len(c.WindSpeeds) == 0 || len(c.Ct) == 0 {
		return 0
	}

	maxCt := c.Ct[0]
	for _, ct := range c.Ct {
		if ct > maxCt {
			maxCt = ct
		}
	}
	wsMaxCt := c.WindSpeeds[len(c.WindSpeeds)-1]
	for i, ct := range c.Ct {
		if ct == maxCt {
			wsMaxCt = c.WindSpeeds[i]
			break
		}
	}

	for i, ct := range c.Ct {
		if ct == 0 && c.WindSpeeds[i] > wsMaxCt {
			if i > 0 {
				return c.WindSpeeds[i-1]
			}
			return c.WindSpeeds[0]
		}
	}
	return c.WindSpeeds[len(c.WindSpeeds)-1]
}
