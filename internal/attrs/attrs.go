// Package attrs reads physical turbine attributes out of loosely typed
// property maps. Source datasets label the same quantity under many different
// column names; every getter walks a fixed alias list in priority order and
// returns the first usable value.
package attrs

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/mfroelund/json2tab/internal/nameparse"
)

var radiusKeys = []string{"radius", "radius (m)"}

var diameterKeys = []string{
	"diameter",
	"diameter (m)",
	"rotor_diameter",
	"rotor diameter",
	"rotor diameter (m)",
	"Rotor diameter (m)",
	"Rotordiameter (m)",
	"diam",
}

var heightKeys = []string{
	"hubheight",
	"hub_height",
	"hub height",
	"Hub height",
	"hub height (m)",
	"Hub height (m)",
	"height",
	"z_height (m)",
	"z_height",
	"ash",
	"hoogte_paa",
	"Navhöjd (m)",
}

var powerKeys = []string{
	"rated_power",
	"rated_power_kw",
	"rated_power_mw",
	"rated power",
	"Rated power",
	"power_rating",
	"power_rating_kw",
	"power_rating_mw",
	"power",
	"kw",
	"power_kw",
	"power_mw",
	"vermogen_m",
	"P_rated",
	"nominal_power",
	"nominal power",
	"nominal power (kW)",
	"capacity",
	"Capacity (kW)",
	"Capacity",
	"Maxeffekt (MW)",
}

// Value returns the first non-empty value of data[key] over the given keys,
// or nil.
func Value(keys []string, data map[string]any) any {
	for _, key := range keys {
		v, ok := data[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && (s == "" || s == "NaN") {
			continue
		}
		return v
	}
	return nil
}

// Float returns the first value over the given keys that coerces to a float,
// together with the key it was found under. When requirePositive is set,
// non-positive values are skipped.
func Float(keys []string, data map[string]any, requirePositive bool) (float64, string) {
	for _, key := range keys {
		v, ok := data[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && (s == "" || s == "NaN") {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		if !requirePositive || f > 0 {
			return f, key
		}
	}
	return 0, ""
}

// FloatFrom returns the first positive float over keys across the sources in
// order, with the key it was found under.
func FloatFrom(keys []string, sources []map[string]any, requirePositive bool) (float64, string) {
	for _, data := range sources {
		if v, key := Float(keys, data, requirePositive); v > 0 {
			return v, key
		}
	}
	return 0, ""
}

// Radius returns the rotor radius, falling back to half the diameter.
// Multiple sources are consulted in order; within one source radius aliases
// take precedence over diameter aliases.
func Radius(sources ...map[string]any) float64 {
	for _, data := range sources {
		if r := radiusFrom(data); r > 0 {
			return r
		}
	}
	return 0
}

func radiusFrom(data map[string]any) float64 {
	if r, _ := Float(radiusKeys, data, true); r > 0 {
		return r
	}
	if d, _ := Float(diameterKeys, data, true); d > 0 {
		return d / 2
	}
	return 0
}

// Diameter returns the rotor diameter, falling back to twice the radius.
func Diameter(sources ...map[string]any) float64 {
	return 2 * Radius(sources...)
}

// Height returns the hub height.
func Height(sources ...map[string]any) float64 {
	for _, data := range sources {
		if h, _ := Float(heightKeys, data, true); h > 0 {
			return h
		}
	}
	return 0
}

// RatedPowerKW returns the rated power normalized to kW. The matched alias
// name decides the unit when it carries one ("_mw", "(MW)"); otherwise the
// unit is guessed from the value and rotor diameter.
func RatedPowerKW(sources ...map[string]any) float64 {
	power, key := FloatFrom(powerKeys, sources, true)
	if power <= 0 {
		return 0
	}
	unit := ""
	upper := strings.ToUpper(key)
	if strings.Contains(upper, "MW") {
		unit = "MW"
	} else if strings.Contains(upper, "KW") {
		unit = "kW"
	}
	return nameparse.PowerToKW(power, unit, Diameter(sources...))
}
