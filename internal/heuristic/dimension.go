// Package heuristic guesses turbine models for records that cannot be
// resolved through the reference catalog: from rotor dimensions, from a
// deterministic hash over type and location, or from regional defaults.
package heuristic

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// minDimensionConfidence is the score a dimension-based guess must reach
// before it is trusted.
const minDimensionConfidence = 8

type dimensionMatch struct {
	model      string
	confidence int
	reason     string
}

// expectedHeight and expectedPower hold the typical hub height (m) and rated
// power (MW) per guessable model, used to refine match confidence.
var expectedHeight = map[string]float64{
	"V90": 80.0, "V100": 95.0, "V112": 94.0, "V117": 91.5, "V126": 116.5, "V164": 106.0,
	"E82": 78.0, "E101": 99.0, "E115": 122.0, "E126": 135.0, "E138": 131.0,
	"SWT-107": 90.0, "SWT-120": 90.0, "SWT-154": 110.0,
	"N131": 114.0,
}

var expectedPower = map[string]float64{
	"V90": 3.0, "V100": 2.6, "V112": 3.45, "V117": 4.2, "V126": 3.45, "V164": 8.0,
	"E82": 2.0, "E101": 3.05, "E115": 3.2, "E126": 4.2, "E138": 4.2,
	"SWT-107": 3.6, "SWT-120": 3.6, "SWT-154": 6.0,
	"N131": 3.6,
}

// dimensionMatches maps a rotor diameter onto the well-known models whose
// diameter band contains it, one candidate per manufacturer family.
func dimensionMatches(diameter float64) []dimensionMatch {
	var matches []dimensionMatch

	switch {
	case 88 <= diameter && diameter <= 92:
		matches = append(matches, dimensionMatch{"V90", 10, "90m diameter (V90)"})
	case 98 <= diameter && diameter <= 102:
		matches = append(matches, dimensionMatch{"V100", 10, "100m diameter (V100)"})
	case 110 <= diameter && diameter <= 114:
		matches = append(matches, dimensionMatch{"V112", 10, "112m diameter (V112)"})
	case 116 <= diameter && diameter <= 120:
		matches = append(matches, dimensionMatch{"V117", 10, "117-120m diameter (V117)"})
	case 124 <= diameter && diameter <= 128:
		matches = append(matches, dimensionMatch{"V126", 10, "126m diameter (V126)"})
	case 160 <= diameter && diameter <= 168:
		matches = append(matches, dimensionMatch{"V164", 10, "164m diameter (V164)"})
	}

	switch {
	case 81 <= diameter && diameter <= 83:
		matches = append(matches, dimensionMatch{"E82", 10, "82m diameter (E82)"})
	case 99 <= diameter && diameter <= 103:
		matches = append(matches, dimensionMatch{"E101", 10, "101m diameter (E101)"})
	case 114 <= diameter && diameter <= 118:
		matches = append(matches, dimensionMatch{"E115", 10, "115m diameter (E115)"})
	case 125 <= diameter && diameter <= 130:
		matches = append(matches, dimensionMatch{"E126", 10, "126-130m diameter (E126)"})
	case 135 <= diameter && diameter <= 142:
		matches = append(matches, dimensionMatch{"E138", 10, "138m diameter (E138)"})
	}

	switch {
	case 106 <= diameter && diameter <= 110:
		matches = append(matches, dimensionMatch{"SWT-107", 10, "107m diameter (SWT-3.6-107)"})
	case 119 <= diameter && diameter <= 123:
		matches = append(matches, dimensionMatch{"SWT-120", 10, "120m diameter (SWT-3.6-120)"})
	case 153 <= diameter && diameter <= 157:
		matches = append(matches, dimensionMatch{"SWT-154", 10, "154m diameter (SWT-6.0-154)"})
	}

	if 130 <= diameter && diameter <= 134 {
		matches = append(matches, dimensionMatch{"N131", 10, "131m diameter (N131)"})
	}

	return matches
}

// MapDimensions guesses a model token from tower dimensions and location
// context. Power is in kW. Returns "" when no candidate reaches the
// confidence threshold.
func MapDimensions(diameter, height, powerKW float64, isOffshore bool, country string) string {
	matches := dimensionMatches(diameter)
	if len(matches) == 0 {
		return ""
	}

	if height > 0 {
		for i, m := range matches {
			expected, ok := expectedHeight[m.model]
			if !ok {
				continue
			}
			if delta, reason := heightConfidence(height, expected); reason != "" {
				matches[i].confidence += delta
				matches[i].reason += reason
			}
		}
	}

	if powerKW > 0 {
		powerMW := powerKW / 1000
		for i, m := range matches {
			expected, ok := expectedPower[m.model]
			if !ok {
				continue
			}
			if delta, reason := powerConfidence(powerMW, expected); reason != "" {
				matches[i].confidence += delta
				matches[i].reason += reason
			}
		}
	}

	for i, m := range matches {
		if isOffshore {
			switch m.model {
			case "V164", "SWT-154":
				matches[i].confidence += 5
				matches[i].reason += ", offshore location match"
			case "E101", "E82":
				matches[i].confidence -= 2
				matches[i].reason += ", uncommon offshore"
			}
		} else if m.model == "V164" || m.model == "SWT-154" {
			matches[i].confidence -= 3
			matches[i].reason += ", uncommon onshore"
		}
	}

	if country != "" {
		upper := strings.ToUpper(country)
		for i, m := range matches {
			switch {
			case enerconCountry(upper) && strings.HasPrefix(m.model, "E"):
				matches[i].confidence += 2
				matches[i].reason += ", common in " + upper
			case vestasCountry(upper) && strings.HasPrefix(m.model, "V"):
				matches[i].confidence += 2
				matches[i].reason += ", common in " + upper
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].confidence > matches[j].confidence
	})

	best := matches[0]
	if best.confidence < minDimensionConfidence {
		return ""
	}
	zap.L().Debug("dimension-based model guess",
		zap.String("model", best.model),
		zap.Int("confidence", best.confidence),
		zap.String("reason", best.reason))
	return best.model
}

func heightConfidence(height, expected float64) (int, string) {
	diff := math.Abs(height - expected)
	switch {
	case diff < 5:
		return 5, ", height match"
	case diff < 15:
		return 2, ", close height"
	case diff > 30:
		return -3, ", height mismatch"
	}
	return 0, ""
}

func powerConfidence(powerMW, expected float64) (int, string) {
	diff := math.Abs(powerMW - expected)
	switch {
	case diff < 0.3:
		return 5, ", power match"
	case diff < 0.8:
		return 2, ", close power"
	case diff > 2.0:
		return -3, ", power mismatch"
	}
	return 0, ""
}

func enerconCountry(code string) bool {
	return code == "DE" || code == "DEU" || code == "GERMANY"
}

func vestasCountry(code string) bool {
	return code == "DK" || code == "DNK" || code == "DENMARK"
}
