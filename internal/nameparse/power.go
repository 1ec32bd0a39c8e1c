package nameparse

import "strings"

// PowerToKW normalizes a turbine power figure to kW. knownUnit may be "kW",
// "MW", "W" or empty; when empty the unit is guessed from the value and the
// rotor diameter (diameter <= 0 means unknown). Large rotors with small power
// figures are assumed to be rated in MW; values above 1e6 are watts. The
// final guess treats anything under 20 as MW since no single turbine reaches
// 20 MW while plenty sit below 20 kW on paper only by unit confusion.
func PowerToKW(power float64, knownUnit string, diameter float64) float64 {
	if knownUnit == "" && diameter > 0 {
		if diameter >= 35 && power < 1 {
			knownUnit = "MW"
		} else if power < 450 {
			if diameter >= 60 {
				knownUnit = "MW"
			} else {
				knownUnit = "kW"
			}
		}
	}

	if knownUnit == "" {
		if power > 1e6 {
			knownUnit = "W"
		} else if power > 1e3 {
			knownUnit = "kW"
		}
	}

	switch strings.ToUpper(knownUnit) {
	case "KW":
		return power
	case "MW":
		return power * 1000
	case "W":
		return power / 1000
	}

	if power > 0 && power < 20 {
		return power * 1000
	}

	return power
}
