package heuristic

import (
	"crypto/md5"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// commonModels is the pool of widespread European turbine models the
// probabilistic mapper distributes unresolvable type IDs over.
var commonModels = []string{
	// Vestas, common throughout Europe.
	"V52", "V80", "V90", "V100", "V112", "V117", "V126", "V136", "V150",
	// Enercon, very common in Germany.
	"E40", "E48", "E70", "E82", "E92", "E101", "E115", "E126", "E138",
	// Siemens / Siemens-Gamesa.
	"SWT-107", "SWT-120", "SWT-130", "SWT-154", "SG-114", "SG-132", "SG-145",
	// Nordex.
	"N90", "N100", "N117", "N131", "N149", "N155",
	// REpower / Senvion.
	"MM82", "MM92", "MM100", "Senvion-3M", "Senvion-5M", "Senvion-6M",
	// GE.
	"GE-1.5", "GE-2.5", "GE-3.8", "GE-4.8",
	// Older models for older IDs.
	"Tacke", "NEG-Micon", "Bonus", "AN-Bonus", "Nordtank",
}

var offshoreModels = []string{"V164", "V174", "SWT-154", "SG-D8", "Senvion-6M", "Siemens-D7"}

// MapProbabilistic maps an unresolvable turbine type ID to a common model
// using a deterministic hash over the type and a coarse location, biased by
// the diameter encoded in numeric IDs and by regional manufacturer presence.
// diameter may be 0 when unknown.
func MapProbabilistic(turbineType string, lat, lon, diameter float64) string {
	// Round the location to 0.1 degree so nearby turbines of the same type
	// land on the same model.
	hashInput := fmt.Sprintf("%s_%.1f_%.1f", turbineType, lat, lon)
	sum := md5.Sum([]byte(hashInput))
	hashValue := new(big.Int).SetBytes(sum[:])

	baseModel := commonModels[hashIndex(hashValue, len(commonModels))]

	// A 4 or 5 digit ID often encodes the rotor diameter in its leading
	// digits.
	if len(turbineType) == 4 || len(turbineType) == 5 {
		if firstPart, err := strconv.Atoi(turbineType[:len(turbineType)-2]); err == nil {
			if 40 <= firstPart && firstPart <= 150 {
				diameter = float64(firstPart)
			}
		}
	}

	if diameter > 0 {
		for _, tol := range []float64{0, 1, 3, 5, 15} {
			var diameterModels []string
			for _, m := range commonModels {
				d := modelDiameter(m)
				if d > 0 && abs(float64(d)-diameter) <= tol {
					diameterModels = append(diameterModels, m)
				}
			}
			if len(diameterModels) > 0 {
				picked := diameterModels[hashIndex(hashValue, len(diameterModels))]
				zap.L().Debug("hash-based model from diameter",
					zap.Float64("diameter", diameter), zap.String("model", picked))
				return picked
			}
		}
	}

	// Regional preferences: different manufacturers dominate different
	// parts of Europe.
	isNorthern := lat > 52 && 0 < lon && lon < 20
	isCentral := 47 < lat && lat < 52 && 5 < lon && lon < 20
	isWestern := 47 < lat && lat < 52 && -5 < lon && lon < 5
	isUKIreland := 50 < lat && lat < 60 && -10 < lon && lon < 2
	isSouthern := 36 < lat && lat < 47 && -10 < lon && lon < 20

	var regionalModels []string
	switch {
	case probablyOffshore(lat, lon):
		// Weight heavily toward offshore models, with a few large onshore
		// models used nearshore.
		regionalModels = repeat(offshoreModels, 3)
		regionalModels = append(regionalModels, "V150", "E126", "SWT-130", "N149")
	case isNorthern:
		regionalModels = repeat([]string{"V90", "V100", "V112", "V117", "V126", "V136"}, 2)
		regionalModels = append(regionalModels, "N131", "N149", "E101", "E115", "E126")
	case isCentral:
		regionalModels = repeat([]string{"E82", "E101", "E115", "E126", "E138"}, 2)
		regionalModels = append(regionalModels, "V90", "V112", "N131", "SG-132")
	case isWestern:
		regionalModels = repeat([]string{"V90", "V100", "V112"}, 2)
		regionalModels = append(regionalModels, "GE-1.5", "GE-2.5", "E82", "E101", "MM100")
	case isUKIreland:
		regionalModels = repeat([]string{"V80", "V90", "V100", "V112"}, 2)
		regionalModels = append(regionalModels, "SWT-107", "SWT-120", "E82", "N90")
	case isSouthern:
		regionalModels = []string{"V90", "G58", "G80", "GE-1.5", "MM82", "SG-114", "V100", "E82"}
	default:
		zap.L().Debug("no regional match", zap.String("model", baseModel))
		return baseModel
	}

	picked := regionalModels[hashIndex(hashValue, len(regionalModels))]
	zap.L().Debug("hash-based model from region", zap.String("model", picked))
	return picked
}

// probablyOffshore flags locations inside the coarse North Sea, Baltic and
// Mediterranean boxes used for offshore-weighted model selection.
func probablyOffshore(lat, lon float64) bool {
	boxes := []struct{ minLon, maxLon, minLat, maxLat float64 }{
		{-5, 12, 51, 60},  // North Sea
		{10, 30, 54, 66},  // Baltic Sea
		{0, 20, 36, 45},   // Mediterranean
	}
	for _, b := range boxes {
		if b.minLon <= lon && lon <= b.maxLon && b.minLat <= lat && lat <= b.maxLat &&
			((lon > 3 && lat > 53) || (lon > 12 && lat > 54) || (lon > 0 && lat < 43)) {
			return true
		}
	}
	return false
}

// modelDiameter extracts the rotor diameter a model name encodes, or 0.
func modelDiameter(model string) int {
	if len(model) > 1 && (model[0] == 'V' || model[0] == 'E' || model[0] == 'N') {
		if d, err := strconv.Atoi(model[1:]); err == nil {
			return d
		}
	}
	if strings.Contains(model, "SWT-") || strings.Contains(model, "SG-") {
		parts := strings.Split(model, "-")
		if d, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			return d
		}
	}
	return 0
}

func hashIndex(hash *big.Int, n int) int {
	return int(new(big.Int).Mod(hash, big.NewInt(int64(n))).Int64())
}

func repeat(models []string, times int) []string {
	out := make([]string, 0, len(models)*times)
	for i := 0; i < times; i++ {
		out = append(out, models...)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
