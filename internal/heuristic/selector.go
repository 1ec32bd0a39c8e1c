package heuristic

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RegionBounds is a rectangular region with its typical turbine models per
// terrain.
type RegionBounds struct {
	Name     string  `yaml:"name"`
	MinLon   float64 `yaml:"min_lon"`
	MaxLon   float64 `yaml:"max_lon"`
	MinLat   float64 `yaml:"min_lat"`
	MaxLat   float64 `yaml:"max_lat"`
	Onshore  string  `yaml:"onshore"`
	Offshore string  `yaml:"offshore"`
	Forested string  `yaml:"forested"`
}

func (r RegionBounds) contains(lat, lon float64) bool {
	return r.MinLon <= lon && lon <= r.MaxLon && r.MinLat <= lat && lat <= r.MaxLat
}

type boundsBox struct {
	minLon, maxLon, minLat, maxLat float64
}

func (b boundsBox) contains(lat, lon float64) bool {
	return b.minLon <= lon && lon <= b.maxLon && b.minLat <= lat && lat <= b.maxLat
}

// DefaultSelector picks a plausible default turbine model for a bare
// location, as the last resort before giving a record up as unmatched.
type DefaultSelector struct {
	regions    []RegionBounds
	subRegions []RegionBounds
	gridCells  []RegionBounds

	seaAreas      []boundsBox
	forestedAreas []boundsBox
}

// NewDefaultSelector builds a selector with the built-in European regions, a
// set of finer sub-regions, and a seeded 2x2 degree grid that covers the rest
// of the continent.
func NewDefaultSelector() *DefaultSelector {
	s := &DefaultSelector{
		regions: []RegionBounds{
			{Name: "North Sea Region", MinLon: -5, MaxLon: 10, MinLat: 51, MaxLat: 60,
				Onshore: "V90", Offshore: "V164", Forested: "V112"},
			{Name: "Baltic Region", MinLon: 10, MaxLon: 30, MinLat: 54, MaxLat: 66,
				Onshore: "N131", Offshore: "SWT-154", Forested: "N149"},
			{Name: "Central Europe", MinLon: 5, MaxLon: 15, MinLat: 47, MaxLat: 54,
				Onshore: "E101", Offshore: "Senvion-6M", Forested: "E115"},
			{Name: "Western Europe", MinLon: -10, MaxLon: 5, MinLat: 43, MaxLat: 51,
				Onshore: "V100", Offshore: "SWT-154", Forested: "V112"},
			{Name: "Iberian Peninsula", MinLon: -10, MaxLon: 5, MinLat: 36, MaxLat: 43,
				Onshore: "SG-114", Offshore: "SWT-120", Forested: "V90"},
			{Name: "Alpine Region", MinLon: 5, MaxLon: 16, MinLat: 43, MaxLat: 48,
				Onshore: "E82", Offshore: "E101", Forested: "E70"},
			{Name: "Eastern Europe", MinLon: 15, MaxLon: 30, MinLat: 45, MaxLat: 54,
				Onshore: "V90", Offshore: "V112", Forested: "N131"},
			{Name: "UK and Ireland", MinLon: -11, MaxLon: -1, MinLat: 50, MaxLat: 59,
				Onshore: "V90", Offshore: "SWT-154", Forested: "V112"},
			{Name: "Mediterranean", MinLon: 5, MaxLon: 20, MinLat: 36, MaxLat: 45,
				Onshore: "V100", Offshore: "V112", Forested: "E82"},
		},
		subRegions: []RegionBounds{
			{Name: "Scotland", MinLon: -6, MaxLon: -1.5, MinLat: 55, MaxLat: 59,
				Onshore: "V112", Offshore: "SWT-154", Forested: "V90"},
			{Name: "England", MinLon: -3, MaxLon: 2, MinLat: 50, MaxLat: 55,
				Onshore: "V90", Offshore: "V164", Forested: "E101"},
			{Name: "Ireland", MinLon: -11, MaxLon: -6, MinLat: 51, MaxLat: 56,
				Onshore: "E82", Offshore: "V112", Forested: "V90"},
			{Name: "Northern Germany", MinLon: 6, MaxLon: 14, MinLat: 52, MaxLat: 55,
				Onshore: "E101", Offshore: "Senvion-6M", Forested: "E115"},
			{Name: "Southern Germany", MinLon: 7, MaxLon: 14, MinLat: 47.5, MaxLat: 50,
				Onshore: "E82", Offshore: "N131", Forested: "E70"},
			{Name: "Northern France", MinLon: -4, MaxLon: 8, MinLat: 48, MaxLat: 51,
				Onshore: "V100", Offshore: "SWT-120", Forested: "V90"},
			{Name: "Southern France", MinLon: -4, MaxLon: 8, MinLat: 43, MaxLat: 47,
				Onshore: "V112", Offshore: "V164", Forested: "N131"},
		},
		seaAreas: []boundsBox{
			{-5, 10, 51, 60},   // North Sea
			{10, 30, 54, 66},   // Baltic Sea
			{5, 20, 36, 45},    // Mediterranean Sea
			{-10, -1, 43, 51},  // Atlantic (Western Europe)
			{-11, -1, 50, 59},  // Atlantic (UK/Ireland)
			{-10, -1, 43, 48},  // Bay of Biscay
			{12, 20, 40, 46},   // Adriatic Sea
			{28, 42, 41, 47},   // Black Sea
		},
		forestedAreas: []boundsBox{
			{10, 30, 58, 66},   // Nordic forests
			{10, 20, 50, 54},   // German/Polish forests
			{5, 16, 45, 48},    // Alpine forests
			{18, 26, 45, 50},   // Carpathian forests
			{-6, -2, 56, 59},   // Scottish highlands
			{-2, 3, 42, 43.5},  // Pyrenees
		},
	}

	// Seeded so the grid is identical on every run.
	rng := rand.New(rand.NewSource(42))
	models := []string{
		"V90", "V100", "V112", "V117", "V126",
		"E70", "E82", "E101", "E115", "E126",
		"N131", "SWT-120", "MM100", "SG-114",
	}
	offshoreChoices := []string{"V164", "SWT-154", "Senvion-6M", "V112"}
	for lon := -10; lon < 30; lon += 2 {
		for lat := 36; lat < 66; lat += 2 {
			s.gridCells = append(s.gridCells, RegionBounds{
				Name:     fmt.Sprintf("Grid_%d_%d", lon, lat),
				MinLon:   float64(lon),
				MaxLon:   float64(lon + 2),
				MinLat:   float64(lat),
				MaxLat:   float64(lat + 2),
				Onshore:  models[rng.Intn(len(models))],
				Offshore: offshoreChoices[rng.Intn(len(offshoreChoices))],
				Forested: models[rng.Intn(len(models))],
			})
		}
	}

	return s
}

type regionConfig struct {
	Regions    []RegionBounds `yaml:"regions"`
	SubRegions []RegionBounds `yaml:"sub_regions"`
}

// LoadRegions replaces the built-in regions and sub-regions with definitions
// from a YAML file. Sections absent from the file keep their built-ins.
func (s *DefaultSelector) LoadRegions(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "heuristic: read regions %s", path)
	}
	var cfg regionConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return eris.Wrapf(err, "heuristic: parse regions %s", path)
	}
	if len(cfg.Regions) > 0 {
		s.regions = cfg.Regions
	}
	if len(cfg.SubRegions) > 0 {
		s.subRegions = cfg.SubRegions
	}
	return nil
}

// Region finds the most specific region containing the coordinates:
// sub-regions first, then the main regions, then the grid. Returns nil when
// the location is outside all of them.
func (s *DefaultSelector) Region(lat, lon float64) *RegionBounds {
	for i := range s.subRegions {
		if s.subRegions[i].contains(lat, lon) {
			return &s.subRegions[i]
		}
	}
	for i := range s.regions {
		if s.regions[i].contains(lat, lon) {
			return &s.regions[i]
		}
	}
	for i := range s.gridCells {
		if s.gridCells[i].contains(lat, lon) {
			return &s.gridCells[i]
		}
	}
	return nil
}

// IsOffshore reports whether the location falls inside one of the coarse sea
// boxes.
func (s *DefaultSelector) IsOffshore(lat, lon float64) bool {
	for _, b := range s.seaAreas {
		if b.contains(lat, lon) {
			return true
		}
	}
	return false
}

func (s *DefaultSelector) isForested(lat, lon float64) bool {
	for _, b := range s.forestedAreas {
		if b.contains(lat, lon) {
			return true
		}
	}
	return false
}

// DefaultTurbine returns the default model for a location, varied by the
// coordinate decimals so neighbouring turbines don't all collapse onto one
// model.
func (s *DefaultSelector) DefaultTurbine(lat, lon float64) string {
	region := s.Region(lat, lon)
	variety := varietyFactor(lat, lon)

	if region == nil {
		switch variety {
		case 0:
			return pick(!s.IsOffshore(lat, lon), "V90", "V164")
		case 1:
			return pick(!s.IsOffshore(lat, lon), "E101", "SWT-154")
		default:
			return pick(!s.IsOffshore(lat, lon), "N131", "Senvion-6M")
		}
	}

	if s.IsOffshore(lat, lon) {
		switch variety {
		case 0:
			return region.Offshore
		case 1:
			return pick(region.Offshore != "V164", "V164", "SWT-154")
		default:
			return pick(region.Offshore != "Senvion-6M", "Senvion-6M", "V112")
		}
	}

	if s.isForested(lat, lon) {
		switch variety {
		case 0:
			return region.Forested
		case 1:
			return pick(region.Forested != "E115", "E115", "V126")
		default:
			return pick(region.Forested != "N131", "N131", "E101")
		}
	}

	switch variety {
	case 0:
		return region.Onshore
	case 1:
		return pick(region.Onshore != "V90", "V90", "E82")
	default:
		return pick(region.Onshore != "E101", "E101", "V100")
	}
}

// ExplainSelection describes which region, terrain and model apply to a
// location.
func (s *DefaultSelector) ExplainSelection(lat, lon float64) string {
	region := s.Region(lat, lon)

	out := "Location is outside defined regions"
	if region != nil {
		out = "Location is in " + region.Name
	}

	switch {
	case s.IsOffshore(lat, lon):
		out += " | Location is offshore"
	case s.isForested(lat, lon):
		out += " | Location is in forested area"
	default:
		out += " | Location is onshore (non-forested)"
	}

	return out + " | Selected default turbine type: " + s.DefaultTurbine(lat, lon)
}

// varietyFactor spreads locations over three buckets using the coordinate
// decimals. Non-integer sums fall into the last bucket.
func varietyFactor(lat, lon float64) float64 {
	latDecimal := lat - math.Trunc(lat)
	lonDecimal := lon - math.Trunc(lon)
	v := math.Mod((latDecimal+lonDecimal)*10, 3)
	if v < 0 {
		v += 3
	}
	return v
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
