package source

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/mfroelund/json2tab/internal/attrs"
	"github.com/mfroelund/json2tab/internal/model"
)

var (
	idKeys        = []string{"id", "ID", "GSRN", "Turbine identifier (GSRN)", "Verk-ID"}
	turbineIDKeys = []string{"turbine_id", "turbine_nr", "nr_turbine", "turbine id", "Turbine identifier (GSRN)"}
	nameKeys      = []string{"name", "Name", "naam", "Turbine", "WFNAME", "nr_turbine", "Location"}
	altNameKeys   = []string{"2nd name", "alt_name", "alt name"}

	latitudeKeys  = []string{"latitude", "lat", "Latitude", "N"}
	longitudeKeys = []string{"longitude", "lon", "Longitude", "E"}

	manufacturerKeys = []string{"manufacturer", "Manufacturer", "Manufacture", "Fabrikat"}
	typeKeys         = []string{
		"type", "wt_type", "WTYPE", "turbine_type", "model",
		"Type designation", "Model wind turbine", "Modell", "Turbine",
	}
	// Synthetic wf101 codes are used only when no real type exists.
	wf101TypeKeys = []string{"wf101_type"}

	offshoreKeys     = []string{"is_offshore", "ondergrond", "Type of location", "Placering"}
	countryKeys      = []string{"country", "Country", "land"}
	heightOffsetKeys = []string{"height_offset", "Markhöjd (m)"}
)

// rowToRecord standardizes one raw source row. The full row is retained in
// Extra so downstream alias lookups can still reach source-specific columns.
func rowToRecord(row map[string]any, sourceName string) *model.TurbineRecord {
	rec := &model.TurbineRecord{
		Extra:        row,
		MatchedIndex: model.NoMatchIndex,
	}

	rec.ID = stringValue(idKeys, row)
	if rec.ID == "" {
		rec.ID = stringValue(turbineIDKeys, row)
	}
	rec.Name = mergeNames(stringValue(nameKeys, row), stringValue(altNameKeys, row))

	rec.Latitude, rec.Longitude = position(row)

	rec.Manufacturer = stringValue(manufacturerKeys, row)
	rec.Type = stringValue(typeKeys, row)
	if rec.Type == "" {
		rec.Type = stringValue(wf101TypeKeys, row)
	}

	rec.Radius = attrs.Radius(row)
	rec.Diameter = 2 * rec.Radius
	rec.HubHeight = attrs.Height(row)
	rec.PowerRating = attrs.RatedPowerKW(row)
	rec.HeightOffset, _ = attrs.Float(heightOffsetKeys, row, false)

	rec.Country = stringValue(countryKeys, row)
	rec.IsOffshore = offshoreFlag(attrs.Value(offshoreKeys, row))

	rec.Source = stringValue([]string{"source"}, row)
	if rec.Source == "" {
		rec.Source = sourceName
	}

	return rec
}

// position reads the coordinates, preferring an embedded WKT point geometry
// over plain latitude/longitude columns.
func position(row map[string]any) (lat, lon float64) {
	if g, ok := row["geometry"].(string); ok && g != "" {
		if parsed, err := wkt.Unmarshal(g); err == nil {
			if point, ok := parsed.(*geom.Point); ok {
				return point.Y(), point.X()
			}
		}
	}
	lat, _ = attrs.Float(latitudeKeys, row, false)
	lon, _ = attrs.Float(longitudeKeys, row, false)
	return lat, lon
}

// mergeNames combines a primary and alternative turbine name. An alternative
// that extends the primary replaces it, otherwise it is appended in
// parentheses.
func mergeNames(name, altName string) string {
	if altName == "" {
		return name
	}
	if name == "" || strings.HasPrefix(strings.ToLower(altName), strings.ToLower(name)) {
		return altName
	}
	return name + " (" + altName + ")"
}

// offshoreFlag interprets the many spellings of "this turbine stands in the
// water" across the source datasets.
func offshoreFlag(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		switch strings.ToLower(value) {
		case "zee", "hav", "vatten":
			return true
		case "land":
			return false
		}
	}
	return cast.ToBool(v)
}

func stringValue(keys []string, row map[string]any) string {
	v := attrs.Value(keys, row)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}
