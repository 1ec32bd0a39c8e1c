package source

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geomgeojson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// readGeoJSON reads a GeoJSON or Overpass JSON dump. Elements live under
// "elements" (Overpass) or "features" (GeoJSON); as a last resort any
// two-key document with a "type" member is treated as {type, <elements>}.
func readGeoJSON(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read geojson %s", path)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "source: parse geojson %s", path)
	}

	var elements []json.RawMessage
	for _, key := range []string{"elements", "features"} {
		if v, ok := doc[key]; ok {
			if err := json.Unmarshal(v, &elements); err != nil {
				return nil, eris.Wrapf(err, "source: parse geojson %s key %s", path, key)
			}
			zap.L().Debug("reading geojson elements", zap.String("key", key))
			break
		}
	}
	if len(elements) == 0 && len(doc) == 2 {
		if _, ok := doc["type"]; ok {
			for key, v := range doc {
				if key == "type" {
					continue
				}
				if err := json.Unmarshal(v, &elements); err != nil {
					return nil, eris.Wrapf(err, "source: parse geojson %s key %s", path, key)
				}
				zap.L().Debug("reading geojson elements", zap.String("key", key))
			}
		}
	}

	rows := make([]map[string]any, 0, len(elements))
	for _, raw := range elements {
		var element map[string]json.RawMessage
		if err := json.Unmarshal(raw, &element); err != nil {
			return nil, eris.Wrapf(err, "source: parse geojson element in %s", path)
		}

		row := make(map[string]any)
		propsRaw, hasProps := element["properties"]
		if hasProps {
			if err := json.Unmarshal(propsRaw, &row); err != nil {
				return nil, eris.Wrapf(err, "source: parse geojson properties in %s", path)
			}
		} else if err := json.Unmarshal(raw, &row); err != nil {
			return nil, eris.Wrapf(err, "source: parse geojson element in %s", path)
		}

		if geometryRaw, ok := element["geometry"]; ok {
			addPointGeometry(row, geometryRaw)
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// addPointGeometry backfills latitude/longitude from a GeoJSON point
// geometry, without overriding explicit coordinate columns.
func addPointGeometry(row map[string]any, geometryRaw json.RawMessage) {
	var g geom.T
	if err := geomgeojson.Unmarshal(geometryRaw, &g); err != nil {
		return
	}
	point, ok := g.(*geom.Point)
	if !ok {
		return
	}
	if _, ok := row["latitude"]; !ok {
		row["latitude"] = point.Y()
	}
	if _, ok := row["longitude"]; !ok {
		row["longitude"] = point.X()
	}
}
