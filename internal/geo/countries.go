// Package geo classifies turbine coordinates against country border data:
// which country a point belongs to, and whether it is offshore (inside an
// exclusive economic zone but outside any land border).
package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geomgeojson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

var (
	fullNameFields = []string{"name", "UNION", "NAM_0"}
	iso3Fields     = []string{"ISO3166-1-Alpha-3", "ISO_TER1", "ISO_A3"}

	// Placeholder country values some datasets carry.
	invalidCountryValues = map[string]bool{"N/A": true, "NA": true, "": true, "-99": true}
)

type countryShape struct {
	name     string
	polygons []*geom.Polygon
}

// CountryIndex answers point-in-country queries over a loaded border
// dataset. Countries are checked in file order; the first containing shape
// wins.
type CountryIndex struct {
	shapes []countryShape
}

// LoadCountries loads a border dataset from a GeoJSON file or a shapefile.
// With preferISO3 the ISO-3166 alpha-3 attribute is preferred over the plain
// country name.
func LoadCountries(path string, preferISO3 bool) (*CountryIndex, error) {
	nameFields := append(append([]string{}, fullNameFields...), iso3Fields...)
	if preferISO3 {
		nameFields = append(append([]string{}, iso3Fields...), fullNameFields...)
	}

	var (
		index *CountryIndex
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".geojson":
		index, err = loadCountriesGeoJSON(path, nameFields)
	case ".shp":
		index, err = loadCountriesShapefile(path, nameFields)
	default:
		return nil, eris.Errorf("geo: unsupported border file %s", path)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("loaded country borders",
		zap.String("file", path), zap.Int("countries", len(index.shapes)))
	return index, nil
}

// Country returns the containing country, or "" when the point is outside
// every loaded border.
func (c *CountryIndex) Country(lat, lon float64) string {
	point := geom.Coord{lon, lat}
	for _, shape := range c.shapes {
		for _, polygon := range shape.polygons {
			if polygonContains(polygon, point) {
				return shape.name
			}
		}
	}
	return ""
}

// polygonContains reports whether the point lies inside the polygon's outer
// ring and outside its holes.
func polygonContains(polygon *geom.Polygon, point geom.Coord) bool {
	if polygon.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(polygon.Layout(), point, polygon.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < polygon.NumLinearRings(); i++ {
		if xy.IsPointInRing(polygon.Layout(), point, polygon.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

func (c *CountryIndex) add(name string, g geom.T) {
	var polygons []*geom.Polygon
	switch shape := g.(type) {
	case *geom.Polygon:
		polygons = []*geom.Polygon{shape}
	case *geom.MultiPolygon:
		for i := 0; i < shape.NumPolygons(); i++ {
			polygons = append(polygons, shape.Polygon(i))
		}
	default:
		return
	}

	for i := range c.shapes {
		if c.shapes[i].name == name {
			c.shapes[i].polygons = append(c.shapes[i].polygons, polygons...)
			return
		}
	}
	c.shapes = append(c.shapes, countryShape{name: name, polygons: polygons})
}

func loadCountriesGeoJSON(path string, nameFields []string) (*CountryIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read borders %s", path)
	}

	var doc struct {
		Features []struct {
			Properties map[string]any  `json:"properties"`
			Geometry   json.RawMessage `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "geo: parse borders %s", path)
	}

	index := &CountryIndex{}
	for _, feature := range doc.Features {
		name := countryName(nameFields, feature.Properties)
		if name == "" {
			continue
		}
		var g geom.T
		if err := geomgeojson.Unmarshal(feature.Geometry, &g); err != nil {
			return nil, eris.Wrapf(err, "geo: parse geometry for %s in %s", name, path)
		}
		index.add(name, g)
	}
	return index, nil
}

func loadCountriesShapefile(path string, nameFields []string) (*CountryIndex, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer reader.Close()

	fields := reader.Fields()

	index := &CountryIndex{}
	for reader.Next() {
		row, shape := reader.Shape()

		properties := make(map[string]any, len(fields))
		for i, field := range fields {
			properties[field.String()] = reader.ReadAttribute(row, i)
		}
		name := countryName(nameFields, properties)
		if name == "" {
			continue
		}

		polygon, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		index.add(name, shpPolygonToGeom(polygon))
	}
	return index, nil
}

// shpPolygonToGeom converts a shapefile polygon. Each part becomes its own
// outer ring; hole detection by ring orientation is not needed for
// country-level containment tests.
func shpPolygonToGeom(polygon *shp.Polygon) geom.T {
	multi := geom.NewMultiPolygon(geom.XY)
	for part := 0; part < len(polygon.Parts); part++ {
		start := int(polygon.Parts[part])
		end := len(polygon.Points)
		if part+1 < len(polygon.Parts) {
			end = int(polygon.Parts[part+1])
		}

		coords := make([]geom.Coord, 0, end-start)
		for _, p := range polygon.Points[start:end] {
			coords = append(coords, geom.Coord{p.X, p.Y})
		}

		ring := geom.NewLinearRing(geom.XY)
		if _, err := ring.SetCoords(coords); err != nil {
			continue
		}
		single := geom.NewPolygon(geom.XY)
		if err := single.Push(ring); err != nil {
			continue
		}
		_ = multi.Push(single)
	}
	return multi
}

// countryName picks the first usable name attribute.
func countryName(nameFields []string, properties map[string]any) string {
	for _, field := range nameFields {
		v, ok := properties[field]
		if !ok || v == nil {
			continue
		}
		name, _ := v.(string)
		name = strings.TrimSpace(name)
		if !invalidCountryValues[name] {
			return name
		}
	}
	return ""
}
