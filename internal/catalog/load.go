package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/attrs"
	"github.com/mfroelund/json2tab/internal/model"
	"github.com/mfroelund/json2tab/internal/nameparse"
)

// Load reads one or more turbine type spec files into a catalog. Files ending
// in .json use the keyed JSON layout, everything else is treated as CSV. When
// several files are given, missing files are skipped with an error log; when
// all of them (or a single given file) are missing, loading fails.
func Load(paths ...string) (*Catalog, error) {
	c := &Catalog{}
	loaded := 0

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if len(paths) == 1 {
				return nil, eris.Wrapf(err, "catalog: specs file %q not found", path)
			}
			zap.L().Error("specs file not found, skipping", zap.String("path", path))
			continue
		}

		entries, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		zap.L().Info("loaded turbine specifications",
			zap.String("path", path), zap.Int("count", len(entries)))
		c.entries = append(c.entries, entries...)
		loaded++
	}

	if loaded == 0 {
		return nil, eris.Errorf("catalog: none of the specs files %v found", paths)
	}

	for i := range c.entries {
		computeDesignation(&c.entries[i])
	}
	c.refilter()
	c.dumpDebug()

	return c, nil
}

func loadFile(path string) ([]model.CatalogEntry, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadJSON(path)
	}
	return loadCSV(path)
}

// loadJSON reads the keyed JSON spec layout: an object mapping type codes to
// spec objects. Decoding walks the token stream so that entries keep their
// file order; the resulting line indexes must be stable across runs.
func loadJSON(path string) ([]model.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open %q", path)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if _, err := dec.Token(); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %q", path)
	}

	var entries []model.CatalogEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: parse %q", path)
		}
		typeCode, _ := tok.(string)

		var data map[string]any
		if err := dec.Decode(&data); err != nil {
			return nil, eris.Wrapf(err, "catalog: parse spec %q in %q", typeCode, path)
		}
		entries = append(entries, jsonEntry(typeCode, data, path))
	}

	return entries, nil
}

func jsonEntry(typeCode string, data map[string]any, path string) model.CatalogEntry {
	e := model.CatalogEntry{
		TypeCode:   typeCode,
		TypeID:     cast.ToInt(data["type_id"]),
		SourceFile: path,
	}
	e.TurbineModel = cast.ToString(data["turbine_model"])
	e.Diameter = attrs.Diameter(data)
	e.RatedPower = attrs.RatedPowerKW(data)
	e.Height = attrs.Height(data)

	parsed := nameparse.Parse(e.TurbineModel)
	e.Manufacturer = parsed.Manufacturer
	if e.Diameter == 0 {
		e.Diameter = parsed.Diameter
	}
	if e.RatedPower == 0 {
		e.RatedPower = parsed.Power
	}
	if e.Manufacturer == "" {
		e.Manufacturer = firstWord(e.TurbineModel)
	}

	// Some sources put the radius in the diameter field.
	if radius := attrs.Radius(data); e.Diameter < radius {
		e.Diameter = 2 * radius
		zap.L().Debug("corrected diameter from radius", zap.String("type_code", typeCode))
	}

	e.IsOffshore = strings.Contains(strings.ToUpper(e.TurbineModel), "OFFSHORE")

	addParams := cast.ToStringMap(data["additional_params"])
	e.Radius = e.Diameter / 2
	if v, ok := addParams["radius (m)"]; ok {
		e.Radius = cast.ToFloat64(v)
	}
	e.ZHeight = e.Height
	if v, ok := addParams["z_height (m)"]; ok {
		e.ZHeight = cast.ToFloat64(v)
	}
	e.CtLow = cast.ToFloat64(addParams["cT_low (-)"])
	e.CtHigh = cast.ToFloat64(addParams["cT_high (-)"])

	e.WindSpeeds = floatList(data["wind_speeds"])
	e.Cp = floatList(data["cp"])
	e.Ct = floatList(data["ct"])
	e.CpGen = floatList(data["cps_gen"])
	e.CtGen = floatList(data["ct_gen"])
	e.PowerCurveGen = floatList(data["powerc_gen"])
	e.IsManufacturerData = cast.ToBool(data["is_manufacturer_data"])

	return e
}

// csvSpec mirrors the columns of the CSV spec layout, including the legacy
// column names that get renamed on load.
type csvSpec struct {
	TypeCode         string  `csv:"type_code"`
	TurbineID        string  `csv:"turbine_id"`
	TypeID           string  `csv:"type_id"`
	TurbineModel     string  `csv:"turbine_model"`
	OriginalName     string  `csv:"original_name"`
	ModelDesignation string  `csv:"model_designation"`
	Manufacturer     string  `csv:"manufacturer"`
	Diameter         float64 `csv:"diameter"`
	Radius           float64 `csv:"radius"`
	Height           float64 `csv:"height"`
	ZHeight          float64 `csv:"z_height"`
	Power            float64 `csv:"power"`
	RatedPower       float64 `csv:"rated_power"`
	IsOffshore       string  `csv:"is_offshore"`
	CtLow            float64 `csv:"ct_low"`
	CtHigh           float64 `csv:"ct_high"`
}

func loadCSV(path string) ([]model.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open %q", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read header of %q", path)
	}

	var entries []model.CatalogEntry
	for {
		var row csvSpec
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "catalog: parse %q", path)
		}
		entries = append(entries, csvEntry(row, path))
	}

	return entries, nil
}

func csvEntry(row csvSpec, path string) model.CatalogEntry {
	e := model.CatalogEntry{
		TypeCode:         row.TypeCode,
		TurbineModel:     row.TurbineModel,
		ModelDesignation: row.ModelDesignation,
		Manufacturer:     row.Manufacturer,
		Diameter:         row.Diameter,
		Radius:           row.Radius,
		Height:           row.Height,
		ZHeight:          row.ZHeight,
		RatedPower:       row.RatedPower,
		CtLow:            row.CtLow,
		CtHigh:           row.CtHigh,
		IsOffshore:       strings.EqualFold(row.IsOffshore, "yes"),
		SourceFile:       path,
	}

	// Legacy column names.
	if e.TypeCode == "" {
		e.TypeCode = row.TurbineID
	}
	if e.TurbineModel == "" {
		e.TurbineModel = row.OriginalName
	}
	if e.RatedPower == 0 {
		e.RatedPower = row.Power
	}

	if id, err := strconv.ParseFloat(row.TypeID, 64); err == nil {
		e.TypeID = int(id)
	}

	e.RatedPower = nameparse.PowerToKW(e.RatedPower, "", e.Diameter)
	if e.Radius == 0 {
		e.Radius = e.Diameter / 2
	}
	if e.ZHeight == 0 {
		e.ZHeight = e.Height
	}

	return e
}

func floatList(v any) []float64 {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, item := range raw {
		f, err := cast.ToFloat64E(item)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
