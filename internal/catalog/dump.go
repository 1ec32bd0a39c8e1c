package catalog

import (
	"encoding/csv"
	"os"

	"github.com/jszwec/csvutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mfroelund/json2tab/internal/model"
)

// specDump is the flat row layout of the debug spec dumps; the curve arrays
// are left out to keep the files readable.
type specDump struct {
	LineIndex           int     `csv:"line_index"`
	TypeCode            string  `csv:"type_code"`
	TypeID              int     `csv:"type_id"`
	TurbineModel        string  `csv:"turbine_model"`
	ModelDesignation    string  `csv:"model_designation"`
	Manufacturer        string  `csv:"manufacturer"`
	Diameter            float64 `csv:"diameter"`
	Radius              float64 `csv:"radius"`
	Height              float64 `csv:"height"`
	ZHeight             float64 `csv:"z_height"`
	RatedPower          float64 `csv:"rated_power"`
	IsOffshore          bool    `csv:"is_offshore"`
	IsKnownManufacturer bool    `csv:"is_known_manufacturer"`
	WindSpeedsLen       int     `csv:"wind_speeds_length"`
}

// dumpDebug writes the full and filtered spec tables to CSV files in the
// working directory when debug logging is on.
func (c *Catalog) dumpDebug() {
	if !zap.L().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	c.dump("specsdump.csv", c.Indexes(false))
	c.dump("specsdump-filtered.csv", c.filtered)
}

func (c *Catalog) dump(path string, indexes []int) {
	f, err := os.Create(path)
	if err != nil {
		zap.L().Debug("cannot write specs dump", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	for _, idx := range indexes {
		if err := enc.Encode(dumpRow(idx, &c.entries[idx])); err != nil {
			zap.L().Debug("specs dump aborted", zap.String("path", path), zap.Error(err))
			return
		}
	}
	w.Flush()
	zap.L().Debug("dumped specs table", zap.String("path", path), zap.Int("rows", len(indexes)))
}

func dumpRow(lineIndex int, e *model.CatalogEntry) specDump {
	return specDump{
		LineIndex:           lineIndex,
		TypeCode:            e.TypeCode,
		TypeID:              e.TypeID,
		TurbineModel:        e.TurbineModel,
		ModelDesignation:    e.ModelDesignation,
		Manufacturer:        e.Manufacturer,
		Diameter:            e.Diameter,
		Radius:              e.Radius,
		Height:              e.Height,
		ZHeight:             e.ZHeight,
		RatedPower:          e.RatedPower,
		IsOffshore:          e.IsOffshore,
		IsKnownManufacturer: e.IsKnownManufacturer,
		WindSpeedsLen:       e.WindSpeedsLen,
	}
}
