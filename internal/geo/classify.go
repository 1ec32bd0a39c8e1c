package geo

import (
	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/model"
)

// Classifier resolves country and offshore status for a coordinate. The EEZ
// (exclusive economic zone) dataset extends each country's territory out to
// sea, so a point inside an EEZ but outside any land border is offshore.
type Classifier struct {
	eez  *CountryIndex
	land *CountryIndex
}

// NewClassifier builds a Classifier from an EEZ border index and an optional
// land border index. Without a land index every point is treated as onshore.
func NewClassifier(eez, land *CountryIndex) *Classifier {
	return &Classifier{eez: eez, land: land}
}

// Classify returns the country owning the coordinate and whether it lies
// offshore. Points outside every EEZ get an empty country and onshore status.
func (c *Classifier) Classify(lat, lon float64) (string, bool) {
	country := c.eez.Country(lat, lon)
	if country == "" {
		return "", false
	}
	if c.land == nil {
		return country, false
	}
	return country, c.land.Country(lat, lon) == ""
}

// Annotate fills the country and offshore fields of every record from the
// border data. Existing values are overwritten only for the enabled fields.
func (c *Classifier) Annotate(records []*model.TurbineRecord, updateCountry, updateOffshore bool) {
	if !updateCountry && !updateOffshore {
		zap.L().Warn("geo annotation requested with no fields enabled")
		return
	}

	var offshore int
	for _, rec := range records {
		country, isOffshore := c.Classify(rec.Latitude, rec.Longitude)
		if updateCountry && country != "" {
			rec.Country = country
		}
		if updateOffshore {
			rec.IsOffshore = isOffshore
		}
		if isOffshore {
			offshore++
		}
	}

	zap.L().Info("annotated records from border data",
		zap.Int("records", len(records)),
		zap.Int("offshore", offshore),
		zap.Bool("update_country", updateCountry),
		zap.Bool("update_offshore", updateOffshore))
}
