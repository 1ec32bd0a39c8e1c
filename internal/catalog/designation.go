package catalog

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mfroelund/json2tab/internal/model"
	"github.com/mfroelund/json2tab/internal/nameparse"
)

var titleCaser = cases.Title(language.Und)

// computeDesignation fills in the model designation, manufacturer flag and
// the precomputed length fields of an entry. A designation already present
// (CSV sources carry one) is kept as-is.
func computeDesignation(e *model.CatalogEntry) {
	defer func() {
		e.WindSpeedsLen = len(e.WindSpeeds)
		e.DesignationLen = len(e.ModelDesignation)
	}()

	if e.ModelDesignation != "" {
		return
	}

	var parsed nameparse.Parsed
	if e.TurbineModel != "" {
		parsed = nameparse.Parse(e.TurbineModel)
		e.ModelDesignation = parsed.ModelDesignation
		e.IsKnownManufacturer = parsed.IsKnownManufacturer
	}

	// A synthesized designation can beat the parsed one when the row data is
	// richer than the free-text name.
	manufacturer := e.Manufacturer
	if len(parsed.Manufacturer) > len(manufacturer) {
		manufacturer = parsed.Manufacturer
	}

	if manufacturer == "" || e.Diameter == 0 || e.RatedPower == 0 {
		return
	}

	generated := nameparse.Build(titleCaser.String(manufacturer), e.Diameter, e.RatedPower)
	if generated == "" {
		return
	}

	if e.TurbineModel == "" {
		e.ModelDesignation = generated
		return
	}

	reparsed := nameparse.Parse(generated)
	if missingFields(reparsed) < missingFields(parsed) &&
		parsed.ManufacturerPattern.String() == reparsed.ManufacturerPattern.String() &&
		len(generated) > len(e.ModelDesignation) {
		e.ModelDesignation = generated
	}
}

func missingFields(p nameparse.Parsed) int {
	missing := 0
	if p.Manufacturer == "" {
		missing++
	}
	if p.Diameter == 0 {
		missing++
	}
	if p.Power == 0 {
		missing++
	}
	return missing
}
