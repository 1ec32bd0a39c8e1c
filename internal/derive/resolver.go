// Package derive resolves free-text turbine type strings to catalog model
// designations. Lookups walk the catalog's identifying fields in order,
// follow cross-references between them, and fall back to enriching the type
// string with dimension data from the turbine record itself.
package derive

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/catalog"
	"github.com/mfroelund/json2tab/internal/model"
	"github.com/mfroelund/json2tab/internal/nameparse"
)

// defaultFields are the catalog fields checked, in order, when resolving a
// raw turbine type string.
var defaultFields = []string{"type_id", "type_code", "turbine_model", "model_designation"}

// Resolver finds model designations in a reference catalog.
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver returns a resolver over the given catalog.
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Specs returns the catalog entry and line index for a model designation, or
// nil and NoMatchIndex when unknown.
func (r *Resolver) Specs(modelDesignation string) (*model.CatalogEntry, int) {
	_, idx, _ := r.byTurbineType(modelDesignation, []string{"model_designation"}, "", nil, false)
	if idx == model.NoMatchIndex {
		return nil, model.NoMatchIndex
	}
	return r.catalog.Entry(idx), idx
}

// ByTurbineType resolves a raw turbine type string to a model designation and
// catalog line index. rowData optionally carries the turbine's own attributes
// for enrichment; the returned flag reports whether they were used, which
// downgrades the match to an enriched one. filtered restricts the search to
// the filtered catalog view.
func (r *Resolver) ByTurbineType(turbineType string, rowData map[string]any, filtered bool) (string, int, bool) {
	return r.byTurbineType(turbineType, nil, "", rowData, filtered)
}

// ByDesignationFirst resolves like ByTurbineType but checks the designation
// field before the identifier fields. Used for model guesses that are already
// designation-shaped, where an accidental ID collision would be wrong.
func (r *Resolver) ByDesignationFirst(turbineType string, filtered bool) (string, int) {
	fields := []string{"model_designation", "type_id", "type_code", "turbine_model"}
	d, idx, _ := r.byTurbineType(turbineType, fields, "", nil, filtered)
	return d, idx
}

func (r *Resolver) byTurbineType(turbineType string, fields []string, sortField string, rowData map[string]any, filtered bool) (string, int, bool) {
	rowDataUsed := false

	if fields == nil {
		fields = defaultFields
	}
	if sortField == "" {
		if len(fields) == 1 && fields[0] == "model_designation" {
			sortField = "wind_speeds"
		} else {
			sortField = "model_designation"
		}
	}

	// Candidate sets whose rows all lack a designation; followed as
	// cross-references when no field yields a direct match.
	type link struct {
		field      string
		candidates []int
	}
	var links []link

	indexes := r.catalog.Indexes(filtered)

	for _, field := range fields {
		candidates := r.matchField(indexes, field, turbineType)
		if len(candidates) == 0 && field == "model_designation" {
			prefixed := nameparse.EnsureManufacturerPrefix(turbineType)
			candidates = r.matchField(indexes, field, prefixed)
		}
		if len(candidates) == 0 {
			continue
		}

		withDesignation := r.subset(candidates, func(e *model.CatalogEntry) bool {
			return e.ModelDesignation != ""
		})
		if len(withDesignation) == 0 {
			links = append(links, link{field: field, candidates: candidates})
			continue
		}
		candidates = withDesignation

		// Prefer curves supplied by the manufacturer when available.
		fromManufacturer := r.subset(candidates, func(e *model.CatalogEntry) bool {
			return e.IsManufacturerData
		})
		if len(fromManufacturer) > 0 {
			candidates = fromManufacturer
		}

		r.sortByRichness(candidates, sortField)

		matchedIndex := candidates[0]
		best := r.catalog.Entry(matchedIndex)
		designation := best.ModelDesignation

		isEnriched := false
		if best.RatedPower == 0 || best.WindSpeedsLen == 0 {
			enriched, used := r.Enrich(designation, rowData, true, filtered)
			if enriched != designation {
				designation = enriched
				isEnriched = true
				rowDataUsed = rowDataUsed || used
			}
		}

		if !(field == "model_designation" && sortField == "wind_speeds") || isEnriched {
			// Re-resolve to the entry with the richest wind speed data for
			// this designation.
			d, idx, used := r.byTurbineType(designation, []string{"model_designation"}, "wind_speeds", nil, filtered)
			return d, idx, rowDataUsed || used
		}

		return designation, matchedIndex, rowDataUsed
	}

	for _, l := range links {
		for _, specIdx := range l.candidates {
			spec := r.catalog.Entry(specIdx)
			for _, field := range fields {
				if field == l.field {
					continue
				}
				next := fieldString(spec, field)
				if next == "" {
					continue
				}
				zap.L().Debug("following cross-reference",
					zap.String("turbine_type", turbineType),
					zap.String("field", field),
					zap.String("next", next))
				d, idx, used := r.byTurbineType(next, []string{field}, "", nil, filtered)
				if d != "" {
					return d, idx, rowDataUsed || used
				}
			}
		}
	}

	// No direct or linked match; try to enrich the raw type string itself.
	designation, used := r.Enrich(turbineType, rowData, true, filtered)
	if designation == turbineType {
		designation, _ = r.Enrich(turbineType, rowData, false, filtered)
		used = true
	}
	rowDataUsed = rowDataUsed || used

	if designation == turbineType {
		// Enriching went nowhere; don't restart the search on a type string
		// that already failed.
		return "", model.NoMatchIndex, rowDataUsed
	}

	d, idx, _ := r.byTurbineType(designation, []string{"model_designation"}, "wind_speeds", nil, filtered)
	return d, idx, rowDataUsed
}

func (r *Resolver) matchField(indexes []int, field, value string) []int {
	if value == "" {
		return nil
	}
	var out []int
	for _, idx := range indexes {
		if strings.EqualFold(fieldString(r.catalog.Entry(idx), field), value) {
			out = append(out, idx)
		}
	}
	return out
}

func (r *Resolver) subset(indexes []int, keep func(*model.CatalogEntry) bool) []int {
	var out []int
	for _, idx := range indexes {
		if keep(r.catalog.Entry(idx)) {
			out = append(out, idx)
		}
	}
	return out
}

// sortByRichness orders candidates by descending length of the sort field, so
// the most informative entry comes first.
func (r *Resolver) sortByRichness(indexes []int, sortField string) {
	length := func(idx int) int {
		e := r.catalog.Entry(idx)
		switch sortField {
		case "model_designation":
			return e.DesignationLen
		case "wind_speeds":
			return e.WindSpeedsLen
		default:
			return len(fieldString(e, sortField))
		}
	}
	sort.SliceStable(indexes, func(i, j int) bool {
		return length(indexes[i]) > length(indexes[j])
	})
}

func fieldString(e *model.CatalogEntry, field string) string {
	switch field {
	case "type_id":
		if e.TypeID == 0 {
			return ""
		}
		return strconv.Itoa(e.TypeID)
	case "type_code":
		return e.TypeCode
	case "turbine_model":
		return e.TurbineModel
	case "model_designation":
		return e.ModelDesignation
	case "manufacturer":
		return e.Manufacturer
	}
	return ""
}
