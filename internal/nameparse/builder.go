package nameparse

import (
	"fmt"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// Build synthesizes a canonical model designation from manufacturer, rotor
// diameter (m) and rated power (kW) using the naming convention of the
// manufacturer family. Returns the empty string for families without a known
// convention.
func Build(manufacturer string, diameter, powerKW float64) string {
	switch titleCaser.String(manufacturer) {
	case "Vestas":
		if powerKW < 1000 {
			return fmt.Sprintf("%s V%.0f-%.0f", manufacturer, diameter, powerKW)
		}
		return fmt.Sprintf("%s V%.0f-%.1f", manufacturer, diameter, powerKW/1000)

	case "Siemens":
		return fmt.Sprintf("%s SWT-%.1f-%.0f", manufacturer, powerKW/1000, diameter)

	case "Siemens Gamesa":
		return fmt.Sprintf("%s SG-%.1f-%.0f", manufacturer, powerKW/1000, diameter)

	case "Enercon":
		if powerKW < 500 {
			return fmt.Sprintf("%s E-%.0f / %.0f", manufacturer, diameter, powerKW)
		}
		if powerKW < 2000 {
			return fmt.Sprintf("%s E-%.0f/%.0f.%.0f", manufacturer, diameter, powerKW/100, diameter)
		}
		return fmt.Sprintf("%s E-%.0f %.3f", manufacturer, diameter, powerKW/1000)

	case "Senvion", "Repower":
		return fmt.Sprintf("%s %.1fM%.0f", manufacturer, powerKW/1000, diameter)

	case "Nordex":
		if diameter < 140 {
			return fmt.Sprintf("%s N%.0f/%.0f", manufacturer, diameter, powerKW)
		}
		return fmt.Sprintf("%s N%.0f/%.1f", manufacturer, diameter, powerKW/1000)

	case "Bonus", "Dewind":
		initial := titleCaser.String(manufacturer[:1])
		return fmt.Sprintf("%s %s%.0f/%.0f", manufacturer, initial, diameter, powerKW)

	case "Ref":
		return fmt.Sprintf("%s-%.1f", manufacturer, powerKW/1000)
	}

	return ""
}

// prefixRule infers a manufacturer from a bare product-code prefix.
type prefixRule struct {
	re           *regexp.Regexp
	manufacturer string
}

// prefixRules is evaluated in order; more specific product codes must come
// before single-letter ones (SWT before B, NM before N, ...).
var prefixRules = buildPrefixRules([]struct {
	pattern      string
	manufacturer string
}{
	{`^eno \d+`, "Eno Energy"},
	{`^(SWP|SPW)-?\d{2}`, "Solid Wind"},
	{`^SWT-(DD|\d+)`, "Siemens"},
	{`^LTW\d+`, "Leitwind"},
	{`^LWT\d+`, "Windmolens op Maat"},
	{`^NTK\s?\d+/\d+`, "Nordtank"},
	{`^MWT(-|\s)?\d+`, "Mitsubishi"},
	{`^SG(-|\s)D?\d+`, "Siemens Gamesa"},
	{`^AW(-|\s)?\d+`, "Acciona"},
	{`^DW(-|\s)?\d+`, "DirectWind"},
	{`^EN(-|\s)?\d+`, "Envision"},
	{`^(BW|WB)\d{2}`, "BestWatt"},
	{`^(TW|WR|TZ)\s?\d+`, "Tacke"},
	{`^(EN|GE)(-|\s)(Haliade(-X)? )?\d+`, "General Electric"},
	{`^MM(-|\s)?\d+`, "REpower"},
	{`^(FL|FUH)(-|\s)?\d+`, "Fuhrländer"},
	{`^B(-|\s)?\d+`, "Bonus"},
	{`^D\d+`, "DeWind"},
	{`^E(-|\s)?\d{2,3}`, "Enercon"},
	{`^F(-|\s)?\d+`, "Frisia"},
	{`^G(-|\s)?\d{2,3}`, "Gamesa"},
	{`^K(-|\s)?\d+`, "Kenersys"},
	{`^(NM|M)(-|\s)?\d+`, "NEG Micon"},
	{`^N(-|\s)?\d+`, "Nordex"},
	{`^V(-|\s)?\d{2,3}`, "Vestas"},
	{`^(W|WW)(-|\s)?\d{2,4}`, "Wind World"},
	{`^(GW|GWH)(-|\s)?\d+`, "Goldwind"},
})

func buildPrefixRules(specs []struct {
	pattern      string
	manufacturer string
}) []prefixRule {
	rules := make([]prefixRule, 0, len(specs))
	for _, s := range specs {
		rules = append(rules, prefixRule{
			re:           regexp.MustCompile(`(?im)` + s.pattern),
			manufacturer: s.manufacturer,
		})
	}
	return rules
}

// EnsureManufacturerPrefix prepends the inferred manufacturer when a model
// name starts with a bare product code ("V90" becomes "Vestas V90"). Names
// that do not match any product-code rule are assumed to already carry their
// manufacturer prefix and are returned unchanged.
func EnsureManufacturerPrefix(modelName string) string {
	for _, rule := range prefixRules {
		if rule.re.MatchString(modelName) {
			return rule.manufacturer + " " + modelName
		}
	}
	return modelName
}
