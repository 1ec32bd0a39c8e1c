// Package nameparse parses and synthesizes free-text wind turbine model
// names. The parser runs an ordered table of manufacturer-specific rules
// against the name; the first matching rule wins, so rule order encodes
// manufacturer precedence and is part of the contract.
package nameparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Parsed is the structured guess extracted from a model name. Diameter and
// Power are zero when not recoverable; Power is normalized to kW.
type Parsed struct {
	ModelName           string
	ModelDesignation    string
	Manufacturer        string
	ManufacturerPattern *ManufacturerPattern
	Diameter            float64
	Power               float64
	IsKnownManufacturer bool
}

// ManufacturerPattern is the manufacturer-group sub-expression of a parser
// rule, used downstream to match catalog manufacturer strings against the
// same family alternation that recognized the name.
type ManufacturerPattern struct {
	src    string
	prefix *regexp.Regexp
	search *regexp.Regexp
}

// String returns the pattern source.
func (p *ManufacturerPattern) String() string {
	if p == nil {
		return ""
	}
	return p.src
}

// MatchesPrefix reports whether s starts with this manufacturer family.
func (p *ManufacturerPattern) MatchesPrefix(s string) bool {
	return p != nil && p.prefix.MatchString(s)
}

// Find returns the first substring of s matching this family, or "".
func (p *ManufacturerPattern) Find(s string) string {
	if p == nil {
		return ""
	}
	return p.search.FindString(s)
}

type rule struct {
	re           *regexp.Regexp
	manufacturer *ManufacturerPattern
}

// rulePatterns is the ordered rule table. Order is load-bearing: specific
// vendor rules precede looser ones and the two catch-alls close the table.
var rulePatterns = []string{
	// Vestas (V90, V112, MHI Vestas Offshore V164-8.0)
	`(?P<manufacturer>Vestas|(MHI Vestas Offshore)|(MHI Vestas)|MVOW)(\s|-)V(-|\s)?(?P<diameter>\d{2,3})(\s*-\s*(?P<power>\d+(\.\d+)?))?`,
	// Enercon (E40, E82, E101, E-115 EP3, Enercon E-66/18.70)
	`(?P<manufacturer>Enercon)( E)?(-|\s)?(?P<diameter>\d{2,3})( EP\d)?( E\d)?( (?P<power>\d+(\.\d+)?))?(\s?/\s?(?P<powerOW>\d+)\.?(?P<diameter2>\d+)?)?`,
	// AN Bonus 450/36, Bonus 37/450, Bonus B39/500, Bonus-76-2.0 and
	// Gamesa G49-2.0 must win before the Siemens-Gamesa rules.
	`(?P<manufacturer>AN(-|\s)Bonus) (?P<powerKW>\d+(\.\d+)?)/(?P<diameter>\d+)`,
	`(?P<manufacturer>Bonus|Combi) (?P<diameter>\d+)/(?P<powerKW>\d+(\.\d+)?)`,
	`(?P<manufacturer>Gamesa|Bonus)(\s|-)(G|B)?(-|\s)?(?P<diameter>\d+)([-|/](?P<power>\d+(\.\d+)?))?`,
	// Siemens / Gamesa / Siemens-Gamesa (SWT-3.6-120, SG-8.0-167 DD)
	`(?P<manufacturer>(Siemens(\s|-)Gamesa)|Siemens|Gamesa|(AN(-|\s))?Bonus|SWT)\s?(SWT|SG|G)?((-|\s)?(DD-(?P<power>\d+(\.\d+)?)))-(?P<diameter>\d+)`,
	`(?P<manufacturer>(Siemens(\s|-)Gamesa)|Siemens|Gamesa|(AN(-|\s))?Bonus|SWT)\s?(SWT|SG|G)?((-|\s)?(DD|(D?(?P<power>\d+(\.\d+)?))))?-(?P<diameter>\d+)?`,
	// Senvion, REpower and relatives
	`(?P<manufacturer>Kenersys) K\s?(?P<diameter>\d+)\s(?P<powerMW>\d+(\.\d+)?)MW`,
	`(?P<manufacturer>Senvion|REpower|(Jacobs PowerTec JPT)|(Jacobs Wind Electric)|Jacobs|(HSW Husumer Schiffs)|Kenersys)(\s|-|\.)\s?(M|HSW)?\s?(?P<power>\d+(\.(\d+|X))?)?((M|D|/|\s|-)\s?(?P<diameter>\d+))?((/|\s)(?P<power2>\d+(\.\d+)?))?`,
	// Haliade-6
	`(?P<manufacturer>Haliade)(\s|-)(?P<power>\d+(\.\d)?)`,
	// Mitsubishi MWT-250
	`(?P<manufacturer>Mitsubishi) MWT-(?P<diameter>\d+)/(?P<power>\d+(\.\d)?)`,
	`(?P<manufacturer>Mitsubishi) MWT-S?(?P<powerkW>\d+(\.\d)?)(-(?P<diameter>\d+))?`,
	// Adwen AD 5-135
	`(?P<manufacturer>Adwen) AD (?P<powerMW>\d+(\.\d)?)-(?P<diameter>\d+)`,
	// IZAR TURBINAS Bonus 44/600
	`(?P<manufacturer>(Izar Turbinas)|Izar) Bonus (?P<diameter>\d+)(-|/)(?P<power>\d+(\.\d)?)`,
	// Made - Endesa AE-61/1.100
	`(?P<manufacturer>(Made\s?-\s?Endesa)|Made|Endesa) (AE|M)(-|\s)(?P<diameter>\d+)((-|/)(?P<power>\d+(\.\d)?))?`,
	// Suzlon S 60-1000
	`(?P<manufacturer>Suzlon) S(\s|-)?(?P<diameter>\d+)((-|/)(?P<power>\d+(\.\d)?))?`,
	// Reference turbines (REF-6.0, REF-8.0)
	`(?P<manufacturer>REF)(\s|-)(?P<powerMW>\d+(\.\d)?)`,
	// Nordex N131/3300, N149/4.0-4.5, N149/5.X, N90
	`(?P<manufacturer>Nordex) N(?P<diameter>\d+)((/(?P<power>\d+(\.(\d+|X|x))?))(-\d(\.\d+)?)?)?`,
	// Tacke TW 1.5i
	`(?P<manufacturer>Tacke)\s+(TW|WR|TZ)\s?(?P<power>\d+(\.\d+))[a-z]+`,
	// BARD 6.5, BARD VM
	`(?P<manufacturer>BARD) (?P<power>(\d+(\.\d+)?)|V)M?`,
	// GE 3.2-103, GE General Electric GE 3.4-137, Cypress 6.0-164
	`(?P<manufacturer>(GE General Electric)|(General Electric)|GE|Enron|Cypress)(\s+(Wind|Energy|EN|GE|Haliade|Haliade-X))?(\s|-)(?P<power>\d+(\.\d+)?)\s?((-(?P<power_max>\d+(\.\d+)?))?-\s?(?P<diameter>\d+(\.\d+)?)?)?w*`,
	// NEG Micon NM 43/600, NM 54/950
	`(?P<manufacturer>(NEG(\s|-)Micon)|NEG|Micon|(NEG Wind World)|(Wind World))\s+(NM|M|W|WW)?\s*(?P<diameter>\d+)C?((/|-)(?P<powerKW>\d+))?`,
	// Nordtank NTK 1500 64
	`(?P<manufacturer>(Nordtank Energy Group)|Nordtank|NEG)(\s+NTK\s?((?P<powerKW>\d+)(-(?P<unknown>\d+))?)((/|\s)(?P<diameter>\d+))?((/|\s)(?P<hub_height>\d+))?)?`,
	// Goldwind GW 87/1500, Acciona AW-148/3300, Frisia F48/750
	`(?P<manufacturer>Goldwind|Acciona|Frisia|Vensys)\s+(S|GW|GWH|AW|F)?(-|\s)?(?P<diameter>\d+)(\s?/\s?(?P<powerKW>\d+))?`,
	// Leitwind LTW42 250
	`(?P<manufacturer>Leitwind)\s+LTW\s?(?P<diameter>\d+)\s(?P<powerKW>\d+)`,
	// Fuhrländer LLC WTU2.5-103
	`(?P<manufacturer>Fuhrländer|Fuhrlaender) LLC WTU(?P<power>\d+(\.\d+)?)-(?P<diameter>\d+)`,
	// Fuhrländer FL 2500/100
	`(?P<manufacturer>Fuhrländer|Fuhrlaender) FL( MD)? (?P<powerKW>\d+(\.\d+)?)(/(?P<diameter>\d+))?`,
	// Fuhrländer FUH15 G1 D250
	`(?P<manufacturer>Fuhrländer|Fuhrlaender) FUH(-|\s)?(?P<radius>\d+) G\d+ D(?P<powerKW>\d+(\.\d+)?)`,
	// Envision EN 171-6.5
	`(?P<manufacturer>Envision) (EN|N) (?P<diameter>\d+)-(?P<power>\d+(\.\d+)?)`,
	// IWT V90
	`(?P<manufacturer>IWT)\s+V(?P<diameter>\d+)`,
	// Eno Energy eno 126 4.8
	`(?P<manufacturer>Eno Energy)\s+eno (?P<diameter>\d+)(\s(?P<power>\d+(\.\d+)))?`,
	// DeWind D6 64/1250
	`(?P<manufacturer>DeWind)\s+D(?P<diameterDm>\d+(\.\d+)?)(\s(?P<diameter>\d+)/(?P<powerKW>\d+))?`,
	// DDIS DDIS60
	`(?P<manufacturer>DDIS)\s+DDIS(?P<diameter>\d+)`,
	// Aircon 30, AIRCON 10 S
	`(?P<manufacturer>Aircon) (?P<powerDW>\d+)( S)?`,
	// BestWatt BW10
	`(?P<manufacturer>BestWatt)\s+(BW|WB)(?P<powerKW>\d+)`,
	// KVA Vind 6-10
	`(?P<manufacturer>KVA Vind)(\s+KVA( Vind))? (?P<diameter>\d+)-(?P<powerKW>\d+)`,
	// Gaia 133-11kW (swept area, not diameter)
	`(?P<manufacturer>Gaia|(Gaia Wind)) (?P<swept_area>\d+)-(?P<powerKW>\d+)(\s?kW)?`,
	// RRB Energy V27-225
	`(?P<manufacturer>RRB|(RRB Energy))(\s+Pawan Shakthi)? (V|PS)(?P<diameter>\d+)?(-(?P<powerKW>\d+))?`,
	// EAZ Wind EAZ-Twelve
	`(?P<manufacturer>EAZ Wind)(\s+EAZ-(?P<diameter>Twelve))?`,
	// Solid Wind SWP-20, SWP25-16TG20
	`(?P<manufacturer>Solid Wind) (SWP|SPW)(-|\s)?(?P<powerKW>\d+(\.\d+)?)`,
	// Windmolens op Maat LWT25, Logic-25kW
	`(?P<manufacturer>(Windmolens op Maat)|Logic)(-|\s)(LWT)?(?P<powerKW>\d+(\.\d+)?)(\s?kW)?`,
	// EWT Directwind 900/54
	`(?P<manufacturer>EWT|DirectWind) (DW )?(?P<diameter>\d+)(-|\*|\s)(?P<power>\d+(\.\d)?(?P<known_unit>MW)?)`,
	// WTN Wind TechnikNord WTN 500/48, WTN 648
	`(?P<manufacturer>(WTN Wind TechnikNord)|(Wind TechnikNord)|WindTechnikNord|WTN) WTN (?P<powerKW>\d+(\.\d+)?)(/(?P<diameter>\d+))?`,
	// wf101 placeholder types (FO_012234: 3 diameter digits + 2 code digits)
	`FO_(?P<diameter>\d+)(?P<manufacturer_code>\d{2})`,
	// Simplified manufacturer letter+number catch-all
	`(?P<manufacturer>\w+) [A-Z]+(\s|-|/)?\d+((-|\.|/)\d+(\.\d+)?)?`,
	// Simplified letter+number catch-all
	`[A-Z]+\d+((-|\.|/)\d+(\.\d+)?)?`,
}

var rules = buildRules()

func buildRules() []rule {
	out := make([]rule, 0, len(rulePatterns))
	for _, pat := range rulePatterns {
		out = append(out, rule{
			re:           regexp.MustCompile(`(?i)^(?:` + pat + `)`),
			manufacturer: extractManufacturerPattern(pat),
		})
	}
	return out
}

// extractManufacturerPattern cuts the (?P<manufacturer>...) sub-expression
// out of a rule pattern by scanning parenthesis depth. The \w+ catch-all is
// not considered a manufacturer pattern.
func extractManufacturerPattern(pattern string) *ManufacturerPattern {
	const marker = "(?P<manufacturer>"
	open := strings.Index(pattern, marker)
	if open < 0 {
		return nil
	}

	depth := 0
	end := -1
	for i := open; i < len(pattern); i++ {
		switch pattern[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil
	}

	src := pattern[open : end+1]
	if src == `(?P<manufacturer>\w+)` {
		return nil
	}

	return &ManufacturerPattern{
		src:    src,
		prefix: regexp.MustCompile(`(?i)^(?:` + src + `)`),
		search: regexp.MustCompile(`(?i)` + src),
	}
}

var multiSpaceRe = regexp.MustCompile(`\s\s+`)

// Parse extracts a structured guess from a free-text turbine model name.
// An empty result (no designation) means the name is unparseable; callers
// fall back to other resolution strategies.
func Parse(modelName string) Parsed {
	name := norm.NFC.String(modelName)
	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.ReplaceAll(name, ",", ".")
	name = EnsureManufacturerPrefix(name)

	parsed := Parsed{ModelName: name}

	for _, r := range rules {
		m := r.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		groups := groupMap(r.re, m)
		parsed.ModelDesignation = m[0]
		parsed.ManufacturerPattern = r.manufacturer
		parsed.IsKnownManufacturer = r.manufacturer != nil
		parsed.Manufacturer = groups["manufacturer"]

		if parsed.Manufacturer == "" {
			if code, err := strconv.Atoi(groups["manufacturer_code"]); err == nil {
				parsed.Manufacturer = WF101Manufacturer(code)
				// Re-anchor the numeric-code manufacturer onto a known
				// family so enrichment can filter by its pattern.
				for _, sub := range rules {
					if found := sub.manufacturer.Find(parsed.Manufacturer); found != "" {
						parsed.Manufacturer = found
						parsed.ManufacturerPattern = sub.manufacturer
						break
					}
				}
			}
		}

		// Dash-joined manufacturer names from common-model lists.
		if parsed.Manufacturer == "NEG-Micon" || parsed.Manufacturer == "AN-Bonus" {
			parsed.Manufacturer = strings.ReplaceAll(parsed.Manufacturer, "-", " ")
		}

		parsed.resolveNumbers(groups)
		break
	}

	// Drop a dash between manufacturer and model ("Haliade-6" -> "Haliade 6").
	if d := parsed.ModelDesignation; d != "" {
		posDash := strings.Index(d, "-")
		posSpace := strings.Index(d, " ")
		if posDash > 0 && (posDash < posSpace || posSpace < 0) {
			parsed.ModelDesignation = d[:posDash] + " " + d[posDash+1:]
		}
	}

	return parsed
}

// resolveNumbers reconciles the captured numeric groups into diameter and
// power (kW), applying the unit conversions and field-swap fixes for the
// vendors known to label them inconsistently.
func (p *Parsed) resolveNumbers(groups map[string]string) {
	var (
		power     float64
		powerStr  string
		powerNum  bool
		knownUnit string
		diameter  float64
	)

	upperManufacturer := strings.ToUpper(p.Manufacturer)

	if raw := groups["power"]; raw != "" {
		powerStr = raw
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			power, powerNum = v, true
		}

		// BARD encodes 5 MW as a roman numeral V.
		if p.Manufacturer == "BARD" && raw == "V" {
			power, powerNum = 5000, true
			p.ModelDesignation = "BARD 5.0"
			knownUnit = "kW"
		}

		// Senvion 6 is a strong round-off of the 6.2M family.
		if p.Manufacturer == "Senvion" && powerNum && power == 6 {
			power = 6200
			p.ModelDesignation = "Senvion 6.2"
			knownUnit = "kW"
		}
	}

	if v, err := strconv.ParseFloat(groups["power2"], 64); err == nil && v > 0 {
		power, powerNum = v, true
	}

	powerMissing := func() bool {
		return (powerNum && power == 0) || (!powerNum && powerStr == "")
	}

	// Enercon /18.70 style suffixes state power in units of 100 W.
	if v, err := strconv.ParseFloat(groups["powerOW"], 64); err == nil {
		if v < 100 {
			v *= 100
		}
		if powerMissing() {
			power, powerNum = v, true
			knownUnit = "kW"
		}
	}

	// Aircon states power in units of 10 W.
	if v, err := strconv.ParseFloat(groups["powerDW"], 64); err == nil {
		if v < 100 {
			v *= 10
		}
		if powerMissing() {
			power, powerNum = v, true
			knownUnit = "kW"
		}
	}

	if v, err := strconv.ParseFloat(groups["powerMW"], 64); err == nil {
		power, powerNum = v*1000, true
		knownUnit = "kW"
	}

	if v, err := strconv.ParseFloat(groups["powerKW"], 64); err == nil {
		power, powerNum = v, true
		knownUnit = "kW"
	}

	if v, err := strconv.ParseFloat(groups["powerkW"], 64); err == nil {
		power, powerNum = v, true
		knownUnit = "kW"
	}

	if raw := groups["diameter"]; raw != "" {
		if raw == "Twelve" {
			diameter = 12
		} else if v, err := strconv.ParseFloat(raw, 64); err == nil {
			diameter = v
			if upperManufacturer == "MICON" {
				// Micon states swept area instead of diameter.
				diameter = 2 * math.Sqrt(v/math.Pi)
			}
		}
	}

	if v, err := strconv.ParseFloat(groups["diameter2"], 64); err == nil && v > 0 {
		diameter = v
	}

	// DeWind product codes carry the diameter in decimeters.
	if v, err := strconv.ParseFloat(groups["diameterDm"], 64); err == nil {
		if diameter == 0 && v > 0 {
			diameter = 10 * v
		}
	}

	if v, err := strconv.ParseFloat(groups["swept_area"], 64); err == nil {
		if diameter == 0 {
			diameter = 2 * math.Sqrt(v/math.Pi)
		}
	}

	if v, err := strconv.ParseFloat(groups["radius"], 64); err == nil {
		if v > 0 && diameter == 0 {
			diameter = 2 * v
		}
	}

	if p.Manufacturer != "" && diameter > 0 && powerStr != "" &&
		upperManufacturer == "WIND WORLD" && diameter > 1000 {
		diameter /= 100
	}

	if p.Manufacturer != "" && diameter > 0 && powerNum &&
		(upperManufacturer == "NEG MICON" || upperManufacturer == "NEG-MICON") &&
		diameter > power {
		// Power and diameter are swapped in parts of the NEG Micon fleet.
		diameter, power = power, diameter
	}

	if p.Manufacturer != "" && powerNum && diameter == 0 &&
		isWTN(upperManufacturer) && math.Mod(power, 10) != 0 {
		// WTN 648 packs power and diameter into one field: 600 kW, 48 m.
		diameter = math.Mod(power, 100)
		power = math.Trunc(power/100) * 100
	}

	if knownUnit == "" && groups["known_unit"] != "" {
		knownUnit = "kW"
	}

	if !powerMissing() {
		value := power
		ok := powerNum
		if !powerNum {
			// Nordex-style 5.X placeholders read as x=0.
			fixed := strings.ReplaceAll(strings.ToLower(powerStr), "x", "0")
			if v, err := strconv.ParseFloat(fixed, 64); err == nil {
				value, ok = v, true
			}
		}
		if ok {
			p.Power = PowerToKW(value, knownUnit, diameter)
		}
	}

	p.Diameter = diameter
}

func isWTN(upperManufacturer string) bool {
	switch upperManufacturer {
	case "WTN", "WTN WIND TECHNIKNORD", "WIND TECHNIKNORD", "WINDTECHNIKNORD":
		return true
	}
	return false
}

func groupMap(re *regexp.Regexp, m []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name == "" || i >= len(m) || m[i] == "" {
			continue
		}
		if _, seen := groups[name]; !seen {
			groups[name] = m[i]
		}
	}
	return groups
}
