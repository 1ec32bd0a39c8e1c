package nameparse

// wf101Manufacturers translates the two-digit manufacturer code embedded in
// wf101 turbine types (FO_dddcc, last two digits) to a manufacturer name.
// Codes that historically mapped to multi-manufacturer labels carry the
// single name that the parser rules can re-anchor on.
var wf101Manufacturers = map[int]string{
	0:  "Senvion",
	1:  "Vestas",
	2:  "NORDEX",
	3:  "GE General Electric",
	4:  "Fuhrlaender/Protec MD",
	5:  "NEG MICON/Nordtank",
	6:  "Siemens",
	7:  "DeWIND",
	8:  "Enercon",
	9:  "VENSYS",
	10: "Senvion OFFSHORE",
	11: "Vestas OFFSHORE",
	16: "SWT OFFSHORE",
	20: "Tacke",
	21: "KNMI onshore reference turbine",
	22: "Goldwind (China)",
	23: "Leitwind (Italy)",
	24: "ACCIONA (Spain)",
	25: "KONCAR Croatian manufacturer",
	26: "Frisia",
	27: "Schuetz",
	28: "Envision (China Shanghai)",
	29: "Eno Energy",
	30: "Haliade OFFSHORE",
	31: "REF OFFSHORE (KNMI)",
	32: "Adwen",
	33: "Areva",
	34: "BARD",
	40: "DDIS France",
	41: "FWT",
	42: "Wind world (DK)",
	43: "Kleinwind GmbH",
	44: "Seewind",
	45: "WTN Windtechnik Nord",
}

// WF101Manufacturer returns the manufacturer name for a wf101 manufacturer
// code, or the empty string for unknown codes.
func WF101Manufacturer(code int) string {
	return wf101Manufacturers[code]
}
