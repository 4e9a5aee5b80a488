package entsoe

import (
	"fmt"
	"sort"
	"strings"
)

// Area is a bidding zone on the Transparency Platform
type Area struct {
	Code string // short code used on the command line, e.g. "DE_LU"
	Name string // display name, e.g. "Germany/Luxembourg"
	EIC  string // Energy Identification Code sent to the API
}

var areas = map[string]Area{
	"FR":    {Code: "FR", Name: "France", EIC: "10YFR-RTE------C"},
	"DE_LU": {Code: "DE_LU", Name: "Germany/Luxembourg", EIC: "10Y1001A1001A82H"},
	"IT":    {Code: "IT", Name: "Italy", EIC: "10YIT-GRTN-----B"},
	"ES":    {Code: "ES", Name: "Spain", EIC: "10YES-REE------0"},
	"AT":    {Code: "AT", Name: "Austria", EIC: "10YAT-APG------L"},
	"BE":    {Code: "BE", Name: "Belgium", EIC: "10YBE----------2"},
	"NL":    {Code: "NL", Name: "Netherlands", EIC: "10YNL----------L"},
	"PT":    {Code: "PT", Name: "Portugal", EIC: "10YPT-REN------W"},
	"PL":    {Code: "PL", Name: "Poland", EIC: "10YPL-AREA-----S"},
	"CH":    {Code: "CH", Name: "Switzerland", EIC: "10YCH-SWISSGRIDZ"},
}

// LookupArea resolves a bidding zone code (case-insensitive)
func LookupArea(code string) (Area, error) {
	a, ok := areas[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Area{}, fmt.Errorf("unknown bidding zone: %s (available: %s)", code, strings.Join(AreaCodes(), ", "))
	}
	return a, nil
}

// AreaCodes returns the known bidding zone codes, sorted
func AreaCodes() []string {
	codes := make([]string, 0, len(areas))
	for c := range areas {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Production source types (MktPSRType/psrType)
var psrTypes = map[string]string{
	"A03": "Mixed",
	"A04": "Generation",
	"A05": "Load",
	"B01": "Biomass",
	"B02": "Fossil Brown coal/Lignite",
	"B03": "Fossil Coal-derived gas",
	"B04": "Fossil Gas",
	"B05": "Fossil Hard coal",
	"B06": "Fossil Oil",
	"B07": "Fossil Oil shale",
	"B08": "Fossil Peat",
	"B09": "Geothermal",
	"B10": "Hydro Pumped Storage",
	"B11": "Hydro Run-of-river and poundage",
	"B12": "Hydro Water Reservoir",
	"B13": "Marine",
	"B14": "Nuclear",
	"B15": "Other renewable",
	"B16": "Solar",
	"B17": "Waste",
	"B18": "Wind Offshore",
	"B19": "Wind Onshore",
	"B20": "Other",
	"B21": "AC Link",
	"B22": "DC Link",
	"B23": "Substation",
	"B24": "Transformer",
	"B25": "Energy storage",
}

// PSRName maps a psrType code to its source name. Unknown codes are returned as-is.
func PSRName(code string) string {
	if name, ok := psrTypes[code]; ok {
		return name
	}
	return code
}

// unitFactors converts quantity_Measure_Unit.name to MW
var unitFactors = map[string]float64{
	"MAW": 1,
	"KWT": 0.001,
	"GWT": 1000,
}

// UnitFactor returns the multiplier that converts a quantity in unit to MW
func UnitFactor(unit string) (float64, error) {
	f, ok := unitFactors[strings.ToUpper(strings.TrimSpace(unit))]
	if !ok {
		return 0, fmt.Errorf("unsupported quantity unit: %q", unit)
	}
	return f, nil
}
