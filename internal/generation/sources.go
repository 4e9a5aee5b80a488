package generation

import "sort"

// DefaultGroups folds detailed production types into the categories shown on the charts
var DefaultGroups = map[string][]string{
	"Wind": {
		"Wind Offshore",
		"Wind Onshore",
	},
	"Other Renewables": {
		"Other renewable",
		"Waste",
		"Geothermal",
		"Biomass",
	},
	"Hydro": {
		"Hydro Run-of-river and poundage",
		"Hydro Water Reservoir",
		"Hydro Pumped Storage",
	},
	"Coal and Lignite": {
		"Fossil Brown coal/Lignite",
		"Fossil Coal-derived gas",
		"Fossil Hard coal",
	},
}

// MajorSources are expected to run continuously where present
var MajorSources = []string{"Fossil Gas", "Nuclear", "Coal and Lignite"}

// canonicalOrder is the stacking order, bottom first
var canonicalOrder = []string{
	"Nuclear",
	"Coal and Lignite",
	"Fossil Gas",
	"Fossil Oil",
	"Hydro",
	"Wind",
	"Solar",
	"Other Renewables",
	"Biomass",
	"Waste",
	"Other",
}

var canonicalRank = func() map[string]int {
	m := make(map[string]int, len(canonicalOrder))
	for i, s := range canonicalOrder {
		m[s] = i
	}
	return m
}()

// SortSources orders sources canonically; unknown sources follow alphabetically
func SortSources(sources []string) {
	sort.SliceStable(sources, func(i, j int) bool {
		ri, okI := canonicalRank[sources[i]]
		rj, okJ := canonicalRank[sources[j]]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		default:
			return sources[i] < sources[j]
		}
	})
}
