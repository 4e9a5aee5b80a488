package plants

import (
	"strings"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

// Filter selects located plants by country and technology
type Filter struct {
	Countries    []string // long country names
	Technologies []string
}

// Apply returns the matching plants in input order, with Technology set to the
// configured spelling. Applying the same filter to its own output is a no-op.
func (f Filter) Apply(in []models.PlantRecord) []models.PlantRecord {
	countries := make(map[string]bool, len(f.Countries))
	for _, c := range f.Countries {
		countries[c] = true
	}
	techs := make(map[string]string, len(f.Technologies))
	for _, t := range f.Technologies {
		techs[strings.ToLower(t)] = t
	}

	var out []models.PlantRecord
	for _, p := range in {
		if !p.HasLocation || !countries[p.Country] {
			continue
		}
		tech, ok := techs[strings.ToLower(p.Technology)]
		if !ok {
			continue
		}
		p.Technology = tech
		out = append(out, p)
	}
	return out
}
