package plants

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

// GroupSummary is the plant count and installed capacity of one country and technology
type GroupSummary struct {
	Country    string
	Technology string
	Count      int
	CapacityMW float64
}

// String formats the summary for logs
func (g GroupSummary) String() string {
	return fmt.Sprintf("%s %s: %s plants, %s MW total capacity",
		g.Country, g.Technology, humanize.Comma(int64(g.Count)), humanize.CommafWithDigits(g.CapacityMW, 1))
}

// Summarize groups plants in the order of countries × technologies.
// Every combination is reported, including empty ones.
func Summarize(in []models.PlantRecord, countries, technologies []string) []GroupSummary {
	type key struct{ country, tech string }
	acc := make(map[key]*GroupSummary)

	out := make([]GroupSummary, 0, len(countries)*len(technologies))
	for _, c := range countries {
		for _, t := range technologies {
			out = append(out, GroupSummary{Country: c, Technology: t})
		}
	}
	for i := range out {
		acc[key{out[i].Country, out[i].Technology}] = &out[i]
	}

	for _, p := range in {
		g, ok := acc[key{p.Country, p.Technology}]
		if !ok {
			continue
		}
		g.Count++
		g.CapacityMW += p.CapacityMW
	}
	return out
}
