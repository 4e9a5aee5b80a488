// Package mapview renders the interactive renewable plant map as a single HTML page.
package mapview

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/plants"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

var page = template.Must(template.New("plantmap").Parse(pageTemplate))

// Map describes the page to render
type Map struct {
	Title        string
	Center       [2]float64 // lat, lon
	Zoom         int
	Countries    []string // cluster order
	Technologies []string
	Plants       []models.PlantRecord
}

// Marker is one plant as embedded in the page
type Marker struct {
	Name           string  `json:"name"`
	Country        string  `json:"country"`
	Technology     string  `json:"technology"`
	CapacityMW     float64 `json:"capacity_mw"`
	CommissionYear int     `json:"commission_year"` // 0 when unknown
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Size           int     `json:"size"` // px
}

// Group is one toggleable marker cluster
type Group struct {
	Name    string   `json:"name"`
	Glyph   string   `json:"glyph"`
	Color   string   `json:"color"`
	Markers []Marker `json:"plants"`
}

type legendEntry struct {
	Glyph string
	Color string
	Label string
}

type pageData struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Legend    []legendEntry
	Data      template.JS
}

// BuildGroups splits plants into one group per country and technology, in the
// configured order. Empty combinations are left out.
func BuildGroups(m Map) []Group {
	var maxCap float64
	for _, p := range m.Plants {
		if p.CapacityMW > maxCap {
			maxCap = p.CapacityMW
		}
	}

	var groups []Group
	for _, country := range m.Countries {
		for _, tech := range m.Technologies {
			var markers []Marker
			for _, p := range m.Plants {
				if p.Country != country || p.Technology != tech {
					continue
				}
				markers = append(markers, Marker{
					Name:           p.Name,
					Country:        p.Country,
					Technology:     p.Technology,
					CapacityMW:     p.CapacityMW,
					CommissionYear: p.CommissionYear,
					Lat:            p.Lat,
					Lon:            p.Lon,
					Size:           plants.MarkerSize(p.CapacityMW, maxCap),
				})
			}
			if len(markers) == 0 {
				continue
			}
			icon := plants.IconFor(tech)
			groups = append(groups, Group{
				Name:    fmt.Sprintf("%s %s (%d plants)", country, tech, len(markers)),
				Glyph:   icon.Glyph,
				Color:   icon.Color,
				Markers: markers,
			})
		}
	}
	return groups
}

// Render writes the HTML page for m to w
func Render(w io.Writer, m Map) error {
	groups := BuildGroups(m)
	if groups == nil {
		groups = []Group{}
	}

	data, err := json.Marshal(groups, jsontext.EscapeForHTML(true))
	if err != nil {
		return fmt.Errorf("encoding plant data: %w", err)
	}

	legend := make([]legendEntry, 0, len(m.Technologies))
	for _, tech := range m.Technologies {
		icon := plants.IconFor(tech)
		legend = append(legend, legendEntry{Glyph: icon.Glyph, Color: icon.Color, Label: tech + " Plant"})
	}

	title := m.Title
	if title == "" {
		title = "Renewable Power Plants"
	}

	pd := pageData{
		Title:     title,
		CenterLat: m.Center[0],
		CenterLon: m.Center[1],
		Zoom:      m.Zoom,
		Legend:    legend,
		Data:      template.JS(data),
	}
	if err := page.Execute(w, pd); err != nil {
		return fmt.Errorf("rendering map: %w", err)
	}
	return nil
}

// Save renders the page to path, creating its directory
func Save(path string, m Map) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating map file: %w", err)
	}
	if err := Render(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
