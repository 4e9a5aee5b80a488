// Package chart renders generation mix frames as stacked area PNG charts.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/generation"
)

var dayLineColor = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x80}

// Renderer draws stacked area charts of a fixed size
type Renderer struct {
	Width    vg.Length
	Height   vg.Length
	DPI      int
	Location *time.Location // day boundaries and tick labels
}

// NewRenderer creates a renderer for charts of widthIn x heightIn inches
func NewRenderer(widthIn, heightIn float64, dpi int, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{
		Width:    vg.Length(widthIn) * vg.Inch,
		Height:   vg.Length(heightIn) * vg.Inch,
		DPI:      dpi,
		Location: loc,
	}
}

// FileName returns the chart file name for a country display name
func FileName(countryName string) string {
	return strings.ReplaceAll(strings.ToLower(countryName), "/", "_") + "_generation.png"
}

// Save renders the chart into dir and returns the written path
func (r *Renderer) Save(dir, countryName string, f *generation.Frame) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(countryName))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating chart file: %w", err)
	}

	if err := r.Render(file, countryName, f); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing chart file: %w", err)
	}
	return path, nil
}

// Render writes the PNG chart of f to w
func (r *Renderer) Render(w io.Writer, countryName string, f *generation.Frame) error {
	p, err := r.build(countryName, f)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(r.Width, r.Height), vgimg.UseDPI(r.DPI))
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

func (r *Renderer) build(countryName string, f *generation.Frame) (*plot.Plot, error) {
	if f.Len() == 0 || len(f.Sources) == 0 {
		return nil, fmt.Errorf("nothing to plot for %s", countryName)
	}

	first := f.Index[0].In(r.Location)
	last := f.Index[f.Len()-1].In(r.Location)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Power Generation Mix\n%s to %s",
		countryName, first.Format("2006-01-02"), last.Format("2006-01-02"))
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Power [MW]"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 02\n15:04", Time: plot.UnixTimeIn(r.Location)}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	// Cumulative tops, bottom layer first
	layers := make([]*plotter.Line, len(f.Sources))
	cum := make([]float64, f.Len())
	var yMax float64
	for li, source := range f.Sources {
		xys := make(plotter.XYs, f.Len())
		for i, v := range f.Values[source] {
			cum[i] += v
			xys[i].X = float64(f.Index[i].Unix())
			xys[i].Y = cum[i]
			if cum[i] > yMax {
				yMax = cum[i]
			}
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("building %s layer: %w", source, err)
		}
		col := ColorFor(source)
		line.FillColor = col
		line.LineStyle.Color = col
		line.LineStyle.Width = vg.Points(0.5)
		layers[li] = line
	}

	// Each fill reaches down to the axis, so the tallest layer goes first
	for i := len(layers) - 1; i >= 0; i-- {
		p.Add(layers[i])
	}
	for i, source := range f.Sources {
		p.Legend.Add(source, layers[i])
	}

	if yMax == 0 {
		yMax = 1
	}
	for _, day := range dayBoundaries(f.Index[0], f.Index[f.Len()-1], r.Location) {
		x := float64(day.Unix())
		line, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: yMax}})
		if err != nil {
			return nil, fmt.Errorf("building day line: %w", err)
		}
		line.LineStyle = draw.LineStyle{
			Color:  dayLineColor,
			Width:  vg.Points(0.5),
			Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
		}
		p.Add(line)
	}

	p.X.Min = float64(f.Index[0].Unix())
	p.X.Max = float64(f.Index[f.Len()-1].Unix())
	p.Y.Min = 0
	p.Y.Max = yMax * 1.05

	return p, nil
}

// dayBoundaries returns the local midnights in [from, to]
func dayBoundaries(from, to time.Time, loc *time.Location) []time.Time {
	local := from.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if day.Before(from) {
		day = day.AddDate(0, 0, 1)
	}

	var out []time.Time
	for !day.After(to) {
		out = append(out, day)
		day = day.AddDate(0, 0, 1)
	}
	return out
}
