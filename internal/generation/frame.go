// Package generation turns raw per-source generation records into an aligned,
// unit-normalized table and derives the mix statistics shown in the charts.
package generation

import (
	"fmt"
	"sort"
	"time"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

// defaultResolution is used when no source has two distinct timestamps
const defaultResolution = time.Hour

// Frame is a per-source power table on a regular time grid.
// Values[source][i] is the mean MW of that source in the interval starting at Index[i].
// Missing points are zero.
type Frame struct {
	Country    string
	Index      []time.Time
	Sources    []string
	Values     map[string][]float64
	Resolution time.Duration
	Clamped    int // negative inputs clamped to zero
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Index)
}

// Column returns the series for source, or nil
func (f *Frame) Column(source string) []float64 {
	return f.Values[source]
}

// Totals returns the row sums
func (f *Frame) Totals() []float64 {
	out := make([]float64, f.Len())
	for _, s := range f.Sources {
		for i, v := range f.Values[s] {
			out[i] += v
		}
	}
	return out
}

// Records flattens the frame back into one record per row and source
func (f *Frame) Records() []models.GenerationRecord {
	out := make([]models.GenerationRecord, 0, f.Len()*len(f.Sources))
	for i, ts := range f.Index {
		for _, s := range f.Sources {
			out = append(out, models.GenerationRecord{
				Country:   f.Country,
				Source:    s,
				Timestamp: ts,
				PowerMW:   f.Values[s][i],
			})
		}
	}
	return out
}

// Align resamples records onto the grid [start, end) with the given resolution.
// A resolution of 0 selects the coarsest native resolution among the sources.
// Points in the same interval are averaged; intervals without points are zero;
// negative values are clamped to zero.
func Align(country string, records []models.GenerationRecord, start, end time.Time, resolution time.Duration) (*Frame, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("invalid window: end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if resolution < 0 {
		return nil, fmt.Errorf("invalid resolution: %s", resolution)
	}
	if resolution == 0 {
		resolution = NativeResolution(records)
	}

	gridStart := start.UTC().Truncate(resolution)
	rows := int((end.Sub(gridStart) + resolution - 1) / resolution)

	f := &Frame{
		Country:    country,
		Index:      make([]time.Time, rows),
		Values:     make(map[string][]float64),
		Resolution: resolution,
	}
	for i := range f.Index {
		f.Index[i] = gridStart.Add(time.Duration(i) * resolution)
	}

	counts := make(map[string][]int)
	for _, r := range records {
		if r.Timestamp.Before(gridStart) || !r.Timestamp.Before(end) {
			continue
		}
		i := int(r.Timestamp.Sub(gridStart) / resolution)

		sums, ok := f.Values[r.Source]
		if !ok {
			sums = make([]float64, rows)
			f.Values[r.Source] = sums
			counts[r.Source] = make([]int, rows)
		}

		v := r.PowerMW
		if v < 0 {
			v = 0
			f.Clamped++
		}
		sums[i] += v
		counts[r.Source][i]++
	}

	for source, sums := range f.Values {
		for i, n := range counts[source] {
			if n > 1 {
				sums[i] /= float64(n)
			}
		}
		f.Sources = append(f.Sources, source)
	}
	SortSources(f.Sources)

	return f, nil
}

// NativeResolution returns the coarsest per-source sampling interval in records.
// Each source's interval is the smallest gap between its distinct timestamps.
func NativeResolution(records []models.GenerationRecord) time.Duration {
	bySource := make(map[string][]time.Time)
	for _, r := range records {
		bySource[r.Source] = append(bySource[r.Source], r.Timestamp)
	}

	var coarsest time.Duration
	for _, ts := range bySource {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
		var step time.Duration
		for i := 1; i < len(ts); i++ {
			d := ts[i].Sub(ts[i-1])
			if d > 0 && (step == 0 || d < step) {
				step = d
			}
		}
		if step > coarsest {
			coarsest = step
		}
	}

	if coarsest == 0 {
		return defaultResolution
	}
	return coarsest
}

// Aggregate sums source columns into groups. Sources not named by any group keep their own column.
func Aggregate(f *Frame, groups map[string][]string) *Frame {
	member := make(map[string]string)
	for group, sources := range groups {
		for _, s := range sources {
			member[s] = group
		}
	}

	out := &Frame{
		Country:    f.Country,
		Index:      f.Index,
		Values:     make(map[string][]float64),
		Resolution: f.Resolution,
		Clamped:    f.Clamped,
	}

	for _, source := range f.Sources {
		target := source
		if g, ok := member[source]; ok {
			target = g
		}
		col, ok := out.Values[target]
		if !ok {
			col = make([]float64, f.Len())
			out.Values[target] = col
			out.Sources = append(out.Sources, target)
		}
		for i, v := range f.Values[source] {
			col[i] += v
		}
	}
	SortSources(out.Sources)

	return out
}
