package generation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

const (
	// lowGenerationRatio flags rows whose total is below this fraction of the mean
	lowGenerationRatio = 0.2
	// maxListedPeriods caps timestamps quoted in one quality issue
	maxListedPeriods = 5
	timeLayout       = "2006-01-02 15:04"
)

// Shares returns each source's fraction of the row total. Rows with zero total are zero.
func Shares(f *Frame) map[string][]float64 {
	totals := f.Totals()
	out := make(map[string][]float64, len(f.Sources))
	for _, s := range f.Sources {
		col := make([]float64, f.Len())
		for i, v := range f.Values[s] {
			if totals[i] != 0 {
				col[i] = v / totals[i]
			}
		}
		out[s] = col
	}
	return out
}

// MeanShares averages the per-row shares of each source
func MeanShares(f *Frame) map[string]float64 {
	out := make(map[string]float64, len(f.Sources))
	if f.Len() == 0 {
		return out
	}
	for s, col := range Shares(f) {
		var sum float64
		for _, v := range col {
			sum += v
		}
		out[s] = sum / float64(len(col))
	}
	return out
}

// ShareEntry is one line of a ranked generation mix
type ShareEntry struct {
	Source string
	Share  float64
}

// RankShares sorts shares descending, ties by name
func RankShares(shares map[string]float64) []ShareEntry {
	out := make([]ShareEntry, 0, len(shares))
	for s, v := range shares {
		out = append(out, ShareEntry{Source: s, Share: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Share != out[j].Share {
			return out[i].Share > out[j].Share
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// ComputeStats summarizes total generation. Daily volatility is the coefficient of
// variation (sample standard deviation over mean, in percent) of the daily mean totals,
// with days taken in loc.
func ComputeStats(f *Frame, loc *time.Location) (models.GenerationStats, error) {
	if f.Len() == 0 {
		return models.GenerationStats{}, fmt.Errorf("no rows in frame")
	}
	if loc == nil {
		loc = time.UTC
	}

	totals := f.Totals()
	stats := models.GenerationStats{
		MaxPowerMW: totals[0],
		MinPowerMW: totals[0],
		PeakTime:   f.Index[0],
		TroughTime: f.Index[0],
	}

	var sum float64
	type day struct {
		sum float64
		n   int
	}
	days := make(map[string]*day)
	var dayOrder []string

	for i, v := range totals {
		sum += v
		if v > stats.MaxPowerMW {
			stats.MaxPowerMW, stats.PeakTime = v, f.Index[i]
		}
		if v < stats.MinPowerMW {
			stats.MinPowerMW, stats.TroughTime = v, f.Index[i]
		}

		key := f.Index[i].In(loc).Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &day{}
			days[key] = d
			dayOrder = append(dayOrder, key)
		}
		d.sum += v
		d.n++
	}
	stats.AvgPowerMW = sum / float64(len(totals))

	daily := make([]float64, 0, len(dayOrder))
	for _, k := range dayOrder {
		daily = append(daily, days[k].sum/float64(days[k].n))
	}
	stats.DailyVolatilityPct = coefficientOfVariation(daily) * 100

	return stats, nil
}

func coefficientOfVariation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if mean == 0 {
		return 0
	}

	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss/float64(len(xs)-1)) / mean
}

// CheckQuality reports unusually low total generation and major sources dropping to zero
func CheckQuality(f *Frame) []string {
	if f.Len() == 0 {
		return nil
	}

	var issues []string

	totals := f.Totals()
	var mean float64
	for _, v := range totals {
		mean += v
	}
	mean /= float64(len(totals))
	threshold := mean * lowGenerationRatio

	var low []time.Time
	for i, v := range totals {
		if v < threshold {
			low = append(low, f.Index[i])
		}
	}
	if len(low) > 0 {
		issues = append(issues, fmt.Sprintf("unusually low generation periods: %s", formatPeriods(low)))
	}

	for _, source := range MajorSources {
		col, ok := f.Values[source]
		if !ok {
			continue
		}
		var zero []time.Time
		for i, v := range col {
			if v == 0 {
				zero = append(zero, f.Index[i])
			}
		}
		if len(zero) > 0 {
			issues = append(issues, fmt.Sprintf("periods with zero %s generation: %s", source, formatPeriods(zero)))
		}
	}

	return issues
}

func formatPeriods(ts []time.Time) string {
	n := len(ts)
	if n > maxListedPeriods {
		ts = ts[:maxListedPeriods]
	}
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.UTC().Format(timeLayout)
	}
	s := strings.Join(parts, ", ")
	if n > maxListedPeriods {
		s += fmt.Sprintf(" (+%d more)", n-maxListedPeriods)
	}
	return s
}
