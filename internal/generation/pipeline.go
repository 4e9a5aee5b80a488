package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/entsoe"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/logger"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

// Fetcher retrieves raw generation records
type Fetcher interface {
	LatestDataTime(ctx context.Context, area entsoe.Area, now time.Time, lookback time.Duration) (time.Time, error)
	QueryGeneration(ctx context.Context, area entsoe.Area, start, end time.Time) ([]models.GenerationRecord, error)
}

// Options controls the analysis window and resampling
type Options struct {
	Lookback   time.Duration // search range for the latest published data
	Window     time.Duration // analysis window ending at the latest data
	Resolution time.Duration // 0 = coarsest native resolution
	Location   *time.Location
	Groups     map[string][]string
	Now        func() time.Time
}

// Analysis is the normalized result for one bidding zone
type Analysis struct {
	Area       entsoe.Area
	Start      time.Time
	End        time.Time // exclusive
	Records    int       // raw records fetched
	Frame      *Frame    // aggregated sources
	MeanShares map[string]float64
	Stats      models.GenerationStats
	Issues     []string
}

// Analyzer runs the fetch → align → aggregate → summarize chain for one zone at a time
type Analyzer struct {
	fetcher Fetcher
	opts    Options
}

// NewAnalyzer creates an analyzer, filling unset options with defaults
func NewAnalyzer(fetcher Fetcher, opts Options) *Analyzer {
	if opts.Lookback <= 0 {
		opts.Lookback = 30 * 24 * time.Hour
	}
	if opts.Window <= 0 {
		opts.Window = 10 * 24 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Groups == nil {
		opts.Groups = DefaultGroups
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Analyzer{fetcher: fetcher, opts: opts}
}

// Analyze finds the latest published data for area and analyzes the window before it
func (a *Analyzer) Analyze(ctx context.Context, area entsoe.Area) (*Analysis, error) {
	ctx = logger.With(ctx, "country", area.Code)

	latest, err := a.fetcher.LatestDataTime(ctx, area, a.opts.Now().UTC(), a.opts.Lookback)
	if err != nil {
		return nil, fmt.Errorf("finding latest data: %w", err)
	}
	logger.Debugf(ctx, "latest data at %s", latest.Format(time.RFC3339))

	start := latest.Add(-a.opts.Window)
	records, err := a.fetcher.QueryGeneration(ctx, area, start, latest.Add(time.Hour))
	if err != nil {
		return nil, fmt.Errorf("querying generation: %w", err)
	}

	return a.Normalize(ctx, area, records, start, latest)
}

// Normalize aligns records onto a grid from the first interval starting at or after start
// up to the interval containing latest,
// folds source groups and derives shares, statistics and quality issues.
func (a *Analyzer) Normalize(ctx context.Context, area entsoe.Area, records []models.GenerationRecord, start, latest time.Time) (*Analysis, error) {
	res := a.opts.Resolution
	if res == 0 {
		res = NativeResolution(records)
	}
	end := latest.UTC().Truncate(res).Add(res)

	// The query starts at start, so an interval that begins before it is incomplete
	gridStart := start.UTC().Truncate(res)
	if gridStart.Before(start) {
		gridStart = gridStart.Add(res)
	}

	raw, err := Align(area.Code, records, gridStart, end, res)
	if err != nil {
		return nil, fmt.Errorf("aligning series: %w", err)
	}
	if len(raw.Sources) == 0 {
		return nil, fmt.Errorf("no generation data in window %s..%s", gridStart.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if raw.Clamped > 0 {
		logger.Warnf(ctx, "clamped %d negative readings to zero", raw.Clamped)
	}

	agg := Aggregate(raw, a.opts.Groups)

	stats, err := ComputeStats(agg, a.opts.Location)
	if err != nil {
		return nil, fmt.Errorf("computing statistics: %w", err)
	}

	issues := CheckQuality(agg)
	for _, issue := range issues {
		logger.Warnf(ctx, "data quality: %s", issue)
	}

	return &Analysis{
		Area:       area,
		Start:      agg.Index[0],
		End:        end,
		Records:    len(records),
		Frame:      agg,
		MeanShares: MeanShares(agg),
		Stats:      stats,
		Issues:     issues,
	}, nil
}
