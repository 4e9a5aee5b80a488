package generation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/entsoe"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

type fakeFetcher struct {
	latest    time.Time
	records   []models.GenerationRecord
	err       error
	gotStart  time.Time
	gotEnd    time.Time
	lookbacks []time.Duration
	inWindow  bool // only return records in [start, end) like the API
}

func (f *fakeFetcher) LatestDataTime(ctx context.Context, area entsoe.Area, now time.Time, lookback time.Duration) (time.Time, error) {
	f.lookbacks = append(f.lookbacks, lookback)
	if f.err != nil {
		return time.Time{}, f.err
	}
	return f.latest, nil
}

func (f *fakeFetcher) QueryGeneration(ctx context.Context, area entsoe.Area, start, end time.Time) ([]models.GenerationRecord, error) {
	f.gotStart, f.gotEnd = start, end
	if !f.inWindow {
		return f.records, nil
	}
	var out []models.GenerationRecord
	for _, r := range f.records {
		if !r.Timestamp.Before(start) && r.Timestamp.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func syntheticRecords(start time.Time, hours int) []models.GenerationRecord {
	var out []models.GenerationRecord
	for h := 0; h < hours; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		out = append(out,
			models.GenerationRecord{Country: "DE_LU", Source: "Nuclear", Timestamp: ts, PowerMW: 4000},
			models.GenerationRecord{Country: "DE_LU", Source: "Wind Onshore", Timestamp: ts, PowerMW: 3000},
			models.GenerationRecord{Country: "DE_LU", Source: "Wind Offshore", Timestamp: ts, PowerMW: 1000},
		)
		// quarter-hourly solar resampled to the hourly grid
		for q := 0; q < 4; q++ {
			out = append(out, models.GenerationRecord{Country: "DE_LU", Source: "Solar",
				Timestamp: ts.Add(time.Duration(q) * 15 * time.Minute), PowerMW: float64(q) * 1000})
		}
	}
	return out
}

func TestAnalyzerAnalyze(t *testing.T) {
	latest := t0.Add(47 * time.Hour)
	fetcher := &fakeFetcher{latest: latest, records: syntheticRecords(t0, 48)}

	area, _ := entsoe.LookupArea("DE_LU")
	a := NewAnalyzer(fetcher, Options{Window: 47 * time.Hour})

	res, err := a.Analyze(context.Background(), area)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !fetcher.gotStart.Equal(t0) || !fetcher.gotEnd.Equal(latest.Add(time.Hour)) {
		t.Errorf("query window: got %s..%s", fetcher.gotStart, fetcher.gotEnd)
	}
	if fetcher.lookbacks[0] != 30*24*time.Hour {
		t.Errorf("default lookback: got %v", fetcher.lookbacks[0])
	}
	if res.Frame.Resolution != time.Hour {
		t.Errorf("resolution: got %v, want 1h", res.Frame.Resolution)
	}
	if res.Frame.Len() != 48 {
		t.Fatalf("rows: got %d, want 48", res.Frame.Len())
	}
	if !res.Start.Equal(t0) || !res.End.Equal(t0.Add(48*time.Hour)) {
		t.Errorf("window: got %s..%s", res.Start, res.End)
	}

	if got := res.Frame.Column("Wind"); got == nil || got[0] != 4000 {
		t.Errorf("Wind column: got %v", got)
	}
	if got := res.Frame.Column("Solar"); got[0] != 1500 {
		t.Errorf("Solar hourly mean: got %v, want 1500", got[0])
	}

	var total float64
	for _, v := range res.MeanShares {
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("shares sum: got %v, want 1", total)
	}
	if res.Stats.AvgPowerMW != 9500 {
		t.Errorf("avg: got %v, want 9500", res.Stats.AvgPowerMW)
	}
	if res.Records != len(fetcher.records) {
		t.Errorf("Records: got %d", res.Records)
	}
}

func TestAnalyzerSkipsPartialFirstInterval(t *testing.T) {
	// hourly nuclear with quarter-hourly solar, latest point off the hourly grid
	var records []models.GenerationRecord
	for h := 0; h < 72; h++ {
		ts := t0.Add(time.Duration(h) * time.Hour)
		records = append(records, models.GenerationRecord{Country: "FR", Source: "Nuclear", Timestamp: ts, PowerMW: 4000})
		for q := 0; q < 4; q++ {
			records = append(records, models.GenerationRecord{Country: "FR", Source: "Solar",
				Timestamp: ts.Add(time.Duration(q) * 15 * time.Minute), PowerMW: 100})
		}
	}
	latest := t0.Add(71*time.Hour + 45*time.Minute)
	fetcher := &fakeFetcher{latest: latest, records: records, inWindow: true}

	area, _ := entsoe.LookupArea("FR")
	res, err := NewAnalyzer(fetcher, Options{Window: 48 * time.Hour}).Analyze(context.Background(), area)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !fetcher.gotStart.Equal(t0.Add(23*time.Hour + 45*time.Minute)) {
		t.Errorf("query start: got %s", fetcher.gotStart)
	}
	if !res.Start.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("first row: got %s, want first complete hour", res.Start)
	}
	if res.Frame.Len() != 48 {
		t.Fatalf("rows: got %d, want 48", res.Frame.Len())
	}
	for i, v := range res.Frame.Totals() {
		if v != 4100 {
			t.Fatalf("row %d total: got %v, want 4100", i, v)
		}
	}
	if res.Stats.MinPowerMW != 4100 {
		t.Errorf("min: got %v, want 4100", res.Stats.MinPowerMW)
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues: got %v, want none", res.Issues)
	}
}

func TestAnalyzerPropagatesFetchErrors(t *testing.T) {
	fetcher := &fakeFetcher{err: entsoe.ErrNoData}
	area, _ := entsoe.LookupArea("FR")

	_, err := NewAnalyzer(fetcher, Options{}).Analyze(context.Background(), area)
	if !errors.Is(err, entsoe.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestNormalizeRejectsEmptyWindow(t *testing.T) {
	area, _ := entsoe.LookupArea("FR")
	a := NewAnalyzer(&fakeFetcher{}, Options{})

	_, err := a.Normalize(context.Background(), area, syntheticRecords(t0.Add(-72*time.Hour), 2), t0, t0.Add(5*time.Hour))
	if err == nil {
		t.Fatal("expected error when no records fall in the window")
	}
}
