package generation

import (
	"math"
	"strings"
	"testing"
	"time"
)

func hourlyFrame(sources map[string][]float64) *Frame {
	f := &Frame{Country: "FR", Values: sources, Resolution: time.Hour}
	for s, col := range sources {
		f.Sources = append(f.Sources, s)
		if len(f.Index) == 0 {
			for i := range col {
				f.Index = append(f.Index, t0.Add(time.Duration(i)*time.Hour))
			}
		}
	}
	SortSources(f.Sources)
	return f
}

func TestSharesAndMeanShares(t *testing.T) {
	f := hourlyFrame(map[string][]float64{
		"Nuclear": {75, 0, 50},
		"Solar":   {25, 0, 50},
	})

	shares := Shares(f)
	if got := shares["Nuclear"]; got[0] != 0.75 || got[1] != 0 || got[2] != 0.5 {
		t.Errorf("Nuclear shares: got %v", got)
	}

	mean := MeanShares(f)
	if math.Abs(mean["Nuclear"]-1.25/3) > 1e-12 {
		t.Errorf("Nuclear mean share: got %v", mean["Nuclear"])
	}
	if math.Abs(mean["Solar"]-0.75/3) > 1e-12 {
		t.Errorf("Solar mean share: got %v", mean["Solar"])
	}

	ranked := RankShares(mean)
	if ranked[0].Source != "Nuclear" || ranked[1].Source != "Solar" {
		t.Errorf("ranking: got %+v", ranked)
	}
}

func TestComputeStats(t *testing.T) {
	values := make([]float64, 48)
	for i := range values {
		if i < 24 {
			values[i] = 100
		} else {
			values[i] = 300
		}
	}
	f := hourlyFrame(map[string][]float64{"Nuclear": values})

	stats, err := ComputeStats(f, time.UTC)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}

	if stats.MaxPowerMW != 300 || stats.MinPowerMW != 100 || stats.AvgPowerMW != 200 {
		t.Errorf("max/min/avg: got %v/%v/%v", stats.MaxPowerMW, stats.MinPowerMW, stats.AvgPowerMW)
	}
	if !stats.PeakTime.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("PeakTime: got %s", stats.PeakTime)
	}
	if !stats.TroughTime.Equal(t0) {
		t.Errorf("TroughTime: got %s", stats.TroughTime)
	}
	// daily means 100 and 300: sample std 141.42, mean 200
	if want := math.Sqrt2 * 100 / 200 * 100; math.Abs(stats.DailyVolatilityPct-want) > 1e-9 {
		t.Errorf("DailyVolatilityPct: got %v, want %v", stats.DailyVolatilityPct, want)
	}
}

func TestComputeStatsUsesLocationForDays(t *testing.T) {
	brussels, err := time.LoadLocation("Europe/Brussels")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 24 hourly rows starting at 00:00 UTC span two Brussels days
	f := hourlyFrame(map[string][]float64{"Nuclear": make([]float64, 24)})
	for i := range f.Values["Nuclear"] {
		f.Values["Nuclear"][i] = float64(i)
	}

	utc, _ := ComputeStats(f, time.UTC)
	local, _ := ComputeStats(f, brussels)
	if utc.DailyVolatilityPct != 0 {
		t.Errorf("single UTC day should have zero volatility, got %v", utc.DailyVolatilityPct)
	}
	if local.DailyVolatilityPct == 0 {
		t.Error("two local days should have non-zero volatility")
	}
}

func TestComputeStatsEmptyFrame(t *testing.T) {
	if _, err := ComputeStats(&Frame{}, time.UTC); err == nil {
		t.Fatal("expected error for empty frame")
	}
}

func TestCheckQuality(t *testing.T) {
	f := hourlyFrame(map[string][]float64{
		"Nuclear":    {100, 100, 0, 100},
		"Fossil Gas": {50, 50, 0, 50},
		"Solar":      {0, 0, 0, 0},
	})

	issues := CheckQuality(f)
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "low generation") || !strings.Contains(issues[0], "2024-03-01 02:00") {
		t.Errorf("low generation issue: %q", issues[0])
	}
	if !strings.Contains(issues[1], "zero Fossil Gas") {
		t.Errorf("gas issue: %q", issues[1])
	}
	if !strings.Contains(issues[2], "zero Nuclear") {
		t.Errorf("nuclear issue: %q", issues[2])
	}
}

func TestCheckQualityCleanData(t *testing.T) {
	f := hourlyFrame(map[string][]float64{"Nuclear": {100, 110, 90}})
	if issues := CheckQuality(f); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestFormatPeriodsTruncates(t *testing.T) {
	var ts []time.Time
	for i := 0; i < 8; i++ {
		ts = append(ts, t0.Add(time.Duration(i)*time.Hour))
	}
	got := formatPeriods(ts)
	if !strings.HasSuffix(got, "(+3 more)") {
		t.Errorf("got %q", got)
	}
}
