package generation

import (
	"math"
	"testing"
	"time"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func rec(source string, offset time.Duration, mw float64) models.GenerationRecord {
	return models.GenerationRecord{Country: "FR", Source: source, Timestamp: t0.Add(offset), PowerMW: mw}
}

func TestAlignResamplesAndFillsMissingWithZero(t *testing.T) {
	records := []models.GenerationRecord{
		rec("Solar", 0, 10),
		rec("Solar", 2*time.Hour, 30),
		rec("Wind Onshore", 0, 100),
		rec("Wind Onshore", 15*time.Minute, 200),
		rec("Wind Onshore", 30*time.Minute, -5),
		rec("Wind Onshore", 45*time.Minute, 100),
		rec("Solar", -time.Hour, 999),  // before the window
		rec("Solar", 3*time.Hour, 999), // end is exclusive
	}

	f, err := Align("FR", records, t0, t0.Add(3*time.Hour), time.Hour)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}

	if f.Len() != 3 {
		t.Fatalf("rows: got %d, want 3", f.Len())
	}
	if got := f.Column("Solar"); got[0] != 10 || got[1] != 0 || got[2] != 30 {
		t.Errorf("Solar: got %v, want [10 0 30]", got)
	}
	if got := f.Column("Wind Onshore"); got[0] != 100 || got[1] != 0 || got[2] != 0 {
		t.Errorf("Wind Onshore: got %v, want [100 0 0]", got)
	}
	if f.Clamped != 1 {
		t.Errorf("Clamped: got %d, want 1", f.Clamped)
	}
	if len(f.Sources) != 2 || f.Sources[0] != "Solar" || f.Sources[1] != "Wind Onshore" {
		t.Errorf("Sources: got %v", f.Sources)
	}
}

func TestAlignOneRowPerExpectedTimestamp(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		res        time.Duration
		wantRows   int
		wantFirst  time.Time
	}{
		{"aligned hourly", t0, t0.Add(24 * time.Hour), time.Hour, 24, t0},
		{"quarter hourly", t0, t0.Add(2 * time.Hour), 15 * time.Minute, 8, t0},
		{"unaligned start", t0.Add(10 * time.Minute), t0.Add(5 * time.Hour), time.Hour, 5, t0},
		{"partial last interval", t0, t0.Add(90 * time.Minute), time.Hour, 2, t0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []models.GenerationRecord
			for ts := tt.start; ts.Before(tt.end); ts = ts.Add(7 * time.Minute) {
				records = append(records, models.GenerationRecord{Source: "Nuclear", Timestamp: ts, PowerMW: -1 + float64(ts.Minute())})
			}

			f, err := Align("FR", records, tt.start, tt.end, tt.res)
			if err != nil {
				t.Fatalf("Align: %v", err)
			}
			if f.Len() != tt.wantRows {
				t.Fatalf("rows: got %d, want %d", f.Len(), tt.wantRows)
			}
			if !f.Index[0].Equal(tt.wantFirst) {
				t.Errorf("first index: got %s, want %s", f.Index[0], tt.wantFirst)
			}
			for i := 1; i < f.Len(); i++ {
				if f.Index[i].Sub(f.Index[i-1]) != tt.res {
					t.Fatalf("irregular spacing at row %d", i)
				}
			}
			for _, s := range f.Sources {
				for i, v := range f.Values[s] {
					if v < 0 || math.IsNaN(v) {
						t.Fatalf("%s row %d: got %v, want non-negative", s, i, v)
					}
				}
			}
		})
	}
}

func TestAlignRejectsBadWindow(t *testing.T) {
	if _, err := Align("FR", nil, t0, t0, time.Hour); err == nil {
		t.Error("expected error for empty window")
	}
	if _, err := Align("FR", nil, t0, t0.Add(time.Hour), -time.Hour); err == nil {
		t.Error("expected error for negative resolution")
	}
}

func TestNativeResolution(t *testing.T) {
	records := []models.GenerationRecord{
		rec("Solar", 0, 1), rec("Solar", time.Hour, 1), rec("Solar", 2*time.Hour, 1),
		rec("Wind Onshore", 0, 1), rec("Wind Onshore", 15*time.Minute, 1),
	}
	if got := NativeResolution(records); got != time.Hour {
		t.Errorf("got %v, want 1h", got)
	}
	if got := NativeResolution([]models.GenerationRecord{rec("Solar", 0, 1)}); got != time.Hour {
		t.Errorf("single point: got %v, want 1h default", got)
	}
}

func TestAggregateGroupsSources(t *testing.T) {
	f := &Frame{
		Country:    "DE_LU",
		Index:      []time.Time{t0, t0.Add(time.Hour)},
		Sources:    []string{"Wind Onshore", "Wind Offshore", "Solar", "Biomass", "Marine"},
		Resolution: time.Hour,
		Values: map[string][]float64{
			"Wind Onshore":  {10, 20},
			"Wind Offshore": {1, 2},
			"Solar":         {5, 5},
			"Biomass":       {3, 3},
			"Marine":        {1, 1},
		},
	}

	agg := Aggregate(f, DefaultGroups)

	want := []string{"Wind", "Solar", "Other Renewables", "Marine"}
	if len(agg.Sources) != len(want) {
		t.Fatalf("Sources: got %v, want %v", agg.Sources, want)
	}
	for i := range want {
		if agg.Sources[i] != want[i] {
			t.Errorf("Sources[%d]: got %q, want %q", i, agg.Sources[i], want[i])
		}
	}
	if got := agg.Column("Wind"); got[0] != 11 || got[1] != 22 {
		t.Errorf("Wind: got %v, want [11 22]", got)
	}
	if got := agg.Column("Other Renewables"); got[0] != 3 {
		t.Errorf("Other Renewables: got %v", got)
	}
	// the input frame is untouched
	if got := f.Column("Wind Onshore"); got[0] != 10 {
		t.Errorf("input mutated: %v", got)
	}
}

func TestSortSources(t *testing.T) {
	got := []string{"Zeta", "Solar", "Alpha", "Nuclear"}
	SortSources(got)
	want := []string{"Nuclear", "Solar", "Alpha", "Zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFrameRecords(t *testing.T) {
	f := &Frame{
		Country: "FR",
		Index:   []time.Time{t0, t0.Add(time.Hour)},
		Sources: []string{"Nuclear", "Solar"},
		Values: map[string][]float64{
			"Nuclear": {100, 110},
			"Solar":   {0, 5},
		},
	}

	got := f.Records()
	if len(got) != 4 {
		t.Fatalf("records: got %d, want 4", len(got))
	}
	last := got[3]
	if last.Country != "FR" || last.Source != "Solar" || !last.Timestamp.Equal(t0.Add(time.Hour)) || last.PowerMW != 5 {
		t.Errorf("last record: %+v", last)
	}
}
