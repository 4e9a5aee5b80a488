package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.CountryAnalyzed("FR", 100, 2)
	r.CountryAnalyzed("FR", 50, 0)
	r.CountryFailed("IT")
	r.PlantsMapped("Spain", "Wind", 12)

	if got := testutil.ToFloat64(r.recordsFetched.WithLabelValues("FR")); got != 150 {
		t.Errorf("records fetched: got %v, want 150", got)
	}
	if got := testutil.ToFloat64(r.clampedPoints.WithLabelValues("FR")); got != 2 {
		t.Errorf("clamped: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.countryErrors.WithLabelValues("IT")); got != 1 {
		t.Errorf("errors: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.plantsMapped.WithLabelValues("Spain", "Wind")); got != 12 {
		t.Errorf("plants: got %v, want 12", got)
	}
}

func TestRunFinished(t *testing.T) {
	r := NewRecorder()
	r.RunFinished("generation", time.Now().Add(-time.Second), false)
	if n := testutil.CollectAndCount(r.lastSuccessTS); n != 0 {
		t.Errorf("failed run recorded success: %d series", n)
	}

	r.RunFinished("generation", time.Now(), true)
	if got := testutil.ToFloat64(r.lastSuccessTS.WithLabelValues("generation")); got <= 0 {
		t.Errorf("last success: got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.CountryAnalyzed("DE_LU", 7, 0)

	path := filepath.Join(t.TempDir(), "energyanalysis.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	if !strings.Contains(string(data), `energyanalysis_records_fetched_total{country="DE_LU"} 7`) {
		t.Errorf("textfile missing counter:\n%s", data)
	}

	if err := r.WriteTextfile(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
}
