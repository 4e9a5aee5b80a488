// Package metrics collects run metrics and writes them as a node exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "energyanalysis"

// Recorder holds the metrics of one command invocation
type Recorder struct {
	registry *prometheus.Registry

	recordsFetched *prometheus.CounterVec
	clampedPoints  *prometheus.CounterVec
	countryErrors  *prometheus.CounterVec
	plantsMapped   *prometheus.GaugeVec
	lastSuccessTS  *prometheus.GaugeVec
	runDuration    *prometheus.GaugeVec
}

// NewRecorder registers all metrics on a private registry
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.recordsFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_fetched_total",
		Help:      "Raw generation records fetched from the transparency API",
	}, []string{"country"})
	r.clampedPoints = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clamped_points_total",
		Help:      "Negative generation readings clamped to zero",
	}, []string{"country"})
	r.countryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "country_errors_total",
		Help:      "Countries skipped because fetching or rendering failed",
	}, []string{"country"})
	r.plantsMapped = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "plants_mapped",
		Help:      "Plants shown on the map",
	}, []string{"country", "technology"})
	r.lastSuccessTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful run",
	}, []string{"command"})
	r.runDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last run",
	}, []string{"command"})

	r.registry.MustRegister(
		r.recordsFetched,
		r.clampedPoints,
		r.countryErrors,
		r.plantsMapped,
		r.lastSuccessTS,
		r.runDuration,
	)
	return r
}

// CountryAnalyzed records a completed country
func (r *Recorder) CountryAnalyzed(country string, records, clamped int) {
	r.recordsFetched.WithLabelValues(country).Add(float64(records))
	r.clampedPoints.WithLabelValues(country).Add(float64(clamped))
}

// CountryFailed records a skipped country
func (r *Recorder) CountryFailed(country string) {
	r.countryErrors.WithLabelValues(country).Inc()
}

// PlantsMapped records the plant count of one map group
func (r *Recorder) PlantsMapped(country, technology string, n int) {
	r.plantsMapped.WithLabelValues(country, technology).Set(float64(n))
}

// RunFinished records the duration and, when ok, the success time of a command
func (r *Recorder) RunFinished(command string, started time.Time, ok bool) {
	r.runDuration.WithLabelValues(command).Set(time.Since(started).Seconds())
	if ok {
		r.lastSuccessTS.WithLabelValues(command).SetToCurrentTime()
	}
}

// WriteTextfile atomically writes all metrics to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
