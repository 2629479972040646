// Package metrics records batch run metrics with Prometheus collectors.
//
// A report run is a one-shot process, so metrics are not scraped; they are
// written in text exposition format to a file for the node exporter's
// textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xtxerr/nmonreport/internal/nmon"
)

// Host outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry

	hosts          *prometheus.CounterVec
	lines          *prometheus.CounterVec
	samples        *prometheus.CounterVec
	points         *prometheus.CounterVec
	omitted        *prometheus.CounterVec
	hostDuration   prometheus.Histogram
	lastRunSeconds prometheus.Gauge
}

// New creates the run collectors and registers them on reg. A nil reg
// gets a fresh registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		hosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nmonreport_hosts_total",
			Help: "Hosts processed, by outcome.",
		}, []string{"outcome"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nmonreport_lines_total",
			Help: "Input lines read, by disposition.",
		}, []string{"kind"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nmonreport_samples_total",
			Help: "Samples collected, by tag.",
		}, []string{"tag"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nmonreport_points_total",
			Help: "Aggregated points produced, by series.",
		}, []string{"series"}),
		omitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nmonreport_series_omitted_total",
			Help: "Series omitted because no samples survived filtering, by tag.",
		}, []string{"tag"}),
		hostDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nmonreport_host_duration_seconds",
			Help:    "Time to parse and aggregate one host.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		lastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nmonreport_last_run_timestamp_seconds",
			Help: "Unix time the run finished.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.hosts, m.lines, m.samples, m.points, m.omitted, m.hostDuration, m.lastRunSeconds,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// HostDone records the outcome and duration of one host.
func (m *Metrics) HostDone(outcome string, elapsed time.Duration) {
	m.hosts.WithLabelValues(outcome).Inc()
	m.hostDuration.Observe(elapsed.Seconds())
}

// ObserveStats records the line and sample counters of a host run.
func (m *Metrics) ObserveStats(stats nmon.Stats) {
	m.lines.WithLabelValues("read").Add(float64(stats.Lines))
	m.lines.WithLabelValues("malformed").Add(float64(stats.Malformed))
	m.lines.WithLabelValues("marker").Add(float64(stats.Markers))
	m.lines.WithLabelValues("filtered_hour").Add(float64(stats.Collector.FilteredHour))
	m.lines.WithLabelValues("filtered_date").Add(float64(stats.Collector.FilteredDate))
}

// ObserveSamples records n samples collected for tag.
func (m *Metrics) ObserveSamples(tag string, n int) {
	m.samples.WithLabelValues(tag).Add(float64(n))
}

// ObservePoints records n points produced for series.
func (m *Metrics) ObservePoints(series string, n int) {
	m.points.WithLabelValues(series).Add(float64(n))
}

// SeriesOmitted records an omitted series.
func (m *Metrics) SeriesOmitted(tag string) {
	m.omitted.WithLabelValues(tag).Inc()
}

// Finish stamps the run completion time.
func (m *Metrics) Finish(now time.Time) {
	m.lastRunSeconds.Set(float64(now.Unix()))
}

// WriteTextfile writes every registered metric to path in text exposition
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
