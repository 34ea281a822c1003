package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of a checker run
type Metrics struct {
	// File metrics
	FilesCheckedTotal *prometheus.CounterVec
	FileCheckDuration prometheus.Histogram

	// Rule metrics
	FindingsTotal   *prometheus.CounterVec
	RuleFaultsTotal *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	registry *prometheus.Registry
	otel     *OTelMetrics
}

// AttachOTel mirrors every recorded value into o as well
func (m *Metrics) AttachOTel(o *OTelMetrics) {
	if m != nil {
		m.otel = o
	}
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		FilesCheckedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cstyle_files_checked_total",
				Help: "Total number of files processed",
			},
			[]string{"status"},
		),
		FileCheckDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cstyle_file_check_duration_seconds",
				Help:    "Time spent scanning, parsing and evaluating one file",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		FindingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cstyle_findings_total",
				Help: "Total number of findings reported",
			},
			[]string{"rule", "severity"},
		),
		RuleFaultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cstyle_rule_faults_total",
				Help: "Total number of rule evaluations that panicked",
			},
			[]string{"rule"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cstyle_cache_hits_total",
				Help: "Total number of result cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cstyle_cache_misses_total",
				Help: "Total number of result cache misses",
			},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cstyle_runs_total",
				Help: "Total number of checker runs",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cstyle_run_duration_seconds",
				Help:    "Checker run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		registry: registry,
	}

	if registry != nil {
		registry.MustRegister(
			m.FilesCheckedTotal,
			m.FileCheckDuration,
			m.FindingsTotal,
			m.RuleFaultsTotal,
			m.CacheHitsTotal,
			m.CacheMissesTotal,
			m.RunsTotal,
			m.RunDuration,
		)
	}

	return m
}

// RecordFile records one processed file. A nil receiver is a no-op.
func (m *Metrics) RecordFile(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.FilesCheckedTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		m.FileCheckDuration.Observe(duration.Seconds())
	}
	if m.otel != nil {
		m.otel.recordFile(context.Background(), status, duration)
	}
}

// RecordFinding records one reported finding
func (m *Metrics) RecordFinding(rule, severity string) {
	if m == nil {
		return
	}
	m.FindingsTotal.WithLabelValues(rule, severity).Inc()
	if m.otel != nil {
		m.otel.recordFinding(context.Background(), rule, severity)
	}
}

// RecordRuleFault records a rule that panicked
func (m *Metrics) RecordRuleFault(rule string) {
	if m == nil {
		return
	}
	m.RuleFaultsTotal.WithLabelValues(rule).Inc()
	if m.otel != nil {
		m.otel.recordRuleFault(context.Background(), rule)
	}
}

// RecordCache records a result cache lookup
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
	if m.otel != nil {
		m.otel.recordCache(context.Background(), hit)
	}
}

// RecordRun records a completed run
func (m *Metrics) RecordRun(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
	if m.otel != nil {
		m.otel.recordRun(context.Background(), status, duration)
	}
}

// WriteTextfile writes the registry in the Prometheus text format, suitable
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || m.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
