package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds OpenTelemetry metric instruments. They mirror the
// Prometheus metrics and are exported through the global meter provider
// installed by InitOTel.
type OTelMetrics struct {
	filesChecked metric.Int64Counter
	fileDuration metric.Float64Histogram
	findings     metric.Int64Counter
	ruleFaults   metric.Int64Counter
	cacheLookups metric.Int64Counter
	runs         metric.Int64Counter
	runDuration  metric.Float64Histogram
}

// NewOTelMetrics creates a new OTel metrics instance
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter(TracerName)

	m := &OTelMetrics{}
	var err error

	m.filesChecked, err = meter.Int64Counter(
		"cstyle.files.checked",
		metric.WithDescription("Files processed, by status"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create files checked counter: %w", err)
	}

	m.fileDuration, err = meter.Float64Histogram(
		"cstyle.file.duration",
		metric.WithDescription("Time to scan, parse and evaluate one file"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file duration histogram: %w", err)
	}

	m.findings, err = meter.Int64Counter(
		"cstyle.findings",
		metric.WithDescription("Findings reported, by rule and severity"),
		metric.WithUnit("{finding}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create findings counter: %w", err)
	}

	m.ruleFaults, err = meter.Int64Counter(
		"cstyle.rule.faults",
		metric.WithDescription("Rules that panicked while checking a file"),
		metric.WithUnit("{fault}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule faults counter: %w", err)
	}

	m.cacheLookups, err = meter.Int64Counter(
		"cstyle.cache.lookups",
		metric.WithDescription("Result cache lookups, by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache lookups counter: %w", err)
	}

	m.runs, err = meter.Int64Counter(
		"cstyle.runs",
		metric.WithDescription("Completed runs, by status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runs counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"cstyle.run.duration",
		metric.WithDescription("Wall time of a run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	return m, nil
}

func (m *OTelMetrics) recordFile(ctx context.Context, status string, duration time.Duration) {
	m.filesChecked.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if duration > 0 {
		m.fileDuration.Record(ctx, duration.Seconds())
	}
}

func (m *OTelMetrics) recordFinding(ctx context.Context, rule, severity string) {
	m.findings.Add(ctx, 1, metric.WithAttributes(
		attribute.String("rule", rule),
		attribute.String("severity", severity),
	))
}

func (m *OTelMetrics) recordRuleFault(ctx context.Context, rule string) {
	m.ruleFaults.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}

func (m *OTelMetrics) recordCache(ctx context.Context, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *OTelMetrics) recordRun(ctx context.Context, status string, duration time.Duration) {
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.runDuration.Record(ctx, duration.Seconds())
}
