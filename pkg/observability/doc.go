// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes the diagnostics of the checker itself: logrus
// based logging, run metrics that can be written for the node_exporter
// textfile collector, and optional OTLP export of traces and metrics.
// Findings are never written here; they belong to pkg/report.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLoggerWithFormat(observability.InfoLevel, os.Stderr, observability.TextFormat)
//	logger.WithField("files", 12).Info("starting run")
//
// Context-aware logging:
//
//	ctx = observability.WithRunID(ctx, uuid.NewString())
//	observability.FromContext(ctx).WithError(err).Warn("re-check failed")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.RecordFinding("macro-parenthesization", "warning")
//	err := metrics.WriteTextfile("/var/lib/node_exporter/cstyle.prom")
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, cfg.OTel(), logger)
//	defer observability.ShutdownOTel(context.Background(), providers, logger)
//
// When providers are installed, NewOTelMetrics instruments can be attached
// to Metrics with AttachOTel so every value is exported over OTLP as well.
//
// # Panic Recovery
//
// MustRecover turns a recovered panic into an error; the rule engine uses it
// to report a failing rule as an internal-error finding.
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/linter: Records metrics and spans per file
package observability
