package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/platinummonkey/cstyle/pkg/config"
	"github.com/platinummonkey/cstyle/pkg/linter"
	"github.com/platinummonkey/cstyle/pkg/observability"
	"github.com/platinummonkey/cstyle/pkg/report"
)

// checkOptions holds the flags shared by check and watch
type checkOptions struct {
	rules       []string
	disable     []string
	format      string
	maxSeverity string
	configFile  string
	workers     int
	color       bool
	metricsFile string
}

func addCheckFlags(flags *pflag.FlagSet, opts *checkOptions, env *config.Config) {
	flags.StringSliceVar(&opts.rules, "rules", nil, "Only run these rules (comma-separated rule IDs)")
	flags.StringSliceVar(&opts.disable, "disable", nil, "Do not run these rules (comma-separated rule IDs)")
	flags.StringVar(&opts.format, "format", "text", "Output format (text, record, json, github)")
	flags.StringVar(&opts.maxSeverity, "max-severity", "error", "Lowest severity that fails the run (error, warning, info)")
	flags.StringVar(&opts.configFile, "config", env.Check.ConfigFile, "Path to configuration file (default: .cstyle.yaml in the working directory)")
	flags.IntVar(&opts.workers, "workers", env.Check.Workers, "Number of files checked concurrently")
	flags.BoolVar(&opts.color, "color", env.Check.Color, "Color text output")
	flags.StringVar(&opts.metricsFile, "metrics-file", env.Observability.MetricsFile, "Write Prometheus metrics to this file after the run")
}

// settings is the merged result of the YAML file, the environment and flags
type settings struct {
	config  *linter.Config
	format  report.Format
	floor   linter.Severity
	workers int
	color   bool
}

// resolveSettings merges configuration layers, lowest precedence first: the
// YAML file, CSTYLE_* environment variables, then flags set on the command
// line.
func resolveSettings(flags *pflag.FlagSet, opts *checkOptions, env *config.Config) (*settings, error) {
	var (
		cfg *linter.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = linter.LoadConfig(opts.configFile)
	} else {
		cfg, err = linter.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if env.Check.Format != "" {
		cfg.Output.Format = env.Check.Format
	}
	if env.Check.MaxSeverity != "" {
		cfg.Output.MaxSeverity = env.Check.MaxSeverity
	}

	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("max-severity") {
		cfg.Output.MaxSeverity = opts.maxSeverity
	}
	if flags.Changed("rules") {
		cfg.Rules.Enable = opts.rules
	}
	if flags.Changed("disable") {
		cfg.Rules.Disable = append(cfg.Rules.Disable, opts.disable...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{
		config:  cfg,
		format:  report.FormatText,
		floor:   linter.SeverityError,
		workers: opts.workers,
		color:   opts.color,
	}
	if cfg.Output.Format != "" {
		if s.format, err = report.ParseFormat(cfg.Output.Format); err != nil {
			return nil, err
		}
	}
	if cfg.Output.MaxSeverity != "" {
		if s.floor, err = linter.ParseSeverity(cfg.Output.MaxSeverity); err != nil {
			return nil, err
		}
	}
	if s.workers < 1 {
		return nil, &linter.ConfigError{Field: "workers", Err: errWorkers}
	}
	return s, nil
}

func newCheckCommand(a *app) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Check C files against the coding standard",
		Long: `Check C sources and headers. Directories are searched recursively for .c and
.h files; hidden, vendor and third_party directories are skipped.

Exit status is 0 when no finding reaches --max-severity, 1 when one does,
2 on usage or configuration errors and 130 when interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd.Context(), cmd.Flags(), opts, args)
		},
	}
	addCheckFlags(cmd.Flags(), opts, a.env)
	return cmd
}

func (a *app) runCheck(ctx context.Context, flags *pflag.FlagSet, opts *checkOptions, args []string) error {
	s, err := resolveSettings(flags, opts, a.env)
	if err != nil {
		return usageError(err)
	}

	runID := uuid.NewString()
	logger := a.logger.WithField("run_id", runID)
	ctx = observability.WithLogger(observability.WithRunID(ctx, runID), logger)

	providers, err := observability.InitOTel(ctx, a.env.OTel(), logger)
	if err != nil {
		logger.WithError(err).Warn("telemetry disabled")
	}
	defer func() {
		_ = observability.ShutdownOTel(context.Background(), providers, logger)
	}()

	ctx, span := observability.Tracer().Start(ctx, "cstyle.check")
	defer span.End()
	logger = observability.UpdateLoggerWithTraceContext(ctx, logger)
	ctx = observability.WithLogger(ctx, logger)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	if providers != nil {
		otelMetrics, err := observability.NewOTelMetrics()
		if err != nil {
			logger.WithError(err).Warn("OpenTelemetry metrics disabled")
		} else {
			metrics.AttachOTel(otelMetrics)
		}
	}

	engine, err := linter.NewEngine(s.config, newRegistry(),
		linter.WithLogger(logger),
		linter.WithMetrics(metrics),
		linter.WithWorkers(s.workers),
	)
	if err != nil {
		return usageError(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.checkOnce(ctx, engine, s, args)
	if err != nil {
		return err
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			logger.WithError(err).Warn("failed to write metrics")
		}
	}

	if code := report.ExitCode(result.Findings, s.floor, result.Cancelled); code != report.ExitClean {
		return &ExitError{Code: code}
	}
	return nil
}

// checkOnce discovers and reads the files under args, runs engine over them
// and renders the result to stdout
func (a *app) checkOnce(ctx context.Context, engine *linter.Engine, s *settings, args []string) (*linter.RunResult, error) {
	files, err := DiscoverFiles(args, s.config.Ignore)
	if err != nil {
		return nil, usageError(err)
	}
	inputs, err := readInputs(files, args)
	if err != nil {
		return nil, usageError(err)
	}

	result := engine.Run(ctx, inputs)

	reporter := report.NewReporter(s.format,
		report.WithColor(s.color),
		report.WithLogger(observability.FromContext(ctx)),
	)
	if err := reporter.Render(a.stdout, result); err != nil {
		return nil, &ExitError{Code: report.ExitUsage, Err: err}
	}
	return result, nil
}
