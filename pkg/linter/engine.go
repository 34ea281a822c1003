package linter

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/observability"
)

// InternalErrorRule is the rule ID of findings produced when a rule panics
const InternalErrorRule = "internal-error"

// Input is one file to check, already read into memory
type Input struct {
	Path    string
	Content []byte
	BaseDir string // directory argument Path was found under, if any
}

// RunResult contains the merged result of checking many files
type RunResult struct {
	Files     int // files evaluated
	Skipped   int // files not started because the run was cancelled
	Cancelled bool
	Findings  []Finding
}

// Engine orchestrates scanning, fact extraction and rule evaluation
type Engine struct {
	config      *Config
	registry    *RuleRegistry
	rules       []Rule
	fingerprint string

	logger  *observability.Logger
	metrics *observability.Metrics
	cache   *ResultCache
	tracer  trace.Tracer
	workers int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *observability.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records run metrics into m
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithCache memoizes per-file findings in c
func WithCache(c *ResultCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithWorkers bounds the number of files checked concurrently
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates an engine running the rules that config enables from
// registry. Unknown rule IDs and invalid values are reported as ConfigError.
func NewEngine(config *Config, registry *RuleRegistry, opts ...Option) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	rules, err := registry.GetEnabledRules(config)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:      config,
		registry:    registry,
		rules:       rules,
		fingerprint: config.Fingerprint(),
		logger:      observability.NopLogger(),
		tracer:      observability.Tracer(),
		workers:     runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Rules returns the enabled rules, sorted by name
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Config returns the engine configuration
func (e *Engine) Config() *Config {
	return e.config
}

// Evaluate runs the named rules over one file's facts. The result does not
// depend on the order of ruleIDs.
func (e *Engine) Evaluate(file *csource.SourceFile, facts *csource.Facts, ruleIDs []string) ([]Finding, error) {
	rules := make([]Rule, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		rule, ok := e.registry.GetRule(id)
		if !ok {
			return nil, &ConfigError{Field: "rule", Value: id, Err: ErrUnknownRule}
		}
		rules = append(rules, rule)
	}
	return e.evaluate(file, facts, rules, ""), nil
}

func (e *Engine) evaluate(file *csource.SourceFile, facts *csource.Facts, rules []Rule, baseDir string) []Finding {
	lctx := &LintContext{
		FilePath: file.Path,
		BaseDir:  baseDir,
		Config:   e.config,
	}

	findings := make([]Finding, 0)
	for _, rule := range rules {
		findings = append(findings, e.runRule(rule, file, facts, lctx)...)
	}
	return findings
}

// runRule evaluates one rule. A panicking rule yields a single
// internal-error finding and does not affect other rules.
func (e *Engine) runRule(rule Rule, file *csource.SourceFile, facts *csource.Facts, lctx *LintContext) (findings []Finding) {
	defer func() {
		if err := observability.MustRecover(recover()); err != nil {
			e.metrics.RecordRuleFault(rule.Name())
			e.logger.WithFields(map[string]interface{}{
				"rule": rule.Name(),
				"file": file.Path,
			}).WithError(err).Error("rule failed")

			findings = []Finding{{
				RuleID:   InternalErrorRule,
				Severity: SeverityError,
				File:     file.Path,
				Line:     1,
				Column:   1,
				Message:  fmt.Sprintf("rule %s failed: %v", rule.Name(), err),
			}}
		}
	}()

	findings = rule.Check(file, facts, lctx)

	override, hasOverride := e.config.SeverityOverride(rule.Name())
	for i := range findings {
		if hasOverride {
			findings[i].Severity = override
		}
		if findings[i].File == "" {
			findings[i].File = file.Path
		}
		if findings[i].Line < 1 {
			findings[i].Line = 1
		}
		if findings[i].Column < 1 {
			findings[i].Column = 1
		}
	}
	return findings
}

// CheckFile scans, parses and evaluates one file with the enabled rules
func (e *Engine) CheckFile(ctx context.Context, in Input) []Finding {
	_, span := e.tracer.Start(ctx, "cstyle.check_file",
		trace.WithAttributes(attribute.String("file.path", in.Path)))
	defer span.End()

	var key string
	if e.cache != nil {
		key = CacheKey(in.Path, in.Content, e.fingerprint+"\x00"+in.BaseDir)
		if findings, ok := e.cache.Get(key); ok {
			e.metrics.RecordCache(true)
			e.metrics.RecordFile("cached", 0)
			span.SetAttributes(attribute.Bool("cstyle.cached", true))
			return findings
		}
		e.metrics.RecordCache(false)
	}

	start := time.Now()
	file := csource.NewSourceFile(in.Path, in.Content)
	facts := csource.ExtractFacts(file)
	findings := e.evaluate(file, facts, e.rules, in.BaseDir)
	e.metrics.RecordFile("checked", time.Since(start))

	if e.cache != nil {
		e.cache.Add(key, findings)
	}

	span.SetAttributes(
		attribute.Int("cstyle.tokens", len(file.Tokens)),
		attribute.Int("cstyle.findings", len(findings)),
	)
	return findings
}

// Run checks inputs on a bounded worker pool. Files are independent, so each
// worker writes only its own result slot and results are merged after all
// workers finish. When ctx is cancelled, files that have not started are
// skipped and the result is marked cancelled; findings of completed files
// are kept. A run whose every file finished is complete even if ctx was
// cancelled afterwards.
func (e *Engine) Run(ctx context.Context, inputs []Input) *RunResult {
	ctx, span := e.tracer.Start(ctx, "cstyle.run",
		trace.WithAttributes(attribute.Int("cstyle.files", len(inputs))))
	defer span.End()

	start := time.Now()
	logger := observability.FromContext(observability.WithLogger(ctx, e.logger))
	logger.WithFields(map[string]interface{}{
		"files":   len(inputs),
		"workers": e.workers,
		"rules":   len(e.rules),
	}).Debug("starting run")

	perFile := make([][]Finding, len(inputs))
	done := make([]bool, len(inputs))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			perFile[i] = e.CheckFile(ctx, in)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	result := &RunResult{Findings: make([]Finding, 0)}
	for i := range inputs {
		if !done[i] {
			result.Skipped++
			continue
		}
		result.Files++
		result.Findings = append(result.Findings, perFile[i]...)
	}
	result.Cancelled = result.Skipped > 0

	for _, f := range result.Findings {
		e.metrics.RecordFinding(f.RuleID, string(f.Severity))
	}
	for i := 0; i < result.Skipped; i++ {
		e.metrics.RecordFile("skipped", 0)
	}

	status := "clean"
	switch {
	case result.Cancelled:
		status = "cancelled"
		span.SetStatus(codes.Error, "cancelled")
	case len(result.Findings) > 0:
		status = "findings"
	}
	e.metrics.RecordRun(status, time.Since(start))

	logger.WithFields(map[string]interface{}{
		"files":    result.Files,
		"skipped":  result.Skipped,
		"findings": len(result.Findings),
		"status":   status,
		"duration": time.Since(start).String(),
	}).Debug("run finished")

	return result
}
