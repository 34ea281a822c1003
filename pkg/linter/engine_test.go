package linter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/observability"
)

// lineRule reports one finding per #define
func lineRule(name string) *mockRule {
	return &mockRule{
		name:     name,
		category: CategoryMacros,
		severity: SeverityWarning,
		check: func(file *csource.SourceFile, facts *csource.Facts, ctx *LintContext) []Finding {
			var findings []Finding
			for _, m := range facts.Macros {
				findings = append(findings, NewFinding(name, SeverityWarning, file.Token(m.NameTok).Pos, "macro %s", m.Name))
			}
			return findings
		},
	}
}

func panicRule(name string) *mockRule {
	return &mockRule{
		name:     name,
		severity: SeverityWarning,
		check: func(*csource.SourceFile, *csource.Facts, *LintContext) []Finding {
			panic("boom")
		},
	}
}

func newTestEngine(t *testing.T, config *Config, rules ...Rule) *Engine {
	t.Helper()
	registry := NewRuleRegistry()
	for _, r := range rules {
		registry.Register(r)
	}
	engine, err := NewEngine(config, registry, WithWorkers(2))
	require.NoError(t, err)
	return engine
}

func TestNewEngine_ConfigErrors(t *testing.T) {
	registry := NewRuleRegistry()
	registry.Register(lineRule("macro-count"))

	_, err := NewEngine(&Config{Rules: RulesConfig{Enable: []string{"nope"}}}, registry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRule))

	_, err = NewEngine(&Config{Output: OutputConfig{MaxSeverity: "fatal"}}, registry)
	assert.True(t, IsConfigError(err))

	registry.Register(lineRule("macro-count"))
	_, err = NewEngine(nil, registry)
	assert.True(t, errors.Is(err, ErrDuplicateRule))
}

func TestEngine_CheckFile(t *testing.T) {
	engine := newTestEngine(t, nil, lineRule("macro-count"))

	findings := engine.CheckFile(context.Background(), Input{
		Path:    "a.c",
		Content: []byte("#define A 1\nint x;\n#define B 2\n"),
	})

	require.Len(t, findings, 2)
	assert.Equal(t, "a.c", findings[0].File)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, 9, findings[0].Column)
	assert.Equal(t, "macro A", findings[0].Message)
	assert.Equal(t, 3, findings[1].Line)
}

func TestEngine_PanicIsolation(t *testing.T) {
	engine := newTestEngine(t, nil, lineRule("macro-count"), panicRule("explodes"))

	findings := engine.CheckFile(context.Background(), Input{Path: "a.c", Content: []byte("#define A 1\n")})

	require.Len(t, findings, 2)
	var internal []Finding
	for _, f := range findings {
		if f.RuleID == InternalErrorRule {
			internal = append(internal, f)
		}
	}
	require.Len(t, internal, 1)
	assert.Equal(t, SeverityError, internal[0].Severity)
	assert.Equal(t, 1, internal[0].Line)
	assert.Equal(t, 1, internal[0].Column)
	assert.Contains(t, internal[0].Message, "explodes")
}

func TestEngine_SeverityOverride(t *testing.T) {
	config := DefaultConfig()
	config.Rules.Severity["macro-count"] = "error"
	engine := newTestEngine(t, config, lineRule("macro-count"))

	findings := engine.CheckFile(context.Background(), Input{Path: "a.c", Content: []byte("#define A 1\n")})

	require.Len(t, findings, 1)
	assert.Equal(t, SeverityError, findings[0].Severity)
}

func TestEngine_PositionClamping(t *testing.T) {
	rule := &mockRule{
		name: "zero",
		check: func(*csource.SourceFile, *csource.Facts, *LintContext) []Finding {
			return []Finding{{RuleID: "zero", Severity: SeverityInfo, Message: "x"}}
		},
	}
	engine := newTestEngine(t, nil, rule)

	findings := engine.CheckFile(context.Background(), Input{Path: "z.c", Content: nil})

	require.Len(t, findings, 1)
	assert.Equal(t, "z.c", findings[0].File)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, 1, findings[0].Column)
}

func TestEngine_EvaluateOrderIndependent(t *testing.T) {
	engine := newTestEngine(t, nil, lineRule("r1"), lineRule("r2"))
	file := csource.NewSourceFile("a.c", []byte("#define A 1\n#define B 2\n"))
	facts := csource.ExtractFacts(file)

	forward, err := engine.Evaluate(file, facts, []string{"r1", "r2"})
	require.NoError(t, err)
	backward, err := engine.Evaluate(file, facts, []string{"r2", "r1"})
	require.NoError(t, err)

	key := func(fs []Finding) []string {
		out := make([]string, 0, len(fs))
		for _, f := range fs {
			out = append(out, fmt.Sprintf("%s:%d:%s", f.RuleID, f.Line, f.Message))
		}
		sort.Strings(out)
		return out
	}
	assert.Equal(t, key(forward), key(backward))

	_, err = engine.Evaluate(file, facts, []string{"missing"})
	assert.True(t, errors.Is(err, ErrUnknownRule))
}

func TestEngine_Run(t *testing.T) {
	engine := newTestEngine(t, nil, lineRule("macro-count"))

	inputs := make([]Input, 0, 10)
	for i := 0; i < 10; i++ {
		inputs = append(inputs, Input{
			Path:    fmt.Sprintf("f%d.c", i),
			Content: []byte(fmt.Sprintf("#define M%d 1\n", i)),
		})
	}

	result := engine.Run(context.Background(), inputs)

	assert.Equal(t, 10, result.Files)
	assert.Equal(t, 0, result.Skipped)
	assert.False(t, result.Cancelled)
	require.Len(t, result.Findings, 10)

	summary := Summarize(result)
	assert.Equal(t, 10, summary.Warnings)
	assert.Equal(t, 10, summary.TotalFindings)
}

func TestEngine_RunCancelled(t *testing.T) {
	engine := newTestEngine(t, nil, lineRule("macro-count"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := engine.Run(ctx, []Input{{Path: "a.c", Content: []byte("#define A 1\n")}, {Path: "b.c"}})

	assert.True(t, result.Cancelled)
	assert.Equal(t, 0, result.Files)
	assert.Equal(t, 2, result.Skipped)
	assert.Empty(t, result.Findings)
	assert.True(t, Summarize(result).Cancelled)
}

func TestEngine_RunCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	rule := &mockRule{
		name: "cancel-after-first",
		check: func(file *csource.SourceFile, _ *csource.Facts, _ *LintContext) []Finding {
			if calls.Add(1) == 1 {
				cancel()
			}
			return []Finding{{RuleID: "cancel-after-first", Severity: SeverityInfo, File: file.Path, Line: 1, Column: 1}}
		},
	}
	registry := NewRuleRegistry()
	registry.Register(rule)
	engine, err := NewEngine(nil, registry, WithWorkers(1))
	require.NoError(t, err)

	result := engine.Run(ctx, []Input{{Path: "a.c"}, {Path: "b.c"}, {Path: "c.c"}})

	assert.True(t, result.Cancelled)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "a.c", result.Findings[0].File)
}

func TestEngine_RunCancelledAfterLastFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rule := &mockRule{
		name: "cancel-on-check",
		check: func(file *csource.SourceFile, _ *csource.Facts, _ *LintContext) []Finding {
			cancel()
			return []Finding{{RuleID: "cancel-on-check", Severity: SeverityInfo, File: file.Path, Line: 1, Column: 1}}
		},
	}
	registry := NewRuleRegistry()
	registry.Register(rule)
	engine, err := NewEngine(nil, registry, WithWorkers(1))
	require.NoError(t, err)

	result := engine.Run(ctx, []Input{{Path: "a.c"}})

	require.Error(t, ctx.Err())
	assert.False(t, result.Cancelled, "every file finished")
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, result.Findings, 1)
}

func TestEngine_Cache(t *testing.T) {
	var calls atomic.Int32
	rule := &mockRule{
		name: "counting",
		check: func(*csource.SourceFile, *csource.Facts, *LintContext) []Finding {
			calls.Add(1)
			return []Finding{{RuleID: "counting", Severity: SeverityInfo, Line: 1, Column: 1}}
		},
	}
	registry := NewRuleRegistry()
	registry.Register(rule)

	cache := NewResultCache(16, time.Minute)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	engine, err := NewEngine(nil, registry, WithCache(cache), WithMetrics(metrics), WithLogger(observability.NopLogger()))
	require.NoError(t, err)

	in := Input{Path: "a.c", Content: []byte("int x;\n")}
	first := engine.CheckFile(context.Background(), in)
	second := engine.CheckFile(context.Background(), in)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	in.Content = []byte("int y;\n")
	engine.CheckFile(context.Background(), in)
	assert.Equal(t, int32(2), calls.Load())

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheMissesTotal))
}

func TestEngine_RunMetrics(t *testing.T) {
	registry := NewRuleRegistry()
	registry.Register(lineRule("macro-count"))
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	engine, err := NewEngine(nil, registry, WithMetrics(metrics))
	require.NoError(t, err)

	engine.Run(context.Background(), []Input{{Path: "a.c", Content: []byte("#define A 1\n")}})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FindingsTotal.WithLabelValues("macro-count", "warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("findings")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FilesCheckedTotal.WithLabelValues("checked")))
}
