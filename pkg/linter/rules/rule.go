// Package rules contains the built-in coding-standard rules.
package rules

import (
	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// BaseRule provides common functionality for rules
type BaseRule struct {
	RuleName        string
	RuleCategory    linter.Category
	RuleSeverity    linter.Severity
	RuleDescription string
}

func (r *BaseRule) Name() string              { return r.RuleName }
func (r *BaseRule) Category() linter.Category { return r.RuleCategory }
func (r *BaseRule) Severity() linter.Severity { return r.RuleSeverity }
func (r *BaseRule) Description() string       { return r.RuleDescription }

// finding creates a finding of this rule at pos
func (r *BaseRule) finding(pos csource.Position, format string, args ...interface{}) linter.Finding {
	return linter.NewFinding(r.RuleName, r.RuleSeverity, pos, format, args...)
}

func baseDir(ctx *linter.LintContext) string {
	if ctx == nil {
		return ""
	}
	return ctx.BaseDir
}

// config returns the run configuration, or the defaults when none is set
func config(ctx *linter.LintContext) *linter.Config {
	if ctx == nil || ctx.Config == nil {
		return linter.DefaultConfig()
	}
	return ctx.Config
}
