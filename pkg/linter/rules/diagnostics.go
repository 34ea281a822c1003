package rules

import (
	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// LexErrorRule reports malformed tokens found by the scanner
type LexErrorRule struct {
	BaseRule
}

// NewLexErrorRule creates a new lex-error rule
func NewLexErrorRule() *LexErrorRule {
	return &LexErrorRule{
		BaseRule: BaseRule{
			RuleName:        "lex-error",
			RuleCategory:    linter.CategoryDiagnostics,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Source must not contain unterminated comments, strings or characters",
		},
	}
}

// Check reports one finding per error token. Unterminated constructs are
// reported where the input ran out.
func (r *LexErrorRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	findings := make([]linter.Finding, 0)
	for _, t := range file.Tokens {
		if t.Kind == csource.TokenError {
			findings = append(findings, r.finding(t.ErrorPosition(), "%s", t.Message))
		}
	}
	return findings
}

// StructuralAmbiguityRule reports regions the parser could not analyze
type StructuralAmbiguityRule struct {
	BaseRule
}

// NewStructuralAmbiguityRule creates a new structural-ambiguity rule
func NewStructuralAmbiguityRule() *StructuralAmbiguityRule {
	return &StructuralAmbiguityRule{
		BaseRule: BaseRule{
			RuleName:        "structural-ambiguity",
			RuleCategory:    linter.CategoryDiagnostics,
			RuleSeverity:    linter.SeverityInfo,
			RuleDescription: "Reports regions that could not be analyzed",
		},
	}
}

// Check converts parser ambiguities into findings
func (r *StructuralAmbiguityRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	findings := make([]linter.Finding, 0, len(facts.Ambiguities))
	for _, a := range facts.Ambiguities {
		findings = append(findings, r.finding(a.Pos, "could not analyze region: %s", a.Reason))
	}
	return findings
}
