package rules

import (
	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// TypedefNameMismatchRule checks that struct and union typedefs reuse the tag
type TypedefNameMismatchRule struct {
	BaseRule
}

// NewTypedefNameMismatchRule creates a new typedef-name-mismatch rule
func NewTypedefNameMismatchRule() *TypedefNameMismatchRule {
	return &TypedefNameMismatchRule{
		BaseRule: BaseRule{
			RuleName:        "typedef-name-mismatch",
			RuleCategory:    linter.CategoryTypes,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "typedef struct Name { ... } Name; must use the same identifier twice",
		},
	}
}

// Check compares typedef names with the struct or union tag
func (r *TypedefNameMismatchRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	findings := make([]linter.Finding, 0)
	for _, td := range facts.Typedefs {
		if (td.Kind != "struct" && td.Kind != "union") || td.Tag == "" {
			continue
		}
		for _, n := range td.Names {
			if n.IsPointer || n.IsFunctionPointer || n.Name == td.Tag {
				continue
			}
			findings = append(findings, r.finding(file.Token(n.Tok).Pos,
				"typedef name %s differs from %s tag %s", n.Name, td.Kind, td.Tag))
		}
	}
	return findings
}

// TypedefPointerRule flags typedefs that hide pointers
type TypedefPointerRule struct {
	BaseRule
}

// NewTypedefPointerRule creates a new typedef-pointer rule
func NewTypedefPointerRule() *TypedefPointerRule {
	return &TypedefPointerRule{
		BaseRule: BaseRule{
			RuleName:        "typedef-pointer",
			RuleCategory:    linter.CategoryTypes,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Pointer types must not be hidden behind a typedef",
		},
	}
}

// Check reports pointer typedefs. Function pointer typedefs are allowed.
func (r *TypedefPointerRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	findings := make([]linter.Finding, 0)
	for _, td := range facts.Typedefs {
		for _, n := range td.Names {
			if n.IsPointer && !n.IsFunctionPointer {
				findings = append(findings, r.finding(file.Token(n.Tok).Pos,
					"typedef %s hides a pointer type", n.Name))
			}
		}
	}
	return findings
}
