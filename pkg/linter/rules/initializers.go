package rules

import (
	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// DesignatedInitializerRule checks that aggregate initializers name their fields
type DesignatedInitializerRule struct {
	BaseRule
}

// NewDesignatedInitializerRule creates a new designated-initializer rule
func NewDesignatedInitializerRule() *DesignatedInitializerRule {
	return &DesignatedInitializerRule{
		BaseRule: BaseRule{
			RuleName:        "designated-initializer",
			RuleCategory:    linter.CategoryInitialization,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Struct and union initializers must use .field = value for every member",
		},
	}
}

// Check reports positional elements of struct and union initializers.
// Fully positional initializers get a single finding; in mixed ones each
// positional element is reported. {0} and {} are accepted.
func (r *DesignatedInitializerRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	findings := make([]linter.Finding, 0)
	for _, bi := range facts.Initializers {
		if !bi.IsAggregate || bi.IsArray || len(bi.Elements) == 0 || isZeroInit(file, bi) {
			continue
		}

		designated := 0
		for _, e := range bi.Elements {
			if e.Designated {
				designated++
			}
		}

		if designated == 0 {
			findings = append(findings, r.finding(file.Token(bi.Open).Pos,
				"initializer of %s should use designated initializers (.field = value)", bi.TypeName))
			continue
		}
		for _, e := range bi.Elements {
			if !e.Designated {
				findings = append(findings, r.finding(file.Token(e.Span.Start).Pos,
					"positional element %s in designated initializer of %s", file.Text(e.Span), bi.TypeName))
			}
		}
	}
	return findings
}

func isZeroInit(file *csource.SourceFile, bi csource.BraceInitializer) bool {
	if len(bi.Elements) != 1 {
		return false
	}
	e := bi.Elements[0]
	return e.Span.Len() == 1 && file.Token(e.Span.Start).Is(csource.TokenNumber, "0")
}
