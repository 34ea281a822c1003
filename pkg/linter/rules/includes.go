package rules

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// IncludeTier is the group an include belongs to. Groups must appear in
// increasing tier order.
type IncludeTier int

const (
	TierRelated IncludeTier = iota
	TierSystem
	TierThirdParty
	TierProject
)

func (t IncludeTier) String() string {
	switch t {
	case TierRelated:
		return "related header"
	case TierSystem:
		return "system"
	case TierThirdParty:
		return "third-party"
	default:
		return "project"
	}
}

// ClassifyInclude returns the tier of inc as included from filePath
func ClassifyInclude(filePath string, inc csource.IncludeDirective, cfg linter.IncludesConfig) IncludeTier {
	if isRelatedHeader(filePath, inc.HeaderName) {
		return TierRelated
	}
	for _, prefix := range cfg.ThirdPartyPrefixes {
		if prefix != "" && strings.HasPrefix(inc.HeaderName, prefix) {
			return TierThirdParty
		}
	}
	if inc.IsSystemHeader {
		return TierSystem
	}
	return TierProject
}

// isRelatedHeader reports whether header is the interface of the source
// file at filePath, i.e. foo.c including foo.h.
func isRelatedHeader(filePath, header string) bool {
	if csource.IsHeaderPath(filePath) {
		return false
	}
	base := filepath.Base(filePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return path.Base(header) == stem+".h"
}

// orderedIncludes returns the includes that take part in ordering checks
func orderedIncludes(facts *csource.Facts) []int {
	idxs := make([]int, 0, len(facts.Includes))
	for i, inc := range facts.Includes {
		if !inc.InConditional && !inc.IsComputed {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// IncludeOrderRule checks the order of include groups
type IncludeOrderRule struct {
	BaseRule
}

// NewIncludeOrderRule creates a new include-order rule
func NewIncludeOrderRule() *IncludeOrderRule {
	return &IncludeOrderRule{
		BaseRule: BaseRule{
			RuleName:        "include-order",
			RuleCategory:    linter.CategoryIncludes,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Includes must be ordered: related header, system, third-party, project",
		},
	}
}

// Check reports every include that appears after an include of a later tier
func (r *IncludeOrderRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	cfg := config(ctx).Includes
	findings := make([]linter.Finding, 0)

	highest := TierRelated
	for _, i := range orderedIncludes(facts) {
		inc := facts.Includes[i]
		tier := ClassifyInclude(file.Path, inc, cfg)
		if tier < highest {
			findings = append(findings, r.finding(file.Token(inc.Tok).Pos,
				"%s include %s should come before %s includes", tier, inc.HeaderName, highest))
			continue
		}
		highest = tier
	}
	return findings
}

// IncludeGroupingRule checks that include groups are separated by blank lines
type IncludeGroupingRule struct {
	BaseRule
}

// NewIncludeGroupingRule creates a new include-grouping rule
func NewIncludeGroupingRule() *IncludeGroupingRule {
	return &IncludeGroupingRule{
		BaseRule: BaseRule{
			RuleName:        "include-grouping",
			RuleCategory:    linter.CategoryIncludes,
			RuleSeverity:    linter.SeverityInfo,
			RuleDescription: "Include groups should be separated by a blank line",
		},
	}
}

// Check reports adjacent includes of different tiers
func (r *IncludeGroupingRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	cfg := config(ctx).Includes
	findings := make([]linter.Finding, 0)

	ordered := orderedIncludes(facts)
	for k := 1; k < len(ordered); k++ {
		prevIdx, idx := ordered[k-1], ordered[k]
		if prevIdx != idx-1 {
			continue
		}
		prev, inc := facts.Includes[prevIdx], facts.Includes[idx]
		if inc.BlankLineBefore || !adjacentLines(file, prev, inc) {
			continue
		}
		prevTier := ClassifyInclude(file.Path, prev, cfg)
		tier := ClassifyInclude(file.Path, inc, cfg)
		if prevTier != tier {
			findings = append(findings, r.finding(file.Token(inc.Tok).Pos,
				"separate %s includes from %s includes with a blank line", tier, prevTier))
		}
	}
	return findings
}

// adjacentLines reports whether nothing but comments separates two includes
func adjacentLines(file *csource.SourceFile, prev, next csource.IncludeDirective) bool {
	for i := prev.Tok + 1; i < next.Tok; i++ {
		t := file.Tokens[i]
		if t.Pos.Line > prev.Line && t.IsSignificant() {
			return false
		}
	}
	return true
}

// IncludeWhatYouUseRule checks symbols against a configured symbol index
type IncludeWhatYouUseRule struct {
	BaseRule
}

// NewIncludeWhatYouUseRule creates a new include-what-you-use rule
func NewIncludeWhatYouUseRule() *IncludeWhatYouUseRule {
	return &IncludeWhatYouUseRule{
		BaseRule: BaseRule{
			RuleName:        "include-what-you-use",
			RuleCategory:    linter.CategoryIncludes,
			RuleSeverity:    linter.SeverityInfo,
			RuleDescription: "Files should include the header declaring each indexed symbol they use",
		},
	}
}

// Check reports the first use of each indexed symbol whose header is not
// included. Without a symbol index the rule is silent.
func (r *IncludeWhatYouUseRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	index := config(ctx).Includes.SymbolIndex
	findings := make([]linter.Finding, 0)
	if len(index) == 0 {
		return findings
	}

	local := make(map[string]bool)
	for _, m := range facts.Macros {
		local[m.Name] = true
	}
	for _, fn := range facts.Functions {
		if fn.IsDefinition {
			local[fn.Name] = true
		}
	}

	reported := make(map[string]bool)
	for cp, ti := range facts.Code {
		t := file.Tokens[ti]
		if t.Kind != csource.TokenIdentifier || reported[t.Text] || local[t.Text] {
			continue
		}
		header, ok := index[t.Text]
		if !ok {
			continue
		}
		if cp > 0 {
			if prev := file.Tokens[facts.Code[cp-1]]; prev.IsPunct(".") || prev.IsPunct("->") {
				continue
			}
		}
		reported[t.Text] = true
		if includesHeader(file.Path, facts, header) {
			continue
		}
		findings = append(findings, r.finding(t.Pos,
			"%s is declared in %s, which is not included", t.Text, header))
	}
	return findings
}

func includesHeader(filePath string, facts *csource.Facts, header string) bool {
	self := filepath.ToSlash(filePath)
	if self == header || strings.HasSuffix(self, "/"+header) {
		return true
	}
	for _, inc := range facts.Includes {
		if inc.HeaderName == header || strings.HasSuffix(inc.HeaderName, "/"+header) {
			return true
		}
	}
	return false
}

// HeaderSelfIncludeRule flags headers that include themselves
type HeaderSelfIncludeRule struct {
	BaseRule
}

// NewHeaderSelfIncludeRule creates a new header-self-include rule
func NewHeaderSelfIncludeRule() *HeaderSelfIncludeRule {
	return &HeaderSelfIncludeRule{
		BaseRule: BaseRule{
			RuleName:        "header-self-include",
			RuleCategory:    linter.CategoryIncludes,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Headers must not include themselves",
		},
	}
}

// Check reports quoted includes naming the file itself. <...> includes go
// through the search path and are not checked.
func (r *HeaderSelfIncludeRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	findings := make([]linter.Finding, 0)
	if !file.IsHeader() {
		return findings
	}

	self := filepath.ToSlash(filepath.Clean(file.Path))
	for _, inc := range facts.Includes {
		if inc.IsComputed || inc.IsSystemHeader || inc.HeaderName == "" {
			continue
		}
		name := path.Clean(inc.HeaderName)
		if self == name || strings.HasSuffix(self, "/"+name) {
			findings = append(findings, r.finding(file.Token(inc.Tok).Pos,
				"header includes itself via %s", inc.HeaderName))
		}
	}
	return findings
}
