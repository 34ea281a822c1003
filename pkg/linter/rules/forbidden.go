package rules

import (
	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// DefaultForbiddenFunctions maps unsafe libc functions to their replacements
var DefaultForbiddenFunctions = map[string]string{
	"gets":     "fgets(buffer, size, stdin)",
	"strcpy":   "strlcpy(dest, src, dest_size) or strncpy(dest, src, n)",
	"strcat":   "strlcat(dest, src, dest_size) or strncat(dest, src, n)",
	"sprintf":  "snprintf(buffer, size, ...)",
	"vsprintf": "vsnprintf(buffer, size, ap)",
	"scanf":    "fgets and sscanf with field widths",
	"fscanf":   "fgets and sscanf with field widths",
	"sscanf":   "sscanf with field widths on every conversion",
	"tmpnam":   "mkstemp(template) or tmpfile()",
	"getwd":    "getcwd(buffer, size)",
}

// ForbiddenFunctionRule flags calls to unsafe libc functions
type ForbiddenFunctionRule struct {
	BaseRule
}

// NewForbiddenFunctionRule creates a new forbidden-function rule
func NewForbiddenFunctionRule() *ForbiddenFunctionRule {
	return &ForbiddenFunctionRule{
		BaseRule: BaseRule{
			RuleName:        "forbidden-function",
			RuleCategory:    linter.CategorySafety,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Unbounded libc string and input functions must not be called",
		},
	}
}

// forbidden merges the default table with the configured one. A configured
// entry overrides the default suggestion.
func forbidden(cfg *linter.Config) map[string]string {
	table := make(map[string]string, len(DefaultForbiddenFunctions)+len(cfg.ForbiddenFunctions))
	for name, suggestion := range DefaultForbiddenFunctions {
		table[name] = suggestion
	}
	for name, suggestion := range cfg.ForbiddenFunctions {
		table[name] = suggestion
	}
	return table
}

// Check reports each call of a forbidden function, in code and in macro
// bodies
func (r *ForbiddenFunctionRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	table := forbidden(config(ctx))

	declared := make(map[int]bool, len(facts.Functions))
	for _, fn := range facts.Functions {
		declared[fn.NameTok] = true
	}

	findings := r.calls(file, facts.Code, declared, table)
	for _, m := range facts.Macros {
		findings = append(findings, r.calls(file, file.Significant(m.Body), declared, table)...)
	}
	return findings
}

// calls scans the token indexes idxs for calls of functions in table
func (r *ForbiddenFunctionRule) calls(file *csource.SourceFile, idxs []int, declared map[int]bool, table map[string]string) []linter.Finding {
	findings := make([]linter.Finding, 0)
	for k := 0; k+1 < len(idxs); k++ {
		ti := idxs[k]
		t := file.Tokens[ti]
		if t.Kind != csource.TokenIdentifier || declared[ti] {
			continue
		}
		suggestion, ok := table[t.Text]
		if !ok || !file.Tokens[idxs[k+1]].IsPunct("(") {
			continue
		}
		if k > 0 {
			if prev := file.Tokens[idxs[k-1]]; prev.IsPunct(".") || prev.IsPunct("->") {
				continue
			}
		}

		if suggestion == "" {
			findings = append(findings, r.finding(t.Pos, "use of forbidden function %s", t.Text))
		} else {
			findings = append(findings, r.finding(t.Pos, "use of insecure function %s; consider %s", t.Text, suggestion))
		}
	}
	return findings
}
