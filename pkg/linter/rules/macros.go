package rules

import (
	"strings"

	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// macroBody returns the significant body tokens of m
func macroBody(file *csource.SourceFile, m csource.MacroDefinition) ([]int, []csource.Token) {
	idxs := file.Significant(m.Body)
	toks := make([]csource.Token, len(idxs))
	for i, idx := range idxs {
		toks[i] = file.Tokens[idx]
	}
	return idxs, toks
}

func macroParams(m csource.MacroDefinition) map[string]bool {
	params := make(map[string]bool, len(m.Params)+1)
	for _, p := range m.Params {
		params[p] = true
	}
	if m.IsVariadic {
		params["__VA_ARGS__"] = true
	}
	return params
}

func isWord(t csource.Token) bool {
	return t.Kind == csource.TokenIdentifier || t.Kind == csource.TokenKeyword
}

// matching returns the index of the bracket closing toks[open], or -1
func matching(toks []csource.Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].IsPunct("("), toks[i].IsPunct("["), toks[i].IsPunct("{"):
			depth++
		case toks[i].IsPunct(")"), toks[i].IsPunct("]"), toks[i].IsPunct("}"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var leftDelimiters = map[string]bool{
	"(": true, ",": true, "[": true, "{": true, ";": true,
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

var rightDelimiters = map[string]bool{
	")": true, ",": true, "]": true, ";": true, "}": true,
}

// MacroParenthesizationRule checks that function-like macros wrap their
// parameters and their expansion in parentheses
type MacroParenthesizationRule struct {
	BaseRule
}

// NewMacroParenthesizationRule creates a new macro-parenthesization rule
func NewMacroParenthesizationRule() *MacroParenthesizationRule {
	return &MacroParenthesizationRule{
		BaseRule: BaseRule{
			RuleName:        "macro-parenthesization",
			RuleCategory:    linter.CategoryMacros,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Function-like macros must parenthesize each parameter use and expression expansions",
		},
	}
}

// Check reports at most one finding per macro
func (r *MacroParenthesizationRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	findings := make([]linter.Finding, 0)
	for _, m := range facts.Macros {
		if !m.IsFunctionLike {
			continue
		}
		_, body := macroBody(file, m)
		if len(body) == 0 {
			continue
		}

		params := macroParams(m)
		bare := bareParameters(body, params)
		unwrapped := unwrappedExpansion(body, params)

		var problem string
		switch {
		case len(bare) > 0 && unwrapped:
			problem = describeParams(bare) + " and its expansion are not parenthesized"
		case len(bare) == 1:
			problem = describeParams(bare) + " is not parenthesized"
		case len(bare) > 1:
			problem = describeParams(bare) + " are not parenthesized"
		case unwrapped:
			problem = "expansion is not parenthesized"
		default:
			continue
		}
		findings = append(findings, r.finding(file.Token(m.NameTok).Pos, "macro %s: %s", m.Name, problem))
	}
	return findings
}

func describeParams(names []string) string {
	if len(names) == 1 {
		return "parameter " + names[0]
	}
	return "parameters " + strings.Join(names, ", ")
}

// operandKeywords are keywords that may precede an expression operand
var operandKeywords = map[string]bool{
	"return": true, "sizeof": true, "_Alignof": true, "alignof": true,
	"case": true, "else": true, "do": true,
}

// bareParameters returns the parameters with at least one occurrence that
// is not delimited on both sides, in order of first occurrence
func bareParameters(body []csource.Token, params map[string]bool) []string {
	var names []string
	seen := make(map[string]bool)

	for k, t := range body {
		if !isWord(t) || !params[t.Text] || seen[t.Text] {
			continue
		}

		var prev, next csource.Token
		hasPrev, hasNext := k > 0, k+1 < len(body)
		if hasPrev {
			prev = body[k-1]
		}
		if hasNext {
			next = body[k+1]
		}

		// stringized, pasted, member names and callees
		if hasPrev && (prev.IsPunct("#") || prev.IsPunct("##") || prev.IsPunct(".") || prev.IsPunct("->")) {
			continue
		}
		if hasNext && (next.IsPunct("##") || next.IsPunct("(")) {
			continue
		}
		// declarators, tags and type names, as in struct tag or T name
		if hasPrev && isWord(prev) && !operandKeywords[prev.Text] {
			continue
		}
		if hasNext && isWord(next) {
			continue
		}

		left := !hasPrev || (prev.Kind == csource.TokenPunctuation && leftDelimiters[prev.Text]) ||
			prev.Is(csource.TokenKeyword, "return")
		right := !hasNext || (next.Kind == csource.TokenPunctuation && rightDelimiters[next.Text])
		if left && right {
			continue
		}

		seen[t.Text] = true
		names = append(names, t.Text)
	}
	return names
}

var atomKeywords = map[string]bool{
	"sizeof": true, "_Alignof": true, "alignof": true,
	"true": true, "false": true, "nullptr": true,
}

// unwrappedExpansion reports whether body is an expression with a top-level
// operator that is not enclosed in parentheses. Statement-like,
// declaration-like, call-form and string-only bodies are never reported.
func unwrappedExpansion(body []csource.Token, params map[string]bool) bool {
	if len(body) <= 1 {
		return false
	}
	first := body[0]
	if first.Kind == csource.TokenKeyword && !atomKeywords[first.Text] {
		return false
	}
	if first.IsPunct("{") {
		return false
	}
	if first.IsPunct("(") && matching(body, 0) == len(body)-1 {
		return false
	}
	if isWord(first) && body[1].IsPunct("(") && matching(body, 1) == len(body)-1 {
		return false
	}
	if stringOnly(body, params) {
		return false
	}

	depth := 0
	operator := false
	for _, t := range body {
		if t.Kind != csource.TokenPunctuation {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ";":
			if depth == 0 {
				return false
			}
		case ".", "->", "#", "##":
		default:
			if depth == 0 {
				operator = true
			}
		}
	}
	return operator
}

// stringOnly reports whether body is a sequence of string literals and
// stringized parameters
func stringOnly(body []csource.Token, params map[string]bool) bool {
	for k, t := range body {
		switch {
		case t.Kind == csource.TokenString:
		case t.IsPunct("#"):
		case isWord(t) && params[t.Text] && k > 0 && body[k-1].IsPunct("#"):
		default:
			return false
		}
	}
	return true
}

// MacroDoWhileRule checks that multi-statement macros are wrapped in
// do { ... } while (0)
type MacroDoWhileRule struct {
	BaseRule
}

// NewMacroDoWhileRule creates a new macro-do-while rule
func NewMacroDoWhileRule() *MacroDoWhileRule {
	return &MacroDoWhileRule{
		BaseRule: BaseRule{
			RuleName:        "macro-do-while",
			RuleCategory:    linter.CategoryMacros,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Multi-statement macros must be wrapped in do { ... } while (0) without a trailing semicolon",
		},
	}
}

// Check reports multi-statement bodies and do-while bodies ending in ';'
func (r *MacroDoWhileRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	findings := make([]linter.Finding, 0)
	for _, m := range facts.Macros {
		if !m.IsFunctionLike {
			continue
		}
		idxs, body := macroBody(file, m)
		if len(body) == 0 {
			continue
		}

		if n := topLevelStatements(body); n > 1 {
			findings = append(findings, r.finding(file.Token(m.NameTok).Pos,
				"macro %s has %d statements; wrap the body in do { ... } while (0)", m.Name, n))
			continue
		}
		if isDoWhileZero(body) && body[len(body)-1].IsPunct(";") {
			findings = append(findings, r.finding(file.Token(idxs[len(idxs)-1]).Pos,
				"macro %s: remove the semicolon after while (0)", m.Name))
		}
	}
	return findings
}

// topLevelStatements counts the non-empty ';'-separated segments of body
// outside any brackets
func topLevelStatements(body []csource.Token) int {
	count, depth, empty := 0, 0, true
	for _, t := range body {
		switch {
		case t.IsPunct("("), t.IsPunct("["), t.IsPunct("{"):
			depth++
		case t.IsPunct(")"), t.IsPunct("]"), t.IsPunct("}"):
			depth--
		case t.IsPunct(";") && depth == 0:
			if !empty {
				count++
			}
			empty = true
			continue
		}
		empty = false
	}
	if !empty {
		count++
	}
	return count
}

// isDoWhileZero reports whether body is do ... while (0), optionally
// followed by a semicolon
func isDoWhileZero(body []csource.Token) bool {
	n := len(body)
	if n > 0 && body[n-1].IsPunct(";") {
		n--
	}
	if n < 6 || !body[0].Is(csource.TokenKeyword, "do") {
		return false
	}
	return body[n-4].Is(csource.TokenKeyword, "while") && body[n-3].IsPunct("(") &&
		body[n-2].Is(csource.TokenNumber, "0") && body[n-1].IsPunct(")")
}
