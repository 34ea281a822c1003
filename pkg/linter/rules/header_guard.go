package rules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// ExpectedGuardName derives the include guard macro of the header at path:
// foo/bar/baz.h becomes FOO_BAR_BAZ_H_ with the default suffix. baseDir is
// the directory argument the header was found under, or empty.
func ExpectedGuardName(path, baseDir string, cfg linter.HeaderGuardConfig) string {
	rel := guardPath(path, baseDir, cfg.Root)
	for _, prefix := range cfg.StripPrefixes {
		if prefix != "" && strings.HasPrefix(rel, prefix) {
			rel = strings.TrimPrefix(rel, prefix)
			break
		}
	}

	var b strings.Builder
	for _, r := range rel {
		switch {
		case 'a' <= r && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	b.WriteString(cfg.Suffix)
	return b.String()
}

// guardPath returns the slash-separated path a guard name is derived from.
// The path is taken relative to the first of root, the working directory
// and baseDir that contains it. A path outside all of them loses its
// leading "/" and ".." segments.
func guardPath(path, baseDir, root string) string {
	for _, dir := range []string{root, workingDir(), baseDir} {
		if dir == "" {
			continue
		}
		if rel, ok := relativeTo(dir, path); ok {
			return rel
		}
	}

	rel := filepath.ToSlash(filepath.Clean(path))
	for {
		switch {
		case strings.HasPrefix(rel, "/"):
			rel = rel[1:]
		case strings.HasPrefix(rel, "../"):
			rel = rel[3:]
		default:
			return rel
		}
	}
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// relativeTo returns path relative to dir when path lies below dir
func relativeTo(dir, path string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

func fileStart(file *csource.SourceFile) csource.Position {
	return csource.Position{Filename: file.Path, Line: 1, Column: 1}
}

// HeaderGuardMissingRule checks that every header has an include guard
type HeaderGuardMissingRule struct {
	BaseRule
}

// NewHeaderGuardMissingRule creates a new header-guard-missing rule
func NewHeaderGuardMissingRule() *HeaderGuardMissingRule {
	return &HeaderGuardMissingRule{
		BaseRule: BaseRule{
			RuleName:        "header-guard-missing",
			RuleCategory:    linter.CategoryHeaders,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Headers must be protected by an #ifndef/#define include guard",
		},
	}
}

// Check reports headers without a guard
func (r *HeaderGuardMissingRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	if !file.IsHeader() || facts.Guard != nil {
		return nil
	}

	expected := ExpectedGuardName(file.Path, baseDir(ctx), config(ctx).HeaderGuard)
	if facts.PragmaOnce >= 0 {
		return []linter.Finding{r.finding(file.Token(facts.PragmaOnce).Pos,
			"header uses #pragma once instead of include guard %s", expected)}
	}
	return []linter.Finding{r.finding(fileStart(file),
		"header has no include guard; expected #ifndef %s / #define %s", expected, expected)}
}

// HeaderGuardNameRule checks the guard macro against the header path
type HeaderGuardNameRule struct {
	BaseRule
}

// NewHeaderGuardNameRule creates a new header-guard-name-mismatch rule
func NewHeaderGuardNameRule() *HeaderGuardNameRule {
	return &HeaderGuardNameRule{
		BaseRule: BaseRule{
			RuleName:        "header-guard-name-mismatch",
			RuleCategory:    linter.CategoryHeaders,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Include guard names must be derived from the header path",
		},
	}
}

// Check compares the #ifndef macro with the path-derived name
func (r *HeaderGuardNameRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	if !file.IsHeader() || facts.Guard == nil {
		return nil
	}

	expected := ExpectedGuardName(file.Path, baseDir(ctx), config(ctx).HeaderGuard)
	if facts.Guard.Macro == expected {
		return nil
	}
	return []linter.Finding{r.finding(file.Token(facts.Guard.NameTok).Pos,
		"include guard %s should be named %s", facts.Guard.Macro, expected)}
}

// HeaderGuardMismatchRule checks that the guard is well formed
type HeaderGuardMismatchRule struct {
	BaseRule
}

// NewHeaderGuardMismatchRule creates a new header-guard-mismatch rule
func NewHeaderGuardMismatchRule() *HeaderGuardMismatchRule {
	return &HeaderGuardMismatchRule{
		BaseRule: BaseRule{
			RuleName:        "header-guard-mismatch",
			RuleCategory:    linter.CategoryHeaders,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Include guards must define the tested macro once and close at the end of the file",
		},
	}
}

// Check validates the #ifndef/#define/#endif triple
func (r *HeaderGuardMismatchRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	g := facts.Guard
	if !file.IsHeader() || g == nil {
		return nil
	}

	findings := make([]linter.Finding, 0)
	if g.DefineName != g.Macro {
		findings = append(findings, r.finding(defineNamePos(file, facts, g),
			"#define %s does not match #ifndef %s", g.DefineName, g.Macro))
	}
	if g.DefineCount > 1 {
		findings = append(findings, r.finding(file.Token(g.DefineTok).Pos,
			"include guard %s is defined %d times", g.Macro, g.DefineCount))
	}
	if g.EndifTok < 0 {
		findings = append(findings, r.finding(file.Token(g.IfndefTok).Pos,
			"include guard %s is never closed by #endif", g.Macro))
	} else if g.TrailingTok >= 0 {
		findings = append(findings, r.finding(file.Token(g.TrailingTok).Pos,
			"code after the #endif closing include guard %s", g.Macro))
	}
	return findings
}

func defineNamePos(file *csource.SourceFile, facts *csource.Facts, g *csource.HeaderGuard) csource.Position {
	for _, d := range facts.Directives {
		if d.Tok != g.DefineTok {
			continue
		}
		if args := file.Significant(d.Args); len(args) > 0 {
			return file.Token(args[0]).Pos
		}
	}
	return file.Token(g.DefineTok).Pos
}

// PragmaOnceWithGuardRule flags headers using both #pragma once and a guard
type PragmaOnceWithGuardRule struct {
	BaseRule
}

// NewPragmaOnceWithGuardRule creates a new pragma-once-with-guard rule
func NewPragmaOnceWithGuardRule() *PragmaOnceWithGuardRule {
	return &PragmaOnceWithGuardRule{
		BaseRule: BaseRule{
			RuleName:        "pragma-once-with-guard",
			RuleCategory:    linter.CategoryHeaders,
			RuleSeverity:    linter.SeverityInfo,
			RuleDescription: "Headers should not combine #pragma once with an include guard",
		},
	}
}

// Check reports the redundant #pragma once
func (r *PragmaOnceWithGuardRule) Check(file *csource.SourceFile, facts *csource.Facts, ctx *linter.LintContext) []linter.Finding {
	if !file.IsHeader() || facts.Guard == nil || facts.PragmaOnce < 0 {
		return nil
	}
	return []linter.Finding{r.finding(file.Token(facts.PragmaOnce).Pos,
		"#pragma once is redundant with include guard %s", facts.Guard.Macro)}
}
