package linter

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/cstyle/pkg/csource"
)

// Finding is one reported rule violation
type Finding struct {
	RuleID   string   `json:"ruleId"`
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
}

// NewFinding creates a finding for rule at pos
func NewFinding(ruleID string, severity Severity, pos csource.Position, format string, args ...interface{}) Finding {
	return Finding{
		RuleID:   ruleID,
		Severity: severity,
		File:     pos.Filename,
		Line:     pos.Line,
		Column:   pos.Column,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Severity indicates how serious a finding is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank orders severities: info < warning < error. Unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is at or above floor
func (s Severity) AtLeast(floor Severity) bool {
	return s.Rank() >= floor.Rank()
}

// ParseSeverity parses "error", "warning" or "info"
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityError, SeverityWarning, SeverityInfo:
		return sev, nil
	case "warn":
		return SeverityWarning, nil
	default:
		return "", &ConfigError{Field: "severity", Value: s, Err: ErrUnknownSeverity}
	}
}

// Category groups related rules
type Category string

const (
	CategoryHeaders        Category = "headers"
	CategoryIncludes       Category = "includes"
	CategoryMacros         Category = "macros"
	CategoryInitialization Category = "initialization"
	CategoryTypes          Category = "types"
	CategorySafety         Category = "safety"
	CategoryDiagnostics    Category = "diagnostics"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryHeaders,
	CategoryIncludes,
	CategoryMacros,
	CategoryInitialization,
	CategoryTypes,
	CategorySafety,
	CategoryDiagnostics,
}

// Summary provides an overview of a run
type Summary struct {
	TotalFiles    int  `json:"totalFiles"`
	SkippedFiles  int  `json:"skippedFiles"`
	TotalFindings int  `json:"totalFindings"`
	Errors        int  `json:"errors"`
	Warnings      int  `json:"warnings"`
	Infos         int  `json:"infos"`
	Cancelled     bool `json:"cancelled"`
}

// Summarize counts findings by severity
func Summarize(result *RunResult) Summary {
	summary := Summary{
		TotalFiles:    result.Files,
		SkippedFiles:  result.Skipped,
		TotalFindings: len(result.Findings),
		Cancelled:     result.Cancelled,
	}
	for _, f := range result.Findings {
		switch f.Severity {
		case SeverityError:
			summary.Errors++
		case SeverityWarning:
			summary.Warnings++
		case SeverityInfo:
			summary.Infos++
		}
	}
	return summary
}

// LintContext provides context during rule checking
type LintContext struct {
	FilePath string
	Config   *Config
	BaseDir  string // directory argument the file was found under, if any
}
