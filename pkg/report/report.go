// Package report orders, deduplicates and renders findings and maps them to
// process exit codes.
package report

import (
	"errors"
	"sort"
	"strings"

	"github.com/platinummonkey/cstyle/pkg/linter"
)

// Exit codes of a check run
const (
	ExitClean     = 0
	ExitFindings  = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

// Format selects how findings are rendered
type Format string

const (
	FormatText   Format = "text"
	FormatRecord Format = "record"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github"
)

// Formats lists the supported formats
var Formats = []Format{FormatText, FormatRecord, FormatJSON, FormatGitHub}

// ErrUnknownFormat is returned by ParseFormat
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat parses an output format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", &linter.ConfigError{Field: "format", Value: s, Err: ErrUnknownFormat}
}

func less(a, b linter.Finding) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.Column != b.Column {
		return a.Column < b.Column
	}
	if a.RuleID != b.RuleID {
		return a.RuleID < b.RuleID
	}
	return a.Message < b.Message
}

// Sort orders findings by path, line, column and rule ID. Findings equal
// in all four keep a deterministic order by message.
func Sort(findings []linter.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return less(findings[i], findings[j])
	})
}

// Dedupe removes repeated findings from a sorted slice in place
func Dedupe(findings []linter.Finding) []linter.Finding {
	if len(findings) < 2 {
		return findings
	}
	out := findings[:1]
	for _, f := range findings[1:] {
		if f != out[len(out)-1] {
			out = append(out, f)
		}
	}
	return out
}

// Prepare returns a sorted, deduplicated copy of findings
func Prepare(findings []linter.Finding) []linter.Finding {
	out := append([]linter.Finding(nil), findings...)
	Sort(out)
	return Dedupe(out)
}

// ExitCode returns the process exit code of a run: ExitCancelled when the
// run was cancelled, ExitFindings when any finding is at or above floor,
// ExitClean otherwise.
func ExitCode(findings []linter.Finding, floor linter.Severity, cancelled bool) int {
	if cancelled {
		return ExitCancelled
	}
	for _, f := range findings {
		if f.Severity.AtLeast(floor) {
			return ExitFindings
		}
	}
	return ExitClean
}
