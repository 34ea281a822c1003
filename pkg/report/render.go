package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/platinummonkey/cstyle/pkg/linter"
	"github.com/platinummonkey/cstyle/pkg/observability"
)

// Reporter renders the result of a run in one format
type Reporter struct {
	format Format
	color  bool
	logger *observability.Logger
}

// Option configures a Reporter
type Option func(*Reporter)

// WithColor enables colored severities in text output
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		r.color = enabled
	}
}

// WithLogger sets the sink that receives the run summary
func WithLogger(logger *observability.Logger) Option {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReporter creates a reporter for format
func NewReporter(format Format, opts ...Option) *Reporter {
	r := &Reporter{
		format: format,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the sorted, deduplicated findings of result to w and logs
// the summary counts
func (r *Reporter) Render(w io.Writer, result *linter.RunResult) error {
	findings := Prepare(result.Findings)
	summary := linter.Summarize(&linter.RunResult{
		Files:     result.Files,
		Skipped:   result.Skipped,
		Cancelled: result.Cancelled,
		Findings:  findings,
	})

	var err error
	switch r.format {
	case FormatRecord:
		err = renderRecords(w, findings)
	case FormatJSON:
		err = renderJSON(w, findings, summary)
	case FormatGitHub:
		err = renderGitHub(w, findings)
	default:
		err = r.renderText(w, findings, summary)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"files":     summary.TotalFiles,
		"skipped":   summary.SkippedFiles,
		"findings":  summary.TotalFindings,
		"errors":    summary.Errors,
		"warnings":  summary.Warnings,
		"infos":     summary.Infos,
		"cancelled": summary.Cancelled,
	}).Info("check summary")
	return nil
}

// formatRecord renders one finding as path:line:column: severity ruleId message
func formatRecord(f linter.Finding) string {
	return fmt.Sprintf("%s:%d:%d: %s %s %s", f.File, f.Line, f.Column, f.Severity, f.RuleID, f.Message)
}

func renderRecords(w io.Writer, findings []linter.Finding) error {
	for _, f := range findings {
		if _, err := fmt.Fprintln(w, formatRecord(f)); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, findings []linter.Finding, summary linter.Summary) error {
	output := struct {
		Findings []linter.Finding `json:"findings"`
		Summary  linter.Summary   `json:"summary"`
	}{
		Findings: findings,
		Summary:  summary,
	}
	if output.Findings == nil {
		output.Findings = []linter.Finding{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

var githubEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// renderGitHub writes GitHub Actions workflow annotations:
// ::error file={name},line={line},col={col}::{message}
func renderGitHub(w io.Writer, findings []linter.Finding) error {
	for _, f := range findings {
		level := "error"
		switch f.Severity {
		case linter.SeverityWarning:
			level = "warning"
		case linter.SeverityInfo:
			level = "notice"
		}

		_, err := fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d::[%s] %s\n",
			level,
			f.File,
			f.Line,
			f.Column,
			f.RuleID,
			githubEscaper.Replace(f.Message),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

type textStyles struct {
	file     lipgloss.Style
	position lipgloss.Style
	rule     lipgloss.Style
	severity map[linter.Severity]lipgloss.Style
}

func newTextStyles(w io.Writer, color bool) textStyles {
	renderer := lipgloss.NewRenderer(w)
	plain := renderer.NewStyle()
	if !color {
		return textStyles{file: plain, position: plain, rule: plain, severity: map[linter.Severity]lipgloss.Style{}}
	}
	return textStyles{
		file:     renderer.NewStyle().Bold(true),
		position: renderer.NewStyle().Foreground(lipgloss.Color("240")),
		rule:     renderer.NewStyle().Foreground(lipgloss.Color("81")),
		severity: map[linter.Severity]lipgloss.Style{
			linter.SeverityError:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
			linter.SeverityWarning: renderer.NewStyle().Foreground(lipgloss.Color("208")),
			linter.SeverityInfo:    renderer.NewStyle().Foreground(lipgloss.Color("63")),
		},
	}
}

func (s textStyles) renderSeverity(sev linter.Severity) string {
	text := fmt.Sprintf("%-7s", sev)
	if style, ok := s.severity[sev]; ok {
		return style.Render(text)
	}
	return text
}

func (r *Reporter) renderText(w io.Writer, findings []linter.Finding, summary linter.Summary) error {
	styles := newTextStyles(w, r.color)
	var b strings.Builder

	current := ""
	for _, f := range findings {
		if f.File != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = f.File
			b.WriteString(styles.file.Render(f.File) + "\n")
		}
		b.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
			styles.position.Render(fmt.Sprintf("%d:%d", f.Line, f.Column)),
			styles.renderSeverity(f.Severity),
			f.Message,
			styles.rule.Render(f.RuleID),
		))
	}

	if len(findings) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("%d %s (%d %s, %d %s, %d %s) in %d %s\n",
		summary.TotalFindings, plural(summary.TotalFindings, "finding"),
		summary.Errors, plural(summary.Errors, "error"),
		summary.Warnings, plural(summary.Warnings, "warning"),
		summary.Infos, plural(summary.Infos, "info"),
		summary.TotalFiles, plural(summary.TotalFiles, "file"),
	))
	if summary.Cancelled {
		b.WriteString(fmt.Sprintf("run cancelled: %d %s not checked\n",
			summary.SkippedFiles, plural(summary.SkippedFiles, "file")))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, word string) string {
	if n == 1 || word == "info" {
		return word
	}
	return word + "s"
}
