package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"github.com/compozy/clear-comments/cli/helpers"
	"github.com/compozy/clear-comments/engine/backup"
	"github.com/compozy/clear-comments/engine/processor"
	"github.com/compozy/clear-comments/pkg/config"
)

// Reporter writes every user-facing message of a run. Text output is styled
// when color is enabled; JSON output is a single document per run.
type Reporter struct {
	out     io.Writer
	errOut  io.Writer
	writer  *helpers.OutputWriter
	format  helpers.OutputFormat
	color   bool
	verbose bool
	styles  reporterStyles
}

type reporterStyles struct {
	logo    lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	skipped lipgloss.Style
	failure lipgloss.Style
}

// runReport is the JSON document of a clean run.
type runReport struct {
	processor.Summary
	TargetDir  string   `json:"targetDir"`
	Directives []string `json:"directives"`
	BackupDir  string   `json:"backupDir,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// NewReporter creates a reporter writing results to out and per-file errors
// to errOut.
func NewReporter(out, errOut io.Writer, format helpers.OutputFormat, verbose, color bool) *Reporter {
	return &Reporter{
		out:     out,
		errOut:  errOut,
		writer:  helpers.NewOutputWriter(out, format, color),
		format:  format,
		color:   color,
		verbose: verbose,
		styles:  newReporterStyles(color),
	}
}

func newReporterStyles(color bool) reporterStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return reporterStyles{logo: plain, label: plain, success: plain, skipped: plain, failure: plain}
	}
	return reporterStyles{
		logo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

func (r *Reporter) isJSON() bool {
	return r.format == helpers.OutputFormatJSON
}

// Banner describes the run before any file is processed. It is written only
// in verbose text mode.
func (r *Reporter) Banner(res *config.Resolved, customPatterns int) {
	if r.isJSON() || !r.verbose {
		return
	}
	if r.color {
		fmt.Fprintln(r.out, r.styles.logo.Render(figure.NewFigure("clear-comments", "standard", true).String()))
	}
	fmt.Fprintf(r.out, "%s %s\n", r.styles.label.Render("Clearing comments from:"), res.TargetDir)
	types := res.Directives.String()
	if res.Directives.IsEmpty() {
		types = "none"
	}
	fmt.Fprintf(r.out, "%s %s\n", r.styles.label.Render("Comment types to remove:"), types)
	docs := "preserved"
	if res.Directives.RemovesDocs() {
		docs = "removed"
	}
	fmt.Fprintf(r.out, "%s %s\n", r.styles.label.Render("Documentation comments:"), docs)
	if customPatterns > 0 {
		fmt.Fprintf(r.out, "%s %d\n", r.styles.label.Render("Custom patterns count:"), customPatterns)
	}
	if res.Config.Backup {
		fmt.Fprintf(r.out, "%s %s\n", r.styles.label.Render("Backups will be saved to:"), res.BackupDir)
	}
}

// Warnings reports non-fatal problems such as skipped custom patterns.
func (r *Reporter) Warnings(warnings []string) {
	if r.isJSON() {
		return
	}
	for _, w := range warnings {
		fmt.Fprintln(r.errOut, r.styles.skipped.Render("Warning: "+w))
	}
}

// OnFile reports a single file in verbose text mode.
func (r *Reporter) OnFile(e processor.FileEvent) {
	if r.isJSON() || !r.verbose {
		return
	}
	switch e.Kind {
	case processor.EventCleaned:
		line := fmt.Sprintf("Cleaned: %s (%d lines removed)", e.Rel, e.LinesRemoved)
		if e.BackedUp {
			line += " (backup created)"
		}
		fmt.Fprintln(r.out, r.styles.success.Render(line))
	case processor.EventSkipped:
		fmt.Fprintln(r.out, r.styles.skipped.Render(fmt.Sprintf("Skipped: %s (no comment to remove)", e.Rel)))
	case processor.EventFailed:
		fmt.Fprintln(r.errOut, r.styles.failure.Render(fmt.Sprintf("Error processing %s: %v", e.Rel, e.Err)))
	}
}

// Summary reports the totals of a clean run.
func (r *Reporter) Summary(res *config.Resolved, s processor.Summary, warnings []string) error {
	if r.isJSON() {
		report := runReport{
			Summary:    s,
			TargetDir:  res.TargetDir,
			Directives: res.Directives.Strings(),
			Warnings:   warnings,
		}
		if res.Config.Backup {
			report.BackupDir = res.BackupDir
		}
		return r.writer.WriteData(report)
	}
	fmt.Fprintf(r.out, "%s %d\n", r.styles.label.Render("Total files scanned:"), s.TotalFiles)
	fmt.Fprintf(r.out, "%s %d\n", r.styles.label.Render("Files modified:"), s.ProcessedFiles)
	fmt.Fprintf(r.out, "%s %d\n", r.styles.label.Render("Lines removed:"), s.TotalLinesRemoved)
	if res.Config.Backup {
		fmt.Fprintf(r.out, "%s %d\n", r.styles.label.Render("Backups created:"), s.BackupsCreated)
	}
	r.errorList(s.Errors)
	return nil
}

// Restore reports the outcome of a restore.
func (r *Reporter) Restore(res backup.RestoreResult) error {
	if r.isJSON() {
		return r.writer.WriteData(res)
	}
	fmt.Fprintf(r.out, "%s %d %s to %s\n",
		r.styles.label.Render("Restored"), res.Restored, pluralize(res.Restored, "file", "files"), res.Root)
	r.errorList(res.Errors)
	return nil
}

// Error reports a fatal error.
func (r *Reporter) Error(err error) {
	helpers.OutputError(r.errOut, err, r.format, r.color)
}

func (r *Reporter) errorList(errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(r.errOut, r.styles.failure.Render(fmt.Sprintf("Errors encountered: %d", len(errs))))
	for _, e := range errs {
		fmt.Fprintln(r.errOut, r.styles.failure.Render("  "+strings.TrimSpace(e)))
	}
}

// pluralize returns singular or plural form based on count
func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
