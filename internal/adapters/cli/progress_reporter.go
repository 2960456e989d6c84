// Package cli provides lipgloss-styled terminal output for the compiler
// driver: per-stage progress, success/error lines, and human-readable
// diagnostics.
package cli

import (
	"fmt"
	"os"

	"github.com/aie-tools/aiec/internal/diagnostics"
	"github.com/aie-tools/aiec/internal/core/usecases"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10b981")
	colorWarning = lipgloss.Color("#f59e0b")
	colorError   = lipgloss.Color("#ef4444")
	colorMuted   = lipgloss.Color("#6b7280")
	colorStage   = lipgloss.Color("#2563eb")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	stageStyle   = lipgloss.NewStyle().Foreground(colorStage).Bold(true)
)

var _ usecases.ProgressReporter = (*ProgressReporter)(nil)

// ProgressReporter prints the four-stage pipeline (GUI-XML expand →
// graph build → code generation → run) to stdout/stderr.
type ProgressReporter struct{}

// NewProgressReporter creates a console ProgressReporter.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{}
}

// ReportProgress prints "[stage N/total] message".
func (r *ProgressReporter) ReportProgress(stage string, current, total int, message string) {
	if total > 0 {
		label := stageStyle.Render(fmt.Sprintf("[%s %d/%d]", stage, current, total))
		fmt.Printf("%s %s\n", label, message)
		return
	}
	fmt.Printf("  %s\n", mutedStyle.Render(message))
}

// ReportError prints a failed-stage message to stderr.
func (r *ProgressReporter) ReportError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ ")+err.Error())
}

// ReportSuccess prints a completed-stage message.
func (r *ProgressReporter) ReportSuccess(message string) {
	fmt.Println(successStyle.Render("✓ ") + message)
}

// ReportInfo prints an informational line.
func (r *ProgressReporter) ReportInfo(message string) {
	fmt.Println(mutedStyle.Render("ℹ ") + message)
}

// FormatDiagnostic renders a diagnostic the way a human reading a
// terminal expects: colored by severity, with its code and message.
func FormatDiagnostic(d diagnostics.Diagnostic) string {
	style := mutedStyle
	switch d.Severity {
	case diagnostics.Warn:
		style = warningStyle
	case diagnostics.Error:
		style = errorStyle
	}
	return fmt.Sprintf("%s %s: %s", style.Render(string(d.Severity)), d.Code, d.Message)
}
