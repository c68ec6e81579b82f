package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	locColor     = color.New(color.FgCyan)
)

// FormatForTerminal renders a diagnostic for terminal output with colors.
// Line and column are printed one-based, matching editor conventions.
func FormatForTerminal(d *Diagnostic) string {
	var sb strings.Builder

	switch d.Severity {
	case SeverityWarning:
		sb.WriteString(warningColor.Sprint("Warning"))
	default:
		sb.WriteString(errorColor.Sprint("Error"))
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	sb.WriteString("\n")

	if d.SourceFileName != "" || d.Span != nil {
		sb.WriteString("  ")
		sb.WriteString(locColor.Sprint("-->"))
		sb.WriteString(" ")
		sb.WriteString(d.SourceFileName)
		if d.Span != nil {
			sb.WriteString(fmt.Sprintf(":%d:%d", d.Span.Start.Line+1, d.Span.Start.Column+1))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatAll renders every diagnostic in a collector followed by a summary line
func FormatAll(c *Collector) string {
	var sb strings.Builder
	for _, d := range c.All() {
		sb.WriteString(FormatForTerminal(d))
	}

	errs := len(c.Errors())
	warns := len(c.Warnings())
	if errs > 0 || warns > 0 {
		sb.WriteString(fmt.Sprintf("\n%d error(s), %d warning(s)\n", errs, warns))
	}
	return sb.String()
}
