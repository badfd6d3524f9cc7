// Package ui provides terminal output helpers: colored status lines, the
// debug logger and interactive confirmation.
package ui

import (
	"fmt"
	"io"

	"github.com/gookit/color"
)

// Status line styles
var (
	styleInfo    = color.Info
	styleWarn    = color.Warn
	styleError   = color.Error
	styleSuccess = color.HEX("#2E7D32")
	styleStep    = color.HEX("#1976D2")
	styleArrow   = color.HEX("#FFEB3B")

	// Emoji icons
	IconTool    = "🔧"
	IconBuild   = "🔨"
	IconSuccess = "✅"
	IconWarning = "⚠️ "
	IconError   = "❌"
	IconRocket  = "🚀"
	IconPackage = "📦"
	IconDisc    = "💿"
	IconWatch   = "👀"
)

// Printer writes user-facing status lines.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Writer returns the underlying writer, for tools whose output is streamed.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Step prints "-> msg", used for pipeline stages.
func (p *Printer) Step(format string, a ...any) {
	fmt.Fprint(p.out, styleArrow.Sprint("-> "))
	fmt.Fprintln(p.out, styleStep.Sprintf(format, a...))
}

// Info prints an informational line prefixed with icon.
func (p *Printer) Info(icon, format string, a ...any) {
	fmt.Fprintf(p.out, "%s %s\n", icon, styleInfo.Sprintf(format, a...))
}

// Success prints a success line.
func (p *Printer) Success(format string, a ...any) {
	fmt.Fprintf(p.out, "%s %s\n", IconSuccess, styleSuccess.Sprintf(format, a...))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, a ...any) {
	fmt.Fprintf(p.out, "%s%s\n", IconWarning, styleWarn.Sprintf(format, a...))
}

// Error prints an error line.
func (p *Printer) Error(format string, a ...any) {
	fmt.Fprintf(p.out, "%s %s\n", IconError, styleError.Sprintf(format, a...))
}
