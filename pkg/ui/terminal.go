package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Printer writes styled messages for the CLI. Styling is applied only when
// color is enabled; quiet printers drop banners, info lines and progress.
type Printer struct {
	out   io.Writer
	color bool
	quiet bool
}

// NewPrinter creates a Printer on out. Color is used only when out is a
// terminal and noColor is false.
func NewPrinter(out io.Writer, noColor, quiet bool) *Printer {
	return &Printer{
		out:   out,
		color: !noColor && isTerminal(out),
		quiet: quiet,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var std = NewPrinter(os.Stdout, false, false)

// SetDefault replaces the printer behind the package level functions
func SetDefault(p *Printer) {
	std = p
}

// Default returns the printer behind the package level functions
func Default() *Printer {
	return std
}

func (p *Printer) render(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

func joinArgs(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return msg + ": " + strings.Join(parts, " ")
}

// Banner prints a boxed title followed by optional notice lines
func (p *Printer) Banner(title string, lines ...string) {
	if p.quiet {
		return
	}
	if p.color {
		fmt.Fprintln(p.out, bannerStyle.Render(title))
	} else {
		fmt.Fprintln(p.out, title)
		fmt.Fprintln(p.out, strings.Repeat("-", len(title)))
	}
	for _, line := range lines {
		fmt.Fprintln(p.out, p.render(warningStyle, line))
	}
	if len(lines) > 0 {
		fmt.Fprintln(p.out, p.render(dimStyle, strings.Repeat("-", 20)))
	}
}

// Info prints a label and value pair
func (p *Printer) Info(label, value string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s: %s\n", p.render(labelStyle, label), p.render(valueStyle, value))
}

// Plain prints an unstyled line
func (p *Printer) Plain(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Success prints a success message
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.out, p.render(successStyle, msg))
}

// Warning prints a warning, appending any args after a colon
func (p *Printer) Warning(msg string, args ...interface{}) {
	fmt.Fprintln(p.out, p.render(warningStyle, joinArgs(msg, args)))
}

// Error prints an error, appending any args after a colon
func (p *Printer) Error(msg string, args ...interface{}) {
	fmt.Fprintln(p.out, p.render(errorStyle, joinArgs(msg, args)))
}

// Highlight prints an emphasized line
func (p *Printer) Highlight(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.render(highlightStyle, msg))
}

// PrintError prints an error message with the default printer
func PrintError(msg string, args ...interface{}) {
	std.Error(msg, args...)
}
