// Package diagfmt renders diagnostics for terminals: a severity header,
// the source line, and a caret run under the offending span. Widths are
// measured with go-runewidth so carets line up under wide characters.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/source"
)

// Options control rendering.
type Options struct {
	Color bool
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	boldColor = color.New(color.Bold)
	dimColor  = color.New(color.FgBlue)
)

func severityPaint(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

// Render writes one diagnostic. The layout follows the usual compiler
// convention:
//
//	error[CTX2001]: expected `;`, found `}`
//	  --> main.ctx:4:18
//	   |
//	 4 |     let x = 1 + 2
//	   |                  ^
func Render(w io.Writer, file *source.File, d *diag.Diagnostic, opts Options) {
	paint := func(c *color.Color, format string, args ...any) string {
		if opts.Color {
			return c.Sprintf(format, args...)
		}
		return fmt.Sprintf(format, args...)
	}

	head := paint(severityPaint(d.Severity), "%s[%s]", d.Severity, d.Code)
	fmt.Fprintf(w, "%s: %s\n", head, paint(boldColor, "%s", d.Message))

	lc := file.Resolve(d.Primary.Start)
	fmt.Fprintf(w, "  %s %s:%d:%d\n", paint(dimColor, "-->"), file.Name, lc.Line, lc.Column)

	lineText := file.Line(lc.Line)
	gutter := fmt.Sprintf("%d", lc.Line)
	pad := strings.Repeat(" ", len(gutter))

	fmt.Fprintf(w, " %s %s\n", pad, paint(dimColor, "|"))
	fmt.Fprintf(w, " %s %s %s\n", paint(dimColor, "%s", gutter), paint(dimColor, "|"), lineText)
	fmt.Fprintf(w, " %s %s %s\n", pad, paint(dimColor, "|"),
		paint(severityPaint(d.Severity), "%s", caretLine(lineText, lc.Column, d.Primary.Len())))

	for _, note := range d.Notes {
		fmt.Fprintf(w, "  %s %s\n", paint(dimColor, "="), note.Msg)
	}
}

// caretLine builds the underline row: spaces sized to the display width
// of the text before the span, then carets sized to the span itself.
func caretLine(lineText string, column uint32, spanLen uint32) string {
	col := int(column)
	if col < 1 {
		col = 1
	}
	runes := []rune(lineText)
	before := col - 1
	if before > len(runes) {
		before = len(runes)
	}
	lead := runewidth.StringWidth(string(runes[:before]))

	carets := 1
	if spanLen > 0 {
		end := before + int(spanLen)
		if end > len(runes) {
			end = len(runes)
		}
		if w := runewidth.StringWidth(string(runes[before:end])); w > 0 {
			carets = w
		}
	}
	return strings.Repeat(" ", lead) + strings.Repeat("^", carets)
}

// RenderAll writes every diagnostic in the bag, sorted by position, and
// a trailing summary line when errors are present.
func RenderAll(w io.Writer, file *source.File, bag *diag.Bag, opts Options) {
	bag.Sort()
	items := bag.Items()
	for i := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		Render(w, file, &items[i], opts)
	}
	errs := 0
	for i := range items {
		if items[i].Severity == diag.SevError {
			errs++
		}
	}
	if errs > 0 {
		paint := func(c *color.Color, s string) string {
			if opts.Color {
				return c.Sprint(s)
			}
			return s
		}
		fmt.Fprintf(w, "\n%s: %d error(s) emitted\n", paint(errColor, "error"), errs)
	}
}
