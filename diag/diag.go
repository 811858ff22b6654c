// Package diag renders span-carrying errors as human-readable reports.
package diag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/token"
)

var (
	errColor    = color.New(color.FgRed, color.Bold)
	gutterColor = color.New(color.FgBlue)
	caretColor  = color.New(color.FgRed, color.Bold)
)

// Fprint writes a report for err to w. When err carries a span and src is
// the document it came from, the report includes the offending source line
// with a caret run under the span. Colors are used only when w is a
// terminal.
func Fprint(w io.Writer, src []byte, err error) {
	p := &printer{w: w, colored: isTerminal(w)}
	p.print(src, err)
}

// Sprint renders the report as a plain string, never colored.
func Sprint(src []byte, err error) string {
	var b strings.Builder
	(&printer{w: &b}).print(src, err)
	return b.String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

type printer struct {
	w       io.Writer
	colored bool
}

func (p *printer) paint(c *color.Color, s string) string {
	if !p.colored {
		return s
	}
	return c.Sprint(s)
}

func (p *printer) print(src []byte, err error) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint(errColor, "error:"), err)
	var sp ir.Spanner
	if !errors.As(err, &sp) {
		return
	}
	span := sp.Span()
	if !span.IsValid() || len(src) == 0 {
		return
	}
	x := token.NewLineIndex(src)
	line := x.Line(span.Start.Line)
	if line == nil {
		return
	}
	fmt.Fprintf(p.w, "%s%s\n", p.paint(gutterColor, fmt.Sprintf("%4d | ", span.Start.Line)), line)

	col := span.Start.Column - 1
	if col > len(line) {
		col = len(line)
	}
	width := 1
	switch {
	case span.End.Line == span.Start.Line && span.End.Column > span.Start.Column:
		width = span.End.Column - span.Start.Column
	case span.End.Line > span.Start.Line:
		width = len(line) - col
	}
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(p.w, "%s%s%s\n",
		p.paint(gutterColor, "     | "),
		strings.Repeat(" ", col),
		p.paint(caretColor, strings.Repeat("^", width)))
}
