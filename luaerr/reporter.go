package luaerr

import (
	"fmt"
	"strings"
)

// Reporter renders a ParseError against the original source text: a header,
// a two-line context window before/after the offending line, a caret under
// the column, and an optional suggestion (spec §7). Color is disableable —
// the same on/off switch the teacher's term package exposes for its leveled
// logging.
type Reporter struct {
	Color bool
}

func NewReporter(color bool) *Reporter {
	return &Reporter{Color: color}
}

const (
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiReset  = "\033[0m"
)

func (r *Reporter) paint(code, s string) string {
	if !r.Color {
		return s
	}
	return code + s + ansiReset
}

// Format produces the multi-line message described in spec §7.
func (r *Reporter) Format(source string, err *ParseError) string {
	lines := strings.Split(source, "\n")
	var b strings.Builder

	header := fmt.Sprintf("Parse Error at line %d, column %d", err.Position.Line, err.Position.Column)
	fmt.Fprintln(&b, r.paint(ansiRed, header))

	start := err.Position.Line - 3
	if start < 0 {
		start = 0
	}
	end := err.Position.Line + 2
	if end > len(lines) {
		end = len(lines)
	}
	for i := start; i < end; i++ {
		lineNo := i + 1
		marker := "  "
		if lineNo == err.Position.Line {
			marker = r.paint(ansiRed, "> ")
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", marker, lineNo, lines[i])
		if lineNo == err.Position.Line {
			pad := strings.Repeat(" ", err.Position.Column-1+9)
			fmt.Fprintln(&b, pad+r.paint(ansiRed, "^"))
		}
	}

	fmt.Fprintln(&b, err.Error())
	if err.Suggestion != "" {
		fmt.Fprintln(&b, r.paint(ansiYellow, "suggestion: "+err.Suggestion))
	}
	return b.String()
}

// FormatRuntime renders a traceback captured on a RuntimeError.
func (r *Reporter) FormatRuntime(err *RuntimeError) string {
	var b strings.Builder
	fmt.Fprintln(&b, r.paint(ansiRed, "runtime error: "+err.Error()))
	for i := len(err.Traceback) - 1; i >= 0; i-- {
		f := err.Traceback[i]
		fmt.Fprintf(&b, "\tat %s:%d\n", f.Source, f.Line)
	}
	return b.String()
}
