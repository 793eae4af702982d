// Package term is the ambient logging/terminal layer (SPEC_FULL.md §2.1):
// leveled, colorized console output for the CLI and REPL, grounded on the
// teacher's term package (term/log.go's color constants and level-prefixed
// printf helpers) narrowed to the pieces SPEC_FULL.md's domain stack keeps
// — logging and terminal-width probing — rather than the teacher's
// fuller interactive-editing surface (see DESIGN.md's `internal/term`
// entry for what was dropped and why).
package term

import (
	"fmt"
	"io"
	"os"

	xterm "golang.org/x/term"
)

const (
	Red     = "\033[91m"
	Green   = "\033[32m"
	Yellow  = "\033[93m"
	Blue    = "\033[94m"
	Magenta = "\033[95m"
	Cyan    = "\033[96m"
	NoColor = "\033[0m"
)

// Logger is a leveled, colorized writer. Color can be turned off (spec §7's
// "ANSI styling... must be disableable").
type Logger struct {
	Out   io.Writer
	Color bool
}

// Default writes to stderr with color enabled when stderr is a terminal,
// the same auto-detection x/term's own IsTerminal exists for.
func Default() *Logger {
	return &Logger{Out: os.Stderr, Color: xterm.IsTerminal(int(os.Stderr.Fd()))}
}

func (l *Logger) paint(code, s string) string {
	if !l.Color {
		return s
	}
	return code + s + NoColor
}

func (l *Logger) printf(tag, color, format string, args ...any) {
	prefix := l.paint(color, tag) + " "
	fmt.Fprintf(l.Out, prefix+format+"\n", args...)
}

func (l *Logger) Info(format string, args ...any)  { l.printf("[INF]", Cyan, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.printf("[WAR]", Yellow, format, args...) }
func (l *Logger) Err(format string, args ...any)   { l.printf("[ERR]", Red, format, args...) }
func (l *Logger) Success(format string, args ...any) { l.printf("[SUC]", Green, format, args...) }

// Size reports the terminal's column/row count via golang.org/x/term,
// replacing the teacher's `stty size` subprocess call (term/size.go) with
// the syscall-based probe x/term already wraps.
func Size(fd int) (width, height int, err error) {
	return xterm.GetSize(fd)
}

// IsTerminal reports whether fd is attached to a terminal. The CLI does not
// call it: it chooses REPL or script from os.Args alone.
func IsTerminal(fd int) bool {
	return xterm.IsTerminal(fd)
}
