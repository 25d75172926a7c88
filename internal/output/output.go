// Package output renders comparison reports and CLI messages.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI styles.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// Writer writes human output to stdout and diagnostics to stderr.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New returns a Writer on the process stdout and stderr. Colour is on when
// stdout is a terminal.
func New() *Writer {
	return NewWithWriters(os.Stdout, os.Stderr, isTerminal())
}

// NewWithWriters returns a Writer on the given streams.
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{out: out, err: err, color: color}
}

// SetColor applies a colour mode: "always", "never" or "auto".
// Auto enables colour only when stdout is a terminal.
func (w *Writer) SetColor(mode string) error {
	switch mode {
	case "always":
		w.color = true
	case "never":
		w.color = false
	case "auto", "":
		w.color = isTerminal()
	default:
		return fmt.Errorf("invalid color mode %q (expected auto, always or never)", mode)
	}
	return nil
}

// SetQuiet suppresses headers, passing cases and info lines.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// paint wraps s in an ANSI style when colour is enabled.
func (w *Writer) paint(style, s string) string {
	if !w.color || style == "" {
		return s
	}
	return style + s + reset
}

// Println writes a formatted line to stdout.
func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a formatted line to stderr.
func (w *Writer) Errorln(format string, args ...any) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints a line unless quiet.
func (w *Writer) Info(format string, args ...any) {
	if !w.quiet {
		w.Println(format, args...)
	}
}

// Success prints a line in green.
func (w *Writer) Success(format string, args ...any) {
	w.Println("%s", w.paint(green, fmt.Sprintf(format, args...)))
}

// Hint prints a dimmed line.
func (w *Writer) Hint(format string, args ...any) {
	w.Println("%s", w.paint(dim, fmt.Sprintf(format, args...)))
}

// Warning prints "warning: ..." to stderr.
func (w *Writer) Warning(format string, args ...any) {
	w.Errorln("%s", w.paint(yellow, "warning: "+fmt.Sprintf(format, args...)))
}

// ErrorPrefix prints "treediff: ..." to stderr.
func (w *Writer) ErrorPrefix(format string, args ...any) {
	w.Errorln("%s %s", w.paint(red, "treediff:"), fmt.Sprintf(format, args...))
}

// ValidationSuccess prints a confirmation line, with a check mark in colour.
func (w *Writer) ValidationSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		msg = w.paint(green, "✓") + " " + msg
	}
	w.Println("%s", msg)
}

// Section prints a "=== title ===" header unless quiet.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.paint(bold, "=== "+title+" ==="))
}

// Table prints left-aligned columns separated by two spaces, with a dashed
// rule under the header. Cells beyond the header count are dropped.
func (w *Writer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], len(cell))
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, 0, len(cells))
		for i, cell := range cells {
			if i < len(widths) {
				parts = append(parts, fmt.Sprintf("%-*s", widths[i], cell))
			}
		}
		w.Println("%s", strings.Join(parts, "  "))
	}

	line(headers)
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}
	line(rule)
	for _, row := range rows {
		line(row)
	}
}
