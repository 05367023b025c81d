package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
)

// Reporter receives diagnostics as they are produced.
type Reporter interface {
	Report(d *DiagnosticError)
}

// CollectingReporter keeps every diagnostic in report order.
type CollectingReporter struct {
	Problems []*DiagnosticError
}

func (r *CollectingReporter) Report(d *DiagnosticError) {
	r.Problems = append(r.Problems, d)
}

// HasErrors reports whether any ERROR-severity diagnostic was collected.
func (r *CollectingReporter) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

func (r *CollectingReporter) Count(s Severity) int {
	n := 0
	for _, p := range r.Problems {
		if p.Severity == s {
			n++
		}
	}
	return n
}

// WithCode returns the collected diagnostics that carry code.
func (r *CollectingReporter) WithCode(code ErrorCode) []*DiagnosticError {
	var out []*DiagnosticError
	for _, p := range r.Problems {
		if p.Code == code {
			out = append(out, p)
		}
	}
	return out
}

// Sorted returns the diagnostics ordered by position, then code.
func (r *CollectingReporter) Sorted() []*DiagnosticError {
	out := make([]*DiagnosticError, len(r.Problems))
	copy(out, r.Problems)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// MultiReporter fans a diagnostic out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(d *DiagnosticError) {
	for _, r := range m {
		r.Report(d)
	}
}

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[1;31m"
	ansiGreen = "\x1b[1;32m"
	ansiBlue  = "\x1b[1;34m"
	ansiBold  = "\x1b[1m"
)

// PrintReporter renders diagnostics to a writer, coloured when the writer is a
// terminal (or when forced).
type PrintReporter struct {
	w     io.Writer
	color bool
}

// NewPrintReporter creates a PrintReporter. mode is "auto", "always" or "never".
func NewPrintReporter(w io.Writer, mode string) *PrintReporter {
	color := false
	switch mode {
	case "always":
		color = true
	case "auto":
		if f, ok := w.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		if os.Getenv("TERM") == "dumb" || os.Getenv("NO_COLOR") != "" {
			color = false
		}
	}
	return &PrintReporter{w: w, color: color}
}

func (p *PrintReporter) Report(d *DiagnosticError) {
	tag := d.Severity.String() + "[" + string(d.Code) + "]"
	if p.color {
		tag = severityColor(d.Severity) + tag + ansiReset
	}
	fmt.Fprintf(p.w, "%s: %s: %s\n", d.Pos, tag, p.bold(d.Message))
	if d.Hint != "" {
		note := "note:"
		if p.color {
			note = ansiGreen + note + ansiReset
		}
		fmt.Fprintf(p.w, "  %s %s\n", note, d.Hint)
	}
}

func (p *PrintReporter) bold(s string) string {
	if !p.color {
		return s
	}
	return ansiBold + s + ansiReset
}

func severityColor(s Severity) string {
	switch s {
	case SeverityError:
		return ansiRed
	case SeverityGoal:
		return ansiGreen
	default:
		return ansiBlue
	}
}
