package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// GoldenLine is one line of the golden rendering: a diagnostic or one of
// its notes, resolved to a relative path and a 1-based position.
type GoldenLine struct {
	Severity string // "error", "warning", "info" or "note"
	Code     string
	Path     string // "-" when there is no location
	Line     uint32
	Column   uint32
	Message  string
}

func (l GoldenLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.Severity, l.Code, l.Path, l.Line, l.Column, l.Message)
}

func compareGolden(a, b GoldenLine) int {
	return cmpOr(
		cmp.Compare(a.Path, b.Path),
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.Column, b.Column),
		cmp.Compare(a.Severity, b.Severity),
		cmp.Compare(a.Code, b.Code),
		cmp.Compare(a.Message, b.Message),
	)
}

// cmpOr mirrors cmp.Or (Go 1.22+) for older toolchains: it returns the
// first non-zero value.
func cmpOr(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// GoldenLines resolves diags and their notes (when includeNotes is set)
// and sorts them by location. The order does not depend on the order the
// diagnostics were reported in.
func GoldenLines(diags []Diagnostic, fs *source.FileSet, includeNotes bool) []GoldenLine {
	lines := make([]GoldenLine, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		code := d.Code.ID()
		lines = append(lines, goldenLine(fs, d.Severity.Label(), code, d.Primary, d.Message))
		if includeNotes {
			for _, n := range d.Notes {
				lines = append(lines, goldenLine(fs, "note", code, n.Span, n.Msg))
			}
		}
	}
	slices.SortStableFunc(lines, compareGolden)
	return lines
}

// FormatGoldenDiagnostics renders GoldenLines one per line without a
// trailing newline, for golden files and test assertions.
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	lines := GoldenLines(diags, fs, includeNotes)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

func goldenLine(fs *source.FileSet, sev, code string, span source.Span, msg string) GoldenLine {
	l := GoldenLine{Severity: sev, Code: code, Path: "-", Message: singleLine(msg)}
	if fs == nil || !span.Valid() {
		return l
	}
	f := fs.Get(span.File)
	if f == nil {
		return l
	}
	start, _ := fs.Resolve(span)
	l.Path = f.DisplayPath(source.PathRelative, fs.BaseDir())
	for {
		rest, ok := strings.CutPrefix(l.Path, "./")
		if !ok {
			break
		}
		l.Path = rest
	}
	l.Line, l.Column = start.Line, start.Col
	return l
}

// singleLine folds any line breaks in msg into spaces.
func singleLine(msg string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg))
}
