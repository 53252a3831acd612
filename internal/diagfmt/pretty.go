package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

const tabWidth = 4

type styles struct {
	sev      map[diag.Severity]*color.Color
	code     *color.Color
	location *color.Color
	gutter   *color.Color
	caret    map[diag.Severity]*color.Color
	note     *color.Color
}

func newStyles(enabled bool) styles {
	s := styles{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		code:     color.New(color.Faint),
		location: color.New(color.Bold),
		gutter:   color.New(color.FgBlue),
		caret: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed),
			diag.SevWarning: color.New(color.FgYellow),
			diag.SevInfo:    color.New(color.FgCyan),
		},
		note: color.New(color.FgGreen),
	}
	all := []*color.Color{s.code, s.location, s.gutter, s.note}
	for _, c := range s.sev {
		all = append(all, c)
	}
	for _, c := range s.caret {
		all = append(all, c)
	}
	// Решение о цвете принимает вызывающий, а не color.NoColor.
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку листинга с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := &prettyPrinter{w: w, fs: fs, opts: opts, st: newStyles(opts.Color)}
	for _, d := range bag.Items() {
		p.diagnostic(d)
		if p.err != nil {
			return p.err
		}
	}
	return nil
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	st   styles
	err  error
}

func (p *prettyPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *prettyPrinter) diagnostic(d diag.Diagnostic) {
	sev := p.st.sev[d.Severity]
	if sev == nil {
		sev = p.st.sev[diag.SevInfo]
	}
	if loc, ok := p.location(d.Primary); ok {
		p.printf("%s: ", p.st.location.Sprint(loc))
	}
	p.printf("%s %s: %s\n", sev.Sprint(d.Severity.String()), p.st.code.Sprint(d.Code.ID()), d.Message)
	p.snippet(d.Primary, d.Severity)

	if !p.opts.ShowNotes || d.Code == diag.ObsTimings {
		return
	}
	for _, n := range d.Notes {
		p.printf("  %s ", p.st.note.Sprint("note:"))
		if loc, ok := p.location(n.Span); ok {
			p.printf("%s: ", loc)
		}
		p.printf("%s\n", n.Msg)
	}
}

func (p *prettyPrinter) location(sp source.Span) (string, bool) {
	if p.fs == nil || !sp.Valid() {
		return "", false
	}
	f := p.fs.Get(sp.File)
	if f == nil {
		return "", false
	}
	start, _ := p.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, p.fs, p.opts.PathMode), start.Line, start.Col), true
}

// snippet prints the first line of sp with its columns underlined. Spans
// over several lines are underlined to the end of the first one.
func (p *prettyPrinter) snippet(sp source.Span, sev diag.Severity) {
	if p.fs == nil || !sp.Valid() {
		return
	}
	f := p.fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := p.fs.Resolve(sp)
	line := f.Line(start.Line)
	if line == "" {
		return
	}

	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(line))
	}
	prefix := expandTabs(line[:from])
	marked := expandTabs(line[from:to])
	text := expandTabs(line)

	indent := runewidth.StringWidth(prefix)
	width := max(runewidth.StringWidth(marked), 1)
	if limit := int(p.opts.Width); limit > 0 && runewidth.StringWidth(text) > limit {
		text = runewidth.Truncate(text, limit, "…")
		indent = min(indent, limit-1)
		width = max(min(width, limit-indent), 1)
	}

	num := strconv.FormatUint(uint64(start.Line), 10)
	pad := strings.Repeat(" ", len(num))
	gutter := p.st.gutter
	p.printf("%s %s %s\n", gutter.Sprint(num), gutter.Sprint("|"), text)
	underline := "^" + strings.Repeat("~", width-1)
	caret := p.st.caret[sev]
	if caret == nil {
		caret = p.st.caret[diag.SevInfo]
	}
	p.printf("%s %s %s%s\n", pad, gutter.Sprint("|"), strings.Repeat(" ", indent), caret.Sprint(underline))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
