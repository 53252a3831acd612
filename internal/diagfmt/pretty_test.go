package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

const listing = "template</type T/> class Box { T value; }\nalias P = Box</i32, bool/>;\n"

func listingBag(t *testing.T, path string) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddRendered("/home/user/project/units/box.toml", path, []byte(listing))
	bag := diag.NewBag(10)
	start := uint32(strings.Index(listing, "Box</i32"))
	d := diag.NewError(diag.TplArgCountMismatch, source.Span{File: fileID, Start: start, End: start + 16}, "Box expects 1 argument, got 2").
		WithNote(source.Span{File: fileID, Start: 0, End: 19}, "template declared here")
	bag.Add(d)
	return fs, bag
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs, bag := listingBag(t, "/home/user/project/units/box.u")
	fs.SetBaseDir("/home/user/project")

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/units/box.u:2:11"},
		{name: "Relative path", mode: PathModeRelative, contains: "units/box.u:2:11"},
		{name: "Basename only", mode: PathModeBasename, contains: "box.u:2:11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode}); err != nil {
				t.Fatalf("Pretty: %v", err)
			}
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR TPL4016: Box expects 1 argument, got 2") {
				t.Errorf("Expected header in output, got:\n%s", output)
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	fs, bag := listingBag(t, "box.u")
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if lines[1] != "2 | alias P = Box</i32, bool/>;" {
		t.Fatalf("source line %q", lines[1])
	}
	if want := "  |" + strings.Repeat(" ", 11) + "^" + strings.Repeat("~", 15); lines[2] != want {
		t.Fatalf("underline %q", lines[2])
	}
	if !strings.Contains(lines[3], "note: box.u:1:1: template declared here") {
		t.Fatalf("note line %q", lines[3])
	}
}

func TestPrettyWidthTruncates(t *testing.T) {
	fs, bag := listingBag(t, "box.u")
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Width: 16}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasSuffix(lines[1], "…") || strings.Contains(lines[1], "bool") {
		t.Fatalf("line not truncated: %q", lines[1])
	}
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes printed without ShowNotes")
	}
}

func TestPrettyWithoutLocation(t *testing.T) {
	bag := diag.NewBag(2)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.NoSpan, "timings (unit): total 1.00 ms").
		WithNote(source.NoSpan, `{"kind":"unit"}`))
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if got := buf.String(); got != "INFO OBS6001: timings (unit): total 1.00 ms\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPrettyColor(t *testing.T) {
	fs, bag := listingBag(t, "box.u")
	var plain, colored bytes.Buffer
	_ = Pretty(&plain, bag, fs, PrettyOpts{})
	_ = Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("escape codes without Color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("no escape codes with Color")
	}
}

func TestShort(t *testing.T) {
	fs, bag := listingBag(t, "box.u")
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, true); err != nil {
		t.Fatalf("Short: %v", err)
	}
	// Golden output is sorted by position, so the note comes first.
	want := "note TPL4016 box.u:1:1 template declared here\nerror TPL4016 box.u:2:11 Box expects 1 argument, got 2\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"pretty", "short", "json"} {
		if _, err := ParseFormat(name); err != nil {
			t.Fatalf("%s rejected: %v", name, err)
		}
	}
	if _, err := ParseFormat("sarif"); err == nil {
		t.Fatalf("sarif accepted")
	}
}
