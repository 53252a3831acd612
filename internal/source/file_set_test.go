package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.u", []byte("hello world"), 0)
	id2 := fs.Add("test.u", []byte("hello universe"), 0)
	if id1 == id2 {
		t.Fatalf("expected a new FileID for the second Add")
	}
	latest, ok := fs.Lookup("test.u")
	if !ok || latest != id2 {
		t.Fatalf("Lookup = %d, %v; want %d", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Fatalf("old version lost: %q", got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.u", []byte("ab\ncd\n\nef"))

	cases := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start.Line != tc.line || start.Col != tc.col {
			t.Fatalf("offset %d: got %d:%d, want %d:%d", tc.off, start.Line, start.Col, tc.line, tc.col)
		}
	}
}

func TestLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.u", []byte("first\nsecond\nthird")))
	if got := f.Line(2); got != "second" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := f.Line(3); got != "third" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("line 4 = %q, want empty", got)
	}
}

func TestRenderedKeepsOrigin(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddRendered("units/box.toml", "units/box.u", []byte("class Box {}"))
	f := fs.Get(id)
	if f.Origin != "units/box.toml" {
		t.Fatalf("origin = %q", f.Origin)
	}
	if f.Flags&FileRendered == 0 || f.Flags&FileVirtual == 0 {
		t.Fatalf("rendered listing flags = %b", f.Flags)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 6}
	b := Span{File: 1, Start: 2, End: 5}
	if got := a.Cover(b); got.Start != 2 || got.End != 6 {
		t.Fatalf("cover = %v", got)
	}
	if got := NoSpan.Cover(a); got != a {
		t.Fatalf("cover of invalid span = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 1}); got != a {
		t.Fatalf("cross-file cover = %v", got)
	}
}

func TestReadNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.toml")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\rc\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	content, flags, err := ReadNormalized(path)
	if err != nil {
		t.Fatalf("ReadNormalized: %v", err)
	}
	if string(content) != "a\nb\rc\n" {
		t.Fatalf("content = %q", content)
	}
	if flags&FileHadBOM == 0 || flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b", flags)
	}
}

func TestLineCountIgnoresTrailingNewline(t *testing.T) {
	fs := NewFileSet()
	for content, want := range map[string]int{"": 0, "a": 1, "a\n": 1, "a\nb": 2, "a\n\n": 2} {
		if got := fs.Get(fs.AddVirtual("x.u", []byte(content))).LineCount(); got != want {
			t.Fatalf("%q: %d lines, want %d", content, got, want)
		}
	}
}

func TestDisplayPath(t *testing.T) {
	f := &File{Path: "/home/user/project/units/very/deep/directory/box.u"}
	tests := []struct {
		style PathStyle
		want  string
	}{
		{PathBasename, "box.u"},
		{PathRelative, "units/very/deep/directory/box.u"},
		{PathAuto, "box.u"},
		{PathAbsolute, "/home/user/project/units/very/deep/directory/box.u"},
	}
	for _, tt := range tests {
		if got := f.DisplayPath(tt.style, "/home/user/project"); got != tt.want {
			t.Fatalf("style %d: %q, want %q", tt.style, got, tt.want)
		}
	}
	short := &File{Path: "units/box.u"}
	if got := short.DisplayPath(PathAuto, ""); got != "units/box.u" {
		t.Fatalf("auto kept %q", got)
	}
}
