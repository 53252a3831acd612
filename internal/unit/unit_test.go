package unit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/testkit"
)

const boxTOML = `
[[decl]]
kind = "template"
name = "Box"
template = [{ name = "T" }, { name = "N", type = { name = "size_type" } }]
fields = [{ name = "items", type = { array = { name = "T" }, size = { name = "N" } } }]

[[decl]]
kind = "function"
name = "first"
template = [{ name = "T" }]
params = [{ name = "x", type = { name = "T" }, ref = true, mut = true }]
ret = { name = "T" }
body = [{ return = { name = "x" } }]

[[decl]]
kind = "const"
name = "Limit"
value = { op = "-", x = { int = 3 }, y = { int = -4, suffix = "i32" } }
`

const boxYAML = `
decl:
  - kind: template
    name: Box
    template:
      - name: T
      - name: N
        type: {name: size_type}
    fields:
      - name: items
        type: {array: {name: T}, size: {name: N}}
  - kind: function
    name: first
    template: [{name: T}]
    params:
      - {name: x, type: {name: T}, ref: true, mut: true}
    ret: {name: T}
    body:
      - return: {name: x}
  - kind: const
    name: Limit
    value: {op: "-", x: {int: 3}, y: {int: -4, suffix: i32}}
`

func parse(t *testing.T, path, text string) (*Unit, *source.FileSet, *source.Interner) {
	t.Helper()
	fs := source.NewFileSet()
	strs := source.NewInterner()
	u, err := Parse(fs, strs, path, []byte(text))
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return u, fs, strs
}

func TestParseTOML(t *testing.T) {
	u, fs, strs := parse(t, "box.toml", boxTOML)
	if len(u.File.Decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(u.File.Decls))
	}
	tmpl, ok := u.File.Decls[0].(*ast.TypeTemplateDecl)
	if !ok || !tmpl.ShortForm || len(tmpl.Params) != 2 || tmpl.Params[1].Type == nil {
		t.Fatalf("unexpected template decl: %#v", u.File.Decls[0])
	}
	fn, ok := u.File.Decls[1].(*ast.FunctionTemplateDecl)
	if !ok || !fn.Func.Params[0].Ref || !fn.Func.Params[0].Mut || len(fn.Func.Body) != 1 {
		t.Fatalf("unexpected function template: %#v", u.File.Decls[1])
	}
	c := u.File.Decls[2].(*ast.ConstDecl)
	bin, ok := c.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpSub {
		t.Fatalf("unexpected const value %#v", c.Value)
	}
	if neg, ok := bin.Y.(*ast.UnaryExpr); !ok || neg.Op != ast.OpNeg {
		t.Fatalf("negative literal should be a negation, got %#v", bin.Y)
	}

	f := fs.Get(u.Listing)
	if f == nil || f.Origin != "box.toml" || f.Flags&source.FileRendered == 0 {
		t.Fatalf("listing not registered: %+v", f)
	}
	if err := testkit.CheckListingSpans(u.File, f); err != nil {
		t.Fatalf("listing spans: %v", err)
	}
	sp := tmpl.Span()
	if sp.File != u.Listing || sp.End <= sp.Start {
		t.Fatalf("template span %v does not point into the listing", sp)
	}
	text := string(f.Content[sp.Start:sp.End])
	if !strings.HasPrefix(text, "template</ type T, size_type N />") {
		t.Fatalf("unexpected listing text %q", text)
	}
	if got := ast.ExprString(c.Value, strs); !strings.Contains(got, "-") {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestTOMLAndYAMLAgree(t *testing.T) {
	a, _, strsA := parse(t, "box.toml", boxTOML)
	b, _, strsB := parse(t, "box.yaml", boxYAML)
	if b.Format != FormatYAML || a.Format != FormatTOML {
		t.Fatalf("formats: %v, %v", a.Format, b.Format)
	}
	la := string(ast.Print(a.File, 0, strsA))
	lb := string(ast.Print(b.File, 0, strsB))
	if la != lb {
		t.Fatalf("listings differ:\n%s\n---\n%s", la, lb)
	}
}

func TestParseErrorsNameTheLocation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "missing kind",
			text: "[[decl]]\nname = \"S\"\n",
			want: "decl[0]: missing kind",
		},
		{
			name: "two tags",
			text: "[[decl]]\nkind = \"alias\"\nname = \"A\"\ntarget = { name = \"i32\", int = 1 }\n",
			want: "decl[0].target: expression with several tags: name, int",
		},
		{
			name: "missing field type",
			text: "[[decl]]\nkind = \"class\"\nname = \"S\"\nfields = [{ name = \"x\" }]\n",
			want: "decl[0].fields[0]: missing type",
		},
		{
			name: "unknown operator",
			text: "[[decl]]\nkind = \"const\"\nname = \"C\"\nvalue = { op = \"<<\", x = { int = 1 }, y = { int = 2 } }\n",
			want: "decl[0].value: unknown operator \"<<\"",
		},
		{
			name: "unknown key",
			text: "[[decl]]\nkind = \"class\"\nname = \"S\"\ncolor = \"red\"\n",
			want: "unknown key \"decl.color\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(source.NewFileSet(), source.NewInterner(), "bad.toml", []byte(tt.text))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{"a.toml": FormatTOML, "b.YAML": FormatYAML, "c.yml": FormatYAML} {
		got, err := FormatOf(path)
		if err != nil || got != want {
			t.Fatalf("FormatOf(%q) = %v, %v", path, got, err)
		}
	}
	if _, err := FormatOf("main.u"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.toml", "a.yaml", "ucb.toml", "notes.txt", "sub/c.yml"} {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	got, err := Discover([]string{dir, filepath.Join(dir, "b.toml")})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.toml"),
		filepath.Join(dir, "sub", "c.yml"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
}
