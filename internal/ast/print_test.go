package ast

import (
	"strings"
	"testing"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

func TestPrintAssignsSpans(t *testing.T) {
	strs := source.NewInterner()
	name := func(s string) *NameExpr { return &NameExpr{Name: strs.Intern(s)} }

	param := &TemplateParam{Name: strs.Intern("T")}
	field := &FieldDecl{Name: strs.Intern("x"), Type: name("T")}
	tmpl := &TypeTemplateDecl{
		Name:   strs.Intern("Box"),
		Params: []*TemplateParam{param},
		Signature: []*SignatureParam{
			{Type: name("T")},
		},
		Fields: []*FieldDecl{field},
	}
	f := &File{Decls: []Decl{tmpl}}

	out := string(Print(f, 3, strs))
	want := "template</ type T />\nstruct Box</ T />\n{\n\tT x;\n}\n"
	if out != want {
		t.Fatalf("listing mismatch:\nwant %q\ngot  %q", want, out)
	}
	if sp := param.Span(); sp.File != 3 || out[sp.Start:sp.End] != "type T" {
		t.Fatalf("param span %v covers %q", sp, out[sp.Start:sp.End])
	}
	if sp := field.Span(); out[sp.Start:sp.End] != "T x" {
		t.Fatalf("field span covers %q", out[sp.Start:sp.End])
	}
	if sp := tmpl.Span(); sp.Start != 0 || int(sp.End) != len(out) {
		t.Fatalf("decl span %v should cover the listing", sp)
	}
}

func TestExprString(t *testing.T) {
	strs := source.NewInterner()
	e := &BinaryExpr{
		Op: OpMul,
		X:  &BinaryExpr{Op: OpAdd, X: &IntLit{Value: 1}, Y: &IntLit{Value: 2, Suffix: "u"}},
		Y:  &UnaryExpr{Op: OpNeg, X: &NameExpr{Name: strs.Intern("N")}},
	}
	if got := ExprString(e, strs); got != "(1 + 2u) * -N" {
		t.Fatalf("ExprString = %q", got)
	}
	if e.Span() != (source.Span{}) {
		t.Fatalf("ExprString must not assign spans")
	}
}

func TestInspectVisitsNested(t *testing.T) {
	strs := source.NewInterner()
	e := &ApplyExpr{
		Base: &NameExpr{Name: strs.Intern("Vec")},
		Args: []Expr{&ArrayTypeExpr{Elem: &NameExpr{Name: strs.Intern("T")}, Size: &IntLit{Value: 4}}},
	}
	var names []string
	Inspect(e, func(x Expr) bool {
		if n, ok := x.(*NameExpr); ok {
			names = append(names, strs.MustLookup(n.Name))
		}
		return true
	})
	if strings.Join(names, ",") != "Vec,T" {
		t.Fatalf("visited %v", names)
	}
}
