package templates

import (
	"slices"
	"testing"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

func TestDeclarationErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(h *testHost) *ast.TypeTemplateDecl
		want  []diag.Code
	}{
		{
			name: "unused parameter",
			build: func(h *testHost) *ast.TypeTemplateDecl {
				return h.class("S", []*ast.TemplateParam{h.typeParam("T"), h.typeParam("U")}, sig(h.n("T")))
			},
			want: []diag.Code{diag.TplUnusedParam},
		},
		{
			name: "mandatory after optional",
			build: func(h *testHost) *ast.TypeTemplateDecl {
				return h.class("S", []*ast.TemplateParam{h.typeParam("T"), h.typeParam("U")},
					[]*ast.SignatureParam{{Type: h.n("T"), Default: h.n("i32")}, {Type: h.n("U")}})
			},
			want: []diag.Code{diag.TplMandatoryAfterOptional},
		},
		{
			name: "parameter redefinition",
			build: func(h *testHost) *ast.TypeTemplateDecl {
				return h.shortClass("S", []*ast.TemplateParam{h.typeParam("T"), h.typeParam("T")})
			},
			want: []diag.Code{diag.TplParamRedefinition},
		},
		{
			name: "parameter shadows",
			build: func(h *testHost) *ast.TypeTemplateDecl {
				return h.shortClass("S", []*ast.TemplateParam{h.typeParam("i32")})
			},
			want: []diag.Code{diag.TplParamShadows},
		},
		{
			name: "value parameter type declared later",
			build: func(h *testHost) *ast.TypeTemplateDecl {
				return h.shortClass("S", []*ast.TemplateParam{h.valueParam("N", h.n("T")), h.typeParam("T")})
			},
			want: []diag.Code{diag.TplParamOrder},
		},
		{
			name: "value parameter typed by value parameter",
			build: func(h *testHost) *ast.TypeTemplateDecl {
				return h.shortClass("S", []*ast.TemplateParam{h.valueParam("N", h.n("u32")), h.valueParam("M", h.n("N"))})
			},
			want: []diag.Code{diag.SemaNameIsNotType},
		},
		{
			name: "float value parameter",
			build: func(h *testHost) *ast.TypeTemplateDecl {
				return h.shortClass("S", []*ast.TemplateParam{h.valueParam("X", h.n("f32"))})
			},
			want: []diag.Code{diag.TplInvalidValueParamType},
		},
		{
			name: "parameter dependent expression",
			build: func(h *testHost) *ast.TypeTemplateDecl {
				return h.class("S", []*ast.TemplateParam{h.valueParam("N", h.n("u32"))},
					sig(&ast.BinaryExpr{Op: ast.OpAdd, X: h.n("N"), Y: lit(1)}))
			},
			want: []diag.Code{diag.TplInvalidArg},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHost(Options{})
			decl := tt.build(h)
			if g := h.declare(decl); g != nil {
				t.Fatalf("declaration accepted")
			}
			if got := h.codes(); !slices.Equal(got, tt.want) {
				t.Fatalf("codes = %v, want %v", got, tt.want)
			}
			set := h.global.names[decl.Name].Set
			if !set.Broken || len(set.Templates) != 0 {
				t.Fatalf("set not marked broken: %+v", set)
			}
			// uses of a broken name stay silent
			h.resolve(h.app("S", h.n("i32")))
			if h.bag.Len() != len(tt.want) {
				t.Fatalf("use of broken template reported: %v", h.bag.Items())
			}
		})
	}
}

func TestRedefinitionWithSameSignature(t *testing.T) {
	h := newTestHost(Options{})
	first := h.declare(h.shortClass("S", []*ast.TemplateParam{h.typeParam("T")}))
	second := h.declare(h.shortClass("S", []*ast.TemplateParam{h.typeParam("U")}))
	if first == nil || second != nil {
		t.Fatalf("first=%v second=%v", first, second)
	}
	if got := h.codes(); !slices.Equal(got, []diag.Code{diag.TplRedefinition}) {
		t.Fatalf("codes = %v", got)
	}
}

func TestShortAndLongFormCompileAlike(t *testing.T) {
	h := newTestHost(Options{})
	short := h.declare(h.shortClass("A", []*ast.TemplateParam{h.typeParam("T"), h.valueParam("N", h.n("T"))}))
	long := h.declare(h.class("B", []*ast.TemplateParam{h.typeParam("T"), h.valueParam("N", h.n("T"))}, sig(h.n("T"), h.n("N"))))
	if short == nil || long == nil {
		t.Fatalf("declarations rejected: %v", h.bag.Items())
	}
	if !patternListsEqual(short.Signature, long.Signature) {
		t.Fatalf("short form %v differs from long form %v", short.Signature, long.Signature)
	}
	if ref, ok := short.Params[1].Type.(*ParamRef); !ok || ref.Index != 0 {
		t.Fatalf("value parameter type = %#v", short.Params[1].Type)
	}
}

func TestConcreteSubtreesCollapse(t *testing.T) {
	h := newTestHost(Options{})
	g := h.declare(h.class("S", []*ast.TemplateParam{h.typeParam("T")},
		sig(&ast.TupleTypeExpr{Elems: []ast.Expr{h.n("T"), &ast.ArrayTypeExpr{Elem: h.n("i32"), Size: lit(2)}}})))
	if g == nil {
		t.Fatalf("declaration rejected: %v", h.bag.Items())
	}
	tup, ok := g.Signature[0].(*TupleOf)
	if !ok {
		t.Fatalf("signature compiled to %T", g.Signature[0])
	}
	c, ok := tup.Elems[1].(*Concrete)
	if !ok || c.Arg != types.TypeArg(h.in.Array(h.in.Builtins().I32, 2)) {
		t.Fatalf("concrete element compiled to %#v", tup.Elems[1])
	}
	if got := h.eng.GenericLabel(g); got != "S</tup[T, [i32, 2]]/>" {
		t.Fatalf("label = %q", got)
	}
}

func TestFunctionTemplateResultCountsAsUse(t *testing.T) {
	h := newTestHost(Options{})
	decl := &ast.FunctionTemplateDecl{
		Params: []*ast.TemplateParam{h.typeParam("T")},
		Func:   &ast.FuncDecl{Name: h.id("make"), Ret: h.n("T")},
	}
	g := h.eng.DeclareFunctionTemplate(decl, h.global, h.rep())
	if g == nil {
		t.Fatalf("declaration rejected: %v", h.bag.Items())
	}
	if _, ok := h.eng.ResolveGenericCallCandidate(CallSite{Name: g.Name}, []*Generic{g}, h.rep()); ok {
		t.Fatalf("call without explicit arguments deduced T")
	}
	explicit := []Argument{{Arg: types.TypeArg(h.in.Builtins().U64)}}
	hd, ok := h.eng.ResolveGenericCallCandidate(CallSite{Name: g.Name, Explicit: explicit}, []*Generic{g}, h.rep())
	if !ok {
		t.Fatalf("explicit call failed: %v", h.bag.Items())
	}
	if info, _ := h.in.FnInfo(hd.Type); info == nil || info.Result != h.in.Builtins().U64 {
		t.Fatalf("unexpected type %s", types.Label(h.in, hd.Type))
	}
}
