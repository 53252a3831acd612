package templates

import (
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// testScope is a chained name table.
type testScope struct {
	parent *testScope
	names  map[source.StringID]Value
}

func (s *testScope) Defines(name source.StringID) bool {
	_, ok := s.lookup(name)
	return ok
}

func (s *testScope) lookup(name source.StringID) (Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.names[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// testHost is a small Host that understands type expressions and integer
// literals. Class bodies resolve their field types, which is enough to
// drive recursive instantiation.
type testHost struct {
	strs   *source.Interner
	in     *types.Interner
	eng    *Engine
	global *testScope
	bag    *diag.Bag
	builds int
	funcs  int
}

func newTestHost(opts Options) *testHost {
	strs := source.NewInterner()
	in := types.NewInterner(strs)
	h := &testHost{
		strs:   strs,
		in:     in,
		global: &testScope{names: make(map[source.StringID]Value)},
		bag:    diag.NewBag(100),
	}
	for _, n := range []string{"void", "bool", "i8", "i32", "i64", "u8", "u32", "u64", "size_type", "usize", "f32", "f64", "char8"} {
		id, _ := in.Fundamental(n)
		h.global.names[strs.Intern(n)] = Value{Kind: ValueType, Arg: types.TypeArg(id)}
	}
	h.eng = NewEngine(in, h, nil, opts)
	return h
}

func (h *testHost) rep() diag.Reporter { return diag.BagReporter{Bag: h.bag} }

func (h *testHost) id(s string) source.StringID { return h.strs.Intern(s) }

// declare compiles a type template into the global set of its name.
func (h *testHost) declare(decl *ast.TypeTemplateDecl) *Generic {
	v, ok := h.global.names[decl.Name]
	if !ok {
		v = Value{Kind: ValueTemplates, Set: &TypeTemplateSet{Name: decl.Name}}
		h.global.names[decl.Name] = v
	}
	return h.eng.DeclareTypeTemplate(v.Set, decl, h.global, h.rep())
}

func (h *testHost) set(name string) *TypeTemplateSet {
	return h.global.names[h.id(name)].Set
}

func (h *testHost) resolve(e ast.Expr) (Handle, bool) {
	app, ok := e.(*ast.ApplyExpr)
	if !ok {
		return Handle{}, false
	}
	return h.eng.ResolveGenericApplication(app, h.global, h.rep())
}

func (h *testHost) codes() []diag.Code {
	out := make([]diag.Code, 0, h.bag.Len())
	for _, d := range h.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func (h *testHost) Eval(scope Scope, e ast.Expr, rep diag.Reporter) Value {
	sc, _ := scope.(*testScope)
	switch x := e.(type) {
	case *ast.NameExpr:
		if v, ok := sc.lookup(x.Name); ok {
			return v
		}
		diag.ReportError(rep, diag.SemaUnresolvedSymbol, x.Span(), "unresolved name").Emit()
		return Value{}
	case *ast.IntLit:
		return Value{Kind: ValueConst, Untyped: true, Arg: types.ValueArg(types.NoTypeID, x.Value)}
	case *ast.BoolLit:
		var bits uint64
		if x.Value {
			bits = 1
		}
		return Value{Kind: ValueConst, Arg: types.ValueArg(h.in.Builtins().Bool, bits)}
	case *ast.UnaryExpr:
		v := h.Eval(scope, x.X, rep)
		if v.Kind == ValueConst && v.Untyped && x.Op == ast.OpNeg {
			v.Arg.Bits = -v.Arg.Bits
		}
		return v
	case *ast.ApplyExpr:
		hd, ok := h.eng.ResolveGenericApplication(x, scope, rep)
		if !ok || hd.Type == types.NoTypeID {
			return Value{}
		}
		return Value{Kind: ValueType, Arg: types.TypeArg(hd.Type)}
	case *ast.ArrayTypeExpr:
		elem := h.Eval(scope, x.Elem, rep)
		size := h.Eval(scope, x.Size, rep)
		if elem.Kind != ValueType || size.Kind != ValueConst {
			return Value{}
		}
		return Value{Kind: ValueType, Arg: types.TypeArg(h.in.Array(elem.Arg.Type, size.Arg.Bits))}
	case *ast.PointerTypeExpr:
		elem := h.Eval(scope, x.Elem, rep)
		if elem.Kind != ValueType {
			return Value{}
		}
		return Value{Kind: ValueType, Arg: types.TypeArg(h.in.Pointer(elem.Arg.Type))}
	case *ast.TupleTypeExpr:
		elems := make([]types.TypeID, len(x.Elems))
		for i, el := range x.Elems {
			v := h.Eval(scope, el, rep)
			if v.Kind != ValueType {
				return Value{}
			}
			elems[i] = v.Arg.Type
		}
		return Value{Kind: ValueType, Arg: types.TypeArg(h.in.Tuple(elems))}
	case *ast.FuncTypeExpr:
		info := types.FnInfo{Result: h.in.Builtins().Void, RetRef: x.RetRef, RetMut: x.RetMut, Unsafe: x.Unsafe}
		for _, p := range x.Params {
			v := h.Eval(scope, p.Type, rep)
			if v.Kind != ValueType {
				return Value{}
			}
			info.Params = append(info.Params, types.FnParam{Type: v.Arg.Type, Ref: p.Ref, Mut: p.Mut})
		}
		if x.Ret != nil {
			v := h.Eval(scope, x.Ret, rep)
			if v.Kind != ValueType {
				return Value{}
			}
			info.Result = v.Arg.Type
		}
		return Value{Kind: ValueType, Arg: types.TypeArg(h.in.Function(info))}
	}
	return Value{Kind: ValueRuntime}
}

func (h *testHost) BindArgs(g *Generic, st *DeductionState) Scope {
	parent, _ := g.Scope.(*testScope)
	sc := &testScope{parent: parent, names: make(map[source.StringID]Value, len(g.Params))}
	for i, p := range g.Params {
		a, ok := st.Deduced(i)
		switch {
		case !ok:
			sc.names[p.Name] = Value{Kind: ValueNotDeduced}
		case a.IsType():
			sc.names[p.Name] = Value{Kind: ValueType, Arg: a}
		default:
			sc.names[p.Name] = Value{Kind: ValueConst, Arg: a}
		}
	}
	return sc
}

func (h *testHost) Allocate(g *Generic, args, signatureArgs []types.Arg) Handle {
	switch {
	case g.Kind == FunctionTemplate:
		h.funcs++
		return Handle{Kind: HandleFunction, Func: h.funcs}
	case g.IsAlias():
		return Handle{Kind: HandleAlias}
	}
	id := h.in.RegisterClass(g.Name, g.Span)
	h.in.SetClassOrigin(id, uint32(g.ID), args, signatureArgs)
	return Handle{Kind: HandleClass, Type: id}
}

func (h *testHost) Build(hd Handle, g *Generic, scope Scope, rep diag.Reporter) (Handle, bool) {
	h.builds++
	ok := true
	switch hd.Kind {
	case HandleClass:
		var fields []types.Field
		for _, f := range g.TypeDecl.Fields {
			v := h.Eval(scope, f.Type, rep)
			if v.Kind != ValueType {
				ok = false
				continue
			}
			fields = append(fields, types.Field{Name: f.Name, Type: v.Arg.Type, Span: f.Span()})
		}
		h.in.SetClassFields(hd.Type, fields)
	case HandleAlias:
		v := h.Eval(scope, g.TypeDecl.Alias, rep)
		if v.Kind != ValueType {
			return hd, false
		}
		hd.Type = v.Arg.Type
	case HandleFunction:
		fn := g.FuncDecl.Func
		info := types.FnInfo{Result: h.in.Builtins().Void}
		for _, p := range fn.Params {
			v := h.Eval(scope, p.Type, rep)
			if v.Kind != ValueType {
				return hd, false
			}
			info.Params = append(info.Params, types.FnParam{Type: v.Arg.Type, Ref: p.Ref, Mut: p.Mut})
		}
		if fn.Ret != nil {
			v := h.Eval(scope, fn.Ret, rep)
			if v.Kind != ValueType {
				return hd, false
			}
			info.Result = v.Arg.Type
		}
		hd.Type = h.in.Function(info)
	}
	return hd, ok
}
