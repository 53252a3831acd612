package sema

import (
	"fmt"
	"math"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// Eval implements templates.Host.
func (tc *typeChecker) Eval(scope templates.Scope, e ast.Expr, rep diag.Reporter) templates.Value {
	sc, ok := scope.(*Scope)
	if !ok || sc == nil {
		sc = tc.global
	}
	return tc.eval(sc, e, rep)
}

func typeValue(id types.TypeID) templates.Value {
	return templates.Value{Kind: templates.ValueType, Arg: types.TypeArg(id)}
}

func runtimeValue(id types.TypeID, mutable bool) templates.Value {
	return templates.Value{Kind: templates.ValueRuntime, Arg: types.TypeArg(id), Mutable: mutable}
}

func constValue(id types.TypeID, bits uint64) templates.Value {
	return templates.Value{Kind: templates.ValueConst, Arg: types.ValueArg(id, bits)}
}

func untypedValue(v int64) templates.Value {
	return templates.Value{Kind: templates.ValueConst, Untyped: true, Arg: types.ValueArg(types.NoTypeID, uint64(v))} //nolint:gosec // untyped constants keep int64 bits
}

// eval resolves and evaluates e. Errors are reported once; callers treat
// ValueInvalid as already reported.
func (tc *typeChecker) eval(sc *Scope, e ast.Expr, rep diag.Reporter) templates.Value {
	switch x := e.(type) {
	case nil:
		return templates.Value{}
	case *ast.NameExpr:
		sym := sc.lookup(x.Name)
		if sym == nil {
			diag.ReportError(rep, diag.SemaUnresolvedSymbol, x.Span(),
				fmt.Sprintf("unresolved name %q", tc.name(x.Name))).
				Emit()
			return templates.Value{}
		}
		return tc.resolve(sym, rep)
	case *ast.IntLit:
		return tc.intLiteral(x, rep)
	case *ast.BoolLit:
		if x.Value {
			return constValue(tc.types.Builtins().Bool, 1)
		}
		return constValue(tc.types.Builtins().Bool, 0)
	case *ast.CharLit:
		return tc.charLiteral(x, rep)
	case *ast.UnaryExpr:
		return tc.unary(sc, x, rep)
	case *ast.BinaryExpr:
		return tc.binary(sc, x, rep)
	case *ast.MemberExpr:
		return tc.member(sc, x, rep)
	case *ast.CallExpr:
		return tc.call(sc, x, rep)
	case *ast.ApplyExpr:
		return tc.apply(sc, x, rep)
	case *ast.ArrayTypeExpr:
		return tc.arrayType(sc, x, rep)
	case *ast.TupleTypeExpr:
		elems := make([]types.TypeID, 0, len(x.Elems))
		for _, el := range x.Elems {
			t, ok := tc.evalType(sc, el, rep)
			if !ok {
				return templates.Value{}
			}
			elems = append(elems, t)
		}
		return typeValue(tc.types.Tuple(elems))
	case *ast.PointerTypeExpr:
		t, ok := tc.evalType(sc, x.Elem, rep)
		if !ok {
			return templates.Value{}
		}
		return typeValue(tc.types.Pointer(t))
	case *ast.FuncTypeExpr:
		return tc.funcType(sc, x, rep)
	}
	diag.ReportError(rep, diag.SemaError, e.Span(), "unsupported expression").Emit()
	return templates.Value{}
}

// evalType evaluates e and requires a type.
func (tc *typeChecker) evalType(sc *Scope, e ast.Expr, rep diag.Reporter) (types.TypeID, bool) {
	v := tc.eval(sc, e, rep)
	switch v.Kind {
	case templates.ValueType:
		return v.Arg.Type, true
	case templates.ValueInvalid, templates.ValueNotDeduced:
		return types.NoTypeID, false
	}
	diag.ReportError(rep, diag.SemaNameIsNotType, e.Span(), "expected a type").Emit()
	return types.NoTypeID, false
}

var intSuffixes = map[string]string{
	"i8": "i8", "i16": "i16", "i32": "i32", "i64": "i64",
	"u8": "u8", "u16": "u16", "u32": "u32", "u64": "u64",
	"u": "u32", "s": "size_type",
}

func (tc *typeChecker) intLiteral(x *ast.IntLit, rep diag.Reporter) templates.Value {
	if x.Suffix == "" {
		if x.Value > math.MaxInt64 {
			diag.ReportError(rep, diag.SemaIntLiteralOutOfRange, x.Span(),
				fmt.Sprintf("integer literal %d is too large", x.Value)).
				Emit()
			return templates.Value{}
		}
		return untypedValue(int64(x.Value))
	}
	name, ok := intSuffixes[x.Suffix]
	if !ok {
		diag.ReportError(rep, diag.SemaError, x.Span(), fmt.Sprintf("unknown literal suffix %q", x.Suffix)).Emit()
		return templates.Value{}
	}
	t, _ := tc.types.Fundamental(name)
	if !tc.types.FitsUnsigned(t, x.Value) {
		diag.ReportError(rep, diag.SemaIntLiteralOutOfRange, x.Span(),
			fmt.Sprintf("literal %d does not fit into %s", x.Value, tc.label(t))).
			Emit()
		return templates.Value{}
	}
	return constValue(t, x.Value)
}

// signedSuffix resolves a literal suffix naming a signed integer type.
func (tc *typeChecker) signedSuffix(suffix string) (types.TypeID, bool) {
	name, ok := intSuffixes[suffix]
	if !ok {
		return types.NoTypeID, false
	}
	t, ok := tc.types.Fundamental(name)
	return t, ok && tc.types.IsSigned(t)
}

// negativeLiteral applies the sign before the range check of t.
func (tc *typeChecker) negativeLiteral(lit *ast.IntLit, t types.TypeID, x *ast.UnaryExpr, rep diag.Reporter) templates.Value {
	n := int64(math.MinInt64)
	if lit.Value < 1<<63 {
		n = -int64(lit.Value) //nolint:gosec // bounded above
	}
	if lit.Value > 1<<63 || !tc.types.FitsSigned(t, n) {
		diag.ReportError(rep, diag.SemaIntLiteralOutOfRange, x.Span(),
			fmt.Sprintf("literal -%d does not fit into %s", lit.Value, tc.label(t))).
			Emit()
		return templates.Value{}
	}
	return constValue(t, tc.types.Normalize(t, uint64(n))) //nolint:gosec // two's complement
}

func (tc *typeChecker) charLiteral(x *ast.CharLit, rep diag.Reporter) templates.Value {
	b := tc.types.Builtins()
	var t types.TypeID
	switch x.Suffix {
	case "c8":
		t = b.Char8
	case "c16":
		t = b.Char16
	case "c32":
		t = b.Char32
	case "":
		t = b.Char8
		if x.Value >= 0x80 {
			t = b.Char32
		}
	default:
		diag.ReportError(rep, diag.SemaError, x.Span(), fmt.Sprintf("unknown literal suffix %q", x.Suffix)).Emit()
		return templates.Value{}
	}
	if x.Value < 0 || !tc.types.FitsUnsigned(t, uint64(x.Value)) {
		diag.ReportError(rep, diag.SemaIntLiteralOutOfRange, x.Span(),
			fmt.Sprintf("character does not fit into %s", tc.label(t))).
			Emit()
		return templates.Value{}
	}
	return constValue(t, uint64(x.Value))
}

// apply handles Name</args/>: type templates go through the engine,
// function templates named without a call are instantiated from explicit
// arguments.
func (tc *typeChecker) apply(sc *Scope, x *ast.ApplyExpr, rep diag.Reporter) templates.Value {
	if set := tc.overloadsOf(sc, x.Base); set != nil {
		tc.compileOverloads(set, rep)
		args, ok := tc.engine.EvalArgs(x.Args, sc, rep)
		if !ok {
			return templates.Value{}
		}
		h, ok := tc.engine.InstantiateExplicit(set.generics, args, x.Span(), rep)
		if !ok {
			if len(set.generics) == 0 {
				diag.ReportError(rep, diag.TplNotTemplate, x.Base.Span(),
					fmt.Sprintf("%q is not a function template", tc.name(set.name))).
					Emit()
			}
			return templates.Value{}
		}
		return runtimeValue(h.Type, false)
	}
	h, ok := tc.engine.ResolveGenericApplication(x, sc, rep)
	if !ok || h.Type == types.NoTypeID {
		return templates.Value{}
	}
	return typeValue(h.Type)
}

// overloadsOf returns the overload set e names, if any.
func (tc *typeChecker) overloadsOf(sc *Scope, e ast.Expr) *overloadSet {
	n, ok := e.(*ast.NameExpr)
	if !ok {
		return nil
	}
	sym := sc.lookup(n.Name)
	if sym == nil || sym.kind != symFunctions {
		return nil
	}
	return sym.overloads
}

func (tc *typeChecker) arrayType(sc *Scope, x *ast.ArrayTypeExpr, rep diag.Reporter) templates.Value {
	elem, ok := tc.evalType(sc, x.Elem, rep)
	if !ok {
		return templates.Value{}
	}
	size := tc.eval(sc, x.Size, rep)
	switch size.Kind {
	case templates.ValueInvalid, templates.ValueNotDeduced:
		return templates.Value{}
	case templates.ValueConst:
	default:
		diag.ReportError(rep, diag.SemaConstNotConstant, x.Size.Span(), "array size must be a compile-time constant").Emit()
		return templates.Value{}
	}
	n, ok := tc.convertConst(size, tc.types.Builtins().Size, x.Size.Span(), rep)
	if !ok {
		return templates.Value{}
	}
	return typeValue(tc.types.Array(elem, n.Arg.Bits))
}

func (tc *typeChecker) funcType(sc *Scope, x *ast.FuncTypeExpr, rep diag.Reporter) templates.Value {
	info := types.FnInfo{
		Result: tc.types.Builtins().Void,
		RetRef: x.RetRef,
		RetMut: x.RetMut,
		Unsafe: x.Unsafe,
	}
	for _, p := range x.Params {
		t, ok := tc.evalType(sc, p.Type, rep)
		if !ok {
			return templates.Value{}
		}
		info.Params = append(info.Params, types.FnParam{Type: t, Ref: p.Ref, Mut: p.Mut})
	}
	if x.Ret != nil {
		t, ok := tc.evalType(sc, x.Ret, rep)
		if !ok {
			return templates.Value{}
		}
		info.Result = t
	}
	return typeValue(tc.types.Function(info))
}

// member handles E::Member for enums and x.field for class values.
func (tc *typeChecker) member(sc *Scope, x *ast.MemberExpr, rep diag.Reporter) templates.Value {
	base := tc.eval(sc, x.X, rep)
	switch base.Kind {
	case templates.ValueInvalid:
		return base
	case templates.ValueType:
		if !x.Path {
			break
		}
		info, ok := tc.types.EnumInfo(base.Arg.Type)
		if !ok {
			break
		}
		for _, m := range info.Members {
			if m.Name == x.Name {
				return constValue(base.Arg.Type, m.Value)
			}
		}
	case templates.ValueRuntime:
		if x.Path || tc.types.KindOf(base.Arg.Type) != types.KindClass {
			break
		}
		if !tc.requireComplete(base.Arg.Type, x.X.Span(), rep) {
			return templates.Value{}
		}
		info, _ := tc.types.ClassInfo(base.Arg.Type)
		for _, f := range info.Fields {
			if f.Name == x.Name {
				return runtimeValue(f.Type, base.Mutable)
			}
		}
	}
	diag.ReportError(rep, diag.SemaMemberNotFound, x.Span(),
		fmt.Sprintf("%q is not a member of %s", tc.name(x.Name), tc.describe(base))).
		Emit()
	return templates.Value{}
}

// describe renders a value for diagnostics.
func (tc *typeChecker) describe(v templates.Value) string {
	switch v.Kind {
	case templates.ValueType:
		return tc.label(v.Arg.Type)
	case templates.ValueConst:
		if v.Untyped {
			return fmt.Sprintf("constant %d", int64(v.Arg.Bits)) //nolint:gosec // untyped constants keep int64 bits
		}
		return "constant " + types.ValueLabel(tc.types, v.Arg.Type, v.Arg.Bits) + " of type " + tc.label(v.Arg.Type)
	case templates.ValueRuntime:
		return "value of type " + tc.label(v.Arg.Type)
	case templates.ValueTemplates:
		return "type template"
	case templates.ValueFunctions:
		return "function"
	}
	return "expression"
}
