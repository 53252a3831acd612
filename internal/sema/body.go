package sema

import (
	"fmt"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// checkFunc checks the body of fn once. Parameters and let-bound locals
// are mutable runtime values; the result of every return must match the
// declared result type.
func (tc *typeChecker) checkFunc(fn *Func, rep diag.Reporter) {
	if fn.checked {
		return
	}
	fn.checked = true
	if !tc.resolveSignature(fn, rep) {
		return
	}

	sc := newScope(fn.Scope)
	sc.fn = fn
	for i, p := range fn.Decl.Params {
		if !tc.declareLocal(sc, p.Name, p.Span(), runtimeValue(fn.Params[i].Type, p.Mut), rep) {
			continue
		}
		if !p.Ref {
			tc.requireComplete(fn.Params[i].Type, p.Type.Span(), rep)
		}
	}
	for _, st := range fn.Decl.Body {
		tc.stmt(sc, st, rep)
	}
}

func (tc *typeChecker) declareLocal(sc *Scope, name source.StringID, sp source.Span, v templates.Value, rep diag.Reporter) bool {
	if prev := sc.local(name); prev != nil {
		diag.ReportError(rep, diag.SemaDuplicateSymbol, sp,
			fmt.Sprintf("%q is already defined", tc.name(name))).
			WithNote(prev.span, "previous definition").
			Emit()
		return false
	}
	sc.insert(&symbol{kind: symLocal, name: name, span: sp, state: stateDone, value: v})
	return true
}

func (tc *typeChecker) stmt(sc *Scope, st ast.Stmt, rep diag.Reporter) {
	switch s := st.(type) {
	case *ast.LetStmt:
		tc.let(sc, s, rep)
	case *ast.ExprStmt:
		tc.eval(sc, s.X, rep)
	case *ast.ReturnStmt:
		tc.ret(sc, s, rep)
	}
}

func (tc *typeChecker) let(sc *Scope, s *ast.LetStmt, rep diag.Reporter) {
	var t types.TypeID
	if s.Type != nil {
		var ok bool
		if t, ok = tc.evalType(sc, s.Type, rep); !ok {
			return
		}
		if !tc.requireComplete(t, s.Type.Span(), rep) {
			return
		}
	}
	if s.Init != nil {
		v := tc.eval(sc, s.Init, rep)
		switch v.Kind {
		case templates.ValueInvalid:
			return
		case templates.ValueConst, templates.ValueRuntime:
		default:
			diag.ReportError(rep, diag.SemaTypeMismatch, s.Init.Span(),
				fmt.Sprintf("expected a value, got %s", tc.describe(v))).
				Emit()
			return
		}
		switch {
		case t != types.NoTypeID && v.Kind == templates.ValueConst:
			if _, ok := tc.convertConst(v, t, s.Init.Span(), rep); !ok {
				return
			}
		case t != types.NoTypeID:
			if v.Arg.Type != t {
				diag.ReportError(rep, diag.SemaTypeMismatch, s.Init.Span(),
					fmt.Sprintf("expected %s, got %s", tc.label(t), tc.describe(v))).
					Emit()
				return
			}
		default:
			var ok bool
			if v, ok = tc.defaultType(v, s.Init.Span(), rep); !ok {
				return
			}
			t = v.Arg.Type
			if !tc.requireComplete(t, s.Init.Span(), rep) {
				return
			}
		}
	} else if t == types.NoTypeID {
		diag.ReportError(rep, diag.SemaTypeMismatch, s.Span(),
			fmt.Sprintf("%q needs a type or an initializer", tc.name(s.Name))).
			Emit()
		return
	}
	tc.declareLocal(sc, s.Name, s.Span(), runtimeValue(t, true), rep)
}

func (tc *typeChecker) ret(sc *Scope, s *ast.ReturnStmt, rep diag.Reporter) {
	fn := sc.fn
	if fn == nil {
		return
	}
	void := tc.types.Builtins().Void
	if s.Value == nil {
		if fn.Result != void {
			diag.ReportError(rep, diag.SemaReturnMismatch, s.Span(),
				fmt.Sprintf("missing return value of type %s", tc.label(fn.Result))).
				Emit()
		}
		return
	}
	v := tc.eval(sc, s.Value, rep)
	switch v.Kind {
	case templates.ValueInvalid:
		return
	case templates.ValueConst:
		if v.Untyped {
			if fn.Result == void {
				break
			}
			tc.convertConst(v, fn.Result, s.Value.Span(), rep)
			return
		}
	case templates.ValueRuntime:
	default:
		diag.ReportError(rep, diag.SemaReturnMismatch, s.Value.Span(),
			fmt.Sprintf("expected a value of type %s, got %s", tc.label(fn.Result), tc.describe(v))).
			Emit()
		return
	}
	if v.Untyped || v.Arg.Type != fn.Result {
		diag.ReportError(rep, diag.SemaReturnMismatch, s.Value.Span(),
			fmt.Sprintf("expected a value of type %s, got %s", tc.label(fn.Result), tc.describe(v))).
			Emit()
		return
	}
	if fn.RetRef && fn.RetMut && !(v.Kind == templates.ValueRuntime && v.Mutable) {
		diag.ReportError(rep, diag.SemaMutRefRequired, s.Value.Span(), "mutable reference expected").Emit()
	}
}
