package sema

import (
	"fmt"
	"strings"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// mismatch classifies why a function does not accept a call.
type mismatch uint8

const (
	matchOK mismatch = iota
	matchCount
	matchType
	matchMutability
)

// call resolves a call expression. Non-template overloads that accept the
// arguments exactly win; otherwise function templates are deduced from
// the argument types.
func (tc *typeChecker) call(sc *Scope, x *ast.CallExpr, rep diag.Reporter) templates.Value {
	callee := x.Callee
	var explicit []ast.Expr
	if app, ok := callee.(*ast.ApplyExpr); ok {
		callee = app.Base
		explicit = app.Args
	}
	set := tc.overloadsOf(sc, callee)
	if set == nil {
		if explicit == nil {
			if fv := tc.eval(sc, callee, rep); fv.Kind == templates.ValueRuntime && tc.types.KindOf(fv.Arg.Type) == types.KindFunction {
				return tc.callValue(sc, x, fv.Arg.Type, rep)
			} else if fv.Kind == templates.ValueInvalid {
				return fv
			}
		}
		diag.ReportError(rep, diag.SemaNotCallable, x.Callee.Span(),
			fmt.Sprintf("%s is not callable", ast.ExprString(x.Callee, tc.strs))).
			Emit()
		return templates.Value{}
	}
	tc.compileOverloads(set, rep)

	var explicitArgs []templates.Argument
	if explicit != nil {
		var ok bool
		if explicitArgs, ok = tc.engine.EvalArgs(explicit, sc, rep); !ok {
			return templates.Value{}
		}
	}
	args, ok := tc.callArgs(sc, x.Args, rep)
	if !ok {
		return templates.Value{}
	}

	if explicit == nil {
		var matches []*Func
		for _, fn := range set.funcs {
			if !tc.resolveSignature(fn, rep) {
				continue
			}
			if tc.accepts(fn.Params, args) == matchOK {
				matches = append(matches, fn)
			}
		}
		switch {
		case len(matches) == 1:
			return tc.callResult(matches[0])
		case len(matches) > 1:
			b := diag.ReportError(rep, diag.SemaAmbiguousOverload, x.Span(),
				fmt.Sprintf("ambiguous call to %q", tc.name(set.name)))
			for _, fn := range matches {
				b.WithNote(fn.Decl.Span(), "candidate: "+tc.label(fn.Type))
			}
			b.Emit()
			return templates.Value{}
		}
	}

	if len(set.generics) > 0 {
		site := templates.CallSite{
			Span:     x.Span(),
			Name:     set.name,
			Explicit: explicitArgs,
			Args:     make([]templates.CallArg, len(args)),
		}
		for i, a := range args {
			a, ok := tc.defaultType(a, x.Args[i].Span(), rep)
			if !ok {
				return templates.Value{}
			}
			site.Args[i] = templates.CallArg{
				Type:       a.Arg.Type,
				MutableRef: a.Kind == templates.ValueRuntime && a.Mutable,
				Span:       x.Args[i].Span(),
			}
		}
		h, ok := tc.engine.ResolveGenericCallCandidate(site, set.generics, rep)
		if !ok || h.Kind != templates.HandleFunction {
			return templates.Value{}
		}
		return tc.callResult(tc.funcs[h.Func])
	}

	if explicit != nil {
		diag.ReportError(rep, diag.TplNotTemplate, callee.Span(),
			fmt.Sprintf("%q is not a function template", tc.name(set.name))).
			Emit()
		return templates.Value{}
	}
	tc.reportNoOverload(x, set, args, rep)
	return templates.Value{}
}

// callValue checks a call through a value of function type.
func (tc *typeChecker) callValue(sc *Scope, x *ast.CallExpr, fnType types.TypeID, rep diag.Reporter) templates.Value {
	info, _ := tc.types.FnInfo(fnType)
	args, ok := tc.callArgs(sc, x.Args, rep)
	if !ok {
		return templates.Value{}
	}
	switch tc.accepts(info.Params, args) {
	case matchOK:
		return runtimeValue(info.Result, info.RetRef && info.RetMut)
	case matchCount:
		diag.ReportError(rep, diag.SemaArgCountMismatch, x.Span(),
			fmt.Sprintf("expected %d arguments, got %d", len(info.Params), len(args))).
			Emit()
	case matchMutability:
		diag.ReportError(rep, diag.SemaMutRefRequired, x.Span(), "mutable reference expected").Emit()
	default:
		diag.ReportError(rep, diag.SemaTypeMismatch, x.Span(),
			fmt.Sprintf("arguments do not match %s", tc.label(fnType))).
			Emit()
	}
	return templates.Value{}
}

func (tc *typeChecker) callArgs(sc *Scope, list []ast.Expr, rep diag.Reporter) ([]templates.Value, bool) {
	out := make([]templates.Value, len(list))
	ok := true
	for i, e := range list {
		v := tc.eval(sc, e, rep)
		switch v.Kind {
		case templates.ValueConst, templates.ValueRuntime:
			out[i] = v
		case templates.ValueInvalid:
			ok = false
		default:
			diag.ReportError(rep, diag.SemaTypeMismatch, e.Span(),
				fmt.Sprintf("expected a value, got %s", tc.describe(v))).
				Emit()
			ok = false
		}
	}
	return out, ok
}

// accepts matches argument values against parameters without conversions,
// apart from untyped integer constants that fit the parameter type.
func (tc *typeChecker) accepts(params []types.FnParam, args []templates.Value) mismatch {
	if len(params) != len(args) {
		return matchCount
	}
	result := matchOK
	for i, p := range params {
		a := args[i]
		if a.Untyped {
			if !tc.types.IsInteger(p.Type) || !tc.types.FitsSigned(p.Type, int64(a.Arg.Bits)) { //nolint:gosec // untyped constants keep int64 bits
				return matchType
			}
		} else if a.Arg.Type != p.Type {
			return matchType
		}
		if p.Ref && p.Mut && (a.Kind != templates.ValueRuntime || !a.Mutable) {
			result = matchMutability
		}
	}
	return result
}

func (tc *typeChecker) callResult(fn *Func) templates.Value {
	if fn.Type == types.NoTypeID {
		return templates.Value{}
	}
	return runtimeValue(fn.Result, fn.RetRef && fn.RetMut)
}

func (tc *typeChecker) reportNoOverload(x *ast.CallExpr, set *overloadSet, args []templates.Value, rep diag.Reporter) {
	if len(set.funcs) == 1 {
		fn := set.funcs[0]
		if fn.Type == types.NoTypeID {
			return
		}
		switch tc.accepts(fn.Params, args) {
		case matchCount:
			diag.ReportError(rep, diag.SemaArgCountMismatch, x.Span(),
				fmt.Sprintf("%q expects %d arguments, got %d", tc.name(set.name), len(fn.Params), len(args))).
				WithNote(fn.Decl.Span(), "declared here").
				Emit()
			return
		case matchMutability:
			diag.ReportError(rep, diag.SemaMutRefRequired, x.Span(),
				fmt.Sprintf("%q expects a mutable reference", tc.name(set.name))).
				WithNote(fn.Decl.Span(), "declared here").
				Emit()
			return
		}
	}
	labels := make([]string, len(args))
	for i, a := range args {
		labels[i] = tc.describe(a)
	}
	b := diag.ReportError(rep, diag.SemaNoOverload, x.Span(),
		fmt.Sprintf("no overload of %q accepts (%s)", tc.name(set.name), strings.Join(labels, ", ")))
	for _, fn := range set.funcs {
		if fn.Type != types.NoTypeID {
			b.WithNote(fn.Decl.Span(), "candidate: "+tc.label(fn.Type))
		}
	}
	b.Emit()
}
