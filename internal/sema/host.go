package sema

import (
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// BindArgs implements templates.Host.
func (tc *typeChecker) BindArgs(g *templates.Generic, st *templates.DeductionState) templates.Scope {
	sc := tc.bindScope(g)
	for i, p := range g.Params {
		v := templates.Value{Kind: templates.ValueNotDeduced}
		if arg, ok := st.Deduced(i); ok {
			v = argValue(arg)
		}
		sc.insert(&symbol{kind: symBound, name: p.Name, span: p.Span, state: stateDone, value: v})
	}
	return sc
}

func (tc *typeChecker) bindScope(g *templates.Generic) *Scope {
	parent, ok := g.Scope.(*Scope)
	if !ok || parent == nil {
		parent = tc.global
	}
	return newScope(parent)
}

// boundScope binds a complete argument list.
func (tc *typeChecker) boundScope(g *templates.Generic, args []types.Arg) *Scope {
	sc := tc.bindScope(g)
	for i, p := range g.Params {
		sc.insert(&symbol{kind: symBound, name: p.Name, span: p.Span, state: stateDone, value: argValue(args[i])})
	}
	return sc
}

func argValue(a types.Arg) templates.Value {
	if a.IsValue() {
		return constValue(a.Type, a.Bits)
	}
	return typeValue(a.Type)
}

// Allocate implements templates.Host. Classes get their nominal type
// immediately; function instances get a prototype with the signature
// already resolved so that recursive calls see the result type.
func (tc *typeChecker) Allocate(g *templates.Generic, args, signatureArgs []types.Arg) templates.Handle {
	switch {
	case g.Kind == templates.FunctionTemplate:
		fn := &Func{
			Name:    g.Name,
			Decl:    g.FuncDecl.Func,
			Scope:   tc.boundScope(g, args),
			Generic: g,
			Args:    args,
		}
		tc.resolveSignature(fn, diag.NopReporter{})
		tc.funcs = append(tc.funcs, fn)
		return templates.Handle{Kind: templates.HandleFunction, Type: fn.Type, Func: len(tc.funcs) - 1}
	case g.IsAlias():
		return templates.Handle{Kind: templates.HandleAlias}
	default:
		id := tc.types.RegisterClass(g.Name, g.Span)
		tc.types.SetClassOrigin(id, uint32(g.ID), args, signatureArgs)
		return templates.Handle{Kind: templates.HandleClass, Type: id}
	}
}

// Build implements templates.Host.
func (tc *typeChecker) Build(h templates.Handle, g *templates.Generic, scope templates.Scope, rep diag.Reporter) (templates.Handle, bool) {
	sc, ok := scope.(*Scope)
	if !ok || sc == nil {
		sc = tc.bindScope(g)
	}
	switch h.Kind {
	case templates.HandleClass:
		return h, tc.buildFields(h.Type, g.TypeDecl.Fields, sc, rep)
	case templates.HandleAlias:
		t, ok := tc.evalType(sc, g.TypeDecl.Alias, rep)
		if !ok {
			return h, false
		}
		h.Type = t
		return h, true
	case templates.HandleFunction:
		fn := tc.funcs[h.Func]
		fn.Scope = sc
		// signature errors of the prototype were discarded; report them
		// against this instance
		fn.state = stateUnvisited
		if !tc.resolveSignature(fn, rep) {
			return h, false
		}
		h.Type = fn.Type
		tc.checkFunc(fn, rep)
		return h, true
	}
	return h, false
}
