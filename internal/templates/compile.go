package templates

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// patternCompiler holds the state of one declaration compile.
type patternCompiler struct {
	e     *Engine
	g     *Generic
	scope Scope
	rep   diag.Reporter
	ok    bool
}

// DeclareTypeTemplate compiles a class or alias template and adds it to
// set. It returns nil when the declaration is rejected; set is then marked
// broken so that its uses do not report a second, misleading error.
func (e *Engine) DeclareTypeTemplate(set *TypeTemplateSet, decl *ast.TypeTemplateDecl, scope Scope, rep diag.Reporter) *Generic {
	g := &Generic{
		Kind:     TypeTemplate,
		Name:     decl.Name,
		Scope:    scope,
		Span:     decl.Span(),
		TypeDecl: decl,
	}
	pc := &patternCompiler{e: e, g: g, scope: scope, rep: rep, ok: true}
	pc.params(decl.Params)

	if decl.ShortForm {
		g.Signature = make([]Pattern, len(g.Params))
		g.Defaults = make([]ast.Expr, len(g.Params))
		for i := range g.Params {
			g.Signature[i] = &ParamRef{Index: i}
			g.Params[i].Used = true
		}
		g.FirstOptional = len(g.Params)
	} else {
		g.Signature = make([]Pattern, len(decl.Signature))
		g.Defaults = make([]ast.Expr, len(decl.Signature))
		g.FirstOptional = len(decl.Signature)
		for i, sp := range decl.Signature {
			g.Signature[i] = pc.pattern(sp.Type)
			g.Defaults[i] = sp.Default
			switch {
			case sp.Default != nil && g.FirstOptional == len(decl.Signature):
				g.FirstOptional = i
			case sp.Default == nil && g.FirstOptional < i:
				diag.ReportError(rep, diag.TplMandatoryAfterOptional, sp.Span(),
					"mandatory signature parameter after optional one").
					WithNote(decl.Signature[g.FirstOptional].Span(), "first optional parameter is here").
					Emit()
				pc.ok = false
			}
		}
	}

	pc.checkUsage(nil)
	if pc.ok {
		for _, other := range set.Templates {
			if patternListsEqual(other.Signature, g.Signature) {
				diag.ReportError(rep, diag.TplRedefinition, decl.Span(),
					fmt.Sprintf("type template %q is already defined with the same signature", e.name(decl.Name))).
					WithNote(other.Span, "previous definition").
					Emit()
				pc.ok = false
				break
			}
		}
	}
	if !pc.ok {
		set.Broken = true
		return nil
	}
	e.register(g)
	set.Templates = append(set.Templates, g)
	return g
}

// DeclareFunctionTemplate compiles a function template. The returned
// generic belongs to the caller's overload set; nil means rejected.
func (e *Engine) DeclareFunctionTemplate(decl *ast.FunctionTemplateDecl, scope Scope, rep diag.Reporter) *Generic {
	fn := decl.Func
	g := &Generic{
		Kind:     FunctionTemplate,
		Name:     fn.Name,
		Scope:    scope,
		Span:     decl.Span(),
		FuncDecl: decl,
	}
	pc := &patternCompiler{e: e, g: g, scope: scope, rep: rep, ok: true}
	pc.params(decl.Params)

	g.Signature = make([]Pattern, len(fn.Params))
	g.CallParams = make([]CallParam, len(fn.Params))
	for i, p := range fn.Params {
		g.Signature[i] = pc.pattern(p.Type)
		g.CallParams[i] = CallParam{Ref: p.Ref, Mut: p.Mut}
	}
	g.FirstOptional = len(g.Signature)
	if fn.Ret != nil {
		g.Result = pc.pattern(fn.Ret)
	} else {
		g.Result = &Concrete{Arg: types.TypeArg(e.types.Builtins().Void)}
	}

	pc.checkUsage(g.Result)
	if !pc.ok {
		return nil
	}
	e.register(g)
	return g
}

func (e *Engine) register(g *Generic) {
	id, err := safecast.Conv[uint32](len(e.generics) + 1)
	if err != nil {
		panic(fmt.Errorf("templates: too many generic declarations: %w", err))
	}
	g.ID = GenericID(id)
	e.generics = append(e.generics, g)
}

func (pc *patternCompiler) params(list []*ast.TemplateParam) {
	pc.g.Params = make([]Param, 0, len(list))
	for i, tp := range list {
		if prev := pc.g.paramIndex(tp.Name); prev >= 0 {
			diag.ReportError(pc.rep, diag.TplParamRedefinition, tp.Span(),
				fmt.Sprintf("template parameter %q is already declared", pc.e.name(tp.Name))).
				WithNote(pc.g.Params[prev].Span, "previous declaration").
				Emit()
			pc.ok = false
		} else if pc.scope != nil && pc.scope.Defines(tp.Name) {
			diag.ReportError(pc.rep, diag.TplParamShadows, tp.Span(),
				fmt.Sprintf("template parameter %q shadows a name from the enclosing scope", pc.e.name(tp.Name))).
				Emit()
			pc.ok = false
		}
		p := Param{Name: tp.Name, Kind: TypeParam, Span: tp.Span()}
		if tp.Type != nil {
			p.Kind = ValueParam
			p.Type = pc.valueParamType(i, tp.Type)
		}
		pc.g.Params = append(pc.g.Params, p)
	}
}

// valueParamType compiles the type of value parameter i. Only earlier
// type parameters may be referenced.
func (pc *patternCompiler) valueParamType(i int, e ast.Expr) Pattern {
	if name, ok := e.(*ast.NameExpr); ok {
		j := pc.g.paramIndex(name.Name)
		switch {
		case j >= 0 && pc.g.Params[j].Kind == ValueParam:
			diag.ReportError(pc.rep, diag.SemaNameIsNotType, e.Span(),
				fmt.Sprintf("%q is a value parameter, not a type", pc.e.name(name.Name))).
				Emit()
			pc.ok = false
			return nil
		case j >= 0:
			return &ParamRef{Index: j}
		case pc.laterParam(i, name.Name):
			diag.ReportError(pc.rep, diag.TplParamOrder, e.Span(),
				fmt.Sprintf("type of template parameter %q references %q which is not declared before it",
					pc.e.name(pc.declParams()[i].Name), pc.e.name(name.Name))).
				Emit()
			pc.ok = false
			return nil
		}
	}
	if pc.mentionsParam(e) {
		diag.ReportError(pc.rep, diag.TplInvalidValueParamType, e.Span(),
			"template value parameter type must be a fundamental type, an enum or a type parameter").
			Emit()
		pc.ok = false
		return nil
	}
	v := pc.e.host.Eval(pc.scope, e, pc.rep)
	switch {
	case v.Kind == ValueInvalid:
		pc.ok = false
		return nil
	case v.Kind != ValueType:
		diag.ReportError(pc.rep, diag.SemaNameIsNotType, e.Span(), "expected a type").Emit()
		pc.ok = false
		return nil
	case !pc.e.types.IsValueParamType(v.Arg.Type):
		diag.ReportError(pc.rep, diag.TplInvalidValueParamType, e.Span(),
			fmt.Sprintf("type %s can not be used for template value parameters", types.Label(pc.e.types, v.Arg.Type))).
			Emit()
		pc.ok = false
		return nil
	}
	return &Concrete{Arg: types.TypeArg(v.Arg.Type)}
}

func (pc *patternCompiler) declParams() []*ast.TemplateParam {
	if pc.g.TypeDecl != nil {
		return pc.g.TypeDecl.Params
	}
	if pc.g.FuncDecl != nil {
		return pc.g.FuncDecl.Params
	}
	return nil
}

// laterParam reports whether name is declared at position i or after it.
func (pc *patternCompiler) laterParam(i int, name source.StringID) bool {
	list := pc.declParams()
	for j := i; j < len(list); j++ {
		if list[j].Name == name {
			return true
		}
	}
	return false
}

func (pc *patternCompiler) mentionsParam(e ast.Expr) bool {
	found := false
	ast.Inspect(e, func(x ast.Expr) bool {
		if found {
			return false
		}
		if n, ok := x.(*ast.NameExpr); ok && pc.g.paramIndex(n.Name) >= 0 {
			found = true
		}
		return !found
	})
	return found
}

// pattern compiles one signature expression. Subtrees that do not mention
// a template parameter are evaluated by the host into a Concrete.
func (pc *patternCompiler) pattern(e ast.Expr) Pattern {
	if e == nil {
		pc.ok = false
		return nil
	}
	if !pc.mentionsParam(e) {
		return pc.concrete(e)
	}
	switch x := e.(type) {
	case *ast.NameExpr:
		i := pc.g.paramIndex(x.Name)
		pc.g.Params[i].Used = true
		return &ParamRef{Index: i}
	case *ast.ApplyExpr:
		if pc.mentionsParam(x.Base) {
			break
		}
		base := pc.e.host.Eval(pc.scope, x.Base, pc.rep)
		if base.Kind == ValueInvalid {
			pc.ok = false
			return nil
		}
		if base.Kind != ValueTemplates || base.Set == nil {
			diag.ReportError(pc.rep, diag.TplNotTemplate, x.Base.Span(), "expected a type template").Emit()
			pc.ok = false
			return nil
		}
		app := &GenericApp{Set: base.Set, Args: make([]Pattern, len(x.Args))}
		for i, a := range x.Args {
			app.Args[i] = pc.pattern(a)
		}
		return app
	case *ast.ArrayTypeExpr:
		return &ArrayOf{Elem: pc.pattern(x.Elem), Size: pc.pattern(x.Size)}
	case *ast.TupleTypeExpr:
		tup := &TupleOf{Elems: make([]Pattern, len(x.Elems))}
		for i, el := range x.Elems {
			tup.Elems[i] = pc.pattern(el)
		}
		return tup
	case *ast.PointerTypeExpr:
		return &PointerTo{Elem: pc.pattern(x.Elem)}
	case *ast.FuncTypeExpr:
		fn := &FunctionOf{
			Params: make([]FuncParamPattern, len(x.Params)),
			RetRef: x.RetRef,
			RetMut: x.RetMut,
			Unsafe: x.Unsafe,
		}
		for i, p := range x.Params {
			fn.Params[i] = FuncParamPattern{Type: pc.pattern(p.Type), Ref: p.Ref, Mut: p.Mut}
		}
		if x.Ret != nil {
			fn.Ret = pc.pattern(x.Ret)
		} else {
			fn.Ret = &Concrete{Arg: types.TypeArg(pc.e.types.Builtins().Void)}
		}
		return fn
	}
	diag.ReportError(pc.rep, diag.TplInvalidArg, e.Span(),
		"expression depending on template parameters is not allowed in a signature").
		Emit()
	pc.ok = false
	return nil
}

func (pc *patternCompiler) concrete(e ast.Expr) Pattern {
	v := pc.e.host.Eval(pc.scope, e, pc.rep)
	switch v.Kind {
	case ValueType, ValueConst:
		return &Concrete{Arg: v.Arg, Untyped: v.Untyped}
	case ValueInvalid:
	case ValueRuntime:
		diag.ReportError(pc.rep, diag.TplExpectedConstant, e.Span(), "expected a compile-time constant").Emit()
	default:
		diag.ReportError(pc.rep, diag.TplInvalidArg, e.Span(), "expected a type or a compile-time constant").Emit()
	}
	pc.ok = false
	return nil
}

// checkUsage reports parameters that no signature position (or result)
// references. A type parameter also counts as used when it is the type of
// a used value parameter.
func (pc *patternCompiler) checkUsage(result Pattern) {
	if !pc.ok {
		return
	}
	if result != nil {
		markUsed(pc.g, result)
	}
	for i := len(pc.g.Params) - 1; i >= 0; i-- {
		p := &pc.g.Params[i]
		if p.Kind != ValueParam || !p.Used {
			continue
		}
		if ref, ok := p.Type.(*ParamRef); ok {
			pc.g.Params[ref.Index].Used = true
		}
	}
	for _, p := range pc.g.Params {
		if !p.Used {
			diag.ReportError(pc.rep, diag.TplUnusedParam, p.Span,
				fmt.Sprintf("template parameter %q is not used in the signature", pc.e.name(p.Name))).
				Emit()
			pc.ok = false
		}
	}
}

func markUsed(g *Generic, p Pattern) {
	switch x := p.(type) {
	case *ParamRef:
		g.Params[x.Index].Used = true
	case *ArrayOf:
		markUsed(g, x.Elem)
		markUsed(g, x.Size)
	case *TupleOf:
		for _, el := range x.Elems {
			markUsed(g, el)
		}
	case *PointerTo:
		markUsed(g, x.Elem)
	case *FunctionOf:
		for _, prm := range x.Params {
			markUsed(g, prm.Type)
		}
		markUsed(g, x.Ret)
	case *GenericApp:
		for _, a := range x.Args {
			markUsed(g, a)
		}
	}
}
