package sema

import (
	"fmt"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// classBuild remembers how to complete a non-template class.
type classBuild struct {
	decl  *ast.ClassDecl
	scope *Scope
}

// resolve computes the value of a global symbol on first use.
func (tc *typeChecker) resolve(sym *symbol, rep diag.Reporter) templates.Value {
	switch sym.state {
	case stateDone:
		return sym.value
	case stateVisiting:
		switch sym.kind {
		case symTemplates:
			// a template signature that mentions its own name sees the
			// templates declared so far
			return templates.Value{Kind: templates.ValueTemplates, Set: sym.set}
		case symClass:
			return sym.value
		}
		diag.ReportError(rep, diag.SemaConstCycle, sym.span,
			fmt.Sprintf("%q depends on itself", tc.name(sym.name))).
			Emit()
		return templates.Value{}
	}
	sym.state = stateVisiting

	var v templates.Value
	switch sym.kind {
	case symClass:
		decl, _ := sym.decl.(*ast.ClassDecl)
		id := tc.types.RegisterClass(decl.Name, decl.Span())
		tc.classes[id] = &classBuild{decl: decl, scope: tc.global}
		v = templates.Value{Kind: templates.ValueType, Arg: types.TypeArg(id)}
		// visible before completion so fields can point to their own class
		sym.value = v
	case symAlias:
		decl, _ := sym.decl.(*ast.AliasDecl)
		if t, ok := tc.evalType(tc.global, decl.Target, rep); ok {
			v = templates.Value{Kind: templates.ValueType, Arg: types.TypeArg(t)}
		}
	case symEnum:
		v = tc.resolveEnum(sym.decl.(*ast.EnumDecl), rep)
	case symConst:
		v = tc.resolveConst(tc.global, sym.decl.(*ast.ConstDecl), rep)
	case symTemplates:
		for _, decl := range sym.templates {
			tc.engine.DeclareTypeTemplate(sym.set, decl, tc.global, rep)
		}
		v = templates.Value{Kind: templates.ValueTemplates, Set: sym.set}
	case symFunctions:
		v = templates.Value{Kind: templates.ValueFunctions}
	default:
		v = sym.value
	}
	sym.value = v
	sym.state = stateDone
	return v
}

func (tc *typeChecker) resolveConst(sc *Scope, decl *ast.ConstDecl, rep diag.Reporter) templates.Value {
	v := tc.eval(sc, decl.Value, rep)
	switch v.Kind {
	case templates.ValueInvalid:
		return v
	case templates.ValueConst:
	case templates.ValueRuntime:
		diag.ReportError(rep, diag.SemaConstNotConstant, decl.Value.Span(),
			fmt.Sprintf("initializer of %q is not a compile-time constant", tc.name(decl.Name))).
			Emit()
		return templates.Value{}
	default:
		diag.ReportError(rep, diag.SemaTypeMismatch, decl.Value.Span(), "expected a value").Emit()
		return templates.Value{}
	}
	if decl.Type == nil {
		return v
	}
	t, ok := tc.evalType(sc, decl.Type, rep)
	if !ok {
		return templates.Value{}
	}
	out, ok := tc.convertConst(v, t, decl.Value.Span(), rep)
	if !ok {
		return templates.Value{}
	}
	return out
}

func (tc *typeChecker) resolveEnum(decl *ast.EnumDecl, rep diag.Reporter) templates.Value {
	id := tc.types.RegisterEnum(decl.Name, decl.Span())
	var base types.TypeID
	if decl.Base != nil {
		t, ok := tc.evalType(tc.global, decl.Base, rep)
		if !ok {
			return templates.Value{}
		}
		if !tc.types.IsInteger(t) {
			diag.ReportError(rep, diag.SemaEnumInvalidBaseType, decl.Base.Span(),
				fmt.Sprintf("enum base type must be an integer, got %s", tc.label(t))).
				Emit()
			return templates.Value{}
		}
		base = t
	} else {
		base = tc.smallestUnsigned(len(decl.Members))
	}
	tc.types.SetEnumBase(id, base)

	members := make([]types.EnumMember, 0, len(decl.Members))
	seen := make(map[source.StringID]source.Span, len(decl.Members))
	for i, m := range decl.Members {
		if prev, dup := seen[m.Name]; dup {
			diag.ReportError(rep, diag.SemaDuplicateSymbol, m.Span(),
				fmt.Sprintf("enum member %q is already defined", tc.name(m.Name))).
				WithNote(prev, "previous definition").
				Emit()
			continue
		}
		seen[m.Name] = m.Span()
		value := uint64(len(members))
		if !tc.types.FitsUnsigned(base, value) {
			diag.ReportError(rep, diag.SemaEnumValueOverflow, m.Span(),
				fmt.Sprintf("enum member %q (index %d) does not fit into %s", tc.name(m.Name), i, tc.label(base))).
				Emit()
			break
		}
		members = append(members, types.EnumMember{Name: m.Name, Value: value})
	}
	tc.types.SetEnumMembers(id, members)
	return templates.Value{Kind: templates.ValueType, Arg: types.TypeArg(id)}
}

func (tc *typeChecker) smallestUnsigned(count int) types.TypeID {
	b := tc.types.Builtins()
	switch {
	case count <= 1<<8:
		return b.U8
	case count <= 1<<16:
		return b.U16
	}
	return b.U32
}

// completeClass resolves the fields of a declared class. Field types must
// themselves be complete; a class reached again while its fields are
// being resolved contains itself by value.
func (tc *typeChecker) completeClass(id types.TypeID, rep diag.Reporter) bool {
	info, ok := tc.types.ClassInfo(id)
	if !ok {
		return false
	}
	switch info.State {
	case types.ClassComplete:
		return true
	case types.ClassFailed, types.ClassBuilding:
		return false
	}
	build := tc.classes[id]
	if build == nil {
		return false
	}
	return tc.buildFields(id, build.decl.Fields, build.scope, rep)
}

func (tc *typeChecker) buildFields(id types.TypeID, decls []*ast.FieldDecl, sc *Scope, rep diag.Reporter) bool {
	tc.types.SetClassState(id, types.ClassBuilding)
	ok := true
	fields := make([]types.Field, 0, len(decls))
	seen := make(map[source.StringID]source.Span, len(decls))
	for _, f := range decls {
		if prev, dup := seen[f.Name]; dup {
			diag.ReportError(rep, diag.SemaDuplicateField, f.Span(),
				fmt.Sprintf("field %q is already declared", tc.name(f.Name))).
				WithNote(prev, "previous declaration").
				Emit()
			ok = false
			continue
		}
		seen[f.Name] = f.Span()
		t, good := tc.evalType(sc, f.Type, rep)
		if !good {
			ok = false
			continue
		}
		if !tc.requireComplete(t, f.Type.Span(), rep) {
			ok = false
			continue
		}
		fields = append(fields, types.Field{Name: f.Name, Type: t, Span: f.Span()})
	}
	tc.types.SetClassFields(id, fields)
	if ok {
		tc.types.SetClassState(id, types.ClassComplete)
	} else {
		tc.types.SetClassState(id, types.ClassFailed)
	}
	return ok
}

// requireComplete makes sure values of type t can be stored: classes are
// completed, arrays and tuples check their elements.
func (tc *typeChecker) requireComplete(t types.TypeID, sp source.Span, rep diag.Reporter) bool {
	tt, ok := tc.types.Lookup(t)
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindClass:
		info, _ := tc.types.ClassInfo(t)
		switch info.State {
		case types.ClassComplete:
			return true
		case types.ClassBuilding:
			diag.ReportError(rep, diag.SemaRecursiveUnsized, sp,
				fmt.Sprintf("class %s contains itself by value", tc.label(t))).
				WithNote(info.Decl, "class declared here").
				Emit()
			return false
		case types.ClassFailed:
			return false
		}
		if tc.completeClass(t, rep) {
			return true
		}
		if _, known := tc.classes[t]; !known {
			diag.ReportError(rep, diag.SemaIncompleteType, sp,
				fmt.Sprintf("use of incomplete type %s", tc.label(t))).
				Emit()
		}
		return false
	case types.KindArray:
		return tc.requireComplete(tt.Elem, sp, rep)
	case types.KindTuple:
		info, _ := tc.types.TupleInfo(t)
		if info == nil {
			return false
		}
		for _, el := range info.Elems {
			if !tc.requireComplete(el, sp, rep) {
				return false
			}
		}
	case types.KindVoid:
		diag.ReportError(rep, diag.SemaIncompleteType, sp, "void can not be stored").Emit()
		return false
	}
	return true
}

// compileOverloads declares the function templates of an overload set and
// resolves the signatures of its functions.
func (tc *typeChecker) compileOverloads(set *overloadSet, rep diag.Reporter) {
	if set.compiled || set.compiling {
		return
	}
	set.compiling = true
	for _, decl := range set.decls {
		if g := tc.engine.DeclareFunctionTemplate(decl, tc.global, rep); g != nil {
			set.generics = append(set.generics, g)
		}
	}
	for _, fn := range set.funcs {
		tc.resolveSignature(fn, rep)
	}
	set.compiling = false
	set.compiled = true
}

// resolveSignature computes the parameter and result types of fn.
func (tc *typeChecker) resolveSignature(fn *Func, rep diag.Reporter) bool {
	switch fn.state {
	case stateDone:
		return fn.Type != types.NoTypeID
	case stateVisiting:
		return false
	}
	fn.state = stateVisiting
	defer func() { fn.state = stateDone }()

	decl := fn.Decl
	info := types.FnInfo{
		Params: make([]types.FnParam, 0, len(decl.Params)),
		Result: tc.types.Builtins().Void,
		RetRef: decl.RetRef,
		RetMut: decl.RetMut,
		Unsafe: decl.Unsafe,
	}
	ok := true
	for _, p := range decl.Params {
		t, good := tc.evalType(fn.Scope, p.Type, rep)
		if !good {
			ok = false
			continue
		}
		info.Params = append(info.Params, types.FnParam{Type: t, Ref: p.Ref, Mut: p.Mut})
	}
	if decl.Ret != nil {
		t, good := tc.evalType(fn.Scope, decl.Ret, rep)
		if !good {
			ok = false
		}
		info.Result = t
	}
	if !ok {
		return false
	}
	fn.Params = info.Params
	fn.Result = info.Result
	fn.RetRef = info.RetRef
	fn.RetMut = info.RetMut
	fn.Type = tc.types.Function(info)
	return true
}
