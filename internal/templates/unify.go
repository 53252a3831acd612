package templates

import (
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// Outcome is the result of unifying one pattern with one argument.
type Outcome uint8

const (
	Invalid Outcome = iota
	MatchedConcrete
	MatchedParameter
)

func (o Outcome) String() string {
	switch o {
	case MatchedConcrete:
		return "matched-concrete"
	case MatchedParameter:
		return "matched-parameter"
	default:
		return "invalid"
	}
}

// Reason explains an Invalid outcome or a failed deduction.
type Reason uint8

const (
	ReasonNone        Reason = iota
	ReasonShape              // argument has a different structure
	ReasonConflict           // parameter already deduced to another value
	ReasonKind               // type given for a value or the reverse
	ReasonValueType          // constant type does not fit the parameter type
	ReasonRange              // literal not representable in the parameter type
	ReasonArity              // wrong number of arguments
	ReasonUndeduced          // parameter left without a value
	ReasonDefault            // default argument could not be evaluated
	ReasonNotConstant        // argument is not a compile-time constant
	ReasonMutability         // mutable reference required
)

// Unify matches p against arg, recording bindings in st. A failed
// unification may leave partial bindings; callers discard st then.
func (e *Engine) Unify(g *Generic, p Pattern, arg Argument, st *DeductionState) (Outcome, Reason) {
	switch x := p.(type) {
	case *Concrete:
		if r := e.matchConcrete(x, arg); r != ReasonNone {
			return Invalid, r
		}
		return MatchedConcrete, ReasonNone
	case *ParamRef:
		if r := e.bindParam(g, x.Index, arg, st); r != ReasonNone {
			return Invalid, r
		}
		return MatchedParameter, ReasonNone
	}

	if !arg.Arg.IsType() {
		return Invalid, ReasonKind
	}
	tt, ok := e.types.Lookup(arg.Arg.Type)
	if !ok {
		return Invalid, ReasonShape
	}
	var r Reason
	switch x := p.(type) {
	case *ArrayOf:
		if tt.Kind != types.KindArray {
			return Invalid, ReasonShape
		}
		size := e.types.Builtins().Size
		if r = e.unifyOne(g, x.Elem, Argument{Arg: types.TypeArg(tt.Elem), Span: arg.Span}, st); r == ReasonNone {
			r = e.unifyOne(g, x.Size, Argument{Arg: types.ValueArg(size, tt.Count), Span: arg.Span}, st)
		}
	case *TupleOf:
		info, ok := e.types.TupleInfo(arg.Arg.Type)
		if tt.Kind != types.KindTuple || !ok || len(info.Elems) != len(x.Elems) {
			return Invalid, ReasonShape
		}
		for i, el := range x.Elems {
			if r = e.unifyOne(g, el, Argument{Arg: types.TypeArg(info.Elems[i]), Span: arg.Span}, st); r != ReasonNone {
				break
			}
		}
	case *PointerTo:
		if tt.Kind != types.KindPointer {
			return Invalid, ReasonShape
		}
		r = e.unifyOne(g, x.Elem, Argument{Arg: types.TypeArg(tt.Elem), Span: arg.Span}, st)
	case *FunctionOf:
		r = e.unifyFunction(g, x, arg, st)
	case *GenericApp:
		r = e.unifyApp(g, x, arg, st)
	default:
		return Invalid, ReasonShape
	}
	if r != ReasonNone {
		return Invalid, r
	}
	return MatchedParameter, ReasonNone
}

func (e *Engine) unifyOne(g *Generic, p Pattern, arg Argument, st *DeductionState) Reason {
	_, r := e.Unify(g, p, arg, st)
	return r
}

func (e *Engine) unifyFunction(g *Generic, x *FunctionOf, arg Argument, st *DeductionState) Reason {
	info, ok := e.types.FnInfo(arg.Arg.Type)
	if !ok || len(info.Params) != len(x.Params) {
		return ReasonShape
	}
	if info.RetRef != x.RetRef || info.RetMut != x.RetMut || info.Unsafe != x.Unsafe {
		return ReasonShape
	}
	for i, prm := range x.Params {
		if info.Params[i].Ref != prm.Ref || info.Params[i].Mut != prm.Mut {
			return ReasonShape
		}
		if r := e.unifyOne(g, prm.Type, Argument{Arg: types.TypeArg(info.Params[i].Type), Span: arg.Span}, st); r != ReasonNone {
			return r
		}
	}
	return e.unifyOne(g, x.Ret, Argument{Arg: types.TypeArg(info.Result), Span: arg.Span}, st)
}

func (e *Engine) unifyApp(g *Generic, x *GenericApp, arg Argument, st *DeductionState) Reason {
	info, ok := e.types.ClassInfo(arg.Arg.Type)
	if !ok || info.Origin == nil || !x.Set.contains(GenericID(info.Origin.Generic)) {
		return ReasonShape
	}
	if len(info.Origin.SignatureArgs) != len(x.Args) {
		return ReasonShape
	}
	for i, sub := range x.Args {
		if r := e.unifyOne(g, sub, Argument{Arg: info.Origin.SignatureArgs[i], Span: arg.Span}, st); r != ReasonNone {
			return r
		}
	}
	return ReasonNone
}

func (e *Engine) matchConcrete(x *Concrete, arg Argument) Reason {
	if x.Arg.Kind != arg.Arg.Kind {
		return ReasonKind
	}
	if x.Arg.IsType() {
		if x.Arg.Type != arg.Arg.Type {
			return ReasonShape
		}
		return ReasonNone
	}
	switch {
	case x.Untyped && arg.Untyped:
		if x.Arg.Bits != arg.Arg.Bits {
			return ReasonShape
		}
		return ReasonNone
	case x.Untyped:
		want, r := e.coerce(x.Arg.Bits, arg.Arg.Type)
		if r != ReasonNone {
			return ReasonShape
		}
		if want != arg.Arg {
			return ReasonShape
		}
		return ReasonNone
	case arg.Untyped:
		got, r := e.coerce(arg.Arg.Bits, x.Arg.Type)
		if r != ReasonNone {
			return r
		}
		if got != x.Arg {
			return ReasonShape
		}
		return ReasonNone
	}
	if x.Arg != arg.Arg {
		return ReasonShape
	}
	return ReasonNone
}

// bindParam binds parameter i. Value parameters first unify the
// argument's type with their declared type pattern.
func (e *Engine) bindParam(g *Generic, i int, arg Argument, st *DeductionState) Reason {
	p := &g.Params[i]
	if p.Kind == TypeParam {
		if !arg.Arg.IsType() {
			return ReasonKind
		}
		if !st.Bind(i, arg.Arg) {
			return ReasonConflict
		}
		return ReasonNone
	}

	if !arg.Arg.IsValue() {
		return ReasonKind
	}
	value := arg.Arg
	if arg.Untyped {
		target, r := e.untypedTarget(g, p.Type, st)
		if r != ReasonNone {
			return r
		}
		if value, r = e.coerce(arg.Arg.Bits, target); r != ReasonNone {
			return r
		}
	} else {
		if !e.types.IsValueParamType(value.Type) {
			return ReasonValueType
		}
		switch e.unifyOne(g, p.Type, Argument{Arg: types.TypeArg(value.Type), Span: arg.Span}, st) {
		case ReasonNone:
		case ReasonConflict:
			return ReasonConflict
		default:
			return ReasonValueType
		}
	}
	if !st.Bind(i, value) {
		return ReasonConflict
	}
	return ReasonNone
}

// untypedTarget picks the type an untyped literal takes when bound to a
// value parameter with type pattern tp. An undeduced type parameter gets
// the literal's default type i32.
func (e *Engine) untypedTarget(g *Generic, tp Pattern, st *DeductionState) (types.TypeID, Reason) {
	switch x := tp.(type) {
	case *Concrete:
		return x.Arg.Type, ReasonNone
	case *ParamRef:
		if a, ok := st.Deduced(x.Index); ok {
			return a.Type, ReasonNone
		}
		def := e.types.Builtins().I32
		if !st.Bind(x.Index, types.TypeArg(def)) {
			return types.NoTypeID, ReasonConflict
		}
		return def, ReasonNone
	}
	return types.NoTypeID, ReasonValueType
}

// coerce converts an untyped integer literal to a constant of type id.
func (e *Engine) coerce(bits uint64, id types.TypeID) (types.Arg, Reason) {
	switch e.types.KindOf(id) {
	case types.KindInt, types.KindUint, types.KindSize, types.KindChar, types.KindByte:
	default:
		return types.Arg{}, ReasonValueType
	}
	if !e.types.FitsSigned(id, int64(bits)) { //nolint:gosec // untyped literals hold int64 bits
		return types.Arg{}, ReasonRange
	}
	return types.ValueArg(id, e.types.Normalize(id, bits)), ReasonNone
}
