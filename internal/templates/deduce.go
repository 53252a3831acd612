package templates

import (
	"fmt"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// Failure describes why deduction for one candidate failed.
type Failure struct {
	Reason   Reason
	Position int // signature position, or -1
	Param    int // template parameter, or -1
	Want     int
	Got      int
}

// Deduction is a successful full deduction.
type Deduction struct {
	State *DeductionState
	// SignatureArgs are the typed values of every signature position,
	// defaults included.
	SignatureArgs []types.Arg
	// Outcomes per signature position.
	Outcomes []Outcome
}

// Deduce runs full deduction of a type template against use-site
// arguments. Missing trailing positions are filled from defaults.
func (e *Engine) Deduce(g *Generic, args []Argument) (*Deduction, *Failure) {
	if len(args) < g.FirstOptional || len(args) > len(g.Signature) {
		return nil, &Failure{Reason: ReasonArity, Position: -1, Param: -1, Want: len(g.Signature), Got: len(args)}
	}
	st := NewDeductionState(len(g.Params))
	d := &Deduction{
		State:         st,
		SignatureArgs: make([]types.Arg, len(g.Signature)),
		Outcomes:      make([]Outcome, len(g.Signature)),
	}
	for i, p := range g.Signature {
		var arg Argument
		if i < len(args) {
			arg = args[i]
		} else {
			a, ok := e.evalDefault(g, i, st)
			if !ok {
				return nil, &Failure{Reason: ReasonDefault, Position: i, Param: -1}
			}
			arg = a
		}
		out, r := e.Unify(g, p, arg, st)
		if out == Invalid {
			return nil, &Failure{Reason: r, Position: i, Param: failedParam(p, st)}
		}
		d.Outcomes[i] = out
		d.SignatureArgs[i] = e.typedArg(p, arg, st)
	}
	if i := st.FirstUndeduced(); i >= 0 {
		return nil, &Failure{Reason: ReasonUndeduced, Position: -1, Param: i}
	}
	return d, nil
}

// evalDefault evaluates the default of signature position i in a scope
// where the parameters deduced so far are bound.
func (e *Engine) evalDefault(g *Generic, i int, st *DeductionState) (Argument, bool) {
	def := g.Defaults[i]
	if def == nil {
		return Argument{}, false
	}
	scope := e.host.BindArgs(g, st)
	v := e.host.Eval(scope, def, diag.NopReporter{})
	return ArgumentOf(v, def.Span())
}

// typedArg returns the value a signature position actually took. Untyped
// literals receive the type they were coerced to.
func (e *Engine) typedArg(p Pattern, arg Argument, st *DeductionState) types.Arg {
	if !arg.Untyped {
		return arg.Arg
	}
	switch x := p.(type) {
	case *ParamRef:
		if a, ok := st.Deduced(x.Index); ok {
			return a
		}
	case *Concrete:
		if !x.Untyped {
			return x.Arg
		}
	}
	i32 := e.types.Builtins().I32
	return types.ValueArg(i32, e.types.Normalize(i32, arg.Arg.Bits))
}

func failedParam(p Pattern, st *DeductionState) int {
	if ref, ok := p.(*ParamRef); ok {
		return ref.Index
	}
	for i, slot := range st.Slots {
		if slot.State == SlotFailed {
			return i
		}
	}
	return -1
}

// bindExplicit binds explicit arguments to the leading parameters.
func (e *Engine) bindExplicit(g *Generic, explicit []Argument, st *DeductionState) *Failure {
	if len(explicit) > len(g.Params) {
		return &Failure{Reason: ReasonArity, Position: -1, Param: -1, Want: len(g.Params), Got: len(explicit)}
	}
	for i, a := range explicit {
		if r := e.bindParam(g, i, a, st); r != ReasonNone {
			return &Failure{Reason: r, Position: -1, Param: i}
		}
	}
	return nil
}

// DeduceCall deduces a function template from explicit template arguments
// and the types of the call arguments.
func (e *Engine) DeduceCall(g *Generic, explicit []Argument, args []CallArg) (*Deduction, *Failure) {
	st := NewDeductionState(len(g.Params))
	if f := e.bindExplicit(g, explicit, st); f != nil {
		return nil, f
	}
	if len(args) != len(g.Signature) {
		return nil, &Failure{Reason: ReasonArity, Position: -1, Param: -1, Want: len(g.Signature), Got: len(args)}
	}
	d := &Deduction{State: st, Outcomes: make([]Outcome, len(g.Signature))}
	for i, p := range g.Signature {
		cp := g.CallParams[i]
		if cp.Ref && cp.Mut && !args[i].MutableRef {
			return nil, &Failure{Reason: ReasonMutability, Position: i, Param: -1}
		}
		out, r := e.Unify(g, p, Argument{Arg: types.TypeArg(args[i].Type), Span: args[i].Span}, st)
		if out == Invalid {
			return nil, &Failure{Reason: r, Position: i, Param: failedParam(p, st)}
		}
		d.Outcomes[i] = out
	}
	if i := st.FirstUndeduced(); i >= 0 {
		return nil, &Failure{Reason: ReasonUndeduced, Position: -1, Param: i}
	}
	d.SignatureArgs = st.Args()
	return d, nil
}

// DeduceExplicit deduces a function template from explicit arguments
// only, as when a template function is named without being called.
func (e *Engine) DeduceExplicit(g *Generic, explicit []Argument) (*Deduction, *Failure) {
	st := NewDeductionState(len(g.Params))
	if f := e.bindExplicit(g, explicit, st); f != nil {
		return nil, f
	}
	if i := st.FirstUndeduced(); i >= 0 {
		return nil, &Failure{Reason: ReasonUndeduced, Position: -1, Param: i}
	}
	return &Deduction{State: st, SignatureArgs: st.Args()}, nil
}

// Describe renders a failure for diagnostics.
func (e *Engine) Describe(g *Generic, f *Failure) string {
	param := func() string {
		if f.Param >= 0 && f.Param < len(g.Params) {
			return fmt.Sprintf("parameter %q", e.name(g.Params[f.Param].Name))
		}
		return "a parameter"
	}
	pos := func() string {
		if f.Position >= 0 {
			return fmt.Sprintf(" at position %d", f.Position+1)
		}
		return ""
	}
	switch f.Reason {
	case ReasonArity:
		return fmt.Sprintf("expected %s arguments, got %d", e.arity(g, f.Want), f.Got)
	case ReasonShape:
		return "argument does not match the signature" + pos()
	case ReasonConflict:
		return fmt.Sprintf("conflicting values deduced for %s%s", param(), pos())
	case ReasonKind:
		return "type given where a value is expected, or a value where a type is expected" + pos()
	case ReasonValueType:
		return fmt.Sprintf("value of wrong type for %s%s", param(), pos())
	case ReasonRange:
		return fmt.Sprintf("value out of range for %s%s", param(), pos())
	case ReasonUndeduced:
		return fmt.Sprintf("can not deduce %s", param())
	case ReasonDefault:
		return "can not evaluate default argument" + pos()
	case ReasonNotConstant:
		return "expected compile-time constant" + pos()
	case ReasonMutability:
		return "mutable reference expected" + pos()
	}
	return "deduction failed"
}

func (e *Engine) arity(g *Generic, want int) string {
	if g.Kind == TypeTemplate && g.FirstOptional < len(g.Signature) && want == len(g.Signature) {
		return fmt.Sprintf("%d to %d", g.FirstOptional, len(g.Signature))
	}
	return fmt.Sprint(want)
}
