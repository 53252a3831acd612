package templates

import (
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// Scope is the host's name-resolution environment. The engine only passes
// scopes back to the host, apart from the shadowing check.
type Scope interface {
	Defines(name source.StringID) bool
}

type ValueKind uint8

const (
	ValueInvalid ValueKind = iota // error already reported
	ValueType
	ValueConst
	ValueRuntime
	ValueTemplates
	ValueFunctions
	ValueNotDeduced
)

// Value is the result of evaluating an expression at compile time. For
// Untyped constants Arg.Type is NoTypeID and Arg.Bits holds an int64.
// Runtime values carry their type in Arg.Type; Mutable marks a mutable
// reference.
type Value struct {
	Kind    ValueKind
	Arg     types.Arg
	Untyped bool
	Mutable bool
	Set     *TypeTemplateSet
}

// Host provides name resolution, compile-time evaluation and the
// declaration builder.
type Host interface {
	// Eval resolves and evaluates e in scope, reporting errors to rep.
	Eval(scope Scope, e ast.Expr, rep diag.Reporter) Value
	// BindArgs returns a child of g.Scope where every parameter names its
	// deduced value, or a not-deduced marker.
	BindArgs(g *Generic, st *DeductionState) Scope
	// Allocate creates the prototype handle of a new instantiation.
	Allocate(g *Generic, args, signatureArgs []types.Arg) Handle
	// Build fills the body of h. Errors go to rep; ok is false on failure.
	Build(h Handle, g *Generic, scope Scope, rep diag.Reporter) (Handle, bool)
}

// Argument is a use-site template argument.
type Argument struct {
	Arg     types.Arg
	Untyped bool
	Span    source.Span
}

// ArgumentOf converts an evaluated value into an argument.
func ArgumentOf(v Value, sp source.Span) (Argument, bool) {
	switch v.Kind {
	case ValueType:
		return Argument{Arg: types.TypeArg(v.Arg.Type), Span: sp}, true
	case ValueConst:
		return Argument{Arg: v.Arg, Untyped: v.Untyped, Span: sp}, true
	}
	return Argument{}, false
}

// CallArg is the type of one call-site argument.
type CallArg struct {
	Type       types.TypeID
	MutableRef bool
	Span       source.Span
}

// CallSite describes a call that may be resolved to a function template.
type CallSite struct {
	Span     source.Span
	Name     source.StringID
	Explicit []Argument
	Args     []CallArg
}
