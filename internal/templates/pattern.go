package templates

import (
	"strings"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// Pattern is the closed set of signature shapes.
type Pattern interface {
	patternNode()
}

// Concrete matches exactly one type or constant. Untyped holds an integer
// literal whose type is taken from the argument it is compared with.
type Concrete struct {
	Arg     types.Arg
	Untyped bool
}

// ParamRef binds template parameter Index.
type ParamRef struct {
	Index int
}

// ArrayOf matches [Elem, Size]; Size is matched as a size_type constant.
type ArrayOf struct {
	Elem Pattern
	Size Pattern
}

type TupleOf struct {
	Elems []Pattern
}

// PointerTo matches a raw pointer $(Elem).
type PointerTo struct {
	Elem Pattern
}

type FuncParamPattern struct {
	Type Pattern
	Ref  bool
	Mut  bool
}

// FunctionOf matches a function type. Reference flags and the unsafe flag
// are compared for equality, never unified.
type FunctionOf struct {
	Params []FuncParamPattern
	Ret    Pattern
	RetRef bool
	RetMut bool
	Unsafe bool
}

// GenericApp matches an instance of one of the templates in Set and
// unifies Args with the instance's signature arguments.
type GenericApp struct {
	Set  *TypeTemplateSet
	Args []Pattern
}

func (*Concrete) patternNode()   {}
func (*ParamRef) patternNode()   {}
func (*ArrayOf) patternNode()    {}
func (*TupleOf) patternNode()    {}
func (*PointerTo) patternNode()  {}
func (*FunctionOf) patternNode() {}
func (*GenericApp) patternNode() {}

// PatternsEqual reports structural equality of two patterns.
func PatternsEqual(a, b Pattern) bool {
	switch x := a.(type) {
	case *Concrete:
		y, ok := b.(*Concrete)
		return ok && x.Arg == y.Arg && x.Untyped == y.Untyped
	case *ParamRef:
		y, ok := b.(*ParamRef)
		return ok && x.Index == y.Index
	case *ArrayOf:
		y, ok := b.(*ArrayOf)
		return ok && PatternsEqual(x.Elem, y.Elem) && PatternsEqual(x.Size, y.Size)
	case *TupleOf:
		y, ok := b.(*TupleOf)
		return ok && patternListsEqual(x.Elems, y.Elems)
	case *PointerTo:
		y, ok := b.(*PointerTo)
		return ok && PatternsEqual(x.Elem, y.Elem)
	case *FunctionOf:
		y, ok := b.(*FunctionOf)
		if !ok || len(x.Params) != len(y.Params) || x.RetRef != y.RetRef || x.RetMut != y.RetMut || x.Unsafe != y.Unsafe {
			return false
		}
		for i := range x.Params {
			px, py := x.Params[i], y.Params[i]
			if px.Ref != py.Ref || px.Mut != py.Mut || !PatternsEqual(px.Type, py.Type) {
				return false
			}
		}
		return PatternsEqual(x.Ret, y.Ret)
	case *GenericApp:
		y, ok := b.(*GenericApp)
		return ok && x.Set == y.Set && patternListsEqual(x.Args, y.Args)
	}
	return false
}

func patternListsEqual(a, b []Pattern) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !PatternsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// PatternLabel renders p the way a user would write it.
func (e *Engine) PatternLabel(g *Generic, p Pattern) string {
	switch x := p.(type) {
	case *Concrete:
		if x.Untyped {
			return types.ValueLabel(e.types, e.types.Builtins().I64, x.Arg.Bits)
		}
		return types.ArgLabel(e.types, x.Arg)
	case *ParamRef:
		if g != nil && x.Index < len(g.Params) {
			return e.name(g.Params[x.Index].Name)
		}
		return "?"
	case *ArrayOf:
		return "[" + e.PatternLabel(g, x.Elem) + ", " + e.PatternLabel(g, x.Size) + "]"
	case *TupleOf:
		return "tup[" + e.patternsLabel(g, x.Elems) + "]"
	case *PointerTo:
		return "$(" + e.PatternLabel(g, x.Elem) + ")"
	case *FunctionOf:
		var sb strings.Builder
		sb.WriteString("fn(")
		for i, prm := range x.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(refLabel(prm.Ref, prm.Mut))
			sb.WriteString(e.PatternLabel(g, prm.Type))
		}
		sb.WriteString(")")
		if x.Unsafe {
			sb.WriteString(" unsafe")
		}
		sb.WriteString(" : ")
		sb.WriteString(refLabel(x.RetRef, x.RetMut))
		sb.WriteString(e.PatternLabel(g, x.Ret))
		return sb.String()
	case *GenericApp:
		return e.name(x.Set.Name) + "</" + e.patternsLabel(g, x.Args) + "/>"
	}
	return "?"
}

func (e *Engine) patternsLabel(g *Generic, list []Pattern) string {
	parts := make([]string, len(list))
	for i, p := range list {
		parts[i] = e.PatternLabel(g, p)
	}
	return strings.Join(parts, ", ")
}

func refLabel(ref, mut bool) string {
	switch {
	case ref && mut:
		return "&mut "
	case ref:
		return "&imut "
	}
	return ""
}
