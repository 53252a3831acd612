package templates

import (
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// GenericID identifies a generic declaration within one session. IDs are
// assigned at declaration and never reused.
type GenericID uint32

type GenericKind uint8

const (
	TypeTemplate GenericKind = iota + 1
	FunctionTemplate
)

func (k GenericKind) String() string {
	switch k {
	case TypeTemplate:
		return "type template"
	case FunctionTemplate:
		return "function template"
	default:
		return "generic"
	}
}

type ParamKind uint8

const (
	TypeParam ParamKind = iota + 1
	ValueParam
)

// Param is one template parameter. Value parameters carry the pattern of
// their own type: Concrete, or ParamRef to an earlier type parameter.
type Param struct {
	Name source.StringID
	Kind ParamKind
	Type Pattern
	Used bool
	Span source.Span
}

// CallParam holds the reference flags of a function template parameter.
type CallParam struct {
	Ref bool
	Mut bool
}

// Generic is a compiled generic declaration. It is immutable once
// declared.
type Generic struct {
	ID     GenericID
	Kind   GenericKind
	Name   source.StringID
	Params []Param

	// Signature holds the signature positions of a type template, or the
	// parameter types of a function template.
	Signature     []Pattern
	Defaults      []ast.Expr
	FirstOptional int

	CallParams []CallParam
	Result     Pattern

	Scope    Scope
	Span     source.Span
	TypeDecl *ast.TypeTemplateDecl
	FuncDecl *ast.FunctionTemplateDecl
}

// IsAlias reports whether g is a type alias template.
func (g *Generic) IsAlias() bool {
	return g.TypeDecl != nil && g.TypeDecl.Body == ast.TemplateAlias
}

func (g *Generic) paramIndex(name source.StringID) int {
	for i := range g.Params {
		if g.Params[i].Name == name {
			return i
		}
	}
	return -1
}

// TypeTemplateSet groups type templates declared under one name.
type TypeTemplateSet struct {
	Name      source.StringID
	Templates []*Generic
	// Broken is set when a declaration of this name failed to compile;
	// uses of the set then stay silent instead of reporting no-match.
	Broken bool
}

func (s *TypeTemplateSet) contains(id GenericID) bool {
	for _, g := range s.Templates {
		if g.ID == id {
			return true
		}
	}
	return false
}

type HandleKind uint8

const (
	HandleClass HandleKind = iota + 1
	HandleAlias
	HandleFunction
)

// Handle is the concrete declaration produced by an instantiation. For
// classes Type is known from allocation on; for aliases and functions it
// is filled when the build completes. Func indexes the host's function
// table.
type Handle struct {
	Kind HandleKind
	Type types.TypeID
	Func int
}
