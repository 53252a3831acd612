package sema

import (
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

type symbolKind uint8

const (
	symType symbolKind = iota + 1
	symClass
	symAlias
	symEnum
	symConst
	symTemplates
	symFunctions
	symLocal
	symBound // template parameter inside an instantiation
)

type resolveState uint8

const (
	stateUnvisited resolveState = iota
	stateVisiting
	stateDone
)

// symbol is a named entity. Declarations are resolved lazily, on first
// use, so that their order in the unit does not matter.
type symbol struct {
	kind  symbolKind
	name  source.StringID
	span  source.Span
	decl  ast.Decl
	state resolveState
	value templates.Value

	set       *templates.TypeTemplateSet
	templates []*ast.TypeTemplateDecl
	overloads *overloadSet
}

// overloadSet holds functions and function templates sharing a name.
type overloadSet struct {
	name      source.StringID
	funcs     []*Func
	decls     []*ast.FunctionTemplateDecl
	generics  []*templates.Generic
	compiled  bool
	compiling bool
}

// Scope is a lexical name table. It implements templates.Scope.
type Scope struct {
	parent *Scope
	syms   map[source.StringID]*symbol
	order  []*symbol
	fn     *Func
}

func newScope(parent *Scope) *Scope {
	sc := &Scope{parent: parent, syms: make(map[source.StringID]*symbol)}
	if parent != nil {
		sc.fn = parent.fn
	}
	return sc
}

// Defines reports whether name resolves in sc or any enclosing scope.
func (sc *Scope) Defines(name source.StringID) bool {
	return sc.lookup(name) != nil
}

func (sc *Scope) lookup(name source.StringID) *symbol {
	for s := sc; s != nil; s = s.parent {
		if sym, ok := s.syms[name]; ok {
			return sym
		}
	}
	return nil
}

// Value returns the resolved value of name. Declarations that were never
// resolved report false.
func (sc *Scope) Value(name source.StringID) (templates.Value, bool) {
	sym := sc.lookup(name)
	if sym == nil || sym.state != stateDone {
		return templates.Value{}, false
	}
	return sym.value, true
}

// local returns a symbol declared directly in sc.
func (sc *Scope) local(name source.StringID) *symbol {
	return sc.syms[name]
}

func (sc *Scope) insert(sym *symbol) {
	sc.syms[sym.name] = sym
	sc.order = append(sc.order, sym)
}

// fundamentalNames are the built-in type keywords of the universe scope.
var fundamentalNames = []string{
	"void", "bool",
	"i8", "i16", "i32", "i64",
	"u8", "u16", "u32", "u64",
	"size_type", "usize",
	"char8", "char16", "char32",
	"byte8", "byte16", "byte32", "byte64",
	"f32", "f64",
}

func universe(in *types.Interner) *Scope {
	sc := newScope(nil)
	for _, name := range fundamentalNames {
		id, ok := in.Fundamental(name)
		if !ok {
			continue
		}
		sc.insert(&symbol{
			kind:  symType,
			name:  in.Strings.Intern(name),
			state: stateDone,
			value: templates.Value{Kind: templates.ValueType, Arg: types.TypeArg(id)},
		})
	}
	return sc
}
