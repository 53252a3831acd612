package sema

import (
	"context"
	"fmt"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/trace"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// Options configure a semantic pass over a unit.
type Options struct {
	Reporter       diag.Reporter
	Types          *types.Interner
	Cache          *templates.Cache
	MaxDepth       int
	MaxDiagnostics int
	Tracer         trace.Tracer
	Session        string
	ParentSpan     uint64
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	TypeInterner *types.Interner
	Engine       *templates.Engine
	Cache        *templates.Cache
	Functions    []*Func
	Global       *Scope
}

// Func is a function: declared directly, or instantiated from a function
// template (Generic and Args set).
type Func struct {
	Name    source.StringID
	Decl    *ast.FuncDecl
	Scope   *Scope
	Type    types.TypeID
	Params  []types.FnParam
	Result  types.TypeID
	RetRef  bool
	RetMut  bool
	Generic *templates.Generic
	Args    []types.Arg

	state   resolveState
	checked bool
}

// Check resolves every declaration of file and checks function bodies.
// Template instantiations requested along the way are built on demand.
func Check(ctx context.Context, file *ast.File, opts Options) Result {
	in := opts.Types
	if in == nil {
		in = types.NewInterner(nil)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	cache := opts.Cache
	if cache == nil {
		cache = templates.NewCache(in)
	}
	tc := &typeChecker{
		types:    in,
		strs:     in.Strings,
		reporter: opts.Reporter,
		tracer:   tracer,
		session:  opts.Session,
		classes:  make(map[types.TypeID]*classBuild),
	}
	if tc.reporter == nil {
		tc.reporter = diag.NopReporter{}
	}
	tc.universe = universe(in)
	tc.global = newScope(tc.universe)

	rootSpan := trace.BeginSession(tracer, trace.ScopePass, "sema_check", opts.ParentSpan, opts.Session)
	defer rootSpan.End("")

	tc.engine = templates.NewEngine(in, tc, cache, templates.Options{
		MaxDepth:       opts.MaxDepth,
		MaxDiagnostics: opts.MaxDiagnostics,
		Tracer:         tracer,
		Session:        opts.Session,
		ParentSpan:     rootSpan.ID(),
	})
	res := Result{TypeInterner: in, Engine: tc.engine, Cache: cache, Global: tc.global}
	if file == nil {
		return res
	}

	phase := func(name string) func() {
		span := trace.BeginSession(tracer, trace.ScopePass, name, rootSpan.ID(), opts.Session)
		return func() { span.End("") }
	}

	done := phase("collect")
	tc.collect(file)
	done()

	done = phase("resolve")
	tc.resolveAll()
	done()

	if ctx.Err() == nil {
		done = phase("bodies")
		for i := 0; i < len(tc.funcs); i++ {
			if ctx.Err() != nil {
				break
			}
			fn := tc.funcs[i]
			if fn.Generic == nil {
				tc.checkFunc(fn, tc.reporter)
			}
		}
		done()
	}

	res.Functions = tc.funcs
	return res
}

type typeChecker struct {
	types    *types.Interner
	strs     *source.Interner
	reporter diag.Reporter
	tracer   trace.Tracer
	session  string
	engine   *templates.Engine

	universe *Scope
	global   *Scope
	funcs    []*Func
	classes  map[types.TypeID]*classBuild
}

func (tc *typeChecker) name(id source.StringID) string {
	if s, ok := tc.strs.Lookup(id); ok {
		return s
	}
	return "_"
}

func (tc *typeChecker) label(id types.TypeID) string {
	return types.Label(tc.types, id)
}

// collect enters every top-level declaration into the global scope.
// Type templates of one name share a set; functions and function
// templates of one name share an overload set.
func (tc *typeChecker) collect(file *ast.File) {
	for _, d := range file.Decls {
		name := d.DeclName()
		prev := tc.global.local(name)
		switch decl := d.(type) {
		case *ast.TypeTemplateDecl:
			if prev != nil && prev.kind == symTemplates {
				prev.templates = append(prev.templates, decl)
				continue
			}
			if tc.checkUnique(prev, d) {
				tc.global.insert(&symbol{
					kind:      symTemplates,
					name:      name,
					span:      decl.Span(),
					decl:      decl,
					set:       &templates.TypeTemplateSet{Name: name},
					templates: []*ast.TypeTemplateDecl{decl},
				})
			}
		case *ast.FuncDecl, *ast.FunctionTemplateDecl:
			if prev == nil || prev.kind != symFunctions {
				if !tc.checkUnique(prev, d) {
					continue
				}
				prev = &symbol{kind: symFunctions, name: name, span: d.Span(), decl: d, overloads: &overloadSet{name: name}}
				tc.global.insert(prev)
			}
			if fd, ok := decl.(*ast.FuncDecl); ok {
				fn := &Func{Name: name, Decl: fd, Scope: tc.global}
				tc.funcs = append(tc.funcs, fn)
				prev.overloads.funcs = append(prev.overloads.funcs, fn)
			} else {
				prev.overloads.decls = append(prev.overloads.decls, decl.(*ast.FunctionTemplateDecl))
			}
		default:
			if !tc.checkUnique(prev, d) {
				continue
			}
			tc.global.insert(&symbol{kind: declKind(d), name: name, span: d.Span(), decl: d})
		}
	}
}

func declKind(d ast.Decl) symbolKind {
	switch d.(type) {
	case *ast.ClassDecl:
		return symClass
	case *ast.AliasDecl:
		return symAlias
	case *ast.EnumDecl:
		return symEnum
	case *ast.ConstDecl:
		return symConst
	}
	return symType
}

func (tc *typeChecker) checkUnique(prev *symbol, d ast.Decl) bool {
	if prev == nil && !tc.universe.Defines(d.DeclName()) {
		return true
	}
	b := diag.ReportError(tc.reporter, diag.SemaDuplicateSymbol, d.Span(),
		fmt.Sprintf("%q is already defined", tc.name(d.DeclName())))
	if prev != nil {
		b.WithNote(prev.span, "previous definition")
	}
	b.Emit()
	return false
}

// resolveAll resolves declarations in source order, completing classes
// and compiling templates that nothing referenced yet.
func (tc *typeChecker) resolveAll() {
	for _, sym := range tc.global.order {
		tc.resolve(sym, tc.reporter)
		switch sym.kind {
		case symClass:
			if sym.value.Kind == templates.ValueType {
				tc.completeClass(sym.value.Arg.Type, tc.reporter)
			}
		case symFunctions:
			tc.compileOverloads(sym.overloads, tc.reporter)
		}
	}
}
