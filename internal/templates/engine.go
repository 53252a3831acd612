package templates

import (
	"fmt"
	"strings"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/trace"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// DefaultMaxDepth bounds nested instantiations that keep producing new keys.
const DefaultMaxDepth = 64

// DefaultMaxDiagnostics bounds the diagnostics kept per instance body.
const DefaultMaxDiagnostics = 256

// Options configure an Engine.
type Options struct {
	MaxDepth int
	// MaxDiagnostics limits the diagnostics collected from one instance
	// body. Overflow is summarized in a trailing note.
	MaxDiagnostics int
	Tracer         trace.Tracer
	Session        string
	ParentSpan     uint64
}

// Engine compiles generic declarations and instantiates them. One engine
// serves one session and is not safe for concurrent use.
type Engine struct {
	types    *types.Interner
	host     Host
	cache    *Cache
	tracer   trace.Tracer
	session  string
	parent   uint64
	maxDepth int
	maxDiags int
	depth    int
	generics []*Generic
}

func NewEngine(in *types.Interner, host Host, cache *Cache, opts Options) *Engine {
	if cache == nil {
		cache = NewCache(in)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Engine{
		types:    in,
		host:     host,
		cache:    cache,
		tracer:   opts.Tracer,
		session:  opts.Session,
		parent:   opts.ParentSpan,
		maxDepth: opts.MaxDepth,
		maxDiags: opts.MaxDiagnostics,
	}
}

func (e *Engine) Cache() *Cache { return e.cache }

// Generic returns the declaration with the given id, or nil.
func (e *Engine) Generic(id GenericID) *Generic {
	if id == 0 || int(id) > len(e.generics) {
		return nil
	}
	return e.generics[id-1]
}

// Generics returns all declarations in declaration order.
func (e *Engine) Generics() []*Generic { return e.generics }

// ResolveGenericApplication resolves Base</Args/> written in source to a
// concrete instantiation.
func (e *Engine) ResolveGenericApplication(app *ast.ApplyExpr, scope Scope, rep diag.Reporter) (Handle, bool) {
	base := e.host.Eval(scope, app.Base, rep)
	switch {
	case base.Kind == ValueInvalid:
		return Handle{}, false
	case base.Kind != ValueTemplates || base.Set == nil:
		diag.ReportError(rep, diag.TplNotTemplate, app.Base.Span(), "expected a type template").Emit()
		return Handle{}, false
	}
	args, ok := e.EvalArgs(app.Args, scope, rep)
	if !ok {
		return Handle{}, false
	}
	return e.InstantiateType(base.Set, args, app.Span(), rep)
}

// EvalArgs evaluates use-site template arguments.
func (e *Engine) EvalArgs(list []ast.Expr, scope Scope, rep diag.Reporter) ([]Argument, bool) {
	args := make([]Argument, 0, len(list))
	ok := true
	for _, a := range list {
		v := e.host.Eval(scope, a, rep)
		arg, good := ArgumentOf(v, a.Span())
		if good {
			args = append(args, arg)
			continue
		}
		ok = false
		switch v.Kind {
		case ValueInvalid:
		case ValueRuntime:
			diag.ReportError(rep, diag.TplExpectedConstant, a.Span(), "expected a compile-time constant").Emit()
		default:
			diag.ReportError(rep, diag.TplInvalidArg, a.Span(), "expected a type or a compile-time constant").Emit()
		}
	}
	return args, ok
}

// InstantiateType selects the best template of set for args and
// instantiates it.
func (e *Engine) InstantiateType(set *TypeTemplateSet, args []Argument, site source.Span, rep diag.Reporter) (Handle, bool) {
	cands := make([]Candidate, len(set.Templates))
	for i, g := range set.Templates {
		d, f := e.Deduce(g, args)
		cands[i] = Candidate{Generic: g, Deduction: d, Failure: f}
	}
	if len(cands) == 0 {
		// every declaration of this name was rejected
		return Handle{}, false
	}
	if set.Broken && !anySurvivor(cands) {
		return Handle{}, false
	}
	what := e.name(set.Name) + "</" + e.argumentsLabel(args) + "/>"
	win, ok := e.SelectBest(cands, len(args), site, what, rep)
	if !ok {
		return Handle{}, false
	}
	return e.finish(win.Generic, win.Deduction, site, rep)
}

// ResolveGenericCallCandidate deduces function templates from a call site
// and instantiates the most specific one.
func (e *Engine) ResolveGenericCallCandidate(site CallSite, candidates []*Generic, rep diag.Reporter) (Handle, bool) {
	if len(candidates) == 0 {
		return Handle{}, false
	}
	cands := make([]Candidate, len(candidates))
	positions := len(site.Args)
	for i, g := range candidates {
		d, f := e.DeduceCall(g, site.Explicit, site.Args)
		cands[i] = Candidate{Generic: g, Deduction: d, Failure: f}
	}
	what := fmt.Sprintf("call to %q", e.name(site.Name))
	win, ok := e.SelectBest(cands, positions, site.Span, what, rep)
	if !ok {
		return Handle{}, false
	}
	return e.finish(win.Generic, win.Deduction, site.Span, rep)
}

// InstantiateExplicit instantiates function templates named with
// explicit arguments and no call. Candidates that accept the arguments are
// ranked by their parameter patterns when they all take the same number of
// parameters; otherwise more than one survivor is ambiguous.
func (e *Engine) InstantiateExplicit(candidates []*Generic, explicit []Argument, site source.Span, rep diag.Reporter) (Handle, bool) {
	if len(candidates) == 0 {
		return Handle{}, false
	}
	cands := make([]Candidate, len(candidates))
	for i, g := range candidates {
		d, f := e.DeduceExplicit(g, explicit)
		cands[i] = Candidate{Generic: g, Deduction: d, Failure: f}
	}
	what := e.name(candidates[0].Name) + "</" + e.argumentsLabel(explicit) + "/>"
	win, ok := e.SelectBest(cands, sharedArity(cands), site, what, rep)
	if !ok {
		return Handle{}, false
	}
	return e.finish(win.Generic, win.Deduction, site, rep)
}

// sharedArity is the parameter count common to every surviving candidate,
// or 0 when they differ.
func sharedArity(cands []Candidate) int {
	n := -1
	for _, c := range cands {
		if c.Failure != nil {
			continue
		}
		switch {
		case n < 0:
			n = len(c.Generic.Signature)
		case n != len(c.Generic.Signature):
			return 0
		}
	}
	return max(n, 0)
}

// Instantiate deduces one generic against args and produces its
// instantiation. Type templates take signature arguments; function
// templates take explicit template arguments.
func (e *Engine) Instantiate(g *Generic, args []Argument, site source.Span, rep diag.Reporter) (Handle, bool) {
	var (
		d *Deduction
		f *Failure
	)
	if g.Kind == TypeTemplate {
		d, f = e.Deduce(g, args)
	} else {
		d, f = e.DeduceExplicit(g, args)
	}
	if f != nil {
		e.reportNoMatch([]Candidate{{Generic: g, Failure: f}}, site, e.GenericLabel(g), rep)
		return Handle{}, false
	}
	return e.finish(g, d, site, rep)
}

// finish produces the instantiation for a complete deduction, or returns
// the cached one. The cache entry is reserved before the body is built so
// that the body may refer to its own instantiation.
func (e *Engine) finish(g *Generic, d *Deduction, site source.Span, rep diag.Reporter) (Handle, bool) {
	args := d.State.Args()
	key := e.cache.EncodeKey(g.ID, args)
	label := e.InstanceLabel(g, d.SignatureArgs)

	span := trace.BeginInstance(e.tracer, e.parent, e.session, trace.Instance{
		Generic: uint32(g.ID),
		Key:     key.Hex(),
		Label:   label,
		Depth:   e.depth,
	})

	if ent, ok := e.cache.Lookup(key); ok {
		e.cache.Record(key, site)
		if ent.State == EntryReserved && g.IsAlias() {
			span.End("recursive")
			diag.ReportError(rep, diag.TplRecursiveAlias, site,
				fmt.Sprintf("type template alias %s refers to itself", label)).
				WithNote(g.Span, "declared here").
				Emit()
			return ent.Handle, false
		}
		span.End("hit")
		return ent.Handle, !ent.Failed
	}

	if e.depth >= e.maxDepth {
		span.End("depth")
		diag.ReportError(rep, diag.TplDepthExceeded, site,
			fmt.Sprintf("template instantiation depth exceeded (%d) while instantiating %s", e.maxDepth, label)).
			Emit()
		return Handle{}, false
	}

	h := e.host.Allocate(g, args, d.SignatureArgs)
	if err := e.cache.Reserve(key, g.ID, args, h); err != nil {
		panic(fmt.Errorf("templates: reserve %s: %w", label, err))
	}
	e.cache.Record(key, site)

	sub := diag.NewBag(e.maxDiags)
	scope := e.host.BindArgs(g, d.State)
	e.depth++
	built, ok := e.host.Build(h, g, scope, diag.BagReporter{Bag: sub})
	e.depth--
	failed := !ok || sub.HasErrors()
	e.cache.Complete(key, built, failed)

	if sub.HasErrors() {
		diag.ReportError(rep, diag.TplContext, site,
			fmt.Sprintf("errors in template instantiation %s [ with %s ]", label, e.bindingsLabel(g, args))).
			WithNotes(bodyNotes(sub, site)).
			Emit()
	} else {
		for _, it := range sub.Items() {
			rep.Report(it.Code, it.Severity, it.Primary, it.Message, it.Notes)
		}
		if n := sub.Dropped(); n > 0 {
			rep.Report(diag.TplContext, diag.SevWarning, site,
				fmt.Sprintf("%d more diagnostics in template instantiation %s", n, label), nil)
		}
	}
	if failed {
		span.End("failed")
	} else {
		span.End("built")
	}
	return built, !failed
}

// bodyNotes flattens the diagnostics of an instance body, noting how many
// did not fit.
func bodyNotes(sub *diag.Bag, site source.Span) []diag.Note {
	notes := sub.Notes()
	if n := sub.Dropped(); n > 0 {
		notes = append(notes, diag.Note{Span: site, Msg: fmt.Sprintf("%d more diagnostics not shown", n)})
	}
	return notes
}

// GenericLabel renders a generic declaration as Name</signature/>.
func (e *Engine) GenericLabel(g *Generic) string {
	if g.Kind == FunctionTemplate {
		return e.name(g.Name) + "(" + e.patternsLabel(g, g.Signature) + ")"
	}
	return e.name(g.Name) + "</" + e.patternsLabel(g, g.Signature) + "/>"
}

// InstanceLabel renders an instantiation as Name</args/>.
func (e *Engine) InstanceLabel(g *Generic, args []types.Arg) string {
	return e.name(g.Name) + "</" + types.ArgsLabel(e.types, args) + "/>"
}

func (e *Engine) bindingsLabel(g *Generic, args []types.Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = e.name(g.Params[i].Name) + " = " + types.ArgLabel(e.types, a)
	}
	return strings.Join(parts, ", ")
}

func (e *Engine) argumentsLabel(args []Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.Untyped {
			parts[i] = types.ValueLabel(e.types, e.types.Builtins().I64, a.Arg.Bits)
			continue
		}
		parts[i] = types.ArgLabel(e.types, a.Arg)
	}
	return strings.Join(parts, ", ")
}

func (e *Engine) name(id source.StringID) string {
	if e.types.Strings == nil {
		return "_"
	}
	if s, ok := e.types.Strings.Lookup(id); ok {
		return s
	}
	return "_"
}

func anySurvivor(cands []Candidate) bool {
	for _, c := range cands {
		if c.Failure == nil {
			return true
		}
	}
	return false
}
