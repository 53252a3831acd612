package unit

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// builder converts decoded specs into syntax tree nodes. Errors name the
// offending location as a key path, e.g. decl[2].fields[0].type.
type builder struct {
	strs *source.Interner
	path []string
}

func (b *builder) push(format string, args ...any) {
	b.path = append(b.path, fmt.Sprintf(format, args...))
}
func (b *builder) pop() { b.path = b.path[:len(b.path)-1] }

func (b *builder) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if len(b.path) == 0 {
		return errors.New(msg)
	}
	return fmt.Errorf("%s: %s", strings.Join(b.path, "."), msg)
}

func (b *builder) name(s string) (source.StringID, error) {
	if strings.TrimSpace(s) == "" {
		return source.NoStringID, b.errorf("missing name")
	}
	return b.strs.Intern(s), nil
}

func (b *builder) file(path string, spec *fileSpec) (*ast.File, error) {
	f := &ast.File{Path: path, Decls: make([]ast.Decl, 0, len(spec.Decls))}
	for i := range spec.Decls {
		b.push("decl[%d]", i)
		d, err := b.decl(&spec.Decls[i])
		if err != nil {
			return nil, err
		}
		b.pop()
		f.Decls = append(f.Decls, d)
	}
	return f, nil
}

func (b *builder) decl(d *declSpec) (ast.Decl, error) {
	name, err := b.name(d.Name)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case "class":
		fields, err := b.fields(d.Fields)
		if err != nil {
			return nil, err
		}
		return &ast.ClassDecl{Name: name, Fields: fields}, nil
	case "alias":
		target, err := b.required("target", d.Target)
		if err != nil {
			return nil, err
		}
		return &ast.AliasDecl{Name: name, Target: target}, nil
	case "const":
		typ, err := b.optional("type", d.Type)
		if err != nil {
			return nil, err
		}
		value, err := b.required("value", d.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ConstDecl{Name: name, Type: typ, Value: value}, nil
	case "enum":
		base, err := b.optional("base", d.Base)
		if err != nil {
			return nil, err
		}
		decl := &ast.EnumDecl{Name: name, Base: base}
		for i, m := range d.Members {
			b.push("members[%d]", i)
			id, err := b.name(m)
			if err != nil {
				return nil, err
			}
			b.pop()
			decl.Members = append(decl.Members, &ast.EnumMember{Name: id})
		}
		return decl, nil
	case "template":
		return b.typeTemplate(name, d)
	case "function":
		fn, err := b.function(name, d)
		if err != nil {
			return nil, err
		}
		if d.Template == nil {
			return fn, nil
		}
		params, err := b.templateParams(d.Template)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionTemplateDecl{Params: params, Func: fn}, nil
	case "":
		return nil, b.errorf("missing kind")
	}
	return nil, b.errorf("unknown declaration kind %q", d.Kind)
}

func (b *builder) typeTemplate(name source.StringID, d *declSpec) (ast.Decl, error) {
	params, err := b.templateParams(d.Template)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 && d.Signature == nil {
		return nil, b.errorf("short-form template without parameters")
	}
	decl := &ast.TypeTemplateDecl{Name: name, Params: params, ShortForm: d.Signature == nil}
	for i := range d.Signature {
		b.push("signature[%d]", i)
		typ, err := b.required("type", d.Signature[i].Type)
		if err != nil {
			return nil, err
		}
		def, err := b.optional("default", d.Signature[i].Default)
		if err != nil {
			return nil, err
		}
		b.pop()
		decl.Signature = append(decl.Signature, &ast.SignatureParam{Type: typ, Default: def})
	}
	if d.Alias != nil {
		if len(d.Fields) > 0 {
			return nil, b.errorf("alias template with fields")
		}
		decl.Body = ast.TemplateAlias
		if decl.Alias, err = b.required("alias", d.Alias); err != nil {
			return nil, err
		}
		return decl, nil
	}
	decl.Body = ast.TemplateClass
	decl.Fields, err = b.fields(d.Fields)
	return decl, err
}

func (b *builder) templateParams(list []templateParamSpec) ([]*ast.TemplateParam, error) {
	out := make([]*ast.TemplateParam, 0, len(list))
	for i := range list {
		b.push("template[%d]", i)
		name, err := b.name(list[i].Name)
		if err != nil {
			return nil, err
		}
		typ, err := b.optional("type", list[i].Type)
		if err != nil {
			return nil, err
		}
		b.pop()
		out = append(out, &ast.TemplateParam{Name: name, Type: typ})
	}
	return out, nil
}

func (b *builder) fields(list []fieldSpec) ([]*ast.FieldDecl, error) {
	out := make([]*ast.FieldDecl, 0, len(list))
	for i := range list {
		b.push("fields[%d]", i)
		name, err := b.name(list[i].Name)
		if err != nil {
			return nil, err
		}
		typ, err := b.required("type", list[i].Type)
		if err != nil {
			return nil, err
		}
		b.pop()
		out = append(out, &ast.FieldDecl{Name: name, Type: typ})
	}
	return out, nil
}

func (b *builder) function(name source.StringID, d *declSpec) (*ast.FuncDecl, error) {
	fn := &ast.FuncDecl{Name: name, RetRef: d.RetRef, RetMut: d.RetMut, Unsafe: d.Unsafe}
	for i := range d.Params {
		b.push("params[%d]", i)
		p := &d.Params[i]
		pname, err := b.name(p.Name)
		if err != nil {
			return nil, err
		}
		typ, err := b.required("type", p.Type)
		if err != nil {
			return nil, err
		}
		b.pop()
		fn.Params = append(fn.Params, &ast.Param{Name: pname, Type: typ, Ref: p.Ref, Mut: p.Mut})
	}
	var err error
	if fn.Ret, err = b.optional("ret", d.Ret); err != nil {
		return nil, err
	}
	for i := range d.Body {
		b.push("body[%d]", i)
		st, err := b.stmt(&d.Body[i])
		if err != nil {
			return nil, err
		}
		b.pop()
		fn.Body = append(fn.Body, st)
	}
	return fn, nil
}

func (b *builder) stmt(s *stmtSpec) (ast.Stmt, error) {
	switch {
	case s.Let != "":
		name, err := b.name(s.Let)
		if err != nil {
			return nil, err
		}
		typ, err := b.optional("type", s.Type)
		if err != nil {
			return nil, err
		}
		init, err := b.optional("init", s.Init)
		if err != nil {
			return nil, err
		}
		return &ast.LetStmt{Name: name, Type: typ, Init: init}, nil
	case s.Expr != nil:
		x, err := b.required("expr", s.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil
	case s.Return != nil:
		v, err := b.required("return", s.Return)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Value: v}, nil
	case s.ReturnVoid:
		return &ast.ReturnStmt{}, nil
	}
	return nil, b.errorf("empty statement")
}

func (b *builder) required(key string, e *exprSpec) (ast.Expr, error) {
	if e == nil {
		return nil, b.errorf("missing %s", key)
	}
	b.push("%s", key)
	defer b.pop()
	return b.expr(e)
}

func (b *builder) optional(key string, e *exprSpec) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	return b.required(key, e)
}

func (b *builder) list(key string, list []exprSpec) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(list))
	for i := range list {
		b.push("%s[%d]", key, i)
		x, err := b.expr(&list[i])
		b.pop()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// tags lists the expression tags set in e.
func tags(e *exprSpec) []string {
	var out []string
	add := func(set bool, tag string) {
		if set {
			out = append(out, tag)
		}
	}
	add(e.Name != "", "name")
	add(e.Apply != "", "apply")
	add(e.Array != nil, "array")
	add(e.Tuple != nil, "tuple")
	add(e.Pointer != nil, "pointer")
	add(e.Func != nil, "func")
	add(e.Int != nil, "int")
	add(e.Bool != nil, "bool")
	add(e.Char != "", "char")
	add(e.Neg != nil, "neg")
	add(e.Not != nil, "not")
	add(e.Op != "", "op")
	add(e.Member != "", "member")
	add(e.Call != nil, "call")
	return out
}

func (b *builder) expr(e *exprSpec) (ast.Expr, error) {
	switch t := tags(e); len(t) {
	case 0:
		return nil, b.errorf("expression without a tag")
	case 1:
	default:
		return nil, b.errorf("expression with several tags: %s", strings.Join(t, ", "))
	}
	switch {
	case e.Name != "":
		id, err := b.name(e.Name)
		if err != nil {
			return nil, err
		}
		return &ast.NameExpr{Name: id}, nil
	case e.Apply != "":
		id, err := b.name(e.Apply)
		if err != nil {
			return nil, err
		}
		args, err := b.list("args", e.Args)
		if err != nil {
			return nil, err
		}
		return &ast.ApplyExpr{Base: &ast.NameExpr{Name: id}, Args: args}, nil
	case e.Array != nil:
		elem, err := b.required("array", e.Array)
		if err != nil {
			return nil, err
		}
		size, err := b.required("size", e.Size)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayTypeExpr{Elem: elem, Size: size}, nil
	case e.Tuple != nil:
		elems, err := b.list("tuple", e.Tuple)
		if err != nil {
			return nil, err
		}
		return &ast.TupleTypeExpr{Elems: elems}, nil
	case e.Pointer != nil:
		elem, err := b.required("pointer", e.Pointer)
		if err != nil {
			return nil, err
		}
		return &ast.PointerTypeExpr{Elem: elem}, nil
	case e.Func != nil:
		return b.funcType(e.Func)
	case e.Int != nil:
		return intLit(*e.Int, e.Suffix), nil
	case e.Bool != nil:
		return &ast.BoolLit{Value: *e.Bool}, nil
	case e.Char != "":
		r, size := utf8.DecodeRuneInString(e.Char)
		if r == utf8.RuneError || size != len(e.Char) {
			return nil, b.errorf("char literal must hold exactly one character")
		}
		return &ast.CharLit{Value: r, Suffix: e.Suffix}, nil
	case e.Neg != nil:
		x, err := b.required("neg", e.Neg)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNeg, X: x}, nil
	case e.Not != nil:
		x, err := b.required("not", e.Not)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNot, X: x}, nil
	case e.Op != "":
		op, ok := ast.ParseBinaryOp(e.Op)
		if !ok {
			return nil, b.errorf("unknown operator %q", e.Op)
		}
		x, err := b.required("x", e.X)
		if err != nil {
			return nil, err
		}
		y, err := b.required("y", e.Y)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, X: x, Y: y}, nil
	case e.Member != "":
		id, err := b.name(e.Member)
		if err != nil {
			return nil, err
		}
		x, err := b.required("of", e.Of)
		if err != nil {
			return nil, err
		}
		return &ast.MemberExpr{X: x, Name: id, Path: e.Path}, nil
	default:
		callee, err := b.required("call", e.Call)
		if err != nil {
			return nil, err
		}
		args, err := b.list("args", e.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Callee: callee, Args: args}, nil
	}
}

// intLit spells negative values as negation of a literal. The checker folds
// the sign back in before range-checking a suffixed literal.
func intLit(v int64, suffix string) ast.Expr {
	if v >= 0 {
		return &ast.IntLit{Value: uint64(v), Suffix: suffix}
	}
	mag := uint64(math.MaxInt64) + 1
	if v != math.MinInt64 {
		mag = uint64(-v)
	}
	return &ast.UnaryExpr{Op: ast.OpNeg, X: &ast.IntLit{Value: mag, Suffix: suffix}}
}

func (b *builder) funcType(f *funcSpec) (ast.Expr, error) {
	b.push("func")
	defer b.pop()
	x := &ast.FuncTypeExpr{RetRef: f.RetRef, RetMut: f.RetMut, Unsafe: f.Unsafe}
	for i := range f.Params {
		b.push("params[%d]", i)
		typ, err := b.required("type", f.Params[i].Type)
		b.pop()
		if err != nil {
			return nil, err
		}
		x.Params = append(x.Params, ast.FuncTypeParam{Type: typ, Ref: f.Params[i].Ref, Mut: f.Params[i].Mut})
	}
	var err error
	if x.Ret, err = b.optional("ret", f.Ret); err != nil {
		return nil, err
	}
	return x, nil
}
