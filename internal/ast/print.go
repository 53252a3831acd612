package ast

import (
	"bytes"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// Print renders f as source text and assigns every node a span into that
// text under the given file id. Units decoded from structured files have
// no text of their own; the listing is what diagnostics point at.
func Print(f *File, file source.FileID, strs *source.Interner) []byte {
	p := &printer{file: file, strs: strs}
	for i, d := range f.Decls {
		if i > 0 {
			p.buf.WriteByte('\n')
		}
		p.decl(d)
	}
	return p.buf.Bytes()
}

// ExprString renders a single expression without assigning spans.
func ExprString(e Expr, strs *source.Interner) string {
	p := &printer{strs: strs, dry: true}
	p.expr(e)
	return p.buf.String()
}

type printer struct {
	buf  bytes.Buffer
	file source.FileID
	strs *source.Interner
	dry  bool
}

func (p *printer) off() uint32 {
	n, err := safecast.Conv[uint32](p.buf.Len())
	if err != nil {
		panic(fmt.Errorf("listing too large: %w", err))
	}
	return n
}

func (p *printer) mark(n Node, start uint32) {
	if p.dry {
		return
	}
	n.SetSpan(source.Span{File: p.file, Start: start, End: p.off()})
}

func (p *printer) ws(parts ...string) {
	for _, s := range parts {
		p.buf.WriteString(s)
	}
}

func (p *printer) name(id source.StringID) {
	if s, ok := p.strs.Lookup(id); ok && s != "" {
		p.buf.WriteString(s)
		return
	}
	p.buf.WriteString("_")
}

func (p *printer) decl(d Decl) {
	start := p.off()
	switch x := d.(type) {
	case *ClassDecl:
		p.ws("struct ")
		p.name(x.Name)
		p.fields(x.Fields)
	case *AliasDecl:
		p.ws("type ")
		p.name(x.Name)
		p.ws(" = ")
		p.expr(x.Target)
		p.ws(";\n")
	case *ConstDecl:
		if x.Type == nil {
			p.ws("auto")
		} else {
			p.ws("var ")
			p.expr(x.Type)
		}
		p.ws(" constexpr ")
		p.name(x.Name)
		p.ws(" = ")
		p.expr(x.Value)
		p.ws(";\n")
	case *EnumDecl:
		p.ws("enum ")
		p.name(x.Name)
		if x.Base != nil {
			p.ws(" : ")
			p.expr(x.Base)
		}
		p.ws("\n{\n")
		for _, m := range x.Members {
			p.ws("\t")
			ms := p.off()
			p.name(m.Name)
			p.mark(m, ms)
			p.ws(",\n")
		}
		p.ws("}\n")
	case *TypeTemplateDecl:
		p.templateParams(x.Params)
		if x.Body == TemplateAlias {
			p.ws("type ")
		} else {
			p.ws("struct ")
		}
		p.name(x.Name)
		if !x.ShortForm {
			p.ws("</ ")
			for i, sp := range x.Signature {
				if i > 0 {
					p.ws(", ")
				}
				ss := p.off()
				p.expr(sp.Type)
				if sp.Default != nil {
					p.ws(" = ")
					p.expr(sp.Default)
				}
				p.mark(sp, ss)
			}
			p.ws(" />")
		}
		if x.Body == TemplateAlias {
			p.ws(" = ")
			p.expr(x.Alias)
			p.ws(";\n")
		} else {
			p.fields(x.Fields)
		}
	case *FuncDecl:
		p.fn(x)
	case *FunctionTemplateDecl:
		p.templateParams(x.Params)
		p.fn(x.Func)
	}
	p.mark(d, start)
}

func (p *printer) fields(fields []*FieldDecl) {
	p.ws("\n{\n")
	for _, f := range fields {
		p.ws("\t")
		fs := p.off()
		p.expr(f.Type)
		p.ws(" ")
		p.name(f.Name)
		p.mark(f, fs)
		p.ws(";\n")
	}
	p.ws("}\n")
}

func (p *printer) templateParams(params []*TemplateParam) {
	p.ws("template</ ")
	for i, tp := range params {
		if i > 0 {
			p.ws(", ")
		}
		ts := p.off()
		if tp.Type == nil {
			p.ws("type ")
		} else {
			p.expr(tp.Type)
			p.ws(" ")
		}
		p.name(tp.Name)
		p.mark(tp, ts)
	}
	p.ws(" />\n")
}

func (p *printer) fn(f *FuncDecl) {
	start := p.off()
	p.ws("fn ")
	p.name(f.Name)
	p.ws("(")
	for i, prm := range f.Params {
		if i > 0 {
			p.ws(", ")
		}
		ps := p.off()
		p.expr(prm.Type)
		p.ws(" ", refText(prm.Ref, prm.Mut))
		p.name(prm.Name)
		p.mark(prm, ps)
	}
	p.ws(")")
	if f.Unsafe {
		p.ws(" unsafe")
	}
	if f.Ret != nil {
		p.ws(" : ")
		p.expr(f.Ret)
		if f.RetRef {
			p.ws(" ", refText(true, f.RetMut))
		}
	}
	p.mark(f, start)
	p.ws("\n{\n")
	for _, st := range f.Body {
		p.ws("\t")
		p.stmt(st)
		p.ws("\n")
	}
	p.ws("}\n")
}

func refText(ref, mut bool) string {
	switch {
	case ref && mut:
		return "&mut "
	case ref:
		return "&imut "
	}
	return ""
}

func (p *printer) stmt(s Stmt) {
	start := p.off()
	switch x := s.(type) {
	case *LetStmt:
		if x.Type == nil {
			p.ws("auto ")
		} else {
			p.ws("var ")
			p.expr(x.Type)
			p.ws(" ")
		}
		p.name(x.Name)
		p.ws(" = ")
		p.expr(x.Init)
		p.ws(";")
	case *ExprStmt:
		p.expr(x.X)
		p.ws(";")
	case *ReturnStmt:
		p.ws("return")
		if x.Value != nil {
			p.ws(" ")
			p.expr(x.Value)
		}
		p.ws(";")
	}
	p.mark(s, start)
}

func (p *printer) exprs(list []Expr) {
	for i, e := range list {
		if i > 0 {
			p.ws(", ")
		}
		p.expr(e)
	}
}

func (p *printer) expr(e Expr) {
	if e == nil {
		p.ws("void")
		return
	}
	start := p.off()
	switch x := e.(type) {
	case *NameExpr:
		p.name(x.Name)
	case *ApplyExpr:
		p.expr(x.Base)
		p.ws("</ ")
		p.exprs(x.Args)
		p.ws(" />")
	case *ArrayTypeExpr:
		p.ws("[ ")
		p.expr(x.Elem)
		p.ws(", ")
		p.expr(x.Size)
		p.ws(" ]")
	case *TupleTypeExpr:
		p.ws("tup[ ")
		p.exprs(x.Elems)
		p.ws(" ]")
	case *PointerTypeExpr:
		p.ws("$(")
		p.expr(x.Elem)
		p.ws(")")
	case *FuncTypeExpr:
		p.ws("fn(")
		for i, prm := range x.Params {
			if i > 0 {
				p.ws(", ")
			}
			p.ws(refText(prm.Ref, prm.Mut))
			p.expr(prm.Type)
		}
		p.ws(")")
		if x.Unsafe {
			p.ws(" unsafe")
		}
		p.ws(" : ", refText(x.RetRef, x.RetMut))
		p.expr(x.Ret)
	case *IntLit:
		p.ws(strconv.FormatUint(x.Value, 10), x.Suffix)
	case *BoolLit:
		p.ws(strconv.FormatBool(x.Value))
	case *CharLit:
		p.ws(strconv.QuoteRune(x.Value), x.Suffix)
	case *UnaryExpr:
		if x.Op == OpNeg {
			p.ws("-")
		} else {
			p.ws("!")
		}
		p.operand(x.X)
	case *BinaryExpr:
		p.operand(x.X)
		p.ws(" ", x.Op.String(), " ")
		p.operand(x.Y)
	case *MemberExpr:
		p.expr(x.X)
		if x.Path {
			p.ws("::")
		} else {
			p.ws(".")
		}
		p.name(x.Name)
	case *CallExpr:
		p.expr(x.Callee)
		p.ws("(")
		p.exprs(x.Args)
		p.ws(")")
	}
	p.mark(e, start)
}

func (p *printer) operand(e Expr) {
	if _, ok := e.(*BinaryExpr); ok {
		p.ws("(")
		p.expr(e)
		p.ws(")")
		return
	}
	p.expr(e)
}
