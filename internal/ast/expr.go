package ast

import "github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"

// Node is implemented by every syntax tree node.
type Node interface {
	Span() source.Span
	SetSpan(source.Span)
}

type node struct{ sp source.Span }

func (n *node) Span() source.Span      { return n.sp }
func (n *node) SetSpan(sp source.Span) { n.sp = sp }

// Expr is the closed set of expressions. Type expressions and value
// expressions share one tree; the checker decides what a name denotes.
type Expr interface {
	Node
	exprNode()
}

// NameExpr is a bare identifier.
type NameExpr struct {
	node
	Name source.StringID
}

// ApplyExpr is an explicit template application Base</Args/>.
type ApplyExpr struct {
	node
	Base Expr
	Args []Expr
}

// ArrayTypeExpr is [Elem, Size].
type ArrayTypeExpr struct {
	node
	Elem Expr
	Size Expr
}

// TupleTypeExpr is tup[Elems...].
type TupleTypeExpr struct {
	node
	Elems []Expr
}

// PointerTypeExpr is $(Elem).
type PointerTypeExpr struct {
	node
	Elem Expr
}

type FuncTypeParam struct {
	Type Expr
	Ref  bool
	Mut  bool
}

// FuncTypeExpr is fn(params) : Ret. A nil Ret means void.
type FuncTypeExpr struct {
	node
	Params []FuncTypeParam
	Ret    Expr
	RetRef bool
	RetMut bool
	Unsafe bool
}

// IntLit is an integer literal. Without a suffix the literal is untyped.
type IntLit struct {
	node
	Value  uint64
	Suffix string
}

type BoolLit struct {
	node
	Value bool
}

// CharLit is a character literal; Suffix selects char8/char16/char32.
type CharLit struct {
	node
	Value  rune
	Suffix string
}

type UnaryOp uint8

const (
	OpNeg UnaryOp = iota + 1
	OpNot
)

type UnaryExpr struct {
	node
	Op UnaryOp
	X  Expr
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota + 1
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var binaryOpText = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpRem: "%",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "&&", OpOr: "||",
}

func (op BinaryOp) String() string {
	if s, ok := binaryOpText[op]; ok {
		return s
	}
	return "?"
}

// ParseBinaryOp maps operator text to BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for op, text := range binaryOpText {
		if text == s {
			return op, true
		}
	}
	return 0, false
}

type BinaryExpr struct {
	node
	Op BinaryOp
	X  Expr
	Y  Expr
}

// MemberExpr is X::Name when Path is set (enum members, namespaces) and
// X.Name otherwise (fields).
type MemberExpr struct {
	node
	X    Expr
	Name source.StringID
	Path bool
}

// CallExpr calls Callee; Callee may carry explicit template arguments.
type CallExpr struct {
	node
	Callee Expr
	Args   []Expr
}

func (*NameExpr) exprNode()        {}
func (*ApplyExpr) exprNode()       {}
func (*ArrayTypeExpr) exprNode()   {}
func (*TupleTypeExpr) exprNode()   {}
func (*PointerTypeExpr) exprNode() {}
func (*FuncTypeExpr) exprNode()    {}
func (*IntLit) exprNode()          {}
func (*BoolLit) exprNode()         {}
func (*CharLit) exprNode()         {}
func (*UnaryExpr) exprNode()       {}
func (*BinaryExpr) exprNode()      {}
func (*MemberExpr) exprNode()      {}
func (*CallExpr) exprNode()        {}
