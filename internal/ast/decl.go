package ast

import "github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"

// Decl is a top-level declaration.
type Decl interface {
	Node
	DeclName() source.StringID
	declNode()
}

type FieldDecl struct {
	node
	Name source.StringID
	Type Expr
}

type ClassDecl struct {
	node
	Name   source.StringID
	Fields []*FieldDecl
}

type AliasDecl struct {
	node
	Name   source.StringID
	Target Expr
}

// ConstDecl declares a compile-time constant. A nil Type means auto.
type ConstDecl struct {
	node
	Name  source.StringID
	Type  Expr
	Value Expr
}

// EnumMember gets the value of its position.
type EnumMember struct {
	node
	Name source.StringID
}

// EnumDecl with a nil Base picks the smallest unsigned type that fits.
type EnumDecl struct {
	node
	Name    source.StringID
	Base    Expr
	Members []*EnumMember
}

// TemplateParam is a type parameter when Type is nil and a value
// parameter of type Type otherwise.
type TemplateParam struct {
	node
	Name source.StringID
	Type Expr
}

// SignatureParam is one position of a type template signature. Positions
// with a Default are optional.
type SignatureParam struct {
	node
	Type    Expr
	Default Expr
}

type TemplateBody uint8

const (
	TemplateClass TemplateBody = iota
	TemplateAlias
)

// TypeTemplateDecl declares a class or alias template. ShortForm
// declarations have no Signature: every parameter is a position.
type TypeTemplateDecl struct {
	node
	Name      source.StringID
	Params    []*TemplateParam
	Signature []*SignatureParam
	ShortForm bool
	Body      TemplateBody
	Fields    []*FieldDecl
	Alias     Expr
}

type Param struct {
	node
	Name source.StringID
	Type Expr
	Ref  bool
	Mut  bool
}

// FuncDecl is a function. A nil Ret means void.
type FuncDecl struct {
	node
	Name   source.StringID
	Params []*Param
	Ret    Expr
	RetRef bool
	RetMut bool
	Unsafe bool
	Body   []Stmt
}

type FunctionTemplateDecl struct {
	node
	Params []*TemplateParam
	Func   *FuncDecl
}

func (d *ClassDecl) DeclName() source.StringID            { return d.Name }
func (d *AliasDecl) DeclName() source.StringID            { return d.Name }
func (d *ConstDecl) DeclName() source.StringID            { return d.Name }
func (d *EnumDecl) DeclName() source.StringID             { return d.Name }
func (d *TypeTemplateDecl) DeclName() source.StringID     { return d.Name }
func (d *FuncDecl) DeclName() source.StringID             { return d.Name }
func (d *FunctionTemplateDecl) DeclName() source.StringID { return d.Func.Name }

func (*ClassDecl) declNode()            {}
func (*AliasDecl) declNode()            {}
func (*ConstDecl) declNode()            {}
func (*EnumDecl) declNode()             {}
func (*TypeTemplateDecl) declNode()     {}
func (*FuncDecl) declNode()             {}
func (*FunctionTemplateDecl) declNode() {}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// LetStmt declares a local variable; a nil Type means auto.
type LetStmt struct {
	node
	Name source.StringID
	Type Expr
	Init Expr
}

type ExprStmt struct {
	node
	X Expr
}

// ReturnStmt with a nil Value returns void.
type ReturnStmt struct {
	node
	Value Expr
}

func (*LetStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}

// File is one checked unit.
type File struct {
	Path  string
	Decls []Decl
}
