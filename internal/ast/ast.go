// Package ast defines the parsed syntax tree for Lyra source files.
package ast

import "martianoff/lyra/lyraerr"

// Position aliases the diagnostic position so every node can be reported
// against its source location without an import loop.
type Position = lyraerr.Position

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Position
}

// Package is one package's parsed files. Name is taken from the first
// parsed file; files appear in registry iteration order.
type Package struct {
	Path  string
	Name  string
	Files []*File
}

// File is a single parsed source file.
type File struct {
	Name    string // registry path of the file
	Package string // package clause, "" when absent
	PkgPos  Position
	Imports []*ImportDecl
	Body    []Statement
}

func (f *File) Pos() Position { return f.PkgPos }

// Statement is implemented by all statement nodes.
type Statement interface {
	Node
	stmtNode()
}

// Expression is implemented by all expression nodes.
type Expression interface {
	Node
	exprNode()
}

// TypeExpr is implemented by type annotation nodes.
type TypeExpr interface {
	Node
	typeNode()
}

// ImportDecl is `import "path"`.
type ImportDecl struct {
	P    Position
	Path string
}

func (d *ImportDecl) Pos() Position { return d.P }

// BuiltinStmt declares a binding implemented outside the language:
// `builtin name : type`.
type BuiltinStmt struct {
	P    Position
	Name string
	Ty   TypeExpr
}

func (s *BuiltinStmt) Pos() Position { return s.P }
func (s *BuiltinStmt) stmtNode()     {}

// VariableAssignment is `name = expr`.
type VariableAssignment struct {
	P    Position
	Name string
	Init Expression
}

func (s *VariableAssignment) Pos() Position { return s.P }
func (s *VariableAssignment) stmtNode()     {}

// ReturnStmt is `return expr`, only valid inside a function body.
type ReturnStmt struct {
	P        Position
	Argument Expression
}

func (s *ReturnStmt) Pos() Position { return s.P }
func (s *ReturnStmt) stmtNode()     {}

// ExpressionStmt is a bare expression at statement position.
type ExpressionStmt struct {
	P    Position
	Expr Expression
}

func (s *ExpressionStmt) Pos() Position { return s.P }
func (s *ExpressionStmt) stmtNode()     {}

type Identifier struct {
	P    Position
	Name string
}

func (e *Identifier) Pos() Position { return e.P }
func (e *Identifier) exprNode()     {}

type IntegerLit struct {
	P     Position
	Value int64
}

func (e *IntegerLit) Pos() Position { return e.P }
func (e *IntegerLit) exprNode()     {}

type FloatLit struct {
	P     Position
	Value float64
}

func (e *FloatLit) Pos() Position { return e.P }
func (e *FloatLit) exprNode()     {}

type StringLit struct {
	P     Position
	Value string
}

func (e *StringLit) Pos() Position { return e.P }
func (e *StringLit) exprNode()     {}

type BooleanLit struct {
	P     Position
	Value bool
}

func (e *BooleanLit) Pos() Position { return e.P }
func (e *BooleanLit) exprNode()     {}

type UnaryExpr struct {
	P    Position
	Op   string
	Expr Expression
}

func (e *UnaryExpr) Pos() Position { return e.P }
func (e *UnaryExpr) exprNode()     {}

type BinaryExpr struct {
	P     Position
	Op    string
	Left  Expression
	Right Expression
}

func (e *BinaryExpr) Pos() Position { return e.P }
func (e *BinaryExpr) exprNode()     {}

type ParenExpr struct {
	P    Position
	Expr Expression
}

func (e *ParenExpr) Pos() Position { return e.P }
func (e *ParenExpr) exprNode()     {}

// MemberExpr is `object.property`.
type MemberExpr struct {
	P        Position
	Object   Expression
	Property string
}

func (e *MemberExpr) Pos() Position { return e.P }
func (e *MemberExpr) exprNode()     {}

// Property is one `key: value` pair inside a call argument list or an
// object literal.
type Property struct {
	P     Position
	Key   string
	Value Expression
}

func (p *Property) Pos() Position { return p.P }

// CallExpr is `callee(key: value, ...)`. Lyra calls take named arguments
// only.
type CallExpr struct {
	P      Position
	Callee Expression
	Args   []*Property
}

func (e *CallExpr) Pos() Position { return e.P }
func (e *CallExpr) exprNode()     {}

// ObjectExpr is `{key: value, ...}`.
type ObjectExpr struct {
	P          Position
	Properties []*Property
}

func (e *ObjectExpr) Pos() Position { return e.P }
func (e *ObjectExpr) exprNode()     {}

// Param is one formal parameter of a function literal. Default, when
// present, makes the parameter optional.
type Param struct {
	P       Position
	Name    string
	Default Expression
}

func (p *Param) Pos() Position { return p.P }

// FunctionExpr is `(params) => expr` or `(params) => { ...; return expr }`.
// The single-expression arrow form is desugared into a one-statement
// return body by the parser.
type FunctionExpr struct {
	P      Position
	Params []*Param
	Body   []Statement
}

func (e *FunctionExpr) Pos() Position { return e.P }
func (e *FunctionExpr) exprNode()     {}

// NamedType is a type annotation naming a basic type, e.g. `int`.
type NamedType struct {
	P    Position
	Name string
}

func (t *NamedType) Pos() Position { return t.P }
func (t *NamedType) typeNode()     {}

// TypeVarExpr is a type variable in an annotation, a single capital
// letter such as `A`.
type TypeVarExpr struct {
	P    Position
	Name string
}

func (t *TypeVarExpr) Pos() Position { return t.P }
func (t *TypeVarExpr) typeNode()     {}

// ParamType is one named parameter of a function type annotation.
// Optional parameters are written with a leading `?`.
type ParamType struct {
	P        Position
	Name     string
	Ty       TypeExpr
	Optional bool
}

// FuncTypeExpr is `(x: A, ?y: int) => A`.
type FuncTypeExpr struct {
	P      Position
	Params []*ParamType
	Return TypeExpr
}

func (t *FuncTypeExpr) Pos() Position { return t.P }
func (t *FuncTypeExpr) typeNode()     {}

// FieldType is one `name: type` field of a record type annotation.
type FieldType struct {
	P    Position
	Name string
	Ty   TypeExpr
}

// RecordTypeExpr is `{name: type, ...}`.
type RecordTypeExpr struct {
	P      Position
	Fields []*FieldType
}

func (t *RecordTypeExpr) Pos() Position { return t.P }
func (t *RecordTypeExpr) typeNode()     {}
