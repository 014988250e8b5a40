package semantic

import (
	"martianoff/lyra/internal/ast"
	"martianoff/lyra/internal/types"
)

// Package is the fully typed semantic form of one source package.
type Package struct {
	Path  string
	Name  string
	Files []*File
}

// File is the semantic form of one source file.
type File struct {
	Name string
	Body []Statement
}

// Statement is implemented by semantic statement nodes.
type Statement interface {
	stmtNode()
}

// Expression is implemented by semantic expression nodes; every
// expression carries its inferred monotype.
type Expression interface {
	Loc() ast.Position
	TypeOf() types.MonoType
	exprNode()
}

// VariableAssignment binds the result of Init to Name in package scope.
type VariableAssignment struct {
	P    ast.Position
	Name Symbol
	Init Expression
}

func (s *VariableAssignment) stmtNode() {}

// Builtin declares a binding implemented outside the language.
type Builtin struct {
	P    ast.Position
	Name Symbol
	Typ  types.PolyType
}

func (s *Builtin) stmtNode() {}

// Return yields a value from a function body.
type Return struct {
	P        ast.Position
	Argument Expression
}

func (s *Return) stmtNode() {}

// ExpressionStmt is a bare expression evaluated for effect.
type ExpressionStmt struct {
	P    ast.Position
	Expr Expression
}

func (s *ExpressionStmt) stmtNode() {}

type IdentifierExpr struct {
	P    ast.Position
	Name Symbol
	Typ  types.MonoType
}

func (e *IdentifierExpr) Loc() ast.Position      { return e.P }
func (e *IdentifierExpr) TypeOf() types.MonoType { return e.Typ }
func (e *IdentifierExpr) exprNode()              {}

type IntegerLit struct {
	P     ast.Position
	Value int64
}

func (e *IntegerLit) Loc() ast.Position      { return e.P }
func (e *IntegerLit) TypeOf() types.MonoType { return types.Int }
func (e *IntegerLit) exprNode()              {}

type FloatLit struct {
	P     ast.Position
	Value float64
}

func (e *FloatLit) Loc() ast.Position      { return e.P }
func (e *FloatLit) TypeOf() types.MonoType { return types.Float }
func (e *FloatLit) exprNode()              {}

type StringLit struct {
	P     ast.Position
	Value string
}

func (e *StringLit) Loc() ast.Position      { return e.P }
func (e *StringLit) TypeOf() types.MonoType { return types.Str }
func (e *StringLit) exprNode()              {}

type BooleanLit struct {
	P     ast.Position
	Value bool
}

func (e *BooleanLit) Loc() ast.Position      { return e.P }
func (e *BooleanLit) TypeOf() types.MonoType { return types.Bool }
func (e *BooleanLit) exprNode()              {}

type UnaryExpr struct {
	P    ast.Position
	Op   string
	Expr Expression
	Typ  types.MonoType
}

func (e *UnaryExpr) Loc() ast.Position      { return e.P }
func (e *UnaryExpr) TypeOf() types.MonoType { return e.Typ }
func (e *UnaryExpr) exprNode()              {}

type BinaryExpr struct {
	P     ast.Position
	Op    string
	Left  Expression
	Right Expression
	Typ   types.MonoType
}

func (e *BinaryExpr) Loc() ast.Position      { return e.P }
func (e *BinaryExpr) TypeOf() types.MonoType { return e.Typ }
func (e *BinaryExpr) exprNode()              {}

// MemberExpr is `object.property`.
type MemberExpr struct {
	P        ast.Position
	Object   Expression
	Property string
	Typ      types.MonoType
}

func (e *MemberExpr) Loc() ast.Position      { return e.P }
func (e *MemberExpr) TypeOf() types.MonoType { return e.Typ }
func (e *MemberExpr) exprNode()              {}

// Property is one labeled value inside a call or object expression.
type Property struct {
	P     ast.Position
	Key   string
	Value Expression
}

// CallExpr is a call with named arguments.
type CallExpr struct {
	P      ast.Position
	Callee Expression
	Args   []*Property
	Typ    types.MonoType
}

func (e *CallExpr) Loc() ast.Position      { return e.P }
func (e *CallExpr) TypeOf() types.MonoType { return e.Typ }
func (e *CallExpr) exprNode()              {}

// ObjectExpr is a record construction expression.
type ObjectExpr struct {
	P          ast.Position
	Properties []*Property
	Typ        types.MonoType
}

func (e *ObjectExpr) Loc() ast.Position      { return e.P }
func (e *ObjectExpr) TypeOf() types.MonoType { return e.Typ }
func (e *ObjectExpr) exprNode()              {}

// FunctionParam is one formal parameter of a function expression.
type FunctionParam struct {
	P       ast.Position
	Key     string
	Default Expression
}

// FunctionExpr is a function literal. Vectorized, when non-nil, is the
// column-batched alternate body attached by the vectorization pass; the
// scalar form always remains.
type FunctionExpr struct {
	P          ast.Position
	Params     []*FunctionParam
	Body       []Statement
	Typ        types.MonoType
	Vectorized *FunctionExpr
}

func (e *FunctionExpr) Loc() ast.Position      { return e.P }
func (e *FunctionExpr) TypeOf() types.MonoType { return e.Typ }
func (e *FunctionExpr) exprNode()              {}

// ReturnStatement returns the body's single return statement, or nil
// when the body is not exactly one return.
func (e *FunctionExpr) ReturnStatement() *Return {
	if len(e.Body) != 1 {
		return nil
	}
	ret, _ := e.Body[0].(*Return)
	return ret
}
