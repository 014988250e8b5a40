package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/lyra/internal/ast"
	"martianoff/lyra/lyraerr"
)

func TestParseFile(t *testing.T) {
	src := `package universe
import "internal/boolean"

builtin length : (v: A) => int

x = 1
f = (a, b = 2) => a + b
o = {x: 1, y}
m = o.x
c = f(a: 1)
`
	file, err := ParseFile("universe/universe.lyra", src)
	require.NoError(t, err)

	assert.Equal(t, "universe", file.Package)
	require.Len(t, file.Imports, 1)
	assert.Equal(t, "internal/boolean", file.Imports[0].Path)
	require.Len(t, file.Body, 6)

	builtin, ok := file.Body[0].(*ast.BuiltinStmt)
	require.True(t, ok)
	assert.Equal(t, "length", builtin.Name)
	fn, ok := builtin.Ty.(*ast.FuncTypeExpr)
	require.True(t, ok)
	require.Len(t, fn.Params, 1)
	assert.IsType(t, &ast.TypeVarExpr{}, fn.Params[0].Ty)

	assign, ok := file.Body[1].(*ast.VariableAssignment)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)
	assert.IsType(t, &ast.IntegerLit{}, assign.Init)
}

func TestParseFunction(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		params    int
		bodyStmts int
	}{
		{
			name:      "single expression body",
			src:       "f = (x) => x + 1",
			params:    1,
			bodyStmts: 1,
		},
		{
			name:      "object body in parens",
			src:       "f = (r) => ({x: r.x, y: r.y})",
			params:    1,
			bodyStmts: 1,
		},
		{
			name:      "block body",
			src:       "f = (x) => {\n  y = x\n  return y\n}",
			params:    1,
			bodyStmts: 2,
		},
		{
			name:      "default value",
			src:       "f = (x, y = 1) => x",
			params:    2,
			bodyStmts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := ParseFile("test.lyra", tt.src)
			require.NoError(t, err)
			require.Len(t, file.Body, 1)

			assign := file.Body[0].(*ast.VariableAssignment)
			fn, ok := assign.Init.(*ast.FunctionExpr)
			if !ok {
				paren := assign.Init.(*ast.ParenExpr)
				fn, ok = paren.Expr.(*ast.FunctionExpr)
			}
			require.True(t, ok)
			assert.Len(t, fn.Params, tt.params)
			assert.Len(t, fn.Body, tt.bodyStmts)
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	file, err := ParseFile("test.lyra", "x = 1 + 2 * 3")
	require.NoError(t, err)

	assign := file.Body[0].(*ast.VariableAssignment)
	add, ok := assign.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestParseParenIsNotFunction(t *testing.T) {
	file, err := ParseFile("test.lyra", "x = (1 + 2) * 3")
	require.NoError(t, err)

	assign := file.Body[0].(*ast.VariableAssignment)
	mul, ok := assign.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
	assert.IsType(t, &ast.ParenExpr{}, mul.Left)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseFile("test.lyra", "x = \ny = 2")
	require.Error(t, err)

	multi, ok := err.(*lyraerr.MultiError)
	require.True(t, ok)
	require.NotEmpty(t, multi.Errors)
	assert.Equal(t, lyraerr.TypeSyntax, multi.Errors[0].(*lyraerr.SyntaxError).Type())
}

func TestParseNewlinesInsideBraces(t *testing.T) {
	src := "o = {\n  x: 1,\n  y: 2,\n}"
	file, err := ParseFile("test.lyra", src)
	require.NoError(t, err)
	require.Len(t, file.Body, 1)

	obj := file.Body[0].(*ast.VariableAssignment).Init.(*ast.ObjectExpr)
	assert.Len(t, obj.Properties, 2)
}
