package lyraerr_test

import (
	"strings"
	"testing"

	"martianoff/lyra/lyraerr"

	"github.com/stretchr/testify/assert"
)

func TestSyntaxError(t *testing.T) {
	err := lyraerr.NewSyntaxError(10, 5, "unexpected token")
	assert.Equal(t, lyraerr.TypeSyntax, err.Type())
	assert.Equal(t, 10, err.Pos.Line)
	assert.Equal(t, 5, err.Pos.Column)
	assert.Contains(t, err.Error(), "[SyntaxError] line 10:5 unexpected token")
}

func TestSemanticError(t *testing.T) {
	err := lyraerr.NewSemanticError("undefined variable x")
	assert.Equal(t, lyraerr.TypeSemantic, err.Type())
	assert.Contains(t, err.Error(), "[SemanticError] undefined variable x")
}

func TestSemanticErrorAt(t *testing.T) {
	err := lyraerr.NewSemanticErrorAt(10, 5, "record contains variable labels")
	assert.Equal(t, lyraerr.TypeSemantic, err.Type())
	assert.Equal(t, 10, err.Pos.Line)
	assert.Equal(t, 5, err.Pos.Column)
	assert.Equal(t, "[SemanticError] line 10:5 record contains variable labels", err.Error())
}

func TestFileErrors(t *testing.T) {
	fe := &lyraerr.FileErrors{File: "universe/universe.lyra"}
	fe.Append(lyraerr.Position{Line: 3, Column: 7}, "undefined identifier f")
	fe.Append(lyraerr.Position{}, "import cycle")

	assert.Equal(t, lyraerr.TypeSemantic, fe.Type())
	assert.Len(t, fe.Diagnostics, 2)
	assert.Contains(t, fe.Error(), "error @universe/universe.lyra")
	assert.Contains(t, fe.Error(), "line 3:7 undefined identifier f")
	assert.Contains(t, fe.Error(), "and 1 more")
}

func TestFileErrorsSingleDiagnostic(t *testing.T) {
	fe := &lyraerr.FileErrors{File: "b"}
	fe.Append(lyraerr.Position{}, `package "b" depends on itself`)
	assert.Equal(t, `error @b: package "b" depends on itself`, fe.Error())
}

func TestMultiError(t *testing.T) {
	e1 := lyraerr.NewSyntaxError(1, 1, "error 1")
	e2 := lyraerr.NewSyntaxError(2, 2, "error 2")
	multi := &lyraerr.MultiError{Errors: []error{e1, e2}}

	assert.Equal(t, lyraerr.TypeSyntax, multi.Type())
	errMsg := multi.Error()
	assert.Contains(t, errMsg, "2 error(s) occurred:")
	assert.Contains(t, errMsg, "- [SyntaxError] line 1:1 error 1")
	assert.Contains(t, errMsg, "- [SyntaxError] line 2:2 error 2")
}

func TestMultiErrorMixed(t *testing.T) {
	e1 := lyraerr.NewSemanticError("semantic error")
	e2 := lyraerr.NewSyntaxError(1, 1, "syntax error")
	multi := &lyraerr.MultiError{Errors: []error{e1, e2}}

	assert.Equal(t, lyraerr.TypeSemantic, multi.Type())
}

func TestMultiErrorEmpty(t *testing.T) {
	multi := &lyraerr.MultiError{Errors: []error{}}
	assert.Equal(t, lyraerr.ErrorType("MultiError"), multi.Type())
	assert.True(t, strings.HasPrefix(multi.Error(), "0 error(s) occurred:"))
}
