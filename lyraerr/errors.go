package lyraerr

import (
	"fmt"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeSyntax   ErrorType = "SyntaxError"
	TypeSemantic ErrorType = "SemanticError"
	TypeInternal ErrorType = "InternalError"
)

// LyraError is the interface for all Lyra-related errors.
type LyraError interface {
	error
	Type() ErrorType
}

// Position is a line/column location inside a source file. The zero value
// means "no location" (synthesized diagnostics such as import cycles).
type Position struct {
	Line   int
	Column int
}

func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Diagnostic is one located message inside a FileErrors bundle.
type Diagnostic struct {
	Pos Position
	Msg string
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("line %s %s", d.Pos, d.Msg)
	}
	return d.Msg
}

// BaseError provides common fields for Lyra errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// SyntaxError represents an error during the parsing phase.
type SyntaxError struct {
	BaseError
	Pos Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[%s] line %s %s", e.ErrType, e.Pos, e.Msg)
}

// SemanticError represents an error during semantic analysis.
type SemanticError struct {
	BaseError
	Pos      Position
	FilePath string
}

func (e *SemanticError) Error() string {
	if e.Pos.IsValid() {
		if e.FilePath != "" {
			return fmt.Sprintf("[%s] %s:%s %s", e.ErrType, e.FilePath, e.Pos, e.Msg)
		}
		return fmt.Sprintf("[%s] line %s %s", e.ErrType, e.Pos, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// FileErrors bundles all diagnostics produced for one file (or for one
// synthesized failure such as an import cycle, in which case File names
// the package path the failure is attached to). It is returned, not
// raised, so that errors across a package tree can be reported together.
type FileErrors struct {
	File string
	// Source optionally carries the file's source text so diagnostics can
	// be rendered with context.
	Source      string
	Diagnostics []Diagnostic
}

func (e *FileErrors) Append(pos Position, msg string) {
	e.Diagnostics = append(e.Diagnostics, Diagnostic{Pos: pos, Msg: msg})
}

func (e *FileErrors) Error() string {
	switch len(e.Diagnostics) {
	case 0:
		return fmt.Sprintf("error @%s", e.File)
	case 1:
		return fmt.Sprintf("error @%s: %s", e.File, e.Diagnostics[0])
	default:
		return fmt.Sprintf("error @%s: %s (and %d more)", e.File, e.Diagnostics[0], len(e.Diagnostics)-1)
	}
}

func (e *FileErrors) Type() ErrorType {
	return TypeSemantic
}

// MultiError collects multiple Lyra errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if le, ok := m.Errors[0].(LyraError); ok {
			return le.Type()
		}
	}
	return "MultiError"
}

// NewSyntaxError creates a new SyntaxError.
func NewSyntaxError(line, column int, msg string) *SyntaxError {
	return &SyntaxError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeSyntax,
		},
		Pos: Position{Line: line, Column: column},
	}
}

// NewSemanticError creates a new SemanticError.
func NewSemanticError(msg string) *SemanticError {
	return &SemanticError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeSemantic,
		},
	}
}

// NewSemanticErrorAt creates a SemanticError with line and column position.
func NewSemanticErrorAt(line, column int, msg string) *SemanticError {
	return &SemanticError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeSemantic,
		},
		Pos: Position{Line: line, Column: column},
	}
}
