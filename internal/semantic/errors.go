package semantic

import (
	"fmt"
	"strings"

	"martianoff/lyra/internal/ast"
	"martianoff/lyra/lyraerr"
)

// ImportCycleError reports a dependency chain that returned to its
// origin package. Cycle lists the ordered package paths on the chain,
// with the entry package appearing exactly once.
type ImportCycleError struct {
	Path  string
	Cycle []string
}

func (e *ImportCycleError) Error() string {
	if len(e.Cycle) <= 1 {
		return fmt.Sprintf("package %q depends on itself", e.Path)
	}
	return fmt.Sprintf("package %q depends on itself (import chain: %s)", e.Path, strings.Join(e.Cycle, " -> "))
}

// InvalidImportPathError is the narrow failure reported when only a
// package's type was requested and the path could not be resolved.
type InvalidImportPathError struct {
	Path string
}

func (e *InvalidImportPathError) Error() string {
	return fmt.Sprintf("invalid import path %q", e.Path)
}

// VectorizeReason tags why a function could not be vectorized.
type VectorizeReason string

const (
	ReasonParameterShape VectorizeReason = "parameter shape"
	ReasonBody           VectorizeReason = "body"
	ReasonReturn         VectorizeReason = "return"
	ReasonPropertyValue  VectorizeReason = "property value"
	ReasonBase           VectorizeReason = "base"
)

// UnableToVectorizeError halts the vectorization pass. It does not
// invalidate inference results: the scalar forms remain fully usable.
type UnableToVectorizeError struct {
	Pos    ast.Position
	Reason VectorizeReason
	Msg    string
}

func (e *UnableToVectorizeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("line %s unable to vectorize: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("unable to vectorize: %s", e.Msg)
}

// AnalysisError wraps a FileErrors bundle produced while analyzing a
// package. When the failure was recoverable, Exports and Pkg carry the
// partially analyzed data so callers can still render diagnostics
// against it.
type AnalysisError struct {
	Err     *lyraerr.FileErrors
	Exports *PackageExports
	Pkg     *Package
}

func (e *AnalysisError) Error() string {
	return e.Err.Error()
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether partial analysis results were salvaged.
func (e *AnalysisError) Recoverable() bool {
	return e.Exports != nil
}
