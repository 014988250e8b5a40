package bootstrap

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"martianoff/lyra/internal/semantic"
	"martianoff/lyra/internal/types"
)

// Module is the compiled form of one package: its export type paired
// with its typed semantic body. On disk a module is gob-encoded and
// gzip-compressed.
type Module struct {
	PolyType types.PolyType
	Code     *semantic.Package
}

// The type and node grammars are interface-valued, so every concrete
// implementation must be registered before gob can move a Module.
func init() {
	gob.Register(types.Basic(""))
	gob.Register(types.Var{})
	gob.Register(types.BoundVar{})
	gob.Register(&types.Vec{})
	gob.Register(&types.Record{})
	gob.Register(&types.Function{})
	gob.Register(types.ConcreteLabel(""))
	gob.Register(types.VarLabel{})
	gob.Register(types.BoundVarLabel{})
	gob.Register(types.ErrorLabel{})

	gob.Register(&semantic.VariableAssignment{})
	gob.Register(&semantic.Builtin{})
	gob.Register(&semantic.Return{})
	gob.Register(&semantic.ExpressionStmt{})
	gob.Register(&semantic.IdentifierExpr{})
	gob.Register(&semantic.IntegerLit{})
	gob.Register(&semantic.FloatLit{})
	gob.Register(&semantic.StringLit{})
	gob.Register(&semantic.BooleanLit{})
	gob.Register(&semantic.UnaryExpr{})
	gob.Register(&semantic.BinaryExpr{})
	gob.Register(&semantic.MemberExpr{})
	gob.Register(&semantic.CallExpr{})
	gob.Register(&semantic.ObjectExpr{})
	gob.Register(&semantic.FunctionExpr{})
}

// Encode writes the module to w, gob-encoded and gzip-compressed.
func (m *Module) Encode(w io.Writer) error {
	gz := gzip.NewWriter(w)
	if err := gob.NewEncoder(gz).Encode(m); err != nil {
		gz.Close()
		return fmt.Errorf("encoding module: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compressing module: %w", err)
	}
	return nil
}

// DecodeModule reads one module from r.
func DecodeModule(r io.Reader) (*Module, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing module: %w", err)
	}
	defer gz.Close()
	var m Module
	if err := gob.NewDecoder(gz).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding module: %w", err)
	}
	return &m, nil
}
