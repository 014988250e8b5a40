package semantic

import (
	"fmt"

	"martianoff/lyra/internal/ast"
	"martianoff/lyra/internal/types"
)

// ConvertTypeExpr turns a builtin declaration's type annotation into a
// polytype. Type variables are quantified in order of first appearance.
func ConvertTypeExpr(te ast.TypeExpr) (types.PolyType, error) {
	conv := &typeConverter{vars: make(map[string]types.BoundTvar)}
	expr, err := conv.convert(te)
	if err != nil {
		return types.PolyType{}, err
	}
	vars := make([]types.BoundTvar, 0, len(conv.vars))
	for _, v := range conv.vars {
		vars = append(vars, v)
	}
	return types.PolyType{Vars: types.SortBoundTvars(vars), Expr: expr}, nil
}

type typeConverter struct {
	vars map[string]types.BoundTvar
	next types.BoundTvar
}

func (c *typeConverter) convert(te ast.TypeExpr) (types.MonoType, error) {
	switch t := te.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "int":
			return types.Int, nil
		case "float":
			return types.Float, nil
		case "string":
			return types.Str, nil
		case "bool":
			return types.Bool, nil
		case "time":
			return types.Time, nil
		}
		return nil, fmt.Errorf("unknown type %q", t.Name)
	case *ast.TypeVarExpr:
		v, ok := c.vars[t.Name]
		if !ok {
			v = c.next
			c.vars[t.Name] = v
			c.next++
		}
		return types.BoundVar{Num: v}, nil
	case *ast.FuncTypeExpr:
		var req, opt []types.FuncParam
		for _, p := range t.Params {
			pt, err := c.convert(p.Ty)
			if err != nil {
				return nil, err
			}
			param := types.FuncParam{Name: p.Name, V: pt}
			if p.Optional {
				opt = append(opt, param)
			} else {
				req = append(req, param)
			}
		}
		ret, err := c.convert(t.Return)
		if err != nil {
			return nil, err
		}
		return &types.Function{Req: req, Opt: opt, Retn: ret}, nil
	case *ast.RecordTypeExpr:
		props := make([]types.Property, 0, len(t.Fields))
		for _, f := range t.Fields {
			ft, err := c.convert(f.Ty)
			if err != nil {
				return nil, err
			}
			props = append(props, types.Property{K: types.ConcreteLabel(f.Name), V: ft})
		}
		return types.NewRecord(props, nil), nil
	}
	return nil, fmt.Errorf("unsupported type annotation")
}
