package semantic

import (
	"fmt"
	"sort"

	"martianoff/lyra/internal/types"
	"martianoff/lyra/lyraerr"
)

// PackageExports is a package's externally visible interface: a mapping
// from exported symbol to its polytype. Insertion order is irrelevant;
// on a duplicate symbol the later writer wins.
type PackageExports struct {
	bindings map[Symbol]types.PolyType
}

func NewPackageExports() *PackageExports {
	return &PackageExports{bindings: make(map[Symbol]types.PolyType)}
}

func (e *PackageExports) Len() int {
	return len(e.bindings)
}

func (e *PackageExports) Add(sym Symbol, pt types.PolyType) {
	e.bindings[sym] = pt
}

// Lookup returns the polytype exported under the given local name.
func (e *PackageExports) Lookup(name string) (types.PolyType, bool) {
	for sym, pt := range e.bindings {
		if sym.Name == name {
			return pt, true
		}
	}
	return types.PolyType{}, false
}

// LookupSymbol returns the qualified symbol exported under the given
// local name.
func (e *PackageExports) LookupSymbol(name string) (Symbol, bool) {
	for sym := range e.bindings {
		if sym.Name == name {
			return sym, true
		}
	}
	return Symbol{}, false
}

// CopyBindingsFrom merges all of other's bindings into e. Bindings
// already present under the same symbol are overwritten.
func (e *PackageExports) CopyBindingsFrom(other *PackageExports) {
	for sym, pt := range other.bindings {
		e.bindings[sym] = pt
	}
}

// Bindings calls f for every binding in name-sorted order.
func (e *PackageExports) Bindings(f func(Symbol, types.PolyType)) {
	syms := make([]Symbol, 0, len(e.bindings))
	for sym := range e.bindings {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].Name != syms[j].Name {
			return syms[i].Name < syms[j].Name
		}
		return syms[i].Package < syms[j].Package
	})
	for _, sym := range syms {
		f(sym, e.bindings[sym])
	}
}

// Typ returns the package's overall type: a record with one concrete
// field per exported binding, quantified over the union of every
// binding's bound variables.
func (e *PackageExports) Typ() types.PolyType {
	var props []types.Property
	var vars []types.BoundTvar
	cons := types.KindMap{}

	// Bound variables are renumbered per binding so that two bindings
	// quantifying "A" independently do not collide inside the record.
	var next types.BoundTvar
	e.Bindings(func(sym Symbol, pt types.PolyType) {
		shift := make(map[types.BoundTvar]types.BoundTvar, len(pt.Vars))
		for _, v := range pt.Vars {
			shift[v] = next
			vars = append(vars, next)
			if ks, ok := pt.Cons[v]; ok {
				cons[next] = ks
			}
			next++
		}
		props = append(props, types.Property{
			K: types.ConcreteLabel(sym.Name),
			V: shiftBoundVars(pt.Expr, shift),
		})
	})

	if len(cons) == 0 {
		cons = nil
	}
	return types.PolyType{
		Vars: types.SortBoundTvars(vars),
		Cons: cons,
		Expr: types.NewRecord(props, nil),
	}
}

func shiftBoundVars(m types.MonoType, shift map[types.BoundTvar]types.BoundTvar) types.MonoType {
	sub := make(map[types.BoundTvar]types.MonoType, len(shift))
	for from, to := range shift {
		sub[from] = types.BoundVar{Num: to}
	}
	return types.SubstBoundVars(m, sub)
}

// ExportsFromRecord converts a package's overall record type back into a
// scoped export map. Each field becomes one binding whose polytype
// quantifies exactly the bound variables occurring in that field's type,
// with the enclosing polytype's kind constraints carried over.
//
// Fields with non-concrete labels are rejected: exports never contain
// variable or error labels. A bound variable occurring in a field but
// absent from the enclosing polytype's variable list is an internal
// consistency error, not a user error.
func ExportsFromRecord(pkgpath string, pt types.PolyType) (*PackageExports, error) {
	rec, ok := pt.Expr.(*types.Record)
	if !ok {
		return nil, lyraerr.NewSemanticError(fmt.Sprintf("package type is not a record: %s", pt.Expr))
	}

	exports := NewPackageExports()
	for _, field := range rec.Props {
		label, ok := field.K.(types.ConcreteLabel)
		if !ok {
			if _, isErr := field.K.(types.ErrorLabel); isErr {
				return nil, lyraerr.NewSemanticError("record contains type error")
			}
			return nil, lyraerr.NewSemanticError("record contains variable labels")
		}

		fieldVars := types.CollectBoundVars(field.V)
		var fieldCons types.KindMap
		for _, v := range fieldVars {
			if !containsBoundTvar(pt.Vars, v) {
				// Not a user error: the enclosing polytype is internally
				// inconsistent.
				return nil, &lyraerr.BaseError{
					Msg:     fmt.Sprintf("monotype contains bound var %s not in polytype vars", v),
					ErrType: lyraerr.TypeInternal,
				}
			}
			if ks, ok := pt.Cons[v]; ok {
				if fieldCons == nil {
					fieldCons = types.KindMap{}
				}
				fieldCons[v] = ks
			}
		}

		exports.Add(NewSymbol(string(label), pkgpath), types.PolyType{
			Vars: fieldVars,
			Cons: fieldCons,
			Expr: field.V,
		})
	}
	return exports, nil
}

func containsBoundTvar(vars []types.BoundTvar, v types.BoundTvar) bool {
	for _, have := range vars {
		if have == v {
			return true
		}
	}
	return false
}
