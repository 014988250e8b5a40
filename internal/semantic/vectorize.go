package semantic

import (
	"fmt"

	"martianoff/lyra/internal/types"
)

// VectorizePackage attaches a vectorized alternate to every function
// literal in the package, in post order. The pass stops at the first
// function it cannot rewrite; alternates attached before the failure
// stay attached, and the scalar forms are never invalidated.
func VectorizePackage(pkg *Package) error {
	v := &vectorizer{}
	Walk(v, pkg)
	return v.err
}

type vectorizer struct {
	err error
}

func (v *vectorizer) Visit(Node) bool { return v.err == nil }

func (v *vectorizer) Done(node Node) {
	if v.err != nil {
		return
	}
	fn, ok := node.(*FunctionExpr)
	if !ok {
		return
	}
	vec, err := vectorizeFn(fn)
	if err != nil {
		v.err = err
		return
	}
	fn.Vectorized = vec
}

// vectorizeFn rewrites a row function into its columnar form: the
// parameter record's fields become vectors, and so does every field of
// the returned object. Only the `(r) => ({...})` shape qualifies, and
// every returned field must read directly off `r`.
func vectorizeFn(fn *FunctionExpr) (*FunctionExpr, error) {
	if len(fn.Params) != 1 || fn.Params[0].Key != "r" || fn.Params[0].Default != nil {
		return nil, &UnableToVectorizeError{
			Pos:    fn.P,
			Reason: ReasonParameterShape,
			Msg:    "function must take a single required parameter named r",
		}
	}
	ret := fn.ReturnStatement()
	if ret == nil {
		return nil, &UnableToVectorizeError{
			Pos:    fn.P,
			Reason: ReasonBody,
			Msg:    "function body must be a single return statement",
		}
	}
	obj, ok := ret.Argument.(*ObjectExpr)
	if !ok {
		return nil, &UnableToVectorizeError{
			Pos:    ret.Argument.Loc(),
			Reason: ReasonReturn,
			Msg:    "function must return an object literal",
		}
	}

	ft, ok := fn.Typ.(*types.Function)
	if !ok {
		return nil, &UnableToVectorizeError{
			Pos:    fn.P,
			Reason: ReasonBase,
			Msg:    fmt.Sprintf("function has non-function type %s", fn.Typ),
		}
	}
	rType, ok := ft.Parameter("r")
	if !ok {
		return nil, &UnableToVectorizeError{
			Pos:    fn.P,
			Reason: ReasonParameterShape,
			Msg:    "function type carries no parameter r",
		}
	}
	vecR, err := vecRecordType(rType)
	if err != nil {
		return nil, &UnableToVectorizeError{Pos: fn.P, Reason: ReasonBase, Msg: err.Error()}
	}

	rSym := NewSymbol("r", "")
	props := make([]*Property, 0, len(obj.Properties))
	typProps := make([]types.Property, 0, len(obj.Properties))
	for _, p := range obj.Properties {
		member, ok := p.Value.(*MemberExpr)
		if !ok {
			return nil, &UnableToVectorizeError{
				Pos:    p.Value.Loc(),
				Reason: ReasonPropertyValue,
				Msg:    fmt.Sprintf("property %q must read a field of r", p.Key),
			}
		}
		ident, ok := member.Object.(*IdentifierExpr)
		if !ok || ident.Name != rSym {
			return nil, &UnableToVectorizeError{
				Pos:    member.Loc(),
				Reason: ReasonPropertyValue,
				Msg:    fmt.Sprintf("property %q must read a field of r", p.Key),
			}
		}
		elem := &types.Vec{Elem: member.Typ}
		props = append(props, &Property{
			P:   p.P,
			Key: p.Key,
			Value: &MemberExpr{
				P:        member.P,
				Object:   &IdentifierExpr{P: ident.P, Name: rSym, Typ: vecR},
				Property: member.Property,
				Typ:      elem,
			},
		})
		typProps = append(typProps, types.Property{K: types.ConcreteLabel(p.Key), V: elem})
	}

	retnTyp := types.NewRecord(typProps, nil)
	return &FunctionExpr{
		P: fn.P,
		Params: []*FunctionParam{{
			P:   fn.Params[0].P,
			Key: "r",
		}},
		Body: []Statement{&Return{
			P: ret.P,
			Argument: &ObjectExpr{
				P:          obj.P,
				Properties: props,
				Typ:        retnTyp,
			},
		}},
		Typ: &types.Function{
			Req:  []types.FuncParam{{Name: "r", V: vecR}},
			Retn: retnTyp,
		},
	}, nil
}

// vecRecordType lifts r's row type into its columnar counterpart: each
// field's scalar type wraps in a vector as-is, whatever its shape, and
// the row tail is kept. Only the top level lifts field-wise.
func vecRecordType(t types.MonoType) (types.MonoType, error) {
	rec, ok := t.(*types.Record)
	if !ok {
		return nil, fmt.Errorf("unable to vectorize parameter of type %s", t)
	}
	props := make([]types.Property, 0, len(rec.Props))
	for _, p := range rec.Props {
		props = append(props, types.Property{K: p.K, V: &types.Vec{Elem: p.V}})
	}
	return types.NewRecord(props, rec.Tail), nil
}
