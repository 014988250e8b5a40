package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/lyra/internal/types"
)

func analyzeFn(t *testing.T, src string) (*Package, *FunctionExpr) {
	t.Helper()
	_, pkg := analyze(t, "a", src, nil)
	assign := pkg.Files[0].Body[0].(*VariableAssignment)
	var fn *FunctionExpr
	switch init := assign.Init.(type) {
	case *FunctionExpr:
		fn = init
	default:
		require.Failf(t, "unexpected init", "got %T", init)
	}
	return pkg, fn
}

func TestVectorizeMapShape(t *testing.T) {
	pkg, fn := analyzeFn(t, "package a\nf = (r) => ({x: r.x, y: r.y})\n")

	require.NoError(t, VectorizePackage(pkg))
	vec := fn.Vectorized
	require.NotNil(t, vec)

	// The parameter record's fields are vector-wrapped versions of the
	// scalar field types.
	scalarR, ok := fn.Typ.(*types.Function).Parameter("r")
	require.True(t, ok)
	vecR, ok := vec.Typ.(*types.Function).Parameter("r")
	require.True(t, ok)

	scalarRec := scalarR.(*types.Record)
	vecRec := vecR.(*types.Record)
	require.Len(t, vecRec.Props, len(scalarRec.Props))
	for i, p := range scalarRec.Props {
		assert.Equal(t, p.K, vecRec.Props[i].K)
		assert.Equal(t, &types.Vec{Elem: p.V}, vecRec.Props[i].V)
	}

	// So are the returned object's fields.
	ret := vec.ReturnStatement()
	require.NotNil(t, ret)
	obj := ret.Argument.(*ObjectExpr)
	require.Len(t, obj.Properties, 2)
	for _, p := range obj.Properties {
		member := p.Value.(*MemberExpr)
		assert.IsType(t, &types.Vec{}, member.Typ)
		base := member.Object.(*IdentifierExpr)
		assert.Equal(t, "r", base.Name.Name)
	}

	// The scalar form is untouched.
	assert.Nil(t, vec.Vectorized)
	assert.NotNil(t, fn.ReturnStatement())
}

func TestVectorizeFailures(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		reason VectorizeReason
	}{
		{
			name:   "operator in property value",
			src:    "package a\nf = (r) => ({x: r.x + 1})\n",
			reason: ReasonPropertyValue,
		},
		{
			name:   "two parameters",
			src:    "package a\nf = (a, b) => a\n",
			reason: ReasonParameterShape,
		},
		{
			name:   "parameter not named r",
			src:    "package a\nf = (row) => ({x: row.x})\n",
			reason: ReasonParameterShape,
		},
		{
			name:   "non-object return",
			src:    "package a\nf = (r) => r.x\n",
			reason: ReasonReturn,
		},
		{
			name:   "member off another base",
			src:    "package a\no = {x: 1}\nf = (r) => ({x: o.x})\n",
			reason: ReasonPropertyValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, pkg := analyze(t, "a", tt.src, nil)
			err := VectorizePackage(pkg)
			require.Error(t, err)

			var verr *UnableToVectorizeError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

func TestVectorizeStructuredFieldTypes(t *testing.T) {
	// Field types wrap in the vector constructor whole, whatever their
	// shape: a record field becomes v[{a: int}], not a field-wise lift,
	// and a function field does not stop the pass.
	inner := types.NewRecord([]types.Property{
		{K: types.ConcreteLabel("a"), V: types.Int},
	}, nil)
	fnField := &types.Function{
		Req:  []types.FuncParam{{Name: "n", V: types.Int}},
		Retn: types.Int,
	}
	rType := types.NewRecord([]types.Property{
		{K: types.ConcreteLabel("x"), V: inner},
		{K: types.ConcreteLabel("g"), V: fnField},
	}, nil)

	rSym := NewSymbol("r", "")
	member := func(prop string, typ types.MonoType) *MemberExpr {
		return &MemberExpr{
			Object:   &IdentifierExpr{Name: rSym, Typ: rType},
			Property: prop,
			Typ:      typ,
		}
	}
	fn := &FunctionExpr{
		Params: []*FunctionParam{{Key: "r"}},
		Body: []Statement{&Return{Argument: &ObjectExpr{
			Properties: []*Property{
				{Key: "x", Value: member("x", inner)},
				{Key: "g", Value: member("g", fnField)},
			},
			Typ: rType,
		}}},
		Typ: &types.Function{
			Req:  []types.FuncParam{{Name: "r", V: rType}},
			Retn: rType,
		},
	}
	pkg := &Package{Path: "a", Name: "a", Files: []*File{{
		Name: "a/a.lyra",
		Body: []Statement{&VariableAssignment{Name: NewSymbol("f", "a"), Init: fn}},
	}}}

	require.NoError(t, VectorizePackage(pkg))
	vec := fn.Vectorized
	require.NotNil(t, vec)

	vecR, ok := vec.Typ.(*types.Function).Parameter("r")
	require.True(t, ok)
	x, ok := vecR.(*types.Record).Field("x")
	require.True(t, ok)
	assert.Equal(t, &types.Vec{Elem: inner}, x.V)
	g, ok := vecR.(*types.Record).Field("g")
	require.True(t, ok)
	assert.Equal(t, &types.Vec{Elem: fnField}, g.V)

	retn := vec.Typ.(*types.Function).Retn.(*types.Record)
	rx, ok := retn.Field("x")
	require.True(t, ok)
	assert.Equal(t, &types.Vec{Elem: inner}, rx.V)
}

func TestVectorizeKeepsEarlierAttachments(t *testing.T) {
	src := `package a
good = (r) => ({x: r.x})
bad = (a, b) => a
`
	_, pkg := analyze(t, "a", src, nil)
	err := VectorizePackage(pkg)
	require.Error(t, err)

	good := pkg.Files[0].Body[0].(*VariableAssignment).Init.(*FunctionExpr)
	assert.NotNil(t, good.Vectorized, "attachments before the failure are kept")
	bad := pkg.Files[0].Body[1].(*VariableAssignment).Init.(*FunctionExpr)
	assert.Nil(t, bad.Vectorized)
}
