package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		typ  MonoType
		want string
	}{
		{
			name: "basic",
			typ:  Int,
			want: "int",
		},
		{
			name: "vector",
			typ:  &Vec{Elem: Float},
			want: "v[float]",
		},
		{
			name: "record",
			typ: NewRecord([]Property{
				{K: ConcreteLabel("x"), V: Int},
				{K: ConcreteLabel("y"), V: Str},
			}, nil),
			want: "{x: int, y: string}",
		},
		{
			name: "record with tail",
			typ:  NewRecord([]Property{{K: ConcreteLabel("x"), V: Int}}, Var{Num: 1}),
			want: "{x: int | t1}",
		},
		{
			name: "function",
			typ: &Function{
				Req:  []FuncParam{{Name: "x", V: BoundVar{Num: 0}}},
				Opt:  []FuncParam{{Name: "n", V: Int}},
				Retn: BoundVar{Num: 0},
			},
			want: "(x: A, ?n: int) => A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestPolyTypeString(t *testing.T) {
	pt := PolyType{
		Vars: []BoundTvar{0},
		Expr: &Function{
			Req:  []FuncParam{{Name: "x", V: BoundVar{Num: 0}}},
			Retn: BoundVar{Num: 0},
		},
	}
	assert.Equal(t, "forall [A] (x: A) => A", pt.String())
}

func TestBoundTvarNames(t *testing.T) {
	assert.Equal(t, "A", BoundTvar(0).String())
	assert.Equal(t, "Z", BoundTvar(25).String())
	assert.Equal(t, "A1", BoundTvar(26).String())
}

func TestUnify(t *testing.T) {
	tests := []struct {
		name    string
		l, r    MonoType
		wantErr string
	}{
		{
			name: "identical basics",
			l:    Int,
			r:    Int,
		},
		{
			name:    "mismatched basics",
			l:       Int,
			r:       Str,
			wantErr: "cannot unify int with string",
		},
		{
			name: "vector elements",
			l:    &Vec{Elem: Var{Num: 1}},
			r:    &Vec{Elem: Int},
		},
		{
			name:    "occurs check",
			l:       Var{Num: 1},
			r:       &Vec{Elem: Var{Num: 1}},
			wantErr: "recursive type",
		},
		{
			name: "records by label",
			l: NewRecord([]Property{
				{K: ConcreteLabel("y"), V: Str},
				{K: ConcreteLabel("x"), V: Int},
			}, nil),
			r: NewRecord([]Property{
				{K: ConcreteLabel("x"), V: Var{Num: 1}},
				{K: ConcreteLabel("y"), V: Var{Num: 2}},
			}, nil),
		},
		{
			name:    "closed record missing label",
			l:       NewRecord([]Property{{K: ConcreteLabel("x"), V: Int}}, nil),
			r:       NewRecord([]Property{{K: ConcreteLabel("y"), V: Int}}, nil),
			wantErr: "missing label",
		},
		{
			name: "shared row variable",
			l:    NewRecord([]Property{{K: ConcreteLabel("x"), V: Int}}, Var{Num: 7}),
			r:    NewRecord([]Property{{K: ConcreteLabel("y"), V: Int}}, Var{Num: 7}),
			wantErr: "sharing a row variable",
		},
		{
			name:    "bound variable tails",
			l:       NewRecord(nil, BoundVar{Num: 0}),
			r:       NewRecord(nil, BoundVar{Num: 1}),
			wantErr: "instantiate the polytype first",
		},
		{
			name: "bound variable tail with fields",
			l: NewRecord([]Property{{K: ConcreteLabel("x"), V: Int}}, BoundVar{Num: 0}),
			r: NewRecord([]Property{{K: ConcreteLabel("y"), V: Int}}, BoundVar{Num: 0}),
			wantErr: "instantiate the polytype first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFresher()
			f.next = 100
			_, err := Unify(tt.l, tt.r, f)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUnifyRowPolymorphic(t *testing.T) {
	f := NewFresher()
	tail := f.Fresh()

	// {x: int, y: string} against {x: t | tail} leaves y in the tail.
	closed := NewRecord([]Property{
		{K: ConcreteLabel("x"), V: Int},
		{K: ConcreteLabel("y"), V: Str},
	}, nil)
	field := f.Fresh()
	open := NewRecord([]Property{{K: ConcreteLabel("x"), V: field}}, tail)

	s, err := Unify(closed, open, f)
	require.NoError(t, err)
	assert.Equal(t, Int, field.Apply(s))

	rest, ok := tail.Apply(s).(*Record)
	require.True(t, ok)
	require.Len(t, rest.Props, 1)
	assert.Equal(t, ConcreteLabel("y"), rest.Props[0].K)
	assert.Nil(t, rest.Tail)
}

func TestUnifyFunctions(t *testing.T) {
	f := NewFresher()
	ret := f.Fresh()

	callee := &Function{
		Req:  []FuncParam{{Name: "x", V: Var{Num: 50}}},
		Retn: Var{Num: 50},
	}
	call := &Function{
		Req:  []FuncParam{{Name: "x", V: Int}},
		Retn: ret,
	}

	s, err := Unify(callee, call, f)
	require.NoError(t, err)
	assert.Equal(t, Int, ret.Apply(s))

	// A call naming a parameter the callee lacks does not unify.
	_, err = Unify(callee, &Function{
		Req:  []FuncParam{{Name: "z", V: Int}},
		Retn: ret,
	}, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing parameter "z"`)
}

func TestInstantiateGeneralize(t *testing.T) {
	pt := PolyType{
		Vars: []BoundTvar{0},
		Expr: &Function{
			Req:  []FuncParam{{Name: "x", V: BoundVar{Num: 0}}},
			Retn: BoundVar{Num: 0},
		},
	}

	f := NewFresher()
	m1 := Instantiate(pt, f)
	m2 := Instantiate(pt, f)
	assert.NotEqual(t, m1.String(), m2.String(), "each use gets fresh variables")

	fn := m1.(*Function)
	assert.Equal(t, fn.Req[0].V, fn.Retn, "instantiation preserves sharing")

	// Generalizing an instantiation round-trips to canonical numbering.
	back := Generalize(map[Tvar]bool{}, m1)
	assert.Equal(t, "forall [A] (x: A) => A", back.String())

	// Variables free in the environment stay free.
	envVar := fn.Req[0].V.(Var)
	pinned := Generalize(map[Tvar]bool{envVar.Num: true}, m1)
	assert.Empty(t, pinned.Vars)
}

func TestCollectBoundVars(t *testing.T) {
	m := &Function{
		Req: []FuncParam{
			{Name: "b", V: BoundVar{Num: 3}},
			{Name: "a", V: BoundVar{Num: 1}},
		},
		Retn: &Vec{Elem: BoundVar{Num: 3}},
	}
	assert.Equal(t, []BoundTvar{1, 3}, CollectBoundVars(m))
}

func TestComposeAppliesInOrder(t *testing.T) {
	s1 := Substitution{1: Int}
	s2 := Substitution{2: Var{Num: 1}}
	composed := s1.Compose(s2)
	assert.Equal(t, Int, Var{Num: 2}.Apply(composed))
}
