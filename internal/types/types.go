// Package types implements the Lyra type grammar: monotypes, record rows,
// function types with named parameters, and polytypes with bound
// variables and kind constraints.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Tvar is a free type variable, not yet generalized.
type Tvar uint64

func (t Tvar) String() string {
	return fmt.Sprintf("t%d", uint64(t))
}

// BoundTvar is a type variable quantified by an enclosing PolyType. Bound
// variables are freshly instantiated at each use site.
type BoundTvar uint64

func (b BoundTvar) String() string {
	if b < 26 {
		return string(rune('A' + b))
	}
	return fmt.Sprintf("%c%d", rune('A'+b%26), uint64(b/26))
}

// Kind is a constraint on a type variable.
type Kind string

const (
	KindAddable    Kind = "Addable"
	KindComparable Kind = "Comparable"
	KindEquatable  Kind = "Equatable"
	KindNumeric    Kind = "Numeric"
	KindRecord     Kind = "Record"
	KindStringable Kind = "Stringable"
)

// KindMap holds per-variable kind constraints of a PolyType.
type KindMap map[BoundTvar][]Kind

// MonoType is a concrete-shaped type. Implementations are structurally
// shared; Apply returns a new value and never mutates.
type MonoType interface {
	fmt.Stringer
	Apply(Substitution) MonoType
	monoType()
}

// Basic is a builtin scalar type.
type Basic string

const (
	Int   Basic = "int"
	Float Basic = "float"
	Str   Basic = "string"
	Bool  Basic = "bool"
	Time  Basic = "time"
)

func (b Basic) String() string             { return string(b) }
func (b Basic) Apply(Substitution) MonoType { return b }
func (b Basic) monoType()                  {}

// Var is a free type variable occurrence.
type Var struct {
	Num Tvar
}

func (v Var) String() string { return v.Num.String() }
func (v Var) Apply(s Substitution) MonoType {
	if next, ok := s[v.Num]; ok {
		return next.Apply(s)
	}
	return v
}
func (v Var) monoType() {}

// BoundVar is a bound type variable occurrence.
type BoundVar struct {
	Num BoundTvar
}

func (v BoundVar) String() string              { return v.Num.String() }
func (v BoundVar) Apply(Substitution) MonoType { return v }
func (v BoundVar) monoType()                   {}

// Vec is the vector-of type constructor attached by the vectorization
// pass: a batched column of Elem values.
type Vec struct {
	Elem MonoType
}

func (v *Vec) String() string { return fmt.Sprintf("v[%s]", v.Elem) }
func (v *Vec) Apply(s Substitution) MonoType {
	return &Vec{Elem: v.Elem.Apply(s)}
}
func (v *Vec) monoType() {}

// Label names a record field. Only concrete labels may be exported.
type Label interface {
	fmt.Stringer
	labelNode()
}

// ConcreteLabel is an ordinary field name.
type ConcreteLabel string

func (l ConcreteLabel) String() string { return string(l) }
func (l ConcreteLabel) labelNode()     {}

// VarLabel is a label that is still a free type variable.
type VarLabel struct {
	Num Tvar
}

func (l VarLabel) String() string { return l.Num.String() }
func (l VarLabel) labelNode()     {}

// BoundVarLabel is a label quantified by an enclosing polytype.
type BoundVarLabel struct {
	Num BoundTvar
}

func (l BoundVarLabel) String() string { return l.Num.String() }
func (l BoundVarLabel) labelNode()     {}

// ErrorLabel marks a field whose label failed type checking.
type ErrorLabel struct{}

func (l ErrorLabel) String() string { return "<error>" }
func (l ErrorLabel) labelNode()     {}

// Property is one labeled field of a record.
type Property struct {
	K Label
	V MonoType
}

// Record is a row type: an ordered list of properties, optionally
// extending a row variable. A nil Tail with no properties is the empty
// record.
type Record struct {
	Props []Property
	Tail  MonoType // nil, Var, or BoundVar
}

// NewRecord builds a record from properties and an optional tail.
func NewRecord(props []Property, tail MonoType) *Record {
	return &Record{Props: props, Tail: tail}
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, p := range r.Props {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", p.K, p.V)
	}
	if r.Tail != nil {
		fmt.Fprintf(&sb, " | %s", r.Tail)
	}
	sb.WriteString("}")
	return sb.String()
}

func (r *Record) Apply(s Substitution) MonoType {
	props := make([]Property, len(r.Props))
	for i, p := range r.Props {
		props[i] = Property{K: p.K, V: p.V.Apply(s)}
	}
	var tail MonoType
	if r.Tail != nil {
		tail = r.Tail.Apply(s)
	}
	// A tail substituted to a record is flattened so lookups see every
	// field at one level.
	if tr, ok := tail.(*Record); ok {
		props = append(props, tr.Props...)
		tail = tr.Tail
	}
	return &Record{Props: props, Tail: tail}
}

func (r *Record) monoType() {}

// Field returns the property with the given concrete label.
func (r *Record) Field(name string) (Property, bool) {
	for _, p := range r.Props {
		if l, ok := p.K.(ConcreteLabel); ok && string(l) == name {
			return p, true
		}
	}
	return Property{}, false
}

// FuncParam is one named parameter of a function type.
type FuncParam struct {
	Name string
	V    MonoType
}

// Function is a function type with named required and optional
// parameters.
type Function struct {
	Req  []FuncParam
	Opt  []FuncParam
	Retn MonoType
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range f.Req {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", p.Name, p.V)
	}
	for i, p := range f.Opt {
		if i > 0 || len(f.Req) > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "?%s: %s", p.Name, p.V)
	}
	fmt.Fprintf(&sb, ") => %s", f.Retn)
	return sb.String()
}

func (f *Function) Apply(s Substitution) MonoType {
	req := make([]FuncParam, len(f.Req))
	for i, p := range f.Req {
		req[i] = FuncParam{Name: p.Name, V: p.V.Apply(s)}
	}
	opt := make([]FuncParam, len(f.Opt))
	for i, p := range f.Opt {
		opt[i] = FuncParam{Name: p.Name, V: p.V.Apply(s)}
	}
	return &Function{Req: req, Opt: opt, Retn: f.Retn.Apply(s)}
}

func (f *Function) monoType() {}

// Parameter returns the type of the named parameter, searching required
// then optional parameters.
func (f *Function) Parameter(name string) (MonoType, bool) {
	for _, p := range f.Req {
		if p.Name == name {
			return p.V, true
		}
	}
	for _, p := range f.Opt {
		if p.Name == name {
			return p.V, true
		}
	}
	return nil, false
}

// PolyType is a generalized type: a body plus the bound variables (and
// their kind constraints) quantified for one binding. Vars is sorted and
// free of duplicates.
type PolyType struct {
	Vars []BoundTvar
	Cons KindMap
	Expr MonoType
}

func (p PolyType) String() string {
	if len(p.Vars) == 0 {
		return p.Expr.String()
	}
	vars := make([]string, len(p.Vars))
	for i, v := range p.Vars {
		vars[i] = v.String()
	}
	var cons []string
	for _, v := range p.Vars {
		for _, k := range p.Cons[v] {
			cons = append(cons, fmt.Sprintf("%s: %s", v, k))
		}
	}
	if len(cons) > 0 {
		return fmt.Sprintf("forall [%s] where %s %s", strings.Join(vars, ", "), strings.Join(cons, ", "), p.Expr)
	}
	return fmt.Sprintf("forall [%s] %s", strings.Join(vars, ", "), p.Expr)
}

// SortBoundTvars sorts and deduplicates a bound-variable list in place,
// returning the trimmed slice.
func SortBoundTvars(vars []BoundTvar) []BoundTvar {
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	out := vars[:0]
	for i, v := range vars {
		if i == 0 || vars[i-1] != v {
			out = append(out, v)
		}
	}
	return out
}
