package types

import "sort"

// Substitution is a mapping from free type variables to types.
type Substitution map[Tvar]MonoType

// Compose merges other into s so that applying the result is equivalent
// to applying other, then s.
func (s Substitution) Compose(other Substitution) Substitution {
	res := make(Substitution, len(s)+len(other))
	for k, v := range other {
		res[k] = v.Apply(s)
	}
	for k, v := range s {
		res[k] = v
	}
	return res
}

// Fresher allocates free type variables with unique numbers.
type Fresher struct {
	next uint64
}

func NewFresher() *Fresher {
	return &Fresher{}
}

func (f *Fresher) Fresh() Var {
	f.next++
	return Var{Num: Tvar(f.next)}
}

// FreeVars returns the free type variables occurring in m.
func FreeVars(m MonoType) map[Tvar]bool {
	res := make(map[Tvar]bool)
	collectFreeVars(m, res)
	return res
}

func collectFreeVars(m MonoType, res map[Tvar]bool) {
	Visit(m, func(t MonoType) {
		if v, ok := t.(Var); ok {
			res[v.Num] = true
		}
		if r, ok := t.(*Record); ok {
			for _, p := range r.Props {
				if l, ok := p.K.(VarLabel); ok {
					res[l.Num] = true
				}
			}
		}
	})
}

// Visit calls f on m and every type nested inside it, pre-order.
func Visit(m MonoType, f func(MonoType)) {
	if m == nil {
		return
	}
	f(m)
	switch t := m.(type) {
	case *Vec:
		Visit(t.Elem, f)
	case *Record:
		for _, p := range t.Props {
			Visit(p.V, f)
		}
		Visit(t.Tail, f)
	case *Function:
		for _, p := range t.Req {
			Visit(p.V, f)
		}
		for _, p := range t.Opt {
			Visit(p.V, f)
		}
		Visit(t.Retn, f)
	}
}

// CollectBoundVars gathers the bound type variables occurring anywhere in
// m, deduplicated into canonical sorted order.
func CollectBoundVars(m MonoType) []BoundTvar {
	var vars []BoundTvar
	Visit(m, func(t MonoType) {
		var num BoundTvar
		switch v := t.(type) {
		case BoundVar:
			num = v.Num
		case *Record:
			for _, p := range v.Props {
				if l, ok := p.K.(BoundVarLabel); ok {
					vars = insertBoundTvar(vars, l.Num)
				}
			}
			return
		default:
			return
		}
		vars = insertBoundTvar(vars, num)
	})
	return vars
}

func insertBoundTvar(vars []BoundTvar, v BoundTvar) []BoundTvar {
	i := sort.Search(len(vars), func(i int) bool { return vars[i] >= v })
	if i < len(vars) && vars[i] == v {
		return vars
	}
	vars = append(vars, 0)
	copy(vars[i+1:], vars[i:])
	vars[i] = v
	return vars
}

// Instantiate replaces every bound variable of p with a fresh free
// variable, yielding a monotype usable at one call site.
func Instantiate(p PolyType, f *Fresher) MonoType {
	if len(p.Vars) == 0 {
		return p.Expr
	}
	sub := make(map[BoundTvar]MonoType, len(p.Vars))
	for _, v := range p.Vars {
		sub[v] = f.Fresh()
	}
	return SubstBoundVars(p.Expr, sub)
}

// SubstBoundVars replaces bound-variable occurrences according to sub.
func SubstBoundVars(m MonoType, sub map[BoundTvar]MonoType) MonoType {
	switch t := m.(type) {
	case BoundVar:
		if next, ok := sub[t.Num]; ok {
			return next
		}
		return t
	case *Vec:
		return &Vec{Elem: SubstBoundVars(t.Elem, sub)}
	case *Record:
		props := make([]Property, len(t.Props))
		for i, p := range t.Props {
			k := p.K
			if l, ok := k.(BoundVarLabel); ok {
				if next, ok := sub[l.Num]; ok {
					if v, ok := next.(Var); ok {
						k = VarLabel{Num: v.Num}
					}
				}
			}
			props[i] = Property{K: k, V: SubstBoundVars(p.V, sub)}
		}
		var tail MonoType
		if t.Tail != nil {
			tail = SubstBoundVars(t.Tail, sub)
		}
		return &Record{Props: props, Tail: tail}
	case *Function:
		req := make([]FuncParam, len(t.Req))
		for i, p := range t.Req {
			req[i] = FuncParam{Name: p.Name, V: SubstBoundVars(p.V, sub)}
		}
		opt := make([]FuncParam, len(t.Opt))
		for i, p := range t.Opt {
			opt[i] = FuncParam{Name: p.Name, V: SubstBoundVars(p.V, sub)}
		}
		return &Function{Req: req, Opt: opt, Retn: SubstBoundVars(t.Retn, sub)}
	default:
		return m
	}
}

// Generalize quantifies the free variables of t that do not occur free in
// the environment, producing a PolyType with canonically numbered bound
// variables.
func Generalize(envFree map[Tvar]bool, t MonoType) PolyType {
	free := FreeVars(t)
	var quantified []Tvar
	for v := range free {
		if !envFree[v] {
			quantified = append(quantified, v)
		}
	}
	if len(quantified) == 0 {
		return PolyType{Expr: t}
	}
	sort.Slice(quantified, func(i, j int) bool { return quantified[i] < quantified[j] })

	sub := make(map[Tvar]MonoType, len(quantified))
	vars := make([]BoundTvar, len(quantified))
	for i, v := range quantified {
		vars[i] = BoundTvar(i)
		sub[v] = BoundVar{Num: BoundTvar(i)}
	}
	return PolyType{Vars: vars, Expr: substFree(t, sub)}
}

func substFree(m MonoType, sub map[Tvar]MonoType) MonoType {
	switch t := m.(type) {
	case Var:
		if next, ok := sub[t.Num]; ok {
			return next
		}
		return t
	case *Vec:
		return &Vec{Elem: substFree(t.Elem, sub)}
	case *Record:
		props := make([]Property, len(t.Props))
		for i, p := range t.Props {
			k := p.K
			if l, ok := k.(VarLabel); ok {
				if next, ok := sub[l.Num]; ok {
					if bv, ok := next.(BoundVar); ok {
						k = BoundVarLabel{Num: bv.Num}
					}
				}
			}
			props[i] = Property{K: k, V: substFree(p.V, sub)}
		}
		var tail MonoType
		if t.Tail != nil {
			tail = substFree(t.Tail, sub)
		}
		return &Record{Props: props, Tail: tail}
	case *Function:
		req := make([]FuncParam, len(t.Req))
		for i, p := range t.Req {
			req[i] = FuncParam{Name: p.Name, V: substFree(p.V, sub)}
		}
		opt := make([]FuncParam, len(t.Opt))
		for i, p := range t.Opt {
			opt[i] = FuncParam{Name: p.Name, V: substFree(p.V, sub)}
		}
		return &Function{Req: req, Opt: opt, Retn: substFree(t.Retn, sub)}
	default:
		return m
	}
}
