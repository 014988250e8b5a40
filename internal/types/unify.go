package types

import "fmt"

// Unify computes a substitution making l and r equal, or reports why none
// exists. Records unify row-polymorphically: fields are matched by label
// and unmatched fields flow into the other side's row variable.
func Unify(l, r MonoType, f *Fresher) (Substitution, error) {
	if a, ok := l.(Var); ok {
		return bind(a.Num, r)
	}
	if b, ok := r.(Var); ok {
		return bind(b.Num, l)
	}

	switch a := l.(type) {
	case BoundVar:
		return nil, fmt.Errorf("cannot unify bound variable %s; instantiate the polytype first", a)
	case Basic:
		if b, ok := r.(Basic); ok && a == b {
			return Substitution{}, nil
		}
	case *Vec:
		if b, ok := r.(*Vec); ok {
			return Unify(a.Elem, b.Elem, f)
		}
	case *Record:
		if b, ok := r.(*Record); ok {
			return unifyRecords(a, b, f)
		}
	case *Function:
		if b, ok := r.(*Function); ok {
			return unifyFunctions(a, b, f)
		}
	}
	return nil, fmt.Errorf("cannot unify %s with %s", l, r)
}

func bind(v Tvar, t MonoType) (Substitution, error) {
	if tv, ok := t.(Var); ok && tv.Num == v {
		return Substitution{}, nil
	}
	if FreeVars(t)[v] {
		return nil, fmt.Errorf("recursive type: %s occurs in %s", v, t)
	}
	return Substitution{v: t}, nil
}

func unifyRecords(a, b *Record, f *Fresher) (Substitution, error) {
	s := Substitution{}

	consumed := make([]bool, len(b.Props))
	var aOnly []Property
	for _, pa := range a.Props {
		la, ok := pa.K.(ConcreteLabel)
		if !ok {
			return nil, fmt.Errorf("cannot unify record with non-concrete label %s", pa.K)
		}
		matched := false
		for j, pb := range b.Props {
			lb, ok := pb.K.(ConcreteLabel)
			if !ok {
				return nil, fmt.Errorf("cannot unify record with non-concrete label %s", pb.K)
			}
			if consumed[j] || lb != la {
				continue
			}
			s2, err := Unify(pa.V.Apply(s), pb.V.Apply(s), f)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", la, err)
			}
			s = s.Compose(s2)
			consumed[j] = true
			matched = true
			break
		}
		if !matched {
			aOnly = append(aOnly, Property{K: pa.K, V: pa.V.Apply(s)})
		}
	}
	var bOnly []Property
	for j, pb := range b.Props {
		if !consumed[j] {
			bOnly = append(bOnly, Property{K: pb.K, V: pb.V.Apply(s)})
		}
	}

	tailA := applyTail(a.Tail, s)
	tailB := applyTail(b.Tail, s)
	if bv, ok := tailA.(BoundVar); ok {
		return nil, fmt.Errorf("cannot unify bound variable %s; instantiate the polytype first", bv)
	}
	if bv, ok := tailB.(BoundVar); ok {
		return nil, fmt.Errorf("cannot unify bound variable %s; instantiate the polytype first", bv)
	}
	varA, okA := tailA.(Var)
	varB, okB := tailB.(Var)

	switch {
	case len(aOnly) == 0 && len(bOnly) == 0:
		switch {
		case tailA == nil && tailB == nil:
			return s, nil
		case okA && okB:
			s2, err := bind(varA.Num, tailB)
			if err != nil {
				return nil, err
			}
			return s.Compose(s2), nil
		case okA:
			s2, err := bind(varA.Num, &Record{})
			if err != nil {
				return nil, err
			}
			return s.Compose(s2), nil
		case okB:
			s2, err := bind(varB.Num, &Record{})
			if err != nil {
				return nil, err
			}
			return s.Compose(s2), nil
		}
	case okA && okB:
		if varA.Num == varB.Num {
			return nil, fmt.Errorf("cannot unify records %s and %s sharing a row variable", a, b)
		}
		rest := f.Fresh()
		s2, err := bind(varA.Num, &Record{Props: bOnly, Tail: rest})
		if err != nil {
			return nil, err
		}
		s = s.Compose(s2)
		s2, err = bind(varB.Num, &Record{Props: applyProps(aOnly, s), Tail: rest})
		if err != nil {
			return nil, err
		}
		return s.Compose(s2), nil
	case okA && len(aOnly) == 0:
		s2, err := bind(varA.Num, &Record{Props: bOnly, Tail: tailB})
		if err != nil {
			return nil, err
		}
		return s.Compose(s2), nil
	case okB && len(bOnly) == 0:
		s2, err := bind(varB.Num, &Record{Props: aOnly, Tail: tailA})
		if err != nil {
			return nil, err
		}
		return s.Compose(s2), nil
	}

	missing := aOnly
	if len(missing) == 0 {
		missing = bOnly
	}
	if len(missing) == 0 {
		return nil, fmt.Errorf("cannot unify %s with %s", a, b)
	}
	return nil, fmt.Errorf("record %s is missing label %s", b, missing[0].K)
}

func applyTail(tail MonoType, s Substitution) MonoType {
	if tail == nil {
		return nil
	}
	return tail.Apply(s)
}

func applyProps(props []Property, s Substitution) []Property {
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = Property{K: p.K, V: p.V.Apply(s)}
	}
	return out
}

func unifyFunctions(a, b *Function, f *Fresher) (Substitution, error) {
	s := Substitution{}

	unifyParam := func(p FuncParam, other *Function, required bool) error {
		v, ok := other.Parameter(p.Name)
		if !ok {
			if required {
				return fmt.Errorf("function %s is missing parameter %q", other, p.Name)
			}
			return nil
		}
		s2, err := Unify(p.V.Apply(s), v.Apply(s), f)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		s = s.Compose(s2)
		return nil
	}

	for _, p := range a.Req {
		if err := unifyParam(p, b, true); err != nil {
			return nil, err
		}
	}
	for _, p := range b.Req {
		if _, ok := a.Parameter(p.Name); !ok {
			return nil, fmt.Errorf("function %s is missing parameter %q", a, p.Name)
		}
	}
	for _, p := range a.Opt {
		if err := unifyParam(p, b, false); err != nil {
			return nil, err
		}
	}

	s2, err := Unify(a.Retn.Apply(s), b.Retn.Apply(s), f)
	if err != nil {
		return nil, err
	}
	return s.Compose(s2), nil
}
